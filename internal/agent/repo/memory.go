package repo

import (
	"context"
	"sync"

	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/model"
)

// MemoryConversationRepository keeps history in process. Used by the chat
// command when no Redis URL is configured.
type MemoryConversationRepository struct {
	mu    sync.RWMutex
	turns map[string][]model.Turn
}

func NewMemoryConversationRepository() *MemoryConversationRepository {
	return &MemoryConversationRepository{turns: make(map[string][]model.Turn)}
}

func (m *MemoryConversationRepository) AddTurn(_ context.Context, conversationID string, turn model.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns[conversationID] = append(m.turns[conversationID], turn)
	return nil
}

func (m *MemoryConversationRepository) LoadHistory(_ context.Context, conversationID string) (*model.ConversationHistory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	turns := make([]model.Turn, len(m.turns[conversationID]))
	copy(turns, m.turns[conversationID])
	return &model.ConversationHistory{ConversationID: conversationID, Turns: turns}, nil
}

func (m *MemoryConversationRepository) ClearHistory(_ context.Context, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.turns, conversationID)
	return nil
}

func (m *MemoryConversationRepository) GetTurnCount(_ context.Context, conversationID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.turns[conversationID]), nil
}

var _ model.ConversationRepository = (*MemoryConversationRepository)(nil)
