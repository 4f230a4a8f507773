package conversations

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/model"
)

const DefaultHistoryMaxTurns = 10

// MessagesManager converts caller-owned turns into model messages and, for
// front-ends that keep history server side, loads and saves turns through a
// repository.
type MessagesManager struct {
	conversationRepo model.ConversationRepository
	maxTurns         int
}

// NewMessagesManager accepts a nil repository when history is supplied by
// the caller on every invocation.
func NewMessagesManager(conversationRepo model.ConversationRepository, config model.AgentConfig) *MessagesManager {
	maxTurns := config.HistoryMaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultHistoryMaxTurns
	}
	return &MessagesManager{
		conversationRepo: conversationRepo,
		maxTurns:         maxTurns,
	}
}

// HistoryMessages keeps the most recent turns and maps them to messages.
// Empty turns are dropped.
func (cm *MessagesManager) HistoryMessages(turns []model.Turn) []*schema.Message {
	recent := trimTail(turns, cm.maxTurns)
	msgs := make([]*schema.Message, 0, len(recent))
	for _, t := range recent {
		if strings.TrimSpace(t.Content) == "" {
			continue
		}
		switch t.Role {
		case model.RoleUser:
			msgs = append(msgs, schema.UserMessage(t.Content))
		case model.RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(t.Content, nil))
		case model.RoleSystem:
			msgs = append(msgs, schema.SystemMessage(t.Content))
		}
	}
	return msgs
}

// LoadTurns returns the stored history of a conversation.
func (cm *MessagesManager) LoadTurns(ctx context.Context, conversationID string) ([]model.Turn, error) {
	if cm.conversationRepo == nil {
		return nil, nil
	}
	history, err := cm.conversationRepo.LoadHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return history.Turns, nil
}

// SaveExchange appends a question and its answer to the stored history.
func (cm *MessagesManager) SaveExchange(ctx context.Context, conversationID, question, answer string) error {
	if cm.conversationRepo == nil {
		return fmt.Errorf("conversation repo is nil")
	}
	if err := cm.conversationRepo.AddTurn(ctx, conversationID, model.UserTurn(question)); err != nil {
		return err
	}
	if strings.TrimSpace(answer) == "" {
		return nil
	}
	return cm.conversationRepo.AddTurn(ctx, conversationID, model.AssistantTurn(answer))
}

// TurnCount returns how many turns are stored for a conversation.
func (cm *MessagesManager) TurnCount(ctx context.Context, conversationID string) (int, error) {
	if cm.conversationRepo == nil {
		return 0, nil
	}
	return cm.conversationRepo.GetTurnCount(ctx, conversationID)
}

// ClearHistory drops the stored history of a conversation.
func (cm *MessagesManager) ClearHistory(ctx context.Context, conversationID string) error {
	if cm.conversationRepo == nil {
		return nil
	}
	return cm.conversationRepo.ClearHistory(ctx, conversationID)
}

func trimTail(turns []model.Turn, maxTurns int) []model.Turn {
	if len(turns) <= maxTurns {
		return turns
	}
	return turns[len(turns)-maxTurns:]
}
