package conversations

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/model"
	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/repo"
)

func TestHistoryMessagesTrimsAndMaps(t *testing.T) {
	mm := NewMessagesManager(nil, model.AgentConfig{HistoryMaxTurns: 3})

	msgs := mm.HistoryMessages([]model.Turn{
		model.UserTurn("first"),
		model.AssistantTurn("dropped by trim"),
		model.UserTurn("How many tasks are done?"),
		model.AssistantTurn(" "),
		{Role: model.RoleSystem, Content: "note"},
	})

	require.Len(t, msgs, 2)
	assert.Equal(t, schema.User, msgs[0].Role)
	assert.Equal(t, "How many tasks are done?", msgs[0].Content)
	assert.Equal(t, schema.System, msgs[1].Role)
}

func TestHistoryMessagesDefaultLimit(t *testing.T) {
	mm := NewMessagesManager(nil, model.AgentConfig{})
	turns := make([]model.Turn, 25)
	for i := range turns {
		turns[i] = model.UserTurn("q")
	}

	assert.Len(t, mm.HistoryMessages(turns), DefaultHistoryMaxTurns)
}

func TestSaveExchangeAndLoad(t *testing.T) {
	ctx := context.Background()
	mm := NewMessagesManager(repo.NewMemoryConversationRepository(), model.AgentConfig{})

	require.NoError(t, mm.SaveExchange(ctx, "c1", "hello", "Hi! How can I help?"))
	require.NoError(t, mm.SaveExchange(ctx, "c1", "unanswered", ""))

	turns, err := mm.LoadTurns(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []model.Turn{
		model.UserTurn("hello"),
		model.AssistantTurn("Hi! How can I help?"),
		model.UserTurn("unanswered"),
	}, turns)

	n, err := mm.TurnCount(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, mm.ClearHistory(ctx, "c1"))
	turns, err = mm.LoadTurns(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestManagerWithoutRepository(t *testing.T) {
	mm := NewMessagesManager(nil, model.AgentConfig{})

	turns, err := mm.LoadTurns(context.Background(), "c1")
	require.NoError(t, err)
	assert.Nil(t, turns)
	n, err := mm.TurnCount(context.Background(), "c1")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Error(t, mm.SaveExchange(context.Background(), "c1", "q", "a"))
}
