package prompts

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderGenerateFirstAttempt(t *testing.T) {
	msgs, err := RenderGenerate(context.Background(), GenerateInput{
		Dialect:  "PostgreSQL",
		Schema:   `CREATE TABLE "Tasks" ("Task Description" TEXT)`,
		History:  []*schema.Message{schema.UserMessage("hi"), schema.AssistantMessage("hello", nil)},
		Question: "How many tasks are {{done}}?",
	})
	require.NoError(t, err)
	require.Len(t, msgs, 4)

	sys := msgs[0].Content
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Contains(t, sys, "writing PostgreSQL queries")
	assert.Contains(t, sys, `CREATE TABLE "Tasks" ("Task Description" TEXT)`)
	assert.Contains(t, sys, "'Completed', 'Yes', 'Done'")
	assert.Contains(t, sys, "'High', 'Urgent', 'H'")
	assert.Contains(t, sys, "'john.doe' and 'johnd'")
	assert.Contains(t, sys, "MUST wrap it in double quotes")
	assert.NotContains(t, sys, "previous query you wrote failed")

	assert.Equal(t, "hi", msgs[1].Content)
	assert.Equal(t, schema.User, msgs[3].Role)
	assert.Equal(t, "How many tasks are {{done}}?", msgs[3].Content)
}

func TestRenderGenerateWithFailure(t *testing.T) {
	msgs, err := RenderGenerate(context.Background(), GenerateInput{
		Schema:        "s",
		Question:      "q",
		PreviousQuery: "SELECT nope FROM t",
		Failure:       "Error: no such column: nope",
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	sys := msgs[0].Content
	assert.Contains(t, sys, "writing SQLite queries")
	assert.Contains(t, sys, "The previous query you wrote failed.")
	assert.Contains(t, sys, "SELECT nope FROM t")
	assert.Contains(t, sys, "Error: no such column: nope")
}

func TestRenderClassify(t *testing.T) {
	msgs, err := RenderClassify(context.Background(), nil, "How many tasks are done?")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Content, "intent classifier")
	assert.Equal(t, "How many tasks are done?", msgs[1].Content)
}

func TestRenderConversation(t *testing.T) {
	msgs, err := RenderConversation(context.Background(), nil, "What's today's date?", "get_current_datetime")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Content, "get_current_datetime")
}

func TestRenderSummarizeAndExplain(t *testing.T) {
	msgs, err := RenderSummarize(context.Background(), "How many?", "SELECT COUNT(*) FROM t", "Results (1 rows):\n3")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1].Content, `"How many?"`)
	assert.Contains(t, msgs[1].Content, "SELECT COUNT(*) FROM t")
	assert.Contains(t, msgs[1].Content, "Results (1 rows):\n3")

	msgs, err = RenderExplainFailure(context.Background(), "How many?", "SELECT x", "Error: boom")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Content, "adjust their question")
	assert.Contains(t, msgs[1].Content, "Error: boom")
	assert.Contains(t, msgs[1].Content, "SELECT x")
}
