package parsers

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"

	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/model"
)

func TestExtractSQL(t *testing.T) {
	cases := map[string]string{
		"SELECT 1":                                "SELECT 1",
		"  SELECT 1;  \n":                         "SELECT 1;",
		"```sql\nSELECT COUNT(*) FROM Tasks\n```": "SELECT COUNT(*) FROM Tasks",
		"```\nSELECT 2\n```":                      "SELECT 2",
		"":                                        "",
	}
	for in, want := range cases {
		assert.Equal(t, want, ExtractSQL(in), in)
	}
}

func toolCall(name string) schema.ToolCall {
	return schema.ToolCall{ID: "call_1", Function: schema.FunctionCall{Name: name, Arguments: "{}"}}
}

func TestParseIntent(t *testing.T) {
	assert.Equal(t, model.IntentConversation, ParseIntent(nil))
	assert.Equal(t, model.IntentConversation, ParseIntent(schema.AssistantMessage("hello", nil)))
	assert.Equal(t, model.IntentDatabaseQuery,
		ParseIntent(schema.AssistantMessage("", []schema.ToolCall{toolCall("DatabaseQuery")})))
	assert.Equal(t, model.IntentConversation,
		ParseIntent(schema.AssistantMessage("", []schema.ToolCall{toolCall("Conversation")})))
	assert.Equal(t, model.IntentConversation,
		ParseIntent(schema.AssistantMessage("", []schema.ToolCall{toolCall("SomethingElse")})))
	assert.Equal(t, model.IntentDatabaseQuery,
		ParseIntent(schema.AssistantMessage("", []schema.ToolCall{toolCall("DatabaseQuery"), toolCall("Conversation")})))
}
