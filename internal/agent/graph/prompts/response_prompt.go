package prompts

import (
	"context"
	_ "embed"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/conversation_system.txt
var conversationSystemPrompt string

//go:embed template/summarize_system.txt
var summarizeSystemPrompt string

//go:embed template/summarize_user.txt
var summarizeUserPrompt string

//go:embed template/explain_system.txt
var explainSystemPrompt string

//go:embed template/explain_user.txt
var explainUserPrompt string

// RenderConversation builds the opening messages of the conversation loop.
func RenderConversation(ctx context.Context, history []*schema.Message, question, datetimeTool string) ([]*schema.Message, error) {
	return format(ctx, "conversation", withHistory(conversationSystemPrompt), map[string]any{
		"datetime_tool": datetimeTool,
		keyHistory:      historyOrEmpty(history),
		keyQuestion:     question,
	})
}

// RenderSummarize builds the request that turns a successful result into an answer.
func RenderSummarize(ctx context.Context, question, query, result string) ([]*schema.Message, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(summarizeSystemPrompt),
		schema.UserMessage(summarizeUserPrompt),
	)
	return format(ctx, "summarize", tpl, map[string]any{
		keyQuestion: question,
		"query":     query,
		"result":    result,
	})
}

// RenderExplainFailure builds the request used once generation attempts are exhausted.
func RenderExplainFailure(ctx context.Context, question, query, failure string) ([]*schema.Message, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(explainSystemPrompt),
		schema.UserMessage(explainUserPrompt),
	)
	return format(ctx, "explain failure", tpl, map[string]any{
		keyQuestion: question,
		"query":     query,
		"failure":   failure,
	})
}
