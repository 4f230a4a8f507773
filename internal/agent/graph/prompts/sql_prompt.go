package prompts

import (
	"context"
	_ "embed"
	"strings"

	"github.com/cloudwego/eino/schema"
)

//go:embed template/classify_system.txt
var classifySystemPrompt string

//go:embed template/generate_system.txt
var generateSystemPrompt string

// RenderClassify builds the intent classification request.
func RenderClassify(ctx context.Context, history []*schema.Message, question string) ([]*schema.Message, error) {
	return format(ctx, "classify", withHistory(classifySystemPrompt), map[string]any{
		keyHistory:  historyOrEmpty(history),
		keyQuestion: question,
	})
}

// GenerateInput carries everything the SQL generator sees.
type GenerateInput struct {
	Dialect  string
	Schema   string
	History  []*schema.Message
	Question string
	// PreviousQuery and Failure are set when the last candidate failed.
	PreviousQuery string
	Failure       string
}

// RenderGenerate builds the SQL generation request. When the previous
// execution failed the failure text and a correction instruction are added
// to the system prompt.
func RenderGenerate(ctx context.Context, in GenerateInput) ([]*schema.Message, error) {
	dialect := strings.TrimSpace(in.Dialect)
	if dialect == "" {
		dialect = "SQLite"
	}
	return format(ctx, "generate", withHistory(generateSystemPrompt), map[string]any{
		"dialect":        dialect,
		"schema":         in.Schema,
		"previous_query": in.PreviousQuery,
		"failure":        in.Failure,
		keyHistory:       historyOrEmpty(in.History),
		keyQuestion:      in.Question,
	})
}
