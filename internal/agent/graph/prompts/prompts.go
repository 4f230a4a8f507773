package prompts

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

const (
	keyHistory  = "history"
	keyQuestion = "question"
)

// format renders a chat template through the Eino prompt component so
// prompt callbacks observe every rendering.
func format(ctx context.Context, name string, tpl prompt.ChatTemplate, vars map[string]any) ([]*schema.Message, error) {
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("%s prompt render: %w", name, err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return nil, fmt.Errorf("%s prompt render: empty result", name)
	}
	return msgs, nil
}

// withHistory builds system prompt + history + current question.
func withHistory(system string) prompt.ChatTemplate {
	return prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(system),
		schema.MessagesPlaceholder(keyHistory, true),
		schema.UserMessage("{{.question}}"),
	)
}

func historyOrEmpty(history []*schema.Message) []*schema.Message {
	if history == nil {
		return []*schema.Message{}
	}
	return history
}
