package parsers

import (
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/graph/tools"
	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/model"
)

// ParseIntent reads the classifier's first tool call. A missing response,
// no tool call or an unknown tool name all mean conversation.
func ParseIntent(msg *schema.Message) model.Intent {
	if msg == nil || len(msg.ToolCalls) == 0 {
		return model.IntentConversation
	}
	if strings.TrimSpace(msg.ToolCalls[0].Function.Name) == tools.ToolDatabaseQuery {
		return model.IntentDatabaseQuery
	}
	return model.IntentConversation
}
