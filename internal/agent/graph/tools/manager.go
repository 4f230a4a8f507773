package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/jonboulle/clockwork"
)

const (
	ToolCurrentDateTime = "get_current_datetime"
	ToolDatabaseQuery   = "DatabaseQuery"
	ToolConversation    = "Conversation"
)

// GetConversationTools returns the tools available to the conversation model.
func GetConversationTools(clock clockwork.Clock) []tool.BaseTool {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return []tool.BaseTool{
		createCurrentDateTimeTool(clock),
	}
}

// GetToolInfos collects the schema of every tool for model binding.
func GetToolInfos(ctx context.Context, tools []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}
