package tools

import (
	"context"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/jonboulle/clockwork"
)

// ===================================
// Current DateTime Tool
// ===================================

type CurrentDateTimeInput struct{}

type CurrentDateTimeOutput struct {
	DateTime string `json:"datetime"`
	Weekday  string `json:"weekday"`
	Timezone string `json:"timezone"`
}

func createCurrentDateTimeTool(clock clockwork.Clock) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolCurrentDateTime,
			Desc: "Returns today's date and the current time in ISO 8601 format.",
		},
		func(ctx context.Context, _ *CurrentDateTimeInput) (*CurrentDateTimeOutput, error) {
			now := clock.Now()
			return &CurrentDateTimeOutput{
				DateTime: now.Format(time.RFC3339),
				Weekday:  now.Weekday().String(),
				Timezone: now.Location().String(),
			}, nil
		},
	)
}
