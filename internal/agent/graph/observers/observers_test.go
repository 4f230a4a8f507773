package observers

import (
	"bytes"
	"context"
	"errors"
	"testing"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"

	"github.com/Chative-core-poc-v1/sheetsql/internal/core"
	logx "github.com/Chative-core-poc-v1/sheetsql/pkg/logger"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logx.Init(logx.LoggerOpts{Environment: core.Production, Verbose: true, Output: &buf})
	t.Cleanup(func() { logx.Init() })
	return &buf
}

func TestModelHandlerLogs(t *testing.T) {
	buf := captureLogs(t)
	h := newModelHandler()
	info := &einocb.RunInfo{Name: "conversation_chat_model"}

	h.OnStart(context.Background(), info, &model.CallbackInput{
		Messages: []*schema.Message{schema.SystemMessage("sys"), schema.UserMessage("What's today's date?")},
	})
	h.OnEnd(context.Background(), info, &model.CallbackOutput{Message: schema.AssistantMessage("It is Sunday.", nil)})
	h.OnError(context.Background(), info, errors.New("quota exceeded"))

	out := buf.String()
	assert.Contains(t, out, "What's today's date?")
	assert.Contains(t, out, "It is Sunday.")
	assert.Contains(t, out, "quota exceeded")
}

func TestToolHandlerLogs(t *testing.T) {
	buf := captureLogs(t)
	h := newToolHandler()
	info := &einocb.RunInfo{Name: "get_current_datetime"}

	h.OnStart(context.Background(), info, &tool.CallbackInput{ArgumentsInJSON: "{}"})
	h.OnEnd(context.Background(), info, &tool.CallbackOutput{Response: `{"datetime":"2026-10-18T09:30:00Z"}`})

	assert.Contains(t, buf.String(), "2026-10-18T09:30:00Z")
}

func TestNewAllCallbacks(t *testing.T) {
	assert.NotNil(t, NewAllCallbacks())
	assert.Equal(t, "", lastUserContent([]*schema.Message{nil, schema.SystemMessage("x")}))
}
