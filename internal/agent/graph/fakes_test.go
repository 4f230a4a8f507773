package graph

import (
	"context"
	"strings"
	"sync"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type fakeCall struct {
	Messages []*schema.Message
	Tools    []*schema.ToolInfo
}

func (c fakeCall) System() string {
	for _, m := range c.Messages {
		if m != nil && m.Role == schema.System {
			return m.Content
		}
	}
	return ""
}

func (c fakeCall) LastUser() string {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if m := c.Messages[i]; m != nil && m.Role == schema.User {
			return m.Content
		}
	}
	return ""
}

func (c fakeCall) LastTool() (*schema.Message, bool) {
	if n := len(c.Messages); n > 0 && c.Messages[n-1] != nil && c.Messages[n-1].Role == schema.Tool {
		return c.Messages[n-1], true
	}
	return nil, false
}

type fakeLog struct {
	mu    sync.Mutex
	calls []fakeCall
}

// fakeChatModel is a scripted model: every call is recorded and answered by
// respond. Models returned by WithTools share the log and the script.
type fakeChatModel struct {
	log     *fakeLog
	tools   []*schema.ToolInfo
	respond func(call fakeCall) (*schema.Message, error)
}

func newFakeChatModel(respond func(call fakeCall) (*schema.Message, error)) *fakeChatModel {
	return &fakeChatModel{log: &fakeLog{}, respond: respond}
}

func (m *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	call := fakeCall{Messages: append([]*schema.Message(nil), input...), Tools: m.tools}
	m.log.mu.Lock()
	m.log.calls = append(m.log.calls, call)
	m.log.mu.Unlock()
	return m.respond(call)
}

func (m *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *fakeChatModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	return &fakeChatModel{log: m.log, tools: tools, respond: m.respond}, nil
}

// Calls returns the recorded calls whose system prompt contains marker.
func (m *fakeChatModel) Calls(marker string) []fakeCall {
	m.log.mu.Lock()
	defer m.log.mu.Unlock()
	var out []fakeCall
	for _, c := range m.log.calls {
		if strings.Contains(c.System(), marker) {
			out = append(out, c)
		}
	}
	return out
}

const (
	classifyMarker     = "intent classifier"
	generateMarker     = "AI expert in writing"
	summarizeMarker    = "answer the user's question based on the data provided"
	explainMarker      = "Even after multiple tries"
	conversationMarker = "friendly assistant"
)

func toolCallMessage(name, args string) *schema.Message {
	return schema.AssistantMessage("", []schema.ToolCall{{
		Function: schema.FunctionCall{Name: name, Arguments: args},
	}})
}

func withUsage(msg *schema.Message, prompt, completion int) *schema.Message {
	msg.ResponseMeta = &schema.ResponseMeta{Usage: &schema.TokenUsage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
	}}
	return msg
}
