package nodes

import (
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/model"
	"github.com/Chative-core-poc-v1/sheetsql/internal/metrics"
	logx "github.com/Chative-core-poc-v1/sheetsql/pkg/logger"
)

const (
	DefaultMaxToolCalls          = 5
	DefaultMaxGenerationAttempts = 8
)

// normalizeMaxToolCalls returns a sane default when the provided value is invalid.
func normalizeMaxToolCalls(n int) int {
	if n <= 0 {
		return DefaultMaxToolCalls
	}
	return n
}

// NormalizeMaxAttempts returns the generation bound, defaulting values below 1.
func NormalizeMaxAttempts(n int) int {
	if n < 1 {
		return DefaultMaxGenerationAttempts
	}
	return n
}

// checkAndMarkToolLimit evaluates whether another tool call would exceed the
// limit and, if so, marks the state accordingly. Returns true when marked now.
func checkAndMarkToolLimit(state *model.AppState, max int) bool {
	max = normalizeMaxToolCalls(max)
	if !state.ToolCallLimitReached && state.ToolCallCount >= max {
		state.ToolCallLimitReached = true
		return true
	}
	return false
}

// incrementToolCallAndCheck increments the count and marks the state if it
// exceeds the limit after incrementing. Returns true when exceeded.
func incrementToolCallAndCheck(state *model.AppState, max int) bool {
	max = normalizeMaxToolCalls(max)
	state.ToolCallCount++
	if state.ToolCallCount > max {
		state.ToolCallLimitReached = true
		return true
	}
	return false
}

// recordUsage adds the cost of a model response to the run and the metrics.
func recordUsage(run *model.RunState, out *schema.Message, modelName, node string, rec *metrics.Recorder) {
	if out == nil || out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return
	}
	usage := out.ResponseMeta.Usage
	cost := model.MessageCost(out, modelName)
	if run != nil {
		run.TotalCostUSD += cost
	}
	rec.AddModelCost(modelName, cost)

	ev := logx.Debug().
		Str("node", node).
		Str("model", modelName).
		Int("prompt_tokens", usage.PromptTokens).
		Int("completion_tokens", usage.CompletionTokens).
		Int("total_tokens", usage.TotalTokens).
		Float64("cost_usd", cost)
	if run != nil {
		ev = ev.Str("run_id", run.RunID).Float64("total_cost_usd", run.TotalCostUSD)
	}
	ev.Msg("LLM usage")
}
