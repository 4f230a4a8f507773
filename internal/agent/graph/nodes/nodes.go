package nodes

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/compose"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/graph/conversations"
	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/graph/parsers"
	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/graph/prompts"
	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/graph/tools"
	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/sheetsql/internal/core/error"
	"github.com/Chative-core-poc-v1/sheetsql/internal/metrics"
	"github.com/Chative-core-poc-v1/sheetsql/internal/store"
	logx "github.com/Chative-core-poc-v1/sheetsql/pkg/logger"
)

// EmptyAnswerFallback is used when the conversation model ends without text.
const EmptyAnswerFallback = "Sorry, I could not come up with an answer to that."

// ===================== Entry =====================

// NewInputConverterNode turns the public input into a fresh run.
func NewInputConverterNode(clock clockwork.Clock) *compose.Lambda {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return compose.InvokableLambda(func(ctx context.Context, in model.QueryInput) (*model.RunState, error) {
		if strings.TrimSpace(in.Question) == "" {
			return nil, errx.New(fmt.Errorf("question is empty"), http.StatusBadRequest, "question is required")
		}
		return model.NewRunState(uuid.NewString(), in, clock.Now()), nil
	})
}

// NewInputConverterPostHandler registers the run in the graph state and
// resets the conversation loop scratch.
func NewInputConverterPostHandler() func(context.Context, *model.RunState, *model.AppState) (*model.RunState, error) {
	return func(ctx context.Context, run *model.RunState, s *model.AppState) (*model.RunState, error) {
		s.Run = run
		s.History = nil
		s.ToolCallCount = 0
		s.ToolCallLimitReached = false
		s.ToolCallIDSeq = 0

		logx.Debug().
			Str("run_id", run.RunID).
			Str("conversation_id", run.ConversationID).
			Int("history_turns", len(run.History)).
			Msg("Run started")
		return run, nil
	}
}

// ===================== Intent Classifier =====================

// NewClassifyIntentNode asks the classifier model to pick one of the intent
// tools. It never fails on an ambiguous answer; only transport errors abort.
func NewClassifyIntentNode(
	classifier einomodel.BaseChatModel,
	mm *conversations.MessagesManager,
	modelName string,
	rec *metrics.Recorder,
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, run *model.RunState) (*model.RunState, error) {
		msgs, err := prompts.RenderClassify(ctx, mm.HistoryMessages(run.History), run.Question)
		if err != nil {
			return nil, err
		}

		out, err := classifier.Generate(ctx, msgs, einomodel.WithToolChoice(schema.ToolChoiceForced))
		if err != nil {
			logx.Error().Err(err).Str("run_id", run.RunID).Msg("Intent classification failed")
			return nil, errx.WrapModel(fmt.Errorf("classify intent: %w", err))
		}
		recordUsage(run, out, modelName, NodeClassifyIntent, rec)

		intent := parsers.ParseIntent(out)
		if err := run.SetIntent(intent); err != nil {
			return nil, err
		}

		logx.Info().Str("run_id", run.RunID).Str("intent", intent.String()).Msg("Intent classified")
		return run, nil
	})
}

// NewIntentCondition routes a classified run to the SQL path or the conversation path.
func NewIntentCondition() func(context.Context, *model.RunState) (string, error) {
	return func(ctx context.Context, run *model.RunState) (string, error) {
		if run.Intent == model.IntentDatabaseQuery {
			return NodeGenerateQuery, nil
		}
		return NodeConversationAssembler, nil
	}
}

// ===================== Query Generator =====================

// NewGenerateQueryNode produces the next SQL candidate. After a failed
// execution the failure text and the failed query go into the prompt.
func NewGenerateQueryNode(
	generator einomodel.BaseChatModel,
	schemaProvider store.SchemaProvider,
	dialect string,
	mm *conversations.MessagesManager,
	modelName string,
	rec *metrics.Recorder,
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, run *model.RunState) (*model.RunState, error) {
		schemaText, err := schemaProvider.DescribeSchema(ctx)
		if err != nil {
			logx.Error().Err(err).Str("run_id", run.RunID).Msg("Failed to describe schema")
			return nil, err
		}

		in := prompts.GenerateInput{
			Dialect:  dialect,
			Schema:   schemaText,
			History:  mm.HistoryMessages(run.History),
			Question: run.Question,
		}
		if failure, ok := run.LastFailure(); ok {
			in.PreviousQuery = run.Query
			in.Failure = failure
		}

		msgs, err := prompts.RenderGenerate(ctx, in)
		if err != nil {
			return nil, err
		}

		out, err := generator.Generate(ctx, msgs)
		if err != nil {
			logx.Error().Err(err).Str("run_id", run.RunID).Int("retries", run.Retries).Msg("SQL generation failed")
			return nil, errx.WrapModel(fmt.Errorf("generate query: %w", err))
		}
		recordUsage(run, out, modelName, NodeGenerateQuery, rec)

		run.RecordCandidate(parsers.ExtractSQL(out.Content))
		rec.IncGeneration()

		logx.Info().
			Str("run_id", run.RunID).
			Int("retries", run.Retries).
			Str("query", run.Query).
			Msg("Generated SQL query")
		return run, nil
	})
}

// ===================== Query Executor =====================

// NewExecuteQueryNode runs the current candidate. Failures are data.
func NewExecuteQueryNode(executor store.QueryExecutor, rec *metrics.Recorder) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, run *model.RunState) (*model.RunState, error) {
		result := executor.Execute(ctx, run.Query)
		run.RecordResult(result)

		if result.IsFailure() {
			rec.IncExecutionFailure()
			logx.Warn().
				Str("run_id", run.RunID).
				Int("retries", run.Retries).
				Str("error", result.Message).
				Msg("Query failed")
		} else {
			logx.Debug().Str("run_id", run.RunID).Msg("Query succeeded")
		}
		return run, nil
	})
}

// ===================== Result Router =====================

// RouteResult decides where a run goes after an execution:
// success goes to the summarizer whatever the retry count, a failure goes
// back to the generator until maxAttempts generations have been made and to
// the failure explainer after that.
func RouteResult(run *model.RunState, maxAttempts int) string {
	if !run.Result.IsFailure() {
		return NodeSummarizeResult
	}
	if run.Retries >= NormalizeMaxAttempts(maxAttempts) {
		return NodeExplainFailure
	}
	return NodeGenerateQuery
}

// NewResultRouterCondition wraps RouteResult as a graph branch condition.
func NewResultRouterCondition(maxAttempts int) func(context.Context, *model.RunState) (string, error) {
	return func(ctx context.Context, run *model.RunState) (string, error) {
		next := RouteResult(run, maxAttempts)
		switch next {
		case NodeGenerateQuery:
			logx.Debug().Str("run_id", run.RunID).Int("retries", run.Retries).Msg("Query failed - regenerating")
		case NodeExplainFailure:
			logx.Warn().Str("run_id", run.RunID).Int("retries", run.Retries).Msg("Max generation attempts reached")
		}
		return next, nil
	}
}

// ===================== Terminal answers =====================

// NewSummarizeResultNode answers the question from the successful result.
func NewSummarizeResultNode(responder einomodel.BaseChatModel, modelName string, rec *metrics.Recorder) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, run *model.RunState) (*model.RunState, error) {
		msgs, err := prompts.RenderSummarize(ctx, run.Question, run.Query, run.Result.Payload)
		if err != nil {
			return nil, err
		}
		out, err := responder.Generate(ctx, msgs)
		if err != nil {
			return nil, errx.WrapModel(fmt.Errorf("summarize result: %w", err))
		}
		recordUsage(run, out, modelName, NodeSummarizeResult, rec)

		if err := run.SetAnswer(answerOr(out, SummaryFallback(run))); err != nil {
			return nil, err
		}
		return run, nil
	})
}

// NewExplainFailureNode tells the user why no query worked and how to rephrase.
func NewExplainFailureNode(responder einomodel.BaseChatModel, modelName string, rec *metrics.Recorder) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, run *model.RunState) (*model.RunState, error) {
		rec.IncRetryExhausted()

		msgs, err := prompts.RenderExplainFailure(ctx, run.Question, run.Query, run.Result.String())
		if err != nil {
			return nil, err
		}
		out, err := responder.Generate(ctx, msgs)
		if err != nil {
			return nil, errx.WrapModel(fmt.Errorf("explain failure: %w", err))
		}
		recordUsage(run, out, modelName, NodeExplainFailure, rec)

		if err := run.SetAnswer(answerOr(out, FailureFallback(run))); err != nil {
			return nil, err
		}
		return run, nil
	})
}

// SummaryFallback answers with the raw result when the model returns no text.
func SummaryFallback(run *model.RunState) string {
	return "Here is what the database returned for your question:\n" + run.Result.Payload
}

// FailureFallback explains an exhausted run without the model.
func FailureFallback(run *model.RunState) string {
	return fmt.Sprintf(
		"Sorry, I could not answer that from the data. The last query I tried was %q and it failed with %q. "+
			"Try rephrasing the question with the exact table or column names.",
		run.Query, run.Result.String(),
	)
}

func answerOr(out *schema.Message, fallback string) string {
	if out != nil {
		if answer := strings.TrimSpace(out.Content); answer != "" {
			return answer
		}
	}
	logx.Warn().Msg("Model returned an empty answer - using fallback")
	return fallback
}

// ===================== Conversation Handler =====================

// NewConversationAssemblerNode builds the opening messages of the conversation loop.
func NewConversationAssemblerNode(mm *conversations.MessagesManager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, run *model.RunState) ([]*schema.Message, error) {
		return prompts.RenderConversation(ctx, mm.HistoryMessages(run.History), run.Question, tools.ToolCurrentDateTime)
	})
}

// NewConversationChatModelPreHandler accumulates the loop transcript in state
// and appends a wrap-up notice once the tool budget is spent.
func NewConversationChatModelPreHandler(maxToolCalls int) func(context.Context, []*schema.Message, *model.AppState) ([]*schema.Message, error) {
	return func(ctx context.Context, in []*schema.Message, state *model.AppState) ([]*schema.Message, error) {
		// some providers return tool results without the id of the call they answer
		if len(in) > 0 {
			last := in[len(in)-1]
			if last != nil && last.Role == schema.Tool && strings.TrimSpace(last.ToolCallID) == "" {
				for i := len(state.History) - 1; i >= 0; i-- {
					msg := state.History[i]
					if msg == nil || msg.Role != schema.Assistant || len(msg.ToolCalls) == 0 {
						continue
					}
					if id := msg.ToolCalls[0].ID; strings.TrimSpace(id) != "" {
						last.ToolCallID = id
					}
					break
				}
			}
		}

		state.History = append(state.History, in...)

		if checkAndMarkToolLimit(state, maxToolCalls) {
			wrapUp := &schema.Message{
				Role: schema.System,
				Content: fmt.Sprintf(
					"SYSTEM NOTICE: You have reached the maximum tool call limit (%d). "+
						"Please answer now using the information you've already gathered.",
					normalizeMaxToolCalls(maxToolCalls),
				),
			}
			state.History = append(state.History, wrapUp)
		}

		return state.History, nil
	}
}

// NewConversationChatModelPostHandler records usage and normalizes tool call ids.
func NewConversationChatModelPostHandler(modelName string, rec *metrics.Recorder) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		if out == nil {
			return nil, fmt.Errorf("conversation model returned no message")
		}
		recordUsage(state.Run, out, modelName, NodeConversationChatModel, rec)

		for i := range out.ToolCalls {
			if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
				state.ToolCallIDSeq++
				out.ToolCalls[i].ID = fmt.Sprintf("call_%d", state.ToolCallIDSeq)
			}
		}

		state.History = append(state.History, out)

		if len(out.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(out.ToolCalls)).Msg("Calling tools")
		} else {
			logx.Debug().Msg("AI response ready")
		}
		return out, nil
	}
}

// NewToolExecutorCondition loops back through the tool node while the model
// requests tools and the budget allows it.
func NewToolExecutorCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, input *schema.Message) (string, error) {
		var limitReached bool
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			limitReached = state.ToolCallLimitReached
			return nil
		})
		if err != nil {
			return "", err
		}

		if limitReached {
			logx.Debug().Msg("Tool limit reached - finishing conversation")
			return NodeConversationFinalizer, nil
		}
		if len(input.ToolCalls) > 0 {
			return NodeToolExecutor, nil
		}
		return NodeConversationFinalizer, nil
	}
}

// NewToolExecutorPreHandler counts tool rounds.
func NewToolExecutorPreHandler(maxToolCalls int) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, in *schema.Message, state *model.AppState) (*schema.Message, error) {
		if incrementToolCallAndCheck(state, maxToolCalls) {
			logx.Warn().
				Int("tool_call_count", state.ToolCallCount).
				Int("max_tool_calls", normalizeMaxToolCalls(maxToolCalls)).
				Msg("Tool call limit exceeded - flagging and continuing")
		}
		return in, nil
	}
}

// NewConversationFinalizerNode stores the model's final text as the answer.
func NewConversationFinalizerNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, out *schema.Message) (*model.RunState, error) {
		var run *model.RunState
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			if state.Run == nil {
				return fmt.Errorf("missing run in state")
			}
			run = state.Run
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		if err := run.SetAnswer(answerOr(out, EmptyAnswerFallback)); err != nil {
			return nil, err
		}
		return run, nil
	})
}
