package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/jonboulle/clockwork"

	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/graph/conversations"
	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/graph/nodes"
	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/graph/observers"
	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/graph/tools"
	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/model"
	"github.com/Chative-core-poc-v1/sheetsql/internal/metrics"
	"github.com/Chative-core-poc-v1/sheetsql/internal/store"
	logx "github.com/Chative-core-poc-v1/sheetsql/pkg/logger"
)

// Runner executes the compiled graph for one question.
type Runner interface {
	Invoke(ctx context.Context, in model.QueryInput) (*model.RunState, error)
}

// Config holds everything needed to compose the full agent graph end-to-end.
// This is a convenience layer over GraphConfig that also constructs ChatModels.
type Config struct {
	APIKey        string
	BaseURL       string
	QueryModel    model.QueryModelConfig
	ResponseModel model.ResponseModelConfig
	Agent         model.AgentConfig

	Schema   store.SchemaProvider
	Executor store.QueryExecutor
	Dialect  store.Dialect
	Metrics  *metrics.Recorder
	Clock    clockwork.Clock
}

// GraphConfig holds all configuration needed to build the graph
type GraphConfig struct {
	ChatModels      *nodes.ChatModels
	MessagesManager *conversations.MessagesManager
	Schema          store.SchemaProvider
	Executor        store.QueryExecutor
	// Dialect is the display name used in generation prompts, e.g. "SQLite".
	Dialect               string
	MaxGenerationAttempts int
	ToolMaxCalls          int
	Metrics               *metrics.Recorder
	Clock                 clockwork.Clock
}

// GraphBuilder handles the construction of the agent graph
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.QueryInput, *model.RunState]

	classifier   einomodel.ToolCallingChatModel
	conversation einomodel.ToolCallingChatModel
}

type graphRunner struct {
	runnable compose.Runnable[model.QueryInput, *model.RunState]
	metrics  *metrics.Recorder
	clock    clockwork.Clock
}

func (r *graphRunner) Invoke(ctx context.Context, in model.QueryInput) (*model.RunState, error) {
	start := r.clock.Now()
	run, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
	elapsed := r.clock.Since(start)
	if err != nil {
		r.metrics.ObserveRun("", "error", elapsed)
		logx.Error().Err(err).Str("conversation_id", in.ConversationID).Msg("Agent run failed")
		return nil, err
	}

	status := "answered"
	if run.Intent == model.IntentDatabaseQuery && run.Result.IsFailure() {
		status = "explained"
	}
	r.metrics.ObserveRun(run.Intent.String(), status, elapsed)

	logx.Info().
		Str("run_id", run.RunID).
		Str("intent", run.Intent.String()).
		Int("retries", run.Retries).
		Str("status", status).
		Float64("total_cost_usd", run.TotalCostUSD).
		Dur("duration", elapsed).
		Msg("Agent run finished")
	return run, nil
}

// BuildAgentGraph composes ChatModels and MessagesManager, builds the graph, and returns a Runner.
func BuildAgentGraph(ctx context.Context, cfg Config) (Runner, error) {
	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		QueryConfig: &cfg.QueryModel,
		RespConfig:  &cfg.ResponseModel,
	})
	if err != nil {
		return nil, err
	}

	return NewRunner(ctx, &GraphConfig{
		ChatModels:            cms,
		MessagesManager:       conversations.NewMessagesManager(nil, cfg.Agent),
		Schema:                cfg.Schema,
		Executor:              cfg.Executor,
		Dialect:               cfg.Dialect.DisplayName(),
		MaxGenerationAttempts: cfg.Agent.MaxGenerationAttempts,
		ToolMaxCalls:          cfg.Agent.ToolMaxCalls,
		Metrics:               cfg.Metrics,
		Clock:                 cfg.Clock,
	})
}

// NewRunner compiles the graph for an already assembled GraphConfig.
func NewRunner(ctx context.Context, config *GraphConfig) (Runner, error) {
	runnable, err := BuildGraph(ctx, config)
	if err != nil {
		return nil, err
	}
	clock := config.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	logx.Debug().Msg("Agent graph built successfully")
	return &graphRunner{runnable: runnable, metrics: config.Metrics, clock: clock}, nil
}

// BuildGraph constructs and returns the compiled agent graph
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.QueryInput, *model.RunState], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModels == nil || config.ChatModels.Query == nil || config.ChatModels.Response == nil {
		return nil, fmt.Errorf("chat models are not properly initialized")
	}
	if config.MessagesManager == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}
	if config.Schema == nil || config.Executor == nil {
		return nil, fmt.Errorf("schema provider and executor are required")
	}
	config.MaxGenerationAttempts = nodes.NormalizeMaxAttempts(config.MaxGenerationAttempts)
	if config.ToolMaxCalls <= 0 {
		config.ToolMaxCalls = nodes.DefaultMaxToolCalls
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.QueryInput, *model.RunState](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	if err := builder.setupModels(); err != nil {
		return nil, err
	}
	if err := builder.setupTools(ctx); err != nil {
		return nil, err
	}
	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// setupModels binds the classification tools to the query model.
func (b *GraphBuilder) setupModels() error {
	classifier, err := b.config.ChatModels.ClassifierModel()
	if err != nil {
		return err
	}
	b.classifier = classifier
	return nil
}

// setupTools configures the conversation tools and binds them to the response model
func (b *GraphBuilder) setupTools(ctx context.Context) error {
	conversationTools := tools.GetConversationTools(b.config.Clock)
	toolInfos, err := tools.GetToolInfos(ctx, conversationTools)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to get tool infos")
		return fmt.Errorf("failed to get tool infos: %w", err)
	}

	b.conversation, err = b.config.ChatModels.BindToolsToResponseModel(ctx, toolInfos)
	if err != nil {
		return err
	}

	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools:               conversationTools,
		ExecuteSequentially: true,
		UnknownToolsHandler: func(ctx context.Context, name, input string) (string, error) {
			logx.Warn().
				Str("tool_name", name).
				Str("arguments", input).
				Msg("Unknown or invalid tool call; returning fallback result")
			return fmt.Sprintf("{\"error\":\"unknown_tool\",\"name\":%q,\"note\":\"ignored\"}", name), nil
		},
		ToolArgumentsHandler: func(ctx context.Context, name, arguments string) (string, error) {
			// the datetime tool takes no arguments; anything that is not a JSON object becomes {}
			var m map[string]any
			if err := json.Unmarshal([]byte(arguments), &m); err != nil || strings.TrimSpace(arguments) == "" {
				return "{}", nil
			}
			return arguments, nil
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Failed to create tools node")
		return fmt.Errorf("failed to create tools node: %w", err)
	}

	if err := b.graph.AddToolsNode(nodes.NodeToolExecutor, toolsNode,
		compose.WithStatePreHandler(nodes.NewToolExecutorPreHandler(b.config.ToolMaxCalls)),
	); err != nil {
		return fmt.Errorf("add %s: %w", nodes.NodeToolExecutor, err)
	}
	return nil
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() error {
	cfg := b.config
	cms := cfg.ChatModels
	mm := cfg.MessagesManager

	add := []struct {
		key string
		fn  func() error
	}{
		{nodes.NodeInputConverter, func() error {
			return b.graph.AddLambdaNode(nodes.NodeInputConverter,
				nodes.NewInputConverterNode(cfg.Clock),
				compose.WithStatePostHandler(nodes.NewInputConverterPostHandler()),
			)
		}},
		{nodes.NodeClassifyIntent, func() error {
			return b.graph.AddLambdaNode(nodes.NodeClassifyIntent,
				nodes.NewClassifyIntentNode(b.classifier, mm, cms.QueryModelName, cfg.Metrics),
			)
		}},
		{nodes.NodeGenerateQuery, func() error {
			return b.graph.AddLambdaNode(nodes.NodeGenerateQuery,
				nodes.NewGenerateQueryNode(cms.Query, cfg.Schema, cfg.Dialect, mm, cms.QueryModelName, cfg.Metrics),
			)
		}},
		{nodes.NodeExecuteQuery, func() error {
			return b.graph.AddLambdaNode(nodes.NodeExecuteQuery,
				nodes.NewExecuteQueryNode(cfg.Executor, cfg.Metrics),
			)
		}},
		{nodes.NodeSummarizeResult, func() error {
			return b.graph.AddLambdaNode(nodes.NodeSummarizeResult,
				nodes.NewSummarizeResultNode(cms.Response, cms.ResponseModelName, cfg.Metrics),
			)
		}},
		{nodes.NodeExplainFailure, func() error {
			return b.graph.AddLambdaNode(nodes.NodeExplainFailure,
				nodes.NewExplainFailureNode(cms.Response, cms.ResponseModelName, cfg.Metrics),
			)
		}},
		{nodes.NodeConversationAssembler, func() error {
			return b.graph.AddLambdaNode(nodes.NodeConversationAssembler,
				nodes.NewConversationAssemblerNode(mm),
			)
		}},
		{nodes.NodeConversationChatModel, func() error {
			return b.graph.AddChatModelNode(nodes.NodeConversationChatModel,
				b.conversation,
				compose.WithStatePreHandler(nodes.NewConversationChatModelPreHandler(cfg.ToolMaxCalls)),
				compose.WithStatePostHandler(nodes.NewConversationChatModelPostHandler(cms.ResponseModelName, cfg.Metrics)),
			)
		}},
		{nodes.NodeConversationFinalizer, func() error {
			return b.graph.AddLambdaNode(nodes.NodeConversationFinalizer,
				nodes.NewConversationFinalizerNode(),
			)
		}},
	}

	for _, n := range add {
		if err := n.fn(); err != nil {
			logx.Error().Err(err).Str("node", n.key).Msg("Error adding node")
			return fmt.Errorf("add %s: %w", n.key, err)
		}
	}
	return nil
}

// addEdges creates the unconditional connections between nodes
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeInputConverter},
		{nodes.NodeInputConverter, nodes.NodeClassifyIntent},
		{nodes.NodeGenerateQuery, nodes.NodeExecuteQuery},
		{nodes.NodeSummarizeResult, compose.END},
		{nodes.NodeExplainFailure, compose.END},
		{nodes.NodeConversationAssembler, nodes.NodeConversationChatModel},
		{nodes.NodeToolExecutor, nodes.NodeConversationChatModel},
		{nodes.NodeConversationFinalizer, compose.END},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			return fmt.Errorf("add edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// addBranches creates conditional routing branches
func (b *GraphBuilder) addBranches() error {
	intentBranch := compose.NewGraphBranch(
		nodes.NewIntentCondition(),
		map[string]bool{
			nodes.NodeGenerateQuery:         true,
			nodes.NodeConversationAssembler: true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeClassifyIntent, intentBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding intent branch")
		return fmt.Errorf("error adding intent branch: %w", err)
	}

	resultBranch := compose.NewGraphBranch(
		nodes.NewResultRouterCondition(b.config.MaxGenerationAttempts),
		map[string]bool{
			nodes.NodeGenerateQuery:   true,
			nodes.NodeSummarizeResult: true,
			nodes.NodeExplainFailure:  true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeExecuteQuery, resultBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding result branch")
		return fmt.Errorf("error adding result branch: %w", err)
	}

	toolBranch := compose.NewGraphBranch(
		nodes.NewToolExecutorCondition(),
		map[string]bool{
			nodes.NodeToolExecutor:          true,
			nodes.NodeConversationFinalizer: true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeConversationChatModel, toolBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding tool branch")
		return fmt.Errorf("error adding tool branch: %w", err)
	}

	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.QueryInput, *model.RunState], error) {
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxRunSteps(b.config.MaxGenerationAttempts, b.config.ToolMaxCalls)))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}

// maxRunSteps caps total node executions: the repair loop costs two steps
// per attempt and the conversation loop two per tool round.
func maxRunSteps(attempts, toolCalls int) int {
	return max(10+2*attempts+2*toolCalls, 20)
}

// RunTimeout is a generous per-invocation deadline for callers that want one.
const RunTimeout = 5 * time.Minute
