package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/graph/tools"
	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/sheetsql/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	APIKey      string
	BaseURL     string
	QueryConfig *model.QueryModelConfig
	RespConfig  *model.ResponseModelConfig
}

// ChatModels holds the query model (classification, SQL generation) and the
// response model (conversation, summaries, failure explanations).
type ChatModels struct {
	Query             einomodel.ToolCallingChatModel
	Response          einomodel.ToolCallingChatModel
	QueryModelName    string
	ResponseModelName string
}

// NewChatModels creates both Gemini chat models sharing one client.
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	if config.QueryConfig == nil || config.RespConfig == nil {
		return nil, fmt.Errorf("model config is nil")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	queryModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.QueryConfig.Model,
		Temperature: &config.QueryConfig.Temperature,
		MaxTokens:   &config.QueryConfig.MaxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(int32(1024)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating query model")
		return nil, fmt.Errorf("error creating query model: %w", err)
	}

	responseModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.RespConfig.Model,
		Temperature: &config.RespConfig.Temperature,
		MaxTokens:   &config.RespConfig.MaxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(int32(1024)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating response model")
		return nil, fmt.Errorf("error creating response model: %w", err)
	}

	return &ChatModels{
		Query:             queryModel,
		Response:          responseModel,
		QueryModelName:    config.QueryConfig.Model,
		ResponseModelName: config.RespConfig.Model,
	}, nil
}

// ClassifierModel returns the query model bound to the two intent tools.
func (cm *ChatModels) ClassifierModel() (einomodel.ToolCallingChatModel, error) {
	bound, err := cm.Query.WithTools(tools.IntentToolInfos())
	if err != nil {
		logx.Error().Err(err).Msg("Failed to bind intent tools")
		return nil, fmt.Errorf("failed to bind intent tools: %w", err)
	}
	return bound, nil
}

// BindToolsToResponseModel returns the response model bound to the given tools.
func (cm *ChatModels) BindToolsToResponseModel(ctx context.Context, infos []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	bound, err := cm.Response.WithTools(infos)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools")
		return nil, fmt.Errorf("failed to bind tools: %w", err)
	}

	logx.Debug().Int("tools", len(infos)).Msg("Successfully bound tools to response model")
	return bound, nil
}
