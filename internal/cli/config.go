package cli

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/model"
	"github.com/Chative-core-poc-v1/sheetsql/internal/core"
	"github.com/Chative-core-poc-v1/sheetsql/internal/ingest"
	"github.com/Chative-core-poc-v1/sheetsql/internal/store"
	pkgredis "github.com/Chative-core-poc-v1/sheetsql/pkg/redis"
)

// AppConfig defines every configurable parameter of the CLI, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Query        model.QueryModelConfig
	Response     model.ResponseModelConfig
	Agent        model.AgentConfig
	Conversation model.ConversationConfig

	// Infrastructure
	Store       store.Config
	Ingest      ingest.Config
	Redis       pkgredis.Config
	MetricsAddr string `envconfig:"METRICS_ADDR"`

	envFileErr error
}

// Env returns the parsed deployment environment.
func (c *AppConfig) Env() core.Environment {
	return core.ParseEnvironment(c.Environment)
}

// ConversationTTL parses CONVERSATION_TTL.
func (c *AppConfig) ConversationTTL() (time.Duration, error) {
	ttl, err := time.ParseDuration(c.Conversation.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid CONVERSATION_TTL %q: %w", c.Conversation.TTL, err)
	}
	return ttl, nil
}

// loadConfig reads envFile when present and processes the environment.
// A missing env file is not an error; it is kept on the config and logged
// once the logger is initialised.
func loadConfig(envFile string) (*AppConfig, error) {
	var envErr error
	if envFile != "" {
		envErr = godotenv.Load(envFile)
	}

	cfg := &AppConfig{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	cfg.envFileErr = envErr
	return cfg, nil
}
