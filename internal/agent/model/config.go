package model

// ================ Config ================
type ConversationConfig struct {
	TTL string `envconfig:"CONVERSATION_TTL" default:"24h"`
}

type AgentConfig struct {
	// MaxGenerationAttempts bounds the repair loop: after this many failed
	// generations the run goes to the failure explainer.
	MaxGenerationAttempts int `envconfig:"AGENT_MAX_GENERATION_ATTEMPTS" default:"8"`
	// ToolMaxCalls bounds the conversation tool loop.
	ToolMaxCalls    int `envconfig:"AGENT_TOOL_MAX_CALLS" default:"5"`
	HistoryMaxTurns int `envconfig:"AGENT_HISTORY_MAX_TURNS" default:"10"`
}

// QueryModelConfig drives classification and SQL generation.
type QueryModelConfig struct {
	Model       string  `envconfig:"QUERY_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"QUERY_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"QUERY_TEMPERATURE" default:"0"`
}

// ResponseModelConfig drives conversation, summaries and failure explanations.
type ResponseModelConfig struct {
	Model       string  `envconfig:"RESPONSE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"RESPONSE_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"RESPONSE_TEMPERATURE" default:"0"`
}
