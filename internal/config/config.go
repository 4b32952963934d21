package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"     validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm"        validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// DebugErrors adds the redacted internal error text to error responses.
	DebugErrors bool `mapstructure:"debug_errors"`
	// TrustProxy keys clients on X-Forwarded-For/X-Real-IP instead of the
	// socket peer. Enable only behind a proxy that overwrites those headers.
	TrustProxy bool `mapstructure:"trust_proxy"`
	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	// Provider selects the transport: "openai" (any OpenAI-compatible endpoint)
	// or "gemini".
	Provider string `mapstructure:"provider" validate:"required,oneof=openai gemini"`
	// APIKey may be empty; generation endpoints then answer with a
	// misconfiguration error instead of the server refusing to start.
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"       validate:"required"`
	BaseURL     string  `mapstructure:"base_url"    validate:"omitempty,url"`
	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`

	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	MaxAttempts    int           `mapstructure:"max_attempts"    validate:"gte=1,lte=10"`
	BackoffBase    time.Duration `mapstructure:"backoff_base"    validate:"gt=0"`

	// Optional prompt template overrides; empty means the built-in templates.
	PostingPromptPath string `mapstructure:"posting_prompt_path" validate:"omitempty,file"`
	KitPromptPath     string `mapstructure:"kit_prompt_path"     validate:"omitempty,file"`
	// CompanyName appears in the posting's equal opportunity statement.
	CompanyName string `mapstructure:"company_name" validate:"max=100"`
}

// RateLimitConfig controls the per-client admission gate.
type RateLimitConfig struct {
	MaxRequests   int           `mapstructure:"max_requests"   validate:"gte=1"`
	Window        time.Duration `mapstructure:"window"         validate:"gt=0"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"gt=0"`
}
