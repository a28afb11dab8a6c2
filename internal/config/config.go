// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/ratuser/inter-prep-GenAi/internal/interview"
	"github.com/ratuser/inter-prep-GenAi/internal/llm"
)

// Config holds all service configuration parsed from environment variables.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	LLM       LLMConfig
	Interview InterviewConfig
	CORS      CORSConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port            int           `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"90s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// DatabaseConfig points at PostgreSQL.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL"`
}

// RedisConfig enables the profile cache. An empty URL disables it.
type RedisConfig struct {
	URL        string        `env:"REDIS_URL"`
	ProfileTTL time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"10m"`
}

// Enabled reports whether a Redis URL was configured.
func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

// LLMConfig configures the language model gateway and its retry budget.
type LLMConfig struct {
	Provider string `env:"LLM_PROVIDER" envDefault:"gemini"`
	Model    string `env:"LLM_MODEL"`
	BaseURL  string `env:"LLM_BASE_URL"`

	APIKey       string `env:"LLM_API_KEY"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GroqAPIKey   string `env:"GROQ_API_KEY"`

	Temperature    float32       `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	QuestionTokens int           `env:"LLM_QUESTION_TOKENS" envDefault:"300"`
	SummaryTokens  int           `env:"LLM_SUMMARY_TOKENS" envDefault:"1000"`
	MaxRetries     int           `env:"LLM_MAX_RETRIES" envDefault:"3"`
	RetryBaseDelay time.Duration `env:"LLM_RETRY_BASE_DELAY" envDefault:"2s"`
	AttemptTimeout time.Duration `env:"LLM_ATTEMPT_TIMEOUT" envDefault:"15s"`
}

// ResolveAPIKey returns LLM_API_KEY, falling back to the provider-specific key.
func (c LLMConfig) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if llm.Provider(c.Provider) == llm.ProviderOpenAI {
		return c.GroqAPIKey
	}
	return c.GeminiAPIKey
}

// GatewayConfig builds the llm client configuration.
func (c LLMConfig) GatewayConfig() *llm.Config {
	var cfg *llm.Config
	if llm.Provider(c.Provider) == llm.ProviderOpenAI {
		cfg = llm.DefaultOpenAIConfig()
		if c.BaseURL != "" {
			cfg.BaseURL = c.BaseURL
		}
	} else {
		cfg = llm.DefaultGeminiConfig()
	}
	if c.Model != "" {
		cfg = cfg.WithModel(c.Model)
	}
	return cfg
}

// RetryConfig builds the retry executor configuration.
func (c LLMConfig) RetryConfig() llm.RetryConfig {
	return llm.RetryConfig{
		MaxRetries: c.MaxRetries,
		BaseDelay:  c.RetryBaseDelay,
	}
}

// WorstCaseRetryWait is the total backoff a fully throttled turn sleeps before
// failing, excluding gateway latency. Client timeouts should exceed it.
func (c LLMConfig) WorstCaseRetryWait() time.Duration {
	return c.RetryConfig().WorstCaseWait()
}

// RequestTimeout is the deadline a chat request needs to outlast a fully
// throttled turn: every backoff wait plus one gateway round trip per attempt.
func (c LLMConfig) RequestTimeout() time.Duration {
	attempts := c.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}
	return c.WorstCaseRetryWait() + time.Duration(attempts)*c.AttemptTimeout
}

// InterviewConfig tunes the interview controller.
type InterviewConfig struct {
	HistoryWindow int `env:"HISTORY_WINDOW" envDefault:"8"`
}

// ControllerOptions merges interview and gateway tuning into controller options.
func (c *Config) ControllerOptions() *interview.Options {
	return &interview.Options{
		HistoryWindow:  c.Interview.HistoryWindow,
		Model:          c.LLM.GatewayConfig().ResolveModel(),
		Temperature:    c.LLM.Temperature,
		QuestionTokens: c.LLM.QuestionTokens,
		SummaryTokens:  c.LLM.SummaryTokens,
	}
}

// writeMargin leaves room to flush a response after the request deadline.
const writeMargin = 5 * time.Second

// HTTPWriteTimeout returns HTTP_WRITE_TIMEOUT, raised when it would cut off a
// chat request before its retry budget is spent.
func (c *Config) HTTPWriteTimeout() time.Duration {
	floor := c.LLM.RequestTimeout() + writeMargin
	if c.Server.WriteTimeout < floor {
		return floor
	}
	return c.Server.WriteTimeout
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	Origins     []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:5174"`
	AllowVercel bool     `env:"CORS_ALLOW_VERCEL" envDefault:"true"`
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// SlogLevel parses Level, defaulting to info.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load parses environment variables into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges that env tags cannot express.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Server.Port)
	}
	switch llm.Provider(c.LLM.Provider) {
	case llm.ProviderGemini, llm.ProviderOpenAI:
	default:
		return fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", llm.ProviderGemini, llm.ProviderOpenAI, c.LLM.Provider)
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("LLM_MAX_RETRIES cannot be negative, got: %d", c.LLM.MaxRetries)
	}
	if c.LLM.RetryBaseDelay < 0 {
		return fmt.Errorf("LLM_RETRY_BASE_DELAY cannot be negative, got: %s", c.LLM.RetryBaseDelay)
	}
	if c.LLM.AttemptTimeout <= 0 {
		return fmt.Errorf("LLM_ATTEMPT_TIMEOUT must be positive, got: %s", c.LLM.AttemptTimeout)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2, got: %v", c.LLM.Temperature)
	}
	if c.Interview.HistoryWindow < 0 {
		return fmt.Errorf("HISTORY_WINDOW cannot be negative, got: %d", c.Interview.HistoryWindow)
	}
	return nil
}
