// Package llm provides the language model gateway used by the interviewer and
// the retry executor that wraps every upstream call.
package llm

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is any OpenAI-compatible chat completions API (Groq, OpenRouter, OpenAI)
	ProviderOpenAI Provider = "openai"
)

// Default model identifiers per provider
const (
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultOpenAIModel = "llama-3.3-70b-versatile"
)

// DefaultOpenAIBaseURL points at Groq's OpenAI-compatible endpoint.
const DefaultOpenAIBaseURL = "https://api.groq.com/openai/v1"

// Config holds the gateway configuration for the application
type Config struct {
	Provider Provider
	Model    string
	BaseURL  string // only used by ProviderOpenAI
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Model:    DefaultGeminiModel,
	}
}

// DefaultOpenAIConfig returns the default OpenAI-compatible configuration
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Model:    DefaultOpenAIModel,
		BaseURL:  DefaultOpenAIBaseURL,
	}
}

// ResolveModel returns the configured model or the provider default.
func (c *Config) ResolveModel() string {
	if c.Model != "" {
		return c.Model
	}
	if c.Provider == ProviderOpenAI {
		return DefaultOpenAIModel
	}
	return DefaultGeminiModel
}

// WithModel returns a copy of the config with a different model
func (c *Config) WithModel(model string) *Config {
	newConfig := *c
	newConfig.Model = model
	return &newConfig
}
