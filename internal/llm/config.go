package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Provider names accepted by Config.Provider and MATHIA_LLM_PROVIDER.
const (
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects the backend. See the Provider* constants.
	Provider string

	Gemini     GeminiConfig
	OpenAI     OpenAIConfig
	Anthropic  AnthropicConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// RatePerMinute caps outgoing requests client-side. Zero disables the
	// limiter.
	RatePerMinute int

	// Timeout bounds a single tutor call, retries included.
	Timeout time.Duration
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional, for OpenAI-compatible endpoints.
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.5-flash"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns the settings used when nothing is configured.
// Gemini is the default backend.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderGemini,
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.5-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     8 * time.Second,
			Multiplier:  2.0,
		},
		RatePerMinute: 30,
		Timeout:       45 * time.Second,
	}
}

// ConfigFromEnv builds a Config from MATHIA_* environment variables on top
// of DefaultConfig. Malformed numeric values are ignored.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	setString(&cfg.Provider, "MATHIA_LLM_PROVIDER")

	setString(&cfg.Gemini.APIKey, "MATHIA_GEMINI_API_KEY")
	setString(&cfg.Gemini.Model, "MATHIA_GEMINI_MODEL")

	setString(&cfg.OpenAI.APIKey, "MATHIA_OPENAI_API_KEY")
	setString(&cfg.OpenAI.Model, "MATHIA_OPENAI_MODEL")
	setString(&cfg.OpenAI.BaseURL, "MATHIA_OPENAI_BASE_URL")

	setString(&cfg.Anthropic.APIKey, "MATHIA_ANTHROPIC_API_KEY")
	setString(&cfg.Anthropic.Model, "MATHIA_ANTHROPIC_MODEL")

	setString(&cfg.OpenRouter.APIKey, "MATHIA_OPENROUTER_API_KEY")
	setString(&cfg.OpenRouter.Model, "MATHIA_OPENROUTER_MODEL")
	setString(&cfg.OpenRouter.BaseURL, "MATHIA_OPENROUTER_BASE_URL")

	if v := os.Getenv("MATHIA_LLM_RATE_PER_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.RatePerMinute = n
		}
	}
	if v := os.Getenv("MATHIA_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	return cfg
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DiscoverConfig probes the vendors' standard API key variables in the
// order Gemini, OpenAI, Anthropic, OpenRouter and returns a Config for the
// first one set. It returns false when none is.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	switch {
	case os.Getenv("GEMINI_API_KEY") != "":
		cfg.Provider = ProviderGemini
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	case os.Getenv("OPENAI_API_KEY") != "":
		cfg.Provider = ProviderOpenAI
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	case os.Getenv("ANTHROPIC_API_KEY") != "":
		cfg.Provider = ProviderAnthropic
		cfg.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case os.Getenv("OPENROUTER_API_KEY") != "":
		cfg.Provider = ProviderOpenRouter
		cfg.OpenRouter.APIKey = os.Getenv("OPENROUTER_API_KEY")
	default:
		return Config{}, false
	}
	return cfg, true
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	var key, env string
	switch c.Provider {
	case ProviderGemini:
		key, env = c.Gemini.APIKey, "MATHIA_GEMINI_API_KEY"
	case ProviderOpenAI:
		key, env = c.OpenAI.APIKey, "MATHIA_OPENAI_API_KEY"
	case ProviderAnthropic:
		key, env = c.Anthropic.APIKey, "MATHIA_ANTHROPIC_API_KEY"
	case ProviderOpenRouter:
		key, env = c.OpenRouter.APIKey, "MATHIA_OPENROUTER_API_KEY"
	case ProviderMock:
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%w: %s is required for the %s provider", ErrNotConfigured, env, c.Provider)
	}
	return nil
}

// hasKey reports whether the selected provider carries an API key.
func (c Config) hasKey() bool {
	return c.Validate() == nil
}
