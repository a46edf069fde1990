package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/mathia/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped as
// caller → rate limit → retry → event log → backend.
// repo and logger may be nil.
func NewProvider(ctx context.Context, cfg Config, repo store.EventRepo, logger *slog.Logger) (Provider, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	logger.Debug("llm provider ready", "provider", cfg.Provider, "model", base.ModelID())

	p := WithEventLog(base, cfg.Provider, repo, logger)
	p = WithRetry(p, cfg.Retry, logger)
	p = WithRateLimit(p, cfg.RatePerMinute)
	return p, nil
}

// NewProviderFromEnv resolves the configuration from MATHIA_* variables,
// falling back to the vendors' standard key variables, and builds the
// provider. It returns ErrNotConfigured when no credentials are found.
func NewProviderFromEnv(ctx context.Context, repo store.EventRepo, logger *slog.Logger) (Provider, Config, error) {
	cfg := ConfigFromEnv()
	if !cfg.hasKey() {
		discovered, ok := DiscoverConfig()
		if !ok {
			return nil, cfg, ErrNotConfigured
		}
		discovered.RatePerMinute = cfg.RatePerMinute
		discovered.Timeout = cfg.Timeout
		cfg = discovered
	}
	if err := cfg.Validate(); err != nil {
		return nil, cfg, err
	}
	p, err := NewProvider(ctx, cfg, repo, logger)
	return p, cfg, err
}
