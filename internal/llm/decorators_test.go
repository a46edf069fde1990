package llm

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/mathia/internal/store"
)

// recordingRepo captures LLM events; the other EventRepo methods are not
// used by the decorators.
type recordingRepo struct {
	store.EventRepo
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.events = append(r.events, data)
	return r.err
}

func TestEventLog_RecordsSuccess(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`Bravo !`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 3},
	})
	repo := &recordingRepo{}
	p := WithEventLog(mock, ProviderGemini, repo, nil)

	ctx := WithPurpose(context.Background(), PurposePractice)
	_, err := p.Generate(ctx, Request{System: "sys", Messages: UserMessage("12")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("events = %d, want 1", len(repo.events))
	}
	ev := repo.events[0]
	if ev.Provider != "gemini" || ev.Model != "mock" || ev.Purpose != "practice" {
		t.Errorf("event = %+v", ev)
	}
	if !ev.Success || ev.InputTokens != 12 || ev.OutputTokens != 3 {
		t.Errorf("event = %+v, want success with 12/3 tokens", ev)
	}
	if !strings.Contains(ev.RequestBody, "[system]\nsys") || !strings.Contains(ev.RequestBody, "[user]\n12") {
		t.Errorf("RequestBody = %q", ev.RequestBody)
	}
	if ev.ResponseBody != "Bravo !" {
		t.Errorf("ResponseBody = %q", ev.ResponseBody)
	}
}

func TestEventLog_RecordsFailureAndSurvivesRepoError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	repo := &recordingRepo{err: errors.New("disk full")}
	p := WithEventLog(mock, ProviderOpenAI, repo, nil)

	_, err := p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
	if len(repo.events) != 1 || repo.events[0].Success || repo.events[0].ErrorMessage == "" {
		t.Errorf("events = %+v, want one failure", repo.events)
	}
}

func TestEventLog_NilRepo(t *testing.T) {
	p := WithEventLog(NewMockProvider(MockText("ok")), ProviderMock, nil, nil)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	mock := NewMockProvider()
	if p := WithRateLimit(mock, 0); p != Provider(mock) {
		t.Fatalf("WithRateLimit(0) wrapped the provider")
	}
}

func TestRateLimit_BurstThenRefuse(t *testing.T) {
	mock := NewMockProvider()
	for range 7 {
		mock.AddResponse(MockText("ok"))
	}
	p := WithRateLimit(mock, 60) // one per second, burst of 6

	for i := range 6 {
		if _, err := p.Generate(context.Background(), Request{}); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := p.Generate(ctx, Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("err = %v, want ErrRateLimit", err)
	}
	if rl.RetryAfter <= 0 {
		t.Errorf("RetryAfter = %v, want > 0", rl.RetryAfter)
	}
	if mock.CallCount() != 6 {
		t.Errorf("calls = %d, want 6", mock.CallCount())
	}
}

func TestRetry_NotConfiguredNotRetried(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: ErrNotConfigured}, MockText("ok"))
	p := WithRetry(mock, retryConfig(), nil)

	if _, err := p.Generate(context.Background(), Request{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"  Bonjour !\n", "Bonjour !"},
		{`"Révision de Pythagore"`, "Révision de Pythagore"},
		{`"unterminated`, `"unterminated`},
		{"", ""},
	}
	for _, tt := range tests {
		r := &Response{Content: json.RawMessage(tt.content)}
		if got := r.Text(); got != tt.want {
			t.Errorf("Text(%q) = %q, want %q", tt.content, got, tt.want)
		}
	}
	var nilResp *Response
	if nilResp.Text() != "" {
		t.Error("nil Response Text() not empty")
	}
}

func TestMockProvider_ValidatesSchema(t *testing.T) {
	schema := &Schema{Name: "mock-verdict", Definition: map[string]any{
		"type":       "object",
		"properties": map[string]any{"correct": map[string]any{"type": "boolean"}},
		"required":   []any{"correct"},
	}}
	mock := NewMockProvider(MockText("Parfait !"), MockJSON(map[string]any{"correct": true}))

	_, err := mock.Generate(context.Background(), Request{Schema: schema})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("err = %v, want ErrInvalidResponse", err)
	}
	if _, err := mock.Generate(context.Background(), Request{Schema: schema}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"MATHIA_LLM_PROVIDER", "MATHIA_GEMINI_API_KEY", "MATHIA_OPENAI_API_KEY",
		"MATHIA_ANTHROPIC_API_KEY", "MATHIA_OPENROUTER_API_KEY", "MATHIA_LLM_RATE_PER_MIN",
		"MATHIA_LLM_TIMEOUT", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
		"OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestConfigFromEnv(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("MATHIA_LLM_PROVIDER", "openrouter")
	t.Setenv("MATHIA_OPENROUTER_API_KEY", "sk-or")
	t.Setenv("MATHIA_OPENROUTER_MODEL", "meta-llama/llama-3-8b")
	t.Setenv("MATHIA_LLM_RATE_PER_MIN", "12")
	t.Setenv("MATHIA_LLM_TIMEOUT", "bogus")

	cfg := ConfigFromEnv()
	if cfg.Provider != ProviderOpenRouter || cfg.OpenRouter.APIKey != "sk-or" || cfg.OpenRouter.Model != "meta-llama/llama-3-8b" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.RatePerMinute != 12 {
		t.Errorf("RatePerMinute = %d, want 12", cfg.RatePerMinute)
	}
	if cfg.Timeout != DefaultConfig().Timeout {
		t.Errorf("Timeout = %v, want default", cfg.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestDiscoverConfig(t *testing.T) {
	clearLLMEnv(t)
	if _, ok := DiscoverConfig(); ok {
		t.Fatal("DiscoverConfig() found a provider in an empty environment")
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OPENAI_API_KEY", "sk-oa")
	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != ProviderOpenAI || cfg.OpenAI.APIKey != "sk-oa" {
		t.Errorf("DiscoverConfig() = %+v, %v, want openai", cfg, ok)
	}
}

func TestValidate_MissingKeyIsNotConfigured(t *testing.T) {
	err := Config{Provider: ProviderGemini}.Validate()
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
	if !strings.Contains(err.Error(), "MATHIA_GEMINI_API_KEY") {
		t.Errorf("err = %q, want the variable name", err)
	}
}

func TestNewProviderFromEnv_NotConfigured(t *testing.T) {
	clearLLMEnv(t)
	_, _, err := NewProviderFromEnv(context.Background(), nil, nil)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestNewProvider_Backends(t *testing.T) {
	tests := []struct {
		cfg   Config
		model string
	}{
		{Config{Provider: ProviderOpenAI, OpenAI: OpenAIConfig{APIKey: "k", Model: "gpt-4o-mini"}}, "gpt-4o-mini"},
		{Config{Provider: ProviderOpenRouter, OpenRouter: OpenRouterConfig{APIKey: "k", Model: "google/gemini-2.5-flash"}}, "google/gemini-2.5-flash"},
		{Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "k", Model: "claude-haiku"}}, "claude-haiku-4-5-20251001"},
		{Config{Provider: ProviderMock}, "mock"},
	}
	for _, tt := range tests {
		p, err := NewProvider(context.Background(), tt.cfg, nil, nil)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.cfg.Provider, err)
		}
		if p.ModelID() != tt.model {
			t.Errorf("%s: ModelID() = %q, want %q", tt.cfg.Provider, p.ModelID(), tt.model)
		}
	}

	if _, err := NewProvider(context.Background(), Config{Provider: "llama"}, nil, nil); err == nil {
		t.Error("unknown provider accepted")
	}
}

func TestLookupCost(t *testing.T) {
	if c := LookupCost("gemini-2.5-flash"); c == nil || c.InputPerMTok != 0.3 {
		t.Errorf("LookupCost(gemini-2.5-flash) = %+v", c)
	}
	if c := LookupCost("google/gemini-2.5-flash"); c == nil {
		t.Error("OpenRouter id not resolved")
	}
	if _, ok := EstimateCost("unknown-model", 10, 10); ok {
		t.Error("EstimateCost reported a price for an unknown model")
	}
	cost, ok := EstimateCost("gpt-4o-mini", 1_000_000, 1_000_000)
	if !ok || math.Abs(cost-0.75) > 1e-9 {
		t.Errorf("EstimateCost = %v, %v, want 0.75", cost, ok)
	}
}
