// Package tutor is the LLM collaborator: lessons, Socratic guidance,
// practice grading, chat titles and goal modules, all in the learner's
// chosen tutor personality.
package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/mathia/internal/history"
	"github.com/abhisek/mathia/internal/llm"
	"github.com/abhisek/mathia/internal/session"
)

// ErrEmptyResponse is returned when the model answered with nothing usable.
var ErrEmptyResponse = errors.New("tutor: empty response")

// PersonalitySource yields the current tutor personality.
type PersonalitySource interface {
	Personality(ctx context.Context) history.Personality
}

// Tutor wraps an llm.Provider with the tutor's prompts.
type Tutor struct {
	provider    llm.Provider
	personality PersonalitySource
	cfg         Config
	logger      *slog.Logger
}

// New creates a Tutor. personality and logger may be nil.
func New(provider llm.Provider, personality PersonalitySource, cfg Config, logger *slog.Logger) *Tutor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Tutor{provider: provider, personality: personality, cfg: cfg, logger: logger}
}

func (t *Tutor) persona(ctx context.Context) history.Personality {
	if t.personality == nil {
		return history.DefaultPersonality
	}
	return t.personality.Personality(ctx)
}

// text runs a prose request and returns the trimmed answer.
func (t *Tutor) text(ctx context.Context, req llm.Request) (string, error) {
	resp, err := t.provider.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	out := resp.Text()
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// Explain answers a free-form question with a lesson in HTML.
func (t *Tutor) Explain(ctx context.Context, query string) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeLesson)
	out, err := t.text(ctx, llm.Request{
		System:      SystemInstruction(ModeLesson, t.persona(ctx)),
		Messages:    llm.UserMessage(query),
		MaxTokens:   t.cfg.LessonMaxTokens,
		Temperature: t.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("explain: %w", err)
	}
	return out, nil
}

// Guide continues a tutoring conversation. transcript is the chat so far,
// oldest first, without query.
func (t *Tutor) Guide(ctx context.Context, transcript []history.Message, query string) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeTutor)

	msgs := toLLMMessages(transcript, t.cfg.HistoryWindow)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: buildGuideMessage(query)})

	out, err := t.text(ctx, llm.Request{
		System:      SystemInstruction(ModeTutor, t.persona(ctx)),
		Messages:    msgs,
		MaxTokens:   t.cfg.TutorMaxTokens,
		Temperature: t.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("guide: %w", err)
	}
	return out, nil
}

// toLLMMessages keeps the last window messages. Providers expect the
// conversation to open on a user turn, so leading tutor messages are
// dropped.
func toLLMMessages(transcript []history.Message, window int) []llm.Message {
	if window > 0 && len(transcript) > window {
		transcript = transcript[len(transcript)-window:]
	}
	var out []llm.Message
	for _, m := range transcript {
		role := llm.RoleUser
		if m.Sender == history.SenderAI {
			role = llm.RoleAssistant
		}
		if len(out) == 0 && role == llm.RoleAssistant {
			continue
		}
		out = append(out, llm.Message{Role: role, Content: m.Text})
	}
	return out
}

type verdictOutput struct {
	Correct  bool   `json:"correct"`
	Feedback string `json:"feedback"`
}

// Evaluate implements session.Grader. It asks for a structured verdict
// and, when the model cannot produce one, falls back to a prose answer the
// engine judges by keywords.
func (t *Tutor) Evaluate(ctx context.Context, prompt, answer string) (session.Verdict, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposePractice)
	system := SystemInstruction(ModePractice, t.persona(ctx))

	resp, err := t.provider.Generate(ctx, llm.Request{
		System:      system,
		Messages:    llm.UserMessage(buildEvaluationMessage(prompt, answer, true)),
		Schema:      VerdictSchema,
		MaxTokens:   t.cfg.PracticeMaxTokens,
		Temperature: t.cfg.Temperature,
	})
	if err == nil {
		var out verdictOutput
		if jerr := json.Unmarshal(resp.Content, &out); jerr == nil && strings.TrimSpace(out.Feedback) != "" {
			return session.Verdict{Text: strings.TrimSpace(out.Feedback), Correct: out.Correct, Judged: true}, nil
		}
		t.logger.Warn("practice verdict unreadable, asking for prose")
	} else {
		var inv *llm.ErrInvalidResponse
		if !errors.As(err, &inv) {
			return session.Verdict{}, fmt.Errorf("evaluate: %w", err)
		}
		t.logger.Warn("structured practice verdict rejected, asking for prose", "error", err)
	}

	text, err := t.text(ctx, llm.Request{
		System:      system,
		Messages:    llm.UserMessage(buildEvaluationMessage(prompt, answer, false)),
		MaxTokens:   t.cfg.PracticeMaxTokens,
		Temperature: t.cfg.Temperature,
	})
	if err != nil {
		return session.Verdict{}, fmt.Errorf("evaluate: %w", err)
	}
	return session.Verdict{Text: text}, nil
}

// Title summarizes a chat in a few words for the history list.
func (t *Tutor) Title(ctx context.Context, transcript []history.Message) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeTitle)
	out, err := t.text(ctx, llm.Request{
		Messages:  llm.UserMessage(buildTitleMessage(transcript)),
		MaxTokens: t.cfg.TitleMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("title: %w", err)
	}
	title := cleanTitle(out)
	if title == "" {
		return "", fmt.Errorf("title: %w", ErrEmptyResponse)
	}
	return title, nil
}

// cleanTitle keeps the first line and strips surrounding quotes.
func cleanTitle(s string) string {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "\n")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'«» *")
	return strings.TrimSpace(s)
}

// GoalModule generates a mini learning module for a goal title.
func (t *Tutor) GoalModule(ctx context.Context, goal string) (*Module, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeGoal)
	resp, err := t.provider.Generate(ctx, llm.Request{
		System:      moduleSystemPrompt,
		Messages:    llm.UserMessage(buildModuleMessage(goal)),
		Schema:      ModuleSchema,
		MaxTokens:   t.cfg.ModuleMaxTokens,
		Temperature: t.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("goal module: %w", err)
	}

	var env moduleEnvelope
	if err := json.Unmarshal(stripFences(resp.Content), &env); err != nil {
		return nil, fmt.Errorf("parse goal module: %w", err)
	}
	if env.Module == nil || env.Module.Title == "" {
		return nil, fmt.Errorf("goal module: %w", ErrEmptyResponse)
	}
	return env.Module, nil
}

// stripFences removes a Markdown code fence around a JSON document.
func stripFences(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return []byte(strings.TrimSpace(s))
}
