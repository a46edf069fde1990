// Package session implements the quiz, exam, practice and tutor session
// engine. An Engine owns at most one active session, routes the learner's
// answers to it and reports progress through a Sink.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/mathia/internal/knowledge"
	"github.com/abhisek/mathia/internal/store"
)

// Sink receives the engine's messages. Emit is called with the engine lock
// held and must not call back into the engine.
type Sink interface {
	Emit(text string)
}

// Verdict is the grader's assessment of a practice answer.
type Verdict struct {
	// Text is the feedback shown to the learner.
	Text string

	// Correct is the structured judgement. Only meaningful when Judged.
	Correct bool

	// Judged is false when the grader could only produce prose; the engine
	// then falls back to Config.AffirmingKeywords.
	Judged bool
}

// Grader evaluates a free-text practice answer.
type Grader interface {
	Evaluate(ctx context.Context, prompt, answer string) (Verdict, error)
}

// MasteryRecorder persists mastered topics.
type MasteryRecorder interface {
	MarkMastered(ctx context.Context, topic string) error
}

// EventLog journals session lifecycle events.
type EventLog interface {
	AppendSessionEvent(ctx context.Context, data store.SessionEventData) error
}

// Bank is the part of the knowledge base the engine reads.
type Bank interface {
	Quiz(topic string) []knowledge.QuizQuestion
	Practice(topic string) []knowledge.PracticeExercise
	LessonTitle(topic string) string
}

// Options wires an Engine. Bank and Sink are required; every other field has
// a usable default.
type Options struct {
	Config  Config
	Bank    Bank
	Sink    Sink
	Grader  Grader
	Mastery MasteryRecorder
	Events  EventLog
	Ticker  Ticker
	Rand    *rand.Rand
	Now     func() time.Time
	Logger  *slog.Logger
}

// Engine is the session state machine. It is safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	cfg     Config
	bank    Bank
	sink    Sink
	grader  Grader
	mastery MasteryRecorder
	events  EventLog
	ticker  Ticker
	rng     *rand.Rand
	now     func() time.Time
	logger  *slog.Logger

	mode      Mode
	sessionID string
	startedAt time.Time

	// gen increments whenever a session starts or stops; callbacks carrying
	// an older generation are discarded.
	gen uint64

	quiz     *quizState
	exam     *examState
	practice *practiceState

	stopTimer func()
	last      *Result
}

// NewEngine creates an idle engine.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		cfg:     opts.Config.withDefaults(),
		bank:    opts.Bank,
		sink:    opts.Sink,
		grader:  opts.Grader,
		mastery: opts.Mastery,
		events:  opts.Events,
		ticker:  opts.Ticker,
		rng:     opts.Rand,
		now:     opts.Now,
		logger:  opts.Logger,
	}
	if e.ticker == nil {
		e.ticker = RealTicker{}
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Mode returns the current mode.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Status returns a snapshot of the active session.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{Mode: e.mode, SessionID: e.sessionID}
	switch e.mode {
	case ModeQuiz:
		q := e.quiz
		st.Topic, st.Cursor, st.Score, st.Difficulty = q.topic, q.cursor, q.score, q.difficulty
		st.Total = len(q.pool)
		if q.adaptive && st.Total > e.cfg.QuestionCap {
			st.Total = e.cfg.QuestionCap
		}
	case ModeExam:
		x := e.exam
		st.Topic, st.Cursor, st.Total, st.Remaining = x.topic, x.cursor, len(x.questions), x.remaining
	case ModePractice:
		p := e.practice
		st.Topic, st.Cursor, st.Total = p.topic, p.cursor, len(p.exercises)
		st.Attempts, st.Grading = p.attempts, p.grading
	}
	return st
}

// LastResult returns the summary of the most recently finished quiz or exam.
func (e *Engine) LastResult() (Result, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.last == nil {
		return Result{}, false
	}
	return *e.last, true
}

// Submit routes text to the active quiz, exam or practice session. It
// returns false when no such session is active and the caller should
// interpret the text itself.
func (e *Engine) Submit(ctx context.Context, text string) bool {
	switch e.Mode() {
	case ModeQuiz:
		e.SubmitQuizAnswer(ctx, text)
	case ModeExam:
		e.SubmitExamAnswer(ctx, text)
	case ModePractice:
		e.SubmitPracticeAnswer(ctx, text)
	default:
		return false
	}
	return true
}

// StartTutor abandons any session and enters tutor mode.
func (e *Engine) StartTutor(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.abandonLocked(ctx)
	e.begin(ctx, ModeTutor, "")
	e.emit("Bien sûr ! Montre-moi une photo de ton exercice ou décris-le moi. Je vais te guider.")
}

// Abandon leaves the active session without a summary and cancels the exam
// countdown.
func (e *Engine) Abandon(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.abandonLocked(ctx)
}

func (e *Engine) abandonLocked(ctx context.Context) {
	if e.mode == ModeIdle {
		return
	}
	e.journal(ctx, store.SessionEventData{Action: store.ActionAbandon})
	e.toIdle()
}

// begin switches to mode with a fresh session id.
func (e *Engine) begin(ctx context.Context, mode Mode, topic string) {
	e.gen++
	e.mode = mode
	e.sessionID = uuid.New().String()
	e.startedAt = e.now()
	e.journal(ctx, store.SessionEventData{Action: store.ActionStart, Topic: topic})
}

// toIdle stops the countdown and drops every session payload.
func (e *Engine) toIdle() {
	e.cancelTimer()
	e.gen++
	e.mode = ModeIdle
	e.quiz, e.exam, e.practice = nil, nil, nil
}

func (e *Engine) cancelTimer() {
	if e.stopTimer != nil {
		e.stopTimer()
		e.stopTimer = nil
	}
}

func (e *Engine) emit(text string) {
	if e.sink != nil {
		e.sink.Emit(text)
	}
}

func (e *Engine) emitf(format string, args ...any) {
	e.emit(fmt.Sprintf(format, args...))
}

// journal appends a session event for the current session. Failures are
// logged; the journal never blocks a session.
func (e *Engine) journal(ctx context.Context, data store.SessionEventData) {
	if e.events == nil {
		return
	}
	data.SessionID = e.sessionID
	data.Mode = e.mode.String()
	if data.Topic == "" {
		data.Topic = e.currentTopic()
	}
	if err := e.events.AppendSessionEvent(ctx, data); err != nil {
		e.logger.Warn("session event not recorded", "action", data.Action, "error", err)
	}
}

func (e *Engine) currentTopic() string {
	switch {
	case e.quiz != nil:
		return e.quiz.topic
	case e.exam != nil:
		return e.exam.topic
	case e.practice != nil:
		return e.practice.topic
	}
	return ""
}

// markMastered records topic as mastered and journals it.
func (e *Engine) markMastered(ctx context.Context, topic string) {
	if e.mastery != nil {
		if err := e.mastery.MarkMastered(ctx, topic); err != nil {
			e.logger.Error("mastery not saved", "topic", topic, "error", err)
		}
	}
	e.journal(ctx, store.SessionEventData{Action: store.ActionMastered, Topic: topic, Mastered: true})
}

// percentage returns round(100 × score / total), or 0 for an empty session.
func percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(total)))
}

// reaches reports whether score/total is at least threshold percent. It
// compares the exact ratio, so rounding never lifts a session over a
// threshold.
func reaches(score, total, threshold int) bool {
	return total > 0 && score*100 >= threshold*total
}

// sameAnswer is the quiz and exam comparison: trimmed, case-insensitive
// equality.
func sameAnswer(submitted, expected string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(expected))
}

// containsAnswer is the adaptive quiz comparison: the trimmed submission
// contains the expected answer, case-insensitively.
func containsAnswer(submitted, expected string) bool {
	return strings.Contains(
		strings.ToLower(strings.TrimSpace(submitted)),
		strings.ToLower(strings.TrimSpace(expected)),
	)
}
