package session

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/mathia/internal/knowledge"
	"github.com/abhisek/mathia/internal/store"
)

// --- fakes ---

type recordingSink struct {
	mu   sync.Mutex
	msgs []string
}

func (s *recordingSink) Emit(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, text)
}

func (s *recordingSink) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.msgs...)
}

func (s *recordingSink) last() string {
	msgs := s.all()
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}

func (s *recordingSink) count(substr string) int {
	n := 0
	for _, m := range s.all() {
		n += strings.Count(m, substr)
	}
	return n
}

type fakeBank struct {
	quiz     map[string][]knowledge.QuizQuestion
	practice map[string][]knowledge.PracticeExercise
}

func (b *fakeBank) Quiz(topic string) []knowledge.QuizQuestion {
	return append([]knowledge.QuizQuestion(nil), b.quiz[topic]...)
}

func (b *fakeBank) Practice(topic string) []knowledge.PracticeExercise {
	return append([]knowledge.PracticeExercise(nil), b.practice[topic]...)
}

func (b *fakeBank) LessonTitle(topic string) string {
	return strings.ToUpper(topic)
}

type manualTicker struct {
	mu      sync.Mutex
	fn      func()
	stopped bool
	starts  int
}

func (t *manualTicker) Start(_ time.Duration, fn func()) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fn, t.stopped = fn, false
	t.starts++
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.stopped = true
	}
}

// fire invokes the registered callback n times, as long as it is running.
func (t *manualTicker) fire(n int) {
	for range n {
		t.mu.Lock()
		fn, stopped := t.fn, t.stopped
		t.mu.Unlock()
		if fn == nil || stopped {
			return
		}
		fn()
	}
}

type scriptedGrader struct {
	verdicts []Verdict
	errs     []error
	calls    int
}

func (g *scriptedGrader) Evaluate(_ context.Context, _, _ string) (Verdict, error) {
	i := g.calls
	g.calls++
	var err error
	if i < len(g.errs) {
		err = g.errs[i]
	}
	if err != nil {
		return Verdict{}, err
	}
	if i < len(g.verdicts) {
		return g.verdicts[i], nil
	}
	return Verdict{Text: "Essaie encore.", Judged: true}, nil
}

type countingMastery struct {
	calls  int
	topics []string
}

func (m *countingMastery) MarkMastered(_ context.Context, topic string) error {
	m.calls++
	m.topics = append(m.topics, topic)
	return nil
}

type eventRecorder struct {
	events []store.SessionEventData
}

func (r *eventRecorder) AppendSessionEvent(_ context.Context, data store.SessionEventData) error {
	r.events = append(r.events, data)
	return nil
}

func (r *eventRecorder) actions() []string {
	var out []string
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

// --- helpers ---

const topic = "pythagore"

func q(d knowledge.Difficulty, prompt, answer string) knowledge.QuizQuestion {
	return knowledge.QuizQuestion{Difficulty: d, Prompt: prompt, Answer: answer, Explanation: "Explication " + prompt}
}

// mixedBank has 2 easy, 2 medium and 1 hard question whose answers are the
// prompt prefixed with "r-".
func mixedBank() *fakeBank {
	return &fakeBank{
		quiz: map[string][]knowledge.QuizQuestion{
			topic: {
				q(knowledge.Easy, "e1", "r-e1"),
				q(knowledge.Easy, "e2", "r-e2"),
				q(knowledge.Medium, "m1", "r-m1"),
				q(knowledge.Medium, "m2", "r-m2"),
				q(knowledge.Hard, "h1", "r-h1"),
			},
		},
		practice: map[string][]knowledge.PracticeExercise{
			topic: {{Prompt: "p1"}, {Prompt: "p2"}},
		},
	}
}

type harness struct {
	engine  *Engine
	sink    *recordingSink
	ticker  *manualTicker
	mastery *countingMastery
	events  *eventRecorder
	clock   time.Time
}

func newHarness(t *testing.T, cfg Config, bank Bank, grader Grader) *harness {
	t.Helper()
	h := &harness{
		sink:    &recordingSink{},
		ticker:  &manualTicker{},
		mastery: &countingMastery{},
		events:  &eventRecorder{},
		clock:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	h.engine = NewEngine(Options{
		Config:  cfg,
		Bank:    bank,
		Sink:    h.sink,
		Grader:  grader,
		Mastery: h.mastery,
		Events:  h.events,
		Ticker:  h.ticker,
		Rand:    rand.New(rand.NewPCG(1, 2)),
		Now:     func() time.Time { return h.clock },
	})
	return h
}

// pendingPrompt extracts the prompt of the last "<strong>Question N :</strong>" message.
func (h *harness) pendingPrompt(t *testing.T) string {
	t.Helper()
	msgs := h.sink.all()
	for i := len(msgs) - 1; i >= 0; i-- {
		if _, after, ok := strings.Cut(msgs[i], ":</strong> "); ok && strings.HasPrefix(msgs[i], "<strong>Question") {
			return after
		}
	}
	t.Fatal("no pending question")
	return ""
}

// --- quiz ---

func TestStartQuiz_Active(t *testing.T) {
	h := newHarness(t, DefaultConfig(), mixedBank(), nil)
	ctx := context.Background()

	h.engine.StartQuiz(ctx, topic)

	st := h.engine.Status()
	if st.Mode != ModeQuiz {
		t.Fatalf("Mode = %v, want quiz", st.Mode)
	}
	if st.Cursor != 0 || st.Score != 0 {
		t.Errorf("Cursor, Score = %d, %d, want 0, 0", st.Cursor, st.Score)
	}
	if st.SessionID == "" {
		t.Error("SessionID is empty")
	}
	msgs := h.sink.all()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2: %q", len(msgs), msgs)
	}
	if want := `Excellent choix ! Commençons un quiz sur "pythagore". Prêt(e) ?`; msgs[0] != want {
		t.Errorf("start message = %q, want %q", msgs[0], want)
	}
	if want := "<strong>Question 1 :</strong> m1"; msgs[1] != want {
		t.Errorf("first question = %q, want %q", msgs[1], want)
	}
}

func TestStartQuiz_UnknownTopic(t *testing.T) {
	h := newHarness(t, DefaultConfig(), mixedBank(), nil)

	h.engine.StartQuiz(context.Background(), "thalès")

	if h.engine.Mode() != ModeIdle {
		t.Errorf("Mode = %v, want idle", h.engine.Mode())
	}
	msgs := h.sink.all()
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if want := `Désolé, je n'ai pas de quiz de difficulté 'medium' pour "thalès".`; msgs[0] != want {
		t.Errorf("message = %q, want %q", msgs[0], want)
	}
	if len(h.events.events) != 0 {
		t.Errorf("events = %v, want none", h.events.actions())
	}
}

func TestAdaptiveQuiz_UnknownTopicMessage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Adaptive = true
	h := newHarness(t, cfg, mixedBank(), nil)

	h.engine.StartQuiz(context.Background(), "thalès")

	if h.engine.Mode() != ModeIdle {
		t.Errorf("Mode = %v, want idle", h.engine.Mode())
	}
	if want := `Désolé, je n'ai pas de quiz pour "thalès".`; h.sink.last() != want {
		t.Errorf("message = %q, want %q", h.sink.last(), want)
	}
}

func TestSubmitQuizAnswer_ExactAnswerScoresOnce(t *testing.T) {
	h := newHarness(t, DefaultConfig(), mixedBank(), nil)
	ctx := context.Background()
	h.engine.StartQuiz(ctx, topic)

	h.engine.SubmitQuizAnswer(ctx, "   R-M1  ")
	if got := h.engine.Status().Score; got != 1 {
		t.Fatalf("Score = %d, want 1", got)
	}
	if !contains(h.sink.all(), "Bonne réponse ! 👍") {
		t.Error("missing praise message")
	}
	if !contains(h.sink.all(), "Explication m1") {
		t.Error("missing explanation")
	}

	h.engine.SubmitQuizAnswer(ctx, "r-m2 je crois")
	if h.engine.Mode() != ModeIdle {
		t.Fatalf("Mode = %v, want idle after the last question", h.engine.Mode())
	}
	res, ok := h.engine.LastResult()
	if !ok {
		t.Fatal("no result")
	}
	if res.Score != 1 {
		t.Errorf("Score = %d, want 1", res.Score)
	}
	if !contains(h.sink.all(), "Ce n'est pas tout à fait ça. La bonne réponse était : <strong>r-m2</strong>.") {
		t.Error("missing correction message")
	}
}

func TestSubmitQuizAnswer_NoPendingQuestion(t *testing.T) {
	h := newHarness(t, DefaultConfig(), mixedBank(), nil)

	h.engine.SubmitQuizAnswer(context.Background(), "r-m1")

	if len(h.sink.all()) != 0 {
		t.Errorf("messages = %q, want none", h.sink.all())
	}
}

func TestFixedQuiz_MediumOnly(t *testing.T) {
	h := newHarness(t, DefaultConfig(), mixedBank(), nil)
	ctx := context.Background()
	h.engine.StartQuiz(ctx, topic)

	if got := h.engine.Status().Total; got != 2 {
		t.Fatalf("Total = %d, want 2", got)
	}
	h.engine.SubmitQuizAnswer(ctx, "r-m1")
	h.engine.SubmitQuizAnswer(ctx, "faux")

	res, ok := h.engine.LastResult()
	if !ok {
		t.Fatal("no result")
	}
	if res.Score != 1 || res.Total != 2 || res.Percentage != 50 {
		t.Errorf("result = %d/%d (%d%%), want 1/2 (50%%)", res.Score, res.Total, res.Percentage)
	}
	if res.Mastered {
		t.Error("Mastered = true, want false")
	}
	if h.mastery.calls != 0 {
		t.Errorf("mastery calls = %d, want 0", h.mastery.calls)
	}
	want := "Quiz terminé ! Tu as obtenu <strong>1 sur 2</strong> (50%). Pas mal ! Continue de t'entraîner pour devenir un expert."
	if got := h.sink.last(); got != want {
		t.Errorf("summary = %q, want %q", got, want)
	}
}

func TestFixedQuiz_MasteryAtThreshold(t *testing.T) {
	bank := &fakeBank{quiz: map[string][]knowledge.QuizQuestion{topic: {
		q(knowledge.Medium, "a", "1"),
		q(knowledge.Medium, "b", "2"),
		q(knowledge.Medium, "c", "3"),
		q(knowledge.Medium, "d", "4"),
		q(knowledge.Medium, "e", "5"),
	}}}
	tests := []struct {
		name     string
		answers  []string
		mastered bool
	}{
		{"four of five", []string{"1", "2", "3", "4", "x"}, true},
		{"three of five", []string{"1", "2", "3", "x", "x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, DefaultConfig(), bank, nil)
			ctx := context.Background()
			h.engine.StartQuiz(ctx, topic)
			for _, a := range tt.answers {
				h.engine.SubmitQuizAnswer(ctx, a)
			}
			res, _ := h.engine.LastResult()
			if res.Mastered != tt.mastered {
				t.Errorf("Mastered = %v, want %v", res.Mastered, tt.mastered)
			}
			wantCalls := 0
			if tt.mastered {
				wantCalls = 1
			}
			if h.mastery.calls != wantCalls {
				t.Errorf("mastery calls = %d, want %d", h.mastery.calls, wantCalls)
			}
		})
	}
}

func TestAdaptiveQuiz_DifficultyStaysInRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Adaptive = true
	cfg.QuestionCap = 5
	valid := map[knowledge.Difficulty]bool{knowledge.Easy: true, knowledge.Medium: true, knowledge.Hard: true}

	for seed := uint64(0); seed < 20; seed++ {
		h := newHarness(t, cfg, mixedBank(), nil)
		h.engine.rng = rand.New(rand.NewPCG(seed, seed))
		ctx := context.Background()
		h.engine.StartQuiz(ctx, topic)

		seen := map[string]bool{}
		for i := 0; h.engine.Mode() == ModeQuiz; i++ {
			st := h.engine.Status()
			if !valid[st.Difficulty] {
				t.Fatalf("seed %d: Difficulty = %q", seed, st.Difficulty)
			}
			prompt := h.pendingPrompt(t)
			if seen[prompt] {
				t.Fatalf("seed %d: %q asked twice", seed, prompt)
			}
			seen[prompt] = true
			answer := "faux"
			if i%2 == 0 {
				answer = "c'est r-" + prompt
			}
			h.engine.SubmitQuizAnswer(ctx, answer)
		}
		if len(seen) != 5 {
			t.Errorf("seed %d: asked %d questions, want 5", seed, len(seen))
		}
	}
}

func TestAdaptiveQuiz_PromotesAndDemotes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Adaptive = true
	h := newHarness(t, cfg, mixedBank(), nil)
	ctx := context.Background()
	h.engine.StartQuiz(ctx, topic)

	if got := h.engine.Status().Difficulty; got != knowledge.Medium {
		t.Fatalf("initial Difficulty = %q, want medium", got)
	}
	h.engine.SubmitQuizAnswer(ctx, "r-"+h.pendingPrompt(t))
	if got := h.engine.Status().Difficulty; got != knowledge.Hard {
		t.Errorf("after correct answer Difficulty = %q, want hard", got)
	}
	if got := h.pendingPrompt(t); got != "h1" {
		t.Errorf("next prompt = %q, want h1", got)
	}
	h.engine.SubmitQuizAnswer(ctx, "faux")
	if got := h.engine.Status().Difficulty; got != knowledge.Medium {
		t.Errorf("after wrong answer Difficulty = %q, want medium", got)
	}
}

func TestStartQuiz_AbandonsRunningSession(t *testing.T) {
	h := newHarness(t, DefaultConfig(), mixedBank(), nil)
	ctx := context.Background()
	h.engine.StartExam(ctx, topic)
	first := h.engine.Status().SessionID

	h.engine.StartQuiz(ctx, topic)

	if h.engine.Mode() != ModeQuiz {
		t.Fatalf("Mode = %v, want quiz", h.engine.Mode())
	}
	if h.engine.Status().SessionID == first {
		t.Error("SessionID unchanged after restart")
	}
	h.ticker.fire(1000)
	if h.sink.count("Le temps est écoulé !") != 0 {
		t.Error("abandoned exam countdown fired")
	}
	want := []string{store.ActionStart, store.ActionAbandon, store.ActionStart}
	if got := h.events.actions(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("actions = %v, want %v", got, want)
	}
}

// --- exam ---

func answerAll(t *testing.T, h *harness, correct int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; h.engine.Mode() == ModeExam; i++ {
		answer := "faux"
		if i < correct {
			answer = " R-" + h.pendingPrompt(t)
		}
		h.engine.SubmitExamAnswer(ctx, answer)
	}
}

func TestStartExam(t *testing.T) {
	h := newHarness(t, DefaultConfig(), mixedBank(), nil)
	h.engine.StartExam(context.Background(), topic)

	st := h.engine.Status()
	if st.Mode != ModeExam {
		t.Fatalf("Mode = %v, want exam", st.Mode)
	}
	if st.Total != 5 {
		t.Errorf("Total = %d, want 5", st.Total)
	}
	if st.Remaining != 300 {
		t.Errorf("Remaining = %d, want 300", st.Remaining)
	}
	if h.ticker.starts != 1 {
		t.Errorf("ticker starts = %d, want 1", h.ticker.starts)
	}
	msgs := h.sink.all()
	if want := `L'examen sur "<strong>PYTHAGORE</strong>" commence. Vous avez 5 minutes. Bonne chance !`; msgs[0] != want {
		t.Errorf("start message = %q, want %q", msgs[0], want)
	}
	if !strings.HasPrefix(msgs[1], "<strong>Question 1 :</strong> ") {
		t.Errorf("first question = %q", msgs[1])
	}
}

func TestStartExam_SampleIsDistinctAndCapped(t *testing.T) {
	var questions []knowledge.QuizQuestion
	for i := range 12 {
		p := string(rune('a' + i))
		questions = append(questions, q(knowledge.Easy, p, "r-"+p))
	}
	bank := &fakeBank{quiz: map[string][]knowledge.QuizQuestion{topic: questions}}
	h := newHarness(t, DefaultConfig(), bank, nil)
	ctx := context.Background()
	h.engine.StartExam(ctx, topic)

	seen := map[string]bool{}
	for h.engine.Mode() == ModeExam {
		p := h.pendingPrompt(t)
		if seen[p] {
			t.Fatalf("%q sampled twice", p)
		}
		seen[p] = true
		h.engine.SubmitExamAnswer(ctx, "")
	}
	if len(seen) != 5 {
		t.Errorf("sampled %d questions, want 5", len(seen))
	}
}

func TestStartExam_Empty(t *testing.T) {
	h := newHarness(t, DefaultConfig(), mixedBank(), nil)
	h.engine.StartExam(context.Background(), "thalès")

	if h.engine.Mode() != ModeIdle {
		t.Errorf("Mode = %v, want idle", h.engine.Mode())
	}
	if got, want := h.sink.all(), `Désolé, je n'ai pas de questions pour un examen sur "thalès".`; len(got) != 1 || got[0] != want {
		t.Errorf("messages = %q, want [%q]", got, want)
	}
	if h.ticker.starts != 0 {
		t.Error("countdown started for an empty exam")
	}
}

func TestExam_MasteryThreshold(t *testing.T) {
	tests := []struct {
		correct  int
		pct      int
		passed   bool
		mastered bool
	}{
		{5, 100, true, true},
		{4, 80, true, true},
		{3, 60, true, false},
		{2, 40, false, false},
	}
	for _, tt := range tests {
		h := newHarness(t, DefaultConfig(), mixedBank(), nil)
		h.engine.StartExam(context.Background(), topic)
		answerAll(t, h, tt.correct)

		res, ok := h.engine.LastResult()
		if !ok {
			t.Fatalf("%d correct: no result", tt.correct)
		}
		if res.Score != tt.correct || res.Percentage != tt.pct {
			t.Errorf("%d correct: result = %d (%d%%), want %d (%d%%)", tt.correct, res.Score, res.Percentage, tt.correct, tt.pct)
		}
		if res.Mastered != tt.mastered {
			t.Errorf("%d correct: Mastered = %v, want %v", tt.correct, res.Mastered, tt.mastered)
		}
		verdict := "Échoué"
		if tt.passed {
			verdict = "Réussi"
		}
		if h.sink.count(verdict) != 1 {
			t.Errorf("%d correct: %q not in report", tt.correct, verdict)
		}
		if got := h.sink.count("Félicitations, vous avez maîtrisé ce sujet !"); (got == 1) != tt.mastered {
			t.Errorf("%d correct: congratulations count = %d", tt.correct, got)
		}
		if got := h.sink.count("Réponse correcte : "); got != 5-tt.correct {
			t.Errorf("%d correct: corrections = %d, want %d", tt.correct, got, 5-tt.correct)
		}
	}
}

func TestEndExam_Idempotent(t *testing.T) {
	h := newHarness(t, DefaultConfig(), mixedBank(), nil)
	ctx := context.Background()
	h.engine.StartExam(ctx, topic)
	for range 4 {
		h.engine.SubmitExamAnswer(ctx, "r-"+h.pendingPrompt(t))
	}

	h.engine.EndExam(ctx, false)
	h.engine.EndExam(ctx, false)
	h.engine.EndExam(ctx, true)

	if got := h.sink.count("Résultats de l'examen"); got != 1 {
		t.Errorf("summaries = %d, want 1", got)
	}
	if h.mastery.calls != 1 {
		t.Errorf("mastery calls = %d, want 1", h.mastery.calls)
	}
	if got := h.sink.count("(Pas de réponse)"); got != 1 {
		t.Errorf("unanswered = %d, want 1", got)
	}
}

func TestExam_CountdownTimesOut(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExamTimeLimit = 3 * time.Second
	h := newHarness(t, cfg, mixedBank(), nil)
	ctx := context.Background()
	h.engine.StartExam(ctx, topic)
	h.engine.SubmitExamAnswer(ctx, "r-"+h.pendingPrompt(t))

	h.ticker.fire(2)
	if got := h.engine.Status().Remaining; got != 1 {
		t.Fatalf("Remaining = %d, want 1", got)
	}
	h.clock = h.clock.Add(65 * time.Second)
	h.ticker.fire(10)

	if h.engine.Mode() != ModeIdle {
		t.Fatalf("Mode = %v, want idle", h.engine.Mode())
	}
	if got := h.sink.count("Le temps est écoulé !"); got != 1 {
		t.Errorf("timeout messages = %d, want 1", got)
	}
	if got := h.sink.count("(Pas de réponse)"); got != 4 {
		t.Errorf("unanswered = %d, want 4", got)
	}
	if got := h.sink.count("1m 5s"); got != 1 {
		t.Errorf("elapsed not reported as 1m 5s: %q", h.sink.all())
	}
	res, _ := h.engine.LastResult()
	if !res.TimedOut || res.Score != 1 || res.Total != 5 {
		t.Errorf("result = %+v, want timed out 1/5", res)
	}
	var ends int
	for _, e := range h.events.events {
		if e.Action == store.ActionEnd {
			ends++
			if !e.TimedOut {
				t.Error("end event not flagged timed out")
			}
		}
	}
	if ends != 1 {
		t.Errorf("end events = %d, want 1", ends)
	}
}

func TestExam_StaleTickIgnored(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExamTimeLimit = 2 * time.Second
	h := newHarness(t, cfg, mixedBank(), nil)
	ctx := context.Background()
	h.engine.StartExam(ctx, topic)
	h.ticker.mu.Lock()
	stale := h.ticker.fn
	h.ticker.mu.Unlock()

	h.engine.Abandon(ctx)
	h.engine.StartExam(ctx, topic)
	stale()
	stale()

	if got := h.engine.Status().Remaining; got != 2 {
		t.Errorf("Remaining = %d, want 2", got)
	}
	if h.engine.Mode() != ModeExam {
		t.Errorf("Mode = %v, want exam", h.engine.Mode())
	}
}

// --- practice ---

func TestPractice_AdvancesOnJudgedVerdict(t *testing.T) {
	g := &scriptedGrader{verdicts: []Verdict{
		{Text: "Pas encore, regarde l'hypoténuse.", Judged: true, Correct: false},
		{Text: "Bravo !", Judged: true, Correct: true},
		{Text: "Très bien.", Judged: true, Correct: true},
	}}
	h := newHarness(t, DefaultConfig(), mixedBank(), g)
	ctx := context.Background()
	h.engine.StartPractice(ctx, topic)

	if got := h.sink.all()[0]; got != `Mode entraînement activé pour "pythagore". Allons-y !` {
		t.Errorf("start message = %q", got)
	}
	h.engine.SubmitPracticeAnswer(ctx, "12")
	st := h.engine.Status()
	if st.Cursor != 0 || st.Attempts != 1 {
		t.Errorf("Cursor, Attempts = %d, %d, want 0, 1", st.Cursor, st.Attempts)
	}

	h.engine.SubmitPracticeAnswer(ctx, "13")
	if got := h.engine.Status().Cursor; got != 1 {
		t.Errorf("Cursor = %d, want 1", got)
	}
	if !strings.HasPrefix(h.sink.last(), "<strong>Exercice 2 :</strong> ") {
		t.Errorf("last message = %q", h.sink.last())
	}

	h.engine.SubmitPracticeAnswer(ctx, "5")
	if h.engine.Mode() != ModeIdle {
		t.Errorf("Mode = %v, want idle", h.engine.Mode())
	}
	want := "Super séance d'entraînement ! Tu t'es bien débrouillé. N'hésite pas si tu veux faire d'autres exercices."
	if got := h.sink.last(); got != want {
		t.Errorf("end message = %q, want %q", got, want)
	}
}

func TestPractice_KeywordFallback(t *testing.T) {
	tests := []struct {
		text    string
		advance bool
	}{
		{"C'est PARFAIT, bien joué.", true},
		{"Exactement !", true},
		{"Ta réponse est correcte.", true},
		{"Presque, vérifie ton calcul.", false},
	}
	for _, tt := range tests {
		g := &scriptedGrader{verdicts: []Verdict{{Text: tt.text}}}
		h := newHarness(t, DefaultConfig(), mixedBank(), g)
		ctx := context.Background()
		h.engine.StartPractice(ctx, topic)
		h.engine.SubmitPracticeAnswer(ctx, "x")

		if got := h.engine.Status().Cursor == 1; got != tt.advance {
			t.Errorf("%q: advanced = %v, want %v", tt.text, got, tt.advance)
		}
	}
}

func TestPractice_GraderErrorDoesNotAdvance(t *testing.T) {
	g := &scriptedGrader{errs: []error{errors.New("boom")}}
	h := newHarness(t, DefaultConfig(), mixedBank(), g)
	ctx := context.Background()
	h.engine.StartPractice(ctx, topic)

	h.engine.SubmitPracticeAnswer(ctx, "x")

	if want := "Oups, une erreur s'est produite. Pourrais-tu répéter ta réponse ?"; h.sink.last() != want {
		t.Errorf("last message = %q, want %q", h.sink.last(), want)
	}
	st := h.engine.Status()
	if st.Mode != ModePractice || st.Cursor != 0 || st.Grading {
		t.Errorf("status = %+v, want practice at cursor 0, not grading", st)
	}
}

func TestPractice_NoGrader(t *testing.T) {
	h := newHarness(t, DefaultConfig(), mixedBank(), nil)
	ctx := context.Background()
	h.engine.StartPractice(ctx, topic)

	h.engine.SubmitPracticeAnswer(ctx, "x")

	if !strings.HasPrefix(h.sink.last(), "Oups") {
		t.Errorf("last message = %q, want apology", h.sink.last())
	}
}

func TestPractice_Empty(t *testing.T) {
	h := newHarness(t, DefaultConfig(), mixedBank(), nil)
	h.engine.StartPractice(context.Background(), "thalès")

	if h.engine.Mode() != ModeIdle {
		t.Errorf("Mode = %v, want idle", h.engine.Mode())
	}
	if want := `Désolé, je n'ai pas d'exercices pratiques pour "thalès".`; h.sink.last() != want {
		t.Errorf("message = %q, want %q", h.sink.last(), want)
	}
}

// blockingGrader holds Evaluate until release is closed.
type blockingGrader struct {
	entered chan struct{}
	release chan struct{}
}

func (g *blockingGrader) Evaluate(context.Context, string, string) (Verdict, error) {
	close(g.entered)
	<-g.release
	return Verdict{Text: "Parfait", Judged: true, Correct: true}, nil
}

func TestPractice_StaleVerdictDropped(t *testing.T) {
	g := &blockingGrader{entered: make(chan struct{}), release: make(chan struct{})}
	h := newHarness(t, DefaultConfig(), mixedBank(), g)
	ctx := context.Background()
	h.engine.StartPractice(ctx, topic)

	done := make(chan struct{})
	go func() {
		h.engine.SubmitPracticeAnswer(ctx, "x")
		close(done)
	}()
	<-g.entered
	if !h.engine.Status().Grading {
		t.Error("Grading = false while the grader runs")
	}
	h.engine.Abandon(ctx)
	close(g.release)
	<-done

	if h.engine.Mode() != ModeIdle {
		t.Errorf("Mode = %v, want idle", h.engine.Mode())
	}
	if h.sink.count("Parfait") != 0 {
		t.Error("stale verdict was emitted")
	}
}

// --- tutor and routing ---

func TestTutorAndSubmitRouting(t *testing.T) {
	h := newHarness(t, DefaultConfig(), mixedBank(), nil)
	ctx := context.Background()

	if h.engine.Submit(ctx, "bonjour") {
		t.Error("Submit in idle = true, want false")
	}
	h.engine.StartTutor(ctx)
	if h.engine.Mode() != ModeTutor {
		t.Fatalf("Mode = %v, want tutor", h.engine.Mode())
	}
	if want := "Bien sûr ! Montre-moi une photo de ton exercice ou décris-le moi. Je vais te guider."; h.sink.last() != want {
		t.Errorf("message = %q, want %q", h.sink.last(), want)
	}
	if h.engine.Submit(ctx, "aide-moi") {
		t.Error("Submit in tutor = true, want false")
	}

	h.engine.StartQuiz(ctx, topic)
	if !h.engine.Submit(ctx, "r-m1") {
		t.Error("Submit in quiz = false, want true")
	}
	if got := h.engine.Status().Score; got != 1 {
		t.Errorf("Score = %d, want 1", got)
	}
}

func TestReaches(t *testing.T) {
	tests := []struct {
		score, total, threshold int
		want                    bool
	}{
		{4, 5, 80, true},
		{3, 5, 80, false},
		{7, 9, 80, false},
		{1, 2, 50, true},
		{0, 0, 50, false},
	}
	for _, tt := range tests {
		if got := reaches(tt.score, tt.total, tt.threshold); got != tt.want {
			t.Errorf("reaches(%d, %d, %d) = %v, want %v", tt.score, tt.total, tt.threshold, got, tt.want)
		}
	}
}

func TestResultSummary(t *testing.T) {
	r := Result{Mode: ModeExam, Topic: "pythagore", Score: 4, Total: 5, Percentage: 80, Mastered: true, Elapsed: 125 * time.Second}
	want := "examen pythagore : 4/5 (80%) en 2m 5s, maîtrisé"
	if got := r.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

func contains(msgs []string, want string) bool {
	for _, m := range msgs {
		if m == want {
			return true
		}
	}
	return false
}
