package session

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/abhisek/mathia/internal/store"
)

// StartExam abandons any session and starts a timed exam on a random sample
// of the topic's questions, regardless of difficulty.
func (e *Engine) StartExam(ctx context.Context, topic string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.abandonLocked(ctx)

	questions := e.bank.Quiz(topic)
	if len(questions) == 0 {
		e.emitf("Désolé, je n'ai pas de questions pour un examen sur \"%s\".", topic)
		return
	}
	e.rng.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	if len(questions) > e.cfg.ExamSize {
		questions = questions[:e.cfg.ExamSize]
	}

	e.begin(ctx, ModeExam, topic)
	limit := int(e.cfg.ExamTimeLimit / time.Second)
	e.exam = &examState{
		topic:     topic,
		title:     e.bank.LessonTitle(topic),
		questions: questions,
		startTime: e.now(),
		remaining: limit,
	}

	gen := e.gen
	e.stopTimer = e.ticker.Start(time.Second, func() { e.tick(gen) })

	e.emitf("L'examen sur \"<strong>%s</strong>\" commence. Vous avez %s. Bonne chance !", e.exam.title, durationFR(limit))
	e.askExamQuestion()
}

// tick advances the countdown of the exam started in generation gen.
func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen || e.mode != ModeExam || e.exam.finished {
		return
	}
	e.exam.remaining--
	if e.exam.remaining <= 0 {
		e.exam.remaining = 0
		e.endExamLocked(context.Background(), true)
	}
}

func (e *Engine) askExamQuestion() {
	x := e.exam
	q := x.questions[x.cursor]
	e.emitf("<strong>Question %d :</strong> %s", x.cursor+1, q.Prompt)
}

// SubmitExamAnswer records text for the pending question and moves on. The
// last answer ends the exam. Answers are never graded inline.
func (e *Engine) SubmitExamAnswer(ctx context.Context, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != ModeExam || e.exam.finished {
		return
	}
	x := e.exam
	x.answers = append(x.answers, strings.TrimSpace(text))
	x.cursor++
	if x.cursor >= len(x.questions) {
		e.endExamLocked(ctx, false)
		return
	}
	e.askExamQuestion()
}

// EndExam grades the active exam and reports the results. It is a no-op
// when no exam is running or the exam already ended.
func (e *Engine) EndExam(ctx context.Context, timedOut bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != ModeExam {
		return
	}
	e.endExamLocked(ctx, timedOut)
}

func (e *Engine) endExamLocked(ctx context.Context, timedOut bool) {
	x := e.exam
	if x.finished {
		return
	}
	x.finished = true
	e.cancelTimer()

	if timedOut {
		e.emit("Le temps est écoulé !")
	} else {
		e.emit("Examen terminé !")
	}

	score := 0
	for i, q := range x.questions {
		if i < len(x.answers) && sameAnswer(x.answers[i], q.Answer) {
			score++
		}
	}
	total := len(x.questions)
	pct := percentage(score, total)
	elapsed := time.Duration(math.Round(e.now().Sub(x.startTime).Seconds())) * time.Second
	mastered := reaches(score, total, e.cfg.MasteryThreshold)

	e.emit(e.examReport(score, total, pct, elapsed))

	e.last = &Result{
		Mode:       ModeExam,
		Topic:      x.topic,
		Score:      score,
		Total:      total,
		Percentage: pct,
		Mastered:   mastered,
		TimedOut:   timedOut,
		Elapsed:    elapsed,
	}
	e.journal(ctx, store.SessionEventData{
		Action:       store.ActionEnd,
		Score:        score,
		Total:        total,
		Percentage:   pct,
		DurationSecs: int(elapsed.Seconds()),
		TimedOut:     timedOut,
		Mastered:     mastered,
	})
	if mastered {
		e.markMastered(ctx, x.topic)
		e.emit("Félicitations, vous avez maîtrisé ce sujet !")
	}
	e.toIdle()
}

// examReport renders the results block with a per-question review.
func (e *Engine) examReport(score, total, pct int, elapsed time.Duration) string {
	x := e.exam
	verdict := "Échoué"
	if reaches(score, total, e.cfg.PassThreshold) {
		verdict = "Réussi"
	}

	var b strings.Builder
	b.WriteString("<h3>Résultats de l'examen</h3>")
	fmt.Fprintf(&b, "<p><strong>%d%%</strong> %s</p>", pct, verdict)
	fmt.Fprintf(&b, "<p><strong>%d / %d</strong> Score</p>", score, total)
	fmt.Fprintf(&b, "<p><strong>%s</strong> Temps</p>", FormatElapsed(elapsed))
	b.WriteString("<h4>Révision des réponses</h4><ul>")
	for i, q := range x.questions {
		answer := ""
		if i < len(x.answers) {
			answer = x.answers[i]
		}
		correct := sameAnswer(answer, q.Answer)
		if answer == "" {
			answer = "(Pas de réponse)"
		}
		fmt.Fprintf(&b, "<li><p>%d. %s</p><p>Votre réponse : %s</p>", i+1, q.Prompt, answer)
		if !correct {
			fmt.Fprintf(&b, "<p>Réponse correcte : %s</p>", q.Answer)
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

// durationFR renders a countdown length for the exam announcement.
func durationFR(secs int) string {
	if secs%60 == 0 {
		if secs == 60 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", secs/60)
	}
	return fmt.Sprintf("%d secondes", secs)
}

// FormatClock renders remaining seconds as the exam header clock, e.g.
// "⏳ 4:05".
func FormatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("⏳ %d:%02d", secs/60, secs%60)
}
