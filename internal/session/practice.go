package session

import (
	"context"
	"errors"
	"strings"

	"github.com/abhisek/mathia/internal/store"
)

var errNoGrader = errors.New("session: no grader configured")

// StartPractice abandons any session and starts a practice set on topic
// with the exercises in random order.
func (e *Engine) StartPractice(ctx context.Context, topic string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.abandonLocked(ctx)

	exercises := e.bank.Practice(topic)
	if len(exercises) == 0 {
		e.emitf("Désolé, je n'ai pas d'exercices pratiques pour \"%s\".", topic)
		return
	}
	e.rng.Shuffle(len(exercises), func(i, j int) {
		exercises[i], exercises[j] = exercises[j], exercises[i]
	})

	e.begin(ctx, ModePractice, topic)
	e.practice = &practiceState{topic: topic, exercises: exercises}
	e.emitf("Mode entraînement activé pour \"%s\". Allons-y !", topic)
	e.askPracticeExercise(ctx)
}

func (e *Engine) askPracticeExercise(ctx context.Context) {
	p := e.practice
	if p.cursor >= len(p.exercises) {
		e.endPracticeLocked(ctx)
		return
	}
	e.emitf("<strong>Exercice %d :</strong> %s", p.cursor+1, p.exercises[p.cursor].Prompt)
}

// SubmitPracticeAnswer sends text to the grader and advances on an
// affirmative verdict. The grader runs without the engine lock; submissions
// made while a verdict is pending are ignored, and a verdict that arrives
// after the session moved on is dropped.
func (e *Engine) SubmitPracticeAnswer(ctx context.Context, text string) {
	e.mu.Lock()
	if e.mode != ModePractice || e.practice.grading {
		e.mu.Unlock()
		return
	}
	p := e.practice
	p.grading = true
	p.attempts++
	gen, cursor := e.gen, p.cursor
	prompt := p.exercises[cursor].Prompt
	grader := e.grader
	e.mu.Unlock()

	var (
		verdict Verdict
		err     = errNoGrader
	)
	if grader != nil {
		verdict, err = grader.Evaluate(ctx, prompt, text)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen || e.practice != p {
		e.logger.Debug("stale practice verdict dropped", "cursor", cursor)
		return
	}
	p.grading = false

	if err != nil {
		e.logger.Warn("practice grading failed", "topic", p.topic, "error", err)
		e.emit("Oups, une erreur s'est produite. Pourrais-tu répéter ta réponse ?")
		return
	}
	e.emit(verdict.Text)

	if !e.affirmative(verdict) {
		return
	}
	p.cursor++
	p.attempts = 0
	e.askPracticeExercise(ctx)
}

// affirmative reports whether v lets the learner move on.
func (e *Engine) affirmative(v Verdict) bool {
	if v.Judged {
		return v.Correct
	}
	text := strings.ToLower(v.Text)
	for _, kw := range e.cfg.AffirmingKeywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// EndPractice finishes the active practice set.
func (e *Engine) EndPractice(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != ModePractice {
		return
	}
	e.endPracticeLocked(ctx)
}

func (e *Engine) endPracticeLocked(ctx context.Context) {
	p := e.practice
	e.journal(ctx, store.SessionEventData{
		Action:       store.ActionEnd,
		Score:        p.cursor,
		Total:        len(p.exercises),
		Percentage:   percentage(p.cursor, len(p.exercises)),
		DurationSecs: int(e.now().Sub(e.startedAt).Seconds()),
	})
	e.emit("Super séance d'entraînement ! Tu t'es bien débrouillé. N'hésite pas si tu veux faire d'autres exercices.")
	e.toIdle()
}
