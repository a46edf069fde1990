package session

import (
	"context"
	"fmt"

	"github.com/abhisek/mathia/internal/knowledge"
	"github.com/abhisek/mathia/internal/store"
)

// fixedDifficulty is the only level eligible in a non-adaptive quiz.
const fixedDifficulty = knowledge.Medium

// StartQuiz abandons any session and starts a quiz on topic. An empty
// eligible pool leaves the engine idle with one explanatory message.
func (e *Engine) StartQuiz(ctx context.Context, topic string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.abandonLocked(ctx)

	all := e.bank.Quiz(topic)
	pool := all
	if !e.cfg.Adaptive {
		pool = nil
		for _, q := range all {
			if q.Difficulty == fixedDifficulty {
				pool = append(pool, q)
			}
		}
	}
	if len(pool) == 0 {
		if e.cfg.Adaptive {
			e.emitf("Désolé, je n'ai pas de quiz pour \"%s\".", topic)
		} else {
			e.emitf("Désolé, je n'ai pas de quiz de difficulté '%s' pour \"%s\".", fixedDifficulty, topic)
		}
		return
	}

	e.begin(ctx, ModeQuiz, topic)
	e.quiz = &quizState{
		topic:      topic,
		adaptive:   e.cfg.Adaptive,
		pool:       pool,
		difficulty: knowledge.Medium,
		asked:      make(map[string]bool),
	}
	e.emitf("Excellent choix ! Commençons un quiz sur \"%s\". Prêt(e) ?", topic)
	e.askQuizQuestion(ctx)
}

// askQuizQuestion serves the next question or ends the quiz when none is
// left.
func (e *Engine) askQuizQuestion(ctx context.Context) {
	q := e.quiz
	var next *knowledge.QuizQuestion
	if q.adaptive {
		if q.cursor < e.cfg.QuestionCap {
			next = e.selectNextQuestion()
		}
	} else if q.cursor < len(q.pool) {
		next = &q.pool[q.cursor]
	}

	if next == nil {
		e.endQuizLocked(ctx)
		return
	}
	q.current = next
	q.asked[next.Prompt] = true
	e.emitf("<strong>Question %d :</strong> %s", q.cursor+1, next.Prompt)
}

// selectNextQuestion picks uniformly among unasked questions of the current
// difficulty, falling back to the other levels in easy, medium, hard order.
// It returns nil once the bank is exhausted.
func (e *Engine) selectNextQuestion() *knowledge.QuizQuestion {
	q := e.quiz
	levels := []knowledge.Difficulty{q.difficulty}
	for _, d := range knowledge.AllDifficulties() {
		if d != q.difficulty {
			levels = append(levels, d)
		}
	}

	for _, d := range levels {
		var candidates []int
		for i, qq := range q.pool {
			if qq.Difficulty == d && !q.asked[qq.Prompt] {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) > 0 {
			return &q.pool[candidates[e.rng.IntN(len(candidates))]]
		}
	}
	return nil
}

// SubmitQuizAnswer grades text against the pending question and serves the
// next one. Without a pending question it does nothing.
func (e *Engine) SubmitQuizAnswer(ctx context.Context, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != ModeQuiz || e.quiz.current == nil {
		return
	}
	q := e.quiz
	cur := q.current

	var correct bool
	if q.adaptive {
		correct = containsAnswer(text, cur.Answer)
	} else {
		correct = sameAnswer(text, cur.Answer)
	}

	if correct {
		q.score++
		if q.adaptive {
			q.difficulty = q.difficulty.Harder()
		}
		e.emit("Bonne réponse ! 👍")
	} else {
		if q.adaptive {
			q.difficulty = q.difficulty.Easier()
		}
		e.emitf("Ce n'est pas tout à fait ça. La bonne réponse était : <strong>%s</strong>.", cur.Answer)
	}
	if cur.Explanation != "" {
		e.emit(cur.Explanation)
	}

	q.current = nil
	q.cursor++
	e.askQuizQuestion(ctx)
}

// EndQuiz finishes the active quiz with a summary.
func (e *Engine) EndQuiz(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != ModeQuiz {
		return
	}
	e.endQuizLocked(ctx)
}

func (e *Engine) endQuizLocked(ctx context.Context) {
	q := e.quiz
	total := q.cursor
	pct := percentage(q.score, total)
	mastered := reaches(q.score, total, e.cfg.MasteryThreshold)

	msg := fmt.Sprintf("Quiz terminé ! Tu as obtenu <strong>%d sur %d</strong> (%d%%).", q.score, total, pct)
	switch {
	case mastered:
		msg += " Excellent travail ! Tu maîtrises bien ce sujet. 💪"
	case reaches(q.score, total, e.cfg.PassThreshold):
		msg += " Pas mal ! Continue de t'entraîner pour devenir un expert."
	default:
		msg += " Ne te décourage pas. Chaque erreur est une occasion d'apprendre. Veux-tu revoir la leçon sur ce sujet ?"
	}

	e.last = &Result{
		Mode:       ModeQuiz,
		Topic:      q.topic,
		Score:      q.score,
		Total:      total,
		Percentage: pct,
		Mastered:   mastered,
		Elapsed:    e.now().Sub(e.startedAt),
	}
	e.journal(ctx, store.SessionEventData{
		Action:       store.ActionEnd,
		Score:        q.score,
		Total:        total,
		Percentage:   pct,
		DurationSecs: int(e.last.Elapsed.Seconds()),
		Mastered:     mastered,
	})
	if mastered {
		e.markMastered(ctx, q.topic)
	}
	e.emit(msg)
	e.toIdle()
}
