package session

import (
	"fmt"
	"time"
)

// Passed reports whether the result reaches threshold percent.
func (r Result) Passed(threshold int) bool {
	return reaches(r.Score, r.Total, threshold)
}

// Summary renders a one-line plain-text recap, e.g.
// "examen fonctions du second degré : 4/5 (80%) en 2m 5s, maîtrisé".
func (r Result) Summary() string {
	kind := "quiz"
	if r.Mode == ModeExam {
		kind = "examen"
	}
	s := fmt.Sprintf("%s %s : %d/%d (%d%%) en %s", kind, r.Topic, r.Score, r.Total, r.Percentage, FormatElapsed(r.Elapsed))
	if r.TimedOut {
		s += ", temps écoulé"
	}
	if r.Mastered {
		s += ", maîtrisé"
	}
	return s
}

// FormatElapsed renders d as "Xm Ys", rounded to the second.
func FormatElapsed(d time.Duration) string {
	secs := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%dm %ds", secs/60, secs%60)
}
