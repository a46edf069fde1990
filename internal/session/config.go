package session

import "time"

// Config tunes session behaviour.
type Config struct {
	// Adaptive selects the adaptive quiz: the whole bank is eligible and
	// difficulty follows the learner's answers. Otherwise only medium
	// questions are asked.
	Adaptive bool

	// QuestionCap ends an adaptive quiz after this many questions.
	QuestionCap int

	// ExamSize is the maximum number of questions sampled for an exam.
	ExamSize int

	// ExamTimeLimit is the exam countdown.
	ExamTimeLimit time.Duration

	// MasteryThreshold is the percentage at or above which a quiz or exam
	// marks its topic mastered.
	MasteryThreshold int

	// PassThreshold is the exam pass percentage, and the quiz "not bad" tier.
	PassThreshold int

	// AffirmingKeywords decide practice advancement when the grader could
	// only return prose. Matching is case-insensitive.
	AffirmingKeywords []string
}

// DefaultConfig returns the standard session settings.
func DefaultConfig() Config {
	return Config{
		Adaptive:          false,
		QuestionCap:       5,
		ExamSize:          5,
		ExamTimeLimit:     300 * time.Second,
		MasteryThreshold:  80,
		PassThreshold:     50,
		AffirmingKeywords: []string{"correct", "exactement", "parfait"},
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.QuestionCap <= 0 {
		c.QuestionCap = d.QuestionCap
	}
	if c.ExamSize <= 0 {
		c.ExamSize = d.ExamSize
	}
	if c.ExamTimeLimit <= 0 {
		c.ExamTimeLimit = d.ExamTimeLimit
	}
	if c.MasteryThreshold <= 0 {
		c.MasteryThreshold = d.MasteryThreshold
	}
	if c.PassThreshold <= 0 {
		c.PassThreshold = d.PassThreshold
	}
	if c.AffirmingKeywords == nil {
		c.AffirmingKeywords = d.AffirmingKeywords
	}
	return c
}
