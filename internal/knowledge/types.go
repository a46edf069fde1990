package knowledge

import "strings"

// Difficulty is the level of a quiz question.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// AllDifficulties returns the levels from easiest to hardest.
func AllDifficulties() []Difficulty {
	return []Difficulty{Easy, Medium, Hard}
}

// Harder returns the next level up, capped at Hard.
func (d Difficulty) Harder() Difficulty {
	switch d {
	case Easy:
		return Medium
	default:
		return Hard
	}
}

// Easier returns the next level down, floored at Easy.
func (d Difficulty) Easier() Difficulty {
	switch d {
	case Hard:
		return Medium
	default:
		return Easy
	}
}

// Lesson is the static course material for a topic.
type Lesson struct {
	Title      string `yaml:"title" validate:"required"`
	Definition string `yaml:"definition" validate:"required"`
	Formula    string `yaml:"formula"`
	Example    string `yaml:"example"`
	Usage      string `yaml:"usage"`
}

// QuizQuestion is an immutable scripted question.
type QuizQuestion struct {
	Difficulty  Difficulty `yaml:"difficulty" validate:"required,oneof=easy medium hard"`
	Prompt      string     `yaml:"question" validate:"required"`
	Answer      string     `yaml:"answer" validate:"required"`
	Explanation string     `yaml:"explanation"`
}

// PracticeExercise is an open problem graded by the tutor.
type PracticeExercise struct {
	Prompt string `yaml:"problem" validate:"required"`
}

// ExerciseType distinguishes interactive lesson exercises.
type ExerciseType string

const (
	MultipleChoice ExerciseType = "multiple-choice"
	Calculation    ExerciseType = "calculation"
	FillInTheBlank ExerciseType = "fill-in-the-blank"
)

// Exercise is an interactive exercise shown below a lesson.
type Exercise struct {
	Type        ExerciseType `yaml:"type" validate:"required,oneof=multiple-choice calculation fill-in-the-blank"`
	Question    string       `yaml:"question" validate:"required"`
	Options     []string     `yaml:"options" validate:"required_if=Type multiple-choice,dive,required"`
	Answer      string       `yaml:"answer" validate:"required"`
	Explanation string       `yaml:"explanation"`
}

// Check reports whether answer matches the expected one, ignoring case and
// surrounding whitespace.
func (e Exercise) Check(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(e.Answer))
}

// Feedback returns the verdict message for answer.
func (e Exercise) Feedback(answer string) string {
	if e.Check(answer) {
		return "Correct ! " + e.Explanation
	}
	return "Incorrect. La bonne réponse est <strong>" + e.Answer + "</strong>. " + e.Explanation
}

// Topic groups everything the bank knows about one subject.
type Topic struct {
	Key       string             `yaml:"key" validate:"required"`
	Lesson    *Lesson            `yaml:"lesson"`
	Quiz      []QuizQuestion     `yaml:"quiz" validate:"dive"`
	Practice  []PracticeExercise `yaml:"practice" validate:"dive"`
	Exercises []Exercise         `yaml:"exercises" validate:"dive"`
}

// document is the on-disk shape of a bank.
type document struct {
	Version string  `yaml:"version" validate:"required"`
	Topics  []Topic `yaml:"topics" validate:"required,min=1,dive"`
}
