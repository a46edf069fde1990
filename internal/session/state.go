package session

import (
	"time"

	"github.com/abhisek/mathia/internal/knowledge"
)

// Mode is the kind of session the engine is running.
type Mode int

const (
	ModeIdle     Mode = iota // No session; free text goes to the assistant
	ModeQuiz                 // Scripted questions graded on the spot
	ModePractice             // Open exercises graded by the tutor
	ModeExam                 // Timed questions graded at the end
	ModeTutor                // Guided help on the learner's own exercise
)

// String returns the lower-case mode name used in events and logs.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeQuiz:
		return "quiz"
	case ModePractice:
		return "practice"
	case ModeExam:
		return "exam"
	case ModeTutor:
		return "tutor"
	default:
		return "unknown"
	}
}

// quizState is the payload of ModeQuiz.
type quizState struct {
	// topic is the bank key being quizzed.
	topic string

	// adaptive records which variant started the quiz.
	adaptive bool

	// pool holds the eligible questions: the medium ones for a fixed quiz,
	// the whole bank for an adaptive one.
	pool []knowledge.QuizQuestion

	// cursor counts answered questions.
	cursor int

	// score counts correct answers.
	score int

	// difficulty is the level of the next adaptive pick.
	difficulty knowledge.Difficulty

	// asked holds the prompts already served, for adaptive deduplication.
	asked map[string]bool

	// current is the question awaiting an answer, nil once the quiz ends.
	current *knowledge.QuizQuestion
}

// examState is the payload of ModeExam.
type examState struct {
	topic     string
	title     string
	questions []knowledge.QuizQuestion
	answers   []string

	// cursor is the index of the question awaiting an answer.
	cursor int

	// startTime is the wall-clock start, for the elapsed-time report.
	startTime time.Time

	// remaining is the countdown in seconds.
	remaining int

	// finished guards endExam against a second run.
	finished bool
}

// practiceState is the payload of ModePractice.
type practiceState struct {
	topic     string
	exercises []knowledge.PracticeExercise
	cursor    int

	// attempts counts submissions on the current exercise.
	attempts int

	// grading is true while a grader call is in flight.
	grading bool
}

// Status is a read-only snapshot of the engine for display.
type Status struct {
	Mode       Mode
	SessionID  string
	Topic      string
	Cursor     int // zero-based index of the pending question or exercise
	Total      int // questions in the exam, exercises in the practice set, pool size in a quiz
	Score      int
	Difficulty knowledge.Difficulty
	Remaining  int // exam countdown in seconds
	Attempts   int // submissions on the current practice exercise
	Grading    bool
}

// Result summarizes a finished quiz or exam.
type Result struct {
	Mode       Mode
	Topic      string
	Score      int
	Total      int
	Percentage int
	Mastered   bool
	TimedOut   bool
	Elapsed    time.Duration
}
