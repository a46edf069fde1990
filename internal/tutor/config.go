package tutor

// Config holds per-purpose generation limits.
type Config struct {
	LessonMaxTokens   int
	TutorMaxTokens    int
	PracticeMaxTokens int
	TitleMaxTokens    int
	ModuleMaxTokens   int
	Temperature       float64

	// HistoryWindow caps how many transcript messages are sent with a
	// tutoring request.
	HistoryWindow int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		LessonMaxTokens:   2048,
		TutorMaxTokens:    768,
		PracticeMaxTokens: 512,
		TitleMaxTokens:    32,
		ModuleMaxTokens:   4096,
		Temperature:       0.6,
		HistoryWindow:     20,
	}
}
