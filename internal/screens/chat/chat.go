package chat

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathia/internal/history"
	"github.com/abhisek/mathia/internal/router"
	"github.com/abhisek/mathia/internal/screen"
	"github.com/abhisek/mathia/internal/session"
	"github.com/abhisek/mathia/internal/ui/components"
	"github.com/abhisek/mathia/internal/ui/layout"
	"github.com/abhisek/mathia/internal/ui/richtext"
	"github.com/abhisek/mathia/internal/ui/theme"
)

// TranscriptChangedMsg is sent by the program loop whenever the transcript
// changes, including from the exam countdown goroutine.
type TranscriptChangedMsg struct{}

// handledMsg reports that a submitted line has been fully processed.
type handledMsg struct{}

// clockTickMsg redraws the exam countdown.
type clockTickMsg time.Time

// leftMsg reports that the chat was saved on the way out.
type leftMsg struct {
	Err error
}

// inputHeight covers the input line, its completion hint and a spacer.
const inputHeight = 4

// ChatScreen is the conversation with the tutor, and the surface for
// quizzes, exams and practice.
type ChatScreen struct {
	env     *screen.Env
	input   components.Input
	busy    bool
	ticking bool
	leaving bool

	// scroll is how many lines the view is lifted from the bottom.
	scroll int
	errMsg string
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)
var _ screen.BackHandler = (*ChatScreen)(nil)
var _ screen.StatusProvider = (*ChatScreen)(nil)

// New creates a ChatScreen over the shared assistant.
func New(env *screen.Env) *ChatScreen {
	return &ChatScreen{
		env:   env,
		input: components.NewInput("Pose ta question ou tape « quiz », « examen », « pratiquer »...", 500, env.Bank.Suggestions),
	}
}

func (s *ChatScreen) Init() tea.Cmd {
	return tea.Batch(s.input.Init(), s.clock())
}

func (s *ChatScreen) Title() string {
	if s.env.Assistant.Replaying() {
		return "Conversation enregistrée"
	}
	return "Discussion"
}

func (s *ChatScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Envoyer"},
		{Key: "Tab", Description: "Compléter"},
		{Key: "PgUp/PgDn", Description: "Défiler"},
		{Key: "Esc", Description: "Retour"},
	}
}

// Status shows the exam clock and progress during an exam, and the session
// progress during a quiz or practice.
func (s *ChatScreen) Status() string {
	st := s.env.Assistant.Engine().Status()
	switch st.Mode {
	case session.ModeExam:
		clock := theme.Clock
		if st.Remaining <= 30 {
			clock = theme.ClockLow
		}
		question := min(st.Cursor+1, st.Total)
		return clock.Render(session.FormatClock(st.Remaining)) +
			theme.Hint.Render(fmt.Sprintf("   Question %d/%d", question, st.Total))
	case session.ModeQuiz:
		return theme.Hint.Render(fmt.Sprintf("Quiz · %d/%d · score %d", st.Cursor, st.Total, st.Score))
	case session.ModePractice:
		return theme.Hint.Render(fmt.Sprintf("Exercice %d/%d", min(st.Cursor+1, st.Total), st.Total))
	case session.ModeTutor:
		return theme.Hint.Render("Mode tuteur")
	}
	return ""
}

// Back abandons any session, saves the chat and pops the screen.
func (s *ChatScreen) Back() tea.Cmd {
	if s.leaving {
		return nil
	}
	s.leaving = true
	a, ctx := s.env.Assistant, s.env.Ctx
	return func() tea.Msg {
		return leftMsg{Err: a.Leave(ctx)}
	}
}

func (s *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case TranscriptChangedMsg:
		s.scroll = 0
		return s, s.clock()

	case handledMsg:
		s.busy = false
		return s, s.clock()

	case clockTickMsg:
		s.ticking = false
		return s, s.clock()

	case leftMsg:
		s.leaving = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
		return s, func() tea.Msg { return router.PopScreenMsg{} }

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return s, s.submit()
		case "pgup":
			s.scroll += 5
			return s, nil
		case "pgdown":
			s.scroll = max(s.scroll-5, 0)
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// submit hands the input line to the assistant off the UI goroutine.
func (s *ChatScreen) submit() tea.Cmd {
	text := strings.TrimSpace(s.input.Value())
	if text == "" || s.busy {
		return nil
	}
	s.input.Reset()
	s.busy = true
	s.scroll = 0

	a, ctx := s.env.Assistant, s.env.Ctx
	return func() tea.Msg {
		a.Handle(ctx, text)
		return handledMsg{}
	}
}

// clock keeps one redraw tick per second running while an exam is active.
func (s *ChatScreen) clock() tea.Cmd {
	if s.ticking || s.env.Assistant.Engine().Mode() != session.ModeExam {
		return nil
	}
	s.ticking = true
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

func (s *ChatScreen) View(width, height int) string {
	bodyWidth := max(width-4, 20)
	lines := renderTranscript(s.env.Assistant.Transcript().Messages(), bodyWidth)
	if s.busy {
		lines = append(lines, "", theme.Hint.Render("MathIA réfléchit..."))
	}
	if s.errMsg != "" {
		lines = append(lines, "", theme.Incorrect.Render(s.errMsg))
	}

	visible := max(height-inputHeight, 1)
	s.scroll = min(s.scroll, max(len(lines)-visible, 0))
	end := len(lines) - s.scroll
	start := max(end-visible, 0)

	body := strings.Join(lines[start:end], "\n")
	body = lipgloss.NewStyle().Height(visible).Padding(0, 2).Render(body)

	prompt := lipgloss.NewStyle().Padding(0, 2).Render(s.input.View())
	return body + "\n\n" + prompt
}

// renderTranscript renders the messages as wrapped terminal lines.
func renderTranscript(msgs []history.Message, width int) []string {
	var lines []string
	wrap := lipgloss.NewStyle().Width(width)
	for i, m := range msgs {
		if i > 0 {
			lines = append(lines, "")
		}
		label := theme.TutorLabel.Render("MathIA")
		if m.Sender == history.SenderUser {
			label = theme.UserLabel.Render("Toi")
		}
		lines = append(lines, label)
		lines = append(lines, strings.Split(wrap.Render(richtext.Render(m.Text)), "\n")...)
	}
	return lines
}
