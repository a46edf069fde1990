package exam

import (
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathia/internal/router"
	"github.com/abhisek/mathia/internal/screen"
	"github.com/abhisek/mathia/internal/screens/chat"
	"github.com/abhisek/mathia/internal/session"
	"github.com/abhisek/mathia/internal/ui/components"
	"github.com/abhisek/mathia/internal/ui/layout"
	"github.com/abhisek/mathia/internal/ui/theme"
)

// PickerScreen lets the learner choose an exam topic, then starts the exam
// in the chat.
type PickerScreen struct {
	env    *screen.Env
	topics []string
	choice components.Choice
}

var _ screen.Screen = (*PickerScreen)(nil)
var _ screen.KeyHintProvider = (*PickerScreen)(nil)

// New creates a PickerScreen over the quiz topics of the bank.
func New(env *screen.Env) *PickerScreen {
	topics := env.Bank.QuizTopics()
	labels := make([]string, len(topics))
	for i, t := range topics {
		labels[i] = env.Bank.LessonTitle(t)
		if env.History.IsMastered(env.Ctx, t) {
			labels[i] += "  ★"
		}
	}
	return &PickerScreen{
		env:    env,
		topics: topics,
		choice: components.NewChoice("Sur quel sujet veux-tu passer un examen ?", labels, -1),
	}
}

func (s *PickerScreen) Init() tea.Cmd {
	return nil
}

func (s *PickerScreen) Title() string {
	return "Examen"
}

func (s *PickerScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Commencer"},
		{Key: "↑↓", Description: "Naviguer"},
		{Key: "Esc", Description: "Retour"},
	}
}

func (s *PickerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.choice = s.choice.Update(msg)
	if s.choice.Chosen < 0 {
		return s, nil
	}

	topic := s.topics[s.choice.Chosen]
	s.choice.Chosen = -1
	env := s.env
	return s, func() tea.Msg {
		env.Assistant.Engine().StartExam(env.Ctx, topic)
		return router.ReplaceScreenMsg{Screen: chat.New(env)}
	}
}

func (s *PickerScreen) View(width, height int) string {
	if len(s.topics) == 0 {
		return components.Message("Aucun sujet d'examen disponible.", theme.Hint, width)
	}
	cfg := s.env.Assistant.Engine().Config()
	info := theme.Hint.Render(rules(cfg))
	card := components.Card(s.choice.View()+"\n"+info, components.ContentWidth(width))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

// rules summarises the exam format shown under the topic list.
func rules(cfg session.Config) string {
	return fmt.Sprintf("%d questions au plus · %s · réussite à %d%%, maîtrise à %d%%",
		cfg.ExamSize, session.FormatElapsed(cfg.ExamTimeLimit.Round(time.Second)),
		cfg.PassThreshold, cfg.MasteryThreshold)
}
