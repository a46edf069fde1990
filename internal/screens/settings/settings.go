package settings

import (
	"slices"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathia/internal/history"
	"github.com/abhisek/mathia/internal/screen"
	"github.com/abhisek/mathia/internal/ui/components"
	"github.com/abhisek/mathia/internal/ui/layout"
	"github.com/abhisek/mathia/internal/ui/theme"
)

type savedMsg struct {
	Personality history.Personality
	Err         error
}

// SettingsScreen picks the tutor personality.
type SettingsScreen struct {
	env           *screen.Env
	personalities []history.Personality
	choice        components.Choice
	notice        string
	errMsg        string
}

var _ screen.Screen = (*SettingsScreen)(nil)
var _ screen.KeyHintProvider = (*SettingsScreen)(nil)

// New creates a SettingsScreen with the stored personality marked.
func New(env *screen.Env) *SettingsScreen {
	ps := history.Personalities()
	labels := make([]string, len(ps))
	for i, p := range ps {
		labels[i] = p.Label()
	}
	current := slices.Index(ps, env.History.Personality(env.Ctx))
	return &SettingsScreen{
		env:           env,
		personalities: ps,
		choice:        components.NewChoice("Personnalité du tuteur", labels, current),
	}
}

func (s *SettingsScreen) Init() tea.Cmd {
	return nil
}

func (s *SettingsScreen) Title() string {
	return "Paramètres"
}

func (s *SettingsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Choisir"},
		{Key: "↑↓", Description: "Naviguer"},
		{Key: "Esc", Description: "Retour"},
	}
}

func (s *SettingsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(savedMsg); ok {
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			s.notice = ""
			return s, nil
		}
		s.errMsg = ""
		s.notice = "Personnalité enregistrée : " + msg.Personality.Label()
		return s, nil
	}

	s.choice = s.choice.Update(msg)
	if s.choice.Chosen < 0 {
		return s, nil
	}
	p := s.personalities[s.choice.Chosen]
	s.choice.Chosen = -1
	env := s.env
	return s, func() tea.Msg {
		return savedMsg{Personality: p, Err: env.History.SetPersonality(env.Ctx, p)}
	}
}

func (s *SettingsScreen) View(width, height int) string {
	body := s.choice.View()
	if !s.env.Assistant.HasTutor() {
		body += "\n" + theme.Hint.Render("Aucun fournisseur LLM configuré : le tuteur est désactivé.")
	}
	switch {
	case s.errMsg != "":
		body += "\n" + theme.Incorrect.Render("Erreur : "+s.errMsg)
	case s.notice != "":
		body += "\n" + theme.Correct.Render(s.notice)
	}
	card := components.Card(body, components.ContentWidth(width))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
