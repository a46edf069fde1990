package goals

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathia/internal/history"
	"github.com/abhisek/mathia/internal/router"
	"github.com/abhisek/mathia/internal/screen"
	"github.com/abhisek/mathia/internal/screens/chat"
	"github.com/abhisek/mathia/internal/ui/components"
	"github.com/abhisek/mathia/internal/ui/layout"
	"github.com/abhisek/mathia/internal/ui/theme"
)

type goalsLoadedMsg struct {
	Goals     []history.Goal
	Completed map[string]bool
	Notice    string
	Err       error
}

// GoalsScreen lists the learning goals. Enter opens a chat with a generated
// mini module for the selected goal.
type GoalsScreen struct {
	env       *screen.Env
	goals     []history.Goal
	completed map[string]bool
	selected  int
	adding    bool
	input     components.Input
	notice    string
	errMsg    string
}

var _ screen.Screen = (*GoalsScreen)(nil)
var _ screen.KeyHintProvider = (*GoalsScreen)(nil)
var _ screen.BackHandler = (*GoalsScreen)(nil)

// New creates a new GoalsScreen.
func New(env *screen.Env) *GoalsScreen {
	return &GoalsScreen{env: env}
}

func (s *GoalsScreen) Init() tea.Cmd {
	return s.load("")
}

func (s *GoalsScreen) load(notice string) tea.Cmd {
	env := s.env
	return func() tea.Msg {
		goals := env.History.Goals(env.Ctx)
		completed := make(map[string]bool, len(goals))
		for _, g := range goals {
			completed[g.Topic] = env.History.Completed(env.Ctx, g)
		}
		return goalsLoadedMsg{Goals: goals, Completed: completed, Notice: notice}
	}
}

func (s *GoalsScreen) Title() string {
	return "Mes objectifs"
}

func (s *GoalsScreen) KeyHints() []layout.KeyHint {
	if s.adding {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Ajouter"},
			{Key: "Esc", Description: "Annuler"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Créer un module"},
		{Key: "a", Description: "Ajouter"},
		{Key: "d", Description: "Supprimer"},
		{Key: "Esc", Description: "Retour"},
	}
}

// Back cancels the goal being typed, or leaves the screen.
func (s *GoalsScreen) Back() tea.Cmd {
	if s.adding {
		s.adding = false
		return nil
	}
	return func() tea.Msg { return router.PopScreenMsg{} }
}

func (s *GoalsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case goalsLoadedMsg:
		s.goals, s.completed = msg.Goals, msg.Completed
		s.notice = msg.Notice
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
		s.selected = min(s.selected, max(len(s.goals)-1, 0))
		return s, nil

	case tea.KeyMsg:
		if s.adding {
			return s.updateAdding(msg)
		}
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.goals)-1 {
				s.selected++
			}
		case "a":
			s.adding = true
			s.input = components.NewInput("Ex. : Comprendre les fractions", 120, nil)
			return s, s.input.Init()
		case "d", "delete":
			return s, s.remove()
		case "enter":
			return s, s.buildModule()
		}
		return s, nil
	}

	if s.adding {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *GoalsScreen) updateAdding(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if msg.String() != "enter" {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	title := strings.TrimSpace(s.input.Value())
	s.adding = false
	env := s.env
	return s, func() tea.Msg {
		goal, ok, err := env.History.AddCustomGoal(env.Ctx, title)
		if err != nil {
			return goalsLoadedMsg{Goals: s.goals, Completed: s.completed, Err: err}
		}
		notice := "Cet objectif est déjà dans votre liste."
		if ok {
			notice = fmt.Sprintf("Objectif ajouté : %s", goal.Title)
		}
		return s.load(notice)()
	}
}

func (s *GoalsScreen) current() (history.Goal, bool) {
	if s.selected < 0 || s.selected >= len(s.goals) {
		return history.Goal{}, false
	}
	return s.goals[s.selected], true
}

func (s *GoalsScreen) remove() tea.Cmd {
	goal, ok := s.current()
	if !ok {
		return nil
	}
	env := s.env
	return func() tea.Msg {
		if err := env.History.RemoveGoal(env.Ctx, goal.Topic); err != nil {
			return goalsLoadedMsg{Goals: s.goals, Completed: s.completed, Err: err}
		}
		return s.load("")()
	}
}

// buildModule starts a fresh chat and asks the tutor for a module on the
// selected goal.
func (s *GoalsScreen) buildModule() tea.Cmd {
	goal, ok := s.current()
	if !ok {
		return nil
	}
	env := s.env
	return tea.Sequence(
		func() tea.Msg {
			if err := env.Assistant.NewChat(env.Ctx); err != nil {
				return goalsLoadedMsg{Goals: s.goals, Completed: s.completed, Err: err}
			}
			return router.ReplaceScreenMsg{Screen: chat.New(env)}
		},
		func() tea.Msg {
			env.Assistant.BuildGoalModule(env.Ctx, goal)
			return chat.TranscriptChangedMsg{}
		},
	)
}

func (s *GoalsScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")

	if s.errMsg != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Incorrect.Render("Erreur : "+s.errMsg)))
		b.WriteString("\n\n")
	} else if s.notice != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render(s.notice)))
		b.WriteString("\n\n")
	}

	if len(s.goals) == 0 {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Hint.Render("Aucun objectif pour le moment. Appuie sur « a » pour en ajouter un.")))
		b.WriteString("\n")
	}

	for i, g := range s.goals {
		icon := "🎯"
		if s.completed[g.Topic] {
			icon = "✅"
		}
		line := fmt.Sprintf("%s %s", icon, g.Title)
		style := theme.Unselected
		if i == s.selected {
			line = "> " + line
			style = theme.Selected
		} else {
			line = "  " + line
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}

	if s.adding {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			components.Card("Nouvel objectif\n\n"+s.input.View(), components.ContentWidth(width))))
	}
	return b.String()
}
