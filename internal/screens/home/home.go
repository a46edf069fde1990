package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathia/internal/router"
	"github.com/abhisek/mathia/internal/screen"
	"github.com/abhisek/mathia/internal/screens/chat"
	"github.com/abhisek/mathia/internal/screens/exam"
	"github.com/abhisek/mathia/internal/screens/goals"
	"github.com/abhisek/mathia/internal/screens/history"
	"github.com/abhisek/mathia/internal/screens/settings"
	"github.com/abhisek/mathia/internal/ui/components"
	"github.com/abhisek/mathia/internal/ui/layout"
	"github.com/abhisek/mathia/internal/ui/theme"
)

type stats struct {
	mastered  int
	topics    int
	progress  int
	goals     int
	goalsDone int
}

type statsMsg stats

// HomeScreen is the main menu with the learner's dashboard.
type HomeScreen struct {
	env   *screen.Env
	menu  components.Menu
	stats stats
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(env *screen.Env) *HomeScreen {
	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: build()} }
		}
	}

	items := []components.MenuItem{
		{Label: "Discuter", Hint: "leçons, quiz, pratique", Action: push(func() screen.Screen { return chat.New(env) })},
		{Label: "Passer un examen", Hint: "chronométré", Action: push(func() screen.Screen { return exam.New(env) })},
		{Label: "Historique", Action: push(func() screen.Screen { return history.New(env) })},
		{Label: "Mes objectifs", Action: push(func() screen.Screen { return goals.New(env) })},
		{Label: "Paramètres", Action: push(func() screen.Screen { return settings.New(env) })},
		{Label: "Quitter", Action: func() tea.Cmd { return tea.Quit }},
	}

	return &HomeScreen{
		env:  env,
		menu: components.NewMenu(items),
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadStats()
}

// Resume refreshes the dashboard after a chat, exam or goal change.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.loadStats()
}

func (h *HomeScreen) loadStats() tea.Cmd {
	env := h.env
	return func() tea.Msg {
		topics := len(env.Bank.QuizTopics())
		st := stats{
			mastered: len(env.History.Mastered(env.Ctx)),
			topics:   topics,
			progress: env.History.Progress(env.Ctx, topics),
		}
		for _, g := range env.History.Goals(env.Ctx) {
			st.goals++
			if env.History.Completed(env.Ctx, g) {
				st.goalsDone++
			}
		}
		return statsMsg(st)
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(statsMsg); ok {
		h.stats = stats(msg)
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; add back header and footer
	compact := layout.IsCompact(width, height+6)
	cw := components.ContentWidth(width)
	hasTutor := h.env.Assistant.HasTutor()

	var sections []string
	sections = append(sections, renderBanner(cw, compact))
	if !compact {
		sections = append(sections, lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).
			Render(RenderMascot(mascotFor(h.stats.progress, hasTutor))))
	}
	sections = append(sections, renderStats(h.stats, cw))
	if !hasTutor {
		sections = append(sections, renderTutorBanner(cw))
	}
	sections = append(sections, renderMenu(h.menu, cw))

	content := strings.Join(sections, "\n\n")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func (h *HomeScreen) Title() string {
	return "Accueil"
}
