package app

import (
	"fmt"
	"log/slog"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathia/internal/router"
	"github.com/abhisek/mathia/internal/screen"
	"github.com/abhisek/mathia/internal/screens/chat"
	"github.com/abhisek/mathia/internal/screens/home"
	"github.com/abhisek/mathia/internal/ui/layout"
	"github.com/abhisek/mathia/internal/ui/theme"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	env    *screen.Env
	router *router.Router
	width  int
	height int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(env *screen.Env) AppModel {
	return AppModel{
		env:    env,
		router: router.New(home.New(env)),
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if bh, ok := m.router.Active().(screen.BackHandler); ok {
				return m, bh.Back()
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	header := layout.RenderHeader(active.Title(), m.status(active), m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// status is the header's right side: the screen's own status when it has
// one, the mastery progress otherwise.
func (m AppModel) status(active screen.Screen) string {
	if sp, ok := active.(screen.StatusProvider); ok {
		if s := sp.Status(); s != "" {
			return s
		}
	}
	topics := len(m.env.Bank.QuizTopics())
	pct := m.env.History.Progress(m.env.Ctx, topics)
	return lipgloss.NewStyle().Foreground(theme.Accent).Render(fmt.Sprintf("★ %d%% maîtrisé", pct))
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if kp, ok := active.(screen.KeyHintProvider); ok {
		return append(kp.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quitter"})
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Retour"},
			{Key: "Ctrl+C", Description: "Quitter"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Naviguer"},
		{Key: "Enter", Description: "Choisir"},
		{Key: "Ctrl+C", Description: "Quitter"},
	}
}

// Run starts the Bubble Tea program. Transcript changes made off the UI
// goroutine, such as the exam countdown, are forwarded to the program. The
// current chat is saved when the program exits.
func Run(env *screen.Env, logger *slog.Logger) error {
	p := tea.NewProgram(newAppModel(env))

	done := make(chan struct{})
	go func() {
		changed := env.Assistant.Transcript().Changed()
		for {
			select {
			case <-done:
				return
			case <-changed:
				p.Send(chat.TranscriptChangedMsg{})
			}
		}
	}()

	_, err := p.Run()
	close(done)
	if err != nil {
		logger.Error("program exited", "error", err)
		return fmt.Errorf("run program: %w", err)
	}

	if err := env.Assistant.Leave(env.Ctx); err != nil {
		logger.Warn("save chat on exit", "error", err)
	}
	return nil
}
