package history

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	hist "github.com/abhisek/mathia/internal/history"
	"github.com/abhisek/mathia/internal/router"
	"github.com/abhisek/mathia/internal/screen"
	"github.com/abhisek/mathia/internal/screens/chat"
	"github.com/abhisek/mathia/internal/store"
	"github.com/abhisek/mathia/internal/ui/layout"
	"github.com/abhisek/mathia/internal/ui/theme"
)

type historyLoadedMsg struct {
	Entries  []hist.Entry
	Sessions []store.SessionEventRecord
	Err      error
}

type openedMsg struct {
	Err error
}

// HistoryScreen lists saved lessons and chats, newest first, with the
// latest quiz and exam results below.
type HistoryScreen struct {
	env      *screen.Env
	entries  []hist.Entry
	sessions []store.SessionEventRecord
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(env *screen.Env) *HistoryScreen {
	return &HistoryScreen{env: env}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.load()
}

func (s *HistoryScreen) load() tea.Cmd {
	env := s.env
	return func() tea.Msg {
		entries := env.History.Load(env.Ctx)
		slices.Reverse(entries)

		var sessions []store.SessionEventRecord
		if env.Events != nil {
			events, err := env.Events.QuerySessionEvents(env.Ctx, store.QueryOpts{Limit: 50})
			if err != nil {
				return historyLoadedMsg{Entries: entries, Err: err}
			}
			for _, e := range events {
				if e.Action == store.ActionEnd && e.Total > 0 {
					sessions = append(sessions, e)
				}
			}
			if len(sessions) > 5 {
				sessions = sessions[:5]
			}
		}
		return historyLoadedMsg{Entries: entries, Sessions: sessions}
	}
}

func (s *HistoryScreen) Title() string {
	return "Historique"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Ouvrir"},
		{Key: "d", Description: "Supprimer"},
		{Key: "↑↓", Description: "Naviguer"},
		{Key: "Esc", Description: "Retour"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
		s.entries = msg.Entries
		s.sessions = msg.Sessions
		s.selected = min(s.selected, max(len(s.entries)-1, 0))
		s.loaded = true
		return s, nil

	case openedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: chat.New(s.env)} }

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.entries)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			return s, s.open()
		case "d", "delete":
			return s, s.remove()
		}
	}
	return s, nil
}

func (s *HistoryScreen) current() (hist.Entry, bool) {
	if s.selected < 0 || s.selected >= len(s.entries) {
		return hist.Entry{}, false
	}
	return s.entries[s.selected], true
}

func (s *HistoryScreen) open() tea.Cmd {
	entry, ok := s.current()
	if !ok {
		return nil
	}
	env := s.env
	return func() tea.Msg {
		return openedMsg{Err: env.Assistant.OpenChat(env.Ctx, entry.ID)}
	}
}

func (s *HistoryScreen) remove() tea.Cmd {
	entry, ok := s.current()
	if !ok {
		return nil
	}
	env := s.env
	return tea.Sequence(
		func() tea.Msg {
			if err := env.History.Remove(env.Ctx, entry.ID); err != nil {
				return historyLoadedMsg{Entries: s.entries, Sessions: s.sessions, Err: err}
			}
			return nil
		},
		s.load(),
	)
}

func (s *HistoryScreen) View(width, height int) string {
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Chargement de l'historique...")
	}

	var b strings.Builder
	b.WriteString("\n")
	if s.errMsg != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Incorrect.Render("Erreur : "+s.errMsg)))
		b.WriteString("\n\n")
	}

	if len(s.entries) == 0 {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Hint.Render("Ton historique est vide. Commence une discussion !")))
		b.WriteString("\n")
	}

	for i, e := range s.entries {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		line := fmt.Sprintf("%s%s %s", prefix, e.Icon(), e.Title)
		if !e.CreatedAt.IsZero() {
			line += "  " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(formatDate(e.CreatedAt))
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}

	if len(s.sessions) > 0 {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("Derniers résultats")))
		b.WriteString("\n")
		for _, e := range s.sessions {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				resultStyle(e).Render(resultLine(s.env, e))))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func formatDate(t time.Time) string {
	return t.Local().Format("02/01/2006 15:04")
}

func resultLine(env *screen.Env, e store.SessionEventRecord) string {
	line := fmt.Sprintf("%s · %s : %d/%d (%d%%)", e.Mode, env.Bank.LessonTitle(e.Topic), e.Score, e.Total, e.Percentage)
	if e.TimedOut {
		line += " · temps écoulé"
	}
	if e.Mastered {
		line += " · ★"
	}
	return line
}

func resultStyle(e store.SessionEventRecord) lipgloss.Style {
	switch {
	case e.Mastered:
		return theme.Correct
	case e.Percentage < 50:
		return theme.Incorrect
	default:
		return theme.Body
	}
}
