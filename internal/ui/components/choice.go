package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathia/internal/ui/theme"
)

// Choice is a single-selection list. Current marks the option in effect,
// Chosen is set once Enter confirms the highlighted one.
type Choice struct {
	Question string
	Options  []string
	Selected int
	Current  int
	Chosen   int
}

// NewChoice creates a selector with current highlighted. Pass -1 when no
// option is in effect.
func NewChoice(question string, options []string, current int) Choice {
	selected := 0
	if current >= 0 && current < len(options) {
		selected = current
	}
	return Choice{
		Question: question,
		Options:  options,
		Selected: selected,
		Current:  current,
		Chosen:   -1,
	}
}

// Update handles keyboard navigation and selection.
func (c Choice) Update(msg tea.Msg) Choice {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c
	}

	switch kmsg.String() {
	case "up", "k":
		if c.Selected > 0 {
			c.Selected--
		}
	case "down", "j":
		if c.Selected < len(c.Options)-1 {
			c.Selected++
		}
	case "enter":
		if len(c.Options) > 0 {
			c.Chosen = c.Selected
			c.Current = c.Selected
		}
	}
	return c
}

// View renders the selector.
func (c Choice) View() string {
	var b strings.Builder
	if c.Question != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(c.Question))
		b.WriteString("\n\n")
	}

	for i, opt := range c.Options {
		prefix := "  "
		if i == c.Selected {
			prefix = "▸ "
		}
		mark := " "
		if i == c.Current {
			mark = "✓"
		}
		line := fmt.Sprintf("%s%s %s", prefix, mark, opt)

		switch {
		case i == c.Selected:
			b.WriteString(theme.Selected.Render(line))
		case i == c.Current:
			b.WriteString(theme.Correct.Render(line))
		default:
			b.WriteString(theme.Unselected.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
