package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathia/internal/ui/theme"
)

// Input wraps bubbles/textinput with Tab completion. Suggest returns the
// completions for the current value; repeated Tab presses cycle through
// them.
type Input struct {
	Model   textinput.Model
	Suggest func(string) []string

	// matches and next track a Tab cycle; any other key resets it.
	matches []string
	next    int
}

// NewInput creates a focused input.
func NewInput(placeholder string, charLimit int, suggest func(string) []string) Input {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	return Input{Model: ti, Suggest: suggest}
}

// Init returns the initial command.
func (in Input) Init() tea.Cmd {
	return in.Model.Focus()
}

// Update handles messages.
func (in Input) Update(msg tea.Msg) (Input, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		if kmsg.String() == "tab" {
			in.complete()
			return in, nil
		}
		in.matches = nil
	}

	var cmd tea.Cmd
	in.Model, cmd = in.Model.Update(msg)
	return in, cmd
}

func (in *Input) complete() {
	if in.Suggest == nil {
		return
	}
	if in.matches == nil {
		in.matches = in.Suggest(in.Model.Value())
		in.next = 0
	}
	if len(in.matches) == 0 {
		return
	}
	in.Model.SetValue(in.matches[in.next%len(in.matches)])
	in.Model.CursorEnd()
	in.next++
}

// Matches returns the completions of the current Tab cycle.
func (in Input) Matches() []string {
	return in.matches
}

// View renders the input with the pending completions below it.
func (in Input) View() string {
	view := in.Model.View()
	if len(in.matches) > 1 {
		hint := ""
		for i, m := range in.matches {
			if i > 0 {
				hint += " · "
			}
			hint += m
		}
		view += "\n" + lipgloss.NewStyle().Foreground(theme.TextDim).Render(hint)
	}
	return view
}

// Value returns the current input value.
func (in Input) Value() string {
	return in.Model.Value()
}

// Reset clears the input.
func (in *Input) Reset() {
	in.Model.SetValue("")
	in.matches = nil
}
