package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathia/internal/ui/theme"
)

// ContentWidth returns the uniform inner width used for centered sections.
func ContentWidth(frameWidth int) int {
	// Leave room for border (2) + inner padding (4)
	return min(max(frameWidth-6, 20), 64)
}

// Card wraps content in a rounded-border card at the given content width.
func Card(content string, cw int) string {
	return theme.Card.
		Width(cw - 2).
		Render(content)
}

// Center places content in the middle of the area.
func Center(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// Message renders a centered one-line notice in the given color style.
func Message(text string, style lipgloss.Style, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render("\n\n" + style.Render(text))
}
