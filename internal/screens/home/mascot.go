package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathia/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota // Default blue
	MascotCelebrating                      // Amber, star eyes: every topic mastered
	MascotAlert                            // Rose, exclamation: no tutor configured
)

const mascotIdle = `┌─────┐
│ ◉ ◉ │
│  ▽  │
│ √π∑ │
└─────┘`

const mascotCelebrating = `┌─────┐
│ ★ ★ │
│  ▿  │
│ √π∑ │
└─╥═╥─┘
  ╚═╝`

const mascotAlert = `┌─────┐
│ ◉ ◉ │ !
│  ▽  │
│ √π∑ │
└─────┘`

// mascotFor picks the variant for the dashboard state.
func mascotFor(progress int, hasTutor bool) MascotVariant {
	switch {
	case !hasTutor:
		return MascotAlert
	case progress >= 100:
		return MascotCelebrating
	default:
		return MascotIdle
	}
}

// RenderMascot returns the mascot art for the given variant.
func RenderMascot(v MascotVariant) string {
	art, fg := mascotIdle, theme.Primary
	switch v {
	case MascotCelebrating:
		art, fg = mascotCelebrating, theme.Accent
	case MascotAlert:
		art, fg = mascotAlert, theme.Error
	}
	return lipgloss.NewStyle().Foreground(fg).Render(art)
}
