package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathia/internal/ui/components"
	"github.com/abhisek/mathia/internal/ui/theme"
)

const bannerFull = ` __  __       _   _     ___    _
|  \/  | __ _| |_| |__ |_ _|  / \
| |\/| |/ _' | __| '_ \ | |  / _ \
| |  | | (_| | |_| | | || | / ___ \
|_|  |_|\__,_|\__|_| |_|___/_/   \_\`

const bannerCompact = "M · A · T · H · I · A"

// renderBanner returns the title block, or a one-line title when compact.
func renderBanner(cw int, compact bool) string {
	art := bannerFull
	if compact {
		art = bannerCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(art))
}

// renderStats renders the mastery bar with the topic and goal counts.
func renderStats(st stats, cw int) string {
	bar := components.NewProgressBar("Maîtrise", components.Fraction(st.mastered, st.topics), true, cw-6)

	counts := fmt.Sprintf("★ %d/%d sujets maîtrisés   🎯 %d objectif(s)", st.mastered, st.topics, st.goals)
	if st.goals > 0 {
		counts += fmt.Sprintf(", %d atteint(s)", st.goalsDone)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Secondary).
		Width(cw-2).
		Padding(0, 1).
		Render(bar.View() + "\n" + theme.Hint.Render(counts))
}

// renderTutorBanner warns that free-form questions are unavailable.
func renderTutorBanner(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ Aucune clé LLM : seules les leçons, quiz et examens sont disponibles (voir mathia --help)")
}

func renderMenu(menu components.Menu, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(lipgloss.NewStyle().Align(lipgloss.Left).Render(menu.View()))
}
