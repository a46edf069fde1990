package assistant

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/abhisek/mathia/internal/knowledge"
)

// exerciseAnswer matches "exercice 2 : 5 cm", the way interactive lesson
// exercises are answered.
var exerciseAnswer = regexp.MustCompile(`(?i)^exercice\s+(\d+)\s*:\s*(.+)$`)

// goalCommand adds the lesson on screen to the learning goals.
const goalCommand = "objectif"

// renderLesson builds the lesson message for a bank topic.
func renderLesson(bank *knowledge.Bank, topic string, lesson knowledge.Lesson, goalSet bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>%s</h2>", lesson.Title)
	fmt.Fprintf(&b, "<p><strong>Définition :</strong> %s</p>", lesson.Definition)
	fmt.Fprintf(&b, "<p><strong>Formule :</strong> %s</p>", lesson.Formula)
	fmt.Fprintf(&b, "<p><strong>Exemple :</strong> %s</p>", lesson.Example)
	fmt.Fprintf(&b, "<p><strong>Utilisation :</strong> %s</p>", lesson.Usage)
	if goalSet {
		b.WriteString("<p>✅ Objectif ajouté</p>")
	} else {
		fmt.Fprintf(&b, "<p>🎯 Tape <strong>%s</strong> pour en faire un objectif d'apprentissage.</p>", goalCommand)
	}
	b.WriteString(renderExercises(bank.Exercises(topic)))
	return b.String()
}

// renderExercises lists the interactive exercises of a lesson, numbered from
// one. It returns "" when there are none.
func renderExercises(exercises []knowledge.Exercise) string {
	if len(exercises) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<h3>Exercices Interactifs</h3>")
	for i, ex := range exercises {
		fmt.Fprintf(&b, "<p>%d. %s</p>", i+1, ex.Question)
		if ex.Type == knowledge.MultipleChoice && len(ex.Options) > 0 {
			b.WriteString("<ul>")
			for _, opt := range ex.Options {
				fmt.Fprintf(&b, "<li>%s</li>", opt)
			}
			b.WriteString("</ul>")
		}
	}
	b.WriteString("<p><em>Réponds avec « exercice N : ta réponse ».</em></p>")
	return b.String()
}

// parseExerciseAnswer splits "exercice N : answer" into a zero-based index
// and the answer.
func parseExerciseAnswer(text string) (int, string, bool) {
	m := exerciseAnswer.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, "", false
	}
	return n - 1, strings.TrimSpace(m[2]), true
}

// topicList renders the lesson titles of topics as a bullet list.
func topicList(bank *knowledge.Bank, topics []string) string {
	var b strings.Builder
	b.WriteString("<ul>")
	for _, t := range topics {
		fmt.Fprintf(&b, "<li>%s</li>", bank.LessonTitle(t))
	}
	b.WriteString("</ul>")
	return b.String()
}
