package tutor

import (
	"fmt"
	"html"
	"strings"
)

// Module is a generated mini learning module.
type Module struct {
	Title     string           `json:"titre_module"`
	Lessons   []ModuleLesson   `json:"lecons"`
	Quiz      []ModuleQuestion `json:"quiz"`
	Exercises []ModuleExercise `json:"exercices"`
}

type ModuleLesson struct {
	Title   string `json:"titre"`
	Content string `json:"contenu"`
}

type ModuleQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"reponse_correcte"`
}

type ModuleExercise struct {
	Title     string `json:"titre"`
	Statement string `json:"enonce"`
}

// moduleEnvelope is the top-level JSON document.
type moduleEnvelope struct {
	Goal   string  `json:"objectif_initial"`
	Module *Module `json:"module_apprentissage"`
}

// HTML renders the module as a chat message. Model text is escaped.
func (m *Module) HTML() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(m.Title))

	if len(m.Lessons) > 0 {
		b.WriteString("<h3>📚 Leçons Clés</h3>")
		for _, l := range m.Lessons {
			fmt.Fprintf(&b, "<h4>%s</h4><p>%s</p>", html.EscapeString(l.Title), html.EscapeString(l.Content))
		}
	}

	if len(m.Quiz) > 0 {
		b.WriteString("<h3>🤔 Quiz de Vérification</h3>")
		for i, q := range m.Quiz {
			fmt.Fprintf(&b, "<p><strong>Question %d:</strong> %s</p><ul>", i+1, html.EscapeString(q.Question))
			for _, opt := range q.Options {
				fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(opt))
			}
			fmt.Fprintf(&b, "</ul><p><strong>Réponse :</strong> %s</p>", html.EscapeString(q.Answer))
		}
	}

	if len(m.Exercises) > 0 {
		b.WriteString("<h3>✏️ Exercices Pratiques</h3>")
		for _, ex := range m.Exercises {
			fmt.Fprintf(&b, "<h4>%s</h4><p>%s</p>", html.EscapeString(ex.Title), html.EscapeString(ex.Statement))
		}
	}

	return b.String()
}
