package knowledge

import "strings"

// ResultKind labels a search hit.
type ResultKind int

const (
	ResultLesson ResultKind = iota
	ResultQuiz
	ResultPractice
)

// Label returns the French badge shown next to a result.
func (k ResultKind) Label() string {
	switch k {
	case ResultLesson:
		return "Leçon"
	case ResultQuiz:
		return "Quiz"
	case ResultPractice:
		return "Pratique"
	default:
		return ""
	}
}

// NoResults is shown when a search matches nothing.
const NoResults = "Aucun résultat trouvé."

// SearchResult is a single hit of Search.
type SearchResult struct {
	Topic string
	Kind  ResultKind
	Text  string
}

// Search matches lessons by title or key, quizzes and practice sets by key.
// Results are grouped lessons first, then quizzes, then practice.
func (b *Bank) Search(query string) []SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []SearchResult
	for _, t := range b.topics {
		if t.Lesson == nil {
			continue
		}
		if strings.Contains(strings.ToLower(t.Lesson.Title), q) || strings.Contains(t.Key, q) {
			out = append(out, SearchResult{Topic: t.Key, Kind: ResultLesson, Text: t.Lesson.Title})
		}
	}
	for _, t := range b.topics {
		if len(t.Quiz) > 0 && strings.Contains(t.Key, q) {
			out = append(out, SearchResult{Topic: t.Key, Kind: ResultQuiz, Text: "Quiz sur " + b.LessonTitle(t.Key)})
		}
	}
	for _, t := range b.topics {
		if len(t.Practice) > 0 && strings.Contains(t.Key, q) {
			out = append(out, SearchResult{Topic: t.Key, Kind: ResultPractice, Text: "Exercices sur " + b.LessonTitle(t.Key)})
		}
	}
	return out
}

// fixedSuggestions are offered regardless of the bank content.
var fixedSuggestions = []string{
	"Explique-moi le théorème de Pythagore",
	"Aide-moi sur un exercice",
	"Je veux m'entraîner",
	"Je veux passer un examen",
}

func (b *Bank) buildSuggestions() []string {
	var all []string
	for _, t := range b.topics {
		if t.Lesson != nil {
			all = append(all, t.Lesson.Title)
		}
	}
	for _, t := range b.QuizTopics() {
		all = append(all, "Quiz sur "+t)
	}
	for _, t := range b.PracticeTopics() {
		all = append(all, "Exercices sur "+t)
	}
	all = append(all, fixedSuggestions...)

	seen := make(map[string]bool, len(all))
	uniq := all[:0]
	for _, s := range all {
		if !seen[s] {
			seen[s] = true
			uniq = append(uniq, s)
		}
	}
	return uniq
}

// Suggestions returns the autocomplete entries containing query,
// case-insensitively. An empty query yields nothing.
func (b *Bank) Suggestions(query string) []string {
	q := strings.ToLower(query)
	if q == "" {
		return nil
	}
	var out []string
	for _, s := range b.suggestions {
		if strings.Contains(strings.ToLower(s), q) {
			out = append(out, s)
		}
	}
	return out
}
