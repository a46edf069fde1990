package tutor

import "github.com/abhisek/mathia/internal/llm"

// VerdictSchema is the structured practice assessment.
var VerdictSchema = &llm.Schema{
	Name:        "practice-verdict",
	Description: "Assessment of a student's answer to a practice exercise",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"correct": map[string]any{
				"type":        "boolean",
				"description": "True only when the student's answer is right",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Encouraging message to the student, in French",
			},
		},
		"required":             []any{"correct", "feedback"},
		"additionalProperties": false,
	},
}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func objectOf(props map[string]any, required ...any) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func arrayOf(items map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": items}
}

// ModuleSchema is the generated mini learning module for a goal.
var ModuleSchema = &llm.Schema{
	Name:        "goal-module",
	Description: "Mini learning module with lessons, a multiple-choice quiz and exercises",
	Definition: objectOf(map[string]any{
		"objectif_initial": stringProp("Le texte de l'objectif de l'utilisateur"),
		"module_apprentissage": objectOf(map[string]any{
			"titre_module": stringProp("Un titre de module pertinent généré à partir de l'objectif"),
			"lecons": arrayOf(objectOf(map[string]any{
				"titre":   stringProp("Titre de la leçon"),
				"contenu": stringProp("Contenu explicatif de la leçon"),
			}, "titre", "contenu")),
			"quiz": arrayOf(objectOf(map[string]any{
				"question":         stringProp("Texte de la question"),
				"options":          arrayOf(map[string]any{"type": "string"}),
				"reponse_correcte": stringProp("La bonne réponse textuelle"),
			}, "question", "options", "reponse_correcte")),
			"exercices": arrayOf(objectOf(map[string]any{
				"titre":  stringProp("Titre de l'exercice"),
				"enonce": stringProp("Énoncé clair de l'exercice"),
			}, "titre", "enonce")),
		}, "titre_module", "lecons", "quiz", "exercices"),
	}, "objectif_initial", "module_apprentissage"),
}
