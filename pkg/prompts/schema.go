package prompts

import "github.com/jwebster45206/word-dungeon/pkg/chat"

// ContentSchema describes a generated chapter: title, story, and exactly
// three quizzes with three options each.
var ContentSchema = chat.ResponseSchema{
	Name: "chapter",
	Schema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"title": map[string]interface{}{
				"type":        "string",
				"description": "The title of the current chapter.",
			},
			"story": map[string]interface{}{
				"type":        "string",
				"description": "The full text of the chapter with every vocabulary word wrapped in **.",
			},
			"quizzes": map[string]interface{}{
				"type":        "array",
				"description": "3 quiz questions based strictly on this chapter.",
				"minItems":    3,
				"maxItems":    3,
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"question": map[string]interface{}{
							"type":        "string",
							"description": "The question text, usually with a blank ( ? ).",
						},
						"options": map[string]interface{}{
							"type":        "array",
							"description": "3 distinct options.",
							"minItems":    3,
							"maxItems":    3,
							"items":       map[string]interface{}{"type": "string"},
						},
						"correctAnswerIndex": map[string]interface{}{
							"type":        "integer",
							"description": "The index (0-2) of the correct option.",
						},
					},
					"required":             []string{"question", "options", "correctAnswerIndex"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"title", "story", "quizzes"},
		"additionalProperties": false,
	},
}
