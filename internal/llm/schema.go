package llm

// recommendationSetSchema describes the RecommendationSet shape the backend
// must produce. It is sent as the response_format JSON schema so the backend
// validates its own output before returning it; the catalog validator still
// re-checks everything on our side.
func recommendationSetSchema() map[string]any {
	menuItem := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":  map[string]any{"type": "string"},
			"price": map[string]any{"type": "number"},
		},
		"required":             []string{"name", "price"},
		"additionalProperties": false,
	}

	caterer := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id": map[string]any{
				"type":        "string",
				"description": "UUID of the caterer, copied verbatim from the catalog",
			},
			"name":     map[string]any{"type": "string"},
			"location": map[string]any{"type": "string"},
			"cuisines": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"menu": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"items": map[string]any{
						"type":  "array",
						"items": menuItem,
					},
				},
				"required":             []string{"items"},
				"additionalProperties": false,
			},
			"rating": map[string]any{"type": []string{"number", "null"}},
			"matchReason": map[string]any{
				"type":        "string",
				"description": "Why this caterer fits the user's request",
			},
		},
		"required":             []string{"id", "name", "location", "cuisines", "menu", "rating", "matchReason"},
		"additionalProperties": false,
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"caterers": map[string]any{
				"type":  "array",
				"items": caterer,
			},
		},
		"required":             []string{"caterers"},
		"additionalProperties": false,
	}
}
