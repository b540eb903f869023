package llm

import "encoding/json"

// Field names of the description object.
const (
	FieldBrief    = "brief_description"
	FieldDetailed = "detailed_description"
)

// BuildDescriptionJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// We pass this to Gemini as a structured output constraint and also use it locally to validate.
// Extra keys are tolerated; both description fields are required strings.
func BuildDescriptionJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			FieldBrief: map[string]any{
				"type":        "string",
				"description": "One brief description per identified figure, newline-separated.",
			},
			FieldDetailed: map[string]any{
				"type":        "string",
				"description": "One detailed paragraph per identified figure with labels in parentheses, newline-separated.",
			},
		},
		"required": []string{FieldBrief, FieldDetailed},
	}
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
