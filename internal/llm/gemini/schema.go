package gemini

import (
	"strings"

	"google.golang.org/genai"
)

// ToGenaiSchema converts the JSON-Schema map used for local validation into the
// OpenAPI subset Gemini accepts for structured output. Keywords Gemini does not
// understand (minLength, pattern, additionalProperties, ...) are dropped.
func ToGenaiSchema(m map[string]any) *genai.Schema {
	if m == nil {
		return nil
	}
	s := &genai.Schema{}
	if t, ok := m["type"].(string); ok {
		s.Type = genai.Type(strings.ToUpper(t))
	}
	if d, ok := m["description"].(string); ok {
		s.Description = d
	}
	if props, ok := m["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if sub, ok := raw.(map[string]any); ok {
				s.Properties[name] = ToGenaiSchema(sub)
			}
		}
	}
	if items, ok := m["items"].(map[string]any); ok {
		s.Items = ToGenaiSchema(items)
	}
	s.Required = stringList(m["required"])
	s.Enum = stringList(m["enum"])
	// Gemini emits properties alphabetically unless told otherwise; keep required order.
	if len(s.Required) > 0 && len(s.Properties) > 0 {
		s.PropertyOrdering = s.Required
	}
	return s
}

func stringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, x := range t {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
