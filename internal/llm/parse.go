package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// ErrMalformedOutput marks model replies that cannot be turned into a DiagramDescription.
var ErrMalformedOutput = errors.New("the model's response could not be parsed as JSON")

// ParseDescription turns raw model text into a DiagramDescription.
//
// A reply that already matches the schema is returned as-is. A reply keyed by
// figure (each value an object with its own brief/detailed fields) is flattened
// with FlattenPerFigure and validated again. Anything else is ErrMalformedOutput.
func ParseDescription(raw []byte, v *SchemaValidator, logger *slog.Logger) (DiagramDescription, error) {
	if logger == nil {
		logger = slog.Default()
	}

	doc, ok := ExtractJSONDocument(raw)
	if !ok {
		return DiagramDescription{}, fmt.Errorf("%w: no json object in %d bytes of output", ErrMalformedOutput, len(raw))
	}

	strictErr := v.Validate(doc)
	if strictErr == nil {
		return decodeDescription(doc)
	}

	flat, merged, err := FlattenPerFigure(doc)
	if err != nil {
		return DiagramDescription{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if len(merged) == 0 {
		return DiagramDescription{}, fmt.Errorf("%w: %v", ErrMalformedOutput, strictErr)
	}
	if err := v.Validate(flat); err != nil {
		return DiagramDescription{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	logger.Warn("llm.parse.flattened_per_figure", "figures", merged, "strict_error", strictErr.Error())
	return decodeDescription(flat)
}

func decodeDescription(doc []byte) (DiagramDescription, error) {
	var out DiagramDescription
	if err := json.Unmarshal(doc, &out); err != nil {
		return DiagramDescription{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return out, nil
}
