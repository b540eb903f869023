package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errNotObject = errors.New("top-level json value is not an object")

// FlattenPerFigure rewrites a per-figure document such as
//
//	{"figure_1": {"brief_description": "...", "detailed_description": "..."}, ...}
//
// into the flat description shape. Entries are visited in the order they appear
// in the document; the collected brief and detailed fields are joined with
// newlines. Non-object entries are skipped and missing fields contribute "".
// Returns the flattened JSON and the keys that were merged.
func FlattenPerFigure(doc []byte) ([]byte, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("flatten: decode: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, errNotObject
	}

	var (
		briefs   []string
		details  []string
		mergedAs []string
	)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("flatten: decode key: %w", err)
		}
		key, _ := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, nil, fmt.Errorf("flatten: decode %q: %w", key, err)
		}

		var entry map[string]any
		if err := json.Unmarshal(value, &entry); err != nil || entry == nil {
			continue
		}
		brief, _ := entry[FieldBrief].(string)
		detailed, _ := entry[FieldDetailed].(string)
		briefs = append(briefs, brief)
		details = append(details, detailed)
		mergedAs = append(mergedAs, key)
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("flatten: decode: %w", err)
	}

	out, err := json.Marshal(DiagramDescription{
		BriefDescription:    strings.Join(briefs, "\n"),
		DetailedDescription: strings.Join(details, "\n"),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("flatten: encode: %w", err)
	}
	return out, mergedAs, nil
}
