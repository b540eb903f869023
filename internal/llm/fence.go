package llm

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New()

// ExtractJSONDocument isolates the JSON object in a model reply.
// Structured-output replies are the object itself; chattier replies wrap it in
// a fenced code block, which we locate by parsing the reply as Markdown.
// Text after the first complete value is ignored.
func ExtractJSONDocument(raw []byte) ([]byte, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false
	}
	if trimmed[0] == '{' {
		return firstJSONValue(trimmed), true
	}
	body, ok := firstJSONFence(trimmed)
	if !ok {
		return nil, false
	}
	return firstJSONValue(body), true
}

// firstJSONValue cuts doc down to its first complete JSON value, dropping any
// trailing prose. Undecodable input is returned as-is so callers report it.
func firstJSONValue(doc []byte) []byte {
	var raw json.RawMessage
	if err := json.NewDecoder(bytes.NewReader(doc)).Decode(&raw); err != nil {
		return doc
	}
	return raw
}

// firstJSONFence returns the body of the first fenced block tagged json (or
// untagged) whose content looks like an object.
func firstJSONFence(src []byte) ([]byte, bool) {
	doc := markdown.Parser().Parse(text.NewReader(src))

	var found []byte
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		block, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		lang := strings.ToLower(string(block.Language(src)))
		if lang != "" && lang != "json" {
			return ast.WalkSkipChildren, nil
		}
		body := fenceBody(block, src)
		if len(body) == 0 || body[0] != '{' {
			return ast.WalkSkipChildren, nil
		}
		found = body
		return ast.WalkStop, nil
	})
	return found, found != nil
}

func fenceBody(block *ast.FencedCodeBlock, src []byte) []byte {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return bytes.TrimSpace(buf.Bytes())
}
