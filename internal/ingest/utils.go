package ingest

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const fallbackName = "upload"

// SafeFilename reduces a client-supplied filename to a bare base name that is
// safe to embed in a local path. Hidden-file dots are stripped.
func SafeFilename(name string, maxRunes int) string {
	name = strings.ReplaceAll(name, `\`, "/")
	base := filepath.Base(strings.TrimSpace(name))
	base = strings.TrimLeft(base, ".")
	base = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == 0:
			return -1
		case r < 0x20 || r == 0x7f:
			return '_'
		}
		return r
	}, base)
	if base == "" {
		return fallbackName
	}
	if maxRunes > 0 && utf8.RuneCountInString(base) > maxRunes {
		ext := filepath.Ext(base)
		runes := []rune(strings.TrimSuffix(base, ext))
		keep := maxRunes - utf8.RuneCountInString(ext)
		if keep < 1 {
			return string([]rune(base)[:maxRunes])
		}
		base = string(runes[:keep]) + ext
	}
	return base
}
