package constants

import (
	"mime"
	"strings"
)

// MIME types handed to the model provider.
const (
	MimeTypePDF    = "application/pdf"
	MimeTypeBinary = "application/octet-stream"
)

// AllowedExtensions holds the extensions the extractor knows how to label for the model.
var AllowedExtensions = map[string]string{
	"pdf": MimeTypePDF,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MimeTypeForExt maps an extension (with or without the dot) to a MIME type.
// Unknown extensions fall back to the system table and then to octet-stream.
func MimeTypeForExt(ext string) string {
	ext = NormalizeExt(ext)
	if mt, ok := AllowedExtensions[ext]; ok {
		return mt
	}
	if ext != "" {
		if mt := mime.TypeByExtension("." + ext); mt != "" {
			return mt
		}
	}
	return MimeTypeBinary
}

// IsPDF reports whether the extension names a PDF document.
func IsPDF(ext string) bool {
	return NormalizeExt(ext) == "pdf"
}
