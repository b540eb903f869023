package constants

// Service defaults.
const (
	DefaultModel       = "gemini-2.0-flash"
	DefaultHTTPAddr    = ":5000"
	ResponseMIMEJSON   = "application/json"
	MaxFilenameRunes   = 200
	DefaultUploadMaxMB = 32
)
