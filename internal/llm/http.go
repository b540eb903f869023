package llm

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/diagram-extractor/internal/common"
)

// LoggingTransport logs every provider round trip. It does not assume any
// provider; the SDK decides the URL and headers and we only observe them.
type LoggingTransport struct {
	Base   http.RoundTripper
	Logger *slog.Logger
}

// NewHTTPClient returns an *http.Client whose transport logs provider traffic.
func NewHTTPClient(timeout time.Duration, logger *slog.Logger) *http.Client {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &LoggingTransport{Base: http.DefaultTransport, Logger: logger},
	}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	reqID := common.RequestIDFromContext(req.Context())
	if reqID == "" {
		reqID = uuid.New().String()
	}
	start := time.Now()

	// URL.Path only: the query string may carry the API key.
	logger.Info("llm.http.request",
		"req_id", reqID,
		"method", req.Method,
		"host", req.URL.Host,
		"path", req.URL.Path,
		"content_length", req.ContentLength,
	)

	resp, err := base.RoundTrip(req)
	if err != nil {
		logger.Error("llm.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	attrs := []any{
		"req_id", reqID,
		"status", resp.StatusCode,
		"content_length", resp.ContentLength,
		"elapsed_ms", time.Since(start).Milliseconds(),
	}
	if resp.StatusCode/100 != 2 {
		logger.Warn("llm.http.response", attrs...)
	} else {
		logger.Info("llm.http.response", attrs...)
	}
	return resp, nil
}
