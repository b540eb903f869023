package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/joseph-ayodele/diagram-extractor/internal/core"
	"github.com/joseph-ayodele/diagram-extractor/internal/ingest"
)

// Options tunes request handling.
type Options struct {
	MaxMemory int64 // multipart bytes kept in memory before spilling to disk
}

// NewRouter wires the HTTP surface: POST /extract and GET /healthz.
func NewRouter(proc *core.Processor, stager *ingest.Stager, opts Options, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxMemory <= 0 {
		opts.MaxMemory = 32 << 20
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	ext := NewExtractionService(proc, stager, opts.MaxMemory, logger)
	r.Post("/extract", ext.Extract)
	return r
}
