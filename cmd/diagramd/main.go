package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/diagram-extractor/internal/common"
	"github.com/joseph-ayodele/diagram-extractor/internal/core"
	"github.com/joseph-ayodele/diagram-extractor/internal/ingest"
	"github.com/joseph-ayodele/diagram-extractor/internal/llm/gemini"
	"github.com/joseph-ayodele/diagram-extractor/internal/server"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(2)
	}
	logger := common.NewLogger(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(2)
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	describer, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:           cfg.LLM.APIKey,
		BaseURL:          cfg.LLM.BaseURL,
		Model:            cfg.LLM.Model,
		Temperature:      cfg.LLM.Temperature,
		Timeout:          cfg.LLM.Timeout,
		FilePollInterval: cfg.LLM.FilePollInterval,
		FileMaxWait:      cfg.LLM.FileMaxWait,
		KeepRemoteFiles:  cfg.LLM.KeepRemoteFiles,
	}, logger)
	if err != nil {
		logger.Error("gemini client", "error", err)
		os.Exit(1)
	}

	proc, err := core.NewProcessor(logger, describer)
	if err != nil {
		logger.Error("processor", "error", err)
		os.Exit(1)
	}
	stager := ingest.NewStager(cfg.Upload.Dir, cfg.Upload.MaxFilenameLength, logger)

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           server.NewRouter(proc, stager, server.Options{MaxMemory: cfg.Upload.MaxMemoryBytes()}, logger),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http serving", "addr", srv.Addr, "model", cfg.LLM.Model, "upload_dir", stager.Dir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped.")
}
