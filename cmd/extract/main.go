package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joseph-ayodele/diagram-extractor/internal/common"
	"github.com/joseph-ayodele/diagram-extractor/internal/core"
	"github.com/joseph-ayodele/diagram-extractor/internal/llm/gemini"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: extract <pdf> [figure_no] [times]")
		os.Exit(2)
	}
	path := os.Args[1]
	figureNo := ""
	if len(os.Args) >= 3 {
		figureNo = os.Args[2]
	}
	times := 1
	if len(os.Args) >= 4 {
		if n, err := strconv.Atoi(os.Args[3]); err == nil && n > 0 {
			times = n
		}
	}

	cfg, err := common.LoadConfig()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(2)
	}

	ctx := context.Background()
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

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	base := filepath.Base(path)
	failed := false
	for i := 1; i <= times; i++ {
		runCtx, cancelRun := context.WithTimeout(ctx, cfg.LLM.Timeout+cfg.LLM.FileMaxWait)
		start := time.Now()
		logger.Info("extract.run.start", "iter", i, "file", base, "figure_no", figureNo)

		res, err := proc.Process(runCtx, core.ExtractionRequest{FilePath: path, FigureNo: figureNo})
		cancelRun()

		if err != nil {
			failed = true
			logger.Error("extract.run.error", "iter", i, "status", common.HTTPStatus(err), "err", err)
			continue
		}
		logger.Info("extract.run.ok", "iter", i, "elapsed_ms", time.Since(start).Milliseconds())
		if err := enc.Encode(res); err != nil {
			logger.Error("encode result", "error", err)
			os.Exit(1)
		}
	}
	if failed {
		os.Exit(1)
	}
}
