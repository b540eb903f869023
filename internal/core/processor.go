package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/diagram-extractor/constants"
	"github.com/joseph-ayodele/diagram-extractor/internal/common"
	"github.com/joseph-ayodele/diagram-extractor/internal/document"
	"github.com/joseph-ayodele/diagram-extractor/internal/llm"
)

// ExtractionRequest is one call's worth of input. FigureNo is optional.
type ExtractionRequest struct {
	FilePath string
	FigureNo string
}

// Processor builds the prompt, hands the document to the model, and parses the reply.
type Processor struct {
	logger    *slog.Logger
	describer llm.DiagramDescriber
	schema    map[string]any
	validator *llm.SchemaValidator
}

func NewProcessor(logger *slog.Logger, describer llm.DiagramDescriber) (*Processor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if describer == nil {
		return nil, errors.New("processor: describer is required")
	}
	schema := llm.BuildDescriptionJSONSchema()
	validator, err := llm.NewSchemaValidator(schema)
	if err != nil {
		return nil, fmt.Errorf("processor: %w", err)
	}
	return &Processor{
		logger:    logger,
		describer: describer,
		schema:    schema,
		validator: validator,
	}, nil
}

// Process runs a single extraction. There is no retry: model and parse
// failures are returned to the caller as AppErrors.
func (p *Processor) Process(ctx context.Context, req ExtractionRequest) (llm.DiagramDescription, error) {
	logger := common.LoggerFromContext(ctx, p.logger)
	start := time.Now()
	path := req.FilePath
	figureNo := strings.TrimSpace(req.FigureNo)

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("processor.extract.file_missing", "path", path)
			return llm.DiagramDescription{}, common.NewAppError(common.CodeFileNotFound,
				fmt.Sprintf("The file %s does not exist.", path), common.ErrNotFound)
		}
		return llm.DiagramDescription{}, common.NewAppError(common.CodeUploadFailed, err.Error(), err)
	}

	info, err := document.Inspect(path)
	if err != nil {
		logger.Warn("processor.extract.inspect_failed", "path", path, "error", err)
	}
	logger.Info("processor.extract.start",
		"file", info.Filename,
		"size_bytes", info.SizeBytes,
		"pages", info.Pages,
		"figure_no", figureNo,
	)

	mimeType := info.MIMEType
	if mimeType == "" {
		mimeType = constants.MimeTypeForExt(filepath.Ext(path))
	}

	raw, err := p.describer.DescribeDiagrams(ctx, llm.DescribeRequest{
		FilePath:    path,
		MIMEType:    mimeType,
		DisplayName: filepath.Base(path),
		Prompt:      llm.BuildPrompt(figureNo),
		Schema:      p.schema,
	})
	if err != nil {
		logger.Error("processor.extract.model_failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return llm.DiagramDescription{}, common.NewAppError(common.CodeModelFailed, err.Error(),
			errors.Join(common.ErrUpstream, err))
	}

	out, err := llm.ParseDescription(raw, p.validator, logger)
	if err != nil {
		logger.Error("processor.extract.parse_failed", "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds())
		return llm.DiagramDescription{}, common.NewAppError(common.CodeMalformedOutput,
			"The model's response could not be parsed as JSON.", errors.Join(common.ErrValidation, err))
	}

	logger.Info("processor.extract.ok",
		"brief_len", len(out.BriefDescription),
		"detailed_len", len(out.DetailedDescription),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
