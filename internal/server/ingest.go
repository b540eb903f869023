package server

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/joseph-ayodele/diagram-extractor/internal/common"
	"github.com/joseph-ayodele/diagram-extractor/internal/core"
	"github.com/joseph-ayodele/diagram-extractor/internal/ingest"
)

// Multipart field names accepted by POST /extract.
const (
	fieldFile     = "file"
	fieldFigureNo = "figure_no"
)

// Caller-facing messages for rejected uploads.
const (
	msgNoFilePart     = "No file part"
	msgNoSelectedFile = "No selected file"
)

type ExtractionService struct {
	processor *core.Processor
	stager    *ingest.Stager
	maxMemory int64
	logger    *slog.Logger
}

func NewExtractionService(proc *core.Processor, stager *ingest.Stager, maxMemory int64, logger *slog.Logger) *ExtractionService {
	return &ExtractionService{
		processor: proc,
		stager:    stager,
		maxMemory: maxMemory,
		logger:    logger,
	}
}

// Extract handles POST /extract: stage the upload, run the processor, and
// always remove the staged copy before returning.
func (s *ExtractionService) Extract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := common.LoggerFromContext(ctx, s.logger)

	if err := r.ParseMultipartForm(s.maxMemory); err != nil {
		logger.Warn("extract request is not a readable multipart form", "error", err)
		s.fail(w, common.NewAppError(common.CodeMissingFile, msgNoFilePart, errors.Join(common.ErrInvalidInput, err)))
		return
	}
	defer func(form *multipart.Form) {
		if err := form.RemoveAll(); err != nil {
			logger.Warn("multipart cleanup failed", "error", err)
		}
	}(r.MultipartForm)

	fh, msg := pickFile(r.MultipartForm)
	if fh == nil {
		logger.Warn("extract request rejected", "reason", msg)
		s.fail(w, common.NewAppError(common.CodeMissingFile, msg, common.ErrInvalidInput))
		return
	}
	figureNo := strings.TrimSpace(r.PostFormValue(fieldFigureNo))

	up, err := s.stager.Stage(ingest.FromFileHeader(fh))
	if err != nil {
		logger.Error("staging upload failed", "filename", fh.Filename, "error", err)
		s.fail(w, common.NewAppError(common.CodeUploadFailed, err.Error(), errors.Join(common.ErrInternal, err)))
		return
	}
	defer s.stager.Remove(up)
	logger.Info("upload staged", "filename", up.Filename, "bytes", up.Size, "sha256", up.HashHex, "figure_no", figureNo)

	res, err := s.processor.Process(ctx, core.ExtractionRequest{
		FilePath: up.Path,
		FigureNo: figureNo,
	})
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("extract request cancelled", "error", err)
		}
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *ExtractionService) fail(w http.ResponseWriter, err error) {
	writeError(w, common.HTTPStatus(err), common.ErrorMessage(err))
}

// pickFile returns the uploaded file part, or nil and the rejection message.
// A part sent with an empty filename lands in form.Value, not form.File.
func pickFile(form *multipart.Form) (*multipart.FileHeader, string) {
	if form == nil {
		return nil, msgNoFilePart
	}
	files := form.File[fieldFile]
	if len(files) == 0 {
		if _, ok := form.Value[fieldFile]; ok {
			return nil, msgNoSelectedFile
		}
		return nil, msgNoFilePart
	}
	fh := files[0]
	if strings.TrimSpace(fh.Filename) == "" {
		return nil, msgNoSelectedFile
	}
	return fh, ""
}
