package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/diagram-extractor/constants"
	"github.com/joseph-ayodele/diagram-extractor/internal/common"
)

// Stager copies incoming files into Dir for the lifetime of one request.
type Stager struct {
	Dir          string
	MaxNameRunes int
	logger       *slog.Logger
}

func NewStager(dir string, maxNameRunes int, logger *slog.Logger) *Stager {
	if dir == "" {
		dir = os.TempDir()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Stager{Dir: dir, MaxNameRunes: maxNameRunes, logger: logger}
}

// Stage writes src under a unique name derived from its filename and hashes it on the way.
// The caller owns the returned Upload and must call Remove.
func (s *Stager) Stage(src Source) (Upload, error) {
	var out Upload

	name := SafeFilename(src.Name(), s.MaxNameRunes)
	in, err := src.Open()
	if err != nil {
		return out, common.WrapError(err, "open upload")
	}
	defer func(in io.ReadCloser) {
		if err := in.Close(); err != nil {
			s.logger.Warn("ingest.stage.source_close_error", "error", err)
		}
	}(in)

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return out, common.WrapError(err, "upload dir")
	}
	dst, err := os.CreateTemp(s.Dir, "upload-*-"+name)
	if err != nil {
		return out, common.WrapError(err, "create staged file")
	}

	h := sha256.New()
	n, copyErr := io.Copy(io.MultiWriter(dst, h), in)
	closeErr := dst.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(dst.Name())
		return out, common.WrapError(err, "write staged file")
	}

	out = Upload{
		Path:     dst.Name(),
		Filename: name,
		FileExt:  constants.NormalizeExt(filepath.Ext(name)),
		Size:     n,
		HashHex:  hex.EncodeToString(h.Sum(nil)),
	}
	s.logger.Debug("ingest.stage.ok", "path", out.Path, "bytes", out.Size, "sha256", out.HashHex)
	return out, nil
}

// Remove deletes the staged copy. Missing files are not an error.
func (s *Stager) Remove(u Upload) {
	if u.Path == "" {
		return
	}
	if err := os.Remove(u.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("ingest.stage.remove_error", "path", u.Path, "error", err)
	}
}

type fileHeaderSource struct {
	fh *multipart.FileHeader
}

// FromFileHeader adapts a multipart file part to a Source.
func FromFileHeader(fh *multipart.FileHeader) Source {
	return fileHeaderSource{fh: fh}
}

func (f fileHeaderSource) Name() string { return f.fh.Filename }

func (f fileHeaderSource) Open() (io.ReadCloser, error) { return f.fh.Open() }
