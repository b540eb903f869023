// Package document reads cheap metadata from uploaded documents. It never
// rejects a file: callers log what it finds and carry on.
package document

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/diagram-extractor/constants"
)

func init() {
	// pdfcpu otherwise writes a config dir under the user's home on first use.
	api.DisableConfigDir()
}

// Info summarizes a document for logging.
type Info struct {
	Filename  string
	Ext       string
	MIMEType  string
	SizeBytes int64
	Pages     int // 0 when the page count could not be read
}

// Inspect stats path and, for PDFs, counts pages with pdfcpu.
// A PDF that pdfcpu cannot read still yields Info alongside the error.
func Inspect(path string) (Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	ext := constants.NormalizeExt(filepath.Ext(path))
	info := Info{
		Filename:  filepath.Base(path),
		Ext:       ext,
		MIMEType:  constants.MimeTypeForExt(ext),
		SizeBytes: st.Size(),
	}
	if !constants.IsPDF(ext) {
		return info, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return info, err
	}
	defer f.Close()

	n, err := api.PageCount(f, model.NewDefaultConfiguration())
	if err != nil {
		return info, fmt.Errorf("pdfcpu page count: %w", err)
	}
	info.Pages = n
	return info, nil
}
