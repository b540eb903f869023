package ingest

import "io"

// Upload is a request-scoped copy of a client file on local disk.
type Upload struct {
	Path     string // staged location; removed when the request ends
	Filename string // sanitized original filename
	FileExt  string
	Size     int64
	HashHex  string
}

// Source is an incoming file: a name plus a way to open its bytes.
// *multipart.FileHeader is adapted by FromFileHeader.
type Source interface {
	Name() string
	Open() (io.ReadCloser, error)
}
