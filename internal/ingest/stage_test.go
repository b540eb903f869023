package ingest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type memSource struct {
	name    string
	data    []byte
	openErr error
}

func (m memSource) Name() string { return m.name }

func (m memSource) Open() (io.ReadCloser, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	return io.NopCloser(bytes.NewReader(m.data)), nil
}

func newTestStager(t *testing.T) *Stager {
	t.Helper()
	return NewStager(t.TempDir(), 200, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStage_WritesAndHashes(t *testing.T) {
	s := newTestStager(t)
	data := []byte("%PDF-1.4 diagram bytes")

	up, err := s.Stage(memSource{name: "Patent Figures.pdf", data: data})
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if filepath.Dir(up.Path) != s.Dir {
		t.Errorf("staged outside dir: %s", up.Path)
	}
	if !strings.HasSuffix(up.Path, "-Patent Figures.pdf") {
		t.Errorf("staged name should keep the original name, got %s", up.Path)
	}
	if up.FileExt != "pdf" || up.Size != int64(len(data)) {
		t.Errorf("upload = %+v", up)
	}
	sum := sha256.Sum256(data)
	if up.HashHex != hex.EncodeToString(sum[:]) {
		t.Errorf("hash = %s", up.HashHex)
	}
	got, err := os.ReadFile(up.Path)
	if err != nil || !bytes.Equal(got, data) {
		t.Fatalf("staged content mismatch: %v", err)
	}

	s.Remove(up)
	if _, err := os.Stat(up.Path); !os.IsNotExist(err) {
		t.Fatalf("staged file still present: %v", err)
	}
	s.Remove(up)
}

func TestStage_SameNameDoesNotCollide(t *testing.T) {
	s := newTestStager(t)
	a, err := s.Stage(memSource{name: "a.pdf", data: []byte("one")})
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Stage(memSource{name: "a.pdf", data: []byte("two")})
	if err != nil {
		t.Fatal(err)
	}
	if a.Path == b.Path {
		t.Fatalf("two uploads share %s", a.Path)
	}
}

func TestStage_TraversalStaysInDir(t *testing.T) {
	s := newTestStager(t)
	up, err := s.Stage(memSource{name: "../../etc/passwd.pdf", data: []byte("x")})
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	defer s.Remove(up)
	if filepath.Dir(up.Path) != s.Dir || up.Filename != "passwd.pdf" {
		t.Fatalf("upload escaped staging dir: %+v", up)
	}
}

func TestStage_OpenError(t *testing.T) {
	s := newTestStager(t)
	boom := errors.New("boom")
	_, err := s.Stage(memSource{name: "a.pdf", openErr: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("expected open error, got %v", err)
	}
	if err.Error() != "open upload: boom" {
		t.Errorf("err = %q", err)
	}
	entries, _ := os.ReadDir(s.Dir)
	if len(entries) != 0 {
		t.Fatalf("dir not empty after failed stage: %d entries", len(entries))
	}
}

func TestSafeFilename(t *testing.T) {
	long := strings.Repeat("a", 300) + ".pdf"
	cases := []struct {
		in, want string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd.pdf", "passwd.pdf"},
		{`C:\Users\me\scan.pdf`, "scan.pdf"},
		{".hidden.pdf", "hidden.pdf"},
		{"", "upload"},
		{"/", "upload"},
		{"..", "upload"},
		{"a\x00b.pdf", "ab.pdf"},
		{"tab\tname.pdf", "tab_name.pdf"},
		{long, strings.Repeat("a", 196) + ".pdf"},
	}
	for _, tc := range cases {
		if got := SafeFilename(tc.in, 200); got != tc.want {
			t.Errorf("SafeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
