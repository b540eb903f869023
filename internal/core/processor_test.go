package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joseph-ayodele/diagram-extractor/internal/common"
	"github.com/joseph-ayodele/diagram-extractor/internal/llm"
)

type fakeDescriber struct {
	out   string
	err   error
	calls int
	got   llm.DescribeRequest
}

func (f *fakeDescriber) DescribeDiagrams(_ context.Context, req llm.DescribeRequest) ([]byte, error) {
	f.calls++
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.out), nil
}

func newTestProcessor(t *testing.T, d llm.DiagramDescriber) *Processor {
	t.Helper()
	p, err := NewProcessor(slog.New(slog.NewTextHandler(io.Discard, nil)), d)
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}
	return p
}

func writeUpload(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload-1-patent.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewProcessor_RequiresDescriber(t *testing.T) {
	if _, err := NewProcessor(nil, nil); err == nil {
		t.Fatal("expected error for nil describer")
	}
}

func TestProcess_Success(t *testing.T) {
	d := &fakeDescriber{out: `{"brief_description":"Figure 1: A pump.","detailed_description":"Figure 1: The impeller (20) turns."}`}
	p := newTestProcessor(t, d)
	path := writeUpload(t)

	out, err := p.Process(context.Background(), ExtractionRequest{FilePath: path})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if out.BriefDescription != "Figure 1: A pump." || out.DetailedDescription != "Figure 1: The impeller (20) turns." {
		t.Fatalf("out = %+v", out)
	}

	if d.got.FilePath != path || d.got.MIMEType != "application/pdf" || d.got.DisplayName != "upload-1-patent.pdf" {
		t.Errorf("request = %+v", d.got)
	}
	if d.got.Schema == nil {
		t.Error("schema not forwarded")
	}
	if d.got.Prompt != llm.BuildPrompt("") {
		t.Error("expected the all-diagrams prompt")
	}
}

func TestProcess_FigurePrompt(t *testing.T) {
	d := &fakeDescriber{out: `{"brief_description":"b","detailed_description":"d"}`}
	p := newTestProcessor(t, d)

	if _, err := p.Process(context.Background(), ExtractionRequest{FilePath: writeUpload(t), FigureNo: " 4 "}); err != nil {
		t.Fatalf("process: %v", err)
	}
	if d.got.Prompt != llm.BuildPrompt("4") {
		t.Error("expected the figure-scoped prompt")
	}
}

func TestProcess_MissingFile(t *testing.T) {
	d := &fakeDescriber{}
	p := newTestProcessor(t, d)
	path := filepath.Join(t.TempDir(), "gone.pdf")

	_, err := p.Process(context.Background(), ExtractionRequest{FilePath: path})
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if common.HTTPStatus(err) != http.StatusNotFound {
		t.Errorf("status = %d", common.HTTPStatus(err))
	}
	if msg := common.ErrorMessage(err); msg != "The file "+path+" does not exist." {
		t.Errorf("message = %q", msg)
	}
	if d.calls != 0 {
		t.Error("model should not be called for a missing file")
	}
}

func TestProcess_ModelError(t *testing.T) {
	p := newTestProcessor(t, &fakeDescriber{err: errors.New("429 resource exhausted")})

	_, err := p.Process(context.Background(), ExtractionRequest{FilePath: writeUpload(t)})
	if !errors.Is(err, common.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if common.HTTPStatus(err) != http.StatusInternalServerError {
		t.Errorf("status = %d", common.HTTPStatus(err))
	}
	if !strings.Contains(common.ErrorMessage(err), "429 resource exhausted") {
		t.Errorf("message = %q", common.ErrorMessage(err))
	}
}

func TestProcess_MalformedOutput(t *testing.T) {
	p := newTestProcessor(t, &fakeDescriber{out: "Sorry, I can't see any figures."})

	_, err := p.Process(context.Background(), ExtractionRequest{FilePath: writeUpload(t)})
	if !errors.Is(err, llm.ErrMalformedOutput) {
		t.Fatalf("expected ErrMalformedOutput, got %v", err)
	}
	if common.HTTPStatus(err) != http.StatusInternalServerError {
		t.Errorf("status = %d", common.HTTPStatus(err))
	}
	if common.ErrorMessage(err) != "The model's response could not be parsed as JSON." {
		t.Errorf("message = %q", common.ErrorMessage(err))
	}
}

func TestProcess_PerFigureOutputFlattened(t *testing.T) {
	p := newTestProcessor(t, &fakeDescriber{out: `{"1":{"brief_description":"B1","detailed_description":"D1"},"2":{"brief_description":"B2","detailed_description":"D2"}}`})

	out, err := p.Process(context.Background(), ExtractionRequest{FilePath: writeUpload(t)})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if out.BriefDescription != "B1\nB2" || out.DetailedDescription != "D1\nD2" {
		t.Fatalf("out = %+v", out)
	}
}
