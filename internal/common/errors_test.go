package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", NewAppError(CodeFileNotFound, "The file x does not exist.", ErrNotFound), http.StatusNotFound},
		{"invalid", NewAppError(CodeMissingFile, "No file part", ErrInvalidInput), http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("outer: %w", NewAppError(CodeFileNotFound, "gone", ErrNotFound)), http.StatusNotFound},
		{"upstream", NewAppError(CodeModelFailed, "503", errors.Join(ErrUpstream, errors.New("503"))), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HTTPStatus(tc.err); got != tc.want {
				t.Fatalf("HTTPStatus = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	appErr := NewAppError(CodeMalformedOutput, "The model's response could not be parsed as JSON.", errors.New("unexpected EOF"))
	if got := ErrorMessage(fmt.Errorf("wrap: %w", appErr)); got != appErr.Message {
		t.Errorf("got %q", got)
	}
	if got := ErrorMessage(errors.New("raw")); got != "raw" {
		t.Errorf("got %q", got)
	}
	if got := ErrorMessage(nil); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestWrapError(t *testing.T) {
	if WrapError(nil, "ctx") != nil {
		t.Fatal("nil should stay nil")
	}
	err := WrapError(ErrNotFound, "stat upload")
	if !errors.Is(err, ErrNotFound) || err.Error() != "stat upload: resource not found" {
		t.Fatalf("got %v", err)
	}
}
