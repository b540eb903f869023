package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/joseph-ayodele/diagram-extractor/constants"
	"github.com/joseph-ayodele/diagram-extractor/internal/common"
	"github.com/joseph-ayodele/diagram-extractor/internal/llm"
)

var (
	ErrEmptyResponse = errors.New("gemini returned no text")
	ErrFileFailed    = errors.New("gemini file processing failed")
)

// DescribeDiagrams uploads the document to the Files API, runs a single
// generation with the prompt, and deletes the remote copy afterwards.
func (c *Client) DescribeDiagrams(ctx context.Context, req llm.DescribeRequest) ([]byte, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
		ctx = common.WithRequestID(ctx, rid)
	}
	start := time.Now()

	c.log.Info("llm.describe.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"mime_type", req.MIMEType,
		"display_name", req.DisplayName,
		"prompt_len", len(req.Prompt),
		"structured", req.Schema != nil,
	)

	file, err := c.files.UploadFromPath(ctx, req.FilePath, &genai.UploadFileConfig{
		MIMEType:    req.MIMEType,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		c.log.Error("llm.describe.upload_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("upload file: %w", err)
	}
	c.log.Info("llm.describe.upload_ok", "req_id", rid, "file", file.Name, "state", file.State)

	if !c.cfg.KeepRemoteFiles {
		defer c.deleteRemote(ctx, rid, file.Name)
	}

	file, err = c.waitActive(ctx, rid, file)
	if err != nil {
		c.log.Error("llm.describe.file_not_ready",
			"req_id", rid, "file", file.Name, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	mimeType := file.MIMEType
	if mimeType == "" {
		mimeType = req.MIMEType
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromURI(file.URI, mimeType),
			genai.NewPartFromText(req.Prompt),
		}, genai.RoleUser),
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.cfg.Temperature),
	}
	if req.Schema != nil {
		genCfg.ResponseMIMEType = constants.ResponseMIMEJSON
		genCfg.ResponseSchema = ToGenaiSchema(req.Schema)
	}

	resp, err := c.models.GenerateContent(ctx, c.cfg.Model, contents, genCfg)
	if err != nil {
		c.log.Error("llm.describe.generate_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		c.log.Error("llm.describe.empty_response",
			"req_id", rid, "candidates", len(resp.Candidates),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, ErrEmptyResponse
	}

	attrs := []any{
		"req_id", rid,
		"text_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	}
	if u := resp.UsageMetadata; u != nil {
		attrs = append(attrs,
			"prompt_tokens", u.PromptTokenCount,
			"candidate_tokens", u.CandidatesTokenCount,
			"total_tokens", u.TotalTokenCount,
		)
	}
	c.log.Info("llm.describe.ok", attrs...)
	return []byte(text), nil
}

// waitActive polls an uploaded file until the service finishes processing it.
func (c *Client) waitActive(ctx context.Context, rid string, file *genai.File) (*genai.File, error) {
	if file.State != genai.FileStateProcessing {
		if file.State == genai.FileStateFailed {
			return file, ErrFileFailed
		}
		return file, nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.FileMaxWait)
	defer cancel()

	ticker := time.NewTicker(c.cfg.FilePollInterval)
	defer ticker.Stop()

	for file.State == genai.FileStateProcessing {
		select {
		case <-waitCtx.Done():
			return file, fmt.Errorf("wait for file %s: %w", file.Name, waitCtx.Err())
		case <-ticker.C:
		}
		next, err := c.files.Get(waitCtx, file.Name, nil)
		if err != nil {
			return file, fmt.Errorf("get file %s: %w", file.Name, err)
		}
		file = next
		c.log.Debug("llm.describe.file_poll", "req_id", rid, "file", file.Name, "state", file.State)
	}
	if file.State == genai.FileStateFailed {
		return file, ErrFileFailed
	}
	return file, nil
}

// deleteRemote is best effort: a failed delete is logged and the files expire server-side.
func (c *Client) deleteRemote(ctx context.Context, rid, name string) {
	if name == "" {
		return
	}
	delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()
	if _, err := c.files.Delete(delCtx, name, nil); err != nil {
		c.log.Warn("llm.describe.delete_remote_error", "req_id", rid, "file", name, "error", err)
		return
	}
	c.log.Debug("llm.describe.delete_remote_ok", "req_id", rid, "file", name)
}
