package gemini

import (
	"context"
	"log/slog"
	"os"
	"time"

	"google.golang.org/genai"

	"github.com/joseph-ayodele/diagram-extractor/constants"
	"github.com/joseph-ayodele/diagram-extractor/internal/llm"
)

// Config for the Gemini client.
type Config struct {
	APIKey           string        // if empty, falls back to env GEMINI_API_KEY
	BaseURL          string        // default is the SDK's generativelanguage endpoint
	Model            string        // e.g., "gemini-2.0-flash"
	Temperature      float32       // 0..2
	Timeout          time.Duration // http client timeout
	FilePollInterval time.Duration // how often to re-check a PROCESSING upload
	FileMaxWait      time.Duration // upper bound for an upload to become ACTIVE
	KeepRemoteFiles  bool          // skip Files.Delete after generation
}

// fileService is the subset of *genai.Files the client uses.
type fileService interface {
	UploadFromPath(ctx context.Context, path string, config *genai.UploadFileConfig) (*genai.File, error)
	Get(ctx context.Context, name string, config *genai.GetFileConfig) (*genai.File, error)
	Delete(ctx context.Context, name string, config *genai.DeleteFileConfig) (*genai.DeleteFileResponse, error)
}

// modelService is the subset of *genai.Models the client uses.
type modelService interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Client struct {
	cfg    Config
	files  fileService
	models modelService
	log    *slog.Logger
}

var _ llm.DiagramDescriber = (*Client)(nil)

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	cfg = withDefaults(cfg)
	if logger == nil {
		logger = slog.Default()
	}
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: llm.NewHTTPClient(cfg.Timeout, logger),
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	gc, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return newClient(cfg, gc.Files, gc.Models, logger), nil
}

func newClient(cfg Config, files fileService, models modelService, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    withDefaults(cfg),
		files:  files,
		models: models,
		log:    logger,
	}
}

func withDefaults(cfg Config) Config {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = constants.DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.FilePollInterval <= 0 {
		cfg.FilePollInterval = 2 * time.Second
	}
	if cfg.FileMaxWait <= 0 {
		cfg.FileMaxWait = 2 * time.Minute
	}
	return cfg
}
