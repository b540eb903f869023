package common

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var configEnvKeys = []string{
	"CONFIG_FILE", "HTTP_ADDR", "SHUTDOWN_TIMEOUT", "UPLOAD_DIR", "MAX_MULTIPART_MEMORY_MB",
	"GEMINI_MODEL", "API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY", "GEMINI_BASE_URL",
	"GEMINI_TEMPERATURE", "GEMINI_TIMEOUT", "GEMINI_FILE_POLL_INTERVAL", "GEMINI_FILE_MAX_WAIT",
	"GEMINI_KEEP_REMOTE_FILES", "LOG_LEVEL", "LOG_FORMAT",
}

// clearConfigEnv blanks every key LoadConfig reads; empty values count as unset.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.HTTPAddr != ":5000" {
		t.Errorf("addr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.LLM.Model == "" || cfg.LLM.Temperature != 0 {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.Upload.Dir != os.TempDir() {
		t.Errorf("upload dir = %q", cfg.Upload.Dir)
	}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing api key should fail validation, got %v", err)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("GEMINI_TEMPERATURE", "0.7")
	t.Setenv("GEMINI_TIMEOUT", "30s")
	t.Setenv("GEMINI_KEEP_REMOTE_FILES", "true")
	t.Setenv("MAX_MULTIPART_MEMORY_MB", "8")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.APIKey != "gemini-key" {
		t.Errorf("api key = %q, want GEMINI_API_KEY to win over GOOGLE_API_KEY", cfg.LLM.APIKey)
	}
	if cfg.Server.HTTPAddr != "127.0.0.1:9000" {
		t.Errorf("addr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.LLM.Temperature != 0.7 {
		t.Errorf("temperature = %v", cfg.LLM.Temperature)
	}
	if cfg.LLM.Timeout != 30*time.Second {
		t.Errorf("timeout = %v", cfg.LLM.Timeout)
	}
	if !cfg.LLM.KeepRemoteFiles {
		t.Error("keep remote files not applied")
	}
	if got := cfg.Upload.MaxMemoryBytes(); got != 8<<20 {
		t.Errorf("max memory = %d", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	t.Setenv("API_KEY", "primary")
	cfg, _ = LoadConfig()
	if cfg.LLM.APIKey != "primary" {
		t.Errorf("API_KEY should take precedence, got %q", cfg.LLM.APIKey)
	}
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  http_addr: ":7000"
upload:
  dir: /srv/uploads
llm:
  model: gemini-1.5-pro
  api_key: from-file
  file_max_wait: 45s
log:
  level: debug
  format: text
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("GEMINI_MODEL", "gemini-2.0-flash-lite")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.HTTPAddr != ":7000" || cfg.Upload.Dir != "/srv/uploads" || cfg.LLM.APIKey != "from-file" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.LLM.FileMaxWait != 45*time.Second {
		t.Errorf("file max wait = %v", cfg.LLM.FileMaxWait)
	}
	if cfg.LLM.Model != "gemini-2.0-flash-lite" {
		t.Errorf("env should override file, model = %q", cfg.LLM.Model)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("defaults should survive a partial file, shutdown = %v", cfg.Server.ShutdownTimeout)
	}
}

func TestLoadConfig_BadFile(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("server: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	_, err := LoadConfig()
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Code != CodeConfig {
		t.Fatalf("expected config AppError, got %v", err)
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.APIKey = "k"
	cfg.LLM.Temperature = 3
	cfg.Upload.MaxMemoryMB = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := ErrorMessage(err)
	for _, field := range []string{"GEMINI_TEMPERATURE", "MAX_MULTIPART_MEMORY_MB"} {
		if !strings.Contains(msg, field) {
			t.Errorf("message %q does not mention %s", msg, field)
		}
	}
}
