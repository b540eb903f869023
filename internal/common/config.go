package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/diagram-extractor/constants"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Upload UploadConfig `yaml:"upload"`
	LLM    LLMConfig    `yaml:"llm"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr          string        `yaml:"http_addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// UploadConfig controls where uploads are staged while a request is in flight.
type UploadConfig struct {
	Dir               string `yaml:"dir"`
	MaxMemoryMB       int    `yaml:"max_memory_mb"`
	MaxFilenameLength int    `yaml:"max_filename_length"`
}

// LLMConfig holds Gemini-related configuration
type LLMConfig struct {
	Model            string        `yaml:"model"`
	APIKey           string        `yaml:"api_key"`
	BaseURL          string        `yaml:"base_url"`
	Temperature      float32       `yaml:"temperature"`
	Timeout          time.Duration `yaml:"timeout"`
	FilePollInterval time.Duration `yaml:"file_poll_interval"`
	FileMaxWait      time.Duration `yaml:"file_max_wait"`
	KeepRemoteFiles  bool          `yaml:"keep_remote_files"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | text
}

// DefaultConfig returns the built-in defaults before any file or env overrides.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:          constants.DefaultHTTPAddr,
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Upload: UploadConfig{
			Dir:               os.TempDir(),
			MaxMemoryMB:       constants.DefaultUploadMaxMB,
			MaxFilenameLength: constants.MaxFilenameRunes,
		},
		LLM: LLMConfig{
			Model:            constants.DefaultModel,
			Temperature:      0.0,
			Timeout:          120 * time.Second,
			FilePollInterval: 2 * time.Second,
			FileMaxWait:      2 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration: defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return NewAppError(CodeConfig, fmt.Sprintf("read config %s", path), err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return NewAppError(CodeConfig, fmt.Sprintf("parse config %s", path), err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.HTTPAddr = getEnv("HTTP_ADDR", c.Server.HTTPAddr)
	c.Server.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Upload.Dir = getEnv("UPLOAD_DIR", c.Upload.Dir)
	c.Upload.MaxMemoryMB = getEnvAsInt("MAX_MULTIPART_MEMORY_MB", c.Upload.MaxMemoryMB)

	c.LLM.Model = getEnv("GEMINI_MODEL", c.LLM.Model)
	c.LLM.APIKey = firstEnv([]string{"API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"}, c.LLM.APIKey)
	c.LLM.BaseURL = getEnv("GEMINI_BASE_URL", c.LLM.BaseURL)
	c.LLM.Temperature = getEnvAsFloat32("GEMINI_TEMPERATURE", c.LLM.Temperature)
	c.LLM.Timeout = getEnvAsDuration("GEMINI_TIMEOUT", c.LLM.Timeout)
	c.LLM.FilePollInterval = getEnvAsDuration("GEMINI_FILE_POLL_INTERVAL", c.LLM.FilePollInterval)
	c.LLM.FileMaxWait = getEnvAsDuration("GEMINI_FILE_MAX_WAIT", c.LLM.FileMaxWait)
	c.LLM.KeepRemoteFiles = getEnvAsBool("GEMINI_KEEP_REMOTE_FILES", c.LLM.KeepRemoteFiles)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func firstEnv(keys []string, defaultValue string) string {
	for _, k := range keys {
		if value := os.Getenv(k); value != "" {
			return value
		}
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// MaxMemoryBytes is the multipart in-memory threshold; larger parts spill to disk.
func (u UploadConfig) MaxMemoryBytes() int64 {
	return int64(u.MaxMemoryMB) << 20
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("API_KEY", c.LLM.APIKey, Required).
		Field("GEMINI_MODEL", c.LLM.Model, Required, MaxLength(128)).
		Field("GEMINI_TEMPERATURE", c.LLM.Temperature, FloatRange(0, 2)).
		Field("GEMINI_TIMEOUT", c.LLM.Timeout, Positive).
		Field("GEMINI_FILE_POLL_INTERVAL", c.LLM.FilePollInterval, Positive).
		Field("GEMINI_FILE_MAX_WAIT", c.LLM.FileMaxWait, Positive).
		Field("HTTP_ADDR", c.Server.HTTPAddr, Required).
		Field("UPLOAD_DIR", c.Upload.Dir, Required).
		Field("MAX_MULTIPART_MEMORY_MB", c.Upload.MaxMemoryMB, Positive).
		Field("upload.max_filename_length", c.Upload.MaxFilenameLength, Positive)
	return ValidateAndReturnError(v)
}
