package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"transcriber-service/internal/domain"
)

// Config holds all runtime configuration for the transcription service.
type Config struct {
	// OpenAIAPIKey authenticates remote transcription calls.
	OpenAIAPIKey string
	// Model is the remote speech-to-text model identifier.
	Model string

	// UploadDir receives caller-supplied media artifacts.
	UploadDir string
	// TranscriptsDir receives completed transcript files.
	TranscriptsDir string

	// SplitThresholdBytes is the size above which an artifact is chunked.
	SplitThresholdBytes int64
	// ChunkTargetBytes is the nominal byte size of each produced chunk.
	ChunkTargetBytes int64

	// RetryMaxAttempts bounds retries of remote calls, first attempt included.
	RetryMaxAttempts int
	// RetryDelay is the fixed pause between retry attempts.
	RetryDelay time.Duration

	// HTTPTimeout bounds each individual remote HTTP call.
	HTTPTimeout time.Duration

	// MetricsAddr enables the Prometheus endpoint when non-empty.
	MetricsAddr string
	// LogLevel selects the zerolog level ("debug", "info", ...).
	LogLevel string
}

// Load reads an optional .env file and builds configuration from the
// process environment.
func Load() (Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds configuration from environment variables with defaults.
func FromEnv() (Config, error) {
	cfg := Config{
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		Model:               envString("TRANSCRIBE_MODEL", domain.DefaultTranscriptionModel),
		UploadDir:           envString("UPLOAD_DIR", "uploads"),
		TranscriptsDir:      envString("TRANSCRIPTS_DIR", "transcriptions"),
		SplitThresholdBytes: envInt64("SPLIT_THRESHOLD_BYTES", 25*1024*1024),
		ChunkTargetBytes:    envInt64("CHUNK_TARGET_BYTES", 20*1024*1024),
		RetryMaxAttempts:    envInt("RETRY_MAX_ATTEMPTS", 3),
		RetryDelay:          envDuration("RETRY_DELAY", 2*time.Second),
		HTTPTimeout:         envDuration("HTTP_TIMEOUT", 5*time.Minute),
		MetricsAddr:         os.Getenv("METRICS_ADDR"),
		LogLevel:            envString("LOG_LEVEL", "info"),
	}

	return cfg, cfg.Validate()
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("config: OPENAI_API_KEY is required")
	}
	if !domain.IsSupportedTranscriptionModel(c.Model) {
		return fmt.Errorf("config: unsupported transcription model %q", c.Model)
	}
	if c.SplitThresholdBytes <= 0 {
		return fmt.Errorf("config: SPLIT_THRESHOLD_BYTES must be positive")
	}
	if c.ChunkTargetBytes <= 0 {
		return fmt.Errorf("config: CHUNK_TARGET_BYTES must be positive")
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("config: RETRY_MAX_ATTEMPTS must be at least 1")
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("config: RETRY_DELAY must not be negative")
	}
	return nil
}

// EnsureDirs creates the upload and transcript directories.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.UploadDir, c.TranscriptsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create directory %s: %w", dir, err)
		}
	}
	return nil
}

// envString returns an environment value or its default when unset.
func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt parses an integer environment value, keeping the default on error.
func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// envInt64 parses a 64-bit integer environment value.
func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

// envDuration parses a Go duration environment value ("2s", "500ms").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}
