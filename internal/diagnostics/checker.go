// Package diagnostics validates the external tools and filesystem
// paths the transcription service depends on.
package diagnostics

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"transcriber-service/internal/config"
	"transcriber-service/internal/domain"
)

// Checker validates external tools and required filesystem paths.
type Checker struct {
	lookPath   func(string) (string, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return &Checker{
		lookPath:   exec.LookPath,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// NewCheckerForTests creates a checker with injectable dependencies.
func NewCheckerForTests(
	lookPath func(string) (string, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		lookPath:   lookPath,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
	}
}

// Run executes all startup checks and returns a combined report.
// ffmpeg and ffprobe gate the splitting path; yt-dlp gates URL
// submissions for extractor-backed hosts.
func (c *Checker) Run(cfg config.Config) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkTool("ffmpeg"),
		c.checkTool("ffprobe"),
		c.checkTool("yt-dlp"),
		c.checkAPIKey(cfg.OpenAIAPIKey),
		c.checkDir("upload_dir", "Upload directory", cfg.UploadDir),
		c.checkDir("transcripts_dir", "Transcripts directory", cfg.TranscriptsDir),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkTool verifies a required CLI executable is on PATH.
func (c *Checker) checkTool(name string) domain.DiagnosticItem {
	path, err := c.lookPath(name)
	if err != nil {
		return domain.DiagnosticItem{
			ID:      "tool_" + name,
			Name:    name,
			Status:  domain.DiagnosticStatusFail,
			Message: fmt.Sprintf("Tool not found in PATH: %s", name),
			Hint:    "Install it and ensure the binary is available on PATH.",
		}
	}

	return domain.DiagnosticItem{
		ID:      "tool_" + name,
		Name:    name,
		Status:  domain.DiagnosticStatusPass,
		Message: fmt.Sprintf("Found at %s", path),
	}
}

// checkAPIKey verifies the transcription API credential is configured.
func (c *Checker) checkAPIKey(key string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "openai_api_key",
		Name: "OpenAI API key",
	}

	if strings.TrimSpace(key) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "OpenAI API key is not set."
		item.Hint = "Set OPENAI_API_KEY in the environment or .env file."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = "API key is configured."
	return item
}

// checkDir validates a working directory exists and is writable.
func (c *Checker) checkDir(id, name, dir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   id,
		Name: name,
	}

	if strings.TrimSpace(dir) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("%s is empty.", name)
		item.Hint = "Configure a directory the service can write to."
		return item
	}

	if err := c.mkdirAll(dir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create directory: %s", dir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(dir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Directory is not writable: %s", dir)
		item.Hint = "Choose a writable directory."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", dir)
	return item
}
