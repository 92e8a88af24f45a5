package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"transcriber-service/internal/media"
)

// CommandDownloader shells out to yt-dlp for hosts that need an
// extractor, such as YouTube and LinkedIn posts.
type CommandDownloader struct {
	binary  string
	format  string
	runner  media.Runner
	mkTemp  func(dir, pattern string) (string, error)
	readDir func(name string) ([]os.DirEntry, error)
}

// NewCommandDownloader constructs a yt-dlp downloader requesting the
// given format selector.
func NewCommandDownloader(format string) *CommandDownloader {
	return &CommandDownloader{
		binary:  "yt-dlp",
		format:  format,
		runner:  &media.ExecRunner{},
		mkTemp:  os.MkdirTemp,
		readDir: os.ReadDir,
	}
}

// NewCommandDownloaderForTests constructs a downloader with an
// injected runner and temp-dir functions.
func NewCommandDownloaderForTests(format string, runner media.Runner, mkTemp func(dir, pattern string) (string, error), readDir func(name string) ([]os.DirEntry, error)) *CommandDownloader {
	return &CommandDownloader{
		binary:  "yt-dlp",
		format:  format,
		runner:  runner,
		mkTemp:  mkTemp,
		readDir: readDir,
	}
}

// Download runs yt-dlp into a fresh temp directory and returns the
// single file it produced. The temp directory is removed on failure;
// on success the caller owns it through the returned path.
func (d *CommandDownloader) Download(ctx context.Context, rawURL string) (string, error) {
	tempDir, err := d.mkTemp("", "download_")
	if err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}

	template := filepath.Join(tempDir, "%(title)s.%(ext)s")
	args := []string{
		"--format", d.format,
		"--output", template,
		"--no-warnings",
		"--quiet",
		rawURL,
	}

	result, err := d.runner.Run(ctx, d.binary, args...)
	if err != nil {
		os.RemoveAll(tempDir)
		detail := lastLine(result.Stderr)
		if detail != "" {
			return "", fmt.Errorf("%s failed: %s: %w", d.binary, detail, err)
		}
		return "", fmt.Errorf("%s failed: %w", d.binary, err)
	}

	entries, err := d.readDir(tempDir)
	if err != nil {
		os.RemoveAll(tempDir)
		return "", fmt.Errorf("reading download directory: %w", err)
	}
	if len(entries) == 0 {
		os.RemoveAll(tempDir)
		return "", ErrEmptyDownload
	}

	path := filepath.Join(tempDir, entries[0].Name())
	if info, statErr := os.Stat(path); statErr == nil && info.Size() == 0 {
		os.RemoveAll(tempDir)
		return "", ErrEmptyDownload
	}
	return path, nil
}

// lastLine returns the final non-empty line of command output.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
