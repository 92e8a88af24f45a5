package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ChunkFile is one extracted chunk backed by its own temporary file.
// The owning job must delete it once its transcript is obtained or the
// job fails, whichever comes first.
type ChunkFile struct {
	Index int
	Path  string
}

// SplitError reports a failed chunk extraction.
type SplitError struct {
	Path    string
	Window  ChunkWindow
	Message string
	Err     error
}

// Error formats the extraction failure.
func (e *SplitError) Error() string {
	return fmt.Sprintf("split %s chunk %d: %s", e.Path, e.Window.Index, e.Message)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *SplitError) Unwrap() error {
	return e.Err
}

// Splitter materializes chunk plans into independent files using
// stream-copy ffmpeg extraction (no re-encoding).
type Splitter struct {
	ffmpegPath string
	runner     Runner
	createTemp func(dir, pattern string) (*os.File, error)
}

// NewSplitter constructs a splitter using ffmpeg from PATH.
func NewSplitter() *Splitter {
	return &Splitter{
		ffmpegPath: "ffmpeg",
		runner:     &ExecRunner{},
		createTemp: os.CreateTemp,
	}
}

// NewSplitterForTests constructs a splitter with injected dependencies.
func NewSplitterForTests(ffmpegPath string, runner Runner, createTemp func(dir, pattern string) (*os.File, error)) *Splitter {
	return &Splitter{ffmpegPath: ffmpegPath, runner: runner, createTemp: createTemp}
}

// Extract produces one file per plan window, in index order. Each chunk
// gets a collision-free temporary file carrying the source extension so
// concurrent jobs never contend over a path. On failure the chunks
// created so far are still returned so the caller can clean them up.
func (s *Splitter) Extract(ctx context.Context, path string, plan ChunkPlan) ([]ChunkFile, error) {
	ext := filepath.Ext(path)
	chunks := make([]ChunkFile, 0, len(plan))

	for _, window := range plan {
		tmp, err := s.createTemp("", "chunk-*"+ext)
		if err != nil {
			return chunks, &SplitError{Path: path, Window: window, Message: "create chunk file", Err: err}
		}
		chunkPath := tmp.Name()
		if err := tmp.Close(); err != nil {
			return chunks, &SplitError{Path: path, Window: window, Message: "close chunk file", Err: err}
		}

		args := buildExtractArgs(path, window, chunkPath)
		result, err := s.runner.Run(ctx, s.ffmpegPath, args...)
		if err != nil {
			// Include the half-written chunk so cleanup removes it too.
			chunks = append(chunks, ChunkFile{Index: window.Index, Path: chunkPath})
			return chunks, &SplitError{
				Path:    path,
				Window:  window,
				Message: fmt.Sprintf("ffmpeg extraction failed (exit %d): %s", result.ExitCode, lastLine(result.Stderr)),
				Err:     err,
			}
		}

		chunks = append(chunks, ChunkFile{Index: window.Index, Path: chunkPath})
	}

	return chunks, nil
}

// NeedsSplitting reports whether the artifact's byte size exceeds the
// configured threshold. The decision uses size only, never duration.
func NeedsSplitting(path string, thresholdBytes int64) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Size() > thresholdBytes, nil
}

// buildExtractArgs builds stream-copy extraction args for one window.
// ffmpeg clamps -t past the end of the input, which the final window
// relies on.
func buildExtractArgs(src string, window ChunkWindow, out string) []string {
	return []string{
		"-i", src,
		"-ss", formatSeconds(window.Start),
		"-t", formatSeconds(window.Duration),
		"-c", "copy",
		"-y",
		out,
	}
}

// formatSeconds renders a seconds value for ffmpeg CLI arguments.
func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// lastLine extracts the final non-empty stderr line for error messages.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
