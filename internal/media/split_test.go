package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestSplitterExtractProducesOrderedChunks checks per-window extraction.
func TestSplitterExtractProducesOrderedChunks(t *testing.T) {
	var commands [][]string
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (CommandResult, error) {
			if name != "ffmpeg" {
				t.Fatalf("command = %q, want ffmpeg", name)
			}
			commands = append(commands, args)
			return CommandResult{}, nil
		},
	}

	tmpDir := t.TempDir()
	splitter := NewSplitterForTests("ffmpeg", runner, func(dir, pattern string) (*os.File, error) {
		return os.CreateTemp(tmpDir, pattern)
	})

	plan := ChunkPlan{
		{Index: 0, Start: 0, Duration: 150},
		{Index: 1, Start: 150, Duration: 150},
	}

	chunks, err := splitter.Extract(context.Background(), "/media/talk.mp4", plan)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Fatalf("chunk %d has index %d", i, chunk.Index)
		}
		if !strings.HasSuffix(chunk.Path, ".mp4") {
			t.Fatalf("chunk path %q should keep source extension", chunk.Path)
		}
	}
	if chunks[0].Path == chunks[1].Path {
		t.Fatal("chunk paths must not collide")
	}

	if len(commands) != 2 {
		t.Fatalf("ffmpeg invocations = %d, want 2", len(commands))
	}
	first := commands[0]
	if got := argAfter(first, "-ss"); got != "0" {
		t.Fatalf("first -ss = %q, want 0", got)
	}
	second := commands[1]
	if got := argAfter(second, "-ss"); got != "150" {
		t.Fatalf("second -ss = %q, want 150", got)
	}
	if got := argAfter(second, "-t"); got != "150" {
		t.Fatalf("second -t = %q, want 150", got)
	}
	if !hasArgPair(second, "-c", "copy") {
		t.Fatalf("expected stream copy, args = %v", second)
	}
}

// TestSplitterExtractFailureReturnsCreatedChunks checks that a mid-plan
// failure aborts with a SplitError while reporting prior chunks for
// cleanup.
func TestSplitterExtractFailureReturnsCreatedChunks(t *testing.T) {
	call := 0
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (CommandResult, error) {
			call++
			if call == 2 {
				return CommandResult{ExitCode: 1, Stderr: "Invalid data found\n"}, errors.New("exit status 1")
			}
			return CommandResult{}, nil
		},
	}

	tmpDir := t.TempDir()
	splitter := NewSplitterForTests("ffmpeg", runner, func(dir, pattern string) (*os.File, error) {
		return os.CreateTemp(tmpDir, pattern)
	})

	plan := ChunkPlan{
		{Index: 0, Start: 0, Duration: 100},
		{Index: 1, Start: 100, Duration: 100},
		{Index: 2, Start: 200, Duration: 100},
	}

	chunks, err := splitter.Extract(context.Background(), "/media/talk.mp4", plan)
	if err == nil {
		t.Fatal("expected error")
	}

	var sErr *SplitError
	if !errors.As(err, &sErr) {
		t.Fatalf("error type = %T, want *SplitError", err)
	}
	if sErr.Window.Index != 1 {
		t.Fatalf("failed window index = %d, want 1", sErr.Window.Index)
	}
	if !strings.Contains(sErr.Error(), "chunk 1") {
		t.Fatalf("error message = %q", sErr.Error())
	}

	// Both the completed chunk and the half-written one must be reported.
	if len(chunks) != 2 {
		t.Fatalf("reported chunks = %d, want 2", len(chunks))
	}
	if call != 2 {
		t.Fatalf("ffmpeg invocations = %d, want 2 (no salvage after failure)", call)
	}
}

// TestNeedsSplitting checks the size-only decision.
func TestNeedsSplitting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.mp3")
	if err := os.WriteFile(path, make([]byte, 2048), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	above, err := NeedsSplitting(path, 1024)
	if err != nil {
		t.Fatalf("NeedsSplitting() error = %v", err)
	}
	if !above {
		t.Fatal("2048 bytes over a 1024 threshold should need splitting")
	}

	below, err := NeedsSplitting(path, 4096)
	if err != nil {
		t.Fatalf("NeedsSplitting() error = %v", err)
	}
	if below {
		t.Fatal("2048 bytes under a 4096 threshold should not need splitting")
	}

	if _, err := NeedsSplitting(filepath.Join(t.TempDir(), "missing"), 1); err == nil {
		t.Fatal("expected stat error for missing file")
	}
}

// argAfter returns the value following a flag in CLI args.
func argAfter(args []string, key string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == key {
			return args[i+1]
		}
	}
	return ""
}

// hasArgPair reports whether a flag/value pair occurs in CLI args.
func hasArgPair(args []string, key, value string) bool {
	return argAfter(args, key) == value
}
