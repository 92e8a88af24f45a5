package media

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

// TestCleanerRemovesFilesAndDirectories checks both removal modes.
func TestCleanerRemovesFilesAndDirectories(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "chunk-0.mp4")
	dir := filepath.Join(root, "download")
	nested := filepath.Join(dir, "inner", "clip.mp4")
	mustWriteFile(t, file, "chunk")
	mustWriteFile(t, nested, "clip")

	cleaner := NewCleaner(zerolog.Nop())
	cleaner.Cleanup(file, dir)

	for _, path := range []string{file, dir} {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("%s should be removed, stat err = %v", path, err)
		}
	}
}

// TestCleanerIsIdempotent checks repeated cleanup of the same paths.
func TestCleanerIsIdempotent(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "chunk-0.mp4")
	mustWriteFile(t, file, "chunk")

	cleaner := NewCleaner(zerolog.Nop())
	cleaner.Cleanup(file)
	cleaner.Cleanup(file, "", filepath.Join(root, "never-existed"))

	if _, err := os.Stat(file); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("file should stay removed, stat err = %v", err)
	}
}

// TestCleanerContinuesPastFailures checks best-effort semantics.
func TestCleanerContinuesPastFailures(t *testing.T) {
	var removed []string
	cleaner := NewCleanerForTests(zerolog.Nop(),
		func(path string) (os.FileInfo, error) {
			return fakeFileInfo{}, nil
		},
		func(path string) error {
			if path == "/tmp/stuck" {
				return errors.New("permission denied")
			}
			removed = append(removed, path)
			return nil
		},
		func(path string) error {
			removed = append(removed, path)
			return nil
		},
	)

	cleaner.Cleanup("/tmp/stuck", "/tmp/chunk-1", "/tmp/chunk-2")

	if len(removed) != 2 {
		t.Fatalf("removed = %v, want the two non-failing paths", removed)
	}
}

// TestCleanerCleanupChunks checks the chunk-slice convenience form.
func TestCleanerCleanupChunks(t *testing.T) {
	root := t.TempDir()
	first := filepath.Join(root, "chunk-0.mp4")
	second := filepath.Join(root, "chunk-1.mp4")
	mustWriteFile(t, first, "a")
	mustWriteFile(t, second, "b")

	cleaner := NewCleaner(zerolog.Nop())
	cleaner.CleanupChunks([]ChunkFile{{Index: 0, Path: first}, {Index: 1, Path: second}})

	for _, path := range []string{first, second} {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("%s should be removed", path)
		}
	}
}

// fakeFileInfo satisfies os.FileInfo for injected stat results.
type fakeFileInfo struct{ os.FileInfo }

func (fakeFileInfo) IsDir() bool { return false }

// mustWriteFile creates parent directory and writes file content.
func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir parent: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}
