package media

import (
	"errors"
	"os"

	"github.com/rs/zerolog"
)

// Cleaner removes transient artifacts on every pipeline exit path.
// Removal is best-effort: one failed path never prevents the rest.
type Cleaner struct {
	log       zerolog.Logger
	stat      func(string) (os.FileInfo, error)
	remove    func(string) error
	removeAll func(string) error
}

// NewCleaner constructs a cleaner using real OS dependencies.
func NewCleaner(log zerolog.Logger) *Cleaner {
	return &Cleaner{
		log:       log,
		stat:      os.Stat,
		remove:    os.Remove,
		removeAll: os.RemoveAll,
	}
}

// NewCleanerForTests constructs a cleaner with injected dependencies.
func NewCleanerForTests(log zerolog.Logger, stat func(string) (os.FileInfo, error), remove, removeAll func(string) error) *Cleaner {
	return &Cleaner{log: log, stat: stat, remove: remove, removeAll: removeAll}
}

// Cleanup removes each path: files directly, directories recursively.
// Already-absent paths are skipped silently, so repeated cleanup of the
// same paths is harmless.
func (c *Cleaner) Cleanup(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}

		info, err := c.stat(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				c.log.Warn().Err(err).Str("path", path).Msg("cleanup: cannot stat path")
			}
			continue
		}

		if info.IsDir() {
			err = c.removeAll(path)
		} else {
			err = c.remove(path)
		}
		if err != nil {
			c.log.Warn().Err(err).Str("path", path).Msg("cleanup: could not remove path")
			continue
		}
		c.log.Debug().Str("path", path).Msg("cleanup: removed")
	}
}

// CleanupChunks removes the files behind a set of extracted chunks.
func (c *Cleaner) CleanupChunks(chunks []ChunkFile) {
	paths := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		paths = append(paths, chunk.Path)
	}
	c.Cleanup(paths...)
}
