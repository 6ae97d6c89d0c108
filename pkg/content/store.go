// Package content implements hearthd's disk-backed content store: an
// in-memory blob map rebuilt from the content directory on demand.
package content

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hearthlabs/hearthd/pkg/logging"
)

// Store holds the content blobs served by the daemon. Reads are lock-cheap;
// Refresh builds a complete replacement map and swaps it in atomically, so a
// failed refresh leaves the previous content untouched.
type Store struct {
	dir string
	log *logging.Logger

	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewStore creates a Store over the given content directory. The store is
// empty until the first Refresh.
func NewStore(dir string, log *logging.Logger) *Store {
	return &Store{
		dir:   dir,
		log:   log,
		blobs: make(map[string][]byte),
	}
}

// Dir returns the content directory.
func (s *Store) Dir() string {
	return s.dir
}

// Refresh reloads every file under the content directory. Keys are
// slash-separated paths relative to the directory; dotfiles are skipped.
func (s *Store) Refresh() error {
	loaded := make(map[string][]byte)

	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.dir, path)
		if err != nil {
			return err
		}
		loaded[filepath.ToSlash(rel)] = data
		return nil
	})
	if err != nil {
		return fmt.Errorf("loading content from %s: %w", s.dir, err)
	}

	s.mu.Lock()
	s.blobs = loaded
	s.mu.Unlock()

	s.log.Debug("Content store loaded %d blobs from %s", len(loaded), s.dir)
	return nil
}

// Get returns the blob for a key.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	return data, ok
}

// Len returns the number of loaded blobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
