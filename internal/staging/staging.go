// Package staging allocates scoped temporary files for in-flight
// uploads. Every artifact belongs to exactly one field iteration and is
// removed when that iteration ends, on success and failure alike.
package staging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store hands out uniquely named staging files under a private
// directory. Name uniqueness is the only protection of the shared
// namespace; no locking is involved.
type Store struct {
	dir string
}

// NewStore creates the staging directory (0700) if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the staging directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Create allocates a new artifact with a random name, mode 0600 and
// O_EXCL so collisions fail instead of truncating.
func (s *Store) Create() (*Artifact, error) {
	path := filepath.Join(s.dir, "stage_"+uuid.New().String())
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("creating staging file: %w", err)
	}
	return &Artifact{f: f, path: path}, nil
}

// Artifact is one staged upload: writable during ingestion, readable as
// a sized region afterwards. Not safe for concurrent use; it is owned
// by a single pipeline iteration.
type Artifact struct {
	f        *os.File
	path     string
	size     int64
	synced   bool
	released bool
}

func (a *Artifact) Write(p []byte) (int, error) {
	n, err := a.f.Write(p)
	a.size += int64(n)
	a.synced = false
	return n, err
}

// Sync flushes all written bytes to stable storage.
func (a *Artifact) Sync() error {
	if err := a.f.Sync(); err != nil {
		return err
	}
	a.synced = true
	return nil
}

// Path returns the artifact's filesystem path.
func (a *Artifact) Path() string {
	return a.path
}

// Size returns the number of bytes written so far.
func (a *Artifact) Size() int64 {
	return a.size
}

// Synced reports whether every written byte has been fsynced.
func (a *Artifact) Synced() bool {
	return a.synced
}

// Open returns a fresh read handle on the staged bytes. The caller
// closes it.
func (a *Artifact) Open() (*os.File, error) {
	return os.Open(a.path)
}

// Release closes and removes the artifact. Safe to call more than
// once; only the first call does work.
func (a *Artifact) Release() error {
	if a.released {
		return nil
	}
	a.released = true
	closeErr := a.f.Close()
	if err := os.Remove(a.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing staging file: %w", err)
	}
	return closeErr
}
