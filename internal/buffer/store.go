package buffer

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store tracks the set of open buffers and answers the document-state
// queries the scan pipeline needs. It stands in for the host editor's
// file-document manager.
type Store struct {
	// TempDir is where materialized content for unsaved buffers is written.
	// Empty means the system temp directory.
	TempDir string

	mu      sync.Mutex
	buffers map[string]*Buffer
}

// NewStore creates an empty buffer store.
func NewStore() *Store {
	return &Store{buffers: make(map[string]*Buffer)}
}

// Open registers a buffer for path with the given content and returns it.
// Opening an already-open path replaces the tracked buffer.
func (s *Store) Open(path string, content []byte) *Buffer {
	buf := New(path, content)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffers[buf.Path] = buf
	return buf
}

// Get returns the buffer open for path, or nil.
func (s *Store) Get(path string) *Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffers[filepath.Clean(path)]
}

// Close invalidates and forgets the buffer open for path.
func (s *Store) Close(path string) {
	s.mu.Lock()
	buf := s.buffers[filepath.Clean(path)]
	delete(s.buffers, filepath.Clean(path))
	s.mu.Unlock()
	if buf != nil {
		buf.Invalidate()
	}
}

// IsModifiedAndUnsaved reports whether buf has edits not yet flushed to disk.
// A saved buffer is a normal, schedulable state, not an error.
func (s *Store) IsModifiedAndUnsaved(buf *Buffer) bool {
	return buf.Modified()
}

// MaterializeContent writes the buffer's current content to a temp file the
// checker can read, preserving the file extension so the checker treats it as
// the same file kind. The caller owns removal of the returned path.
func (s *Store) MaterializeContent(buf *Buffer) (string, error) {
	pattern := "mypyscan-*" + filepath.Ext(buf.Path)
	f, err := os.CreateTemp(s.TempDir, pattern)
	if err != nil {
		return "", fmt.Errorf("materialize %s: %w", buf.Name(), err)
	}
	if _, err := f.Write(buf.Content()); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("materialize %s: %w", buf.Name(), err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("materialize %s: %w", buf.Name(), err)
	}
	return f.Name(), nil
}
