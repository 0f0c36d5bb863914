// Package buffer models the editor-side view of a source file: in-memory
// content that may have diverged from disk, plus the store that tracks every
// open buffer. The rest of the pipeline treats this package as the boundary
// to the host editor's document model.
package buffer

import (
	"path/filepath"
	"sync"
)

// Buffer is an in-memory representation of an editable source file.
// Content may differ from the on-disk file until the editor saves it.
type Buffer struct {
	// Path is the absolute path of the underlying file.
	Path string

	mu       sync.Mutex
	content  []byte
	version  int32
	modified bool
	valid    bool
}

// New creates a live buffer with the given initial content.
// The initial content is considered saved (in sync with disk).
func New(path string, content []byte) *Buffer {
	return &Buffer{
		Path:    filepath.Clean(path),
		content: content,
		valid:   true,
	}
}

// Content returns the current buffer content.
func (b *Buffer) Content() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content
}

// Version returns the current edit version. It increases on every SetContent.
func (b *Buffer) Version() int32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.version
}

// SetContent replaces the buffer content, marking it modified and unsaved.
func (b *Buffer) SetContent(content []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = content
	b.version++
	b.modified = true
}

// MarkSaved records that the editor flushed the buffer to disk.
func (b *Buffer) MarkSaved() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modified = false
}

// Modified reports whether the buffer has unsaved edits.
func (b *Buffer) Modified() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.modified
}

// Valid reports whether the buffer is still live. A buffer becomes invalid
// once the editor closes it; results anchored to an invalid buffer must be
// discarded, never dereferenced.
func (b *Buffer) Valid() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.valid
}

// Invalidate marks the buffer closed.
func (b *Buffer) Invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.valid = false
}

// Name returns the base name of the buffer's file, for logging.
func (b *Buffer) Name() string {
	return filepath.Base(b.Path)
}
