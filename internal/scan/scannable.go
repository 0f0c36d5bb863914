// Package scan implements the per-request diagnostic pipeline: prepare
// checker-readable files from buffers, invoke the checker once for the
// batch, and parse its output into anchored problems.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/codeglass/mypyscan/internal/buffer"
	"github.com/codeglass/mypyscan/internal/config"
	"github.com/codeglass/mypyscan/internal/fileval"
)

// ParseError is returned when a buffer's content cannot be read or
// understood well enough to submit to the checker. It is an expected
// condition during transient edit states, never surfaced to the user.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unscannable buffer %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ScannableFile pairs a buffer with checker-consumable content on disk.
// Files backed by a materialized temp copy carry a disposal obligation that
// must run exactly once, on every exit path of the owning scan request.
type ScannableFile struct {
	// Buffer is the originating buffer.
	Buffer *buffer.Buffer

	// Path is the absolute path the checker should read. For unsaved
	// buffers this is a temp copy, otherwise the buffer's own file.
	Path string

	temp    bool
	dispose sync.Once
}

// IsTemp reports whether the file is a materialized temp copy.
func (f *ScannableFile) IsTemp() bool { return f.temp }

// Dispose releases the temp copy, if any. Safe to call more than once;
// the removal happens exactly once.
func (f *ScannableFile) Dispose() {
	f.dispose.Do(func() {
		if f.temp {
			_ = os.Remove(f.Path)
		}
	})
}

// Prepare decides which buffers are eligible to scan and yields a scannable
// file per eligible buffer, materializing temp content for unsaved ones.
// Ineligible buffers (wrong kind, excluded path, empty) are skipped
// silently: zero eligible buffers is a normal empty result, not an error.
// If preparation fails partway, already-created files are disposed before
// the error is returned, so callers only ever own the returned set.
func Prepare(store *buffer.Store, cfg *config.Config, buffers []*buffer.Buffer) ([]*ScannableFile, error) {
	files := make([]*ScannableFile, 0, len(buffers))

	for _, buf := range buffers {
		if buf == nil || !buf.Valid() {
			continue
		}
		if !eligible(buf, cfg) {
			continue
		}

		if err := fileval.ValidateContent(buf.Path, buf.Content(), cfg.Scan.MaxFileSize); err != nil {
			disposeAll(files)
			return nil, &ParseError{Path: buf.Path, Err: err}
		}

		if store.IsModifiedAndUnsaved(buf) {
			tempPath, err := store.MaterializeContent(buf)
			if err != nil {
				disposeAll(files)
				return nil, err
			}
			files = append(files, &ScannableFile{Buffer: buf, Path: tempPath, temp: true})
			continue
		}

		// Saved buffers scan in place.
		files = append(files, &ScannableFile{Buffer: buf, Path: buf.Path})
	}

	return files, nil
}

// eligible reports whether a buffer is a supported, non-excluded, non-empty
// scan target.
func eligible(buf *buffer.Buffer, cfg *config.Config) bool {
	ext := strings.ToLower(filepath.Ext(buf.Path))
	supported := false
	for _, e := range cfg.Scan.Extensions {
		if ext == strings.ToLower(e) {
			supported = true
			break
		}
	}
	if !supported {
		return false
	}

	if len(buf.Content()) == 0 {
		return false
	}

	for _, pattern := range cfg.Scan.Exclude {
		matched, err := doublestar.Match(pattern, filepath.ToSlash(buf.Path))
		if err != nil {
			// Invalid pattern - skip this check
			continue
		}
		if matched {
			return false
		}
	}

	return true
}

func disposeAll(files []*ScannableFile) {
	for _, f := range files {
		f.Dispose()
	}
}
