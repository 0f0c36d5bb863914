// Package fileval provides pre-scan validation checks for buffer content.
//
// These checks run before any temp-file materialization to fail fast on
// buffers that clearly cannot be submitted to the checker: oversized content
// and content that is not valid UTF-8 text.
package fileval

import (
	"fmt"
	"unicode/utf8"
)

// TooLargeError is returned when buffer content exceeds the configured maximum size.
type TooLargeError struct {
	Path    string
	Size    int64
	MaxSize int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf(
		"buffer too large (%d > %d bytes); increase [scan] max-file-size in .mypyscan.toml to override",
		e.Size, e.MaxSize,
	)
}

// NotUTF8Error is returned when buffer content is not valid UTF-8 text.
type NotUTF8Error struct {
	Path string
}

func (e *NotUTF8Error) Error() string {
	return "buffer content is not valid UTF-8 text"
}

// ValidateContent runs pre-scan validation on buffer content:
//  1. Maximum size check (when maxSize > 0)
//  2. UTF-8 check — the checker reads source as UTF-8 and anything else
//     would produce garbage positions
func ValidateContent(path string, content []byte, maxSize int64) error {
	if maxSize > 0 && int64(len(content)) > maxSize {
		return &TooLargeError{Path: path, Size: int64(len(content)), MaxSize: maxSize}
	}
	if !utf8.Valid(content) {
		return &NotUTF8Error{Path: path}
	}
	return nil
}
