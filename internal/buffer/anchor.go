package buffer

// Anchor is a reference into a specific buffer's text. Diagnostics carry an
// anchor instead of a raw line/column pair so the UI can re-resolve the
// highlight even after minor edits, and so stale results can be detected and
// dropped when the buffer has been closed.
type Anchor struct {
	// Buffer is the buffer the anchor points into.
	Buffer *Buffer

	// Offset is the byte offset of the anchored position at creation time.
	Offset int
}

// Valid reports whether the anchor still resolves to a live position:
// the buffer must not have been closed and the offset must still be in range.
func (a Anchor) Valid() bool {
	if a.Buffer == nil || !a.Buffer.Valid() {
		return false
	}
	return a.Offset >= 0 && a.Offset <= len(a.Buffer.Content())
}

// Equal reports value equality of two anchors.
func (a Anchor) Equal(other Anchor) bool {
	return a.Buffer == other.Buffer && a.Offset == other.Offset
}

// AnchorAt resolves a 1-based line/column position to an anchor in buf.
// Columns past the end of a line clamp to the line end; afterEnd reports
// whether clamping happened, which the UI uses to render the diagnostic as
// trailing rather than ranged. Lines past the end of the buffer clamp to the
// end of the content.
func AnchorAt(buf *Buffer, line, column int) (anchor Anchor, afterEnd bool) {
	content := buf.Content()

	if line < 1 {
		line = 1
	}
	if column < 1 {
		column = 1
	}

	offset := 0
	for l := 1; l < line; l++ {
		next := indexByte(content, offset, '\n')
		if next < 0 {
			return Anchor{Buffer: buf, Offset: len(content)}, true
		}
		offset = next + 1
	}

	lineEnd := indexByte(content, offset, '\n')
	if lineEnd < 0 {
		lineEnd = len(content)
	}

	target := offset + column - 1
	if target > lineEnd {
		return Anchor{Buffer: buf, Offset: lineEnd}, true
	}
	return Anchor{Buffer: buf, Offset: target}, false
}

// indexByte returns the index of the first c at or after from, or -1.
func indexByte(b []byte, from int, c byte) int {
	for i := from; i < len(b); i++ {
		if b[i] == c {
			return i
		}
	}
	return -1
}
