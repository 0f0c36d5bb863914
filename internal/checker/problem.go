package checker

import (
	"fmt"

	"github.com/codeglass/mypyscan/internal/buffer"
)

// Problem is a single diagnostic anchored to a position in a buffer.
// Problems are immutable after construction and never outlive the scan
// request that produced them.
type Problem struct {
	// Anchor references the diagnosed position inside the originating buffer.
	Anchor buffer.Anchor

	// Severity is mypy's original three-way kind. Use Severity.UI() for the
	// rendered highlight level.
	Severity Severity

	// Line and Column are the checker-reported 1-based position.
	Line   int
	Column int

	// Message is the diagnostic text verbatim from the checker.
	Message string

	// AfterEndOfLine hints the UI to render the diagnostic as trailing the
	// line rather than covering a range.
	AfterEndOfLine bool

	// SuppressErrors marks a soft diagnostic that must not escalate a
	// build-style failure.
	SuppressErrors bool
}

// Equal reports value equality: two problems are equal iff anchor, message,
// severity, position and both flags are equal. Deduplication relies on this.
func (p Problem) Equal(other Problem) bool {
	return p.Anchor.Equal(other.Anchor) &&
		p.Severity == other.Severity &&
		p.Line == other.Line &&
		p.Column == other.Column &&
		p.Message == other.Message &&
		p.AfterEndOfLine == other.AfterEndOfLine &&
		p.SuppressErrors == other.SuppressErrors
}

// Buffer returns the originating buffer.
func (p Problem) Buffer() *buffer.Buffer {
	return p.Anchor.Buffer
}

// String renders the problem for debug logs.
func (p Problem) String() string {
	name := "<closed>"
	if p.Anchor.Buffer != nil {
		name = p.Anchor.Buffer.Name()
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", name, p.Line, p.Column, p.Severity, p.Message)
}
