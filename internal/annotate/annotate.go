// Package annotate bridges scan results to the host editor's annotation
// API. The editor calls in through two entry shapes (inline annotator and
// batch inspection); both are thin adapters over the single inspect pipeline
// so the scan logic exists exactly once.
package annotate

import (
	"context"
	"log/slog"

	"github.com/codeglass/mypyscan/internal/buffer"
	"github.com/codeglass/mypyscan/internal/checker"
	"github.com/codeglass/mypyscan/internal/inspect"
)

// Annotation is one UI-facing highlight request.
type Annotation struct {
	// Line and Column are the 1-based position to highlight.
	Line   int
	Column int

	// Severity is the rendered level: notes are already collapsed to
	// warnings here.
	Severity checker.Severity

	// Message is the user-facing text.
	Message string

	// AfterEndOfLine hints the UI to render the highlight trailing the
	// line instead of covering a range.
	AfterEndOfLine bool
}

// Sink is the UI-facing delivery interface. Implementations render each
// annotation at its position; delivery is fire-and-forget.
type Sink interface {
	Publish(buf *buffer.Buffer, a Annotation)
}

// FromProblem converts a problem into its annotation. ok is false when the
// problem's anchor no longer resolves (the buffer was closed between scan
// and delivery); such problems are discarded, never dereferenced.
func FromProblem(p checker.Problem) (Annotation, bool) {
	if !p.Anchor.Valid() {
		return Annotation{}, false
	}
	return Annotation{
		Line:           p.Line,
		Column:         p.Column,
		Severity:       p.Severity.UI(),
		Message:        "Mypy: " + p.Message,
		AfterEndOfLine: p.AfterEndOfLine,
	}, true
}

// Annotator is the inline entry shape: one buffer, results pushed to the
// sink as the editor re-highlights a file.
type Annotator struct {
	Service *inspect.Service

	// Log receives delivery debug lines. Nil falls back to slog.Default.
	Log *slog.Logger
}

// Annotate inspects one buffer and publishes its annotations.
// Returns the number of annotations published.
func (a *Annotator) Annotate(ctx context.Context, buf *buffer.Buffer, sink Sink) int {
	n := publish(sink, buf, a.Service.Inspect(ctx, buf))
	logDelivery(a.Log, buf, n)
	return n
}

// BatchInspector is the batch entry shape used by whole-project inspection
// runs.
type BatchInspector struct {
	Service *inspect.Service

	// Log receives delivery debug lines. Nil falls back to slog.Default.
	Log *slog.Logger
}

// CheckAll scans the batch and publishes annotations for every buffer.
// Returns the number of annotations published.
func (b *BatchInspector) CheckAll(ctx context.Context, buffers []*buffer.Buffer, sink Sink) int {
	results := b.Service.Scan(ctx, buffers)
	total := 0
	for _, buf := range buffers {
		n := publish(sink, buf, results[buf])
		logDelivery(b.Log, buf, n)
		total += n
	}
	return total
}

func logDelivery(log *slog.Logger, buf *buffer.Buffer, n int) {
	if buf == nil {
		return
	}
	if log == nil {
		log = slog.Default()
	}
	log.Debug("annotations published", "file", buf.Name(), "count", n)
}

func publish(sink Sink, buf *buffer.Buffer, problems []checker.Problem) int {
	published := 0
	for _, p := range problems {
		a, ok := FromProblem(p)
		if !ok {
			continue
		}
		sink.Publish(buf, a)
		published++
	}
	return published
}
