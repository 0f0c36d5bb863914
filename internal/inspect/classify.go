package inspect

import (
	"context"
	"errors"
	"io/fs"

	"github.com/codeglass/mypyscan/internal/buffer"
	"github.com/codeglass/mypyscan/internal/mypy"
	"github.com/codeglass/mypyscan/internal/scan"
)

// failureKind classifies an escaped pipeline error for side-effect routing.
// Every kind resolves to an empty result; only the side effect differs.
type failureKind int

const (
	// failureCancelled: benign, expected under concurrent editing.
	failureCancelled failureKind = iota
	// failureParse: un-scannable buffer content, typically a transient
	// edit state.
	failureParse
	// failureIO: temp-file read/write failure; the user should hear about
	// it once.
	failureIO
	// failureUnclassified: everything else, including checker crashes.
	failureUnclassified
)

// classify maps a pipeline error to its failure kind. Ordering matters:
// cancellation may surface wrapped inside other errors and wins; a
// ProcessError is a checker-side crash even when its cause is an I/O error
// on the checker's side of the pipe.
func classify(err error) failureKind {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return failureCancelled
	}

	var parseErr *scan.ParseError
	if errors.As(err, &parseErr) {
		return failureParse
	}

	var procErr *mypy.ProcessError
	if errors.As(err, &procErr) {
		return failureUnclassified
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return failureIO
	}

	return failureUnclassified
}

// handleFailure absorbs a pipeline error: debug log for benign kinds, one
// user warning for I/O, warn log plus exception report for the rest.
// Nothing propagates to the caller.
func (s *Service) handleFailure(err error, buffers []*buffer.Buffer) {
	names := make([]string, len(buffers))
	for i, buf := range buffers {
		names[i] = buf.Name()
	}

	switch classify(err) {
	case failureCancelled:
		s.log.Debug("scan cancelled", "buffers", names)
	case failureParse:
		s.log.Debug("unscannable buffer content", "buffers", names, "err", err)
	case failureIO:
		s.log.Debug("scan failed on file I/O", "buffers", names, "err", err)
		s.notifier.Warn("mypy could not read the file content to scan: " + err.Error())
	default:
		s.log.Warn("mypy scan failed", "buffers", names, "err", err)
		s.notifier.ReportError(err)
	}
}
