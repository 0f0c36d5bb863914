// Package notify carries user-visible side channels out of the pipeline.
// Notifications are fire-and-forget: they are never part of the data
// contract, and a failed notification never fails a scan.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/gkampitakis/ciinfo"

	"github.com/codeglass/mypyscan/internal/config"
)

// Notifier receives user-facing failure reports. Implementations map to
// environment-specific UX (editor pop-ups, CLI stderr).
type Notifier interface {
	// Warn shows a warning message to the user.
	Warn(msg string)

	// ReportError surfaces an unexpected failure through the host's
	// exception-report channel.
	ReportError(err error)
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) Warn(string)       {}
func (Nop) ReportError(error) {}

// Writer prints notifications to an io.Writer, one per line. Used by the CLI.
type Writer struct {
	mu  sync.Mutex
	Out io.Writer
}

// NewWriter creates a writer-backed notifier.
func NewWriter(out io.Writer) *Writer {
	return &Writer{Out: out}
}

func (w *Writer) Warn(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.Out, "warning: %s\n", msg)
}

func (w *Writer) ReportError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.Out, "error: unexpected failure: %v\n", err)
}

// Gate wraps a notifier and applies the configured notification mode:
// "off" drops everything, "auto" drops in CI environments where pop-ups
// have no one to read them, "on" always forwards.
type Gate struct {
	Next Notifier
	Mode string
	isCI func() bool
}

// NewGate creates a mode-gated notifier around next.
func NewGate(next Notifier, cfg *config.Config) *Gate {
	return &Gate{
		Next: next,
		Mode: cfg.Notifications.Mode,
		isCI: func() bool { return ciinfo.IsCI },
	}
}

func (g *Gate) enabled() bool {
	switch g.Mode {
	case "off":
		return false
	case "on":
		return true
	default: // auto
		return !g.isCI()
	}
}

func (g *Gate) Warn(msg string) {
	if g.enabled() {
		g.Next.Warn(msg)
	}
}

func (g *Gate) ReportError(err error) {
	if g.enabled() {
		g.Next.ReportError(err)
	}
}
