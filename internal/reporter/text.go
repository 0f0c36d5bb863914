package reporter

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/codeglass/mypyscan/internal/checker"
)

// Styles for different parts of the output
var (
	// Color detection using termenv (respects NO_COLOR, CLICOLOR_FORCE, terminal detection)
	useColors = termenv.EnvColorProfile() != termenv.Ascii

	fileLocStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")) // Light gray

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")) // White

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // Dark gray

	severityStyles = map[checker.Severity]lipgloss.Style{
		checker.SeverityError: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		checker.SeverityWarning: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")), // Orange
		checker.SeverityNote: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")), // Blue
	}
)

// TextOptions configures the text reporter output.
type TextOptions struct {
	// Color enables/disables colored output. Default: auto-detect.
	Color *bool
}

// TextReporter formats problems as styled text output.
type TextReporter struct {
	color bool
}

// NewTextReporter creates a new text reporter with the given options.
func NewTextReporter(opts TextOptions) *TextReporter {
	colorEnabled := useColors
	if opts.Color != nil {
		colorEnabled = *opts.Color
	}
	return &TextReporter{color: colorEnabled}
}

// Print writes problems to the writer, one line per diagnostic, followed by
// a summary line.
func (r *TextReporter) Print(w io.Writer, files []FileProblems) error {
	for _, f := range files {
		for _, p := range f.Problems {
			loc := fmt.Sprintf("%s:%d:%d", f.Path, p.Line, p.Column)
			sev := p.Severity.String()
			msg := p.Message
			if r.color {
				loc = fileLocStyle.Render(loc)
				sev = severityStyles[p.Severity].Render(sev)
				msg = messageStyle.Render(msg)
			}
			if _, err := fmt.Fprintf(w, "%s: %s: %s\n", loc, sev, msg); err != nil {
				return err
			}
		}
	}

	summary := Summarize(files)
	line := fmt.Sprintf("%d problems (%d errors, %d warnings, %d notes) in %d files",
		summary.Total, summary.Errors, summary.Warnings, summary.Notes, summary.Files)
	if summary.Total == 0 {
		line = "no problems found"
	}
	if r.color {
		line = summaryStyle.Render(line)
	}
	_, err := fmt.Fprintln(w, line)
	return err
}
