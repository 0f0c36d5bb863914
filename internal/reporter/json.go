package reporter

import (
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/codeglass/mypyscan/internal/checker"
)

// JSONOutput is the top-level structure for JSON output.
type JSONOutput struct {
	// Files contains results grouped by file.
	Files []JSONFile `json:"files"`
	// Summary contains aggregate statistics.
	Summary Summary `json:"summary"`
}

// JSONFile contains the scan results for a single file.
type JSONFile struct {
	File     string        `json:"file"`
	Problems []JSONProblem `json:"problems"`
}

// JSONProblem is the wire form of one diagnostic.
type JSONProblem struct {
	Line           int              `json:"line"`
	Column         int              `json:"column"`
	Severity       checker.Severity `json:"severity"`
	Message        string           `json:"message"`
	AfterEndOfLine bool             `json:"afterEndOfLine,omitempty"`
}

// JSONReporter formats problems as JSON output.
type JSONReporter struct {
	writer io.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{writer: w}
}

// Print writes the collected files as indented JSON.
// Paths are normalized to forward slashes for cross-platform consistency.
func (r *JSONReporter) Print(files []FileProblems) error {
	out := JSONOutput{
		Files:   make([]JSONFile, 0, len(files)),
		Summary: Summarize(files),
	}
	for _, f := range files {
		jf := JSONFile{
			File:     filepath.ToSlash(f.Path),
			Problems: make([]JSONProblem, 0, len(f.Problems)),
		}
		for _, p := range f.Problems {
			jf.Problems = append(jf.Problems, JSONProblem{
				Line:           p.Line,
				Column:         p.Column,
				Severity:       p.Severity,
				Message:        p.Message,
				AfterEndOfLine: p.AfterEndOfLine,
			})
		}
		out.Files = append(out.Files, jf)
	}

	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
