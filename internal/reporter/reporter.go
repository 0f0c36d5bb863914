// Package reporter provides CLI output formatters for scan results.
package reporter

import (
	"sort"

	"github.com/codeglass/mypyscan/internal/buffer"
	"github.com/codeglass/mypyscan/internal/checker"
)

// FileProblems pairs a file path with its diagnostics in checker emission
// order.
type FileProblems struct {
	Path     string
	Problems []checker.Problem
}

// Collect flattens a scan result map into per-file groups sorted by path.
// Problem order inside each file is preserved.
func Collect(results map[*buffer.Buffer][]checker.Problem) []FileProblems {
	files := make([]FileProblems, 0, len(results))
	for buf, problems := range results {
		if len(problems) == 0 {
			continue
		}
		files = append(files, FileProblems{Path: buf.Path, Problems: problems})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files
}

// Summary contains aggregate statistics about problems.
type Summary struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Notes    int `json:"notes"`
	Files    int `json:"files"`
}

// Summarize computes aggregate counts over the collected files.
func Summarize(files []FileProblems) Summary {
	s := Summary{Files: len(files)}
	for _, f := range files {
		for _, p := range f.Problems {
			s.Total++
			switch p.Severity {
			case checker.SeverityError:
				s.Errors++
			case checker.SeverityWarning:
				s.Warnings++
			case checker.SeverityNote:
				s.Notes++
			}
		}
	}
	return s
}
