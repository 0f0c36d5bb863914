package processor

import "github.com/codeglass/mypyscan/internal/checker"

// Deduplication removes duplicate problems. Two problems are duplicates iff
// they are equal by checker.Problem value equality. Duplicates happen when
// mypy reports the same finding through more than one import path.
type Deduplication struct{}

// NewDeduplication creates a new deduplication processor.
func NewDeduplication() *Deduplication {
	return &Deduplication{}
}

// Name returns the processor's identifier.
func (p *Deduplication) Name() string {
	return "deduplication"
}

// Process removes duplicate problems, keeping the first occurrence.
func (p *Deduplication) Process(problems []checker.Problem) []checker.Problem {
	kept := make([]checker.Problem, 0, len(problems))
	for _, candidate := range problems {
		dup := false
		for _, existing := range kept {
			if existing.Equal(candidate) {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, candidate)
		}
	}
	return kept
}
