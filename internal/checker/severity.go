// Package checker defines the diagnostic model produced by a mypy scan.
package checker

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity represents the severity of a diagnostic as reported by mypy.
//
//nolint:recvcheck // UnmarshalJSON requires pointer receiver per json.Unmarshaler interface
type Severity int

const (
	// SeverityError indicates a real type error.
	SeverityError Severity = iota
	// SeverityWarning indicates a significant issue that may cause problems.
	SeverityWarning
	// SeverityNote indicates an informational follow-up to another diagnostic.
	// Placed last so the zero value stays the most severe kind.
	SeverityNote
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler.
// Pointer receiver required by json.Unmarshaler interface.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseSeverity(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity parses a mypy severity token into a Severity value.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "note":
		return SeverityNote, nil
	default:
		return SeverityError, fmt.Errorf("unknown severity: %q", s)
	}
}

// UI returns the severity the editor should render this diagnostic with.
// Notes collapse to warnings: a weak-warning highlight is too easy to miss,
// while the stored three-way kind stays available for suppression logic.
func (s Severity) UI() Severity {
	if s == SeverityNote {
		return SeverityWarning
	}
	return s
}

// IsMoreSevereThan returns true if s is more severe than other.
func (s Severity) IsMoreSevereThan(other Severity) bool {
	return s < other // Lower value = more severe
}

// IsAtLeast returns true if s is at least as severe as threshold.
func (s Severity) IsAtLeast(threshold Severity) bool {
	return s <= threshold
}
