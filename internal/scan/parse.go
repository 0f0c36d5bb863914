package scan

import (
	"bufio"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/codeglass/mypyscan/internal/buffer"
	"github.com/codeglass/mypyscan/internal/checker"
)

// diagnosticLine matches mypy's line-oriented diagnostic format:
//
//	path:line:col: severity: message
//	path:line: severity: message
//
// The grammar is owned by mypy; parsing is defensive, not grammar-complete.
var diagnosticLine = regexp.MustCompile(`^(.+?):(\d+)(?::(\d+))?: (error|warning|note): (.*)$`)

// ParseOutput converts raw checker output into anchored problems, grouped by
// originating buffer in checker emission order. Lines that do not resolve to
// a known buffer (summary lines, diagnostics for followed imports) and
// malformed lines are dropped silently: partial success is the default
// posture, one bad line never fails the batch. Problems for buffers that
// were invalidated mid-scan are dropped, never anchored.
func ParseOutput(raw string, files []*ScannableFile) map[*buffer.Buffer][]checker.Problem {
	byPath := make(map[string]*buffer.Buffer, len(files)*2)
	for _, f := range files {
		byPath[filepath.Clean(f.Path)] = f.Buffer
		byPath[f.Buffer.Path] = f.Buffer
	}

	result := make(map[*buffer.Buffer][]checker.Problem)

	sc := bufio.NewScanner(strings.NewReader(raw))
	for sc.Scan() {
		problem, buf, ok := parseLine(sc.Text(), byPath)
		if !ok {
			continue
		}
		result[buf] = append(result[buf], problem)
	}

	return result
}

// parseLine converts one output line to one problem. ok is false when the
// line is malformed or names a file outside the scanned set.
func parseLine(line string, byPath map[string]*buffer.Buffer) (checker.Problem, *buffer.Buffer, bool) {
	m := diagnosticLine.FindStringSubmatch(line)
	if m == nil {
		return checker.Problem{}, nil, false
	}

	buf := byPath[filepath.Clean(m[1])]
	if buf == nil || !buf.Valid() {
		return checker.Problem{}, nil, false
	}

	lineNo, err := strconv.Atoi(m[2])
	if err != nil || lineNo < 1 {
		return checker.Problem{}, nil, false
	}

	column := 1
	if m[3] != "" {
		column, err = strconv.Atoi(m[3])
		if err != nil || column < 1 {
			return checker.Problem{}, nil, false
		}
	}

	severity, err := checker.ParseSeverity(m[4])
	if err != nil {
		return checker.Problem{}, nil, false
	}

	anchor, afterEnd := buffer.AnchorAt(buf, lineNo, column)

	return checker.Problem{
		Anchor:         anchor,
		Severity:       severity,
		Line:           lineNo,
		Column:         column,
		Message:        m[5],
		AfterEndOfLine: afterEnd,
		// Notes are follow-ups, not failures in their own right.
		SuppressErrors: severity == checker.SeverityNote,
	}, buf, true
}
