package scan

import (
	"testing"

	"github.com/codeglass/mypyscan/internal/buffer"
	"github.com/codeglass/mypyscan/internal/checker"
	"github.com/codeglass/mypyscan/internal/testutil"
)

func scannable(buf *buffer.Buffer) *ScannableFile {
	return &ScannableFile{Buffer: buf, Path: buf.Path}
}

func TestParseOutputWellFormedLine(t *testing.T) {
	t.Parallel()
	store := testutil.NewStore(t)
	buf := testutil.OpenBuffer(t, store, "file.py", "def f():\n    return 1\nx: str = f()\n")

	raw := buf.Path + ":3:5: error: Incompatible types\n"
	result := ParseOutput(raw, []*ScannableFile{scannable(buf)})

	problems := result[buf]
	if len(problems) != 1 {
		t.Fatalf("got %d problems, want 1", len(problems))
	}
	p := problems[0]
	if p.Line != 3 || p.Column != 5 {
		t.Errorf("position = %d:%d, want 3:5", p.Line, p.Column)
	}
	if p.Severity != checker.SeverityError {
		t.Errorf("severity = %v, want error", p.Severity)
	}
	if p.Message != "Incompatible types" {
		t.Errorf("message = %q, want verbatim checker text", p.Message)
	}
	if p.AfterEndOfLine {
		t.Error("in-range position should not be afterEndOfLine")
	}
	if !p.Anchor.Valid() {
		t.Error("anchor should resolve into the live buffer")
	}
}

func TestParseOutputNoColumnDefaultsToOne(t *testing.T) {
	t.Parallel()
	store := testutil.NewStore(t)
	buf := testutil.OpenBuffer(t, store, "file.py", "import os\n")

	raw := buf.Path + ":1: note: unused 'type: ignore' comment\n"
	result := ParseOutput(raw, []*ScannableFile{scannable(buf)})

	problems := result[buf]
	if len(problems) != 1 {
		t.Fatalf("got %d problems, want 1", len(problems))
	}
	if problems[0].Column != 1 {
		t.Errorf("column = %d, want 1", problems[0].Column)
	}
	if problems[0].Severity != checker.SeverityNote {
		t.Errorf("severity = %v, want note", problems[0].Severity)
	}
	if !problems[0].SuppressErrors {
		t.Error("note diagnostics must carry the suppress-errors flag")
	}
}

func TestParseOutputDropsUnknownFiles(t *testing.T) {
	t.Parallel()
	store := testutil.NewStore(t)
	buf := testutil.OpenBuffer(t, store, "file.py", "pass\n")

	raw := "/somewhere/else.py:1:1: error: boom\n" +
		"Found 1 error in 1 file (checked 1 source file)\n"
	result := ParseOutput(raw, []*ScannableFile{scannable(buf)})

	if len(result) != 0 {
		t.Fatalf("unresolvable lines must be dropped, got %d entries", len(result))
	}
}

func TestParseOutputDropsMalformedLines(t *testing.T) {
	t.Parallel()
	store := testutil.NewStore(t)
	buf := testutil.OpenBuffer(t, store, "file.py", "pass\npass\n")

	raw := buf.Path + ":nonsense\n" +
		buf.Path + ":2:1: fatal: unknown severity token\n" +
		buf.Path + ":1:1: error: kept\n"
	result := ParseOutput(raw, []*ScannableFile{scannable(buf)})

	problems := result[buf]
	if len(problems) != 1 {
		t.Fatalf("got %d problems, want only the well-formed one", len(problems))
	}
	if problems[0].Message != "kept" {
		t.Errorf("message = %q, want %q", problems[0].Message, "kept")
	}
}

func TestParseOutputResolvesMaterializedPath(t *testing.T) {
	t.Parallel()
	store := testutil.NewStore(t)
	buf := testutil.OpenBuffer(t, store, "file.py", "x = 1\n")
	buf.SetContent([]byte("x = 'edit'\n"))

	tempPath, err := store.MaterializeContent(buf)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	file := &ScannableFile{Buffer: buf, Path: tempPath, temp: true}
	defer file.Dispose()

	raw := tempPath + ":1:1: error: from temp copy\n"
	result := ParseOutput(raw, []*ScannableFile{file})

	if len(result[buf]) != 1 {
		t.Fatal("diagnostics on the temp path must map back to the originating buffer")
	}
}

func TestParseOutputPreservesEmissionOrder(t *testing.T) {
	t.Parallel()
	store := testutil.NewStore(t)
	buf := testutil.OpenBuffer(t, store, "file.py", "a\nb\nc\nd\n")

	// Deliberately not sorted by position.
	raw := buf.Path + ":4:1: error: fourth\n" +
		buf.Path + ":1:1: error: first\n" +
		buf.Path + ":2:1: warning: second\n"
	result := ParseOutput(raw, []*ScannableFile{scannable(buf)})

	problems := result[buf]
	want := []string{"fourth", "first", "second"}
	if len(problems) != len(want) {
		t.Fatalf("got %d problems, want %d", len(problems), len(want))
	}
	for i, msg := range want {
		if problems[i].Message != msg {
			t.Errorf("problems[%d].Message = %q, want %q (emission order)", i, problems[i].Message, msg)
		}
	}
}

func TestParseOutputDropsClosedBuffers(t *testing.T) {
	t.Parallel()
	store := testutil.NewStore(t)
	buf := testutil.OpenBuffer(t, store, "file.py", "pass\n")
	file := scannable(buf)
	buf.Invalidate()

	raw := buf.Path + ":1:1: error: too late\n"
	result := ParseOutput(raw, []*ScannableFile{file})
	if len(result) != 0 {
		t.Fatal("problems for invalidated buffers must be discarded, never anchored")
	}
}

func TestParseOutputColumnPastLineEnd(t *testing.T) {
	t.Parallel()
	store := testutil.NewStore(t)
	buf := testutil.OpenBuffer(t, store, "file.py", "x\n")

	raw := buf.Path + ":1:40: error: trailing problem\n"
	result := ParseOutput(raw, []*ScannableFile{scannable(buf)})

	problems := result[buf]
	if len(problems) != 1 {
		t.Fatalf("got %d problems, want 1", len(problems))
	}
	if !problems[0].AfterEndOfLine {
		t.Error("column past line end should set AfterEndOfLine")
	}
}
