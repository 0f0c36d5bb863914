package scan

import (
	"errors"
	"os"
	"testing"

	"github.com/codeglass/mypyscan/internal/buffer"
	"github.com/codeglass/mypyscan/internal/testutil"
)

func TestPrepareEligibility(t *testing.T) {
	t.Parallel()
	store := testutil.NewStore(t)
	cfg := testutil.Config(t, nil)

	pyBuf := testutil.OpenBuffer(t, store, "app.py", "pass\n")
	stubBuf := testutil.OpenBuffer(t, store, "app.pyi", "def f() -> int: ...\n")
	txtBuf := testutil.OpenBuffer(t, store, "notes.txt", "not python\n")
	emptyBuf := testutil.OpenBuffer(t, store, "empty.py", "")
	closedBuf := testutil.OpenBuffer(t, store, "closed.py", "pass\n")
	closedBuf.Invalidate()

	files, err := Prepare(store, cfg, []*buffer.Buffer{pyBuf, stubBuf, txtBuf, emptyBuf, closedBuf, nil})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	defer disposeAll(files)

	if len(files) != 2 {
		t.Fatalf("got %d scannable files, want 2 (.py and .pyi only)", len(files))
	}
	for _, f := range files {
		if f.Buffer != pyBuf && f.Buffer != stubBuf {
			t.Errorf("unexpected scannable buffer %s", f.Buffer.Name())
		}
	}
}

func TestPrepareZeroEligibleIsNotAnError(t *testing.T) {
	t.Parallel()
	store := testutil.NewStore(t)
	cfg := testutil.Config(t, nil)

	buf := testutil.OpenBuffer(t, store, "readme.md", "# hi\n")
	files, err := Prepare(store, cfg, []*buffer.Buffer{buf})
	if err != nil {
		t.Fatalf("zero eligible buffers must not error, got %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("got %d files, want 0", len(files))
	}
}

func TestPrepareExcludeGlobs(t *testing.T) {
	t.Parallel()
	store := testutil.NewStore(t)
	cfg := testutil.Config(t, map[string]any{
		"scan.exclude": []string{"**/generated/**"},
	})

	kept := testutil.OpenBuffer(t, store, "app.py", "pass\n")
	skipped := store.Open(t.TempDir()+"/generated/gen.py", []byte("pass\n"))

	files, err := Prepare(store, cfg, []*buffer.Buffer{kept, skipped})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	defer disposeAll(files)

	if len(files) != 1 || files[0].Buffer != kept {
		t.Fatalf("excluded path should be skipped, got %d files", len(files))
	}
}

func TestPrepareSavedBufferScansInPlace(t *testing.T) {
	t.Parallel()
	store := testutil.NewStore(t)
	cfg := testutil.Config(t, nil)

	buf := testutil.OpenBuffer(t, store, "app.py", "pass\n")
	files, err := Prepare(store, cfg, []*buffer.Buffer{buf})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	defer disposeAll(files)

	if len(files) != 1 {
		t.Fatalf("got %d files, want 1", len(files))
	}
	if files[0].IsTemp() {
		t.Error("saved buffer should scan its on-disk file, not a temp copy")
	}
	if files[0].Path != buf.Path {
		t.Errorf("path = %q, want buffer path %q", files[0].Path, buf.Path)
	}
}

func TestPrepareMaterializesUnsavedBuffer(t *testing.T) {
	t.Parallel()
	store := testutil.NewStore(t)
	cfg := testutil.Config(t, nil)

	buf := testutil.OpenBuffer(t, store, "app.py", "x = 1\n")
	buf.SetContent([]byte("x = 'edited'\n"))

	files, err := Prepare(store, cfg, []*buffer.Buffer{buf})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if len(files) != 1 || !files[0].IsTemp() {
		t.Fatal("unsaved buffer must be materialized to a temp copy")
	}

	data, err := os.ReadFile(files[0].Path)
	if err != nil {
		t.Fatalf("read temp: %v", err)
	}
	if string(data) != "x = 'edited'\n" {
		t.Errorf("temp content = %q, want the edited content", data)
	}

	files[0].Dispose()
	if _, err := os.Stat(files[0].Path); !errors.Is(err, os.ErrNotExist) {
		t.Error("dispose must remove the temp copy")
	}
}

func TestPrepareInvalidUTF8IsParseError(t *testing.T) {
	t.Parallel()
	store := testutil.NewStore(t)
	cfg := testutil.Config(t, nil)

	buf := testutil.OpenBuffer(t, store, "bad.py", "x = 1\n")
	buf.SetContent([]byte{0xff, 0xfe, 0x00})

	_, err := Prepare(store, cfg, []*buffer.Buffer{buf})
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("got %v, want ParseError for undecodable content", err)
	}
}

func TestPrepareFailureDisposesPartialSet(t *testing.T) {
	t.Parallel()
	store := testutil.NewStore(t)
	cfg := testutil.Config(t, nil)

	good := testutil.OpenBuffer(t, store, "good.py", "x = 1\n")
	good.SetContent([]byte("x = 2\n")) // forces a temp materialization
	bad := testutil.OpenBuffer(t, store, "bad.py", "x\n")
	bad.SetContent([]byte{0xff, 0xfe})

	_, err := Prepare(store, cfg, []*buffer.Buffer{good, bad})
	if err == nil {
		t.Fatal("expected failure on undecodable buffer")
	}

	entries, readErr := os.ReadDir(store.TempDir)
	if readErr != nil {
		t.Fatalf("read temp dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("partial temp files must be disposed on failure, found %d", len(entries))
	}
}

func TestDisposeIsIdempotent(t *testing.T) {
	t.Parallel()
	store := testutil.NewStore(t)
	buf := testutil.OpenBuffer(t, store, "app.py", "x = 1\n")
	buf.SetContent([]byte("x = 2\n"))

	tempPath, err := store.MaterializeContent(buf)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	f := &ScannableFile{Buffer: buf, Path: tempPath, temp: true}

	f.Dispose()
	f.Dispose()
	f.Dispose()

	if _, err := os.Stat(tempPath); !errors.Is(err, os.ErrNotExist) {
		t.Error("temp file should be gone after dispose")
	}
}
