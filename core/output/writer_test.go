package output

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gaurav-prasanna/examsplit/core"
)

func TestPrepareResetsDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pend_todo")
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "old.pdf"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := Prepare(dir)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if w.OutputDir != dir {
		t.Fatalf("unexpected dir %q", w.OutputDir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expect empty directory, got %v (%v)", entries, err)
	}
}

func TestPrepareCreatesMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if _, err := Prepare(dir); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}
}

func TestPrepareFailure(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(parent, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Prepare(filepath.Join(parent, "out"))
	var derr *core.DirectoryError
	if !errors.As(err, &derr) || (derr.Op != "remove" && derr.Op != "create") {
		t.Fatalf("expect DirectoryError, got %v", err)
	}
	if _, err := Prepare("  "); !errors.As(err, &derr) {
		t.Fatalf("expect DirectoryError for blank dir, got %v", err)
	}
}

func TestWriteReplacesExisting(t *testing.T) {
	w, err := Prepare(t.TempDir())
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	ctx := context.Background()
	if _, err := w.Write(ctx, "jdoe", []byte("v1"), ".pdf"); err != nil {
		t.Fatalf("write v1: %v", err)
	}
	path, err := w.Write(ctx, "jdoe", []byte("v2"), ".pdf")
	if err != nil {
		t.Fatalf("write v2: %v", err)
	}
	if path != filepath.Join(w.OutputDir, "jdoe.pdf") {
		t.Fatalf("unexpected path %q", path)
	}
	b, err := os.ReadFile(path)
	if err != nil || string(b) != "v2" {
		t.Fatalf("expect v2, got %q (%v)", b, err)
	}
	entries, _ := os.ReadDir(w.OutputDir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Fatalf("tmp file not cleaned: %s", e.Name())
		}
	}
}

func TestWriteRejectsUnsafeNames(t *testing.T) {
	w, _ := Prepare(t.TempDir())
	for _, name := range []string{"", ".", "..", "../escape", "a/b", `a\b`} {
		if _, err := w.Write(context.Background(), name, []byte("x"), ".pdf"); !errors.Is(err, core.ErrInvalidIdentifier) {
			t.Fatalf("%q: expect ErrInvalidIdentifier, got %v", name, err)
		}
	}
}

func TestWriteCancelled(t *testing.T) {
	w, _ := Prepare(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := w.Write(ctx, "x", []byte("x"), ".pdf"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expect context.Canceled, got %v", err)
	}
}

type stubRenderer struct{ err error }

func (s stubRenderer) Render(seg core.Segment) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte(seg.ID), nil
}

func (stubRenderer) Extension() string { return ".txt" }

func TestSegmentWriter(t *testing.T) {
	w, _ := Prepare(t.TempDir())
	sw := NewSegmentWriter(w, stubRenderer{})
	path, err := sw.Write(context.Background(), core.Segment{ID: "s1", Pages: []core.Page{{Index: 0}}})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if b, _ := os.ReadFile(path); string(b) != "s1" {
		t.Fatalf("unexpected content %q", b)
	}

	_, err = sw.Write(context.Background(), core.Segment{ID: "../s2"})
	var werr *core.WriteError
	if !errors.As(err, &werr) || werr.ID != "../s2" || !errors.Is(err, core.ErrInvalidIdentifier) {
		t.Fatalf("expect WriteError wrapping ErrInvalidIdentifier, got %v", err)
	}

	boom := errors.New("boom")
	_, err = NewSegmentWriter(w, stubRenderer{err: boom}).Write(context.Background(), core.Segment{ID: "s3"})
	if !errors.As(err, &werr) || !errors.Is(err, boom) {
		t.Fatalf("expect WriteError wrapping render failure, got %v", err)
	}
}
