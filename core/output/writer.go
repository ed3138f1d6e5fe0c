// Package output owns the run's output directory.
// Prepare resets the directory once, before anything is written; the
// returned Writer then persists each document atomically (temporary file in
// the same directory, then rename), so a failed write never leaves a
// truncated document behind.
package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gaurav-prasanna/examsplit/core"
)

// Writer writes rendered output to disk.
type Writer struct {
	OutputDir string
}

// Prepare deletes dir if it exists, recreates it empty and returns a Writer
// targeting it. Failures are *core.DirectoryError.
func Prepare(dir string) (*Writer, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, &core.DirectoryError{Op: "create", Path: dir, Err: os.ErrInvalid}
	}
	if err := os.RemoveAll(dir); err != nil {
		return nil, &core.DirectoryError{Op: "remove", Path: dir, Err: err}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &core.DirectoryError{Op: "create", Path: dir, Err: err}
	}
	return &Writer{OutputDir: dir}, nil
}

// Write stores data as <name><ext> in the output directory, replacing any
// file of the same name. name must be a single path element.
func (w *Writer) Write(ctx context.Context, name string, data []byte, ext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := w.pathFor(name, ext)
	if err != nil {
		return "", err
	}
	if err := writeAtomic(path, data); err != nil {
		return path, err
	}
	return path, nil
}

// pathFor maps a name to a file inside the output directory.
func (w *Writer) pathFor(name, ext string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", core.ErrInvalidIdentifier
	}
	return filepath.Join(w.OutputDir, name+ext), nil
}

func writeAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, 0o644)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// SegmentWriter renders segments and writes them through a Writer, one file
// per segment named after its identifier.
type SegmentWriter struct {
	renderer core.Renderer
	writer   *Writer
}

// NewSegmentWriter creates a SegmentWriter.
func NewSegmentWriter(w *Writer, r core.Renderer) *SegmentWriter {
	return &SegmentWriter{renderer: r, writer: w}
}

var _ core.SegmentWriter = (*SegmentWriter)(nil)

// Write renders seg and stores it as <seg.ID><ext>. Every failure is
// returned as a *core.WriteError.
func (s *SegmentWriter) Write(ctx context.Context, seg core.Segment) (string, error) {
	data, err := s.renderer.Render(seg)
	if err != nil {
		return "", &core.WriteError{ID: seg.ID, Err: fmt.Errorf("render: %w", err)}
	}
	path, err := s.writer.Write(ctx, seg.ID, data, s.renderer.Extension())
	if err != nil {
		return path, &core.WriteError{ID: seg.ID, Path: path, Err: err}
	}
	return path, nil
}
