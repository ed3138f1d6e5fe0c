package core

import (
	"errors"
	"fmt"
)

// ErrInvalidIdentifier is returned when a marker payload cannot be used as a
// file stem inside the output directory.
var ErrInvalidIdentifier = errors.New("identifier is not a valid file name")

// DocumentReadError reports an input document that could not be opened,
// parsed or rasterized. It is fatal to a split run.
type DocumentReadError struct {
	Path string
	Err  error
}

func (e *DocumentReadError) Error() string {
	return fmt.Sprintf("reading document %s: %v", e.Path, e.Err)
}

func (e *DocumentReadError) Unwrap() error { return e.Err }

// WriteError reports a segment whose output document could not be persisted.
// It fails that segment only.
type WriteError struct {
	ID   string
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("writing segment %q: %v", e.ID, e.Err)
	}
	return fmt.Sprintf("writing segment %q to %s: %v", e.ID, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// DirectoryError reports a failure to reset an output directory.
type DirectoryError struct {
	Op   string // "remove", "create" or "copy"
	Path string
	Err  error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("%s directory %s: %v", e.Op, e.Path, e.Err)
}

func (e *DirectoryError) Unwrap() error { return e.Err }

// CompileError reports a failed compiler pass for one source file.
type CompileError struct {
	Source string
	Pass   int // 1-based
	Err    error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compiling %s (pass %d): %v", e.Source, e.Pass, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }
