// Package generate produces one personalized exam per student.
//
// New resets the group directory to a copy of the exam template's directory,
// auxiliary files included. Run then fans out one task per student across a
// bounded worker pool: write <id>_<exam> with the student's fields
// substituted, and compile it the configured number of passes. Tasks share
// only the read-only template text.
package generate

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/gaurav-prasanna/examsplit/core"
	"github.com/gaurav-prasanna/examsplit/core/compile"
	"github.com/gaurav-prasanna/examsplit/core/latex"
	"golang.org/x/sync/errgroup"
)

// Status values reported per student.
const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Status is the result of generating one student's exam.
type Status struct {
	Student string // student ID
	Name    string
	Source  string // generated .tex file name
	Status  string
	Err     error
}

// Options configures a Generator.
type Options struct {
	Passes  int // compiler passes per exam; default compile.DefaultPasses
	Workers int // concurrent students; default runtime.NumCPU()
	Logger  *slog.Logger
}

// Generator renders and compiles exams into one group directory.
type Generator struct {
	examName string
	template string
	groupDir string
	group    string
	compiler core.Compiler
	passes   int
	workers  int
	log      *slog.Logger
}

// New reads the exam template, resets groupDir to a copy of the template's
// directory and returns a Generator writing into it.
func New(examPath, groupDir string, c core.Compiler, opts Options) (*Generator, error) {
	text, err := os.ReadFile(examPath)
	if err != nil {
		return nil, fmt.Errorf("reading exam template: %w", err)
	}
	if err := prepareGroupDir(filepath.Dir(examPath), groupDir); err != nil {
		return nil, err
	}
	if opts.Passes <= 0 {
		opts.Passes = compile.DefaultPasses
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{
		examName: filepath.Base(examPath),
		template: string(text),
		groupDir: groupDir,
		group:    filepath.Base(groupDir),
		compiler: c,
		passes:   opts.Passes,
		workers:  opts.Workers,
		log:      opts.Logger.With("comp", "generate"),
	}, nil
}

// Dir returns the group directory.
func (g *Generator) Dir() string { return g.groupDir }

// Run generates every student's exam and returns one Status per student, in
// roster order.
func (g *Generator) Run(ctx context.Context, students []core.Student) []Status {
	statuses := make([]Status, len(students))
	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, st := range students {
		eg.Go(func() error {
			statuses[i] = g.one(ectx, st)
			return nil
		})
	}
	_ = eg.Wait()
	return statuses
}

// Failed filters the statuses that are not OK.
func Failed(statuses []Status) []Status {
	var out []Status
	for _, s := range statuses {
		if s.Status != StatusOK {
			out = append(out, s)
		}
	}
	return out
}

func (g *Generator) one(ctx context.Context, st core.Student) Status {
	source := st.ID + "_" + g.examName
	res := Status{Student: st.ID, Name: st.Name, Source: source, Status: StatusError}

	text := latex.Substitute(g.template, map[string]string{
		latex.FieldName:  latex.Escape(st.Name),
		latex.FieldEmail: st.ID,
		latex.FieldGroup: g.group,
	})
	if err := os.WriteFile(filepath.Join(g.groupDir, source), []byte(text), 0o644); err != nil {
		res.Err = fmt.Errorf("writing %s: %w", source, err)
		g.log.Error("exam source not written", "id", st.ID, "err", res.Err)
		return res
	}

	g.log.Info("compiling exam", "id", st.ID, "source", source)
	if err := compile.Run(ctx, g.compiler, g.groupDir, source, g.passes); err != nil {
		res.Err = err
		g.log.Error("exam not generated", "id", st.ID, "err", err)
		return res
	}
	res.Status = StatusOK
	g.log.Info("exam generated", "id", st.ID)
	return res
}

// prepareGroupDir removes dst and recreates it as a copy of src.
func prepareGroupDir(src, dst string) error {
	if err := os.RemoveAll(dst); err != nil {
		return &core.DirectoryError{Op: "remove", Path: dst, Err: err}
	}
	if err := copyTree(src, dst); err != nil {
		return &core.DirectoryError{Op: "copy", Path: dst, Err: err}
	}
	return nil
}

// copyTree copies the regular files and directories under src into dst.
// dst itself is skipped when it lies inside src.
func copyTree(src, dst string) error {
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return err
	}
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if abs == absDst {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0o755)
		case d.Type().IsRegular():
			return copyFile(path, target)
		default:
			return nil
		}
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
