// Package compile runs the external LaTeX compiler.
// PDFLaTeX implements core.Compiler for a single pass; Run applies the
// fixed-pass policy: the compiler is invoked exactly the configured number of
// times, even after an early success, and the first failing pass aborts.
package compile

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/gaurav-prasanna/examsplit/core"
)

const (
	DefaultBinary  = "pdflatex"
	DefaultPasses  = 3
	DefaultTimeout = 2 * time.Minute
)

// PDFLaTeX invokes a pdflatex-compatible binary in non-interactive mode.
type PDFLaTeX struct {
	Binary  string
	Timeout time.Duration // per invocation
	Stdout  io.Writer     // discarded when nil
	Stderr  io.Writer     // discarded when nil
}

// New creates a PDFLaTeX with defaults for empty fields.
func New(binary string, timeout time.Duration) *PDFLaTeX {
	if binary == "" {
		binary = DefaultBinary
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &PDFLaTeX{Binary: binary, Timeout: timeout}
}

var _ core.Compiler = (*PDFLaTeX)(nil)

// Compile runs one pass on source inside dir.
func (p *PDFLaTeX) Compile(ctx context.Context, dir, source string) error {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, p.Binary, "-interaction=nonstopmode", "-halt-on-error", source)
	cmd.Dir = dir
	cmd.Stdout = p.Stdout
	cmd.Stderr = p.Stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", p.Binary, ctx.Err())
		}
		return fmt.Errorf("%s: %w", p.Binary, err)
	}
	return nil
}

// Run invokes c exactly passes times on source and stops at the first
// failure, which is returned as a *core.CompileError.
func Run(ctx context.Context, c core.Compiler, dir, source string, passes int) error {
	if passes <= 0 {
		passes = DefaultPasses
	}
	for pass := 1; pass <= passes; pass++ {
		if err := c.Compile(ctx, dir, source); err != nil {
			return &core.CompileError{Source: source, Pass: pass, Err: err}
		}
	}
	return nil
}
