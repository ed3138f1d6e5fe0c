package compile

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/gaurav-prasanna/examsplit/core"
)

type countingCompiler struct {
	calls  int
	failAt int // 1-based call that fails; 0 never
}

func (c *countingCompiler) Compile(ctx context.Context, dir, source string) error {
	c.calls++
	if c.calls == c.failAt {
		return errors.New("exit status 1")
	}
	return nil
}

func TestRunAllPasses(t *testing.T) {
	c := &countingCompiler{}
	if err := Run(context.Background(), c, ".", "a.tex", 3); err != nil {
		t.Fatalf("run: %v", err)
	}
	if c.calls != 3 {
		t.Fatalf("expect 3 passes, got %d", c.calls)
	}
}

func TestRunDefaultPasses(t *testing.T) {
	c := &countingCompiler{}
	_ = Run(context.Background(), c, ".", "a.tex", 0)
	if c.calls != DefaultPasses {
		t.Fatalf("expect %d passes, got %d", DefaultPasses, c.calls)
	}
}

func TestRunAbortsOnFailure(t *testing.T) {
	c := &countingCompiler{failAt: 2}
	err := Run(context.Background(), c, ".", "a.tex", 5)
	var cerr *core.CompileError
	if !errors.As(err, &cerr) || cerr.Pass != 2 || cerr.Source != "a.tex" {
		t.Fatalf("expect CompileError at pass 2, got %v", err)
	}
	if c.calls != 2 {
		t.Fatalf("expect abort after 2 calls, got %d", c.calls)
	}
}

func TestPDFLaTeXExitStatus(t *testing.T) {
	for _, bin := range []string{"true", "false"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not available", bin)
		}
	}
	dir := t.TempDir()
	if err := New("true", time.Second).Compile(context.Background(), dir, "a.tex"); err != nil {
		t.Fatalf("true: %v", err)
	}
	if err := New("false", time.Second).Compile(context.Background(), dir, "a.tex"); err == nil {
		t.Fatalf("false: expect error")
	}
}

func TestNewDefaults(t *testing.T) {
	p := New("", 0)
	if p.Binary != DefaultBinary || p.Timeout != DefaultTimeout {
		t.Fatalf("defaults not applied: %+v", p)
	}
}
