// Package cmd — generate command.
// Personalizes the exam template for every student in the roster and
// compiles each one: reset group dir → substitute → compile (N passes).
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/gaurav-prasanna/examsplit/core/compile"
	"github.com/gaurav-prasanna/examsplit/core/generate"
	"github.com/gaurav-prasanna/examsplit/core/roster"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// generateFlags holds the generate command's flag values.
type generateFlags struct {
	exam        string
	group       string
	studentFile string
	passes      int
	workers     int
	latex       string
	timeout     time.Duration
}

var flagsGenerate generateFlags

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one compiled exam per student",
	Long: `Generate copies the exam template's directory into the group directory
(deleting it first), then, for every student in the roster, writes
<student_id>_<exam> with the \nombre, \email and \grupo commands filled in
and compiles it with pdflatex. The student id is the email without the
@domain part.

Examples:
  examsplit generate
  examsplit generate --exam exam/exam.tex --group G1 --student_file G1.csv
  examsplit generate --group G1 --workers 4 --passes 2`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addGenerateFlags(generateCmd.Flags(), &flagsGenerate)
}

func addGenerateFlags(fs *pflag.FlagSet, f *generateFlags) {
	fs.StringVar(&f.exam, "exam", "exam.tex", "Exam template file")
	fs.StringVar(&f.group, "group", "group", "Group name; also the output directory")
	fs.StringVar(&f.studentFile, "student_file", "", "CSV file with students data (default: <group>.csv)")
	fs.IntVar(&f.passes, "passes", compile.DefaultPasses, "Compiler passes per exam")
	fs.IntVar(&f.workers, "workers", 0, "Exams compiled concurrently (default: number of CPUs)")
	fs.StringVar(&f.latex, "latex", compile.DefaultBinary, "LaTeX compiler binary")
	fs.DurationVar(&f.timeout, "timeout", compile.DefaultTimeout, "Timeout per compiler pass")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	f := flagsGenerate
	if f.studentFile == "" {
		f.studentFile = f.group + ".csv"
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}

	students, err := roster.Load(f.studentFile)
	if err != nil {
		return err
	}

	gen, err := generate.New(f.exam, f.group, compile.New(f.latex, f.timeout), generate.Options{
		Passes:  f.passes,
		Workers: f.workers,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("preparing group directory: %w", err)
	}

	stdout := cmd.OutOrStdout()
	fmt.Fprintf(stdout, "Generating %d exams in %s...\n", len(students), gen.Dir())

	statuses := gen.Run(context.Background(), students)
	for _, s := range statuses {
		if s.Status == generate.StatusOK {
			fmt.Fprintf(stdout, "  ✓ %s (%s)\n", s.Name, s.Student)
		}
	}

	failed := generate.Failed(statuses)
	if len(failed) == 0 {
		fmt.Fprintln(stdout, "All exams generated successfully.")
		return nil
	}
	errOut := cmd.ErrOrStderr()
	fmt.Fprintf(errOut, "Error generating %d exams.\n", len(failed))
	for _, s := range failed {
		fmt.Fprintf(errOut, "%s: %v\n", s.Student, s.Err)
	}
	return fmt.Errorf("%d of %d exams failed", len(failed), len(statuses))
}
