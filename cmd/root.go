// Package cmd implements the CLI commands for examsplit using Cobra.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var flagLogLevel string

var rootCmd = &cobra.Command{
	Use:   "examsplit",
	Short: "examsplit — generate per-student exams and split scanned exams by QR code",
	Long: `examsplit covers both ends of a paper exam:

  generate  personalizes a LaTeX exam for every student of a roster and
            compiles one PDF per student;
  split     cuts a scanned stack of answered exams into one PDF per student,
            using the QR code printed on each exam's first page.

Usage:
  examsplit generate --exam exam.tex --group G1
  examsplit split --pdf todo.pdf`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log_level", "warn", "Log level: debug, info, warn or error")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the stderr logger for the --log_level flag.
func newLogger() (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(strings.TrimSpace(flagLogLevel)) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid --log_level %q (want debug, info, warn or error)", flagLogLevel)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}
