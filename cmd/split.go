// Package cmd — split command.
// Orchestrates the split pipeline:
// reset output dir → rasterize → decode QR → segment → write.
package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gaurav-prasanna/examsplit/core/marker"
	"github.com/gaurav-prasanna/examsplit/core/output"
	"github.com/gaurav-prasanna/examsplit/core/pipeline"
	"github.com/gaurav-prasanna/examsplit/core/raster"
	"github.com/gaurav-prasanna/examsplit/core/render"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// splitFlags holds the split command's flag values.
type splitFlags struct {
	pdf     string
	outDir  string
	dpi     int
	format  string
	workers int
	maxDim  int
}

var flagsSplit splitFlags

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split a scanned PDF into one PDF per student QR code",
	Long: `Split rasterizes every page of the input PDF, looks for a QR code on each
page and starts a new output document whenever the decoded identifier changes.
Pages without a readable code stay with the current student; pages before the
first code are dropped. Each run is written as <identifier>.pdf.

The output directory is deleted and recreated on every run.

Examples:
  examsplit split
  examsplit split --pdf scans/G1.pdf --outdir corrected/G1
  examsplit split --pdf todo.pdf --dpi 300 --workers 4`,
	Args: cobra.NoArgs,
	RunE: runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)
	addSplitFlags(splitCmd.Flags(), &flagsSplit)
}

func addSplitFlags(fs *pflag.FlagSet, f *splitFlags) {
	fs.StringVar(&f.pdf, "pdf", "todo.pdf", "PDF file to split into individual student exams")
	fs.StringVar(&f.outDir, "outdir", "", "Output directory (default: pend_<pdf name without extension>)")
	fs.IntVar(&f.dpi, "dpi", raster.DefaultDPI, "Rasterization resolution")
	fs.StringVar(&f.format, "format", raster.DefaultFormat, "Rasterization format: jpeg or png")
	fs.IntVar(&f.workers, "workers", 1, "Pages rasterized ahead concurrently")
	fs.IntVar(&f.maxDim, "max_dimension", marker.DefaultMaxDimension, "Downscale pages larger than this before QR decoding (negative disables)")
}

// defaultOutDir derives pend_<stem> from the input path.
func defaultOutDir(pdfPath string) string {
	base := filepath.Base(pdfPath)
	return "pend_" + strings.TrimSuffix(base, filepath.Ext(base))
}

func runSplit(cmd *cobra.Command, args []string) error {
	f := flagsSplit
	if f.outDir == "" {
		f.outDir = defaultOutDir(f.pdf)
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}

	// Initialize pipeline components.
	src, err := raster.New(f.pdf, raster.Options{DPI: f.dpi, Format: f.format, Workers: f.workers})
	if err != nil {
		return err
	}
	reader := marker.NewQRReader(marker.Options{MaxDimension: f.maxDim})

	writer, err := output.Prepare(f.outDir)
	if err != nil {
		return fmt.Errorf("preparing output directory: %w", err)
	}
	segments := output.NewSegmentWriter(writer, render.NewPDFRenderer(src.DPI()))

	stdout := cmd.OutOrStdout()
	fmt.Fprintf(stdout, "Splitting %s into %s...\n", f.pdf, f.outDir)

	report, err := pipeline.Split(context.Background(), src, reader, segments, logger)
	if err != nil {
		return fmt.Errorf("split: %w", err)
	}

	for _, s := range report.Segments {
		if s.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "  ✗ %s (pages %d-%d): %v\n", s.ID, s.First+1, s.Last+1, s.Err)
			continue
		}
		fmt.Fprintf(stdout, "  ✓ %s: %d pages (%d-%d) → %s\n", s.ID, s.Pages, s.First+1, s.Last+1, s.Path)
	}
	if report.Dropped > 0 {
		fmt.Fprintf(stdout, "Dropped %d page(s) before the first QR code\n", report.Dropped)
	}

	if failed := report.Failed(); len(failed) > 0 {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintf(errOut, "\n%d/%d exams failed to save:\n", len(failed), len(report.Segments))
		for _, id := range failed {
			fmt.Fprintln(errOut, id)
		}
		return fmt.Errorf("%d of %d exams not written", len(failed), len(report.Segments))
	}
	fmt.Fprintf(stdout, "Done: %d exams from %d pages.\n", len(report.Segments), report.Pages)
	return nil
}
