// Package raster implements the PageSource interface on top of poppler.
// pdfinfo provides the page count; pdftoppm renders one page at a time into
// a private scratch directory, and each rendered file is decoded into memory
// and deleted before the page is handed on.
//
// Rendering may run ahead of the consumer on several workers, but pages are
// always yielded in document order.
package raster

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // decoders for pdftoppm output
	_ "image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/examsplit/core"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultDPI    = 200
	DefaultFormat = "jpeg"
)

// Options configures a PDFSource.
type Options struct {
	DPI      int    // rasterization resolution; default DefaultDPI
	Format   string // "jpeg" or "png"; default DefaultFormat
	Workers  int    // pages rendered concurrently; default 1
	PDFToPPM string // pdftoppm binary; default "pdftoppm"
	PDFInfo  string // pdfinfo binary; default "pdfinfo"
}

func (o *Options) ensureDefaults() {
	if o.DPI <= 0 {
		o.DPI = DefaultDPI
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.PDFToPPM == "" {
		o.PDFToPPM = "pdftoppm"
	}
	if o.PDFInfo == "" {
		o.PDFInfo = "pdfinfo"
	}
}

// PDFSource rasterizes the pages of one PDF file.
type PDFSource struct {
	path string
	opts Options
}

// New creates a PDFSource for the given file.
func New(path string, opts Options) (*PDFSource, error) {
	opts.ensureDefaults()
	if opts.Format != "jpeg" && opts.Format != "png" {
		return nil, fmt.Errorf("unsupported raster format %q (want jpeg or png)", opts.Format)
	}
	return &PDFSource{path: path, opts: opts}, nil
}

var _ core.PageSource = (*PDFSource)(nil)

// DPI returns the rasterization resolution.
func (s *PDFSource) DPI() int { return s.opts.DPI }

// PageCount asks pdfinfo for the number of pages in the document.
func (s *PDFSource) PageCount(ctx context.Context) (int, error) {
	if _, err := os.Stat(s.path); err != nil {
		return 0, s.readErr(err)
	}
	out, err := exec.CommandContext(ctx, s.opts.PDFInfo, s.path).Output()
	if err != nil {
		return 0, s.readErr(fmt.Errorf("pdfinfo failed: %w", err))
	}
	n, err := parsePageCount(out)
	if err != nil {
		return 0, s.readErr(err)
	}
	return n, nil
}

// Pages renders every page and yields it in document order.
func (s *PDFSource) Pages(ctx context.Context, yield func(core.Page) error) error {
	total, err := s.PageCount(ctx)
	if err != nil {
		return err
	}
	if total == 0 {
		return nil
	}

	workDir, err := os.MkdirTemp("", "examsplit-raster-*")
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	g, gctx := errgroup.WithContext(ctx)

	// One slot per page; the window bounds how far rendering runs ahead.
	ready := make([]chan image.Image, total)
	for i := range ready {
		ready[i] = make(chan image.Image, 1)
	}
	window := make(chan struct{}, s.opts.Workers)

	g.Go(func() error {
		rg, rctx := errgroup.WithContext(gctx)
		for i := 0; i < total; i++ {
			select {
			case window <- struct{}{}:
			case <-rctx.Done():
				return rg.Wait()
			}
			page := i
			rg.Go(func() error {
				img, err := s.renderPage(rctx, workDir, page)
				if err != nil {
					return err
				}
				ready[page] <- img
				return nil
			})
		}
		return rg.Wait()
	})

	g.Go(func() error {
		for i := 0; i < total; i++ {
			var img image.Image
			select {
			case img = <-ready[i]:
			case <-gctx.Done():
				return gctx.Err()
			}
			<-window
			if err := yield(core.Page{Index: i, Image: img}); err != nil {
				return err
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		var derr *core.DocumentReadError
		if errors.As(err, &derr) {
			return derr
		}
		// Context errors from the caller win over the group's own cancellation.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// renderPage rasterizes one 0-based page and decodes it.
func (s *PDFSource) renderPage(ctx context.Context, workDir string, page int) (image.Image, error) {
	prefix := filepath.Join(workDir, fmt.Sprintf("page-%06d", page+1))
	num := strconv.Itoa(page + 1)
	args := []string{
		"-" + s.opts.Format,
		"-r", strconv.Itoa(s.opts.DPI),
		"-f", num,
		"-l", num,
		"-singlefile",
		s.path,
		prefix,
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.opts.PDFToPPM, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, s.readErr(fmt.Errorf("pdftoppm failed on page %d: %w: %s", page+1, err, msg))
		}
		return nil, s.readErr(fmt.Errorf("pdftoppm failed on page %d: %w", page+1, err))
	}

	file := prefix + extension(s.opts.Format)
	img, err := loadImage(file)
	if err != nil {
		return nil, s.readErr(fmt.Errorf("decoding page %d: %w", page+1, err))
	}
	_ = os.Remove(file)
	return img, nil
}

func (s *PDFSource) readErr(err error) error {
	return &core.DocumentReadError{Path: s.path, Err: err}
}

func extension(format string) string {
	if format == "png" {
		return ".png"
	}
	return ".jpg"
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// parsePageCount reads the "Pages:" line of pdfinfo output.
func parsePageCount(output []byte) (int, error) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) >= 2 {
			if total, err := strconv.Atoi(parts[1]); err == nil && total >= 0 {
				return total, nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return 0, errors.New("failed to determine page count from pdfinfo output")
}
