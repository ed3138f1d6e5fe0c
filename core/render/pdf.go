// Package render — PDF renderer.
// Assembles the page images of a segment into one multi-page PDF using
// gofpdf. Every page is sized to its image at the rasterization DPI, so the
// output has the same physical page size as the scanned input.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/gaurav-prasanna/examsplit/core"
	"github.com/jung-kurt/gofpdf"
)

// JPEGQuality is the quality used to embed page images.
const JPEGQuality = 95

// PDFRenderer renders segments as image-only PDF documents.
type PDFRenderer struct {
	dpi int
}

// NewPDFRenderer creates a PDFRenderer for images rasterized at dpi.
// Defaults to 72 (one pixel per point) if dpi <= 0.
func NewPDFRenderer(dpi int) *PDFRenderer {
	if dpi <= 0 {
		dpi = 72
	}
	return &PDFRenderer{dpi: dpi}
}

var _ core.Renderer = (*PDFRenderer)(nil)

// Render converts the segment's pages, in order, into PDF bytes.
func (r *PDFRenderer) Render(seg core.Segment) ([]byte, error) {
	if len(seg.Pages) == 0 {
		return nil, fmt.Errorf("segment %q has no pages", seg.ID)
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(seg.ID, true)
	pdf.SetCreator("examsplit", true)

	opts := gofpdf.ImageOptions{ImageType: "JPG", ReadDpi: false}
	for i, page := range seg.Pages {
		if page.Image == nil {
			return nil, fmt.Errorf("page %d has no image", page.Index)
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, page.Image, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, fmt.Errorf("encoding page %d: %w", page.Index, err)
		}

		w, h := r.pageSize(page.Image.Bounds())
		// Always "P": gofpdf swaps the dimensions for "L".
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})

		name := fmt.Sprintf("page%d", i)
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		pdf.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("adding page %d: %w", page.Index, err)
		}
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

// pageSize converts pixel bounds to points.
func (r *PDFRenderer) pageSize(b image.Rectangle) (float64, float64) {
	scale := 72.0 / float64(r.dpi)
	return float64(b.Dx()) * scale, float64(b.Dy()) * scale
}
