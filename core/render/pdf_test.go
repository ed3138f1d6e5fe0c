package render

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/gaurav-prasanna/examsplit/core"
)

func page(i, w, h int) core.Page {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
		}
	}
	return core.Page{Index: i, Image: img}
}

func TestRenderProducesPDF(t *testing.T) {
	r := NewPDFRenderer(200)
	data, err := r.Render(core.Segment{ID: "jdoe", Pages: []core.Page{page(0, 120, 170), page(1, 170, 120), page(2, 50, 50)}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("missing PDF header: %q", data[:8])
	}
	if !bytes.Contains(data, []byte("%%EOF")) {
		t.Fatalf("missing PDF trailer")
	}
	if r.Extension() != ".pdf" {
		t.Fatalf("unexpected extension %q", r.Extension())
	}
}

func TestRenderGrayPages(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 40, 60))
	data, err := NewPDFRenderer(0).Render(core.Segment{ID: "g", Pages: []core.Page{{Index: 3, Image: img}}})
	if err != nil || !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("render gray: %v", err)
	}
}

func TestRenderRejectsEmpty(t *testing.T) {
	if _, err := NewPDFRenderer(72).Render(core.Segment{ID: "x"}); err == nil {
		t.Fatalf("expect error for empty segment")
	}
	if _, err := NewPDFRenderer(72).Render(core.Segment{ID: "x", Pages: []core.Page{{Index: 0}}}); err == nil {
		t.Fatalf("expect error for page without image")
	}
}

func TestPageSize(t *testing.T) {
	w, h := NewPDFRenderer(144).pageSize(image.Rect(0, 0, 1190, 1684))
	if math.Abs(w-595) > 1e-9 || math.Abs(h-842) > 1e-9 {
		t.Fatalf("expect A4 points, got %.2fx%.2f", w, h)
	}
}
