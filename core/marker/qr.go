// Package marker implements the MarkerReader interface for QR codes.
// Decoding failures of any kind are folded into core.NoMarker: a page
// without a readable code is an expected, ordinary outcome.
package marker

import (
	"image"

	"github.com/gaurav-prasanna/examsplit/core"
	"github.com/makiuchi-d/gozxing"
	multiqr "github.com/makiuchi-d/gozxing/multi/qrcode"
	"github.com/makiuchi-d/gozxing/qrcode"
	"golang.org/x/image/draw"
)

// DefaultMaxDimension bounds the longer side of an image handed to the
// decoder. Larger rasters are downscaled first.
const DefaultMaxDimension = 2400

type multiDecoder interface {
	DecodeMultiple(img *gozxing.BinaryBitmap, hints map[gozxing.DecodeHintType]interface{}) ([]*gozxing.Result, error)
}

// Options configures a QRReader.
type Options struct {
	// MaxDimension is the longest image side, in pixels, passed to the
	// decoder. 0 selects DefaultMaxDimension; negative disables scaling.
	MaxDimension int
}

// QRReader decodes QR markers with gozxing.
type QRReader struct {
	maxDim int
	multi  multiDecoder
	single gozxing.Reader
	hints  map[gozxing.DecodeHintType]interface{}
}

// NewQRReader creates a QRReader.
func NewQRReader(opts Options) *QRReader {
	maxDim := opts.MaxDimension
	if maxDim == 0 {
		maxDim = DefaultMaxDimension
	}
	return &QRReader{
		maxDim: maxDim,
		multi:  multiqr.NewQRCodeMultiReader(),
		single: qrcode.NewQRCodeReader(),
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

var _ core.MarkerReader = (*QRReader)(nil)

// Read returns the first marker the decoder reports on the page.
func (r *QRReader) Read(page core.Page) (out core.DecodeOutcome) {
	if page.Image == nil {
		return core.NoMarker()
	}
	// gozxing panics on some degenerate inputs; treat those as unreadable.
	defer func() {
		if recover() != nil {
			out = core.NoMarker()
		}
	}()

	bmp, err := gozxing.NewBinaryBitmapFromImage(r.scale(page.Image))
	if err != nil {
		return core.NoMarker()
	}

	if results, err := r.multi.DecodeMultiple(bmp, r.hints); err == nil {
		for _, res := range results {
			if res != nil && res.GetText() != "" {
				return core.Marker(res.GetText())
			}
		}
	}

	// The multi reader gives up on some pages the single reader still reads.
	res, err := r.single.Decode(bmp, r.hints)
	if err != nil || res == nil || res.GetText() == "" {
		return core.NoMarker()
	}
	return core.Marker(res.GetText())
}

// scale shrinks img so that its longer side fits maxDim.
func (r *QRReader) scale(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if r.maxDim <= 0 || longest <= r.maxDim {
		return img
	}
	nw := w * r.maxDim / longest
	nh := h * r.maxDim / longest
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewGray(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
