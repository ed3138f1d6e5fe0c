// Package core defines the pipeline types and interfaces for examsplit.
// Each stage of the split pipeline (rasterize → decode → segment → write)
// and of exam generation is a small, testable interface.
package core

import (
	"context"
	"image"
)

// Page is one rasterized page of the input document.
type Page struct {
	Index int // 0-based position in the document
	Image image.Image
}

// DecodeOutcome is the result of looking for a marker on one page.
type DecodeOutcome struct {
	ID    string
	Found bool
}

// Marker returns the outcome for a page whose marker decoded to id.
func Marker(id string) DecodeOutcome {
	return DecodeOutcome{ID: id, Found: true}
}

// NoMarker returns the outcome for a page without a decodable marker.
func NoMarker() DecodeOutcome {
	return DecodeOutcome{}
}

// Segment is a contiguous run of pages belonging to one identifier.
type Segment struct {
	ID    string
	Pages []Page
}

// First returns the index of the segment's first page.
func (s Segment) First() int {
	if len(s.Pages) == 0 {
		return -1
	}
	return s.Pages[0].Index
}

// Last returns the index of the segment's last page.
func (s Segment) Last() int {
	if len(s.Pages) == 0 {
		return -1
	}
	return s.Pages[len(s.Pages)-1].Index
}

// Positions returns the page indexes of the segment, in order.
func (s Segment) Positions() []int {
	out := make([]int, len(s.Pages))
	for i, p := range s.Pages {
		out[i] = p.Index
	}
	return out
}

// Student is one row of an exam roster.
type Student struct {
	ID    string // email local part, also the QR payload
	Name  string
	Email string
}

// PageSource produces the pages of a document in order.
// Iteration stops at the first error returned by yield.
type PageSource interface {
	Pages(ctx context.Context, yield func(Page) error) error
}

// MarkerReader looks for a marker on a page. It never fails: anything it
// cannot decode is reported as NoMarker.
type MarkerReader interface {
	Read(page Page) DecodeOutcome
}

// Renderer converts a closed segment into a final output document.
type Renderer interface {
	Render(seg Segment) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".pdf").
	Extension() string
}

// SegmentWriter persists a closed segment and returns the written path.
type SegmentWriter interface {
	Write(ctx context.Context, seg Segment) (string, error)
}

// Compiler runs one pass of an external document compiler on source,
// relative to dir.
type Compiler interface {
	Compile(ctx context.Context, dir, source string) error
}
