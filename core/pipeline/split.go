// Package pipeline wires the split stages together:
// rasterize → decode marker → segment → write.
//
// The fold is single-threaded; page order defines segment membership.
// Per-segment write failures are collected in the Report and do not stop the
// run. Document errors and cancellation are fatal.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gaurav-prasanna/examsplit/core"
	"github.com/gaurav-prasanna/examsplit/core/segment"
)

// SegmentResult is the outcome of writing one segment.
type SegmentResult struct {
	ID    string
	First int // index of the first page
	Last  int // index of the last page
	Pages int
	Path  string
	Err   error
}

// Report summarizes a split run.
type Report struct {
	Pages    int // pages read from the source
	Dropped  int // leading pages without a marker
	Segments []SegmentResult
}

// Failed returns the identifiers whose output could not be written, in
// segment order.
func (r *Report) Failed() []string {
	var ids []string
	for _, s := range r.Segments {
		if s.Err != nil {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// OK reports whether every segment was written.
func (r *Report) OK() bool {
	return len(r.Failed()) == 0
}

// Split folds the pages of src into segments and writes each one as soon as
// it closes. The returned Report is non-nil even when err is not, and holds
// whatever was done before the failure.
func Split(
	ctx context.Context,
	src core.PageSource,
	reader core.MarkerReader,
	writer core.SegmentWriter,
	logger *slog.Logger,
) (*Report, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	log := logger.With("comp", "split")
	report := &Report{}
	seg := segment.New()

	emit := func(s *core.Segment) {
		res := SegmentResult{ID: s.ID, First: s.First(), Last: s.Last(), Pages: len(s.Pages)}
		res.Path, res.Err = writer.Write(ctx, *s)
		if res.Err != nil {
			log.Error("segment write failed", "id", s.ID, "pages", res.Pages, "err", res.Err)
		} else {
			log.Info("segment written", "id", s.ID, "first", res.First, "last", res.Last, "path", res.Path)
		}
		report.Segments = append(report.Segments, res)
	}

	err := src.Pages(ctx, func(p core.Page) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		report.Pages++

		// 1. Decode
		outcome := reader.Read(p)

		// 2. Fold
		action, closed := seg.Feed(p, outcome)
		log.Debug("page", "page", p.Index, "marker", outcome.ID, "found", outcome.Found, "action", action.String())

		// 3. Write the run that just ended
		if closed != nil {
			emit(closed)
		}
		return nil
	})
	report.Dropped = seg.Dropped()
	if err != nil {
		var derr *core.DocumentReadError
		if errors.As(err, &derr) {
			return report, err
		}
		return report, fmt.Errorf("reading pages: %w", err)
	}

	if last := seg.Close(); last != nil {
		emit(last)
	}
	if report.Dropped > 0 {
		log.Warn("pages before the first marker were dropped", "count", report.Dropped)
	}
	return report, nil
}
