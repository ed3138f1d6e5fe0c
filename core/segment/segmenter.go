// Package segment groups an ordered page stream into per-identifier runs.
//
// The grouping is a pure fold: Step takes the current State plus one page and
// its decode outcome and returns the next State, what happened to the page,
// and the segment closed by that page, if any. Finish flushes the open
// segment once the stream is exhausted. Boundaries are driven only by a
// change of decoded identifier, so a page whose marker fails to decode stays
// with the run it belongs to.
package segment

import (
	"slices"

	"github.com/gaurav-prasanna/examsplit/core"
)

// Action describes what Step did with a page.
type Action int

const (
	// Drop: no segment is open and the page has no marker.
	Drop Action = iota
	// Start: the first marker of the stream opened a segment.
	Start
	// Append: the page joined the open segment.
	Append
	// Boundary: a different identifier closed the open segment and opened a new one.
	Boundary
)

func (a Action) String() string {
	switch a {
	case Drop:
		return "drop"
	case Start:
		return "start"
	case Append:
		return "append"
	case Boundary:
		return "boundary"
	default:
		return "unknown"
	}
}

// State is either Idle (the zero value) or Active with an identifier and the
// pages accumulated so far.
type State struct {
	active bool
	id     string
	pages  []core.Page
}

// Idle reports whether no segment is open.
func (s State) Idle() bool { return !s.active }

// ID returns the identifier of the open segment, or "" when idle.
func (s State) ID() string { return s.id }

// Len returns the number of pages in the open segment.
func (s State) Len() int { return len(s.pages) }

func open(id string, p core.Page) State {
	return State{active: true, id: id, pages: []core.Page{p}}
}

// Step applies one page to s.
// The returned segment is non-nil only for Boundary.
func Step(s State, p core.Page, o core.DecodeOutcome) (State, Action, *core.Segment) {
	if !s.active {
		if !o.Found {
			return s, Drop, nil
		}
		return open(o.ID, p), Start, nil
	}
	if !o.Found || o.ID == s.id {
		// Clip so the new state never shares a backing array with s.
		s.pages = append(slices.Clip(s.pages), p)
		return s, Append, nil
	}
	closed := &core.Segment{ID: s.id, Pages: s.pages}
	return open(o.ID, p), Boundary, closed
}

// Finish closes the open segment at stream end. It returns nil when idle.
func Finish(s State) *core.Segment {
	if !s.active {
		return nil
	}
	return &core.Segment{ID: s.id, Pages: s.pages}
}

// Segmenter wraps the fold for callers that feed pages one at a time.
type Segmenter struct {
	state   State
	dropped int
}

// New creates an idle Segmenter.
func New() *Segmenter {
	return &Segmenter{}
}

// Feed applies one page and returns the segment it closed, if any.
func (g *Segmenter) Feed(p core.Page, o core.DecodeOutcome) (Action, *core.Segment) {
	next, action, closed := Step(g.state, p, o)
	g.state = next
	if action == Drop {
		g.dropped++
	}
	return action, closed
}

// Close flushes the open segment and resets the Segmenter to idle.
func (g *Segmenter) Close() *core.Segment {
	seg := Finish(g.state)
	g.state = State{}
	return seg
}

// State returns the current fold state.
func (g *Segmenter) State() State { return g.state }

// Dropped returns how many pages were discarded before the first marker.
func (g *Segmenter) Dropped() int { return g.dropped }

// All folds a complete outcome sequence and returns the emitted segments.
// pages and outcomes must have the same length.
func All(pages []core.Page, outcomes []core.DecodeOutcome) []core.Segment {
	var (
		s    State
		segs []core.Segment
	)
	for i, p := range pages {
		var closed *core.Segment
		s, _, closed = Step(s, p, outcomes[i])
		if closed != nil {
			segs = append(segs, *closed)
		}
	}
	if last := Finish(s); last != nil {
		segs = append(segs, *last)
	}
	return segs
}
