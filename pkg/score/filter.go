package score

import (
	"errors"
	"fmt"

	"github.com/ndisidore/scorebind/pkg/musicxml"
	"github.com/ndisidore/scorebind/pkg/xmlschema"
)

// Sentinel errors for measure filtering.
var (
	ErrUnknownStartAt   = errors.New("start-at measure not found")
	ErrUnknownStopAfter = errors.New("stop-after measure not found")
	ErrEmptyWindow      = errors.New("measure window is empty (start-at comes after stop-after)")
)

// FilterOpts selects a window of measures by number.
type FilterOpts struct {
	StartAt   string // keep from this measure number forward
	StopAfter string // keep up to and including this measure number
}

// IsZero reports whether the options select every measure.
func (o FilterOpts) IsZero() bool {
	return o.StartAt == "" && o.StopAfter == ""
}

// FilterMeasures returns the measures inside the window. Numbers are
// compared as tokens and the first match wins. The measures themselves are
// shared with the input.
func FilterMeasures(measures []*musicxml.Measure, opts FilterOpts) ([]*musicxml.Measure, error) {
	if opts.IsZero() {
		return measures, nil
	}
	start, stop := 0, len(measures)-1
	if opts.StartAt != "" {
		start = measureIndex(measures, opts.StartAt)
		if start < 0 {
			return nil, fmt.Errorf("%q: %w", opts.StartAt, ErrUnknownStartAt)
		}
	}
	if opts.StopAfter != "" {
		stop = measureIndex(measures, opts.StopAfter)
		if stop < 0 {
			return nil, fmt.Errorf("%q: %w", opts.StopAfter, ErrUnknownStopAfter)
		}
	}
	if start > stop {
		return nil, fmt.Errorf("%q..%q: %w", opts.StartAt, opts.StopAfter, ErrEmptyWindow)
	}
	out := make([]*musicxml.Measure, stop-start+1)
	copy(out, measures[start:stop+1])
	return out, nil
}

// measureIndex returns the index of the first measure numbered n, or -1.
func measureIndex(measures []*musicxml.Measure, n string) int {
	tok := xmlschema.NewToken(n)
	for i, m := range measures {
		if m.Number() == tok {
			return i
		}
	}
	return -1
}

// Window returns a deep copy of s keeping only the measures inside the
// window in every part.
func (s *Score) Window(opts FilterOpts) (*Score, error) {
	out := s.Clone()
	if opts.IsZero() {
		return out, nil
	}
	for _, p := range out.Parts {
		kept, err := FilterMeasures(p.Measures, opts)
		if err != nil {
			return nil, fmt.Errorf("part %q: %w", p.ID, err)
		}
		p.Measures = kept
	}
	return out, nil
}
