// Package score reads and writes partwise MusicXML documents through the
// measure binding in package musicxml.
package score

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"
	"github.com/samber/lo"

	"github.com/ndisidore/scorebind/pkg/musicxml"
	"github.com/ndisidore/scorebind/pkg/xmlschema"
)

// Sentinel errors for document handling.
var (
	ErrUnsupportedRoot    = errors.New("unsupported document root")
	ErrEmptyDocument      = errors.New("document has no root element")
	ErrUnsupportedCharset = errors.New("unsupported character set")
	ErrDuplicatePart      = errors.New("duplicate part id")
)

// Root element names.
const (
	RootPartwise = "score-partwise"
	RootTimewise = "score-timewise"
)

// Score is a partwise MusicXML document.
type Score struct {
	// Version is the MusicXML version attribute, empty when absent.
	Version string
	// Header holds the score-header elements (work, identification,
	// defaults, credit, part-list, ...) in document order.
	Header []*etree.Element
	Parts  []*Part
}

// Part is a <part> element and the Container of its measures.
type Part struct {
	ID       string
	Measures []*musicxml.Measure
}

// ElementName returns "part".
func (*Part) ElementName() string { return "part" }

// Clone returns a deep copy whose measures point back at the copy.
func (p *Part) Clone() *Part {
	return p.cloneWith(0)
}

// CloneElement implements xmlschema.Element.
func (p *Part) CloneElement(f xmlschema.Flags, _ xmlschema.Container) xmlschema.Element {
	return p.cloneWith(f)
}

func (p *Part) cloneWith(f xmlschema.Flags) *Part {
	out := &Part{ID: p.ID}
	if p.Measures != nil {
		out.Measures = make([]*musicxml.Measure, len(p.Measures))
		for i, m := range p.Measures {
			out.Measures[i] = m.CloneWith(f, out)
		}
	}
	return out
}

// Measure returns the first measure with the given number.
func (p *Part) Measure(number xmlschema.Token) (*musicxml.Measure, bool) {
	return lo.Find(p.Measures, func(m *musicxml.Measure) bool {
		return m.Number() == number
	})
}

// Clone returns a deep copy of the score.
func (s *Score) Clone() *Score {
	return &Score{
		Version: s.Version,
		Header: lo.Map(s.Header, func(e *etree.Element, _ int) *etree.Element {
			return e.Copy()
		}),
		Parts: lo.Map(s.Parts, func(p *Part, _ int) *Part {
			return p.Clone()
		}),
	}
}

// PartIDs returns the part ids in document order.
func (s *Score) PartIDs() []string {
	return lo.Map(s.Parts, func(p *Part, _ int) string { return p.ID })
}

// Part returns the part with the given id.
func (s *Score) Part(id string) (*Part, bool) {
	return lo.Find(s.Parts, func(p *Part) bool { return p.ID == id })
}

// MeasureCount returns the number of measures across all parts.
func (s *Score) MeasureCount() int {
	return lo.SumBy(s.Parts, func(p *Part) int { return len(p.Measures) })
}

// Validate checks every measure and reports duplicate part ids.
func (s *Score) Validate() error {
	var errs []error
	seen := make(map[string]struct{}, len(s.Parts))
	for _, p := range s.Parts {
		if _, dup := seen[p.ID]; dup {
			errs = append(errs, fmt.Errorf("%q: %w", p.ID, ErrDuplicatePart))
		}
		seen[p.ID] = struct{}{}
		for _, m := range p.Measures {
			if err := m.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("part %q: %w", p.ID, err))
			}
		}
	}
	return errors.Join(errs...)
}
