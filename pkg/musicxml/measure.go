package musicxml

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"

	"github.com/ndisidore/scorebind/pkg/xmlschema"
)

// ErrEmptyNumber indicates a measure whose number token is empty.
var ErrEmptyNumber = errors.New("measure number must not be empty")

// Measure is a bound MusicXML <measure> element of a partwise score. A
// Measure is not safe for concurrent mutation.
type Measure struct {
	// MusicData holds the child elements in document order.
	MusicData []MusicData

	Implicit       xmlschema.Optional[YesNo]
	NonControlling xmlschema.Optional[YesNo]
	Width          xmlschema.Optional[Tenths]

	number    xmlschema.Token
	container xmlschema.Container
	dom       *etree.Element
}

// NewMeasure returns a measure with the given number, no optional
// attributes and no children.
func NewMeasure(number xmlschema.Token) *Measure {
	return &Measure{number: number}
}

// Number returns the measure number. Numbers are tokens, not integers:
// "12a" and "X1" are valid.
func (m *Measure) Number() xmlschema.Token {
	return m.number
}

// SetNumber replaces the measure number.
func (m *Measure) SetNumber(n xmlschema.Token) {
	m.number = n
}

// AdoptNumber takes the number p points to. The number is required, so a
// nil p panics.
func (m *Measure) AdoptNumber(p *xmlschema.Token) {
	if p == nil {
		panic("musicxml: AdoptNumber called with nil number")
	}
	m.number = *p
}

// SetMusicData replaces the children with deep copies of seq. Nil entries
// are dropped, as in CloneWith and Append.
func (m *Measure) SetMusicData(seq []MusicData) {
	if seq == nil {
		m.MusicData = nil
		return
	}
	out := make([]MusicData, 0, len(seq))
	for _, md := range seq {
		if md == nil {
			continue
		}
		out = append(out, cloneMusicData(md, 0, m))
	}
	m.MusicData = out
}

// Append adds children to the end of the sequence without copying them.
// Nil entries are dropped.
func (m *Measure) Append(md ...MusicData) {
	for _, v := range md {
		if v != nil {
			m.MusicData = append(m.MusicData, v)
		}
	}
}

// Container returns the element that owns the measure, if any.
func (m *Measure) Container() xmlschema.Container {
	return m.container
}

// DOM returns the retained source element when the measure was decoded or
// copied with FlagKeepDOM, and nil otherwise. Callers must not modify it.
func (m *Measure) DOM() *etree.Element {
	return m.dom
}

// ElementName returns "measure".
func (*Measure) ElementName() string {
	return "measure"
}

// Clone returns a deep copy with no flags and no container.
func (m *Measure) Clone() *Measure {
	return m.CloneWith(0, nil)
}

// CloneWith returns a deep copy owned by c. The DOM backing is copied only
// when f carries FlagKeepDOM. Nil children are not copied.
func (m *Measure) CloneWith(f xmlschema.Flags, c xmlschema.Container) *Measure {
	if m == nil {
		return nil
	}
	out := &Measure{
		Implicit:       m.Implicit,
		NonControlling: m.NonControlling,
		Width:          m.Width,
		number:         m.number,
		container:      c,
	}
	if m.MusicData != nil {
		out.MusicData = make([]MusicData, 0, len(m.MusicData))
		for _, md := range m.MusicData {
			if md != nil {
				out.MusicData = append(out.MusicData, cloneMusicData(md, f, out))
			}
		}
	}
	if f.Has(xmlschema.FlagKeepDOM) && m.dom != nil {
		out.dom = m.dom.Copy()
	}
	return out
}

// CloneElement implements xmlschema.Element.
func (m *Measure) CloneElement(f xmlschema.Flags, c xmlschema.Container) xmlschema.Element {
	return m.CloneWith(f, c)
}

// Assign replaces m's fields and children with deep copies of src's.
// The container is kept and the DOM backing is dropped since it no longer
// describes m. Assigning a measure to itself does nothing; a nil src is a
// contract violation and panics.
func (m *Measure) Assign(src *Measure) {
	if src == nil {
		panic("musicxml: Assign called with nil measure")
	}
	if m == src {
		return
	}
	m.number = src.number
	m.Implicit.Assign(src.Implicit)
	m.NonControlling.Assign(src.NonControlling)
	m.Width.Assign(src.Width)
	m.SetMusicData(src.MusicData)
	m.dom = nil
}

// Validate reports values that decode accepts but that must not be written
// back: an empty number and non-positive cursor durations.
func (m *Measure) Validate() error {
	var errs []error
	if m.number == "" {
		errs = append(errs, ErrEmptyNumber)
	}
	for i, md := range m.MusicData {
		if md == nil {
			errs = append(errs, fmt.Errorf("music-data[%d]: nil entry", i))
			continue
		}
		if err := md.validate(); err != nil {
			errs = append(errs, fmt.Errorf("music-data[%d] %s: %w", i, md.Kind(), err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("measure %q: %w", m.number, errors.Join(errs...))
}

// KindCounts tallies the children by kind.
func (m *Measure) KindCounts() map[Kind]int {
	counts := make(map[Kind]int, len(m.MusicData))
	for _, md := range m.MusicData {
		if md != nil {
			counts[md.Kind()]++
		}
	}
	return counts
}

// Duration returns the furthest point the time cursor reaches in the
// measure. Chord and grace notes do not advance the cursor; backups are
// clamped at the start of the measure.
func (m *Measure) Duration() Divisions {
	var cur, maxPos xmlschema.Decimal
	for _, md := range m.MusicData {
		switch v := md.(type) {
		case *Note:
			if v.IsChord() || v.IsGrace() {
				continue
			}
			if d, ok := v.Duration(); ok {
				cur = cur.Add(d.Decimal)
			}
		case *Forward:
			cur = cur.Add(v.Duration.Decimal)
		case *Backup:
			cur = cur.Sub(v.Duration.Decimal)
			if cur.Sign() < 0 {
				cur = xmlschema.Decimal{}
			}
		default:
			continue
		}
		if cur.Cmp(maxPos) > 0 {
			maxPos = cur
		}
	}
	return Divisions{maxPos}
}
