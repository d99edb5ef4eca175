package musicxml

import (
	"github.com/beevik/etree"

	"github.com/ndisidore/scorebind/pkg/xmlschema"
)

// Sound carries playback parameters such as tempo and dynamics.
type Sound struct {
	Tempo    xmlschema.Optional[xmlschema.Decimal]
	Dynamics xmlschema.Optional[xmlschema.Decimal]
	Fragment
}

func (*Sound) Kind() Kind          { return KindSound }
func (*Sound) ElementName() string { return KindSound.String() }

// Clone returns a deep copy. Decimals are immutable and shared.
func (s *Sound) Clone() *Sound {
	return &Sound{
		Tempo:    s.Tempo,
		Dynamics: s.Dynamics,
		Fragment: s.Fragment.clone(),
	}
}

func (s *Sound) CloneElement(xmlschema.Flags, xmlschema.Container) xmlschema.Element {
	return s.Clone()
}

func (s *Sound) encodeTo(e *etree.Element) {
	xmlschema.SetOptionalAttr(e, "", "tempo", s.Tempo, xmlschema.Decimal.String)
	xmlschema.SetOptionalAttr(e, "", "dynamics", s.Dynamics, xmlschema.Decimal.String)
	s.encodeAttrs(e)
	s.encodeChildren(e)
}

func decodeSound(e *etree.Element) (*Sound, error) {
	s := &Sound{Fragment: fragmentOf(e, claimAttrs("tempo", "dynamics"), nil)}
	var err error
	if s.Tempo, err = xmlschema.OptionalAttr(e, "", "tempo", parseNonNegativeDecimal); err != nil {
		return nil, err
	}
	if s.Dynamics, err = xmlschema.OptionalAttr(e, "", "dynamics", parseNonNegativeDecimal); err != nil {
		return nil, err
	}
	return s, nil
}

// Barline describes a barline, repeat or ending at one end of the measure.
type Barline struct {
	Location xmlschema.Optional[RightLeftMiddle]
	Fragment
}

func (*Barline) Kind() Kind          { return KindBarline }
func (*Barline) ElementName() string { return KindBarline.String() }

// Clone returns a deep copy.
func (b *Barline) Clone() *Barline {
	return &Barline{Location: b.Location, Fragment: b.Fragment.clone()}
}

func (b *Barline) CloneElement(xmlschema.Flags, xmlschema.Container) xmlschema.Element {
	return b.Clone()
}

// EffectiveLocation returns the location, defaulting to right.
func (b *Barline) EffectiveLocation() RightLeftMiddle {
	return b.Location.GetOr(Right)
}

func (b *Barline) encodeTo(e *etree.Element) {
	xmlschema.SetOptionalAttr(e, "", "location", b.Location, RightLeftMiddle.String)
	b.encodeAttrs(e)
	b.encodeChildren(e)
}

func decodeBarline(e *etree.Element) (*Barline, error) {
	loc, err := xmlschema.OptionalAttr(e, "", "location", ParseRightLeftMiddle)
	if err != nil {
		return nil, err
	}
	return &Barline{
		Location: loc,
		Fragment: fragmentOf(e, claimAttrs("location"), nil),
	}, nil
}
