package musicxml

import (
	"github.com/beevik/etree"

	"github.com/ndisidore/scorebind/pkg/xmlschema"
)

// EncodeTo writes the measure's attributes and children into e. Attributes
// are set in the order number, implicit, non-controlling, width; absent
// optional attributes are omitted. One child element is appended per
// music-data entry, in order.
func (m *Measure) EncodeTo(e *etree.Element) {
	e.CreateAttr("number", m.number.String())
	xmlschema.SetOptionalAttr(e, "", "implicit", m.Implicit, YesNo.String)
	xmlschema.SetOptionalAttr(e, "", "non-controlling", m.NonControlling, YesNo.String)
	xmlschema.SetOptionalAttr(e, "", "width", m.Width, Tenths.String)
	for _, md := range m.MusicData {
		if md == nil {
			continue
		}
		md.encodeTo(e.CreateElement(md.ElementName()))
	}
}

// Element returns a new, detached <measure> element holding the encoded
// measure.
func (m *Measure) Element() *etree.Element {
	e := etree.NewElement(m.ElementName())
	m.EncodeTo(e)
	return e
}

// EncodeMusicData returns a detached element for a single child.
func EncodeMusicData(md MusicData) *etree.Element {
	e := etree.NewElement(md.ElementName())
	md.encodeTo(e)
	return e
}
