package musicxml

import (
	"github.com/beevik/etree"

	"github.com/ndisidore/scorebind/pkg/xmlschema"
)

// MusicData is one child of a measure. The set of implementations is
// closed: one type per Kind.
type MusicData interface {
	xmlschema.Element
	Kind() Kind
	encodeTo(e *etree.Element)
	validate() error
}

// Compile-time interface checks.
var (
	_ MusicData = (*Note)(nil)
	_ MusicData = (*Backup)(nil)
	_ MusicData = (*Forward)(nil)
	_ MusicData = (*Direction)(nil)
	_ MusicData = (*Attributes)(nil)
	_ MusicData = (*Harmony)(nil)
	_ MusicData = (*FiguredBass)(nil)
	_ MusicData = (*Print)(nil)
	_ MusicData = (*Sound)(nil)
	_ MusicData = (*Barline)(nil)
	_ MusicData = (*Grouping)(nil)
	_ MusicData = (*Link)(nil)
	_ MusicData = (*Bookmark)(nil)
)

// decodeMusicData builds the variant for kind from e.
func decodeMusicData(kind Kind, e *etree.Element) (MusicData, error) {
	switch kind {
	case KindNote:
		return &Note{fragmentOf(e, nil, nil)}, nil
	case KindBackup:
		return decodeBackup(e)
	case KindForward:
		return decodeForward(e)
	case KindDirection:
		return &Direction{fragmentOf(e, nil, nil)}, nil
	case KindAttributes:
		return &Attributes{fragmentOf(e, nil, nil)}, nil
	case KindHarmony:
		return &Harmony{fragmentOf(e, nil, nil)}, nil
	case KindFiguredBass:
		return &FiguredBass{fragmentOf(e, nil, nil)}, nil
	case KindPrint:
		return &Print{fragmentOf(e, nil, nil)}, nil
	case KindSound:
		return decodeSound(e)
	case KindBarline:
		return decodeBarline(e)
	case KindGrouping:
		return decodeGrouping(e)
	case KindLink:
		return decodeLink(e)
	case KindBookmark:
		return decodeBookmark(e)
	default:
		return nil, xmlschema.StructureError(xmlschema.CodeUnexpectedElement, e, e.Tag,
			"unexpected element %q", e.Tag)
	}
}

// cloneMusicData deep-copies md keeping its dynamic type. Nil stays nil.
func cloneMusicData(md MusicData, f xmlschema.Flags, c xmlschema.Container) MusicData {
	if md == nil {
		return nil
	}
	//nolint:forcetypeassert // every MusicData clones to its own type
	return md.CloneElement(f, c).(MusicData)
}

func (f Fragment) encodeTo(e *etree.Element) {
	f.encodeAttrs(e)
	f.encodeChildren(e)
}

func (Fragment) validate() error { return nil }

// Direction is a musical indication not attached to a specific note.
type Direction struct{ Fragment }

func (*Direction) Kind() Kind          { return KindDirection }
func (*Direction) ElementName() string { return KindDirection.String() }

// Clone returns a deep copy.
func (d *Direction) Clone() *Direction { return &Direction{d.Fragment.clone()} }

func (d *Direction) CloneElement(xmlschema.Flags, xmlschema.Container) xmlschema.Element {
	return d.Clone()
}

// Attributes carries key, time, clef, divisions and similar changes.
type Attributes struct{ Fragment }

func (*Attributes) Kind() Kind          { return KindAttributes }
func (*Attributes) ElementName() string { return KindAttributes.String() }

// Clone returns a deep copy.
func (a *Attributes) Clone() *Attributes { return &Attributes{a.Fragment.clone()} }

func (a *Attributes) CloneElement(xmlschema.Flags, xmlschema.Container) xmlschema.Element {
	return a.Clone()
}

// Divisions returns the divisions-per-quarter declared by this block.
func (a *Attributes) Divisions() (Divisions, bool) {
	raw, ok := a.ChildText("divisions")
	if !ok {
		return Divisions{}, false
	}
	d, err := ParsePositiveDivisions(raw)
	if err != nil {
		return Divisions{}, false
	}
	return d, true
}

// Harmony is a chord symbol.
type Harmony struct{ Fragment }

func (*Harmony) Kind() Kind          { return KindHarmony }
func (*Harmony) ElementName() string { return KindHarmony.String() }

// Clone returns a deep copy.
func (h *Harmony) Clone() *Harmony { return &Harmony{h.Fragment.clone()} }

func (h *Harmony) CloneElement(xmlschema.Flags, xmlschema.Container) xmlschema.Element {
	return h.Clone()
}

// FiguredBass is a figured-bass indication.
type FiguredBass struct{ Fragment }

func (*FiguredBass) Kind() Kind          { return KindFiguredBass }
func (*FiguredBass) ElementName() string { return KindFiguredBass.String() }

// Clone returns a deep copy.
func (b *FiguredBass) Clone() *FiguredBass { return &FiguredBass{b.Fragment.clone()} }

func (b *FiguredBass) CloneElement(xmlschema.Flags, xmlschema.Container) xmlschema.Element {
	return b.Clone()
}

// Print holds layout and page-break information.
type Print struct{ Fragment }

func (*Print) Kind() Kind          { return KindPrint }
func (*Print) ElementName() string { return KindPrint.String() }

// Clone returns a deep copy.
func (p *Print) Clone() *Print { return &Print{p.Fragment.clone()} }

func (p *Print) CloneElement(xmlschema.Flags, xmlschema.Container) xmlschema.Element {
	return p.Clone()
}

// NewPage reports whether the print element forces a page break.
func (p *Print) NewPage() bool {
	v, ok := p.Attr("new-page")
	return ok && v == string(Yes)
}
