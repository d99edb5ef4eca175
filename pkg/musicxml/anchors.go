package musicxml

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/ndisidore/scorebind/pkg/xmlschema"
)

// Bookmark is a named anchor for navigation.
type Bookmark struct {
	ID       string
	Name     xmlschema.Optional[string]
	Element  xmlschema.Optional[xmlschema.Token]
	Position xmlschema.Optional[int]
	Fragment
}

// NewBookmark returns a bookmark with the given id.
func NewBookmark(id string) *Bookmark {
	return &Bookmark{ID: id}
}

func (*Bookmark) Kind() Kind          { return KindBookmark }
func (*Bookmark) ElementName() string { return KindBookmark.String() }

// Clone returns a deep copy.
func (b *Bookmark) Clone() *Bookmark {
	return &Bookmark{
		ID:       b.ID,
		Name:     b.Name,
		Element:  b.Element,
		Position: b.Position,
		Fragment: b.Fragment.clone(),
	}
}

func (b *Bookmark) CloneElement(xmlschema.Flags, xmlschema.Container) xmlschema.Element {
	return b.Clone()
}

func (b *Bookmark) encodeTo(e *etree.Element) {
	e.CreateAttr("id", b.ID)
	xmlschema.SetOptionalAttr(e, "", "name", b.Name, identity)
	xmlschema.SetOptionalAttr(e, "", "element", b.Element, xmlschema.Token.String)
	xmlschema.SetOptionalAttr(e, "", "position", b.Position, strconv.Itoa)
	b.encodeAttrs(e)
	b.encodeChildren(e)
}

func decodeBookmark(e *etree.Element) (*Bookmark, error) {
	id, err := xmlschema.RequireAttr(e, "", "id")
	if err != nil {
		return nil, err
	}
	b := &Bookmark{
		ID:       id,
		Fragment: fragmentOf(e, claimAttrs("id", "name", "element", "position"), nil),
	}
	if b.Name, err = xmlschema.OptionalAttr(e, "", "name", parseString); err != nil {
		return nil, err
	}
	if b.Element, err = xmlschema.OptionalAttr(e, "", "element", xmlschema.ParseToken); err != nil {
		return nil, err
	}
	if b.Position, err = xmlschema.OptionalAttr(e, "", "position", xmlschema.ParsePositiveInt); err != nil {
		return nil, err
	}
	return b, nil
}

// Link is an XLink to another document or location.
type Link struct {
	Href     string
	Name     xmlschema.Optional[string]
	Element  xmlschema.Optional[xmlschema.Token]
	Position xmlschema.Optional[int]
	Fragment
}

// NewLink returns a link to href.
func NewLink(href string) *Link {
	return &Link{Href: href}
}

func (*Link) Kind() Kind          { return KindLink }
func (*Link) ElementName() string { return KindLink.String() }

// Clone returns a deep copy.
func (l *Link) Clone() *Link {
	return &Link{
		Href:     l.Href,
		Name:     l.Name,
		Element:  l.Element,
		Position: l.Position,
		Fragment: l.Fragment.clone(),
	}
}

func (l *Link) CloneElement(xmlschema.Flags, xmlschema.Container) xmlschema.Element {
	return l.Clone()
}

func (l *Link) encodeTo(e *etree.Element) {
	e.CreateAttr("xlink:href", l.Href)
	xmlschema.SetOptionalAttr(e, "", "name", l.Name, identity)
	xmlschema.SetOptionalAttr(e, "", "element", l.Element, xmlschema.Token.String)
	xmlschema.SetOptionalAttr(e, "", "position", l.Position, strconv.Itoa)
	l.encodeAttrs(e)
	l.encodeChildren(e)
}

func decodeLink(e *etree.Element) (*Link, error) {
	href, err := xmlschema.RequireAttr(e, "xlink", "href")
	if err != nil {
		return nil, err
	}
	l := &Link{
		Href:     href,
		Fragment: fragmentOf(e, claimAttrs("xlink:href", "name", "element", "position"), nil),
	}
	if l.Name, err = xmlschema.OptionalAttr(e, "", "name", parseString); err != nil {
		return nil, err
	}
	if l.Element, err = xmlschema.OptionalAttr(e, "", "element", xmlschema.ParseToken); err != nil {
		return nil, err
	}
	if l.Position, err = xmlschema.OptionalAttr(e, "", "position", xmlschema.ParsePositiveInt); err != nil {
		return nil, err
	}
	return l, nil
}

// Grouping marks the start or end of an analytic group of notes.
type Grouping struct {
	Type     StartStopSingle
	Number   xmlschema.Optional[xmlschema.Token]
	MemberOf xmlschema.Optional[xmlschema.Token]
	Fragment
}

// NewGrouping returns a grouping of the given type.
func NewGrouping(t StartStopSingle) *Grouping {
	return &Grouping{Type: t}
}

func (*Grouping) Kind() Kind          { return KindGrouping }
func (*Grouping) ElementName() string { return KindGrouping.String() }

// Clone returns a deep copy.
func (g *Grouping) Clone() *Grouping {
	return &Grouping{
		Type:     g.Type,
		Number:   g.Number,
		MemberOf: g.MemberOf,
		Fragment: g.Fragment.clone(),
	}
}

func (g *Grouping) CloneElement(xmlschema.Flags, xmlschema.Container) xmlschema.Element {
	return g.Clone()
}

func (g *Grouping) encodeTo(e *etree.Element) {
	e.CreateAttr("type", g.Type.String())
	xmlschema.SetOptionalAttr(e, "", "number", g.Number, xmlschema.Token.String)
	xmlschema.SetOptionalAttr(e, "", "member-of", g.MemberOf, xmlschema.Token.String)
	g.encodeAttrs(e)
	g.encodeChildren(e)
}

func decodeGrouping(e *etree.Element) (*Grouping, error) {
	raw, err := xmlschema.RequireAttr(e, "", "type")
	if err != nil {
		return nil, err
	}
	t, err := ParseStartStopSingle(raw)
	if err != nil {
		return nil, xmlschema.ConversionError(e, "type", raw, err)
	}
	g := &Grouping{
		Type:     t,
		Fragment: fragmentOf(e, claimAttrs("type", "number", "member-of"), nil),
	}
	if g.Number, err = xmlschema.OptionalAttr(e, "", "number", xmlschema.ParseToken); err != nil {
		return nil, err
	}
	if g.MemberOf, err = xmlschema.OptionalAttr(e, "", "member-of", xmlschema.ParseToken); err != nil {
		return nil, err
	}
	return g, nil
}

func identity(s string) string { return s }

func parseString(s string) (string, error) { return s, nil }
