package musicxml

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/ndisidore/scorebind/pkg/xmlschema"
)

// Fragment carries the attributes and child elements of a music-data element
// that have no typed field, so the element round-trips unchanged. Elements
// in a Fragment are owned copies, detached from any document.
type Fragment struct {
	Attrs    []etree.Attr
	Children []*etree.Element
}

// fragmentOf copies the attributes and child elements of e that the skip
// functions do not claim. A nil skip function claims nothing.
func fragmentOf(e *etree.Element, skipAttr func(etree.Attr) bool, skipChild func(*etree.Element) bool) Fragment {
	var f Fragment
	for _, a := range e.Attr {
		if skipAttr != nil && skipAttr(a) {
			continue
		}
		f.Attrs = append(f.Attrs, etree.Attr{Space: a.Space, Key: a.Key, Value: a.Value})
	}
	for _, c := range e.ChildElements() {
		if skipChild != nil && skipChild(c) {
			continue
		}
		f.Children = append(f.Children, c.Copy())
	}
	return f
}

// clone returns a deep copy.
func (f Fragment) clone() Fragment {
	out := Fragment{}
	if f.Attrs != nil {
		out.Attrs = make([]etree.Attr, len(f.Attrs))
		for i, a := range f.Attrs {
			out.Attrs[i] = etree.Attr{Space: a.Space, Key: a.Key, Value: a.Value}
		}
	}
	if f.Children != nil {
		out.Children = make([]*etree.Element, len(f.Children))
		for i, c := range f.Children {
			out.Children[i] = c.Copy()
		}
	}
	return out
}

// Attr returns the value of the retained attribute with the given
// (optionally prefixed) name.
func (f Fragment) Attr(name string) (string, bool) {
	for _, a := range f.Attrs {
		if xmlschema.AttrName(a.Space, a.Key) == name {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first retained child element with the given tag.
func (f Fragment) Child(tag string) *etree.Element {
	for _, c := range f.Children {
		if c.FullTag() == tag {
			return c
		}
	}
	return nil
}

// ChildText returns the trimmed text of the first child with the given tag.
func (f Fragment) ChildText(tag string) (string, bool) {
	c := f.Child(tag)
	if c == nil {
		return "", false
	}
	return strings.TrimSpace(c.Text()), true
}

func (f Fragment) encodeAttrs(e *etree.Element) {
	for _, a := range f.Attrs {
		e.CreateAttr(xmlschema.AttrName(a.Space, a.Key), a.Value)
	}
}

func (f Fragment) encodeChildren(e *etree.Element) {
	for _, c := range f.Children {
		e.AddChild(c.Copy())
	}
}
