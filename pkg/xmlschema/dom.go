package xmlschema

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// ElementPath returns a positional path for e such as
// /score-partwise/part[1]/measure[3]. The document element carries no index.
func ElementPath(e *etree.Element) string {
	if e == nil {
		return ""
	}
	var segs []string
	for cur := e; cur != nil && cur.Tag != ""; cur = cur.Parent() {
		parent := cur.Parent()
		if parent == nil || parent.Tag == "" {
			segs = append(segs, cur.FullTag())
			break
		}
		pos := 0
		for _, sib := range parent.ChildElements() {
			if sib.FullTag() == cur.FullTag() {
				pos++
			}
			if sib == cur {
				break
			}
		}
		segs = append(segs, cur.FullTag()+"["+strconv.Itoa(pos)+"]")
	}
	var b strings.Builder
	for i := len(segs) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(segs[i])
	}
	return b.String()
}

// AttrName joins an optional namespace prefix and a local name.
func AttrName(space, key string) string {
	if space == "" {
		return key
	}
	return space + ":" + key
}

// IsNamespaceDecl reports whether a is an xmlns or xmlns:* declaration.
func IsNamespaceDecl(a etree.Attr) bool {
	return a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns")
}

// LookupAttr returns the value of the attribute space:key on e.
func LookupAttr(e *etree.Element, space, key string) (string, bool) {
	for _, a := range e.Attr {
		if a.Space == space && a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// RequireAttr returns the value of a required attribute or a structural
// error naming it.
func RequireAttr(e *etree.Element, space, key string) (string, error) {
	v, ok := LookupAttr(e, space, key)
	if !ok {
		name := AttrName(space, key)
		return "", StructureError(CodeRequiredAttributeMissing, e, name,
			"element %q is missing required attribute %q", e.Tag, name)
	}
	return v, nil
}

// OptionalAttr converts an optional attribute with parse. An absent
// attribute yields an absent Optional; a conversion failure is reported as
// a ConversionError.
func OptionalAttr[T any](e *etree.Element, space, key string, parse func(string) (T, error)) (Optional[T], error) {
	raw, ok := LookupAttr(e, space, key)
	if !ok {
		return Optional[T]{}, nil
	}
	v, err := parse(raw)
	if err != nil {
		return Optional[T]{}, ConversionError(e, AttrName(space, key), raw, err)
	}
	return Some(v), nil
}

// SetOptionalAttr writes o as space:key on e when present and leaves e
// untouched otherwise.
func SetOptionalAttr[T any](e *etree.Element, space, key string, o Optional[T], format func(T) string) {
	if v, ok := o.Value(); ok {
		e.CreateAttr(AttrName(space, key), format(v))
	}
}

// StrayText returns the first non-whitespace character data directly
// inside e.
func StrayText(e *etree.Element) (string, bool) {
	for _, tok := range e.Child {
		cd, ok := tok.(*etree.CharData)
		if !ok {
			continue
		}
		if s := trimXMLSpace(cd.Data); s != "" {
			return s, true
		}
	}
	return "", false
}

// ParseInt parses an xs:integer-like attribute value.
func ParseInt(s string) (int, error) {
	return strconv.Atoi(trimXMLSpace(s))
}

// ParsePositiveInt parses an xs:positiveInteger value.
func ParsePositiveInt(s string) (int, error) {
	n, err := ParseInt(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

// ParseToken adapts NewToken to the OptionalAttr parse signature.
func ParseToken(s string) (Token, error) {
	return NewToken(s), nil
}
