package musicxml

import (
	"context"
	"log/slog"

	"github.com/beevik/etree"

	"github.com/ndisidore/scorebind/pkg/slogctx"
	"github.com/ndisidore/scorebind/pkg/xmlschema"
)

// DecodeMeasure builds a Measure from a <measure> element. The element is
// only read; the result shares no memory with it.
func DecodeMeasure(e *etree.Element, f xmlschema.Flags, c xmlschema.Container) (*Measure, error) {
	return DecodeMeasureContext(context.Background(), e, f, c)
}

// DecodeMeasureContext is DecodeMeasure with a context carrying the logger
// used to report content skipped under FlagLax.
func DecodeMeasureContext(ctx context.Context, e *etree.Element, f xmlschema.Flags, c xmlschema.Container) (*Measure, error) {
	if e == nil {
		return nil, xmlschema.StructureError(xmlschema.CodeElementNotDeclared, nil, "measure",
			"no element to decode")
	}
	if e.FullTag() != "measure" {
		return nil, xmlschema.StructureError(xmlschema.CodeElementNotDeclared, e, e.FullTag(),
			"expected element %q, got %q", "measure", e.FullTag())
	}

	m := &Measure{container: c}
	if err := m.decodeAttrs(ctx, e, f); err != nil {
		return nil, err
	}
	if err := m.decodeContent(ctx, e, f); err != nil {
		return nil, err
	}
	if f.Has(xmlschema.FlagKeepDOM) {
		m.dom = e.Copy()
	}
	return m, nil
}

func (m *Measure) decodeAttrs(ctx context.Context, e *etree.Element, f xmlschema.Flags) error {
	raw, err := xmlschema.RequireAttr(e, "", "number")
	if err != nil {
		return err
	}
	m.number = xmlschema.NewToken(raw)

	if m.Implicit, err = xmlschema.OptionalAttr(e, "", "implicit", ParseYesNo); err != nil {
		return err
	}
	if m.NonControlling, err = xmlschema.OptionalAttr(e, "", "non-controlling", ParseYesNo); err != nil {
		return err
	}
	if m.Width, err = xmlschema.OptionalAttr(e, "", "width", ParseTenths); err != nil {
		return err
	}

	for _, a := range e.Attr {
		if a.Space == "" && _measureAttrs[a.Key] {
			continue
		}
		if xmlschema.IsNamespaceDecl(a) {
			continue
		}
		name := xmlschema.AttrName(a.Space, a.Key)
		if !f.Has(xmlschema.FlagLax) {
			return xmlschema.StructureError(xmlschema.CodeAttributeNotDeclared, e, name,
				"attribute %q is not allowed on measure %q", name, m.number)
		}
		slogctx.FromContext(ctx).DebugContext(ctx, "skipping undeclared attribute",
			slog.String("measure", m.number.String()),
			slog.String("attribute", name),
		)
	}
	return nil
}

var _measureAttrs = map[string]bool{
	"number":          true,
	"implicit":        true,
	"non-controlling": true,
	"width":           true,
}

func (m *Measure) decodeContent(ctx context.Context, e *etree.Element, f xmlschema.Flags) error {
	log := slogctx.FromContext(ctx)
	if text, ok := xmlschema.StrayText(e); ok {
		if !f.Has(xmlschema.FlagLax) {
			return &xmlschema.ValidationError{
				Code:    xmlschema.CodeTextInElementOnly,
				Path:    xmlschema.ElementPath(e),
				Value:   text,
				Message: "character data is not allowed in measure content",
			}
		}
		log.DebugContext(ctx, "skipping character data",
			slog.String("measure", m.number.String()),
		)
	}

	for _, child := range e.ChildElements() {
		kind, ok := ParseKind(child.FullTag())
		if !ok {
			if !f.Has(xmlschema.FlagLax) {
				return xmlschema.StructureError(xmlschema.CodeUnexpectedElement, child, child.FullTag(),
					"element %q is not allowed in measure %q", child.FullTag(), m.number)
			}
			log.DebugContext(ctx, "skipping undeclared element",
				slog.String("measure", m.number.String()),
				slog.String("element", child.FullTag()),
			)
			continue
		}
		md, err := decodeMusicData(kind, child)
		if err != nil {
			return err
		}
		m.MusicData = append(m.MusicData, md)
	}
	return nil
}
