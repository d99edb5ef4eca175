package score

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/ndisidore/scorebind/pkg/musicxml"
	"github.com/ndisidore/scorebind/pkg/slogctx"
	"github.com/ndisidore/scorebind/pkg/xmlschema"
)

// Reader decodes partwise documents.
type Reader struct {
	// Flags are passed to every measure decode.
	Flags xmlschema.Flags
}

// ReadFile reads the document at path.
func (r Reader) ReadFile(ctx context.Context, path string) (*Score, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return r.Read(ctx, f, path)
}

// Read decodes a document from rd. name labels errors and log records.
func (r Reader) Read(ctx context.Context, rd io.Reader, name string) (*Score, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if _, err := doc.ReadFrom(rd); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	s, err := r.Decode(ctx, doc.Root())
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	slogctx.FromContext(ctx).DebugContext(ctx, "read score",
		slog.String("file", name),
		slog.Int("parts", len(s.Parts)),
		slog.Int("measures", s.MeasureCount()),
	)
	return s, nil
}

// Decode builds a Score from a <score-partwise> element.
func (r Reader) Decode(ctx context.Context, root *etree.Element) (*Score, error) {
	if root == nil {
		return nil, ErrEmptyDocument
	}
	switch root.FullTag() {
	case RootPartwise:
	case RootTimewise:
		return nil, fmt.Errorf("%w: %s (convert to partwise first)", ErrUnsupportedRoot, root.FullTag())
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRoot, root.FullTag())
	}

	s := &Score{}
	s.Version, _ = xmlschema.LookupAttr(root, "", "version")
	for _, child := range root.ChildElements() {
		if child.FullTag() != "part" {
			s.Header = append(s.Header, child.Copy())
			continue
		}
		p, err := r.decodePart(ctx, child)
		if err != nil {
			return nil, err
		}
		s.Parts = append(s.Parts, p)
	}
	return s, nil
}

func (r Reader) decodePart(ctx context.Context, e *etree.Element) (*Part, error) {
	id, err := xmlschema.RequireAttr(e, "", "id")
	if err != nil {
		return nil, err
	}
	p := &Part{ID: id}
	ctx = slogctx.With(ctx, slog.String("part", id))
	for _, child := range e.ChildElements() {
		if child.FullTag() != "measure" {
			if !r.Flags.Has(xmlschema.FlagLax) {
				return nil, xmlschema.StructureError(xmlschema.CodeUnexpectedElement, child, child.FullTag(),
					"element %q is not allowed in part %q", child.FullTag(), id)
			}
			slogctx.FromContext(ctx).DebugContext(ctx, "skipping undeclared element",
				slog.String("element", child.FullTag()),
			)
			continue
		}
		m, err := musicxml.DecodeMeasureContext(ctx, child, r.Flags, p)
		if err != nil {
			return nil, fmt.Errorf("part %q: %w", id, err)
		}
		p.Measures = append(p.Measures, m)
	}
	return p, nil
}

// charsetReader decodes non-UTF-8 input using the IANA charset registry.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCharset, label)
	}
	return enc.NewDecoder().Reader(input), nil
}
