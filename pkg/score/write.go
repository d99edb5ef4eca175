package score

import (
	"fmt"
	"io"
	"os"

	"github.com/beevik/etree"
)

const _partwiseDoctype = `DOCTYPE score-partwise PUBLIC "-//Recordare//DTD MusicXML 4.0 Partwise//EN" "http://www.musicxml.org/dtds/partwise.dtd"`

// WriteOpts configures document output.
type WriteOpts struct {
	// Indent is the number of spaces per nesting level; 0 writes the tree
	// without added whitespace.
	Indent int
	// OmitDoctype drops the partwise DOCTYPE declaration.
	OmitDoctype bool
}

// Document validates the score and encodes it into a new document.
func (s *Score) Document(opts WriteOpts) (*etree.Document, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="no"`)
	if !opts.OmitDoctype {
		doc.CreateDirective(_partwiseDoctype)
	}
	root := doc.CreateElement(RootPartwise)
	if s.Version != "" {
		root.CreateAttr("version", s.Version)
	}
	for _, h := range s.Header {
		root.AddChild(h.Copy())
	}
	for _, p := range s.Parts {
		pe := root.CreateElement("part")
		pe.CreateAttr("id", p.ID)
		for _, m := range p.Measures {
			m.EncodeTo(pe.CreateElement(m.ElementName()))
		}
	}
	if opts.Indent > 0 {
		doc.Indent(opts.Indent)
	}
	return doc, nil
}

// Encode writes the score to w.
func (s *Score) Encode(w io.Writer, opts WriteOpts) error {
	doc, err := s.Document(opts)
	if err != nil {
		return err
	}
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("writing score: %w", err)
	}
	return nil
}

// WriteFile writes the score to path, replacing any existing file.
func (s *Score) WriteFile(path string, opts WriteOpts) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()
	return s.Encode(f, opts)
}
