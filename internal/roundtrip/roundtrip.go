// Package roundtrip checks that measures survive an encode/decode cycle
// unchanged.
package roundtrip

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	digest "github.com/opencontainers/go-digest"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/ndisidore/scorebind/pkg/musicxml"
	"github.com/ndisidore/scorebind/pkg/score"
	"github.com/ndisidore/scorebind/pkg/xmlschema"
)

// ErrMismatch is returned when a re-encoded measure differs from its source.
var ErrMismatch = errors.New("round trip mismatch")

// Result describes one checked measure.
type Result struct {
	Part   string
	Number string
	Want   digest.Digest // canonical source (or first encoding)
	Got    digest.Digest // canonical re-encoding
	Diff   string        // line diff, empty when the digests match
}

// OK reports whether the measure round-tripped unchanged.
func (r Result) OK() bool { return r.Want == r.Got }

// Err returns a wrapped ErrMismatch for a failed result, nil otherwise.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	if r.Part != "" {
		return fmt.Errorf("part %s measure %s: %w", r.Part, r.Number, ErrMismatch)
	}
	return fmt.Errorf("measure %s: %w", r.Number, ErrMismatch)
}

// CheckMeasure encodes m, decodes the result with f and encodes again. The
// reference is the measure's retained source element when it has one,
// otherwise the first encoding.
func CheckMeasure(ctx context.Context, m *musicxml.Measure, f xmlschema.Flags) (Result, error) {
	first := m.Element()
	ref := first
	if dom := m.DOM(); dom != nil {
		ref = dom
	}

	decoded, err := musicxml.DecodeMeasureContext(ctx, first, f&^xmlschema.FlagKeepDOM, nil)
	if err != nil {
		return Result{}, fmt.Errorf("decoding encoded measure %s: %w", m.Number(), err)
	}

	want := Canonical(ref)
	got := Canonical(decoded.Element())
	res := Result{
		Number: m.Number().String(),
		Want:   digest.FromString(want),
		Got:    digest.FromString(got),
	}
	if !res.OK() {
		res.Diff = LineDiff(want, got)
	}
	return res, nil
}

// Report collects the results of a score check.
type Report struct {
	Checked    int
	Mismatches []Result
}

// Err joins the mismatch errors in document order.
func (r Report) Err() error {
	errs := make([]error, 0, len(r.Mismatches))
	for _, m := range r.Mismatches {
		errs = append(errs, m.Err())
	}
	return errors.Join(errs...)
}

// CheckScore checks every measure of every part. fn, when non-nil, is
// called after each measure.
func CheckScore(ctx context.Context, s *score.Score, f xmlschema.Flags, fn func(Result)) (Report, error) {
	var rep Report
	for _, p := range s.Parts {
		for _, m := range p.Measures {
			if err := ctx.Err(); err != nil {
				return rep, err
			}
			res, err := CheckMeasure(ctx, m, f)
			if err != nil {
				return rep, fmt.Errorf("part %s: %w", p.ID, err)
			}
			res.Part = p.ID
			rep.Checked++
			if !res.OK() {
				rep.Mismatches = append(rep.Mismatches, res)
			}
			if fn != nil {
				fn(res)
			}
		}
	}
	return rep, nil
}

// Canonical serializes a copy of e with sorted attributes, no comments, no
// namespace declarations and two-space indentation.
func Canonical(e *etree.Element) string {
	c := e.Copy()
	normalize(c)
	doc := etree.NewDocument()
	doc.SetRoot(c)
	doc.Indent(2)
	s, _ := doc.WriteToString()
	return strings.TrimSpace(s) + "\n"
}

func normalize(e *etree.Element) {
	attrs := e.Attr[:0]
	for _, a := range e.Attr {
		if a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") {
			continue
		}
		attrs = append(attrs, a)
	}
	e.Attr = attrs
	e.SortAttrs()

	for i := len(e.Child) - 1; i >= 0; i-- {
		switch t := e.Child[i].(type) {
		case *etree.Comment, *etree.ProcInst:
			e.RemoveChildAt(i)
		case *etree.Element:
			normalize(t)
		}
	}
}

// LineDiff renders a line-oriented diff of want and got. Removed lines are
// prefixed with "- ", added lines with "+ ".
func LineDiff(want, got string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(want, got)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		default:
			prefix = "  "
		}
		for line := range strings.Lines(d.Text) {
			sb.WriteString(prefix)
			sb.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String()
}
