// Package query flattens scores into measure rows that can be filtered with
// expressions and rendered as text, JSON or YAML.
package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/goccy/go-yaml"
	"github.com/samber/lo"

	"github.com/ndisidore/scorebind/pkg/musicxml"
	"github.com/ndisidore/scorebind/pkg/score"
)

// Sentinel errors for query compilation and rendering.
var (
	ErrUnknownFormat = errors.New("unknown output format")
	ErrCompile       = errors.New("compiling filter")
	ErrEval          = errors.New("evaluating filter")
)

// Output formats accepted by Render.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the accepted output formats.
var Formats = []string{FormatText, FormatJSON, FormatYAML}

// Row is one measure of one part.
type Row struct {
	File           string   `expr:"file" json:"file,omitempty" yaml:"file,omitempty"`
	Part           string   `expr:"part" json:"part" yaml:"part"`
	Index          int      `expr:"index" json:"index" yaml:"index"` // 1-based position within the part
	Number         string   `expr:"number" json:"number" yaml:"number"`
	Implicit       bool     `expr:"implicit" json:"implicit" yaml:"implicit"`
	NonControlling bool     `expr:"non_controlling" json:"non_controlling" yaml:"non_controlling"`
	HasWidth       bool     `expr:"has_width" json:"-" yaml:"-"`
	Width          float64  `expr:"width" json:"width,omitempty" yaml:"width,omitempty"`
	Children       int      `expr:"children" json:"children" yaml:"children"`
	Notes          int      `expr:"notes" json:"notes" yaml:"notes"`
	Duration       float64  `expr:"duration" json:"duration" yaml:"duration"`
	Kinds          []string `expr:"kinds" json:"kinds" yaml:"kinds"` // distinct child kinds in schema order
}

// Rows flattens every measure of s into rows, tagging each with file.
func Rows(file string, s *score.Score) []Row {
	var rows []Row
	for _, p := range s.Parts {
		for i, m := range p.Measures {
			rows = append(rows, rowOf(file, p.ID, i+1, m))
		}
	}
	return rows
}

func rowOf(file, part string, index int, m *musicxml.Measure) Row {
	counts := m.KindCounts()
	r := Row{
		File:           file,
		Part:           part,
		Index:          index,
		Number:         m.Number().String(),
		Implicit:       m.Implicit.GetOr(musicxml.No).Bool(),
		NonControlling: m.NonControlling.GetOr(musicxml.No).Bool(),
		Children:       len(m.MusicData),
		Notes:          counts[musicxml.KindNote],
		Duration:       m.Duration().Float64(),
		Kinds: lo.FilterMap(musicxml.Kinds(), func(k musicxml.Kind, _ int) (string, bool) {
			return k.String(), counts[k] > 0
		}),
	}
	if w, ok := m.Width.Value(); ok {
		r.HasWidth = true
		r.Width = w.Float64()
	}
	return r
}

// Predicate is a compiled boolean filter over rows.
type Predicate struct {
	src  string
	prog *vm.Program
}

// Compile compiles a boolean expression over Row fields, e.g.
// `implicit && notes == 0` or `"barline" in kinds`. An empty source yields a
// nil predicate that matches every row.
func Compile(src string) (*Predicate, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, nil
	}
	prog, err := expr.Compile(src, expr.Env(Row{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrCompile, src, err)
	}
	return &Predicate{src: src, prog: prog}, nil
}

// String returns the source expression.
func (p *Predicate) String() string {
	if p == nil {
		return ""
	}
	return p.src
}

// Match evaluates the predicate against r. A nil predicate matches.
func (p *Predicate) Match(r Row) (bool, error) {
	if p == nil {
		return true, nil
	}
	out, err := expr.Run(p.prog, r)
	if err != nil {
		return false, fmt.Errorf("%w %q: %w", ErrEval, p.src, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// Filter returns the rows matching p, in order.
func (p *Predicate) Filter(rows []Row) ([]Row, error) {
	if p == nil {
		return rows, nil
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		ok, err := p.Match(r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Render writes rows to w in the given format.
func Render(w io.Writer, rows []Row, format string) error {
	switch format {
	case FormatText:
		return renderText(w, rows)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if rows == nil {
			rows = []Row{}
		}
		return enc.Encode(rows)
	case FormatYAML:
		if len(rows) == 0 {
			_, err := io.WriteString(w, "[]\n")
			return err
		}
		out, err := yaml.Marshal(rows)
		if err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	default:
		return fmt.Errorf("%q: %w", format, ErrUnknownFormat)
	}
}

func renderText(w io.Writer, rows []Row) error {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("FILE", "PART", "MEASURE", "IMPLICIT", "WIDTH", "CHILDREN", "DURATION", "KINDS").
		Rows(lo.Map(rows, func(r Row, _ int) []string {
			width := "-"
			if r.HasWidth {
				width = strconv.FormatFloat(r.Width, 'f', -1, 64)
			}
			return []string{
				r.File,
				r.Part,
				r.Number,
				strconv.FormatBool(r.Implicit),
				width,
				strconv.Itoa(r.Children),
				strconv.FormatFloat(r.Duration, 'f', -1, 64),
				strings.Join(r.Kinds, ","),
			}
		})...)
	_, err := fmt.Fprintln(w, t.String())
	return err
}
