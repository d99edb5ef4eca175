// Package stats tallies measures and music-data kinds across scores.
package stats

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/ndisidore/scorebind/pkg/musicxml"
	"github.com/ndisidore/scorebind/pkg/score"
)

// FileReport summarizes one score file.
type FileReport struct {
	File           string
	Parts          int
	Measures       int
	Implicit       int // measures with implicit="yes"
	NonControlling int // measures with non-controlling="yes"
	Kinds          map[musicxml.Kind]int
}

// Report aggregates statistics across files.
type Report struct {
	Files []FileReport
}

// Totals sums every file into one FileReport with an empty name.
func (r Report) Totals() FileReport {
	t := FileReport{Kinds: make(map[musicxml.Kind]int)}
	for _, f := range r.Files {
		t.Parts += f.Parts
		t.Measures += f.Measures
		t.Implicit += f.Implicit
		t.NonControlling += f.NonControlling
		for k, n := range f.Kinds {
			t.Kinds[k] += n
		}
	}
	return t
}

// Collector accumulates per-file statistics. It is safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	order []string // file names in first-observed order
	files map[string]FileReport
}

// NewCollector returns a new Collector ready for use.
func NewCollector() *Collector {
	return &Collector{files: make(map[string]FileReport)}
}

// Observe records the statistics of s under file. Observing the same file
// again replaces its earlier entry. A nil score is a no-op.
func (c *Collector) Observe(file string, s *score.Score) {
	if s == nil {
		return
	}
	fr := summarize(file, s)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.files[file]; !ok {
		c.order = append(c.order, file)
	}
	c.files[file] = fr
}

func summarize(file string, s *score.Score) FileReport {
	fr := FileReport{
		File:  file,
		Parts: len(s.Parts),
		Kinds: make(map[musicxml.Kind]int),
	}
	for _, p := range s.Parts {
		fr.Measures += len(p.Measures)
		fr.Implicit += lo.CountBy(p.Measures, func(m *musicxml.Measure) bool {
			return m.Implicit.GetOr(musicxml.No).Bool()
		})
		fr.NonControlling += lo.CountBy(p.Measures, func(m *musicxml.Measure) bool {
			return m.NonControlling.GetOr(musicxml.No).Bool()
		})
		for _, m := range p.Measures {
			for k, n := range m.KindCounts() {
				if n > 0 {
					fr.Kinds[k] += n
				}
			}
		}
	}
	return fr
}

// Report returns the statistics in observation order. Call after every
// file has been observed.
func (c *Collector) Report() Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Report{Files: lo.Map(c.order, func(name string, _ int) FileReport {
		return c.files[name]
	})}
}

// PrintReport writes a human-readable summary to w.
func PrintReport(w io.Writer, r Report) {
	_, _ = fmt.Fprintln(w, "Measure summary:")
	for _, f := range r.Files {
		_, _ = fmt.Fprintf(w, "  %-32s %2d parts  %4d measures  %3d implicit\n",
			f.File, f.Parts, f.Measures, f.Implicit)
	}
	t := r.Totals()
	_, _ = fmt.Fprintf(w, "  Overall: %d files, %d parts, %d measures, %d implicit, %d non-controlling\n",
		len(r.Files), t.Parts, t.Measures, t.Implicit, t.NonControlling)

	kinds := lo.Filter(musicxml.Kinds(), func(k musicxml.Kind, _ int) bool {
		return t.Kinds[k] > 0
	})
	if len(kinds) == 0 {
		return
	}
	parts := lo.Map(kinds, func(k musicxml.Kind, _ int) string {
		return fmt.Sprintf("%s=%d", k, t.Kinds[k])
	})
	_, _ = fmt.Fprintf(w, "  Music data: %s\n", strings.Join(parts, " "))
}
