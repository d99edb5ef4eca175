package musicxml

import (
	"strconv"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndisidore/scorebind/pkg/xmlschema"
)

// measureSeed is the fuzzed input used to build a measure.
type measureSeed struct {
	Number         string
	Implicit       *bool
	NonControlling *bool
	Width          *uint16
	Cursor         []cursorSeed
}

type cursorSeed struct {
	Forward  bool
	Duration uint8
	Staff    *uint8
}

func (s measureSeed) build() *Measure {
	m := NewMeasure(xmlschema.NewToken(s.Number))
	if s.Implicit != nil {
		m.Implicit.Set(YesNoOf(*s.Implicit))
	}
	if s.NonControlling != nil {
		m.NonControlling.Set(YesNoOf(*s.NonControlling))
	}
	if s.Width != nil {
		m.Width.Set(TenthsOf(int64(*s.Width)))
	}
	for _, c := range s.Cursor {
		d := DivisionsOf(int64(c.Duration) + 1)
		if !c.Forward {
			m.Append(NewBackup(d))
			continue
		}
		fw := NewForward(d)
		if c.Staff != nil {
			fw.Staff.Set(int(*c.Staff) + 1)
		}
		m.Append(fw)
	}
	return m
}

func newSeedFuzzer() *fuzz.Fuzzer {
	return fuzz.New().NilChance(0.3).NumElements(0, 6).Funcs(
		func(s *string, c fuzz.Continue) {
			*s = strconv.Itoa(c.Intn(500)+1) + []string{"", "a", "X"}[c.Intn(3)]
		},
	)
}

func TestRoundTripProperty(t *testing.T) {
	t.Parallel()

	f := newSeedFuzzer()
	for range 200 {
		var seed measureSeed
		f.Fuzz(&seed)

		m := seed.build()
		require.NoError(t, m.Validate())
		want := render(t, m.Element())

		back, err := DecodeMeasure(m.Element(), 0, nil)
		require.NoError(t, err, want)
		assert.Equal(t, want, render(t, back.Element()))
		assert.Equal(t, kindsOf(m), kindsOf(back))
		assert.Equal(t, m.Implicit.Present(), back.Implicit.Present())
		assert.Equal(t, m.Width.Present(), back.Width.Present())
	}
}

func TestCloneProperty(t *testing.T) {
	t.Parallel()

	f := newSeedFuzzer()
	for range 200 {
		var seed measureSeed
		f.Fuzz(&seed)

		m := seed.build()
		want := render(t, m.Element())
		cp := m.Clone()
		assert.Equal(t, want, render(t, cp.Element()))

		cp.SetNumber(cp.Number() + "-copy")
		cp.Width.Reset()
		for _, md := range cp.MusicData {
			switch v := md.(type) {
			case *Backup:
				v.Duration = DivisionsOf(1000)
			case *Forward:
				v.Staff.Reset()
			}
		}
		assert.Equal(t, want, render(t, m.Element()))
	}
}
