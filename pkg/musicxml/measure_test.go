package musicxml

import (
	"errors"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndisidore/scorebind/pkg/xmlschema"
)

func TestNewMeasureEncoding(t *testing.T) {
	t.Parallel()

	m := NewMeasure("1")
	e := m.Element()
	assert.Equal(t, "measure", e.Tag)
	require.Len(t, e.Attr, 1)
	assert.Equal(t, "number", e.Attr[0].Key)
	assert.Equal(t, "1", e.Attr[0].Value)
	assert.Empty(t, e.ChildElements())

	m.Width.Set(TenthsOf(120))
	e = m.Element()
	require.Len(t, e.Attr, 2)
	assert.Equal(t, "number", e.Attr[0].Key)
	assert.Equal(t, "width", e.Attr[1].Key)
	assert.Equal(t, "120", e.Attr[1].Value)
	assert.Empty(t, e.ChildElements())
}

func TestEncodeAttributeOrder(t *testing.T) {
	t.Parallel()

	m := NewMeasure("7a")
	m.Width.Set(TenthsOf(200))
	m.NonControlling.Set(Yes)
	m.Implicit.Set(No)

	got := render(t, m.Element())
	assert.Equal(t, `<measure number="7a" implicit="no" non-controlling="yes" width="200"/>`, got)
}

func TestEncodeToExistingElement(t *testing.T) {
	t.Parallel()

	doc := etree.NewDocument()
	part := doc.CreateElement("part")
	m := NewMeasure("2")
	m.Append(NewBackup(DivisionsOf(4)))
	m.EncodeTo(part.CreateElement("measure"))

	got := render(t, part)
	assert.Equal(t, `<part><measure number="2"><backup><duration>4</duration></backup></measure></part>`, got)
}

func TestDecodeMeasure(t *testing.T) {
	t.Parallel()

	m, err := DecodeMeasure(parseElement(t, _fullMeasure), 0, nil)
	require.NoError(t, err)

	assert.Equal(t, xmlschema.Token("3"), m.Number())
	assert.Equal(t, Yes, m.Implicit.Get())
	assert.Equal(t, No, m.NonControlling.Get())
	assert.Equal(t, "183.5", m.Width.Get().String())
	assert.Equal(t, _fullKinds, kindsOf(m))
	assert.Nil(t, m.DOM())

	t.Run("typed children", func(t *testing.T) {
		t.Parallel()

		backup, ok := m.MusicData[8].(*Backup)
		require.True(t, ok)
		assert.Equal(t, "12", backup.Duration.String())

		fw, ok := m.MusicData[9].(*Forward)
		require.True(t, ok)
		assert.Equal(t, "4", fw.Duration.String())
		assert.Equal(t, "2", fw.Voice.Get())
		assert.Equal(t, 1, fw.Staff.Get())

		sound, ok := m.MusicData[3].(*Sound)
		require.True(t, ok)
		assert.Equal(t, "96", sound.Tempo.Get().String())
		assert.Equal(t, "80.5", sound.Dynamics.Get().String())

		grouping, ok := m.MusicData[11].(*Grouping)
		require.True(t, ok)
		assert.Equal(t, Start, grouping.Type)
		assert.Equal(t, xmlschema.Token("2"), grouping.Number.Get())
		assert.Equal(t, xmlschema.Token("a"), grouping.MemberOf.Get())
		require.Len(t, grouping.Children, 1)

		link, ok := m.MusicData[12].(*Link)
		require.True(t, ok)
		assert.Equal(t, "other.musicxml", link.Href)
		assert.Equal(t, "next", link.Name.Get())
		assert.Equal(t, 2, link.Position.Get())
		assert.False(t, link.Element.Present())

		bookmark, ok := m.MusicData[13].(*Bookmark)
		require.True(t, ok)
		assert.Equal(t, "b1", bookmark.ID)
		assert.Equal(t, "coda", bookmark.Name.Get())
		assert.Equal(t, xmlschema.Token("note"), bookmark.Element.Get())

		barline, ok := m.MusicData[14].(*Barline)
		require.True(t, ok)
		assert.Equal(t, Right, barline.EffectiveLocation())

		p, ok := m.MusicData[0].(*Print)
		require.True(t, ok)
		assert.True(t, p.NewPage())

		attrs, ok := m.MusicData[1].(*Attributes)
		require.True(t, ok)
		div, ok := attrs.Divisions()
		require.True(t, ok)
		assert.Equal(t, "4", div.String())
	})

	t.Run("notes", func(t *testing.T) {
		t.Parallel()

		first, ok := m.MusicData[5].(*Note)
		require.True(t, ok)
		d, ok := first.Duration()
		require.True(t, ok)
		assert.Equal(t, "4", d.String())
		assert.False(t, first.IsRest())
		assert.False(t, first.IsChord())
		voice, ok := first.Voice()
		require.True(t, ok)
		assert.Equal(t, "1", voice)

		chord, ok := m.MusicData[6].(*Note)
		require.True(t, ok)
		assert.True(t, chord.IsChord())

		rest, ok := m.MusicData[7].(*Note)
		require.True(t, ok)
		assert.True(t, rest.IsRest())
	})
}

func TestDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	m, err := DecodeMeasure(parseElement(t, _fullMeasure), 0, nil)
	require.NoError(t, err)
	first := render(t, m.Element())
	assert.Equal(t, _fullMeasure, first)

	again, err := DecodeMeasure(m.Element(), 0, nil)
	require.NoError(t, err)
	assert.Equal(t, first, render(t, again.Element()))
	assert.Equal(t, kindsOf(m), kindsOf(again))
}

func TestDecodeNumberIsToken(t *testing.T) {
	t.Parallel()

	m, err := DecodeMeasure(parseElement(t, `<measure number="  12a "/>`), 0, nil)
	require.NoError(t, err)
	assert.Equal(t, xmlschema.Token("12a"), m.Number())
	assert.False(t, m.Implicit.Present())
	assert.False(t, m.NonControlling.Present())
	assert.False(t, m.Width.Present())
	assert.Empty(t, m.MusicData)
}

func TestDecodeMeasureErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantClass error
		wantCode  xmlschema.Code
		wantName  string
		wantCause error
	}{
		{
			name:      "missing number",
			input:     `<measure width="10"/>`,
			wantClass: xmlschema.ErrStructure,
			wantCode:  xmlschema.CodeRequiredAttributeMissing,
			wantName:  "number",
		},
		{
			name:      "wrong element",
			input:     `<note number="1"/>`,
			wantClass: xmlschema.ErrStructure,
			wantCode:  xmlschema.CodeElementNotDeclared,
			wantName:  "note",
		},
		{
			name:      "implicit not yes-no",
			input:     `<measure number="1" implicit="maybe"/>`,
			wantClass: xmlschema.ErrConversion,
			wantCode:  xmlschema.CodeDatatypeInvalid,
			wantName:  "implicit",
			wantCause: ErrNotInEnumeration,
		},
		{
			name:      "non-controlling not yes-no",
			input:     `<measure number="1" non-controlling="true"/>`,
			wantClass: xmlschema.ErrConversion,
			wantCode:  xmlschema.CodeDatatypeInvalid,
			wantName:  "non-controlling",
			wantCause: ErrNotInEnumeration,
		},
		{
			name:      "width not decimal",
			input:     `<measure number="1" width="wide"/>`,
			wantClass: xmlschema.ErrConversion,
			wantCode:  xmlschema.CodeDatatypeInvalid,
			wantName:  "width",
			wantCause: xmlschema.ErrInvalidDecimal,
		},
		{
			name:      "width with exponent",
			input:     `<measure number="1" width="1e3"/>`,
			wantClass: xmlschema.ErrConversion,
			wantCode:  xmlschema.CodeDatatypeInvalid,
			wantName:  "width",
			wantCause: xmlschema.ErrInvalidDecimal,
		},
		{
			name:      "undeclared attribute",
			input:     `<measure number="1" color="red"/>`,
			wantClass: xmlschema.ErrStructure,
			wantCode:  xmlschema.CodeAttributeNotDeclared,
			wantName:  "color",
		},
		{
			name:      "undeclared child",
			input:     `<measure number="1"><note><duration>1</duration></note><lyric/></measure>`,
			wantClass: xmlschema.ErrStructure,
			wantCode:  xmlschema.CodeUnexpectedElement,
			wantName:  "lyric",
		},
		{
			name:      "stray text",
			input:     `<measure number="1">oops<note/></measure>`,
			wantClass: xmlschema.ErrStructure,
			wantCode:  xmlschema.CodeTextInElementOnly,
		},
		{
			name:      "backup without duration",
			input:     `<measure number="1"><backup/></measure>`,
			wantClass: xmlschema.ErrStructure,
			wantCode:  xmlschema.CodeRequiredElementMissing,
			wantName:  "duration",
		},
		{
			name:      "forward with zero duration",
			input:     `<measure number="1"><forward><duration>0</duration></forward></measure>`,
			wantClass: xmlschema.ErrConversion,
			wantCode:  xmlschema.CodeDatatypeInvalid,
			wantName:  "duration",
			wantCause: ErrNotPositive,
		},
		{
			name:      "forward with bad staff",
			input:     `<measure number="1"><forward><duration>1</duration><staff>x</staff></forward></measure>`,
			wantClass: xmlschema.ErrConversion,
			wantCode:  xmlschema.CodeDatatypeInvalid,
			wantName:  "staff",
		},
		{
			name:      "link without href",
			input:     `<measure number="1"><link name="x"/></measure>`,
			wantClass: xmlschema.ErrStructure,
			wantCode:  xmlschema.CodeRequiredAttributeMissing,
			wantName:  "xlink:href",
		},
		{
			name:      "bookmark without id",
			input:     `<measure number="1"><bookmark/></measure>`,
			wantClass: xmlschema.ErrStructure,
			wantCode:  xmlschema.CodeRequiredAttributeMissing,
			wantName:  "id",
		},
		{
			name:      "grouping with bad type",
			input:     `<measure number="1"><grouping type="middle"/></measure>`,
			wantClass: xmlschema.ErrConversion,
			wantCode:  xmlschema.CodeDatatypeInvalid,
			wantName:  "type",
			wantCause: ErrNotInEnumeration,
		},
		{
			name:      "barline with bad location",
			input:     `<measure number="1"><barline location="top"/></measure>`,
			wantClass: xmlschema.ErrConversion,
			wantCode:  xmlschema.CodeDatatypeInvalid,
			wantName:  "location",
			wantCause: ErrNotInEnumeration,
		},
		{
			name:      "negative sound tempo",
			input:     `<measure number="1"><sound tempo="-3"/></measure>`,
			wantClass: xmlschema.ErrConversion,
			wantCode:  xmlschema.CodeDatatypeInvalid,
			wantName:  "tempo",
			wantCause: ErrNegative,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, err := DecodeMeasure(parseElement(t, tt.input), 0, nil)
			require.Error(t, err)
			assert.Nil(t, m)
			require.ErrorIs(t, err, tt.wantClass)

			verr, ok := xmlschema.AsValidation(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, verr.Code)
			if tt.wantName != "" {
				assert.Equal(t, tt.wantName, verr.Name)
			}
			if tt.wantCause != nil {
				assert.ErrorIs(t, err, tt.wantCause)
			}
		})
	}
}

func TestDecodeNilElement(t *testing.T) {
	t.Parallel()

	_, err := DecodeMeasure(nil, 0, nil)
	require.ErrorIs(t, err, xmlschema.ErrStructure)
}

func TestDecodeLax(t *testing.T) {
	t.Parallel()

	input := `<measure number="4" color="red" xmlns:x="urn:x">stray<lyric/><backup><duration>2</duration></backup><x:custom/></measure>`

	_, err := DecodeMeasure(parseElement(t, input), 0, nil)
	require.ErrorIs(t, err, xmlschema.ErrStructure)

	m, err := DecodeMeasure(parseElement(t, input), xmlschema.FlagLax, nil)
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindBackup}, kindsOf(m))
	assert.Equal(t, `<measure number="4"><backup><duration>2</duration></backup></measure>`, render(t, m.Element()))
}

func TestDecodeNamespaceDeclarationsAccepted(t *testing.T) {
	t.Parallel()

	m, err := DecodeMeasure(parseElement(t, `<measure xmlns="" xmlns:xlink="http://www.w3.org/1999/xlink" number="1"/>`), 0, nil)
	require.NoError(t, err)
	assert.Equal(t, xmlschema.Token("1"), m.Number())
}

func TestDecodeErrorPath(t *testing.T) {
	t.Parallel()

	root := parseElement(t, `<score-partwise><part id="P1"><measure number="1"/><measure number="2" width="x"/></part></score-partwise>`)
	measures := root.FindElements("./part/measure")
	require.Len(t, measures, 2)

	_, err := DecodeMeasure(measures[1], 0, nil)
	verr, ok := xmlschema.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "/score-partwise/part[1]/measure[2]", verr.Path)
	assert.Equal(t, "x", verr.Value)
}

func TestDecodeKeepDOM(t *testing.T) {
	t.Parallel()

	src := parseElement(t, `<measure number="9"><note><rest/><duration>1</duration></note></measure>`)
	container := NewMeasure("owner")

	m, err := DecodeMeasure(src, xmlschema.FlagKeepDOM, container)
	require.NoError(t, err)
	require.NotNil(t, m.DOM())
	assert.NotSame(t, src, m.DOM())
	assert.Equal(t, render(t, src), render(t, m.DOM()))
	assert.Same(t, container, m.Container())

	assert.Nil(t, m.Clone().DOM())

	kept := m.CloneWith(xmlschema.FlagKeepDOM, nil)
	require.NotNil(t, kept.DOM())
	assert.NotSame(t, m.DOM(), kept.DOM())
	assert.Nil(t, kept.Container())
}

func TestDecodedMeasureDoesNotAliasSource(t *testing.T) {
	t.Parallel()

	src := parseElement(t, `<measure number="1"><direction><direction-type><words>a</words></direction-type></direction></measure>`)
	m, err := DecodeMeasure(src, 0, nil)
	require.NoError(t, err)
	before := render(t, m.Element())

	src.FindElement(".//words").SetText("changed")
	src.CreateAttr("number", "99")
	assert.Equal(t, before, render(t, m.Element()))
}

func TestCloneIndependence(t *testing.T) {
	t.Parallel()

	orig, err := DecodeMeasure(parseElement(t, _fullMeasure), 0, nil)
	require.NoError(t, err)
	want := render(t, orig.Element())

	clone := orig.Clone()
	assert.Equal(t, want, render(t, clone.Element()))

	clone.SetNumber("30")
	clone.Width.Set(TenthsOf(1))
	clone.Implicit.Reset()
	backup, ok := clone.MusicData[8].(*Backup)
	require.True(t, ok)
	backup.Duration = DivisionsOf(1)
	dir, ok := clone.MusicData[2].(*Direction)
	require.True(t, ok)
	dir.Children[0].FindElement(".//words").SetText("forte")
	dir.Attrs[0].Value = "below"
	clone.MusicData = clone.MusicData[:2]

	assert.Equal(t, want, render(t, orig.Element()))
}

func TestCloneElementKeepsDynamicType(t *testing.T) {
	t.Parallel()

	m, err := DecodeMeasure(parseElement(t, _fullMeasure), 0, nil)
	require.NoError(t, err)

	var el xmlschema.Element = m
	cp := el.CloneElement(0, nil)
	require.IsType(t, &Measure{}, cp)
	assert.NotSame(t, m, cp)

	for i, md := range m.MusicData {
		got := md.CloneElement(0, m)
		assert.IsType(t, md, got, "child %d", i)
		assert.Equal(t, md.ElementName(), got.ElementName())
		cmd, ok := got.(MusicData)
		require.True(t, ok)
		assert.Equal(t, render(t, EncodeMusicData(md)), render(t, EncodeMusicData(cmd)))
	}
}

func TestCloneChildrenPointAtClone(t *testing.T) {
	t.Parallel()

	m := NewMeasure("1")
	m.Append(NewBackup(DivisionsOf(2)), &Note{})
	owner := NewMeasure("owner")
	cp := m.CloneWith(0, owner)
	assert.Same(t, owner, cp.Container())
	require.Len(t, cp.MusicData, 2)
	assert.NotSame(t, m.MusicData[0], cp.MusicData[0])
}

func TestAssign(t *testing.T) {
	t.Parallel()

	t.Run("copies fields and children", func(t *testing.T) {
		t.Parallel()

		src, err := DecodeMeasure(parseElement(t, _fullMeasure), 0, nil)
		require.NoError(t, err)
		owner := NewMeasure("owner")
		dst, err := DecodeMeasure(parseElement(t, `<measure number="x" width="5"/>`), xmlschema.FlagKeepDOM, owner)
		require.NoError(t, err)

		dst.Assign(src)
		assert.Equal(t, render(t, src.Element()), render(t, dst.Element()))
		assert.Same(t, owner, dst.Container())
		assert.Nil(t, dst.DOM())

		src.MusicData[8].(*Backup).Duration = DivisionsOf(99)
		src.Width.Reset()
		assert.Equal(t, "12", dst.MusicData[8].(*Backup).Duration.String())
		assert.True(t, dst.Width.Present())
	})

	t.Run("absent optionals reset the target", func(t *testing.T) {
		t.Parallel()

		dst := NewMeasure("1")
		dst.Implicit.Set(Yes)
		dst.Width.Set(TenthsOf(3))
		dst.Assign(NewMeasure("2"))
		assert.False(t, dst.Implicit.Present())
		assert.False(t, dst.Width.Present())
		assert.Equal(t, xmlschema.Token("2"), dst.Number())
		assert.Empty(t, dst.MusicData)
	})

	t.Run("self assignment", func(t *testing.T) {
		t.Parallel()

		m, err := DecodeMeasure(parseElement(t, _fullMeasure), 0, nil)
		require.NoError(t, err)
		want := render(t, m.Element())
		first := m.MusicData[0]
		m.Assign(m)
		assert.Equal(t, want, render(t, m.Element()))
		assert.Same(t, first, m.MusicData[0])
	})
}

func TestNumberAccessors(t *testing.T) {
	t.Parallel()

	m := NewMeasure("1")
	m.SetNumber("2")
	assert.Equal(t, xmlschema.Token("2"), m.Number())

	n := xmlschema.Token("3")
	m.AdoptNumber(&n)
	assert.Equal(t, xmlschema.Token("3"), m.Number())

	assert.Panics(t, func() { m.AdoptNumber(nil) })
	assert.Equal(t, xmlschema.Token("3"), m.Number())
}

func TestAssignNilPanics(t *testing.T) {
	t.Parallel()

	m := NewMeasure("1")
	assert.PanicsWithValue(t, "musicxml: Assign called with nil measure", func() { m.Assign(nil) })
	assert.Equal(t, xmlschema.Token("1"), m.Number())
}

func TestNilChildrenDropped(t *testing.T) {
	t.Parallel()

	b := NewBackup(DivisionsOf(1))
	f := NewForward(DivisionsOf(2))

	t.Run("Append", func(t *testing.T) {
		t.Parallel()

		m := NewMeasure("1")
		m.Append(b, nil, f)
		assert.Equal(t, []Kind{KindBackup, KindForward}, kindsOf(m))
	})

	t.Run("CloneWith", func(t *testing.T) {
		t.Parallel()

		m := NewMeasure("1")
		m.MusicData = []MusicData{nil, b, nil, f}
		assert.Equal(t, []Kind{KindBackup, KindForward}, kindsOf(m.Clone()))
	})

	t.Run("Assign matches Clone", func(t *testing.T) {
		t.Parallel()

		src := NewMeasure("1")
		src.MusicData = []MusicData{b, nil, f}
		dst := NewMeasure("2")
		dst.Assign(src)
		assert.Equal(t, kindsOf(src.Clone()), kindsOf(dst))
		require.NoError(t, dst.Validate())
	})
}

func TestSetMusicDataCopies(t *testing.T) {
	t.Parallel()

	b := NewBackup(DivisionsOf(3))
	seq := []MusicData{b, nil, NewForward(DivisionsOf(1))}

	m := NewMeasure("1")
	m.SetMusicData(seq)
	require.Len(t, m.MusicData, 2)
	assert.NotSame(t, b, m.MusicData[0])

	b.Duration = DivisionsOf(8)
	assert.Equal(t, "3", m.MusicData[0].(*Backup).Duration.String())

	m.SetMusicData(nil)
	assert.Nil(t, m.MusicData)
}

func TestChildOrderPreserved(t *testing.T) {
	t.Parallel()

	m := NewMeasure("1")
	m.Append(NewBookmark("a"), NewBackup(DivisionsOf(1)), NewLink("b.xml"))

	e := m.Element()
	var tags []string
	for _, c := range e.ChildElements() {
		tags = append(tags, c.Tag)
	}
	assert.Equal(t, []string{"bookmark", "backup", "link"}, tags)

	back, err := DecodeMeasure(e, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindBookmark, KindBackup, KindLink}, kindsOf(back))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		build   func() *Measure
		wantErr error
	}{
		{
			name:  "valid",
			build: func() *Measure { return NewMeasure("1") },
		},
		{
			name:    "empty number",
			build:   func() *Measure { return NewMeasure("") },
			wantErr: ErrEmptyNumber,
		},
		{
			name: "negative width is writable",
			build: func() *Measure {
				m := NewMeasure("1")
				m.Width.Set(TenthsOf(-5))
				return m
			},
		},

		{
			name: "zero backup",
			build: func() *Measure {
				m := NewMeasure("1")
				m.Append(NewBackup(Divisions{}))
				return m
			},
			wantErr: ErrNotPositive,
		},
		{
			name: "negative forward",
			build: func() *Measure {
				m := NewMeasure("1")
				m.Append(NewForward(DivisionsOf(-1)))
				return m
			},
			wantErr: ErrNotPositive,
		},
		{
			name: "zero staff",
			build: func() *Measure {
				m := NewMeasure("1")
				fw := NewForward(DivisionsOf(1))
				fw.Staff.Set(0)
				m.Append(fw)
				return m
			},
			wantErr: ErrNotPositive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.build().Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestKindCountsAndDuration(t *testing.T) {
	t.Parallel()

	m, err := DecodeMeasure(parseElement(t, _fullMeasure), 0, nil)
	require.NoError(t, err)

	counts := m.KindCounts()
	assert.Equal(t, 3, counts[KindNote])
	assert.Equal(t, 1, counts[KindBackup])
	assert.Equal(t, 1, counts[KindPrint])
	assert.Len(t, counts, len(Kinds()))

	// 4 + 8 (chord skipped) = 12, back 12, forward 4.
	assert.Equal(t, "12", m.Duration().String())
}
