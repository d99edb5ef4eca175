package musicxml

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"
)

// parseElement returns the root element of src.
func parseElement(t *testing.T, src string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(src))
	require.NotNil(t, doc.Root())
	return doc.Root()
}

// render serializes a copy of e without indentation.
func render(t *testing.T, e *etree.Element) string {
	t.Helper()
	doc := etree.NewDocument()
	doc.SetRoot(e.Copy())
	s, err := doc.WriteToString()
	require.NoError(t, err)
	return s
}

// kindsOf lists the kinds of m's children in order.
func kindsOf(m *Measure) []Kind {
	out := make([]Kind, len(m.MusicData))
	for i, md := range m.MusicData {
		out[i] = md.Kind()
	}
	return out
}

const _fullMeasure = `<measure number="3" implicit="yes" non-controlling="no" width="183.5">` +
	`<print new-page="yes"/>` +
	`<attributes><divisions>4</divisions><time><beats>3</beats><beat-type>4</beat-type></time></attributes>` +
	`<direction placement="above"><direction-type><words>dolce</words></direction-type></direction>` +
	`<sound tempo="96" dynamics="80.5"/>` +
	`<harmony><root><root-step>C</root-step></root><kind>major</kind></harmony>` +
	`<note><pitch><step>C</step><octave>4</octave></pitch><duration>4</duration><voice>1</voice><type>quarter</type></note>` +
	`<note><chord/><pitch><step>E</step><octave>4</octave></pitch><duration>4</duration><voice>1</voice></note>` +
	`<note><rest/><duration>8</duration><voice>1</voice></note>` +
	`<backup><duration>12</duration></backup>` +
	`<forward><duration>4</duration><voice>2</voice><staff>1</staff></forward>` +
	`<figured-bass><figure><figure-number>6</figure-number></figure></figured-bass>` +
	`<grouping type="start" number="2" member-of="a"><feature type="form">A</feature></grouping>` +
	`<link xlink:href="other.musicxml" name="next" position="2"/>` +
	`<bookmark id="b1" name="coda" element="note"/>` +
	`<barline location="right"><bar-style>light-heavy</bar-style></barline>` +
	`</measure>`

var _fullKinds = []Kind{
	KindPrint, KindAttributes, KindDirection, KindSound, KindHarmony,
	KindNote, KindNote, KindNote, KindBackup, KindForward, KindFiguredBass,
	KindGrouping, KindLink, KindBookmark, KindBarline,
}
