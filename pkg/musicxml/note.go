package musicxml

import (
	"github.com/ndisidore/scorebind/pkg/xmlschema"
)

// Note is a pitched note, rest or unpitched note. Its content is kept as a
// Fragment; the accessors below read the commonly needed parts of it.
type Note struct{ Fragment }

func (*Note) Kind() Kind          { return KindNote }
func (*Note) ElementName() string { return KindNote.String() }

// Clone returns a deep copy.
func (n *Note) Clone() *Note { return &Note{n.Fragment.clone()} }

func (n *Note) CloneElement(xmlschema.Flags, xmlschema.Container) xmlschema.Element {
	return n.Clone()
}

// Duration returns the note's duration; grace notes have none.
func (n *Note) Duration() (Divisions, bool) {
	raw, ok := n.ChildText("duration")
	if !ok {
		return Divisions{}, false
	}
	d, err := ParseDivisions(raw)
	if err != nil {
		return Divisions{}, false
	}
	return d, true
}

// IsRest reports whether the note is a rest.
func (n *Note) IsRest() bool { return n.Child("rest") != nil }

// IsChord reports whether the note sounds with the previous note.
func (n *Note) IsChord() bool { return n.Child("chord") != nil }

// IsGrace reports whether the note is a grace note.
func (n *Note) IsGrace() bool { return n.Child("grace") != nil }

// Voice returns the note's voice, when given.
func (n *Note) Voice() (string, bool) { return n.ChildText("voice") }
