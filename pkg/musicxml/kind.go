package musicxml

// Kind discriminates the child elements allowed inside a measure.
type Kind int

// Music-data kinds, in schema declaration order.
const (
	KindNote Kind = iota + 1
	KindBackup
	KindForward
	KindDirection
	KindAttributes
	KindHarmony
	KindFiguredBass
	KindPrint
	KindSound
	KindBarline
	KindGrouping
	KindLink
	KindBookmark
)

var _kindNames = [...]string{
	KindNote:        "note",
	KindBackup:      "backup",
	KindForward:     "forward",
	KindDirection:   "direction",
	KindAttributes:  "attributes",
	KindHarmony:     "harmony",
	KindFiguredBass: "figured-bass",
	KindPrint:       "print",
	KindSound:       "sound",
	KindBarline:     "barline",
	KindGrouping:    "grouping",
	KindLink:        "link",
	KindBookmark:    "bookmark",
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(_kindNames)-1)
	for k := KindNote; k <= KindBookmark; k++ {
		out = append(out, k)
	}
	return out
}

// String returns the element name of the kind.
func (k Kind) String() string {
	if k < KindNote || k > KindBookmark {
		return "unknown"
	}
	return _kindNames[k]
}

// ParseKind maps an element name to its kind.
func ParseKind(name string) (Kind, bool) {
	for k := KindNote; k <= KindBookmark; k++ {
		if _kindNames[k] == name {
			return k, true
		}
	}
	return 0, false
}
