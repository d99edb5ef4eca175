package xmlschema

import "strings"

// Token is an xs:token: whitespace is collapsed to single spaces and trimmed.
type Token string

// NewToken collapses XML whitespace in s.
func NewToken(s string) Token {
	return Token(strings.Join(strings.FieldsFunc(s, isXMLSpace), " "))
}

// String returns the token text.
func (t Token) String() string {
	return string(t)
}

// isXMLSpace matches the four characters XML treats as whitespace.
func isXMLSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	default:
		return false
	}
}

// trimXMLSpace trims XML whitespace around s without touching inner runs.
func trimXMLSpace(s string) string {
	return strings.TrimFunc(s, isXMLSpace)
}
