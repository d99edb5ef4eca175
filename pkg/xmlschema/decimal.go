package xmlschema

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// ErrInvalidDecimal indicates text outside the xs:decimal lexical space.
var ErrInvalidDecimal = errors.New("invalid decimal")

// Decimal is an immutable xs:decimal. The zero value is 0.
type Decimal struct {
	d *apd.Decimal
}

// ParseDecimal parses s as an xs:decimal. Exponents, NaN and infinities are
// rejected even though the underlying arithmetic accepts them.
func ParseDecimal(s string) (Decimal, error) {
	s = trimXMLSpace(s)
	if !isDecimalLexical(s) {
		return Decimal{}, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	}
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("%w: %q: %w", ErrInvalidDecimal, s, err)
	}
	return Decimal{d: d}, nil
}

// MustDecimal is ParseDecimal for constants; it panics on invalid input.
func MustDecimal(s string) Decimal {
	d, err := ParseDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewDecimal returns coeff * 10^exp.
func NewDecimal(coeff int64, exp int32) Decimal {
	return Decimal{d: apd.New(coeff, exp)}
}

// String formats the value without an exponent, keeping trailing zeros.
func (d Decimal) String() string {
	if d.d == nil {
		return "0"
	}
	return d.d.Text('f')
}

// Cmp compares the numeric values of d and o.
func (d Decimal) Cmp(o Decimal) int {
	return d.apd().Cmp(o.apd())
}

// Equal reports numeric equality; 120 and 120.0 are equal.
func (d Decimal) Equal(o Decimal) bool {
	return d.Cmp(o) == 0
}

// Sign returns -1, 0 or 1.
func (d Decimal) Sign() int {
	return d.apd().Sign()
}

// Float64 converts to the nearest float64.
func (d Decimal) Float64() float64 {
	f, err := d.apd().Float64()
	if err != nil {
		return 0
	}
	return f
}

// Add returns d + o, computed exactly.
func (d Decimal) Add(o Decimal) Decimal {
	var out apd.Decimal
	if _, err := apd.BaseContext.Add(&out, d.apd(), o.apd()); err != nil {
		panic(fmt.Sprintf("xmlschema: decimal add: %v", err))
	}
	return Decimal{d: &out}
}

// Sub returns d - o, computed exactly.
func (d Decimal) Sub(o Decimal) Decimal {
	var out apd.Decimal
	if _, err := apd.BaseContext.Sub(&out, d.apd(), o.apd()); err != nil {
		panic(fmt.Sprintf("xmlschema: decimal sub: %v", err))
	}
	return Decimal{d: &out}
}

// MarshalText implements encoding.TextMarshaler.
func (d Decimal) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

var _zero = apd.New(0, 0)

func (d Decimal) apd() *apd.Decimal {
	if d.d == nil {
		return _zero
	}
	return d.d
}

// isDecimalLexical matches (\+|-)?([0-9]+(\.[0-9]*)?|\.[0-9]+).
func isDecimalLexical(s string) bool {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	var intDigits, fracDigits int
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		intDigits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			fracDigits++
		}
	}
	return i == len(s) && intDigits+fracDigits > 0
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
