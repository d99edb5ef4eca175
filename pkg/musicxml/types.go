package musicxml

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ndisidore/scorebind/pkg/xmlschema"
)

// Sentinel errors for scalar conversions.
var (
	ErrNotInEnumeration = errors.New("value not in enumeration")
	ErrNotPositive      = errors.New("value must be positive")
	ErrNegative         = errors.New("value must not be negative")
)

// YesNo is the MusicXML yes-no type.
type YesNo string

// YesNo values.
const (
	Yes YesNo = "yes"
	No  YesNo = "no"
)

// ParseYesNo converts "yes" or "no"; anything else is an error.
func ParseYesNo(s string) (YesNo, error) {
	switch v := YesNo(strings.TrimSpace(s)); v {
	case Yes, No:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q (expected yes or no)", ErrNotInEnumeration, s)
	}
}

// YesNoOf maps true to Yes and false to No.
func YesNoOf(b bool) YesNo {
	if b {
		return Yes
	}
	return No
}

// Bool reports whether y is Yes.
func (y YesNo) Bool() bool {
	return y == Yes
}

func (y YesNo) String() string {
	return string(y)
}

// Tenths is a MusicXML layout measurement in tenths of interline space.
type Tenths struct {
	xmlschema.Decimal
}

// ParseTenths parses an xs:decimal tenths value.
func ParseTenths(s string) (Tenths, error) {
	d, err := xmlschema.ParseDecimal(s)
	if err != nil {
		return Tenths{}, err
	}
	return Tenths{d}, nil
}

// TenthsOf returns a whole number of tenths.
func TenthsOf(n int64) Tenths {
	return Tenths{xmlschema.NewDecimal(n, 0)}
}

// Divisions is a duration in divisions per quarter note.
type Divisions struct {
	xmlschema.Decimal
}

// ParseDivisions parses an xs:decimal divisions value.
func ParseDivisions(s string) (Divisions, error) {
	d, err := xmlschema.ParseDecimal(s)
	if err != nil {
		return Divisions{}, err
	}
	return Divisions{d}, nil
}

// ParsePositiveDivisions parses a positive-divisions value.
func ParsePositiveDivisions(s string) (Divisions, error) {
	d, err := ParseDivisions(s)
	if err != nil {
		return Divisions{}, err
	}
	if d.Sign() <= 0 {
		return Divisions{}, fmt.Errorf("%w: %s", ErrNotPositive, d)
	}
	return d, nil
}

// DivisionsOf returns a whole number of divisions.
func DivisionsOf(n int64) Divisions {
	return Divisions{xmlschema.NewDecimal(n, 0)}
}

// parseNonNegativeDecimal parses a non-negative-decimal value.
func parseNonNegativeDecimal(s string) (xmlschema.Decimal, error) {
	d, err := xmlschema.ParseDecimal(s)
	if err != nil {
		return xmlschema.Decimal{}, err
	}
	if d.Sign() < 0 {
		return xmlschema.Decimal{}, fmt.Errorf("%w: %s", ErrNegative, d)
	}
	return d, nil
}

// StartStopSingle is the type of a grouping.
type StartStopSingle string

// StartStopSingle values.
const (
	Start  StartStopSingle = "start"
	Stop   StartStopSingle = "stop"
	Single StartStopSingle = "single"
)

// ParseStartStopSingle converts start, stop or single.
func ParseStartStopSingle(s string) (StartStopSingle, error) {
	switch v := StartStopSingle(strings.TrimSpace(s)); v {
	case Start, Stop, Single:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q (expected start, stop or single)", ErrNotInEnumeration, s)
	}
}

func (s StartStopSingle) String() string {
	return string(s)
}

// RightLeftMiddle is the location of a barline.
type RightLeftMiddle string

// RightLeftMiddle values.
const (
	Right  RightLeftMiddle = "right"
	Left   RightLeftMiddle = "left"
	Middle RightLeftMiddle = "middle"
)

// ParseRightLeftMiddle converts right, left or middle.
func ParseRightLeftMiddle(s string) (RightLeftMiddle, error) {
	switch v := RightLeftMiddle(strings.TrimSpace(s)); v {
	case Right, Left, Middle:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q (expected right, left or middle)", ErrNotInEnumeration, s)
	}
}

func (r RightLeftMiddle) String() string {
	return string(r)
}
