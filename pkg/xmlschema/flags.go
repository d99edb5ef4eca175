package xmlschema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFlags indicates a flag value or name outside the recognized set.
var ErrUnknownFlags = errors.New("unknown parse flags")

// Flags controls how bound elements are decoded and copied.
type Flags uint32

const (
	// FlagLax skips attributes, child elements and text that are not part of
	// the content model instead of failing the decode.
	FlagLax Flags = 1 << iota
	// FlagKeepDOM retains a deep copy of the source element on the decoded
	// value, and carries it across copies made with the same flag.
	FlagKeepDOM

	_flagMask = FlagLax | FlagKeepDOM
)

var _flagNames = []struct {
	flag Flags
	name string
}{
	{FlagLax, "lax"},
	{FlagKeepDOM, "keep-dom"},
}

// Has reports whether every bit of o is set in f.
func (f Flags) Has(o Flags) bool {
	return f&o == o
}

// String returns the flag names joined by "|", or "none".
func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var names []string
	for _, fn := range _flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	if rest := f &^ _flagMask; rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(names, "|")
}

// Validate rejects bits that no decoder recognizes.
func (f Flags) Validate() error {
	if rest := f &^ _flagMask; rest != 0 {
		return fmt.Errorf("%w: 0x%x", ErrUnknownFlags, uint32(rest))
	}
	return nil
}

// ParseFlags converts flag names (as printed by String) into a bitmask.
func ParseFlags(names []string) (Flags, error) {
	var f Flags
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" || name == "none" {
			continue
		}
		found := false
		for _, fn := range _flagNames {
			if fn.name == name {
				f |= fn.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: %q", ErrUnknownFlags, raw)
		}
	}
	return f, nil
}
