package regex

import (
	"fmt"
	"strings"
)

// FlagSet holds the parsed match flags.
type FlagSet uint8

// Flag bits.
const (
	// Multiline makes ^ and $ match at line boundaries.
	Multiline FlagSet = 1 << iota
	// CaseInsensitive enables case folding. Always set with UnicodeCase.
	CaseInsensitive
	// UnicodeCase selects Unicode simple case folding.
	UnicodeCase
	// Extended removes whitespace from the pattern before compiling.
	Extended
	// DotAll makes '.' match newlines.
	DotAll
)

// FlagError reports an unknown flag character.
type FlagError struct {
	Flags    string
	Flag     rune
	Position int
}

// Error implements the error interface.
func (e *FlagError) Error() string {
	return fmt.Sprintf("invalid regex flag %q at offset %d in %q", e.Flag, e.Position, e.Flags)
}

// ParseFlags converts a flag string into a FlagSet. Recognized flags are
// m, i, x and s; repeated flags are allowed.
func ParseFlags(s string) (FlagSet, error) {
	var f FlagSet
	for i, c := range s {
		switch c {
		case 'm':
			f |= Multiline
		case 'i':
			f |= CaseInsensitive | UnicodeCase
		case 'x':
			f |= Extended
		case 's':
			f |= DotAll
		default:
			return 0, &FlagError{Flags: s, Flag: c, Position: i}
		}
	}
	return f, nil
}

// IsCaseSensitive reports whether the flag string lacks 'i'.
func IsCaseSensitive(flags string) bool {
	return !strings.ContainsRune(flags, 'i')
}

// Has reports whether every bit of b is set.
func (f FlagSet) Has(b FlagSet) bool {
	return f&b == b
}

// String returns the flags in canonical "misx" order.
func (f FlagSet) String() string {
	var b strings.Builder
	if f.Has(Multiline) {
		b.WriteByte('m')
	}
	if f.Has(CaseInsensitive) {
		b.WriteByte('i')
	}
	if f.Has(DotAll) {
		b.WriteByte('s')
	}
	if f.Has(Extended) {
		b.WriteByte('x')
	}
	return b.String()
}
