// Package charset classifies code points for EDI tokenization.
//
// A Set starts as a copy of a fixed ASCII prototype and is re-programmed by
// the tokenizer each time an interchange declares its delimiters. A Set is
// owned by a single parsing session and must not be shared between
// concurrently running sessions.
package charset

import (
	"errors"
	"fmt"
	"strings"
)

// Class is the classification of a single code point.
type Class uint8

const (
	Other Class = iota
	Space
	Whitespace
	Control
	Invalid
	LatinA
	LatinB
	LatinE
	LatinI
	LatinN
	LatinS
	LatinU
	LatinZ
	Alphanumeric
	ElementDelimiter
	ElementRepeater
	SegmentDelimiter
	ComponentDelimiter
	ReleaseCharacter
)

var classNames = [...]string{
	Other:              "other",
	Space:              "space",
	Whitespace:         "whitespace",
	Control:            "control",
	Invalid:            "invalid",
	LatinA:             "latin_a",
	LatinB:             "latin_b",
	LatinE:             "latin_e",
	LatinI:             "latin_i",
	LatinN:             "latin_n",
	LatinS:             "latin_s",
	LatinU:             "latin_u",
	LatinZ:             "latin_z",
	Alphanumeric:       "alphanumeric",
	ElementDelimiter:   "element_delimiter",
	ElementRepeater:    "element_repeater",
	SegmentDelimiter:   "segment_delimiter",
	ComponentDelimiter: "component_delimiter",
	ReleaseCharacter:   "release_character",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// IsDelimiter reports whether c is one of the four delimiter classes.
func (c Class) IsDelimiter() bool {
	switch c {
	case ElementDelimiter, ElementRepeater, SegmentDelimiter, ComponentDelimiter:
		return true
	default:
		return false
	}
}

// Size is the number of entries in a classification table.
const Size = 128

// ErrOutOfRange is returned (wrapped in a RangeError) when a code point
// outside the ASCII table is overridden.
var ErrOutOfRange = errors.New("charset: code point out of range")

// RangeError reports an attempt to override a code point outside [0,127].
type RangeError struct {
	CodePoint rune
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("charset: code point %U outside classification table", e.CodePoint)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

// prototype maps the 128 ASCII code points to their default classes.
// Everything above is Other.
var prototype = [Size]Class{
	Invalid, Control, Control, Control, Control, Control, Control, Control, // 00 NUL .. 07 BEL
	Invalid, Whitespace, Whitespace, Whitespace, Whitespace, Whitespace, Invalid, Invalid, // 08 BS .. 0F SI
	Invalid, Control, Control, Control, Control, Control, Control, Control, // 10 DLE .. 17 ETB
	Invalid, Invalid, Invalid, Invalid, Control, Control, Control, Control, // 18 CAN .. 1F US
	Space, Other, Other, Other, Other, Other, Other, Other, // 20 ' ' .. 27 '
	Other, Other, Other, Other, Other, Other, Other, Other, // 28 ( .. 2F /
	Alphanumeric, Alphanumeric, Alphanumeric, Alphanumeric, Alphanumeric, Alphanumeric, Alphanumeric, Alphanumeric, // 30 0 .. 37 7
	Alphanumeric, Alphanumeric, Other, Other, Other, Other, Other, Other, // 38 8 .. 3F ?
	Other, LatinA, LatinB, Alphanumeric, Alphanumeric, LatinE, Alphanumeric, Alphanumeric, // 40 @ .. 47 G
	Alphanumeric, LatinI, Alphanumeric, Alphanumeric, Alphanumeric, Alphanumeric, LatinN, Alphanumeric, // 48 H .. 4F O
	Alphanumeric, Alphanumeric, Alphanumeric, LatinS, Alphanumeric, LatinU, Alphanumeric, Alphanumeric, // 50 P .. 57 W
	Alphanumeric, Alphanumeric, LatinZ, Other, Other, Other, Other, Other, // 58 X .. 5F _
	Other, Alphanumeric, Alphanumeric, Alphanumeric, Alphanumeric, Alphanumeric, Alphanumeric, Alphanumeric, // 60 ` .. 67 g
	Alphanumeric, Alphanumeric, Alphanumeric, Alphanumeric, Alphanumeric, Alphanumeric, Alphanumeric, Alphanumeric, // 68 h .. 6F o
	Alphanumeric, Alphanumeric, Alphanumeric, Alphanumeric, Alphanumeric, Alphanumeric, Alphanumeric, Alphanumeric, // 70 p .. 77 w
	Alphanumeric, Alphanumeric, Alphanumeric, Other, Other, Other, Other, Invalid, // 78 x .. 7F DEL
}

// Prototype returns the default class of r, ignoring any runtime overrides.
func Prototype(r rune) Class {
	if r < 0 || r >= Size {
		return Other
	}
	return prototype[r]
}

// IsValid reports whether r may legally appear in an EDI stream at all,
// independent of the delimiters currently bound in any Set.
func IsValid(r rune) bool {
	return Prototype(r) != Invalid
}

// Set is a mutable classification table.
type Set struct {
	table [Size]Class
}

// NewSet returns a Set initialised from the prototype.
func NewSet() *Set {
	return &Set{table: prototype}
}

// Class returns the current class of r. Code points outside the table are
// always Other.
func (s *Set) Class(r rune) Class {
	if r < 0 || r >= Size {
		return Other
	}
	return s.table[r]
}

// Reset discards all overrides.
func (s *Set) Reset() {
	s.table = prototype
}

// SetClass overrides the class of a single ASCII code point.
func (s *Set) SetClass(r rune, c Class) error {
	if r < 0 || r >= Size {
		return &RangeError{CodePoint: r}
	}
	s.table[r] = c
	return nil
}

// IsDelimiter reports whether r is currently bound to a delimiter class.
func (s *Set) IsDelimiter(r rune) bool {
	return s.Class(r).IsDelimiter()
}

// IsRelease reports whether r is currently the release character.
func (s *Set) IsRelease(r rune) bool {
	return s.Class(r) == ReleaseCharacter
}

// Delimiter returns the code point currently bound to c. The table does not
// enforce uniqueness; when several entries share c the highest one wins.
func (s *Set) Delimiter(c Class) (rune, bool) {
	for i := Size - 1; i >= 0; i-- {
		if s.table[i] == c {
			return rune(i), true
		}
	}
	return 0, false
}

// String dumps the table, one entry per line.
func (s *Set) String() string {
	b := &strings.Builder{}
	for i, c := range s.table {
		r := rune(i)
		if r < 0x20 || r == 0x7f {
			fmt.Fprintf(b, "%d)\t%#04x:\t%s\n", i, i, c)
			continue
		}
		fmt.Fprintf(b, "%d)\t%q:\t%s\n", i, r, c)
	}
	return b.String()
}
