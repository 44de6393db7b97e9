// Package engine discovers interchange delimiters and splits EDI input into
// segments using a charset.Set owned by the caller's session.
package engine

import (
	"errors"
	"fmt"

	"github.com/findanomaly/staedi/charset"
)

// Standard names the EDI syntax family of an interchange.
type Standard string

const (
	StandardX12     Standard = "X12"
	StandardEDIFACT Standard = "EDIFACT"
)

// Delimiters holds the characters an interchange declares. A zero rune means
// the role is not used.
type Delimiters struct {
	Segment    rune
	Element    rune
	Component  rune
	Repetition rune
	Release    rune
	Decimal    rune
}

// Dialect is the result of header detection.
type Dialect struct {
	Standard   Standard
	Delimiters Delimiters
	// Version is ISA12 for X12 or the UNB syntax version number for EDIFACT.
	Version string
	// SyntaxIdentifier is the EDIFACT character repertoire (UNOA, UNOC, ...).
	SyntaxIdentifier string
}

// ErrUnknownDialect is returned when input starts with neither an X12 nor an
// EDIFACT interchange header.
var ErrUnknownDialect = errors.New("engine: unrecognized interchange header")

const (
	isaLength = 106
	unaLength = 9
)

// isaElementOffsets are the fixed positions of the element separator in an
// ISA segment.
var isaElementOffsets = [...]int{3, 6, 17, 20, 31, 34, 50, 53, 69, 76, 81, 83, 89, 99, 101, 103}

// DetectDialect inspects the beginning of an interchange. header must hold
// at least the full ISA (106 code points) or UNA (9) service segment; for UNB
// the first dozen code points suffice.
func DetectDialect(header []rune) (Dialect, error) {
	switch {
	case hasTag(header, "ISA"):
		return detectX12(header)
	case hasTag(header, "UNA"):
		return detectUNA(header)
	case hasTag(header, "UNB"):
		return detectUNB(header)
	}
	return Dialect{}, ErrUnknownDialect
}

func hasTag(h []rune, tag string) bool {
	if len(h) < len(tag) {
		return false
	}
	for i, r := range tag {
		if h[i] != r {
			return false
		}
	}
	return true
}

func detectX12(h []rune) (Dialect, error) {
	if len(h) < isaLength {
		return Dialect{}, fmt.Errorf("engine: ISA header truncated at %d of %d characters", len(h), isaLength)
	}
	element := h[3]
	for _, off := range isaElementOffsets {
		if h[off] != element {
			return Dialect{}, fmt.Errorf("engine: ISA header: expected element separator %q at offset %d, found %q", element, off, h[off])
		}
	}
	d := Dialect{
		Standard: StandardX12,
		Version:  string(h[84:89]),
		Delimiters: Delimiters{
			Segment:   h[105],
			Element:   element,
			Component: h[104],
		},
	}
	// ISA11 is the repetition separator from 00402 on and a standards
	// identifier (typically "U") before that.
	if rep := h[82]; !isWordClass(charset.Prototype(rep)) {
		d.Delimiters.Repetition = rep
	}
	return d, nil
}

func detectUNA(h []rune) (Dialect, error) {
	if len(h) < unaLength {
		return Dialect{}, fmt.Errorf("engine: UNA service string advice truncated at %d of %d characters", len(h), unaLength)
	}
	d := Dialect{
		Standard: StandardEDIFACT,
		Delimiters: Delimiters{
			Component: h[3],
			Element:   h[4],
			Decimal:   h[5],
			Release:   h[6],
			Segment:   h[8],
		},
	}
	if h[6] == ' ' {
		d.Delimiters.Release = 0
	}
	if h[7] != ' ' {
		d.Delimiters.Repetition = h[7]
	}
	return d, nil
}

// detectUNB applies the EDIFACT default service characters.
func detectUNB(h []rune) (Dialect, error) {
	d := Dialect{
		Standard: StandardEDIFACT,
		Delimiters: Delimiters{
			Component: ':',
			Element:   '+',
			Decimal:   '.',
			Release:   '?',
			Segment:   '\'',
		},
	}
	// UNB+UNOC:4+...
	if len(h) >= 10 && h[3] == '+' && h[8] == ':' {
		d.SyntaxIdentifier = string(h[4:8])
		d.Version = string(h[9:10])
		if h[9] >= '4' && h[9] <= '9' {
			d.Delimiters.Repetition = '*'
		}
	}
	return d, nil
}

func isWordClass(c charset.Class) bool {
	switch c {
	case charset.Alphanumeric, charset.LatinA, charset.LatinB, charset.LatinE, charset.LatinI,
		charset.LatinN, charset.LatinS, charset.LatinU, charset.LatinZ:
		return true
	}
	return false
}

// Apply resets set and binds the dialect's delimiters. Delimiters must be
// distinct, valid and not letters or digits.
func (d Dialect) Apply(set *charset.Set) error {
	bindings := []struct {
		r     rune
		class charset.Class
		name  string
	}{
		{d.Delimiters.Segment, charset.SegmentDelimiter, "segment terminator"},
		{d.Delimiters.Element, charset.ElementDelimiter, "element separator"},
		{d.Delimiters.Component, charset.ComponentDelimiter, "component separator"},
		{d.Delimiters.Repetition, charset.ElementRepeater, "repetition separator"},
		{d.Delimiters.Release, charset.ReleaseCharacter, "release character"},
	}
	seen := make(map[rune]string, len(bindings))
	for _, b := range bindings {
		if b.r == 0 {
			continue
		}
		if b.r >= charset.Size {
			return fmt.Errorf("engine: %s: %w", b.name, &charset.RangeError{CodePoint: b.r})
		}
		if !charset.IsValid(b.r) || isWordClass(charset.Prototype(b.r)) {
			return fmt.Errorf("engine: %s %q is not allowed", b.name, b.r)
		}
		if prev, dup := seen[b.r]; dup {
			return fmt.Errorf("engine: %s %q collides with %s", b.name, b.r, prev)
		}
		seen[b.r] = b.name
	}
	if d.Delimiters.Segment == 0 || d.Delimiters.Element == 0 {
		return errors.New("engine: segment terminator and element separator are required")
	}

	set.Reset()
	for _, b := range bindings {
		if b.r == 0 {
			continue
		}
		if err := set.SetClass(b.r, b.class); err != nil {
			return fmt.Errorf("engine: %s: %w", b.name, err)
		}
	}
	return nil
}
