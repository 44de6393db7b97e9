package charset_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/findanomaly/staedi/charset"
)

func TestSet_ResetRestoresPrototype(t *testing.T) {
	s := charset.NewSet()
	for r := rune(0); r < charset.Size; r++ {
		if err := s.SetClass(r, charset.SegmentDelimiter); err != nil {
			t.Fatalf("SetClass(%d): %v", r, err)
		}
	}
	s.Reset()
	for r := rune(0); r < charset.Size; r++ {
		if got, want := s.Class(r), charset.Prototype(r); got != want {
			t.Fatalf("Class(%d) after Reset = %s, want %s", r, got, want)
		}
	}
}

func TestSet_PrototypeSpotChecks(t *testing.T) {
	s := charset.NewSet()
	cases := []struct {
		r    rune
		want charset.Class
	}{
		{0x00, charset.Invalid},
		{0x01, charset.Control},
		{'\t', charset.Whitespace},
		{'\r', charset.Whitespace},
		{0x1b, charset.Invalid},
		{0x1d, charset.Control},
		{' ', charset.Space},
		{'*', charset.Other},
		{'0', charset.Alphanumeric},
		{'A', charset.LatinA},
		{'B', charset.LatinB},
		{'C', charset.Alphanumeric},
		{'E', charset.LatinE},
		{'I', charset.LatinI},
		{'N', charset.LatinN},
		{'S', charset.LatinS},
		{'U', charset.LatinU},
		{'Z', charset.LatinZ},
		{'z', charset.Alphanumeric},
		{'~', charset.Other},
		{0x7f, charset.Invalid},
	}
	for _, tc := range cases {
		if got := s.Class(tc.r); got != tc.want {
			t.Errorf("Class(%q) = %s, want %s", tc.r, got, tc.want)
		}
	}
}

func TestSet_NonASCIIAlwaysOther(t *testing.T) {
	s := charset.NewSet()
	_ = s.SetClass('~', charset.SegmentDelimiter)
	for _, r := range []rune{128, 0xe9, 0x2028, 0x1f600, -1} {
		if got := s.Class(r); got != charset.Other {
			t.Errorf("Class(%U) = %s, want other", r, got)
		}
		if s.IsDelimiter(r) || s.IsRelease(r) {
			t.Errorf("%U must never be a delimiter or release character", r)
		}
	}
}

func TestSet_SetClassOverrides(t *testing.T) {
	s := charset.NewSet()
	if err := s.SetClass('*', charset.ElementDelimiter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Class('*'); got != charset.ElementDelimiter {
		t.Fatalf("Class('*') = %s, want element_delimiter", got)
	}
	if !s.IsDelimiter('*') {
		t.Fatalf("expected '*' to be a delimiter")
	}
	if err := s.SetClass('?', charset.ReleaseCharacter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.IsRelease('?') || s.IsDelimiter('?') {
		t.Fatalf("expected '?' to be the release character only")
	}
}

func TestSet_SetClassOutOfRange(t *testing.T) {
	s := charset.NewSet()
	for _, r := range []rune{128, 0xff, 0x10000} {
		err := s.SetClass(r, charset.ElementDelimiter)
		if err == nil {
			t.Fatalf("SetClass(%U): expected range error", r)
		}
		var re *charset.RangeError
		if !errors.As(err, &re) || re.CodePoint != r {
			t.Fatalf("SetClass(%U): expected *RangeError, got %v", r, err)
		}
		if !errors.Is(err, charset.ErrOutOfRange) {
			t.Fatalf("SetClass(%U): expected ErrOutOfRange in chain", r)
		}
	}
}

func TestSet_Delimiter(t *testing.T) {
	s := charset.NewSet()
	if _, ok := s.Delimiter(charset.SegmentDelimiter); ok {
		t.Fatalf("prototype must not bind a segment delimiter")
	}
	_ = s.SetClass('~', charset.SegmentDelimiter)
	_ = s.SetClass('*', charset.ElementDelimiter)
	_ = s.SetClass(':', charset.ComponentDelimiter)
	_ = s.SetClass('^', charset.ElementRepeater)

	want := map[charset.Class]rune{
		charset.SegmentDelimiter:   '~',
		charset.ElementDelimiter:   '*',
		charset.ComponentDelimiter: ':',
		charset.ElementRepeater:    '^',
	}
	for c, r := range want {
		got, ok := s.Delimiter(c)
		if !ok || got != r {
			t.Errorf("Delimiter(%s) = %q,%v want %q", c, got, ok, r)
		}
	}
	s.Reset()
	if _, ok := s.Delimiter(charset.ElementDelimiter); ok {
		t.Fatalf("Reset must unbind delimiters")
	}
}

func TestIsValid_IgnoresOverrides(t *testing.T) {
	s := charset.NewSet()
	_ = s.SetClass(0x00, charset.SegmentDelimiter)
	if charset.IsValid(0x00) {
		t.Fatalf("NUL is never valid regardless of overrides")
	}
	if !charset.IsValid('A') || !charset.IsValid(0xe9) {
		t.Fatalf("expected printable and non-ASCII code points to be valid")
	}
	if charset.IsValid(0x7f) {
		t.Fatalf("DEL must be invalid")
	}
}

func TestSet_IndependentInstances(t *testing.T) {
	a, b := charset.NewSet(), charset.NewSet()
	_ = a.SetClass('+', charset.ElementDelimiter)
	if b.Class('+') != charset.Other {
		t.Fatalf("sets must not share state")
	}
}

func TestSet_String(t *testing.T) {
	s := charset.NewSet()
	_ = s.SetClass('~', charset.SegmentDelimiter)
	out := s.String()
	if n := strings.Count(out, "\n"); n != charset.Size {
		t.Fatalf("expected %d lines, got %d", charset.Size, n)
	}
	if !strings.Contains(out, "'~':\tsegment_delimiter") {
		t.Fatalf("dump missing override:\n%s", out)
	}
}
