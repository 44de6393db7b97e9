package engine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/findanomaly/staedi/charset"
)

// Element is one data element occurrence: its repetitions, each split into
// components. A simple element has a single repetition with a single
// component.
type Element [][]string

// Used reports whether any component of any repetition has a value.
func (e Element) Used() bool {
	for _, rep := range e {
		for _, c := range rep {
			if c != "" {
				return true
			}
		}
	}
	return false
}

// Value returns the first component of the first repetition.
func (e Element) Value() string {
	if len(e) == 0 || len(e[0]) == 0 {
		return ""
	}
	return e[0][0]
}

// Segment is one scanned segment.
type Segment struct {
	Tag      string
	Elements []Element
	Offset   int64 // byte offset of the first tag character
}

// SyntaxError reports malformed input at an offset.
type SyntaxError struct {
	Offset int64
	Msg    string
	Err    error // sentinel or dialect error behind Msg, if any
}

func (e *SyntaxError) Error() string { return fmt.Sprintf("engine: offset %d: %s", e.Offset, e.Msg) }

func (e *SyntaxError) Unwrap() error { return e.Err }

// ErrSegmentTooLong is wrapped by the error returned when a segment exceeds
// ScanOptions.MaxSegmentLength.
var ErrSegmentTooLong = errors.New("engine: segment too long")

// ScanOptions bounds the scanner.
type ScanOptions struct {
	// MaxSegmentLength limits the code points of one segment (0 = unlimited).
	MaxSegmentLength int
	// OnDialect is called each time an interchange header (re)declares the
	// delimiters.
	OnDialect func(Dialect)
}

// Scanner splits input into segments. Every delimiter decision is a lookup in
// the caller's charset.Set, which the scanner re-programs when it meets an
// interchange header. A Scanner is not safe for concurrent use.
type Scanner struct {
	r      io.RuneReader
	set    *charset.Set
	opt    ScanOptions
	buf    []rune
	sizes  []int
	offset int64

	dialect    Dialect
	hasDialect bool
	pendingUNA bool
}

// NewScanner returns a scanner reading from r and classifying with set.
func NewScanner(r io.Reader, set *charset.Set, opt ScanOptions) *Scanner {
	rr, ok := r.(io.RuneReader)
	if !ok {
		rr = bufio.NewReader(r)
	}
	return &Scanner{r: rr, set: set, opt: opt}
}

// Dialect returns the dialect of the current interchange.
func (s *Scanner) Dialect() (Dialect, bool) { return s.dialect, s.hasDialect }

// Offset is the number of input bytes consumed so far.
func (s *Scanner) Offset() int64 { return s.offset }

// Next returns the next segment, or io.EOF when the input is exhausted.
func (s *Scanner) Next() (Segment, error) {
	if err := s.skipWhitespace(); err != nil {
		return Segment{}, err
	}
	head := s.peek(3)
	if len(head) == 0 {
		return Segment{}, io.EOF
	}
	switch {
	case hasTag(head, "ISA"):
		return s.readISA()
	case hasTag(head, "UNA"):
		return s.readUNA()
	case hasTag(head, "UNB") && !s.pendingUNA:
		if err := s.declare(s.peek(12)); err != nil {
			return Segment{}, err
		}
	}
	if !s.hasDialect {
		return Segment{}, &SyntaxError{Offset: s.offset, Msg: ErrUnknownDialect.Error(), Err: ErrUnknownDialect}
	}
	s.pendingUNA = false
	return s.readSegment()
}

func (s *Scanner) declare(header []rune) error {
	d, err := DetectDialect(header)
	if err != nil {
		return &SyntaxError{Offset: s.offset, Msg: err.Error(), Err: err}
	}
	if err := d.Apply(s.set); err != nil {
		return &SyntaxError{Offset: s.offset, Msg: err.Error(), Err: err}
	}
	s.dialect, s.hasDialect = d, true
	if s.opt.OnDialect != nil {
		s.opt.OnDialect(d)
	}
	return nil
}

// readISA consumes the fixed-length ISA segment. Its last element holds the
// component separator itself, so it is split on the element separator only.
func (s *Scanner) readISA() (Segment, error) {
	start := s.offset
	header := s.peek(isaLength)
	if err := s.declare(header); err != nil {
		return Segment{}, err
	}
	header = append([]rune(nil), header...)
	for range header {
		s.next()
	}
	fields := strings.Split(string(header[:isaLength-1]), string(s.dialect.Delimiters.Element))
	seg := Segment{Tag: fields[0], Offset: start}
	for _, f := range fields[1:] {
		seg.Elements = append(seg.Elements, Element{{f}})
	}
	return seg, nil
}

func (s *Scanner) readUNA() (Segment, error) {
	seg := Segment{Tag: "UNA", Offset: s.offset}
	header := s.peek(unaLength)
	if err := s.declare(header); err != nil {
		return Segment{}, err
	}
	for i := 0; i < unaLength; i++ {
		if _, _, err := s.next(); err != nil {
			return Segment{}, err
		}
	}
	s.pendingUNA = true
	return seg, nil
}

func (s *Scanner) readSegment() (Segment, error) {
	seg := Segment{Offset: s.offset}
	var (
		field    strings.Builder
		blank    strings.Builder // unreleased whitespace not yet followed by data
		comps    []string
		reps     [][]string
		inTag    = true
		length   int
		released bool
	)
	flush := func() {
		field.WriteString(blank.String())
		blank.Reset()
	}
	endComponent := func() {
		flush()
		comps = append(comps, field.String())
		field.Reset()
	}
	endRepetition := func() {
		endComponent()
		reps = append(reps, comps)
		comps = nil
	}
	endElement := func() {
		if inTag {
			flush()
			seg.Tag = field.String()
			field.Reset()
			inTag = false
			return
		}
		endRepetition()
		seg.Elements = append(seg.Elements, Element(reps))
		reps = nil
	}

	for {
		r, ok, err := s.next()
		if err != nil {
			return Segment{}, err
		}
		if !ok {
			if released {
				return Segment{}, &SyntaxError{Offset: s.offset, Msg: "release character at end of input"}
			}
			return Segment{}, &SyntaxError{Offset: s.offset, Msg: fmt.Sprintf("unterminated segment %q", seg.Tag+field.String())}
		}
		length++
		if s.opt.MaxSegmentLength > 0 && length > s.opt.MaxSegmentLength {
			return Segment{}, fmt.Errorf("%w: offset %d exceeds %d characters", ErrSegmentTooLong, seg.Offset, s.opt.MaxSegmentLength)
		}
		if !charset.IsValid(r) {
			return Segment{}, &SyntaxError{Offset: s.offset - int64(utf8.RuneLen(r)), Msg: fmt.Sprintf("invalid character %U", r)}
		}
		if released {
			flush()
			field.WriteRune(r)
			released = false
			continue
		}
		switch s.set.Class(r) {
		case charset.ReleaseCharacter:
			released = true
		case charset.SegmentDelimiter:
			blank.Reset()
			endElement()
			if seg.Tag == "" {
				return Segment{}, &SyntaxError{Offset: seg.Offset, Msg: "segment without tag"}
			}
			return seg, nil
		case charset.ElementDelimiter:
			endElement()
		case charset.ComponentDelimiter:
			if inTag {
				return Segment{}, &SyntaxError{Offset: seg.Offset, Msg: "component separator in segment tag"}
			}
			endComponent()
		case charset.ElementRepeater:
			if inTag {
				return Segment{}, &SyntaxError{Offset: seg.Offset, Msg: "repetition separator in segment tag"}
			}
			endRepetition()
		case charset.Whitespace:
			blank.WriteRune(r)
		default:
			flush()
			field.WriteRune(r)
		}
	}
}

// skipWhitespace drops whitespace between segments (line breaks after
// terminators). Whitespace bound as a delimiter is not skipped.
func (s *Scanner) skipWhitespace() error {
	for {
		head := s.peek(1)
		if len(head) == 0 {
			return nil
		}
		if c := s.set.Class(head[0]); c != charset.Whitespace && c != charset.Space {
			return nil
		}
		if _, _, err := s.next(); err != nil {
			return err
		}
	}
}

// peek returns up to n buffered code points without consuming them. The
// result aliases the buffer and is valid until the next read.
func (s *Scanner) peek(n int) []rune {
	for len(s.buf) < n {
		r, size, err := s.r.ReadRune()
		if err != nil {
			break
		}
		s.buf = append(s.buf, r)
		s.sizes = append(s.sizes, size)
	}
	if len(s.buf) < n {
		return s.buf
	}
	return s.buf[:n]
}

// next consumes one code point; ok is false at end of input.
func (s *Scanner) next() (rune, bool, error) {
	if len(s.buf) > 0 {
		r, size := s.buf[0], s.sizes[0]
		s.buf, s.sizes = s.buf[1:], s.sizes[1:]
		s.offset += int64(size)
		return r, true, nil
	}
	r, size, err := s.r.ReadRune()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, false, nil
		}
		return 0, false, err
	}
	s.offset += int64(size)
	return r, true, nil
}
