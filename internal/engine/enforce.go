package engine

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Enforcement wrapper for SegmentSource that checks interchange envelopes
// (header/trailer pairing, control counts and references) and applies size
// limits in a streaming fashion.

// SegmentSource is the minimal interface consumed by the validator.
type SegmentSource interface {
	Next() (Segment, error)
	Offset() int64
}

// SimpleIssue is a lightweight envelope finding.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
	Offset  int64
}

// Envelope issue codes.
const (
	CodeUnexpectedTrailer     = "unexpected_trailer"
	CodeMissingTrailer        = "missing_trailer"
	CodeControlNumberMismatch = "control_number_mismatch"
	CodeControlCountMismatch  = "control_count_mismatch"
	CodeTruncated             = "truncated"
)

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	MaxSegments int
	MaxBytes    int64
	// IssueSink receives envelope issues. If nil, issues are not reported
	// unless they are fatal.
	IssueSink func(SimpleIssue)
	// FailFast stops at the first envelope issue, returning it as an error.
	FailFast bool
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.SimpleIssue.Message }

type envelope struct {
	header, trailer string
	// control and count locate the header's control reference and the
	// trailer's count and reference elements (1-based).
	control, count, trailerControl int
	// countsSegments is true when the trailer counts segments rather than
	// nested envelopes.
	countsSegments bool
}

var envelopes = []envelope{
	{header: "ISA", trailer: "IEA", control: 13, count: 1, trailerControl: 2},
	{header: "GS", trailer: "GE", control: 6, count: 1, trailerControl: 2},
	{header: "ST", trailer: "SE", control: 2, count: 1, trailerControl: 2, countsSegments: true},
	{header: "UNB", trailer: "UNZ", control: 5, count: 1, trailerControl: 2},
	{header: "UNG", trailer: "UNE", control: 5, count: 1, trailerControl: 2},
	{header: "UNH", trailer: "UNT", control: 1, count: 1, trailerControl: 2, countsSegments: true},
}

type envFrame struct {
	env      *envelope
	control  string
	children int
	segments int
	offset   int64
}

// WrapWithEnforcement returns a SegmentSource that checks envelope structure
// and enforces the segment and byte limits.
func WrapWithEnforcement(inner SegmentSource, opt EnforceOptions) SegmentSource {
	return &enforcingSource{inner: inner, opt: opt}
}

type enforcingSource struct {
	inner    SegmentSource
	opt      EnforceOptions
	stack    []envFrame
	segments int
}

func (e *enforcingSource) Offset() int64 { return e.inner.Offset() }

func (e *enforcingSource) Next() (Segment, error) {
	seg, err := e.inner.Next()
	if err == io.EOF {
		for i := len(e.stack) - 1; i >= 0; i-- {
			f := e.stack[i]
			si := SimpleIssue{
				Code:    CodeMissingTrailer,
				Path:    e.path(i + 1),
				Message: fmt.Sprintf("%s opened at offset %d has no %s", f.env.header, f.offset, f.env.trailer),
				Offset:  e.Offset(),
			}
			if ierr := e.report(si); ierr != nil {
				e.stack = e.stack[:i]
				return Segment{}, ierr
			}
		}
		e.stack = nil
		return Segment{}, io.EOF
	}
	if err != nil {
		return Segment{}, err
	}

	e.segments++
	if e.opt.MaxSegments > 0 && e.segments > e.opt.MaxSegments {
		si := SimpleIssue{Code: CodeTruncated, Path: e.path(len(e.stack)), Message: "max segments exceeded", Offset: seg.Offset}
		if e.opt.IssueSink != nil {
			e.opt.IssueSink(si)
		}
		return Segment{}, IssueError{si}
	}
	if e.opt.MaxBytes > 0 {
		if off := e.Offset(); off > e.opt.MaxBytes {
			si := SimpleIssue{Code: CodeTruncated, Path: e.path(len(e.stack)), Message: "max bytes exceeded", Offset: seg.Offset}
			if e.opt.IssueSink != nil {
				e.opt.IssueSink(si)
			}
			return Segment{}, IssueError{si}
		}
	}

	for i := range e.stack {
		e.stack[i].segments++
	}
	if env := lookupEnvelope(seg.Tag, true); env != nil {
		if n := len(e.stack); n > 0 {
			e.stack[n-1].children++
		}
		e.stack = append(e.stack, envFrame{env: env, control: element(seg, env.control), segments: 1, offset: seg.Offset})
		return seg, nil
	}
	if env := lookupEnvelope(seg.Tag, false); env != nil {
		if err := e.closeEnvelope(env, seg); err != nil {
			return Segment{}, err
		}
	}
	return seg, nil
}

func (e *enforcingSource) closeEnvelope(env *envelope, seg Segment) error {
	n := len(e.stack)
	if n == 0 || e.stack[n-1].env != env {
		si := SimpleIssue{
			Code:    CodeUnexpectedTrailer,
			Path:    e.path(n) + "/" + seg.Tag,
			Message: fmt.Sprintf("%s without matching %s", seg.Tag, env.header),
			Offset:  seg.Offset,
		}
		return e.report(si)
	}
	f := e.stack[n-1]
	path := e.path(n)
	e.stack = e.stack[:n-1]

	want := f.children
	if env.countsSegments {
		want = f.segments
	}
	if got := element(seg, env.count); got != strconv.Itoa(want) {
		si := SimpleIssue{
			Code:    CodeControlCountMismatch,
			Path:    path,
			Message: fmt.Sprintf("%s%02d is %q, counted %d", seg.Tag, env.count, got, want),
			Offset:  seg.Offset,
		}
		if err := e.report(si); err != nil {
			return err
		}
	}
	if got := element(seg, env.trailerControl); strings.TrimSpace(got) != strings.TrimSpace(f.control) {
		si := SimpleIssue{
			Code:    CodeControlNumberMismatch,
			Path:    path,
			Message: fmt.Sprintf("%s%02d is %q, %s has %q", seg.Tag, env.trailerControl, got, env.header, f.control),
			Offset:  seg.Offset,
		}
		if err := e.report(si); err != nil {
			return err
		}
	}
	return nil
}

func (e *enforcingSource) report(si SimpleIssue) error {
	if e.opt.IssueSink != nil {
		e.opt.IssueSink(si)
	}
	if e.opt.FailFast {
		return IssueError{si}
	}
	return nil
}

// path renders the open envelopes below depth as "/ISA/GS/ST".
func (e *enforcingSource) path(depth int) string {
	if depth == 0 {
		return "/"
	}
	var b strings.Builder
	for _, f := range e.stack[:depth] {
		b.WriteByte('/')
		b.WriteString(f.env.header)
	}
	return b.String()
}

func lookupEnvelope(tag string, header bool) *envelope {
	for i := range envelopes {
		env := &envelopes[i]
		if (header && env.header == tag) || (!header && env.trailer == tag) {
			return env
		}
	}
	return nil
}

// element returns the first component of the element at a 1-based position.
func element(seg Segment, pos int) string {
	if pos < 1 || pos > len(seg.Elements) {
		return ""
	}
	return seg.Elements[pos-1].Value()
}
