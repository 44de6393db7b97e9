// Package stream validates EDI interchanges against a schema, segment by
// segment, reporting every finding as a staedi.Issue.
package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/findanomaly/staedi"
	"github.com/findanomaly/staedi/charset"
	"github.com/findanomaly/staedi/internal/engine"
	"github.com/findanomaly/staedi/schema"
	"github.com/findanomaly/staedi/usage"
)

// ErrLimitExceeded is returned when the input exceeds Options.MaxSegments or
// Options.MaxBytes.
var ErrLimitExceeded = errors.New("stream: limit exceeded")

// Options controls a Session. The zero value validates UTF-8 (or, for
// EDIFACT, the repertoire named in UNB) without limits and without logging.
type Options struct {
	// Encoding is an EDIFACT syntax identifier (UNOA, UNOC, UNOY, ...) or an
	// IANA charset name. Empty selects the encoding from the UNB header and
	// falls back to UTF-8.
	Encoding string
	// FailFast stops after the first segment that produced an issue.
	FailFast bool
	// MaxIssues stops validation once this many issues were collected
	// (0 = unlimited).
	MaxIssues int
	// MaxSegmentLength limits the characters of one segment (0 = unlimited).
	MaxSegmentLength int
	// MaxSegments and MaxBytes bound the input (0 = unlimited).
	MaxSegments int
	MaxBytes    int64
	// Log receives debug records about dialect detection and progress.
	Log *slog.Logger
}

// Session validates interchanges against one schema. It owns the
// classification table reprogrammed by each interchange header and is not
// safe for concurrent use; create one Session per goroutine. The schema may
// be shared.
type Session struct {
	opt    Options
	enc    encoding.Encoding
	log    *slog.Logger
	set    *charset.Set
	binder *binder
}

// NewSession returns a Session validating against s.
func NewSession(s *schema.Schema, opt Options) (*Session, error) {
	if s == nil {
		return nil, errors.New("stream: nil schema")
	}
	sess := &Session{
		opt: opt,
		log: opt.Log,
		set: charset.NewSet(),
		binder: &binder{
			schema: s,
			tree:   usage.New(nil),
			links:  make(map[string]*schema.Reference),
		},
	}
	if sess.log == nil {
		sess.log = slog.New(slog.DiscardHandler)
	}
	if opt.Encoding != "" {
		enc, err := lookupEncoding(opt.Encoding)
		if err != nil {
			return nil, err
		}
		sess.enc = enc
	}
	return sess, nil
}

// Validate reads one input stream (one or more interchanges) and returns the
// issues found. The returned error reports operational failures only:
// malformed input, read errors, exceeded limits and cancellation. Issues
// collected before the failure are returned alongside it.
func (s *Session) Validate(ctx context.Context, r io.Reader) (staedi.Issues, error) {
	br := bufio.NewReader(r)
	enc := s.enc
	if enc == nil {
		enc = unicode.UTF8
		if id := sniffSyntaxIdentifier(br); id != "" {
			if e, err := lookupEncoding(id); err == nil {
				enc = e
				s.log.Debug("encoding selected from syntax identifier", "identifier", id)
			}
		}
	}

	col := staedi.NewCollector()
	col.MaxIssues = s.opt.MaxIssues
	scanner := engine.NewScanner(transform.NewReader(br, enc.NewDecoder()), s.set, engine.ScanOptions{
		MaxSegmentLength: s.opt.MaxSegmentLength,
		OnDialect: func(d engine.Dialect) {
			s.log.Debug("interchange dialect",
				"standard", string(d.Standard),
				"version", d.Version,
				"segment", string(d.Delimiters.Segment),
				"element", string(d.Delimiters.Element),
				"component", string(d.Delimiters.Component))
		},
	})
	src := engine.WrapWithEnforcement(scanner, engine.EnforceOptions{
		MaxSegments: s.opt.MaxSegments,
		MaxBytes:    s.opt.MaxBytes,
		FailFast:    s.opt.FailFast,
		IssueSink: func(si engine.SimpleIssue) {
			if si.Code == engine.CodeTruncated {
				return
			}
			col.EnvelopeError(staedi.ErrorCode(si.Code), si.Path, si.Offset)
		},
	})

	index := 0
	for {
		if err := ctx.Err(); err != nil {
			return col.Issues(), err
		}
		seg, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var ie engine.IssueError
			if errors.As(err, &ie) {
				if ie.Code == engine.CodeTruncated {
					return col.Issues(), fmt.Errorf("%w: %s", ErrLimitExceeded, ie.Message)
				}
				s.log.Debug("stopped on envelope issue", "code", ie.Code, "path", ie.Path)
				break
			}
			return col.Issues(), err
		}
		index++
		col.Begin(seg.Tag, index, seg.Offset)
		before := len(col.Issues())
		s.binder.bind(seg, col)
		if s.opt.FailFast && len(col.Issues()) > before {
			s.log.Debug("stopped on first failing segment", "segment", seg.Tag, "index", index)
			break
		}
		if col.Full() {
			s.log.Debug("issue limit reached", "max", s.opt.MaxIssues)
			break
		}
	}
	s.log.Debug("validation finished", "segments", index, "issues", len(col.Issues()))
	return col.Issues(), nil
}
