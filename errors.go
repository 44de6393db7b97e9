package staedi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/findanomaly/staedi/schema"
)

// ErrorCode identifies a validation outcome.
type ErrorCode string

// Validation codes.
const (
	// Syntax rule outcomes.
	CodeConditionalRequiredDataElementMissing ErrorCode = "conditional_required_data_element_missing"
	CodeConditionalRequiredSegmentMissing     ErrorCode = "conditional_required_segment_missing"
	CodeExclusionConditionViolated            ErrorCode = "exclusion_condition_violated"
	CodeSegmentExclusionConditionViolated     ErrorCode = "segment_exclusion_condition_violated"

	// Element and segment structure outcomes.
	CodeRequiredDataElementMissing ErrorCode = "required_data_element_missing"
	CodeTooManyDataElements        ErrorCode = "too_many_data_elements"
	CodeTooManyComponents          ErrorCode = "too_many_components"
	CodeTooManyRepetitions         ErrorCode = "too_many_repetitions"
	CodeDataElementTooLong         ErrorCode = "data_element_too_long"
	CodeDataElementTooShort        ErrorCode = "data_element_too_short"
	CodeSegmentNotInDefinition     ErrorCode = "segment_not_in_definition"

	// Envelope outcomes.
	CodeUnexpectedTrailer     ErrorCode = "unexpected_trailer"
	CodeMissingTrailer        ErrorCode = "missing_trailer"
	CodeControlNumberMismatch ErrorCode = "control_number_mismatch"
	CodeControlCountMismatch  ErrorCode = "control_count_mismatch"
)

// Event classifies where an error was detected.
type Event uint8

const (
	EventElementOccurrenceError Event = iota // An element or component slot is missing or superfluous.
	EventElementDataError                    // An element value is malformed.
	EventSegmentError                        // A whole segment is missing, unexpected or excluded.
	EventEnvelopeError                       // Interchange, group or message envelope is inconsistent.
)

func (e Event) String() string {
	switch e {
	case EventElementOccurrenceError:
		return "element_occurrence_error"
	case EventElementDataError:
		return "element_data_error"
	case EventSegmentError:
		return "segment_error"
	case EventEnvelopeError:
		return "envelope_error"
	default:
		return fmt.Sprintf("event(%d)", uint8(e))
	}
}

// MarshalText renders the event name in JSON output.
func (e Event) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// Handler receives validation events. It is the only observable output of the
// validation engine; implementations decide whether to collect, log or abort.
type Handler interface {
	// ElementError reports an element-level error. element and component are
	// 1-based positions (-1 when not applicable); occurrence is the 1-based
	// repetition index or -1.
	ElementError(event Event, code ErrorCode, ref, subRef *schema.Reference, element, component, occurrence int)
	// SegmentError reports a segment-level error.
	SegmentError(segmentID string, ref *schema.Reference, code ErrorCode)
}

// Issue represents a single validation entry.
type Issue struct {
	Event        Event     `json:"event"`
	Code         ErrorCode `json:"code"`
	Segment      string    `json:"segment,omitempty"`      // Tag of the segment being validated.
	SegmentIndex int       `json:"segmentIndex,omitempty"` // 1-based segment count in the stream (0 when unknown).
	Reference    string    `json:"reference,omitempty"`    // Id of the referenced schema type.
	SubReference string    `json:"subReference,omitempty"`
	Element      int       `json:"element"`    // 1-based, -1 when not applicable.
	Component    int       `json:"component"`  // 1-based, -1 when not applicable.
	Occurrence   int       `json:"occurrence"` // 1-based, -1 when not applicable.
	Offset       int64     `json:"offset"`     // Byte offset of the segment (-1 when unknown).
	Message      string    `json:"message,omitempty"`
}

// Location renders the X12-style reference designator of the issue, for
// example "N1" for segment errors, "N1-03" for elements and "N1-06-2" for
// components.
func (it Issue) Location() string {
	b := &strings.Builder{}
	b.WriteString(it.Segment)
	if it.Element > 0 {
		fmt.Fprintf(b, "-%02d", it.Element)
		if it.Component > 0 {
			fmt.Fprintf(b, "-%d", it.Component)
		}
	}
	if b.Len() == 0 {
		return it.Reference
	}
	return b.String()
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		// e.g. conditional_required_data_element_missing at N1-03
		fmt.Fprintf(b, "%s at %s", iss[i].Code, iss[i].Location())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
