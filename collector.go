package staedi

import (
	"github.com/findanomaly/staedi/i18n"
	"github.com/findanomaly/staedi/schema"
)

// Collector is a Handler that accumulates Issues. Callers position it on the
// segment being validated with Begin so that element-level events carry the
// segment tag and offset.
type Collector struct {
	// MaxIssues stops collection after this many issues (0 = unlimited).
	MaxIssues int

	issues    Issues
	truncated bool
	segment   string
	index     int
	offset    int64
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector { return &Collector{offset: -1} }

// Begin records the segment that subsequent events refer to.
func (c *Collector) Begin(tag string, index int, offset int64) {
	c.segment, c.index, c.offset = tag, index, offset
}

// ElementError implements Handler.
func (c *Collector) ElementError(event Event, code ErrorCode, ref, subRef *schema.Reference, element, component, occurrence int) {
	c.add(Issue{
		Event:        event,
		Code:         code,
		Segment:      c.segment,
		SegmentIndex: c.index,
		Reference:    ref.ID(),
		SubReference: subRef.ID(),
		Element:      element,
		Component:    component,
		Occurrence:   occurrence,
		Offset:       c.offset,
		Message:      i18n.T(string(code), map[string]string{"reference": ref.ID()}),
	})
}

// SegmentError implements Handler.
func (c *Collector) SegmentError(segmentID string, ref *schema.Reference, code ErrorCode) {
	c.add(Issue{
		Event:        EventSegmentError,
		Code:         code,
		Segment:      segmentID,
		SegmentIndex: c.index,
		Reference:    ref.ID(),
		Element:      -1,
		Component:    -1,
		Occurrence:   -1,
		Offset:       c.offset,
		Message:      i18n.T(string(code), map[string]string{"segment": segmentID}),
	})
}

// EnvelopeError records an envelope finding at path ("/ISA/GS/ST").
func (c *Collector) EnvelopeError(code ErrorCode, path string, offset int64) {
	c.add(Issue{
		Event:        EventEnvelopeError,
		Code:         code,
		Segment:      c.segment,
		SegmentIndex: c.index,
		Reference:    path,
		Element:      -1,
		Component:    -1,
		Occurrence:   -1,
		Offset:       offset,
		Message:      i18n.T(string(code), map[string]string{"path": path}),
	})
}

func (c *Collector) add(it Issue) {
	if c.MaxIssues > 0 && len(c.issues) >= c.MaxIssues {
		c.truncated = true
		return
	}
	c.issues = append(c.issues, it)
}

// Issues returns the collected issues (nil when none).
func (c *Collector) Issues() Issues { return c.issues }

// Full reports whether MaxIssues has been reached.
func (c *Collector) Full() bool { return c.MaxIssues > 0 && len(c.issues) >= c.MaxIssues }

// Truncated reports whether issues were dropped because of MaxIssues.
func (c *Collector) Truncated() bool { return c.truncated }

// Reset clears collected issues and the current segment.
func (c *Collector) Reset() {
	c.issues, c.truncated = nil, false
	c.segment, c.index, c.offset = "", 0, -1
}

var _ Handler = (*Collector)(nil)
