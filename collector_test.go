package staedi_test

import (
	"fmt"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/findanomaly/staedi"
	"github.com/findanomaly/staedi/schema"
)

func TestCollector_ElementError(t *testing.T) {
	c := staedi.NewCollector()
	c.Begin("N1", 4, 120)
	ref := schema.NewReference(schema.NewElement("66", schema.BaseIdentifier, 1, 2), 0, 1)
	c.ElementError(staedi.EventElementOccurrenceError, staedi.CodeConditionalRequiredDataElementMissing, ref, nil, 3, -1, -1)

	want := staedi.Issues{{
		Event:        staedi.EventElementOccurrenceError,
		Code:         staedi.CodeConditionalRequiredDataElementMissing,
		Segment:      "N1",
		SegmentIndex: 4,
		Reference:    "66",
		Element:      3,
		Component:    -1,
		Occurrence:   -1,
		Offset:       120,
		Message:      "conditionally required data element missing",
	}}
	if diff := cmp.Diff(want, c.Issues()); diff != "" {
		t.Fatalf("issues (-want +got):\n%s", diff)
	}
}

func TestCollector_SegmentError(t *testing.T) {
	c := staedi.NewCollector()
	c.Begin("N1", 2, 0)
	seg := schema.NewReference(schema.NewSegment("N2", nil), 0, 1)
	c.SegmentError("N2", seg, staedi.CodeConditionalRequiredSegmentMissing)
	iss := c.Issues()
	if len(iss) != 1 {
		t.Fatalf("issues = %d", len(iss))
	}
	if iss[0].Segment != "N2" || iss[0].Location() != "N2" || iss[0].Message != "conditionally required segment N2 missing" {
		t.Fatalf("unexpected issue: %+v", iss[0])
	}
}

func TestCollector_MaxIssues(t *testing.T) {
	c := staedi.NewCollector()
	c.MaxIssues = 2
	for i := 0; i < 5; i++ {
		c.ElementError(staedi.EventElementOccurrenceError, staedi.CodeTooManyDataElements, nil, nil, i+1, -1, -1)
	}
	if len(c.Issues()) != 2 || !c.Full() || !c.Truncated() {
		t.Fatalf("len=%d full=%v truncated=%v", len(c.Issues()), c.Full(), c.Truncated())
	}
	c.Reset()
	if c.Issues() != nil || c.Full() || c.Truncated() {
		t.Fatal("Reset must clear state")
	}
}

func TestIssue_Location(t *testing.T) {
	tests := []struct {
		it   staedi.Issue
		want string
	}{
		{staedi.Issue{Segment: "N1", Element: 3, Component: -1}, "N1-03"},
		{staedi.Issue{Segment: "N1", Element: 6, Component: 2}, "N1-06-2"},
		{staedi.Issue{Segment: "N1", Element: -1, Component: -1}, "N1"},
		{staedi.Issue{Reference: "/ISA/GS", Element: -1}, "/ISA/GS"},
	}
	for _, tt := range tests {
		if got := tt.it.Location(); got != tt.want {
			t.Errorf("Location() = %q, want %q", got, tt.want)
		}
	}
}

func TestIssues_ErrorAndAsIssues(t *testing.T) {
	var iss staedi.Issues
	for i := 1; i <= 5; i++ {
		iss = staedi.AppendIssues(iss, staedi.Issue{Code: staedi.CodeDataElementTooLong, Segment: "N1", Element: i})
	}
	want := "data_element_too_long at N1-01; data_element_too_long at N1-02; data_element_too_long at N1-03; ... (total 5)"
	if got := iss.Error(); got != want {
		t.Fatalf("Error() = %q", got)
	}
	wrapped := fmt.Errorf("validate: %w", iss)
	got, ok := staedi.AsIssues(wrapped)
	if !ok || len(got) != 5 {
		t.Fatalf("AsIssues = %v, %v", got, ok)
	}
	if _, ok := staedi.AsIssues(nil); ok {
		t.Fatal("AsIssues(nil) must fail")
	}
}

func TestIssue_JSON(t *testing.T) {
	it := staedi.Issue{Event: staedi.EventEnvelopeError, Code: staedi.CodeMissingTrailer, Reference: "/ISA", Element: -1, Component: -1, Occurrence: -1}
	b, err := json.Marshal(it)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	if m["event"] != "envelope_error" || m["code"] != "missing_trailer" {
		t.Fatalf("unexpected JSON: %s", b)
	}
}
