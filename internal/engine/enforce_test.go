package engine

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/findanomaly/staedi/charset"
	"github.com/google/go-cmp/cmp"
)

func enforceAll(input string, opt EnforceOptions) ([]SimpleIssue, error) {
	var issues []SimpleIssue
	opt.IssueSink = func(si SimpleIssue) { issues = append(issues, si) }
	src := WrapWithEnforcement(NewScanner(strings.NewReader(input), charset.NewSet(), ScanOptions{}), opt)
	for {
		_, err := src.Next()
		if err == io.EOF {
			return issues, nil
		}
		if err != nil {
			return issues, err
		}
	}
}

func issueCodes(issues []SimpleIssue) []string {
	out := make([]string, 0, len(issues))
	for _, si := range issues {
		out = append(out, si.Code+" "+si.Path)
	}
	return out
}

const x12Body = "GS*PO*S*R*20230101*1253*7*X*005010~ST*850*0001~BEG*00*SA*1~SE*3*0001~GE*1*7~IEA*1*000000905~"

func TestEnforce_WellFormedX12(t *testing.T) {
	issues, err := enforceAll(isa00501+x12Body, EnforceOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issueCodes(issues))
	}
}

func TestEnforce_WellFormedEDIFACT(t *testing.T) {
	input := "UNB+UNOA:3+S+R+230101:1253+REF1'UNH+M1+ORDERS:D:96A:UN'BGM+220+1'UNT+3+M1'" +
		"UNH+M2+ORDERS:D:96A:UN'UNT+2+M2'UNZ+2+REF1'"
	issues, err := enforceAll(input, EnforceOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issueCodes(issues))
	}
}

func TestEnforce_Mismatches(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "segment count",
			input: isa00501 + strings.Replace(x12Body, "SE*3*0001", "SE*4*0001", 1),
			want:  []string{CodeControlCountMismatch + " /ISA/GS/ST"},
		},
		{
			name:  "transaction control number",
			input: isa00501 + strings.Replace(x12Body, "SE*3*0001", "SE*3*0002", 1),
			want:  []string{CodeControlNumberMismatch + " /ISA/GS/ST"},
		},
		{
			name:  "group count",
			input: isa00501 + strings.Replace(x12Body, "GE*1*7", "GE*2*7", 1),
			want:  []string{CodeControlCountMismatch + " /ISA/GS"},
		},
		{
			name:  "missing trailers",
			input: isa00501 + "GS*PO*S*R*20230101*1253*7*X*005010~ST*850*0001~",
			want: []string{
				CodeMissingTrailer + " /ISA/GS/ST",
				CodeMissingTrailer + " /ISA/GS",
				CodeMissingTrailer + " /ISA",
			},
		},
		{
			name:  "stray trailer",
			input: isa00501 + "SE*1*0001~IEA*0*000000905~",
			want:  []string{CodeUnexpectedTrailer + " /ISA/SE"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues, err := enforceAll(tt.input, EnforceOptions{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, issueCodes(issues)); diff != "" {
				t.Fatalf("issues (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEnforce_FailFast(t *testing.T) {
	input := isa00501 + strings.Replace(x12Body, "SE*3*0001", "SE*9*0002", 1)
	issues, err := enforceAll(input, EnforceOptions{FailFast: true})
	var ie IssueError
	if !errors.As(err, &ie) || ie.Code != CodeControlCountMismatch {
		t.Fatalf("err = %v, want count mismatch", err)
	}
	if len(issues) != 1 {
		t.Fatalf("issues = %v, want exactly one", issueCodes(issues))
	}
}

func TestEnforce_Limits(t *testing.T) {
	_, err := enforceAll(isa00501+x12Body, EnforceOptions{MaxSegments: 3})
	var ie IssueError
	if !errors.As(err, &ie) || ie.Code != CodeTruncated {
		t.Fatalf("MaxSegments: err = %v", err)
	}
	_, err = enforceAll(isa00501+x12Body, EnforceOptions{MaxBytes: 120})
	if !errors.As(err, &ie) || ie.Message != "max bytes exceeded" {
		t.Fatalf("MaxBytes: err = %v", err)
	}
}
