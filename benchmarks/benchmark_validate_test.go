package benchmarks_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/findanomaly/staedi"
	"github.com/findanomaly/staedi/rules"
	"github.com/findanomaly/staedi/schema"
	"github.com/findanomaly/staedi/stream"
	"github.com/findanomaly/staedi/usage"
)

// ---- Helpers ----

const benchISA = "ISA*00*          *00*          *ZZ*SENDERID       *ZZ*RECEIVERID     *230101*1253*^*00501*000000905*1*T*:~"

const benchSchema = `
elements:
  "98": { base: identifier, minLength: 2, maxLength: 3 }
  "93": { base: string, minLength: 1, maxLength: 60 }
  "66": { base: identifier, minLength: 1, maxLength: 2 }
  "67": { base: string, minLength: 2, maxLength: 80 }
  "1234": { base: string, minLength: 1, maxLength: 10 }
  "1235": { base: numeric, minLength: 1, maxLength: 6 }
composites:
  C999:
    references:
      - { ref: "1234", minOccurs: 1 }
      - { ref: "1235" }
      - { ref: "1234" }
    syntax:
      - { type: paired, positions: [2, 3] }
segments:
  N1:
    references:
      - { ref: "98", minOccurs: 1 }
      - { ref: "93" }
      - { ref: "66" }
      - { ref: "67" }
      - { ref: C999 }
    syntax:
      - { type: required, positions: [2] }
      - { type: paired, positions: [3, 4] }
      - { type: exclusion, positions: [2, 5] }
`

func loadBenchSchema(tb testing.TB) *schema.Schema {
	tb.Helper()
	s, _, err := schema.LoadBytes([]byte(benchSchema), schema.FormatYAML)
	if err != nil {
		tb.Fatalf("schema load failed: %v", err)
	}
	return s
}

// generateInterchange returns one X12 interchange holding n N1 segments;
// every invalidEvery-th segment violates the paired rule (0 = none).
func generateInterchange(n, invalidEvery int) []byte {
	var buf bytes.Buffer
	buf.Grow(len(benchISA) + n*32)
	buf.WriteString(benchISA)
	buf.WriteString("GS*PO*S*R*20230101*1253*1*X*005010~ST*850*0001~")
	for i := 0; i < n; i++ {
		if invalidEvery > 0 && i%invalidEvery == 0 {
			fmt.Fprintf(&buf, "N1*ST*NAME %d*92~\n", i)
			continue
		}
		fmt.Fprintf(&buf, "N1*ST*NAME %d*92*%06d~\n", i, i)
	}
	fmt.Fprintf(&buf, "SE*%d*0001~GE*1*1~IEA*1*000000905~", n+2)
	return buf.Bytes()
}

// ---- Benchmarks ----

func BenchmarkValidate_Valid(b *testing.B) {
	s := loadBenchSchema(b)
	data := generateInterchange(1000, 0)
	sess, err := stream.NewSession(s, stream.Options{})
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		iss, err := sess.Validate(ctx, bytes.NewReader(data))
		if err != nil || len(iss) != 0 {
			b.Fatalf("unexpected result: %v %v", iss, err)
		}
	}
}

func BenchmarkValidate_MixedInvalid(b *testing.B) {
	s := loadBenchSchema(b)
	data := generateInterchange(1000, 10)
	sess, err := stream.NewSession(s, stream.Options{})
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		iss, err := sess.Validate(ctx, bytes.NewReader(data))
		if err != nil || len(iss) != 100 {
			b.Fatalf("unexpected result: %d issues, %v", len(iss), err)
		}
	}
}

type discard struct{}

func (discard) ElementError(staedi.Event, staedi.ErrorCode, *schema.Reference, *schema.Reference, int, int, int) {
}
func (discard) SegmentError(string, *schema.Reference, staedi.ErrorCode) {}

func BenchmarkValidateStructure(b *testing.B) {
	s := loadBenchSchema(b)
	n1, _ := s.Segment("N1")
	tree := usage.New(nil)
	root := tree.Skeleton(schema.NewReference(n1, 0, 0))
	for _, pos := range []int{1, 2, 3} {
		child, _ := root.ChildAt(pos)
		child.SetUsed(true)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rules.ValidateStructure(root, discard{})
	}
}
