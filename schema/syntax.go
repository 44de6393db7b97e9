package schema

import (
	"fmt"
	"strings"
)

// RuleKind is one of the six positional syntax rule kinds.
type RuleKind uint8

const (
	RuleConditional RuleKind = iota
	RuleExclusion
	RuleList
	RulePaired
	RuleRequired
	RuleSingle
)

func (k RuleKind) String() string {
	switch k {
	case RuleConditional:
		return "conditional"
	case RuleExclusion:
		return "exclusion"
	case RuleList:
		return "list"
	case RulePaired:
		return "paired"
	case RuleRequired:
		return "required"
	case RuleSingle:
		return "single"
	default:
		return fmt.Sprintf("rule(%d)", uint8(k))
	}
}

// ruleLetters are the syntax note letters indexed by RuleKind.
var ruleLetters = [...]byte{
	RuleConditional: 'C',
	RuleExclusion:   'E',
	RuleList:        'L',
	RulePaired:      'P',
	RuleRequired:    'R',
	RuleSingle:      'S',
}

// ParseRuleKind accepts a rule name ("paired") or its X12 syntax note letter
// ("P"). Matching is case-insensitive.
func ParseRuleKind(s string) (RuleKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "conditional", "c":
		return RuleConditional, nil
	case "exclusion", "e":
		return RuleExclusion, nil
	case "list", "l":
		return RuleList, nil
	case "paired", "p":
		return RulePaired, nil
	case "required", "r":
		return RuleRequired, nil
	case "single":
		return RuleSingle, nil
	}
	return 0, fmt.Errorf("schema: unknown syntax rule type %q", s)
}

// SyntaxRule is a positional co-occurrence constraint over the children of a
// complex type. Positions are 1-based and kept in declaration order; the first
// declared position is the rule's anchor.
type SyntaxRule struct {
	kind      RuleKind
	positions []int
}

// NewSyntaxRule builds a rule. The positions are copied.
func NewSyntaxRule(kind RuleKind, positions ...int) SyntaxRule {
	return SyntaxRule{kind: kind, positions: append([]int(nil), positions...)}
}

func (r SyntaxRule) Kind() RuleKind { return r.kind }

// Len is the number of declared positions.
func (r SyntaxRule) Len() int { return len(r.positions) }

// At returns the i-th declared position.
func (r SyntaxRule) At(i int) int { return r.positions[i] }

// Anchor returns the first declared position, or 0 for an empty rule.
func (r SyntaxRule) Anchor() int {
	if len(r.positions) == 0 {
		return 0
	}
	return r.positions[0]
}

// Positions returns a copy of the declared positions.
func (r SyntaxRule) Positions() []int { return append([]int(nil), r.positions...) }

// String renders the rule in X12 syntax-note style, e.g. "P0304".
func (r SyntaxRule) String() string {
	b := &strings.Builder{}
	letter := byte('?')
	if int(r.kind) < len(ruleLetters) {
		letter = ruleLetters[r.kind]
	}
	b.WriteByte(letter)
	for _, p := range r.positions {
		fmt.Fprintf(b, "%02d", p)
	}
	return b.String()
}
