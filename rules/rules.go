// Package rules enforces positional syntax rules (X12 syntax notes, EDIFACT
// dependency notes) over the children of a structure occurrence.
//
// There is one stateless strategy per schema.RuleKind. Strategies retain
// nothing between calls and may be shared by goroutines validating
// independent usage trees; a tree must not be mutated while it is validated.
package rules

import (
	staedi "github.com/findanomaly/staedi"
	"github.com/findanomaly/staedi/schema"
	"github.com/findanomaly/staedi/usage"
)

// Validator checks one syntax rule against one structure occurrence and
// reports violations to the handler. The set of validators is closed.
type Validator interface {
	Validate(rule schema.SyntaxRule, structure usage.Node, h staedi.Handler)
	Kind() schema.RuleKind
	sealed()
}

var validators = [...]Validator{
	schema.RuleConditional: conditionValidator{},
	schema.RuleExclusion:   exclusionValidator{},
	schema.RuleList:        listValidator{},
	schema.RulePaired:      pairedValidator{},
	schema.RuleRequired:    requiredValidator{},
	schema.RuleSingle:      singleValidator{},
}

// For returns the validator for a rule kind.
func For(kind schema.RuleKind) (Validator, bool) {
	if int(kind) >= len(validators) {
		return nil, false
	}
	return validators[kind], true
}

// Validate runs rule against structure. Rules of an unknown kind are ignored.
func Validate(rule schema.SyntaxRule, structure usage.Node, h staedi.Handler) {
	if v, ok := For(rule.Kind()); ok {
		v.Validate(rule, structure, h)
	}
}

// ValidateStructure runs every syntax rule declared on the structure's
// schema type, in declaration order.
func ValidateStructure(structure usage.Node, h staedi.Handler) {
	c, ok := structure.ComplexType()
	if !ok {
		return
	}
	for _, rule := range c.SyntaxRules() {
		Validate(rule, structure, h)
	}
}

// status is the outcome of a single pass over a rule's positions.
type status struct {
	count      int  // used positions
	anchorUsed bool // first declared position used
}

func scan(rule schema.SyntaxRule, structure usage.Node) status {
	var st status
	for i := 0; i < rule.Len(); i++ {
		if isUsed(structure, rule.At(i)) {
			st.count++
			if i == 0 {
				st.anchorUsed = true
			}
		}
	}
	return st
}

// isUsed treats positions beyond the children as unused.
func isUsed(structure usage.Node, position int) bool {
	child, ok := structure.ChildAt(position)
	return ok && child.Used()
}

// signal selects the codes a family of rules reports with.
type signal struct {
	element staedi.ErrorCode
	segment staedi.ErrorCode
}

var (
	conditionSignal = signal{
		element: staedi.CodeConditionalRequiredDataElementMissing,
		segment: staedi.CodeConditionalRequiredSegmentMissing,
	}
	exclusionSignal = signal{
		element: staedi.CodeExclusionConditionViolated,
		segment: staedi.CodeSegmentExclusionConditionViolated,
	}
)

// maxLoopDepth bounds the descent to a loop's first segment.
const maxLoopDepth = 32

// report emits one violation for position. Segment and composite structures
// produce element occurrence errors; loop structures produce a segment error
// pinned to the first segment of the offending child.
func report(sig signal, structure usage.Node, position int, h staedi.Handler) {
	ref := referenceAt(structure, position)
	switch {
	case structure.IsKind(schema.KindSegment, schema.KindComposite):
		h.ElementError(staedi.EventElementOccurrenceError, sig.element, ref, nil,
			elementPosition(structure, position), componentPosition(structure, position), -1)
	case structure.IsKind(schema.KindLoop):
		if ref == nil {
			return
		}
		target := firstSegment(ref)
		h.SegmentError(target.ID(), target, sig.segment)
	}
}

// referenceAt prefers the occurrence's own link and falls back to the schema
// when the occurrence has no child at position.
func referenceAt(structure usage.Node, position int) *schema.Reference {
	if child, ok := structure.ChildAt(position); ok && child.Link() != nil {
		return child.Link()
	}
	if c, ok := structure.ComplexType(); ok {
		return c.Reference(position)
	}
	return nil
}

func firstSegment(ref *schema.Reference) *schema.Reference {
	for depth := 0; depth < maxLoopDepth; depth++ {
		c, ok := ref.Type().(*schema.ComplexType)
		if !ok || c.Kind() != schema.KindLoop || len(c.References()) == 0 {
			return ref
		}
		ref = c.References()[0]
	}
	return ref
}

func elementPosition(structure usage.Node, position int) int {
	if structure.IsKind(schema.KindComposite) {
		return structure.Position()
	}
	return position
}

func componentPosition(structure usage.Node, position int) int {
	if structure.IsKind(schema.KindComposite) {
		return position
	}
	return -1
}
