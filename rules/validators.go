package rules

import (
	staedi "github.com/findanomaly/staedi"
	"github.com/findanomaly/staedi/schema"
	"github.com/findanomaly/staedi/usage"
)

// requiredValidator: every declared position must be used.
type requiredValidator struct{}

func (requiredValidator) Kind() schema.RuleKind { return schema.RuleRequired }
func (requiredValidator) sealed()               {}

func (requiredValidator) Validate(rule schema.SyntaxRule, structure usage.Node, h staedi.Handler) {
	if scan(rule, structure).count == rule.Len() {
		return
	}
	for i := 0; i < rule.Len(); i++ {
		if p := rule.At(i); !isUsed(structure, p) {
			report(conditionSignal, structure, p, h)
		}
	}
}

// exclusionValidator: at most one declared position may be used.
type exclusionValidator struct{}

func (exclusionValidator) Kind() schema.RuleKind { return schema.RuleExclusion }
func (exclusionValidator) sealed()               {}

func (exclusionValidator) Validate(rule schema.SyntaxRule, structure usage.Node, h staedi.Handler) {
	if scan(rule, structure).count <= 1 {
		return
	}
	tally := 0
	for i := 0; i < rule.Len(); i++ {
		p := rule.At(i)
		if isUsed(structure, p) {
			tally++
			if tally > 1 {
				report(exclusionSignal, structure, p, h)
			}
		}
	}
}

// conditionValidator: when the anchor is used, all other positions must be.
type conditionValidator struct{}

func (conditionValidator) Kind() schema.RuleKind { return schema.RuleConditional }
func (conditionValidator) sealed()               {}

func (conditionValidator) Validate(rule schema.SyntaxRule, structure usage.Node, h staedi.Handler) {
	st := scan(rule, structure)
	if !st.anchorUsed || st.count == rule.Len() {
		return
	}
	for i := 1; i < rule.Len(); i++ {
		if p := rule.At(i); !isUsed(structure, p) {
			report(conditionSignal, structure, p, h)
		}
	}
}

// listValidator: when the anchor is used, at least one other position must be.
// The violation is reported once, against the first non-anchor position.
type listValidator struct{}

func (listValidator) Kind() schema.RuleKind { return schema.RuleList }
func (listValidator) sealed()               {}

func (listValidator) Validate(rule schema.SyntaxRule, structure usage.Node, h staedi.Handler) {
	if rule.Len() < 2 {
		return
	}
	st := scan(rule, structure)
	if !st.anchorUsed || st.count > 1 {
		return
	}
	report(conditionSignal, structure, rule.At(1), h)
}

// pairedValidator: all declared positions are used, or none is.
type pairedValidator struct{}

func (pairedValidator) Kind() schema.RuleKind { return schema.RulePaired }
func (pairedValidator) sealed()               {}

func (pairedValidator) Validate(rule schema.SyntaxRule, structure usage.Node, h staedi.Handler) {
	st := scan(rule, structure)
	if st.count == 0 || st.count == rule.Len() {
		return
	}
	for i := 0; i < rule.Len(); i++ {
		if p := rule.At(i); !isUsed(structure, p) {
			report(conditionSignal, structure, p, h)
		}
	}
}

// singleValidator: at most one position may be used, and only the anchor.
type singleValidator struct{}

func (singleValidator) Kind() schema.RuleKind { return schema.RuleSingle }
func (singleValidator) sealed()               {}

func (singleValidator) Validate(rule schema.SyntaxRule, structure usage.Node, h staedi.Handler) {
	st := scan(rule, structure)
	if st.count == 0 || (st.count == 1 && st.anchorUsed) {
		return
	}
	tally := 0
	for i := 0; i < rule.Len(); i++ {
		p := rule.At(i)
		if !isUsed(structure, p) {
			continue
		}
		tally++
		if tally > 1 || i != 0 {
			report(exclusionSignal, structure, p, h)
		}
	}
}
