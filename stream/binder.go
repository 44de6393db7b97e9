package stream

import (
	"strings"
	"unicode/utf8"

	"github.com/findanomaly/staedi"
	"github.com/findanomaly/staedi/internal/engine"
	"github.com/findanomaly/staedi/rules"
	"github.com/findanomaly/staedi/schema"
	"github.com/findanomaly/staedi/usage"
)

// serviceSegments are envelope segments. They are checked by the envelope
// enforcement and only bound when the schema declares them.
var serviceSegments = map[string]bool{
	"ISA": true, "IEA": true, "GS": true, "GE": true, "ST": true, "SE": true, "TA1": true,
	"UNA": true, "UNB": true, "UNZ": true, "UNG": true, "UNE": true, "UNH": true, "UNT": true,
}

// binder maps scanned segments onto their schema types, records which slots
// are populated in a reusable usage tree and reports structural findings.
type binder struct {
	schema *schema.Schema
	tree   *usage.Tree
	links  map[string]*schema.Reference
}

func (b *binder) link(tag string) (*schema.Reference, bool) {
	if ref, ok := b.links[tag]; ok {
		return ref, true
	}
	st, ok := b.schema.Segment(tag)
	if !ok {
		return nil, false
	}
	ref := schema.NewReference(st, 0, 0)
	b.links[tag] = ref
	return ref, true
}

func (b *binder) bind(seg engine.Segment, h staedi.Handler) {
	link, ok := b.link(seg.Tag)
	if !ok {
		if !serviceSegments[seg.Tag] {
			h.SegmentError(seg.Tag, nil, staedi.CodeSegmentNotInDefinition)
		}
		return
	}
	root := b.tree.Skeleton(link)
	root.SetUsed(true)
	st, _ := root.ComplexType()
	refs := st.References()

	for i, ref := range refs {
		var el engine.Element
		if i < len(seg.Elements) {
			el = seg.Elements[i]
		}
		b.bindElement(root.Child(i), ref, i+1, el, h)
	}
	for i := len(refs); i < len(seg.Elements); i++ {
		if seg.Elements[i].Used() {
			h.ElementError(staedi.EventElementOccurrenceError, staedi.CodeTooManyDataElements, nil, nil, i+1, -1, -1)
			break
		}
	}
	rules.ValidateStructure(root, h)
}

func (b *binder) bindElement(node usage.Node, ref *schema.Reference, pos int, el engine.Element, h staedi.Handler) {
	if !el.Used() {
		if ref.Required() {
			h.ElementError(staedi.EventElementOccurrenceError, staedi.CodeRequiredDataElementMissing, ref, nil, pos, -1, -1)
		}
		return
	}
	node.SetUsed(true)

	repeatable := ref.MaxOccurs() != 1
	if limit := ref.MaxOccurs(); limit > 0 && len(el) > limit {
		h.ElementError(staedi.EventElementOccurrenceError, staedi.CodeTooManyRepetitions, ref, nil, pos, -1, limit+1)
	}
	composite, isComposite := node.ComplexType()
	for r, rep := range el {
		occurrence := -1
		if repeatable {
			occurrence = r + 1
		}
		if isComposite {
			b.bindComposite(node, composite, ref, pos, rep, occurrence, h)
			continue
		}
		if len(rep) > 1 && anyUsed(rep[1:]) {
			h.ElementError(staedi.EventElementOccurrenceError, staedi.CodeTooManyComponents, ref, nil, pos, 2, occurrence)
		}
		if et, ok := ref.Type().(*schema.ElementType); ok && len(rep) > 0 {
			checkLength(et, rep[0], ref, nil, pos, -1, occurrence, h)
		}
	}
}

// bindComposite binds one repetition of a composite element. Component flags
// are rewritten for each repetition and the composite's syntax rules run
// against every used repetition.
func (b *binder) bindComposite(node usage.Node, c *schema.ComplexType, ref *schema.Reference, pos int, rep []string, occurrence int, h staedi.Handler) {
	if !anyUsed(rep) {
		return
	}
	subs := c.References()
	for j, sub := range subs {
		comp := node.Child(j)
		value := ""
		if j < len(rep) {
			value = rep[j]
		}
		comp.SetUsed(value != "")
		if value == "" {
			if sub.Required() {
				h.ElementError(staedi.EventElementOccurrenceError, staedi.CodeRequiredDataElementMissing, ref, sub, pos, j+1, occurrence)
			}
			continue
		}
		if et, ok := sub.Type().(*schema.ElementType); ok {
			checkLength(et, value, ref, sub, pos, j+1, occurrence, h)
		}
	}
	if len(rep) > len(subs) && anyUsed(rep[len(subs):]) {
		h.ElementError(staedi.EventElementOccurrenceError, staedi.CodeTooManyComponents, ref, nil, pos, len(subs)+1, occurrence)
	}
	rules.ValidateStructure(node, h)
}

func checkLength(et *schema.ElementType, value string, ref, sub *schema.Reference, element, component, occurrence int, h staedi.Handler) {
	n := valueLength(et.Base(), value)
	switch {
	case et.MaxLength() > 0 && n > et.MaxLength():
		h.ElementError(staedi.EventElementDataError, staedi.CodeDataElementTooLong, ref, sub, element, component, occurrence)
	case n < et.MinLength():
		h.ElementError(staedi.EventElementDataError, staedi.CodeDataElementTooShort, ref, sub, element, component, occurrence)
	}
}

// valueLength counts characters; numeric values exclude the sign and the
// decimal mark.
func valueLength(base schema.Base, value string) int {
	if base == schema.BaseNumeric || base == schema.BaseDecimal {
		value = strings.TrimPrefix(value, "-")
		if i := strings.IndexAny(value, ".,"); i >= 0 {
			value = value[:i] + value[i+1:]
		}
	}
	return utf8.RuneCountInString(value)
}

func anyUsed(values []string) bool {
	for _, v := range values {
		if v != "" {
			return true
		}
	}
	return false
}
