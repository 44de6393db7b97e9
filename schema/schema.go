// Package schema models the structural EDI schema graph: element, composite,
// segment and loop types connected by references, together with the syntax
// rules declared on complex types. A Schema is immutable once built and may be
// shared by any number of parsing sessions.
package schema

import (
	"fmt"
	"sort"
)

// Kind identifies the structural role of a Type.
type Kind uint8

const (
	KindElement Kind = iota
	KindComposite
	KindSegment
	KindLoop
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindComposite:
		return "composite"
	case KindSegment:
		return "segment"
	case KindLoop:
		return "loop"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Type is a node of the schema graph.
type Type interface {
	ID() string
	Kind() Kind
}

// Base is the value base of a simple element.
type Base string

const (
	BaseString     Base = "string"
	BaseIdentifier Base = "identifier"
	BaseNumeric    Base = "numeric"
	BaseDecimal    Base = "decimal"
	BaseDate       Base = "date"
	BaseTime       Base = "time"
	BaseBinary     Base = "binary"
)

// ElementType is a simple data element.
type ElementType struct {
	id        string
	base      Base
	minLength int
	maxLength int
}

// NewElement returns a simple element type. A zero maxLength means unbounded.
func NewElement(id string, base Base, minLength, maxLength int) *ElementType {
	if base == "" {
		base = BaseString
	}
	return &ElementType{id: id, base: base, minLength: minLength, maxLength: maxLength}
}

func (e *ElementType) ID() string     { return e.id }
func (e *ElementType) Kind() Kind     { return KindElement }
func (e *ElementType) Base() Base     { return e.base }
func (e *ElementType) MinLength() int { return e.minLength }
func (e *ElementType) MaxLength() int { return e.maxLength }

// ComplexType is a composite, segment or loop: an ordered list of references
// plus the syntax rules constraining them.
type ComplexType struct {
	id         string
	kind       Kind
	references []*Reference
	rules      []SyntaxRule
}

// NewComposite returns a composite type over element references.
func NewComposite(id string, refs []*Reference, rules ...SyntaxRule) *ComplexType {
	return newComplex(id, KindComposite, refs, rules)
}

// NewSegment returns a segment type over element and composite references.
func NewSegment(id string, refs []*Reference, rules ...SyntaxRule) *ComplexType {
	return newComplex(id, KindSegment, refs, rules)
}

// NewLoop returns a loop type over segment and loop references.
func NewLoop(id string, refs []*Reference, rules ...SyntaxRule) *ComplexType {
	return newComplex(id, KindLoop, refs, rules)
}

func newComplex(id string, kind Kind, refs []*Reference, rules []SyntaxRule) *ComplexType {
	return &ComplexType{
		id:         id,
		kind:       kind,
		references: append([]*Reference(nil), refs...),
		rules:      append([]SyntaxRule(nil), rules...),
	}
}

func (c *ComplexType) ID() string { return c.id }
func (c *ComplexType) Kind() Kind { return c.kind }

// References returns the ordered child references. The slice must not be
// modified.
func (c *ComplexType) References() []*Reference { return c.references }

// Reference returns the reference at a 1-based position, or nil when the
// position is outside the type.
func (c *ComplexType) Reference(position int) *Reference {
	if position < 1 || position > len(c.references) {
		return nil
	}
	return c.references[position-1]
}

// SyntaxRules returns the declared syntax rules in declaration order. The
// slice must not be modified.
func (c *ComplexType) SyntaxRules() []SyntaxRule { return c.rules }

// Reference links a parent complex type to one of its children with
// occurrence bounds.
type Reference struct {
	typ       Type
	minOccurs int
	maxOccurs int
}

// NewReference returns a reference to t. A zero maxOccurs means unbounded.
func NewReference(t Type, minOccurs, maxOccurs int) *Reference {
	return &Reference{typ: t, minOccurs: minOccurs, maxOccurs: maxOccurs}
}

func (r *Reference) Type() Type     { return r.typ }
func (r *Reference) MinOccurs() int { return r.minOccurs }
func (r *Reference) MaxOccurs() int { return r.maxOccurs }

// Required reports whether at least one occurrence is mandatory.
func (r *Reference) Required() bool { return r.minOccurs > 0 }

// ID is the id of the referenced type, or "" for a nil reference.
func (r *Reference) ID() string {
	if r == nil || r.typ == nil {
		return ""
	}
	return r.typ.ID()
}

// Schema is an immutable, id-indexed set of types.
type Schema struct {
	types map[string]Type
}

// New indexes the given types. Ids must be unique across all kinds.
func New(types ...Type) (*Schema, error) {
	s := &Schema{types: make(map[string]Type, len(types))}
	for _, t := range types {
		if t == nil {
			continue
		}
		if prev, dup := s.types[t.ID()]; dup {
			return nil, fmt.Errorf("schema: duplicate type id %q (%s and %s)", t.ID(), prev.Kind(), t.Kind())
		}
		s.types[t.ID()] = t
	}
	return s, nil
}

// Type returns the type with the given id.
func (s *Schema) Type(id string) (Type, bool) {
	t, ok := s.types[id]
	return t, ok
}

// Segment returns the segment type for a segment tag.
func (s *Schema) Segment(tag string) (*ComplexType, bool) {
	t, ok := s.types[tag]
	if !ok {
		return nil, false
	}
	c, ok := t.(*ComplexType)
	if !ok || c.kind != KindSegment {
		return nil, false
	}
	return c, true
}

// IDs returns all type ids in sorted order.
func (s *Schema) IDs() []string {
	out := make([]string, 0, len(s.types))
	for id := range s.types {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Len is the number of types in the schema.
func (s *Schema) Len() int { return len(s.types) }
