package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	json "github.com/goccy/go-json"
)

// Format selects the document syntax of a schema.
type Format string

const (
	FormatAuto Format = "auto"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name. The empty string means auto.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("schema: unsupported format %q", s)
}

// Diag carries non-fatal warnings produced while loading.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct{ ws []string }

func (d *simpleDiag) HasWarnings() bool        { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string       { return append([]string(nil), d.ws...) }
func (d *simpleDiag) warnf(f string, a ...any) { d.ws = append(d.ws, fmt.Sprintf(f, a...)) }

// ErrEmptyDocument is returned for a document without any content.
var ErrEmptyDocument = errors.New("schema: empty document")

type document struct {
	Elements   map[string]elementDoc `json:"elements"`
	Composites map[string]complexDoc `json:"composites"`
	Segments   map[string]complexDoc `json:"segments"`
	Loops      map[string]complexDoc `json:"loops"`
}

type elementDoc struct {
	Base      Base `json:"base"`
	MinLength int  `json:"minLength"`
	MaxLength int  `json:"maxLength"`
}

type complexDoc struct {
	References []referenceDoc `json:"references"`
	Syntax     []syntaxDoc    `json:"syntax"`
}

type referenceDoc struct {
	Ref       typeID `json:"ref"`
	MinOccurs int    `json:"minOccurs"`
	MaxOccurs *int   `json:"maxOccurs"`
}

// typeID accepts bare numeric ids as well as strings ("ref: 98" in YAML).
type typeID string

func (t *typeID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = typeID(s)
		return nil
	}
	if string(b) == "null" {
		*t = ""
		return nil
	}
	*t = typeID(b)
	return nil
}

type syntaxDoc struct {
	Type      string `json:"type"`
	Positions []int  `json:"positions"`
}

// LoadBytes is Load over an in-memory document.
func LoadBytes(data []byte, format Format) (*Schema, Diag, error) {
	return Load(bytes.NewReader(data), format)
}

// Load reads a schema document. FormatAuto treats input starting with '{' as
// JSON and everything else as YAML.
func Load(r io.Reader, format Format) (*Schema, Diag, error) {
	d := &simpleDiag{}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, d, fmt.Errorf("schema: read: %w", err)
	}
	if format == "" || format == FormatAuto {
		format = sniffFormat(data)
	}
	var doc document
	switch format {
	case FormatJSON:
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, d, ErrEmptyDocument
		}
		if err := detectJSONDuplicateKey(data); err != nil {
			return nil, d, fmt.Errorf("schema: invalid JSON: %w", err)
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, d, fmt.Errorf("schema: invalid JSON: %w", err)
		}
	case FormatYAML:
		v, err := decodeYAMLStrict(bytes.NewReader(data))
		if err != nil {
			return nil, d, fmt.Errorf("schema: invalid YAML: %w", err)
		}
		if v == nil {
			return nil, d, ErrEmptyDocument
		}
		// Round-trip through JSON so both syntaxes share one set of struct tags.
		b, err := json.Marshal(v)
		if err != nil {
			return nil, d, fmt.Errorf("schema: cannot convert YAML: %w", err)
		}
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, d, fmt.Errorf("schema: invalid YAML document: %w", err)
		}
	default:
		return nil, d, fmt.Errorf("schema: unsupported format %q", format)
	}
	s, err := build(&doc, d)
	return s, d, err
}

func sniffFormat(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatYAML
}

func build(doc *document, d *simpleDiag) (*Schema, error) {
	types := make(map[string]Type)
	declare := func(id string, t Type) error {
		if id == "" {
			return fmt.Errorf("schema: empty %s id", t.Kind())
		}
		if prev, dup := types[id]; dup {
			return fmt.Errorf("schema: duplicate type id %q (%s and %s)", id, prev.Kind(), t.Kind())
		}
		types[id] = t
		return nil
	}

	for _, id := range sortedKeys(doc.Elements) {
		e := doc.Elements[id]
		if e.MinLength < 0 || e.MaxLength < 0 || (e.MaxLength > 0 && e.MinLength > e.MaxLength) {
			return nil, fmt.Errorf("schema: element %q: invalid length bounds %d..%d", id, e.MinLength, e.MaxLength)
		}
		if !knownBase(e.Base) {
			return nil, fmt.Errorf("schema: element %q: unknown base %q", id, e.Base)
		}
		if err := declare(id, NewElement(id, e.Base, e.MinLength, e.MaxLength)); err != nil {
			return nil, err
		}
	}

	// Complex types are declared before any reference is resolved so that
	// loops may refer to each other regardless of document order.
	groups := []struct {
		kind Kind
		docs map[string]complexDoc
	}{
		{KindComposite, doc.Composites},
		{KindSegment, doc.Segments},
		{KindLoop, doc.Loops},
	}
	for _, g := range groups {
		for _, id := range sortedKeys(g.docs) {
			if err := declare(id, &ComplexType{id: id, kind: g.kind}); err != nil {
				return nil, err
			}
		}
	}

	var errs []error
	for _, g := range groups {
		for _, id := range sortedKeys(g.docs) {
			c := types[id].(*ComplexType)
			if err := fillComplex(c, g.docs[id], types, d); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	s := &Schema{types: types}
	return s, nil
}

func fillComplex(c *ComplexType, cd complexDoc, types map[string]Type, d *simpleDiag) error {
	if len(cd.References) == 0 {
		d.warnf("%s %q declares no references", c.kind, c.id)
	}
	for i, rd := range cd.References {
		t, ok := types[string(rd.Ref)]
		if !ok {
			return fmt.Errorf("schema: %s %q: reference %d: unknown type %q", c.kind, c.id, i+1, rd.Ref)
		}
		if !allowedChild(c.kind, t.Kind()) {
			return fmt.Errorf("schema: %s %q: reference %d: %s %q not allowed here", c.kind, c.id, i+1, t.Kind(), rd.Ref)
		}
		maxOccurs := 1
		if rd.MaxOccurs != nil {
			maxOccurs = *rd.MaxOccurs
		}
		if rd.MinOccurs < 0 || maxOccurs < 0 || (maxOccurs > 0 && rd.MinOccurs > maxOccurs) {
			return fmt.Errorf("schema: %s %q: reference %d: invalid occurrence bounds %d..%d", c.kind, c.id, i+1, rd.MinOccurs, maxOccurs)
		}
		c.references = append(c.references, NewReference(t, rd.MinOccurs, maxOccurs))
	}
	if c.kind == KindLoop && len(cd.Syntax) > 0 {
		d.warnf("loop %q: syntax rules are only enforced on caller-built loop trees", c.id)
	}
	for i, sd := range cd.Syntax {
		kind, err := ParseRuleKind(sd.Type)
		if err != nil {
			return fmt.Errorf("schema: %s %q: syntax rule %d: %w", c.kind, c.id, i+1, err)
		}
		if len(sd.Positions) == 0 {
			return fmt.Errorf("schema: %s %q: syntax rule %d: no positions", c.kind, c.id, i+1)
		}
		for _, p := range sd.Positions {
			if p < 1 {
				return fmt.Errorf("schema: %s %q: syntax rule %d: invalid position %d", c.kind, c.id, i+1, p)
			}
			if p > len(c.references) {
				d.warnf("%s %q: syntax rule %d: position %d beyond %d references", c.kind, c.id, i+1, p, len(c.references))
			}
		}
		c.rules = append(c.rules, NewSyntaxRule(kind, sd.Positions...))
	}
	return nil
}

func knownBase(b Base) bool {
	switch b {
	case "", BaseString, BaseIdentifier, BaseNumeric, BaseDecimal, BaseDate, BaseTime, BaseBinary:
		return true
	}
	return false
}

func allowedChild(parent, child Kind) bool {
	switch parent {
	case KindComposite:
		return child == KindElement
	case KindSegment:
		return child == KindElement || child == KindComposite
	case KindLoop:
		return child == KindSegment || child == KindLoop
	default:
		return false
	}
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
