package schema_test

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/findanomaly/staedi/schema"
)

func TestFactory_Properties(t *testing.T) {
	f := schema.NewFactory()
	for _, name := range []string{schema.PropertyFormat, schema.PropertyStrict, schema.PropertyLogger} {
		if !f.IsPropertySupported(name) {
			t.Fatalf("%s should be supported", name)
		}
	}
	if f.IsPropertySupported("staedi.unknown") {
		t.Fatalf("unexpected support for unknown property")
	}
	if v, _ := f.Property(schema.PropertyFormat); v != schema.FormatAuto {
		t.Fatalf("default format = %v", v)
	}
	if err := f.SetProperty(schema.PropertyFormat, "json"); err != nil {
		t.Fatalf("SetProperty: %v", err)
	}
	if v, _ := f.Property(schema.PropertyFormat); v != schema.FormatJSON {
		t.Fatalf("format = %v", v)
	}
	if err := f.SetProperty(schema.PropertyFormat, "xml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
	if err := f.SetProperty(schema.PropertyStrict, "yes"); err == nil {
		t.Fatalf("expected type error for strict property")
	}
	if _, err := f.Property("nope"); !errors.Is(err, schema.ErrUnsupportedProperty) {
		t.Fatalf("expected ErrUnsupportedProperty, got %v", err)
	}
	if err := f.SetProperty("nope", 1); !errors.Is(err, schema.ErrUnsupportedProperty) {
		t.Fatalf("expected ErrUnsupportedProperty, got %v", err)
	}
}

func TestFactory_StrictModeRejectsWarnings(t *testing.T) {
	doc := `{"elements":{"1":{}},"segments":{"S":{"references":[{"ref":"1"}],"syntax":[{"type":"list","positions":[1,2]}]}}}`

	var logs bytes.Buffer
	f := schema.NewFactory()
	_ = f.SetProperty(schema.PropertyLogger, slog.New(slog.NewTextHandler(&logs, nil)))
	if _, err := f.CreateSchema(strings.NewReader(doc)); err != nil {
		t.Fatalf("lenient load: %v", err)
	}
	if !strings.Contains(logs.String(), "schema diagnostic") {
		t.Fatalf("expected warning to be logged, got %q", logs.String())
	}

	_ = f.SetProperty(schema.PropertyStrict, true)
	if _, err := f.CreateSchema(strings.NewReader(doc)); err == nil {
		t.Fatalf("expected strict mode failure")
	}
}

func TestFactory_CreateSchemaFromFile(t *testing.T) {
	f := schema.NewFactory()
	for _, name := range []string{"x12_sample.yaml", "x12_sample.json"} {
		s, err := f.CreateSchemaFromFile(filepath.Join("testdata", name))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if _, ok := s.Segment("N1"); !ok {
			t.Fatalf("%s: N1 missing", name)
		}
	}
	if _, err := f.CreateSchemaFromFile(filepath.Join("testdata", "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestFactory_DefaultLoggerDiscards(t *testing.T) {
	f := schema.NewFactory()
	v, _ := f.Property(schema.PropertyLogger)
	if l, ok := v.(*slog.Logger); !ok || l.Handler() != slog.DiscardHandler {
		t.Fatalf("default logger = %#v, want discarding logger", v)
	}
	var nilLogger *slog.Logger
	if err := f.SetProperty(schema.PropertyLogger, nilLogger); err != nil {
		t.Fatalf("SetProperty(nil logger): %v", err)
	}
	v, _ = f.Property(schema.PropertyLogger)
	if l, ok := v.(*slog.Logger); !ok || l == nil || l.Handler() != slog.DiscardHandler {
		t.Fatalf("nil logger must fall back to a discarding logger, got %#v", v)
	}
}
