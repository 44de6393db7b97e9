package schema

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Factory property names.
const (
	PropertyFormat = "staedi.schema.format"
	PropertyStrict = "staedi.schema.strict"
	PropertyLogger = "staedi.schema.logger"
)

// ErrUnsupportedProperty is returned for property names the factory does not know.
var ErrUnsupportedProperty = errors.New("schema: unsupported property")

// Factory creates schemas from documents according to its properties. A
// Factory is not safe for concurrent SetProperty calls.
type Factory struct {
	format Format
	strict bool
	log    *slog.Logger
}

// NewFactory returns a factory with auto format detection, lenient
// diagnostics and a discarding logger.
func NewFactory() *Factory {
	return &Factory{
		format: FormatAuto,
		log:    slog.New(slog.DiscardHandler),
	}
}

// IsPropertySupported reports whether name is a known property.
func (f *Factory) IsPropertySupported(name string) bool {
	switch name {
	case PropertyFormat, PropertyStrict, PropertyLogger:
		return true
	}
	return false
}

// Property returns the current value of a property.
func (f *Factory) Property(name string) (any, error) {
	switch name {
	case PropertyFormat:
		return f.format, nil
	case PropertyStrict:
		return f.strict, nil
	case PropertyLogger:
		return f.log, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedProperty, name)
}

// SetProperty sets a property. Values must have the property's type; the
// format property also accepts a string.
func (f *Factory) SetProperty(name string, value any) error {
	switch name {
	case PropertyFormat:
		switch v := value.(type) {
		case Format:
			return f.setFormat(string(v))
		case string:
			return f.setFormat(v)
		}
	case PropertyStrict:
		if v, ok := value.(bool); ok {
			f.strict = v
			return nil
		}
	case PropertyLogger:
		if v, ok := value.(*slog.Logger); ok {
			if v == nil {
				v = slog.New(slog.DiscardHandler)
			}
			f.log = v
			return nil
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedProperty, name)
	}
	return fmt.Errorf("schema: property %q: unexpected value type %T", name, value)
}

func (f *Factory) setFormat(s string) error {
	format, err := ParseFormat(s)
	if err != nil {
		return err
	}
	f.format = format
	return nil
}

// CreateSchema loads a schema from r. Warnings are logged; in strict mode
// they fail the load.
func (f *Factory) CreateSchema(r io.Reader) (*Schema, error) {
	return f.create(r, f.format, "")
}

// CreateSchemaFromFile loads a schema from a file. In auto mode the file
// extension decides the format when it is .json, .yaml or .yml.
func (f *Factory) CreateSchemaFromFile(path string) (*Schema, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	defer fh.Close()

	format := f.format
	if format == FormatAuto {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			format = FormatJSON
		case ".yaml", ".yml":
			format = FormatYAML
		}
	}
	return f.create(fh, format, path)
}

func (f *Factory) create(r io.Reader, format Format, origin string) (*Schema, error) {
	s, d, err := Load(r, format)
	if err != nil {
		return nil, err
	}
	if d.HasWarnings() {
		for _, w := range d.Warnings() {
			f.log.Warn("schema diagnostic", "origin", origin, "warning", w)
		}
		if f.strict {
			return nil, fmt.Errorf("schema: %d warning(s) in strict mode: %s", len(d.Warnings()), strings.Join(d.Warnings(), "; "))
		}
	}
	f.log.Debug("schema loaded", "origin", origin, "types", s.Len())
	return s, nil
}
