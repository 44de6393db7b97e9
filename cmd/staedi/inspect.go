package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/findanomaly/staedi/charset"
	"github.com/findanomaly/staedi/internal/engine"
	"github.com/findanomaly/staedi/schema"
)

// schemaCmd loads a schema and lists its types and syntax rules.
func schemaCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		schemaPath string
		strict     bool
		verbose    bool
	)
	fs.StringVar(&schemaPath, "schema", "", "schema document (YAML or JSON)")
	fs.BoolVar(&strict, "strict", false, "treat schema warnings as errors")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if schemaPath == "" {
		fs.Usage()
		return 2
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	factory := schema.NewFactory()
	for name, value := range map[string]any{
		schema.PropertyStrict: strict,
		schema.PropertyLogger: slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})),
	} {
		if err := factory.SetProperty(name, value); err != nil {
			fmt.Fprintf(stderr, "schema: %v\n", err)
			return 2
		}
	}
	s, err := factory.CreateSchemaFromFile(schemaPath)
	if err != nil {
		fmt.Fprintf(stderr, "schema: %v\n", err)
		return 2
	}
	for _, id := range s.IDs() {
		t, _ := s.Type(id)
		fmt.Fprintf(stdout, "%-8s %s", t.Kind(), id)
		switch t := t.(type) {
		case *schema.ElementType:
			fmt.Fprintf(stdout, " %s %d..%d", t.Base(), t.MinLength(), t.MaxLength())
		case *schema.ComplexType:
			refs := make([]string, 0, len(t.References()))
			for _, ref := range t.References() {
				refs = append(refs, fmt.Sprintf("%s[%d..%d]", ref.ID(), ref.MinOccurs(), ref.MaxOccurs()))
			}
			fmt.Fprintf(stdout, " (%s)", strings.Join(refs, " "))
			for _, rule := range t.SyntaxRules() {
				fmt.Fprintf(stdout, " %s", rule)
			}
		}
		fmt.Fprintln(stdout)
	}
	return 0
}

// charsetCmd detects the dialect of an interchange and prints the resulting
// classification table.
func charsetCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("charset", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	r := stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(stderr, "charset: %v\n", err)
			return 2
		}
		defer f.Close()
		r = f
	}
	header, err := readHeader(bufio.NewReader(r))
	if err != nil {
		fmt.Fprintf(stderr, "charset: %v\n", err)
		return 2
	}
	d, err := engine.DetectDialect(header)
	if err != nil {
		fmt.Fprintf(stderr, "charset: %v\n", err)
		return 2
	}
	set := charset.NewSet()
	if err := d.Apply(set); err != nil {
		fmt.Fprintf(stderr, "charset: %v\n", err)
		return 2
	}
	fmt.Fprintf(stdout, "standard=%s version=%s syntax=%s\n", d.Standard, d.Version, d.SyntaxIdentifier)
	fmt.Fprint(stdout, set.String())
	return 0
}

// headerRunes covers the longest fixed header (ISA).
const headerRunes = 106

func readHeader(br *bufio.Reader) ([]rune, error) {
	var out []rune
	for len(out) < headerRunes {
		r, _, err := br.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(out) == 0 && charset.Prototype(r) == charset.Whitespace {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
