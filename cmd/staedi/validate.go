package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/findanomaly/staedi"
	"github.com/findanomaly/staedi/i18n"
	"github.com/findanomaly/staedi/schema"
	"github.com/findanomaly/staedi/stream"
)

// fileResult is the per-input outcome rendered by the output writers.
type fileResult struct {
	File   string        `json:"file"`
	Issues staedi.Issues `json:"issues"`
	Error  string        `json:"error,omitempty"`
}

func validateCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		schemaPath string
		format     string
		encoding   string
		lang       string
		colorMode  string
		ignore     string
		failFast   bool
		maxIssues  int
		verbose    bool
	)
	fs.StringVar(&schemaPath, "schema", "", "schema document (YAML or JSON)")
	fs.StringVar(&format, "format", "text", "output format: text or json")
	fs.StringVar(&encoding, "encoding", "", "character encoding (EDIFACT syntax identifier or IANA name); default from UNB")
	fs.StringVar(&lang, "lang", "en", "message language: en or ja")
	fs.StringVar(&colorMode, "color", "auto", "colorize text output: auto, always or never")
	fs.StringVar(&ignore, "ignore", "", "comma-separated issue codes to drop")
	fs.BoolVar(&failFast, "fail-fast", false, "stop each input at the first failing segment")
	fs.IntVar(&maxIssues, "max-issues", 0, "stop each input after N issues (0 = unlimited)")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if schemaPath == "" {
		fs.Usage()
		return 2
	}
	if format != "text" && format != "json" {
		fmt.Fprintf(stderr, "validate: unknown format %q\n", format)
		return 2
	}
	log := newLogger(stderr, verbose)
	i18n.SetLanguage(lang)

	factory := schema.NewFactory()
	if err := factory.SetProperty(schema.PropertyLogger, log); err != nil {
		fmt.Fprintf(stderr, "validate: %v\n", err)
		return 2
	}
	sch, err := factory.CreateSchemaFromFile(schemaPath)
	if err != nil {
		fmt.Fprintf(stderr, "validate: %v\n", err)
		return 2
	}
	sess, err := stream.NewSession(sch, stream.Options{
		Encoding:  encoding,
		FailFast:  failFast,
		MaxIssues: maxIssues,
		Log:       log,
	})
	if err != nil {
		fmt.Fprintf(stderr, "validate: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dropped := make(map[staedi.ErrorCode]bool)
	for _, c := range splitCSV(ignore) {
		dropped[staedi.ErrorCode(c)] = true
	}

	inputs := fs.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	var results []fileResult
	status := 0
	for _, name := range inputs {
		res := validateOne(ctx, sess, name, stdin)
		res.Issues = filterIssues(res.Issues, dropped)
		switch {
		case res.Error != "":
			status = 2
		case len(res.Issues) > 0 && status == 0:
			status = 1
		}
		results = append(results, res)
		if errors.Is(ctx.Err(), context.Canceled) {
			break
		}
	}

	if format == "json" {
		if err := writeJSON(stdout, results); err != nil {
			fmt.Fprintf(stderr, "validate: %v\n", err)
			return 2
		}
		return status
	}
	writeText(stdout, results, useColor(colorMode, stdout))
	return status
}

func validateOne(ctx context.Context, sess *stream.Session, name string, stdin io.Reader) fileResult {
	res := fileResult{File: name}
	r := stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		defer f.Close()
		r = f
	}
	iss, err := sess.Validate(ctx, r)
	res.Issues = iss
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

func filterIssues(iss staedi.Issues, dropped map[staedi.ErrorCode]bool) staedi.Issues {
	if len(dropped) == 0 {
		return iss
	}
	out := iss[:0:0]
	for _, it := range iss {
		if !dropped[it.Code] {
			out = append(out, it)
		}
	}
	return out
}
