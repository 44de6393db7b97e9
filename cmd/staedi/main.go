package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "validate":
		os.Exit(validateCmd(os.Args[2:], os.Stdin, os.Stdout, os.Stderr))
	case "schema":
		os.Exit(schemaCmd(os.Args[2:], os.Stdout, os.Stderr))
	case "charset":
		os.Exit(charsetCmd(os.Args[2:], os.Stdin, os.Stdout, os.Stderr))
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "staedi CLI\n\nUsage:\n  staedi validate -schema schema.yaml [-format text|json] [-encoding UNOC] [-fail-fast] [-max-issues N] [file ...]\n  staedi schema -schema schema.yaml [-strict]\n  staedi charset [file]\n\nNotes:\n  - validate reads standard input when no file is given.\n  - Exit status is 1 when issues were found and 2 on errors.")
}

// newLogger returns a text logger on w at debug level when verbose is set and
// a discarding logger otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
