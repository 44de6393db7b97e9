package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/mattn/go-isatty"

	"github.com/findanomaly/staedi"
)

// useColor resolves the -color flag. auto enables colors only when w is a
// terminal.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type palette struct {
	file, location, code, err func(string, ...any) string
}

func newPalette(enabled bool) palette {
	if !enabled {
		plain := fmt.Sprintf
		return palette{file: plain, location: plain, code: plain, err: plain}
	}
	return palette{
		file:     color.New(color.Bold).SprintfFunc(),
		location: color.CyanString,
		code:     color.YellowString,
		err:      color.RedString,
	}
}

// writeText renders one line per issue:
//
//	order.edi:412 N1-03 conditional_required_data_element_missing: conditionally required data element missing
func writeText(w io.Writer, results []fileResult, colored bool) {
	if colored {
		// The -color flag overrides the package-wide terminal check.
		prev := color.NoColor
		color.NoColor = false
		defer func() { color.NoColor = prev }()
	}
	p := newPalette(colored)
	for _, res := range results {
		for _, it := range res.Issues {
			fmt.Fprintf(w, "%s:%d %s %s: %s\n",
				p.file("%s", res.File), it.Offset,
				p.location("%s", location(it)),
				p.code("%s", it.Code), it.Message)
		}
		if res.Error != "" {
			fmt.Fprintf(w, "%s: %s\n", p.file("%s", res.File), p.err("error: %s", res.Error))
		}
	}
}

func location(it staedi.Issue) string {
	if loc := it.Location(); loc != "" {
		return loc
	}
	return "-"
}

func writeJSON(w io.Writer, results []fileResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
