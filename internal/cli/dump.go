package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/aspizu/rxhkd/internal/keybinds"
	"github.com/aspizu/rxhkd/internal/parser"
)

// DumpOptions contains options for printing a parsed bind file
type DumpOptions struct {
	Path   string
	Output OutputOptions
}

// Dump parses the bind file and prints the bind tree
func Dump(w io.Writer, opts DumpOptions) error {
	root, err := parser.ParseFile(opts.Path)
	if err != nil {
		return err
	}
	return render(w, root.Binds, opts.Output, func(w io.Writer) error {
		return writeTree(w, root, 0)
	})
}

// writeTree prints binds in bind file syntax. Parsing the output yields the
// same tree.
func writeTree(w io.Writer, mode *keybinds.Mode, depth int) error {
	indent := strings.Repeat("  ", depth)
	for _, b := range mode.Binds {
		var err error
		switch {
		case b.Enter != nil:
			_, err = fmt.Fprintf(w, "%smode %s:\n", indent, b.Chord)
			if err == nil {
				err = writeTree(w, b.Enter, depth+1)
			}
		case b.Output == nil || !strings.Contains(*b.Output, "\n"):
			_, err = fmt.Fprintf(w, "%s%s: %s\n", indent, b.Chord, outputText(b.Output))
		default:
			_, err = fmt.Fprintf(w, "%s%s:\n", indent, b.Chord)
			for _, line := range strings.Split(*b.Output, "\n") {
				if err != nil {
					break
				}
				if line == "" {
					_, err = fmt.Fprintln(w)
					continue
				}
				_, err = fmt.Fprintf(w, "%s  %s\n", indent, line)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func outputText(output *string) string {
	if output == nil {
		return ""
	}
	return *output
}
