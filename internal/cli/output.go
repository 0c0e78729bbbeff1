// Package cli implements the non-daemon subcommands: dumping the parsed bind
// tree, the cheatsheet, key listing, the bind picker, and history queries.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/aspizu/rxhkd/internal/filter"
)

// Output formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
)

// highlightStyle is the chroma style for colored json/yaml output
const highlightStyle = "monokai"

// OutputOptions controls how a command prints its result
type OutputOptions struct {
	Format string // json, yaml, text
	Query  string // JMESPath query or $(shell command), json/yaml only
	Color  bool
}

// ValidateFormat checks that format is a known output format
func ValidateFormat(format string) error {
	switch format {
	case FormatJSON, FormatYAML, FormatText:
		return nil
	default:
		return fmt.Errorf("invalid output format %q (expected json, yaml or text)", format)
	}
}

// ColorEnabled reports whether output to f should be colored
func ColorEnabled(f *os.File, disabled bool) bool {
	if disabled || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// render writes value in the requested format. Text output is delegated to
// text; a query forces json unless yaml was asked for.
func render(w io.Writer, value any, opts OutputOptions, text func(io.Writer) error) error {
	format := opts.Format
	if format == "" {
		format = FormatText
	}
	if err := ValidateFormat(format); err != nil {
		return err
	}

	if opts.Query == "" && format == FormatText {
		return text(w)
	}
	if format == FormatText {
		format = FormatJSON
	}

	var out string
	if opts.Query != "" && filter.IsShellCommand(opts.Query) {
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		out, err = filter.Apply(string(data), "", opts.Query)
		if err != nil {
			return err
		}
		// Shell output is opaque
		_, err = fmt.Fprintln(w, out)
		return err
	}

	if opts.Query != "" {
		result, err := filter.Search(value, opts.Query)
		if err != nil {
			return err
		}
		value = result
	}

	out, err := marshal(value, format)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}

	if opts.Color {
		if err := quick.Highlight(w, out, format, "terminal256", highlightStyle); err == nil {
			return nil
		}
	}
	_, err = io.WriteString(w, out)
	return err
}

func marshal(value any, format string) (string, error) {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("failed to marshal yaml: %w", err)
		}
		return string(data), nil
	default:
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal json: %w", err)
		}
		return string(data), nil
	}
}
