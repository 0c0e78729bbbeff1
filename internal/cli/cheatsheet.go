package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aspizu/rxhkd/internal/keybinds"
	"github.com/aspizu/rxhkd/internal/parser"
)

// maxCommandWidth truncates long commands in the cheatsheet
const maxCommandWidth = 60

// Cheatsheet renders one box per mode listing its chords and what they do
func Cheatsheet(w io.Writer, path string) error {
	root, err := parser.ParseFile(path)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, RenderCheatsheet(root))
	return err
}

// RenderCheatsheet renders the cheatsheet for the tree rooted at root
func RenderCheatsheet(root *keybinds.Mode) string {
	binds, modes := root.Count()
	header := styleTitle.Render("rxhkd cheatsheet") + " " +
		styleSubtle.Render(fmt.Sprintf("(%d binds, %d modes)", binds, modes))

	sections := []string{header}
	var collect func(mode *keybinds.Mode)
	collect = func(mode *keybinds.Mode) {
		sections = append(sections, renderModeBox(mode))
		for _, b := range mode.Binds {
			if b.Enter != nil {
				collect(b.Enter)
			}
		}
	}
	collect(root)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderModeBox(mode *keybinds.Mode) string {
	if len(mode.Binds) == 0 {
		return styleBox.Render(styleMode.Render(mode.DisplayName()) + "\n" + styleSubtle.Render("no binds"))
	}

	width := 0
	for _, b := range mode.Binds {
		width = max(width, lipgloss.Width(b.Chord.String()))
	}

	lines := []string{styleMode.Render(mode.DisplayName())}
	for _, b := range mode.Binds {
		chord := styleChord.Render(fmt.Sprintf("%-*s", width, b.Chord.String()))
		lines = append(lines, chord+"  "+describe(mode, b))
	}
	return styleBox.Render(strings.Join(lines, "\n"))
}

// describe summarizes what a bind does
func describe(mode *keybinds.Mode, b keybinds.Bind) string {
	var parts []string
	if b.Output != nil && *b.Output != "" {
		parts = append(parts, summarizeCommand(*b.Output))
	}
	switch {
	case b.Enter != nil:
		parts = append(parts, styleMode.Render("→ "+b.Enter.DisplayName()))
	case mode.Name != "":
		parts = append(parts, styleSubtle.Render("→ root"))
	}
	if len(parts) == 0 {
		return styleSubtle.Render("(nothing)")
	}
	return strings.Join(parts, " ")
}

// summarizeCommand returns the first line of command, truncated
func summarizeCommand(command string) string {
	first, rest, multiline := strings.Cut(command, "\n")
	if multiline && strings.TrimSpace(rest) != "" {
		first += " …"
	}
	runes := []rune(first)
	if len(runes) > maxCommandWidth {
		first = string(runes[:maxCommandWidth-1]) + "…"
	}
	return first
}
