package parser

import (
	"strings"
	"unicode"

	"github.com/aspizu/rxhkd/internal/keybinds"
)

// modePathSeparator joins the chords of nested modes into a mode name.
const modePathSeparator = " > "

// parseModifiers accumulates modifier keywords, each optionally followed by
// a '+' with surrounding spaces. A '+' is also consumed once when no keyword
// matches, so a stray '+' never fails the chord.
func (p *Parser) parseModifiers() keybinds.ModifierSet {
	var mods keybinds.ModifierSet
	keywords := keybinds.ModifierKeywords()
	for {
		matched := false
		for _, kw := range keywords {
			if p.matchLiteral(kw.Keyword) {
				mods |= kw.Modifier
				matched = true
				break
			}
		}
		p.skipSpaces()
		p.matchLiteral("+")
		p.skipSpaces()
		if !matched {
			return mods
		}
	}
}

// parseKey reads an identifier and resolves it against the key table.
func (p *Parser) parseKey() (keybinds.Key, bool) {
	return backtrack(p, func() (keybinds.Key, bool) {
		tok, ok := p.matchIdentifier()
		if !ok {
			return 0, false
		}
		return keybinds.ParseKey(tok.Text(p.src))
	})
}

// parseChord parses modifiers, a key, and any trailing spaces.
func (p *Parser) parseChord() (keybinds.Chord, bool) {
	return backtrack(p, func() (keybinds.Chord, bool) {
		mods := p.parseModifiers()
		key, ok := p.parseKey()
		if !ok {
			return keybinds.Chord{}, false
		}
		p.skipSpaces()
		return keybinds.Chord{Modifiers: mods, Key: key}, true
	})
}

// parseBind parses `chord: command` or `chord:` followed by an indented
// command block. lineIndent is the indentation of the bind's own line.
func (p *Parser) parseBind(lineIndent int) (keybinds.Bind, bool) {
	return backtrack(p, func() (keybinds.Bind, bool) {
		chord, ok := p.parseChord()
		if !ok {
			return keybinds.Bind{}, false
		}
		p.skipSpaces()
		if !p.matchLiteral(":") {
			return keybinds.Bind{}, false
		}

		var output string
		if p.matchLiteral("\n") {
			output = p.matchMultilineBlock(lineIndent)
		} else {
			p.skipSpaces()
			tok, ok := p.matchLine()
			if !ok {
				return keybinds.Bind{}, false
			}
			output = tok.Text(p.src)
		}
		output = strings.TrimRightFunc(output, unicode.IsSpace)

		return keybinds.Bind{Chord: chord, Output: &output}, true
	})
}

// parseMode parses `mode chord:` at the end of a line followed by a block of
// binds indented deeper than the mode line. Anything after the colon fails
// the rule, since the nested block is measured from the next line.
func (p *Parser) parseMode(lineIndent int, parent string) (keybinds.Bind, bool) {
	return backtrack(p, func() (keybinds.Bind, bool) {
		if !p.matchLiteral("mode") {
			return keybinds.Bind{}, false
		}
		if p.skipSpaces() == 0 {
			return keybinds.Bind{}, false
		}
		chord, ok := p.parseChord()
		if !ok {
			return keybinds.Bind{}, false
		}
		p.skipSpaces()
		if !p.matchLiteral(":\n") {
			return keybinds.Bind{}, false
		}

		name := chord.String()
		if parent != "" {
			name = parent + modePathSeparator + name
		}
		mode := &keybinds.Mode{Name: name}
		mode.Binds = p.parseBinds(lineIndent, name)

		return keybinds.Bind{Chord: chord, Enter: mode}, true
	})
}

// parseBinds parses a block of binds. The block's reference indentation is
// that of its first content line, which must be deeper than parentIndent.
// The block ends at the first content line indented less than the reference,
// with the cursor rewound to the start of that line, or at the first line
// that is neither a bind nor a mode. Such a line halts parsing altogether:
// the cursor stays on it and every enclosing block ends too. Blank lines and
// comments are skipped.
func (p *Parser) parseBinds(parentIndent int, name string) []keybinds.Bind {
	ref, ok := p.nextContentIndent(true)
	if !ok || ref <= parentIndent {
		return nil
	}

	var binds []keybinds.Bind
	for !p.atEOF() && !p.halted {
		lineStart := p.pos
		m := p.measureIndent()
		if p.atLineEnd() {
			p.skipNewlines()
			continue
		}
		if _, ok := p.matchComment(); ok {
			continue
		}
		if !p.offsideContinues(m, ref) {
			p.pos = lineStart
			break
		}

		bind, ok := p.parseMode(m, name)
		if !ok {
			bind, ok = p.parseBind(m)
		}
		if !ok {
			p.halted = true
			break
		}
		binds = append(binds, bind)
	}
	return binds
}
