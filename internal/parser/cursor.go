package parser

import "fmt"

// Token is a span of the source, stored as offsets so the source buffer
// stays the single owner of the bytes.
type Token struct {
	Start int
	End   int
}

// Text returns the bytes of the token as a string.
func (t Token) Text(src []byte) string {
	return string(src[t.Start:t.End])
}

// Parser holds the source and a single cursor. Recognizers advance the
// cursor on success and leave it untouched on failure.
type Parser struct {
	src []byte
	pos int
	// halted is set once a line fails to parse as a bind or mode.
	halted bool
}

// New creates a parser positioned at the start of src
func New(src []byte) *Parser {
	return &Parser{src: src}
}

// Pos returns the current cursor offset
func (p *Parser) Pos() int {
	return p.pos
}

// backtrack runs a sub-parse and restores the cursor if it reports no match.
func backtrack[T any](p *Parser, rule func() (T, bool)) (T, bool) {
	start := p.pos
	v, ok := rule()
	if !ok {
		p.pos = start
	}
	return v, ok
}

func (p *Parser) atEOF() bool {
	return p.pos >= len(p.src)
}

// atLineEnd reports whether the cursor is at a newline or the end of input.
func (p *Parser) atLineEnd() bool {
	return p.atEOF() || p.src[p.pos] == '\n'
}

func (p *Parser) atLineStart() bool {
	return p.pos == 0 || p.src[p.pos-1] == '\n'
}

// matchLiteral advances past lit iff the source at the cursor starts with it.
func (p *Parser) matchLiteral(lit string) bool {
	if len(p.src)-p.pos < len(lit) {
		return false
	}
	if string(p.src[p.pos:p.pos+len(lit)]) != lit {
		return false
	}
	p.pos += len(lit)
	return true
}

func isIdentifierByte(c byte) bool {
	return c == '_' || c == '-' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// matchIdentifier scans the longest run of ASCII letters, digits, '_' and '-'.
func (p *Parser) matchIdentifier() (Token, bool) {
	end := p.pos
	for end < len(p.src) && isIdentifierByte(p.src[end]) {
		end++
	}
	if end == p.pos {
		return Token{}, false
	}
	tok := Token{Start: p.pos, End: end}
	p.pos = end
	return tok, true
}

// skipSpaces advances past spaces only; tabs are not skipped. It returns the
// number of spaces consumed.
func (p *Parser) skipSpaces() int {
	start := p.pos
	for !p.atEOF() && p.src[p.pos] == ' ' {
		p.pos++
	}
	return p.pos - start
}

// skipNewlines advances past a run of newline characters.
func (p *Parser) skipNewlines() {
	for !p.atEOF() && p.src[p.pos] == '\n' {
		p.pos++
	}
}

// matchLine consumes the rest of the line including its newline. The token
// excludes the newline. It fails only at end of input.
func (p *Parser) matchLine() (Token, bool) {
	if p.atEOF() {
		return Token{}, false
	}
	start := p.pos
	for !p.atLineEnd() {
		p.pos++
	}
	tok := Token{Start: start, End: p.pos}
	if !p.atEOF() {
		p.pos++
	}
	return tok, true
}

// matchComment consumes a '#' comment through the end of its line.
func (p *Parser) matchComment() (Token, bool) {
	if p.atEOF() || p.src[p.pos] != '#' {
		return Token{}, false
	}
	return p.matchLine()
}

// measureIndent counts and consumes the leading spaces of a line. The cursor
// must be at the start of a line.
func (p *Parser) measureIndent() int {
	if !p.atLineStart() {
		panic(fmt.Sprintf("parser: measureIndent at offset %d is not at a line start", p.pos))
	}
	return p.skipSpaces()
}

// offsideContinues reports whether the line whose indentation was just
// measured still belongs to a block with the given reference indentation.
// Blank lines always continue the block.
func (p *Parser) offsideContinues(measured, blockIndent int) bool {
	return measured >= blockIndent || p.atLineEnd()
}

// nextContentIndent returns the indentation of the first line at or after the
// cursor that is neither blank nor, when skipComments is set, a comment. The
// cursor does not move.
func (p *Parser) nextContentIndent(skipComments bool) (int, bool) {
	start := p.pos
	defer func() { p.pos = start }()
	for !p.atEOF() {
		n := p.measureIndent()
		switch {
		case p.atLineEnd():
			p.matchLine()
		case skipComments && p.src[p.pos] == '#':
			p.matchComment()
		default:
			return n, true
		}
	}
	return 0, false
}

// matchMultilineBlock captures the indented lines that follow a bind line.
// The reference indentation is that of the first non-blank line, which must
// be deeper than parentIndent. Each line keeps its newline and loses the
// reference indentation; deeper indentation is preserved. Capture stops at
// the first non-blank line indented less than the reference, leaving the
// cursor at the start of that line.
func (p *Parser) matchMultilineBlock(parentIndent int) string {
	ref, ok := p.nextContentIndent(false)
	if !ok || ref <= parentIndent {
		return ""
	}

	var out []byte
	for !p.atEOF() {
		lineStart := p.pos
		m := p.measureIndent()
		if !p.offsideContinues(m, ref) {
			p.pos = lineStart
			break
		}
		contentStart := lineStart + min(m, ref)
		p.matchLine()
		out = append(out, p.src[contentStart:p.pos]...)
	}
	return string(out)
}
