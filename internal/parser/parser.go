package parser

import (
	"fmt"
	"os"

	"github.com/aspizu/rxhkd/internal/keybinds"
)

// Parse builds the bind tree from bind-file source. Parsing never fails:
// content that does not form a bind or mode ends the enclosing block and is
// dropped.
func Parse(src []byte) *keybinds.Mode {
	root, _ := New(src).ParseRoot()
	return root
}

// ParseString is Parse for string input
func ParseString(src string) *keybinds.Mode {
	return Parse([]byte(src))
}

// ParseRoot parses the top-level bind sequence and returns it as the root
// mode, along with the offset where parsing stopped.
func (p *Parser) ParseRoot() (*keybinds.Mode, int) {
	root := &keybinds.Mode{Binds: p.parseBinds(-1, "")}
	return root, p.pos
}

// ParseFile reads and parses a bind file
func ParseFile(filePath string) (*keybinds.Mode, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read bind file: %w", err)
	}
	return Parse(data), nil
}
