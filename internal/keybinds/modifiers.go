package keybinds

import "strings"

// ModifierSet is a bitmask of modifier keys using the X11 modifier mask bits.
// The zero value means no modifier is required.
type ModifierSet uint16

const (
	ModShift   ModifierSet = 1 << iota // shift
	ModLock                            // caps-lock
	ModControl                         // ctrl
	Mod1                               // alt
	Mod2                               // num-lock
	Mod3                               // mod3
	Mod4                               // super
	Mod5                               // mod5
)

// modifierMask keeps the eight modifier bits of a key event state and drops
// the pointer button bits that share the same field.
const modifierMask = 0xff

// ModifierKeyword pairs a bind-file keyword with the modifier it selects.
type ModifierKeyword struct {
	Keyword  string
	Modifier ModifierSet
}

// modifierKeywords is ordered by matching priority.
var modifierKeywords = []ModifierKeyword{
	{"shift", ModShift},
	{"caps-lock", ModLock},
	{"ctrl", ModControl},
	{"alt", Mod1},
	{"num-lock", Mod2},
	{"mod3", Mod3},
	{"super", Mod4},
	{"mod5", Mod5},
}

// ModifierKeywords returns the modifier keywords in matching priority order.
func ModifierKeywords() []ModifierKeyword {
	out := make([]ModifierKeyword, len(modifierKeywords))
	copy(out, modifierKeywords)
	return out
}

// ModifiersFromState extracts the modifier set from a raw key event state.
func ModifiersFromState(state uint16) ModifierSet {
	return ModifierSet(state & modifierMask)
}

// Has reports whether every modifier in o is also in m.
func (m ModifierSet) Has(o ModifierSet) bool {
	return m&o == o
}

// String joins the keywords of the set with " + ", in priority order.
func (m ModifierSet) String() string {
	var parts []string
	for _, kw := range modifierKeywords {
		if m.Has(kw.Modifier) {
			parts = append(parts, kw.Keyword)
		}
	}
	return strings.Join(parts, " + ")
}
