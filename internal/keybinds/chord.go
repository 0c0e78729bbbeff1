package keybinds

// Chord is a set of modifiers held together with a single key.
type Chord struct {
	Modifiers ModifierSet `json:"modifiers" yaml:"modifiers"`
	Key       Key         `json:"key" yaml:"key"`
}

// KeyEvent is a key press as delivered by the display server. State carries
// modifier bits and pointer button bits; Code is the keycode.
type KeyEvent struct {
	State uint16
	Code  uint8
}

// Matches reports whether ev is a press of exactly this chord. Extra
// modifiers make the event not match; pointer button bits are ignored.
func (c Chord) Matches(ev KeyEvent) bool {
	return ev.Code == c.Key.Code() && ModifiersFromState(ev.State) == c.Modifiers
}

// String renders the chord in bind-file syntax, e.g. "ctrl + shift + a".
func (c Chord) String() string {
	if c.Modifiers == 0 {
		return c.Key.String()
	}
	return c.Modifiers.String() + " + " + c.Key.String()
}
