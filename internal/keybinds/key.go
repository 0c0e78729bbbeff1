package keybinds

import (
	"fmt"
	"sort"
)

// Key is a physical key. Its value is the X11 keycode the key produces.
type Key uint8

// Keycodes of a standard laptop keyboard. These are not guaranteed to match
// every keyboard layout.
const (
	KeyEsc          Key = 9
	KeyF1           Key = 67
	KeyF2           Key = 68
	KeyF3           Key = 69
	KeyF4           Key = 70
	KeyF5           Key = 71
	KeyF6           Key = 72
	KeyF7           Key = 73
	KeyF8           Key = 74
	KeyF9           Key = 75
	KeyF10          Key = 76
	KeyF11          Key = 95
	KeyF12          Key = 96
	KeyPrtSc        Key = 107
	KeyInsert       Key = 118
	KeyDelete       Key = 119
	KeyPause        Key = 127
	KeyStar         Key = 63
	KeyNumpadSlash  Key = 106
	KeyTilde        Key = 49
	KeyOne          Key = 10
	KeyTwo          Key = 11
	KeyThree        Key = 12
	KeyFour         Key = 13
	KeyFive         Key = 14
	KeySix          Key = 15
	KeySeven        Key = 16
	KeyEight        Key = 17
	KeyNine         Key = 18
	KeyZero         Key = 19
	KeyMinus        Key = 20
	KeyEqual        Key = 21
	KeyBackspace    Key = 22
	KeyNumLock      Key = 77
	KeyPlus         Key = 86
	KeyNumpadMinus  Key = 82
	KeyTab          Key = 23
	KeyQ            Key = 24
	KeyW            Key = 25
	KeyE            Key = 26
	KeyR            Key = 27
	KeyT            Key = 28
	KeyY            Key = 29
	KeyU            Key = 30
	KeyI            Key = 31
	KeyO            Key = 32
	KeyP            Key = 33
	KeyLBrace       Key = 34
	KeyRBrace       Key = 35
	KeyBackslash    Key = 51
	KeyHome         Key = 79
	KeyNumpadUp     Key = 80
	KeyPageUp       Key = 81
	KeyCapsLock     Key = 66
	KeyA            Key = 38
	KeyS            Key = 39
	KeyD            Key = 40
	KeyF            Key = 41
	KeyG            Key = 42
	KeyH            Key = 43
	KeyJ            Key = 44
	KeyK            Key = 45
	KeyL            Key = 46
	KeySemicolon    Key = 47
	KeyQuotes       Key = 48
	KeyReturn       Key = 36
	KeyNumpadLeft   Key = 83
	KeyNumpad5      Key = 84
	KeyNumpadRight  Key = 85
	KeyLShift       Key = 50
	KeyZ            Key = 52
	KeyX            Key = 53
	KeyC            Key = 54
	KeyV            Key = 55
	KeyB            Key = 56
	KeyN            Key = 57
	KeyM            Key = 58
	KeyComma        Key = 59
	KeyPeriod       Key = 60
	KeySlash        Key = 61
	KeyRShift       Key = 62
	KeyEnd          Key = 87
	KeyNumpadDown   Key = 88
	KeyPageDown     Key = 89
	KeyLctrl        Key = 37
	KeyWin          Key = 133
	KeySpace        Key = 65
	KeyLalt         Key = 64
	KeyRalt         Key = 108
	KeyRctrl        Key = 105
	KeyLeft         Key = 113
	KeyUp           Key = 111
	KeyDown         Key = 116
	KeyRight        Key = 114
	KeyNumpad0      Key = 90
	KeyNumpadPeriod Key = 91
	KeyNumpadReturn Key = 104
)

// keyNames lists the kebab-case name of every key accepted in a bind file.
var keyNames = []struct {
	name string
	key  Key
}{
	{"esc", KeyEsc},
	{"f1", KeyF1},
	{"f2", KeyF2},
	{"f3", KeyF3},
	{"f4", KeyF4},
	{"f5", KeyF5},
	{"f6", KeyF6},
	{"f7", KeyF7},
	{"f8", KeyF8},
	{"f9", KeyF9},
	{"f10", KeyF10},
	{"f11", KeyF11},
	{"f12", KeyF12},
	{"prt-sc", KeyPrtSc},
	{"insert", KeyInsert},
	{"delete", KeyDelete},
	{"pause", KeyPause},
	{"star", KeyStar},
	{"numpad-slash", KeyNumpadSlash},
	{"tilde", KeyTilde},
	{"one", KeyOne},
	{"two", KeyTwo},
	{"three", KeyThree},
	{"four", KeyFour},
	{"five", KeyFive},
	{"six", KeySix},
	{"seven", KeySeven},
	{"eight", KeyEight},
	{"nine", KeyNine},
	{"zero", KeyZero},
	{"minus", KeyMinus},
	{"equal", KeyEqual},
	{"backspace", KeyBackspace},
	{"num-lock", KeyNumLock},
	{"plus", KeyPlus},
	{"numpad-minus", KeyNumpadMinus},
	{"tab", KeyTab},
	{"q", KeyQ},
	{"w", KeyW},
	{"e", KeyE},
	{"r", KeyR},
	{"t", KeyT},
	{"y", KeyY},
	{"u", KeyU},
	{"i", KeyI},
	{"o", KeyO},
	{"p", KeyP},
	{"l-brace", KeyLBrace},
	{"r-brace", KeyRBrace},
	{"backslash", KeyBackslash},
	{"home", KeyHome},
	{"numpad-up", KeyNumpadUp},
	{"page-up", KeyPageUp},
	{"caps-lock", KeyCapsLock},
	{"a", KeyA},
	{"s", KeyS},
	{"d", KeyD},
	{"f", KeyF},
	{"g", KeyG},
	{"h", KeyH},
	{"j", KeyJ},
	{"k", KeyK},
	{"l", KeyL},
	{"semicolon", KeySemicolon},
	{"quotes", KeyQuotes},
	{"return", KeyReturn},
	{"numpad-left", KeyNumpadLeft},
	{"numpad5", KeyNumpad5},
	{"numpad-right", KeyNumpadRight},
	{"l-shift", KeyLShift},
	{"z", KeyZ},
	{"x", KeyX},
	{"c", KeyC},
	{"v", KeyV},
	{"b", KeyB},
	{"n", KeyN},
	{"m", KeyM},
	{"comma", KeyComma},
	{"period", KeyPeriod},
	{"slash", KeySlash},
	{"r-shift", KeyRShift},
	{"end", KeyEnd},
	{"numpad-down", KeyNumpadDown},
	{"page-down", KeyPageDown},
	{"lctrl", KeyLctrl},
	{"win", KeyWin},
	{"space", KeySpace},
	{"lalt", KeyLalt},
	{"ralt", KeyRalt},
	{"rctrl", KeyRctrl},
	{"left", KeyLeft},
	{"up", KeyUp},
	{"down", KeyDown},
	{"right", KeyRight},
	{"numpad0", KeyNumpad0},
	{"numpad-period", KeyNumpadPeriod},
	{"numpad-return", KeyNumpadReturn}}

var (
	keysByName = make(map[string]Key, len(keyNames))
	namesByKey = make(map[Key]string, len(keyNames))
)

func init() {
	for _, kn := range keyNames {
		keysByName[kn.name] = kn.key
		namesByKey[kn.key] = kn.name
	}
}

// ParseKey resolves a kebab-case key name. Names are case-sensitive.
func ParseKey(name string) (Key, bool) {
	k, ok := keysByName[name]
	return k, ok
}

// Code returns the keycode delivered by the display server for this key.
func (k Key) Code() uint8 {
	return uint8(k)
}

func (k Key) String() string {
	if name, ok := namesByKey[k]; ok {
		return name
	}
	return fmt.Sprintf("keycode-%d", uint8(k))
}

// MarshalText encodes the key by name so JSON and YAML output stay readable.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// KeyNames returns every known key name in alphabetical order.
func KeyNames() []string {
	names := make([]string, 0, len(keyNames))
	for _, kn := range keyNames {
		names = append(names, kn.name)
	}
	sort.Strings(names)
	return names
}
