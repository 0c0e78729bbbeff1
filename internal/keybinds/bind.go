package keybinds

import "encoding/json"

// Bind pairs a chord with an optional shell command and an action.
// The command runs before the action is applied.
type Bind struct {
	Chord  Chord
	Output *string
	// Enter is the mode switched to when the bind fires. A nil Enter returns
	// to the root mode.
	Enter *Mode
}

// Mode is a sequence of binds that is active as a whole. The root mode is
// the top level of the bind file; nested modes are reached through binds
// whose Enter points at them.
type Mode struct {
	// Name is the path of entering chords, empty for the root mode.
	Name  string
	Binds []Bind
}

// NewOutput returns a pointer to a copy of s, for building binds by hand.
func NewOutput(s string) *string {
	return &s
}

// EntersMode reports whether the bind switches to a nested mode.
func (b Bind) EntersMode() bool {
	return b.Enter != nil
}

// DisplayName returns the mode name, or "root" for the root mode.
func (m *Mode) DisplayName() string {
	if m == nil || m.Name == "" {
		return "root"
	}
	return m.Name
}

// Chords returns the chords of the mode's binds in order.
func (m *Mode) Chords() []Chord {
	chords := make([]Chord, 0, len(m.Binds))
	for _, b := range m.Binds {
		chords = append(chords, b.Chord)
	}
	return chords
}

// Find returns the first bind whose chord matches ev.
func (m *Mode) Find(ev KeyEvent) (*Bind, bool) {
	for i := range m.Binds {
		if m.Binds[i].Chord.Matches(ev) {
			return &m.Binds[i], true
		}
	}
	return nil, false
}

// Count returns the number of binds and modes in the tree rooted at m,
// nested binds included.
func (m *Mode) Count() (binds, modes int) {
	for _, b := range m.Binds {
		binds++
		if b.Enter != nil {
			modes++
			nb, nm := b.Enter.Count()
			binds += nb
			modes += nm
		}
	}
	return binds, modes
}

// Walk calls fn for every bind in the tree rooted at m, depth first. A mode
// bind is visited before the binds of the mode it enters.
func (m *Mode) Walk(fn func(mode *Mode, b *Bind)) {
	for i := range m.Binds {
		b := &m.Binds[i]
		fn(m, b)
		if b.Enter != nil {
			b.Enter.Walk(fn)
		}
	}
}

// bindDoc is the serialized shape of a bind. The action is either the string
// "None" or {"EnterMode": {"binds": [...]}}.
type bindDoc struct {
	Chord  Chord   `json:"chord" yaml:"chord"`
	Output *string `json:"output" yaml:"output"`
	Action any     `json:"action" yaml:"action"`
}

type enterModeDoc struct {
	EnterMode modeDoc `json:"EnterMode" yaml:"EnterMode"`
}

type modeDoc struct {
	Binds []bindDoc `json:"binds" yaml:"binds"`
}

func (b Bind) doc() bindDoc {
	d := bindDoc{Chord: b.Chord, Output: b.Output, Action: "None"}
	if b.Enter != nil {
		d.Action = enterModeDoc{EnterMode: modeDoc{Binds: docs(b.Enter.Binds)}}
	}
	return d
}

func docs(binds []Bind) []bindDoc {
	out := make([]bindDoc, 0, len(binds))
	for _, b := range binds {
		out = append(out, b.doc())
	}
	return out
}

func (b Bind) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.doc())
}

func (b Bind) MarshalYAML() (any, error) {
	return b.doc(), nil
}
