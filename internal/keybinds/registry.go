package keybinds

import (
	"errors"
	"fmt"
	"sort"
)

// ErrChordConflict is returned when a chord is registered while another
// registration already claims the same key and modifiers.
var ErrChordConflict = errors.New("chord already registered")

// Registry tracks which chords currently have a standing registration with
// the display server. It is owned by a single goroutine.
type Registry struct {
	registered map[Chord]struct{}
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		registered: make(map[Chord]struct{}),
	}
}

// Register claims a chord. Registration is exclusive per key and modifiers.
func (r *Registry) Register(chord Chord) error {
	if _, ok := r.registered[chord]; ok {
		return fmt.Errorf("%w: %s", ErrChordConflict, chord)
	}
	r.registered[chord] = struct{}{}
	return nil
}

// Deregister releases a chord and reports whether it was registered.
// Releasing an unregistered chord is a no-op.
func (r *Registry) Deregister(chord Chord) bool {
	if _, ok := r.registered[chord]; !ok {
		return false
	}
	delete(r.registered, chord)
	return true
}

// IsRegistered checks if a chord is currently claimed
func (r *Registry) IsRegistered(chord Chord) bool {
	_, ok := r.registered[chord]
	return ok
}

// Len returns the number of registered chords
func (r *Registry) Len() int {
	return len(r.registered)
}

// Registered returns the registered chords ordered by keycode, then modifiers
func (r *Registry) Registered() []Chord {
	chords := make([]Chord, 0, len(r.registered))
	for c := range r.registered {
		chords = append(chords, c)
	}
	sort.Slice(chords, func(i, j int) bool {
		if chords[i].Key != chords[j].Key {
			return chords[i].Key < chords[j].Key
		}
		return chords[i].Modifiers < chords[j].Modifiers
	})
	return chords
}

// Match returns the registered chord an event would be delivered for
func (r *Registry) Match(ev KeyEvent) (Chord, bool) {
	c := Chord{Modifiers: ModifiersFromState(ev.State), Key: Key(ev.Code)}
	if _, ok := r.registered[c]; ok {
		return c, true
	}
	return Chord{}, false
}
