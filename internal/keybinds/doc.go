/*
Package keybinds defines the bind tree produced from a bind file and the
values the dispatcher matches against key events.

# Key Concepts

Keys:
  - A closed table of physical keys, each carrying its X11 keycode
  - Names are kebab-case ("page-up", "numpad5", "l-brace")

Modifiers:
  - A bitmask using the X11 modifier bits (shift, lock, control, mod1-mod5)
  - Keywords: shift, caps-lock, ctrl, alt, num-lock, mod3, super, mod5

Chords:
  - A modifier set plus one key
  - An event matches only with exactly the same modifiers; pointer button
    bits in the event state are ignored

Binds and Modes:
  - A bind has a chord, an optional command and an action
  - The action either enters a nested mode or returns to the root mode
  - The tree is built once and never mutated

# Registry

Registry (registry.go) mirrors the set of chords that have a standing
registration with the display server. Registration is exclusive per key
and modifiers; a second registration of the same chord fails with
ErrChordConflict.

# Serialization

Binds marshal to JSON and YAML in the shape

	{
	  "chord": {"modifiers": 4, "key": "a"},
	  "output": "echo hi",
	  "action": "None"
	}

with "action" set to {"EnterMode": {"binds": [...]}} for mode binds.
*/
package keybinds
