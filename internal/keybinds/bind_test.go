package keybinds

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func sampleTree() *Mode {
	inner := &Mode{
		Name: "super + m",
		Binds: []Bind{
			{Chord: Chord{Key: KeyA}, Output: NewOutput("echo A")},
			{Chord: Chord{Modifiers: Mod4, Key: KeyM}, Output: NewOutput("")},
		},
	}
	return &Mode{
		Binds: []Bind{
			{Chord: Chord{Modifiers: ModControl, Key: KeyA}, Output: NewOutput("echo hi")},
			{Chord: Chord{Modifiers: Mod4, Key: KeyM}, Enter: inner},
		},
	}
}

func TestBind_MarshalJSON(t *testing.T) {
	root := sampleTree()

	data, err := json.Marshal(root.Binds)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	expected := `[{"chord":{"modifiers":4,"key":"a"},"output":"echo hi","action":"None"},` +
		`{"chord":{"modifiers":64,"key":"m"},"output":null,"action":{"EnterMode":{"binds":[` +
		`{"chord":{"modifiers":0,"key":"a"},"output":"echo A","action":"None"},` +
		`{"chord":{"modifiers":64,"key":"m"},"output":"","action":"None"}]}}}]`
	if string(data) != expected {
		t.Errorf("JSON mismatch.\nExpected:\n%s\n\nGot:\n%s", expected, data)
	}
}

func TestBind_MarshalYAML(t *testing.T) {
	data, err := yaml.Marshal(sampleTree().Binds)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	out := string(data)

	for _, want := range []string{"key: a", "modifiers: 64", "EnterMode:", "action: None", "output: echo A"} {
		if !strings.Contains(out, want) {
			t.Errorf("YAML output missing %q:\n%s", want, out)
		}
	}
}

func TestMode_CountAndFind(t *testing.T) {
	root := sampleTree()

	binds, modes := root.Count()
	if binds != 4 || modes != 1 {
		t.Errorf("Count() = %d, %d; want 4, 1", binds, modes)
	}

	b, ok := root.Find(KeyEvent{State: uint16(Mod4), Code: KeyM.Code()})
	if !ok || !b.EntersMode() {
		t.Fatalf("Find() did not return the mode bind")
	}
	if b.Enter.DisplayName() != "super + m" {
		t.Errorf("DisplayName() = %q", b.Enter.DisplayName())
	}
	if root.DisplayName() != "root" {
		t.Errorf("root DisplayName() = %q", root.DisplayName())
	}

	if _, ok := root.Find(KeyEvent{Code: KeyM.Code()}); ok {
		t.Error("Find() matched chord without its modifier")
	}
}

func TestMode_Walk(t *testing.T) {
	root := sampleTree()

	var visited []string
	root.Walk(func(mode *Mode, b *Bind) {
		visited = append(visited, mode.DisplayName()+"/"+b.Chord.String())
	})

	expected := []string{"root/ctrl + a", "root/super + m", "super + m/a", "super + m/super + m"}
	if len(visited) != len(expected) {
		t.Fatalf("Expected %d visits, got %d: %v", len(expected), len(visited), visited)
	}
	for i := range expected {
		if visited[i] != expected[i] {
			t.Errorf("Visit %d: expected %q, got %q", i, expected[i], visited[i])
		}
	}
}
