package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aspizu/rxhkd/internal/parser"
)

func TestPickItems(t *testing.T) {
	root := parser.ParseString(sampleBinds)
	items := pickItems(root)

	// super + m inside the mode has an empty command and is skipped
	expected := []string{"ctrl + a: echo hi", "super + m > a: echo A", "super + m > b: echo one …", "super + t: alacritty"}
	if len(items) != len(expected) {
		t.Fatalf("Expected %d items, got %d", len(expected), len(items))
	}
	for i, it := range items {
		if got := it.(pickItem).Title(); got != expected[i] {
			t.Errorf("Item %d: expected %q, got %q", i, expected[i], got)
		}
	}
}

func TestPickerModel_Enter(t *testing.T) {
	m := newPickerModel(pickItems(parser.ParseString(sampleBinds)))

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	result := updated.(pickerModel)
	if result.choice == nil {
		t.Fatal("Expected a choice after enter")
	}
	if result.choice.command != "echo hi" {
		t.Errorf("Expected first item to be chosen, got %q", result.choice.command)
	}
	if cmd == nil {
		t.Error("Expected quit command")
	}
	if result.View() != "" {
		t.Error("Expected empty view after quitting")
	}
}

func TestPickerModel_Cancel(t *testing.T) {
	m := newPickerModel(pickItems(parser.ParseString(sampleBinds)))

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	updated, _ = updated.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	result := updated.(pickerModel)
	if result.choice != nil {
		t.Errorf("Expected no choice after cancel, got %+v", result.choice)
	}
	if !result.quitting {
		t.Error("Expected picker to quit")
	}
}

func TestPickerModel_Navigate(t *testing.T) {
	m := newPickerModel(pickItems(parser.ParseString(sampleBinds)))

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	updated, _ = updated.Update(tea.KeyMsg{Type: tea.KeyEnter})
	result := updated.(pickerModel)
	if result.choice == nil || result.choice.command != "echo A" {
		t.Errorf("Expected second item to be chosen, got %+v", result.choice)
	}
}
