package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/aspizu/rxhkd/internal/dispatcher"
	"github.com/aspizu/rxhkd/internal/keybinds"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "sub", "rxhkd.db"))
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func trigger(at time.Time, key keybinds.Key, mods keybinds.ModifierSet, command *string) dispatcher.Trigger {
	return dispatcher.Trigger{
		Time:     at,
		Chord:    keybinds.Chord{Modifiers: mods, Key: key},
		Command:  command,
		FromMode: "root",
		ToMode:   "root",
	}
}

func TestManager_RecordAndLoad(t *testing.T) {
	m := newTestManager(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	first := trigger(base, keybinds.KeyA, keybinds.ModControl, keybinds.NewOutput("echo hi"))
	second := trigger(base.Add(time.Minute), keybinds.KeyM, keybinds.Mod4, nil)
	second.ToMode = "super + m"
	second.Err = errors.New("boom")

	for _, tr := range []dispatcher.Trigger{first, second} {
		if err := m.Record(tr); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	entries, err := m.Load(0)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	newest := entries[0]
	if newest.Chord != "super + m" {
		t.Errorf("Expected newest chord 'super + m', got %q", newest.Chord)
	}
	if newest.Command != nil {
		t.Errorf("Expected nil command, got %q", *newest.Command)
	}
	if newest.ToMode != "super + m" || newest.Error != "boom" {
		t.Errorf("Unexpected newest entry: %+v", newest)
	}
	if !newest.Timestamp.Equal(base.Add(time.Minute)) {
		t.Errorf("Expected timestamp %v, got %v", base.Add(time.Minute), newest.Timestamp)
	}

	oldest := entries[1]
	if oldest.Command == nil || *oldest.Command != "echo hi" {
		t.Errorf("Expected command 'echo hi', got %v", oldest.Command)
	}
	if oldest.Error != "" {
		t.Errorf("Expected no error, got %q", oldest.Error)
	}
}

func TestManager_LoadLimit(t *testing.T) {
	m := newTestManager(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if err := m.Record(trigger(base.Add(time.Duration(i)*time.Second), keybinds.KeyA, 0, nil)); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	entries, err := m.Load(3)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if !entries[0].Timestamp.Equal(base.Add(4 * time.Second)) {
		t.Errorf("Expected newest first, got %v", entries[0].Timestamp)
	}
}

func TestManager_LoadForChordAndClear(t *testing.T) {
	m := newTestManager(t)
	now := time.Now()

	m.Record(trigger(now, keybinds.KeyA, keybinds.ModControl, nil))
	m.Record(trigger(now, keybinds.KeyB, 0, nil))
	m.Record(trigger(now, keybinds.KeyA, keybinds.ModControl, nil))

	entries, err := m.LoadForChord("ctrl + a")
	if err != nil {
		t.Fatalf("LoadForChord failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(entries))
	}

	if err := m.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	count, err := m.GetCount()
	if err != nil {
		t.Fatalf("GetCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 entries after clear, got %d", count)
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
	}{
		{"stored layout", "2024-05-01 12:30:00"},
		{"rfc3339", "2024-05-01T12:30:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTimestamp(tt.input)
			if !got.Equal(want) {
				t.Errorf("Expected %v, got %v", want, got)
			}
		})
	}

	if !parseTimestamp("garbage").IsZero() {
		t.Error("Expected zero time for unparseable input")
	}
}
