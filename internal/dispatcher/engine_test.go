package dispatcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aspizu/rxhkd/internal/keybinds"
	"github.com/aspizu/rxhkd/internal/parser"
)

// fakeEnv is an in-memory Environment that enforces exclusive registration.
type fakeEnv struct {
	grabs    *keybinds.Registry
	events   []keybinds.KeyEvent
	calls    []string
	conflict map[keybinds.Chord]bool
}

func newFakeEnv(events ...keybinds.KeyEvent) *fakeEnv {
	return &fakeEnv{
		grabs:    keybinds.NewRegistry(),
		events:   events,
		conflict: make(map[keybinds.Chord]bool),
	}
}

func (f *fakeEnv) Register(c keybinds.Chord) error {
	f.calls = append(f.calls, "register "+c.String())
	if f.conflict[c] {
		return keybinds.ErrChordConflict
	}
	return f.grabs.Register(c)
}

func (f *fakeEnv) Deregister(c keybinds.Chord) {
	f.calls = append(f.calls, "deregister "+c.String())
	f.grabs.Deregister(c)
}

func (f *fakeEnv) NextEvent() (keybinds.KeyEvent, error) {
	if len(f.events) == 0 {
		return keybinds.KeyEvent{}, ErrConnectionLost
	}
	ev := f.events[0]
	f.events = f.events[1:]
	return ev, nil
}

type fakeRunner struct {
	commands []string
	err      error
}

func (r *fakeRunner) Run(command string) error {
	r.commands = append(r.commands, command)
	return r.err
}

type fakeRecorder struct {
	triggers []Trigger
}

func (r *fakeRecorder) Record(t Trigger) error {
	r.triggers = append(r.triggers, t)
	return nil
}

func press(mods keybinds.ModifierSet, key keybinds.Key) keybinds.KeyEvent {
	return keybinds.KeyEvent{State: uint16(mods), Code: key.Code()}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const testConfig = `ctrl + a: echo root
mode super + m:
  a: echo A
  b: echo B
  super + m:
mode super + r:
  mode r:
    h: echo H
  x: echo X
`

func newTestEngine(t *testing.T, env *fakeEnv) (*Engine, *fakeRunner) {
	t.Helper()
	root := parser.ParseString(testConfig)
	runner := &fakeRunner{}
	e := New(root, env, runner, WithLogger(quietLogger()))
	if err := e.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return e, runner
}

// assertRegistered checks the environment holds exactly the active chords.
func assertRegistered(t *testing.T, e *Engine, env *fakeEnv) {
	t.Helper()
	want := make(map[keybinds.Chord]bool)
	for _, c := range e.Active().Chords() {
		want[c] = true
	}
	got := env.grabs.Registered()
	if len(got) != len(want) {
		t.Fatalf("registered %d chords, active mode %s has %d", len(got), e.Active().DisplayName(), len(want))
	}
	for _, c := range got {
		if !want[c] {
			t.Errorf("stale registration %s in mode %s", c, e.Active().DisplayName())
		}
	}
}

func TestEngine_StartRegistersRoot(t *testing.T) {
	env := newFakeEnv()
	e, _ := newTestEngine(t, env)

	if e.Active() != e.Root() {
		t.Fatal("expected root to be active")
	}
	assertRegistered(t, e, env)
}

func TestEngine_RunsCommand(t *testing.T) {
	env := newFakeEnv()
	e, runner := newTestEngine(t, env)

	// Pointer button bits in the state are ignored.
	ev := press(keybinds.ModControl, keybinds.KeyA)
	ev.State |= 1 << 8
	if err := e.Handle(ev); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if len(runner.commands) != 1 || runner.commands[0] != "echo root" {
		t.Errorf("commands = %v, want [echo root]", runner.commands)
	}
	if e.Active() != e.Root() {
		t.Error("expected root to stay active")
	}
}

func TestEngine_EnterAndReturn(t *testing.T) {
	env := newFakeEnv()
	e, runner := newTestEngine(t, env)

	if err := e.Handle(press(keybinds.Mod4, keybinds.KeyM)); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if e.Active().Name != "super + m" {
		t.Fatalf("active = %q, want super + m", e.Active().Name)
	}
	assertRegistered(t, e, env)

	// "a" runs its command and, having no mode, returns to the root.
	if err := e.Handle(press(0, keybinds.KeyA)); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if e.Active() != e.Root() {
		t.Fatalf("expected root after None action, got %q", e.Active().DisplayName())
	}
	assertRegistered(t, e, env)

	if len(runner.commands) != 1 || runner.commands[0] != "echo A" {
		t.Errorf("commands = %v, want [echo A]", runner.commands)
	}
}

func TestEngine_ModeIsolation(t *testing.T) {
	env := newFakeEnv()
	e, runner := newTestEngine(t, env)

	if err := e.Handle(press(keybinds.Mod4, keybinds.KeyM)); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	// ctrl + a is only bound in the root mode.
	if err := e.Handle(press(keybinds.ModControl, keybinds.KeyA)); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if len(runner.commands) != 0 {
		t.Errorf("root bind fired inside a mode: %v", runner.commands)
	}
	if e.Active().Name != "super + m" {
		t.Errorf("unmatched event changed the mode to %q", e.Active().DisplayName())
	}
}

func TestEngine_ExtraModifierDoesNotMatch(t *testing.T) {
	env := newFakeEnv()
	e, runner := newTestEngine(t, env)

	if err := e.Handle(press(keybinds.ModControl|keybinds.ModShift, keybinds.KeyA)); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if len(runner.commands) != 0 {
		t.Errorf("superset of modifiers matched: %v", runner.commands)
	}
}

func TestEngine_ReturnToRootAtRootIsNoop(t *testing.T) {
	root := &keybinds.Mode{Binds: []keybinds.Bind{
		{Chord: keybinds.Chord{Key: keybinds.KeyQ}},
	}}
	env := newFakeEnv()
	e := New(root, env, &fakeRunner{}, WithLogger(quietLogger()))
	if err := e.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	env.calls = nil

	if err := e.Handle(press(0, keybinds.KeyQ)); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if len(env.calls) != 0 {
		t.Errorf("expected no registration calls, got %v", env.calls)
	}
}

func TestEngine_ReenterActiveMode(t *testing.T) {
	mode := &keybinds.Mode{Name: "m"}
	mode.Binds = []keybinds.Bind{
		{Chord: keybinds.Chord{Key: keybinds.KeyM}, Enter: mode},
	}
	root := &keybinds.Mode{Binds: []keybinds.Bind{
		{Chord: keybinds.Chord{Modifiers: keybinds.Mod4, Key: keybinds.KeyM}, Enter: mode},
	}}
	env := newFakeEnv()
	e := New(root, env, &fakeRunner{}, WithLogger(quietLogger()))
	if err := e.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := e.Handle(press(keybinds.Mod4, keybinds.KeyM)); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	env.calls = nil

	if err := e.Handle(press(0, keybinds.KeyM)); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	want := []string{"deregister m", "register m"}
	if len(env.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", env.calls, want)
	}
	for i := range want {
		if env.calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, env.calls[i], want[i])
		}
	}
	assertRegistered(t, e, env)
}

func TestEngine_NestedModes(t *testing.T) {
	env := newFakeEnv()
	e, runner := newTestEngine(t, env)

	steps := []struct {
		ev     keybinds.KeyEvent
		active string
	}{
		{press(keybinds.Mod4, keybinds.KeyR), "super + r"},
		{press(0, keybinds.KeyR), "super + r > r"},
		{press(0, keybinds.KeyH), "root"},
	}
	for _, step := range steps {
		if err := e.Handle(step.ev); err != nil {
			t.Fatalf("Handle failed: %v", err)
		}
		if got := e.Active().DisplayName(); got != step.active {
			t.Fatalf("active = %q, want %q", got, step.active)
		}
		assertRegistered(t, e, env)
	}
	if len(runner.commands) != 1 || runner.commands[0] != "echo H" {
		t.Errorf("commands = %v, want [echo H]", runner.commands)
	}
}

func TestEngine_DuplicateChordRegisteredOnce(t *testing.T) {
	chord := keybinds.Chord{Key: keybinds.KeyA}
	root := &keybinds.Mode{Binds: []keybinds.Bind{
		{Chord: chord, Output: keybinds.NewOutput("first")},
		{Chord: chord, Output: keybinds.NewOutput("second")},
	}}
	env := newFakeEnv()
	runner := &fakeRunner{}
	e := New(root, env, runner, WithLogger(quietLogger()))
	if err := e.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if env.grabs.Len() != 1 {
		t.Errorf("registered %d chords, want 1", env.grabs.Len())
	}

	if err := e.Handle(press(0, keybinds.KeyA)); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if len(runner.commands) != 1 || runner.commands[0] != "first" {
		t.Errorf("commands = %v, want [first]", runner.commands)
	}
}

func TestEngine_RegistrationConflictIsFatal(t *testing.T) {
	env := newFakeEnv()
	e, _ := newTestEngine(t, env)
	env.conflict[keybinds.Chord{Key: keybinds.KeyB}] = true

	err := e.Handle(press(keybinds.Mod4, keybinds.KeyM))
	if !errors.Is(err, keybinds.ErrChordConflict) {
		t.Fatalf("expected ErrChordConflict, got %v", err)
	}
	if env.grabs.Len() != 0 {
		t.Errorf("partial registration left %d chords", env.grabs.Len())
	}
}

func TestEngine_StartConflict(t *testing.T) {
	env := newFakeEnv()
	env.conflict[keybinds.Chord{Modifiers: keybinds.Mod4, Key: keybinds.KeyR}] = true
	e := New(parser.ParseString(testConfig), env, &fakeRunner{}, WithLogger(quietLogger()))

	if err := e.Start(); !errors.Is(err, keybinds.ErrChordConflict) {
		t.Fatalf("expected ErrChordConflict, got %v", err)
	}
	if env.grabs.Len() != 0 {
		t.Errorf("partial registration left %d chords", env.grabs.Len())
	}
}

func TestEngine_CommandErrorIsNotFatal(t *testing.T) {
	env := newFakeEnv()
	root := parser.ParseString(testConfig)
	runner := &fakeRunner{err: errors.New("exec: not found")}
	rec := &fakeRecorder{}
	e := New(root, env, runner, WithLogger(quietLogger()), WithRecorder(rec))
	if err := e.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := e.Handle(press(keybinds.ModControl, keybinds.KeyA)); err != nil {
		t.Fatalf("command launch error should not be fatal: %v", err)
	}
	if len(rec.triggers) != 1 || rec.triggers[0].Err == nil {
		t.Errorf("expected trigger with launch error, got %+v", rec.triggers)
	}
}

func TestEngine_RecordsTriggers(t *testing.T) {
	env := newFakeEnv()
	root := parser.ParseString(testConfig)
	rec := &fakeRecorder{}
	e := New(root, env, &fakeRunner{}, WithLogger(quietLogger()), WithRecorder(rec))
	if err := e.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	_ = e.Handle(press(keybinds.Mod4, keybinds.KeyM))
	_ = e.Handle(press(0, keybinds.KeyZ)) // unmatched
	_ = e.Handle(press(0, keybinds.KeyB))

	if len(rec.triggers) != 2 {
		t.Fatalf("expected 2 triggers, got %d", len(rec.triggers))
	}
	first := rec.triggers[0]
	if first.FromMode != "root" || first.ToMode != "super + m" || first.Command != nil {
		t.Errorf("unexpected first trigger %+v", first)
	}
	second := rec.triggers[1]
	if second.FromMode != "super + m" || second.ToMode != "root" || *second.Command != "echo B" {
		t.Errorf("unexpected second trigger %+v", second)
	}
}

func TestEngine_EmptyRoot(t *testing.T) {
	env := newFakeEnv(press(0, keybinds.KeyA))
	e := New(parser.ParseString(""), env, &fakeRunner{}, WithLogger(quietLogger()))

	err := e.Run(context.Background())
	if !errors.Is(err, ErrConnectionLost) {
		t.Fatalf("expected ErrConnectionLost, got %v", err)
	}
	if len(env.calls) != 0 {
		t.Errorf("empty root made registration calls: %v", env.calls)
	}
}

func TestEngine_RunDispatchesUntilConnectionLost(t *testing.T) {
	env := newFakeEnv(
		press(keybinds.Mod4, keybinds.KeyM),
		press(0, keybinds.KeyA),
		press(keybinds.ModControl, keybinds.KeyA),
	)
	root := parser.ParseString(testConfig)
	runner := &fakeRunner{}
	e := New(root, env, runner, WithLogger(quietLogger()))

	err := e.Run(context.Background())
	if !errors.Is(err, ErrConnectionLost) {
		t.Fatalf("expected ErrConnectionLost, got %v", err)
	}
	if len(runner.commands) != 2 || runner.commands[0] != "echo A" || runner.commands[1] != "echo root" {
		t.Errorf("commands = %v", runner.commands)
	}
	if env.grabs.Len() != 0 {
		t.Errorf("Run left %d chords registered", env.grabs.Len())
	}
}

func TestEngine_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env := newFakeEnv(press(0, keybinds.KeyA))
	e := New(parser.ParseString(testConfig), env, &fakeRunner{}, WithLogger(quietLogger()))

	if err := e.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type failingRecorder struct{}

func (failingRecorder) Record(Trigger) error {
	return errors.New("disk full")
}

func TestRecorders_FanOut(t *testing.T) {
	a := &fakeRecorder{}
	b := &fakeRecorder{}
	rs := Recorders{a, failingRecorder{}, b}

	err := rs.Record(Trigger{FromMode: "root"})
	if err == nil {
		t.Fatal("expected error from failing recorder")
	}
	if len(a.triggers) != 1 || len(b.triggers) != 1 {
		t.Errorf("expected every recorder to receive the trigger, got %d and %d", len(a.triggers), len(b.triggers))
	}
}
