package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aspizu/rxhkd/internal/keybinds"
)

// ErrConnectionLost is returned by an Environment when its event source is
// gone for good.
var ErrConnectionLost = errors.New("event source connection lost")

// Environment is the display-server side of the dispatcher.
type Environment interface {
	// Register starts exclusive delivery of presses of chord. It fails if
	// the chord is already claimed.
	Register(chord keybinds.Chord) error
	// Deregister releases chord. Releasing an unregistered chord is a no-op.
	Deregister(chord keybinds.Chord)
	// NextEvent blocks until the next key press.
	NextEvent() (keybinds.KeyEvent, error)
}

// CommandRunner launches a shell command line without waiting for it.
type CommandRunner interface {
	Run(command string) error
}

// Recorder receives every matched bind.
type Recorder interface {
	Record(trigger Trigger) error
}

// Recorders fans a trigger out to several recorders.
type Recorders []Recorder

// Record passes t to every recorder, even after one fails.
func (rs Recorders) Record(t Trigger) error {
	var errs []error
	for _, r := range rs {
		if err := r.Record(t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Trigger describes one matched bind.
type Trigger struct {
	Time     time.Time
	Chord    keybinds.Chord
	Command  *string
	FromMode string
	ToMode   string
	// Err is the command launch error, if any.
	Err error
}

// Engine is the dispatch state machine. It is not safe for concurrent use.
type Engine struct {
	env      Environment
	runner   CommandRunner
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time

	root   *keybinds.Mode
	active *keybinds.Mode
	// registered holds the chords registered on behalf of the active mode.
	registered []keybinds.Chord
}

// Option configures an Engine
type Option func(*Engine)

// WithRecorder sets the Recorder that receives triggers
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an engine with root as the active mode. Nothing is registered
// until Start.
func New(root *keybinds.Mode, env Environment, runner CommandRunner, opts ...Option) *Engine {
	if root == nil {
		root = &keybinds.Mode{}
	}
	e := &Engine{
		env:    env,
		runner: runner,
		logger: slog.Default(),
		now:    time.Now,
		root:   root,
		active: root,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Root returns the root mode
func (e *Engine) Root() *keybinds.Mode {
	return e.root
}

// Active returns the active mode
func (e *Engine) Active() *keybinds.Mode {
	return e.active
}

// Start registers the chords of the active mode.
func (e *Engine) Start() error {
	if err := e.register(e.active); err != nil {
		return fmt.Errorf("failed to register %s mode: %w", e.active.DisplayName(), err)
	}
	e.logger.Info("registered binds", "mode", e.active.DisplayName(), "chords", len(e.registered))
	return nil
}

// Stop releases every chord registered by the engine.
func (e *Engine) Stop() {
	e.release()
}

// Run registers the root mode and dispatches events until the environment
// fails or ctx is cancelled. Cancellation is noticed once NextEvent returns,
// so callers unblock the environment (for example by closing its
// connection) after cancelling.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.Start(); err != nil {
		return err
	}
	defer e.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev, err := e.env.NextEvent()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("failed to read key event: %w", err)
		}
		if err := e.Handle(ev); err != nil {
			return err
		}
	}
}

// Handle processes a single key event to completion. The returned error is
// fatal: the environment refused a registration.
func (e *Engine) Handle(ev keybinds.KeyEvent) error {
	bind, ok := e.active.Find(ev)
	if !ok {
		return nil
	}

	trigger := Trigger{
		Time:     e.now(),
		Chord:    bind.Chord,
		Command:  bind.Output,
		FromMode: e.active.DisplayName(),
	}

	if bind.Output != nil {
		if err := e.runner.Run(*bind.Output); err != nil {
			trigger.Err = err
			e.logger.Warn("failed to launch command", "chord", bind.Chord.String(), "error", err)
		}
	}

	var err error
	if bind.Enter != nil {
		err = e.switchTo(bind.Enter)
	} else if e.active != e.root {
		err = e.switchTo(e.root)
	}
	trigger.ToMode = e.active.DisplayName()

	e.record(trigger)
	return err
}

// switchTo releases the active mode's chords, activates mode, and registers
// its chords. The release happens even when mode is already active.
func (e *Engine) switchTo(mode *keybinds.Mode) error {
	from := e.active.DisplayName()
	e.release()
	e.active = mode
	if err := e.register(mode); err != nil {
		return fmt.Errorf("failed to enter %s mode: %w", mode.DisplayName(), err)
	}
	e.logger.Debug("switched mode", "from", from, "to", mode.DisplayName(), "chords", len(e.registered))
	return nil
}

// register registers each distinct chord of mode. On failure the chords
// registered so far are released again.
func (e *Engine) register(mode *keybinds.Mode) error {
	seen := make(map[keybinds.Chord]bool, len(mode.Binds))
	for _, b := range mode.Binds {
		if seen[b.Chord] {
			continue
		}
		seen[b.Chord] = true
		if err := e.env.Register(b.Chord); err != nil {
			e.release()
			return err
		}
		e.registered = append(e.registered, b.Chord)
	}
	return nil
}

func (e *Engine) release() {
	for _, c := range e.registered {
		e.env.Deregister(c)
	}
	e.registered = e.registered[:0]
}

func (e *Engine) record(t Trigger) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.Record(t); err != nil {
		e.logger.Warn("failed to record trigger", "error", err)
	}
}
