// Package x11 implements the dispatcher environment on an X11 connection.
// Chords are claimed with passive key grabs on the root window of the
// default screen.
package x11

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/aspizu/rxhkd/internal/dispatcher"
	"github.com/aspizu/rxhkd/internal/keybinds"
)

// Conn is a connection to the X server that grabs chords on the root window.
type Conn struct {
	conn   *xgb.Conn
	root   xproto.Window
	grabs  *keybinds.Registry
	logger *slog.Logger
	closed atomic.Bool
}

var _ dispatcher.Environment = (*Conn)(nil)

// Connect opens a connection to display. An empty display uses $DISPLAY.
func Connect(display string, logger *slog.Logger) (*Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	xgb.Logger = slog.NewLogLogger(logger.Handler(), slog.LevelWarn)

	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	if screen == nil {
		conn.Close()
		return nil, fmt.Errorf("no default screen on display %q", display)
	}
	return &Conn{
		conn:   conn,
		root:   screen.Root,
		grabs:  keybinds.NewRegistry(),
		logger: logger,
	}, nil
}

// Register grabs chord on the root window. The grab fails with
// keybinds.ErrChordConflict if this connection or another client already
// holds it.
func (c *Conn) Register(chord keybinds.Chord) error {
	if c.closed.Load() {
		return dispatcher.ErrConnectionLost
	}
	if err := c.grabs.Register(chord); err != nil {
		return err
	}
	err := xproto.GrabKeyChecked(
		c.conn,
		true,
		c.root,
		uint16(chord.Modifiers),
		xproto.Keycode(chord.Key.Code()),
		xproto.GrabModeAsync,
		xproto.GrabModeAsync,
	).Check()
	if err != nil {
		c.grabs.Deregister(chord)
		var access xproto.AccessError
		if errors.As(err, &access) {
			return fmt.Errorf("%w: %s is grabbed by another client", keybinds.ErrChordConflict, chord)
		}
		return fmt.Errorf("failed to grab %s: %w", chord, err)
	}
	return nil
}

// Deregister releases the grab on chord if this connection holds it.
func (c *Conn) Deregister(chord keybinds.Chord) {
	if !c.grabs.Deregister(chord) {
		return
	}
	// The server drops a client's grabs when it disconnects
	if c.closed.Load() {
		return
	}
	err := xproto.UngrabKeyChecked(
		c.conn,
		xproto.Keycode(chord.Key.Code()),
		c.root,
		uint16(chord.Modifiers),
	).Check()
	if err != nil {
		c.logger.Warn("failed to ungrab chord", "chord", chord.String(), "error", err)
	}
}

// NextEvent blocks until the next key press on a grabbed chord. Other events
// are skipped; asynchronous protocol errors are logged.
func (c *Conn) NextEvent() (keybinds.KeyEvent, error) {
	for {
		ev, xerr := c.conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return keybinds.KeyEvent{}, dispatcher.ErrConnectionLost
		}
		if xerr != nil {
			c.logger.Warn("X protocol error", "error", xerr)
			continue
		}
		if press, ok := ev.(xproto.KeyPressEvent); ok {
			return keybinds.KeyEvent{State: press.State, Code: uint8(press.Detail)}, nil
		}
	}
}

// Grabbed returns the chords currently grabbed by this connection
func (c *Conn) Grabbed() []keybinds.Chord {
	return c.grabs.Registered()
}

// Close closes the connection. A blocked NextEvent returns
// dispatcher.ErrConnectionLost. Close may be called from any goroutine and
// more than once.
func (c *Conn) Close() {
	if c.closed.Swap(true) {
		return
	}
	c.conn.Close()
}
