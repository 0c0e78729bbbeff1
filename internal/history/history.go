// Package history stores triggered binds in SQLite.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/aspizu/rxhkd/internal/config"
	"github.com/aspizu/rxhkd/internal/dispatcher"
	"github.com/aspizu/rxhkd/internal/migrations"
)

// timestampLayout is how timestamps are stored (UTC, no zone)
const timestampLayout = "2006-01-02 15:04:05"

// Entry is one recorded trigger
type Entry struct {
	ID        int64     `json:"id" yaml:"id"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Chord     string    `json:"chord" yaml:"chord"`
	Command   *string   `json:"command" yaml:"command"`
	FromMode  string    `json:"from_mode" yaml:"from_mode"`
	ToMode    string    `json:"to_mode" yaml:"to_mode"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// Manager records triggers in the history table
type Manager struct {
	db *sql.DB
}

var _ dispatcher.Recorder = (*Manager)(nil)

func NewManager(dbPath string) (*Manager, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, config.DirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db}, nil
}

// Record saves a trigger
func (m *Manager) Record(t dispatcher.Trigger) error {
	query := `
		INSERT INTO history (timestamp, chord, command, from_mode, to_mode, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	var command sql.NullString
	if t.Command != nil {
		command = sql.NullString{String: *t.Command, Valid: true}
	}
	var errMsg sql.NullString
	if t.Err != nil {
		errMsg = sql.NullString{String: t.Err.Error(), Valid: true}
	}

	_, err := m.db.Exec(query,
		t.Time.UTC().Format(timestampLayout),
		t.Chord.String(),
		command,
		t.FromMode,
		t.ToMode,
		errMsg,
	)
	if err != nil {
		return fmt.Errorf("failed to save history entry: %w", err)
	}

	return nil
}

// Load returns the most recent entries, newest first. A limit <= 0 loads all.
func (m *Manager) Load(limit int) ([]Entry, error) {
	query := `
		SELECT id, timestamp, chord, command, from_mode, to_mode, error
		FROM history
		ORDER BY timestamp DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// LoadForChord returns the entries of one chord, newest first
func (m *Manager) LoadForChord(chord string) ([]Entry, error) {
	rows, err := m.db.Query(`
		SELECT id, timestamp, chord, command, from_mode, to_mode, error
		FROM history
		WHERE chord = ?
		ORDER BY timestamp DESC, id DESC
	`, chord)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for chord: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry

	for rows.Next() {
		var e Entry
		var timestamp string
		var command sql.NullString
		var errMsg sql.NullString

		if err := rows.Scan(&e.ID, &timestamp, &e.Chord, &command, &e.FromMode, &e.ToMode, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		e.Timestamp = parseTimestamp(timestamp)
		if command.Valid {
			c := command.String
			e.Command = &c
		}
		e.Error = errMsg.String

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// parseTimestamp parses a stored timestamp and converts it to local time
func parseTimestamp(s string) time.Time {
	parsed, err := time.ParseInLocation(timestampLayout, s, time.UTC)
	if err != nil {
		// The driver hands DATETIME columns back as RFC3339
		parsed, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}
		}
	}
	return parsed.Local()
}

func (m *Manager) Clear() error {
	_, err := m.db.Exec("DELETE FROM history")
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (m *Manager) GetCount() (int, error) {
	var count int
	err := m.db.QueryRow("SELECT COUNT(*) FROM history").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get history count: %w", err)
	}
	return count, nil
}

func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
