// Package analytics aggregates trigger statistics per chord and mode.
package analytics

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/aspizu/rxhkd/internal/config"
	"github.com/aspizu/rxhkd/internal/dispatcher"
	"github.com/aspizu/rxhkd/internal/migrations"
)

const timestampLayout = "2006-01-02 15:04:05"

type Entry struct {
	ID           int64
	Chord        string
	Mode         string
	TargetMode   string
	Launched     bool
	ErrorMessage string
	Timestamp    time.Time
}

// Stats summarizes the triggers of one chord within one mode
type Stats struct {
	Chord         string         `json:"chord" yaml:"chord"`
	Mode          string         `json:"mode" yaml:"mode"`
	TotalTriggers int            `json:"total_triggers" yaml:"total_triggers"`
	CommandCount  int            `json:"command_count" yaml:"command_count"`
	ErrorCount    int            `json:"error_count" yaml:"error_count"`
	Transitions   map[string]int `json:"transitions" yaml:"transitions"`
	LastTriggered time.Time      `json:"last_triggered" yaml:"last_triggered"`
}

type Manager struct {
	db *sql.DB
}

var _ dispatcher.Recorder = (*Manager)(nil)

func NewManager(dbPath string) (*Manager, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, config.DirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create analytics directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open analytics database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to analytics database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db}, nil
}

// Record converts a trigger into an analytics entry and saves it
func (m *Manager) Record(t dispatcher.Trigger) error {
	entry := Entry{
		Chord:      t.Chord.String(),
		Mode:       t.FromMode,
		TargetMode: t.ToMode,
		Launched:   t.Command != nil,
		Timestamp:  t.Time,
	}
	if t.Err != nil {
		entry.ErrorMessage = t.Err.Error()
	}
	return m.Save(entry)
}

func (m *Manager) Save(entry Entry) error {
	query := `
		INSERT INTO analytics (chord, mode, target_mode, launched, error_message, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := m.db.Exec(query,
		entry.Chord,
		entry.Mode,
		entry.TargetMode,
		entry.Launched,
		entry.ErrorMessage,
		entry.Timestamp.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save analytics entry: %w", err)
	}

	return nil
}

// GetStatsPerChord returns one Stats per (chord, mode), most recently
// triggered first.
func (m *Manager) GetStatsPerChord() ([]Stats, error) {
	query := `
		WITH transitions_agg AS (
			SELECT
				chord,
				mode,
				json_group_object(target_mode, count) as transitions_json
			FROM (
				SELECT chord, mode, target_mode, COUNT(*) as count
				FROM analytics
				GROUP BY chord, mode, target_mode
			)
			GROUP BY chord, mode
		)
		SELECT
			a.chord,
			a.mode,
			COUNT(*) as total_triggers,
			SUM(a.launched) as command_count,
			SUM(CASE WHEN a.error_message IS NOT NULL AND a.error_message != '' THEN 1 ELSE 0 END) as error_count,
			MAX(a.timestamp) as last_triggered,
			COALESCE(t.transitions_json, '{}') as transitions_json
		FROM analytics a
		LEFT JOIN transitions_agg t ON a.chord = t.chord AND a.mode = t.mode
		GROUP BY a.chord, a.mode
		ORDER BY last_triggered DESC, total_triggers DESC
	`

	rows, err := m.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats per chord: %w", err)
	}
	defer rows.Close()

	var statsList []Stats
	for rows.Next() {
		var s Stats
		var lastTriggered sql.NullString
		var transitionsJSON string

		err := rows.Scan(
			&s.Chord,
			&s.Mode,
			&s.TotalTriggers,
			&s.CommandCount,
			&s.ErrorCount,
			&lastTriggered,
			&transitionsJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}

		if lastTriggered.Valid {
			s.LastTriggered = parseTimestamp(lastTriggered.String)
		}

		s.Transitions = make(map[string]int)
		if err := json.Unmarshal([]byte(transitionsJSON), &s.Transitions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transitions: %w", err)
		}

		statsList = append(statsList, s)
	}

	return statsList, rows.Err()
}

// parseTimestamp parses a stored UTC timestamp and converts it to local time
func parseTimestamp(s string) time.Time {
	parsed, err := time.ParseInLocation(timestampLayout, s, time.UTC)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}
		}
	}
	return parsed.Local()
}

func (m *Manager) Clear() error {
	_, err := m.db.Exec("DELETE FROM analytics")
	if err != nil {
		return fmt.Errorf("failed to clear analytics: %w", err)
	}
	return nil
}

func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
