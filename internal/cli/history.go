package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/aspizu/rxhkd/internal/analytics"
	"github.com/aspizu/rxhkd/internal/history"
)

const timeFormat = "2006-01-02 15:04:05"

// HistoryOptions contains options for the history command
type HistoryOptions struct {
	DatabasePath string
	Limit        int
	Chord        string
	Clear        bool
	Output       OutputOptions
}

// History prints recently triggered binds, newest first, or clears them
func History(w io.Writer, opts HistoryOptions) error {
	mgr, err := history.NewManager(opts.DatabasePath)
	if err != nil {
		return err
	}
	defer mgr.Close()

	if opts.Clear {
		count, err := mgr.GetCount()
		if err != nil {
			return err
		}
		if err := mgr.Clear(); err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "Cleared %d history entries\n", count)
		return err
	}

	var entries []history.Entry
	if opts.Chord != "" {
		entries, err = mgr.LoadForChord(opts.Chord)
		if err == nil && opts.Limit > 0 && len(entries) > opts.Limit {
			entries = entries[:opts.Limit]
		}
	} else {
		entries, err = mgr.Load(opts.Limit)
	}
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []history.Entry{}
	}

	return render(w, entries, opts.Output, func(w io.Writer) error {
		if len(entries) == 0 {
			_, err := fmt.Fprintln(w, styleSubtle.Render("No history"))
			return err
		}
		for _, e := range entries {
			line := styleSubtle.Render(e.Timestamp.Format(timeFormat)) + "  " +
				styleChord.Render(e.Chord) + "  " + styleMode.Render(transition(e.FromMode, e.ToMode))
			if e.Command != nil {
				line += "  " + summarizeCommand(*e.Command)
			}
			if e.Error != "" {
				line += "  " + styleError.Render("error: "+e.Error)
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	})
}

func transition(from, to string) string {
	if from == to {
		return "[" + from + "]"
	}
	return "[" + from + " → " + to + "]"
}

// StatsOptions contains options for the stats command
type StatsOptions struct {
	DatabasePath string
	Clear        bool
	Output       OutputOptions
}

// Stats prints per-chord trigger statistics
func Stats(w io.Writer, opts StatsOptions) error {
	mgr, err := analytics.NewManager(opts.DatabasePath)
	if err != nil {
		return err
	}
	defer mgr.Close()

	if opts.Clear {
		if err := mgr.Clear(); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, "Cleared statistics")
		return err
	}

	stats, err := mgr.GetStatsPerChord()
	if err != nil {
		return err
	}
	if stats == nil {
		stats = []analytics.Stats{}
	}

	return render(w, stats, opts.Output, func(w io.Writer) error {
		if len(stats) == 0 {
			_, err := fmt.Fprintln(w, styleSubtle.Render("No statistics"))
			return err
		}
		_, err := fmt.Fprintln(w, renderStatsTable(stats))
		return err
	})
}

func renderStatsTable(stats []analytics.Stats) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleSubtle).
		Headers("CHORD", "MODE", "TRIGGERS", "COMMANDS", "ERRORS", "LAST").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleTitle.Padding(0, 1)
			case col == 0:
				return styleChord.Padding(0, 1)
			default:
				return lipgloss.NewStyle().Padding(0, 1)
			}
		})

	for _, s := range stats {
		t.Row(
			s.Chord,
			s.Mode,
			strconv.Itoa(s.TotalTriggers),
			strconv.Itoa(s.CommandCount),
			strconv.Itoa(s.ErrorCount),
			relativeTime(s.LastTriggered, time.Now()),
		)
	}
	return t.Render()
}

// relativeTime formats t relative to now in coarse units
func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
