package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aspizu/rxhkd/internal/dispatcher"
	"github.com/aspizu/rxhkd/internal/keybinds"
	"github.com/aspizu/rxhkd/internal/parser"
)

// ErrPickCancelled is returned when the picker is closed without a choice
var ErrPickCancelled = errors.New("selection cancelled")

// PickOptions contains options for the interactive bind picker
type PickOptions struct {
	Path   string
	Runner dispatcher.CommandRunner
}

// pickItem is a bind with a command, as shown in the picker
type pickItem struct {
	mode    string
	chord   string
	command string
}

func (i pickItem) FilterValue() string {
	return i.mode + " " + i.chord + " " + i.command
}

func (i pickItem) Title() string {
	prefix := i.chord
	if i.mode != "root" {
		prefix = i.mode + " > " + i.chord
	}
	return prefix + ": " + summarizeCommand(i.command)
}

func (i pickItem) Description() string { return "" }

// pickItems lists every bind that runs a non-empty command, in file order
func pickItems(root *keybinds.Mode) []list.Item {
	var items []list.Item
	root.Walk(func(mode *keybinds.Mode, b *keybinds.Bind) {
		if b.Output == nil || strings.TrimSpace(*b.Output) == "" {
			return
		}
		items = append(items, pickItem{
			mode:    mode.DisplayName(),
			chord:   b.Chord.String(),
			command: *b.Output,
		})
	})
	return items
}

type pickerModel struct {
	list     list.Model
	choice   *pickItem
	status   string
	quitting bool
}

func newPickerModel(items []list.Item) pickerModel {
	const defaultWidth = 80
	const listHeight = 14

	l := list.New(items, pickDelegate{}, defaultWidth, listHeight)
	l.Title = "Run a bind"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return pickerModel{list: l}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		// Keys belong to the filter input while it is open
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.choice = nil
			return m, tea.Quit

		case "enter":
			if i, ok := m.list.SelectedItem().(pickItem); ok {
				m.choice = &i
			}
			m.quitting = true
			return m, tea.Quit

		case "y":
			if i, ok := m.list.SelectedItem().(pickItem); ok {
				if err := clipboard.WriteAll(i.command); err != nil {
					m.status = "copy failed: " + err.Error()
				} else {
					m.status = "copied " + i.chord
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("↑/↓: navigate • /: filter • enter: run • y: copy command • q/ctrl+c: cancel")
	if m.status != "" {
		help = helpStyle.Render(m.status) + "\n" + help
	}
	return fmt.Sprintf("%s\n\n%s", m.list.View(), help)
}

// pickDelegate renders picker rows
type pickDelegate struct{}

func (d pickDelegate) Height() int                             { return 1 }
func (d pickDelegate) Spacing() int                            { return 0 }
func (d pickDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d pickDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(pickItem)
	if !ok {
		return
	}

	str := fmt.Sprintf("%d. %s", index+1, i.Title())

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

// Pick shows an interactive list of binds and runs the chosen command
func Pick(opts PickOptions) error {
	root, err := parser.ParseFile(opts.Path)
	if err != nil {
		return err
	}

	items := pickItems(root)
	if len(items) == 0 {
		return fmt.Errorf("no binds with commands in %s", opts.Path)
	}

	p := tea.NewProgram(newPickerModel(items))
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running picker: %w", err)
	}

	result := finalModel.(pickerModel)
	if result.choice == nil {
		return ErrPickCancelled
	}

	if err := opts.Runner.Run(result.choice.command); err != nil {
		return fmt.Errorf("failed to run %s: %w", result.choice.chord, err)
	}
	return nil
}
