package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	pickerDocStyle      = lipgloss.NewStyle().Margin(1, 2)
	pickerItemStyle     = lipgloss.NewStyle().PaddingLeft(2)
	pickerSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("36")).Bold(true).PaddingLeft(0)
)

// pickerItem is a single candidate line in the install-confirmation
// picker; FilterValue satisfies list.Item (filtering itself is disabled
// in newPickerModel).
type pickerItem string

func (i pickerItem) FilterValue() string { return string(i) }

// pickerDelegate renders a pickerItem as a numbered line, like the
// numbered prompt in confirm.go, with a "> " cursor prefix on the
// selected line and plain otherwise (spec §4.9's numbered-prompt
// convention, driven by bubbles/list).
type pickerDelegate struct{}

func (d pickerDelegate) Height() int                             { return 1 }
func (d pickerDelegate) Spacing() int                            { return 0 }
func (d pickerDelegate) Update(tea.Msg, *list.Model) tea.Cmd      { return nil }
func (d pickerDelegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	it, ok := li.(pickerItem)
	if !ok {
		return
	}
	line := fmt.Sprintf("%d) %s", index+1, string(it))
	if index == m.Index() {
		fmt.Fprint(w, pickerSelectedStyle.Render("> "+line))
		return
	}
	fmt.Fprint(w, pickerItemStyle.Render(line))
}

// pickerModel wraps a bubbles/list.Model with the confirmed/quitting
// bookkeeping RunPicker needs to turn a Program run into (int, error).
type pickerModel struct {
	list      list.Model
	chosen    int
	confirmed bool
	quitting  bool
}

func newPickerModel(choices []string) pickerModel {
	items := make([]list.Item, len(choices))
	for i, c := range choices {
		items[i] = pickerItem(c)
	}

	l := list.New(items, pickerDelegate{}, 0, 0)
	l.Title = "Install?"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(true)

	return pickerModel{list: l, chosen: -1}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := pickerDocStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			m.chosen = m.list.Index()
			m.confirmed = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	if m.quitting {
		return "cancelled\n"
	}
	return pickerDocStyle.Render(m.list.View())
}

// RunPicker drives an interactive bubbles/list picker over choices and
// returns the chosen index, or an error if the user cancelled.
func RunPicker(choices []string) (int, error) {
	p := tea.NewProgram(newPickerModel(choices))
	result, err := p.Run()
	if err != nil {
		return 0, err
	}
	final := result.(pickerModel)
	if !final.confirmed {
		return 0, fmt.Errorf("selection cancelled")
	}
	return final.chosen, nil
}
