package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const (
	labelWidth    = 20
	relationWidth = 8
	chromeHeight  = 12
)

type interactiveModel struct {
	rep         *report
	table       table.Model
	pairs       []pairRelation
	relatedOnly bool
}

func newInteractiveModel(rep *report) *interactiveModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "left", Width: labelWidth},
			{Title: "right", Width: labelWidth},
			{Title: "relation", Width: relationWidth},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4"))
	t.SetStyles(s)

	m := &interactiveModel{rep: rep, table: t, relatedOnly: true}
	m.refresh()
	return m
}

// refresh rebuilds the rows for the current filter.
func (m *interactiveModel) refresh() {
	if m.relatedOnly {
		m.pairs = m.rep.related()
	} else {
		m.pairs = m.rep.all()
	}
	rows := make([]table.Row, len(m.pairs))
	for i, p := range m.pairs {
		rows[i] = table.Row{
			m.rep.left.mod.TypeLabel(p.A),
			m.rep.right.mod.TypeLabel(p.B),
			p.Symbol(),
		}
	}
	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

func (m *interactiveModel) selected() (pairRelation, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.pairs) {
		return pairRelation{}, false
	}
	return m.pairs[c], true
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "a":
			m.relatedOnly = !m.relatedOnly
			m.refresh()
			return m, nil
		}
	case tea.WindowSizeMsg:
		if h := msg.Height - chromeHeight; h > 3 {
			m.table.SetHeight(h)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("GC Types"))
	b.WriteString(" ")
	b.WriteString(m.rep.left.name)
	if m.rep.right.mod != m.rep.left.mod {
		b.WriteString(" vs ")
		b.WriteString(m.rep.right.name)
	}
	b.WriteString("\n\n")

	if len(m.pairs) == 0 {
		b.WriteString("No related types.\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n\n")
	}

	if p, ok := m.selected(); ok {
		lst, _ := m.rep.left.mod.Types.Type(p.A)
		rst, _ := m.rep.right.mod.Types.Type(p.B)
		fmt.Fprintf(&b, "%s %s\n", m.rep.left.mod.TypeLabel(p.A), typeStyle.Render(lst.String()))
		fmt.Fprintf(&b, "%s %s\n", m.rep.right.mod.TypeLabel(p.B), typeStyle.Render(rst.String()))
		b.WriteString(resultStyle.Render(m.rep.describe(p)))
		b.WriteString("\n\n")
	}

	filter := "show all pairs"
	if !m.relatedOnly {
		filter = "show related only"
	}
	b.WriteString(helpStyle.Render("↑/↓ select • a " + filter + " • q quit"))
	return b.String()
}

func runInteractive(rep *report) error {
	p := tea.NewProgram(newInteractiveModel(rep), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
