package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#5F87AF")).
			Padding(0, 1)

	blockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	recordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#5F87AF"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateBrowse modelState = iota
	stateJump
)

type model struct {
	view     *fileView
	rows     []row
	selected int
	height   int
	state    modelState
	jump     textinput.Model
	status   string
}

func newModel(v *fileView) *model {
	// Top-level blocks start expanded so the file shape is visible
	// immediately.
	for _, root := range v.roots {
		root.expanded = true
	}

	ti := textinput.New()
	ti.Prompt = "block id: "
	ti.Width = 12

	return &model{
		view:   v,
		rows:   visibleRows(v.roots),
		height: 24,
		jump:   ti,
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height

	case tea.KeyMsg:
		if m.state == stateJump {
			return m.updateJump(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.selected < len(m.rows)-1 {
				m.selected++
			}

		case "enter", " ":
			if n := m.current(); n != nil && n.isBlock {
				n.expanded = !n.expanded
				m.rows = visibleRows(m.view.roots)
			}

		case "/":
			m.state = stateJump
			m.jump.SetValue("")
			m.jump.Focus()

		case "g":
			m.selected = 0

		case "G":
			m.selected = len(m.rows) - 1
		}
	}
	return m, nil
}

func (m *model) updateJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateBrowse
		m.jump.Blur()
		return m, nil

	case "enter":
		m.state = stateBrowse
		m.jump.Blur()
		id, err := strconv.ParseUint(strings.TrimSpace(m.jump.Value()), 10, 64)
		if err != nil {
			m.status = "not a block id: " + m.jump.Value()
			return m, nil
		}
		if i := findBlock(m.rows, id); i >= 0 {
			m.selected = i
			m.status = ""
		} else {
			m.status = fmt.Sprintf("no visible block with id %d", id)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return m, cmd
}

func (m *model) current() *node {
	if m.selected < 0 || m.selected >= len(m.rows) {
		return nil
	}
	return m.rows[m.selected].node
}

func (m *model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("bcview"))
	b.WriteString(" ")
	b.WriteString(m.view.path)
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("producer: %s   toolkit: %s\n\n", m.view.ident, m.view.version))

	// Keep the selection on screen inside the row viewport.
	visible := m.height - 8
	if visible < 4 {
		visible = 4
	}
	start := 0
	if m.selected >= visible {
		start = m.selected - visible + 1
	}
	end := min(start+visible, len(m.rows))

	for i := start; i < end; i++ {
		r := m.rows[i]
		line := strings.Repeat("  ", r.depth)
		if r.node.isBlock {
			marker := "+ "
			if r.node.expanded {
				marker = "- "
			}
			line += marker + blockStyle.Render(r.node.label())
		} else {
			line += "  " + recordStyle.Render(r.node.label())
		}
		if i == m.selected {
			line = selectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.view.walkErr != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("walk stopped: %v", m.view.walkErr)))
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.status))
	}

	b.WriteString("\n\n")
	if m.state == stateJump {
		b.WriteString(m.jump.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter jump • esc cancel"))
	} else {
		b.WriteString(helpStyle.Render("↑/↓ move • enter expand • / jump to block • q quit"))
	}

	return b.String()
}
