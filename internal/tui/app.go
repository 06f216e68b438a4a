package tui

import (
	"fmt"
	"strings"

	"treelisty-cli/internal/refs"
	"treelisty-cli/internal/store"
	"treelisty-cli/internal/tree"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// browseModel is a read-only outline browser: a tree pane with a cursor on
// the left, the selected node's rendered detail on the right. It never
// saves; collapse state lives in memory only.
type browseModel struct {
	store store.Store
	tree  *tree.Store

	rows      []outlineRow
	cursor    int
	collapsed map[string]bool

	width  int
	height int

	// detailTop scrolls the detail pane; it resets whenever the cursor moves.
	detailTop int

	jump    textinput.Model
	jumping bool
	status  string
}

func newBrowseModel(s store.Store, st *tree.Store) *browseModel {
	ji := textinput.New()
	ji.Placeholder = "node id"
	ji.CharLimit = 64
	m := &browseModel{
		store:     s,
		tree:      st,
		collapsed: initialCollapsed(st),
		jump:      ji,
	}
	m.rows = flattenOutline(st, m.collapsed)
	return m
}

func (m *browseModel) Init() tea.Cmd { return nil }

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if m.jumping {
			return m.updateJump(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.detailTop = 0
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				m.detailTop = 0
			}
		case "enter", "tab", " ":
			m.toggleCurrent()
		case "g":
			m.jumping = true
			m.jump.SetValue("")
			m.jump.Focus()
			return m, textinput.Blink
		case "pgdown", "J":
			m.detailTop += 5
		case "pgup", "K":
			m.detailTop -= 5
			if m.detailTop < 0 {
				m.detailTop = 0
			}
		}
	}
	return m, nil
}

func (m *browseModel) updateJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.jumping = false
		m.jump.Blur()
		return m, nil
	case "enter":
		m.jumping = false
		m.jump.Blur()
		m.jumpTo(strings.TrimSpace(m.jump.Value()))
		return m, nil
	}
	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return m, cmd
}

// jumpTo moves the cursor to a node by id, expanding every ancestor so the
// row is actually visible.
func (m *browseModel) jumpTo(id string) {
	if id == "" {
		return
	}
	n := m.tree.Find(id)
	if n == nil {
		m.status = "no node " + id
		return
	}
	for p := m.tree.ParentOf(n.ID); p != nil; p = m.tree.ParentOf(p.ID) {
		delete(m.collapsed, p.ID)
	}
	m.rows = flattenOutline(m.tree, m.collapsed)
	for i, r := range m.rows {
		if r.node.ID == n.ID {
			m.cursor = i
			m.detailTop = 0
			m.status = ""
			return
		}
	}
}

func (m *browseModel) toggleCurrent() {
	if m.cursor >= len(m.rows) {
		return
	}
	r := m.rows[m.cursor]
	if !r.hasChildren {
		return
	}
	if m.collapsed[r.node.ID] {
		delete(m.collapsed, r.node.ID)
	} else {
		m.collapsed[r.node.ID] = true
	}
	m.rows = flattenOutline(m.tree, m.collapsed)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
}

func (m *browseModel) View() string {
	if m.width == 0 {
		return "loading..."
	}
	outlineW := m.width * 2 / 5
	if outlineW < 24 {
		outlineW = 24
	}
	detailW := m.width - outlineW - 1
	bodyH := m.height - 2

	left := m.viewOutline(outlineW, bodyH)
	right := m.viewDetail(detailW, bodyH)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
	return body + "\n" + m.viewFooter()
}

func (m *browseModel) viewOutline(width, height int) string {
	// Keep the cursor on screen by scrolling the window of visible rows.
	top := 0
	if m.cursor >= height {
		top = m.cursor - height + 1
	}
	lines := make([]string, 0, height)
	for i := top; i < len(m.rows) && len(lines) < height; i++ {
		r := m.rows[i]
		glyph := "  "
		if r.hasChildren {
			if r.collapsed {
				glyph = "▸ "
			} else {
				glyph = "▾ "
			}
		}
		line := strings.Repeat("  ", r.depth) + glyph + r.node.Name
		if xansi.StringWidth(line) > width {
			line = xansi.Truncate(line, width, "…")
		}
		if i == m.cursor {
			line = styleSelected.Render(lipgloss.PlaceHorizontal(width, lipgloss.Left, line))
		}
		lines = append(lines, line)
	}
	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (m *browseModel) viewDetail(width, height int) string {
	if m.cursor >= len(m.rows) {
		return ""
	}
	n := m.rows[m.cursor].node

	var b strings.Builder
	b.WriteString(styleHeader.Render(n.Name) + "\n")
	b.WriteString(styleMuted.Render(fmt.Sprintf("%s · %s · %s", n.ID, string(n.Type), n.GUID)) + "\n")
	if n.CloneOf != "" {
		b.WriteString(styleMuted.Render("clone of "+n.CloneOf) + "\n")
	}
	if len(n.Dependencies) > 0 {
		b.WriteString(styleMuted.Render("depends on "+strings.Join(n.Dependencies, ", ")) + "\n")
	}
	if n.Description != "" {
		rendered := refs.Render(n.Description, m.tree, m.store)
		b.WriteString("\n" + renderMarkdown(rendered, width))
	}

	lines := strings.Split(b.String(), "\n")
	// Drop trailing ANSI-only spacer lines so scrolling bounds feel right.
	for len(lines) > 0 && strings.TrimSpace(stripANSIEscapes(lines[len(lines)-1])) == "" {
		lines = lines[:len(lines)-1]
	}
	top := m.detailTop
	if top > len(lines)-1 {
		top = len(lines) - 1
	}
	if top < 0 {
		top = 0
	}
	end := top + height
	if end > len(lines) {
		end = len(lines)
	}
	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines[top:end], "\n"))
}

func (m *browseModel) viewFooter() string {
	if m.jumping {
		return "jump: " + m.jump.View()
	}
	hint := "j/k move · enter fold · g jump · J/K scroll · q quit"
	if m.status != "" {
		hint = styleBroken.Render(m.status) + "  " + hint
	}
	return styleMuted.Render(hint)
}
