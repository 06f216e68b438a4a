package tui

import (
	"treelisty-cli/internal/store"
	"treelisty-cli/internal/tree"

	tea "github.com/charmbracelet/bubbletea"
)

func Run(s store.Store, st *tree.Store) error {
	applyColorProfilePreference()
	m := newBrowseModel(s, st)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
