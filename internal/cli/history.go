package cli

import (
	"github.com/spf13/cobra"
)

func newUndoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Revert the most recent mutation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, st, h, err := loadCurrentTree(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			label := h.LastLabel()
			ok, err := h.UndoOp(st)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !ok {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"undone": false}})
			}
			if err := saveTree(s, st, h, "undo", "", map[string]any{"label": label}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"undone": true, "label": label}})
		},
	}
}

func newRedoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "redo",
		Short: "Re-apply the most recently undone mutation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, st, h, err := loadCurrentTree(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			var label string
			if n := len(h.Redo); n > 0 {
				label = h.Redo[n-1].Label
			}
			ok, err := h.RedoOp(st)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !ok {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"redone": false}})
			}
			if err := saveTree(s, st, h, "redo", "", map[string]any{"label": label}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"redone": true, "label": label}})
		},
	}
}
