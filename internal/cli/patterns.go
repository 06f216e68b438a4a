package cli

import (
	"treelisty-cli/internal/pattern"

	"github.com/spf13/cobra"
)

func newPatternsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "patterns [key]",
		Short: "List known tree patterns, or show one in full",
		Args:  cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return writeOut(cmd, app, map[string]any{"data": pattern.Get(args[0])})
			}
			defs := make([]pattern.Def, 0)
			for _, k := range pattern.Keys() {
				defs = append(defs, pattern.Get(k))
			}
			return writeOut(cmd, app, map[string]any{"data": defs})
		},
	}
}
