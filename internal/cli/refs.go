package cli

import (
	"treelisty-cli/internal/refs"
	"treelisty-cli/internal/tree"

	"github.com/spf13/cobra"
)

func newRefsCmd(app *App) *cobra.Command {
	var resolve bool
	cmd := &cobra.Command{
		Use:   "refs <node-id>",
		Short: "List ((ref)) tokens in a node's description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, st, _, err := loadCurrentTree(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			n := st.Find(args[0])
			if n == nil {
				return writeErr(cmd, tree.NotFoundError{ID: args[0]})
			}
			if resolve {
				return writeOut(cmd, app, map[string]any{"data": refs.ResolveAll(n.Description, st, s)})
			}
			return writeOut(cmd, app, map[string]any{"data": refs.Scan(n.Description)})
		},
	}
	cmd.Flags().BoolVar(&resolve, "resolve", false, "Classify each token (local, cross-tree, broken)")
	return cmd
}

func newRenderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "render <node-id>",
		Short: "Render a node's description with ((ref)) tokens replaced by current names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, st, _, err := loadCurrentTree(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			n := st.Find(args[0])
			if n == nil {
				return writeErr(cmd, tree.NotFoundError{ID: args[0]})
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"id":       n.ID,
				"source":   n.Description,
				"rendered": refs.Render(n.Description, st, s),
			}})
		},
	}
}
