package cli

import (
	"treelisty-cli/internal/model"
	"treelisty-cli/internal/mutate"
	"treelisty-cli/internal/tree"

	"github.com/spf13/cobra"
)

func newDepsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Dependency commands",
	}
	cmd.AddCommand(newDepsAddCmd(app))
	cmd.AddCommand(newDepsRmCmd(app))
	cmd.AddCommand(newDepsListCmd(app))
	return cmd
}

func newDepsAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <node-id> <depends-on-id>",
		Short: "Record that a node depends on another node in the same tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, st, h, err := loadCurrentTree(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := mutate.AddDependency(st, h, args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := saveTree(s, st, h, "dep.add", args[0], map[string]any{"on": args[1]}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": nodeSummary(res.Node)})
		},
	}
}

func newDepsRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <node-id> <depends-on-id>",
		Short: "Remove a dependency",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, st, h, err := loadCurrentTree(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := mutate.RemoveDependency(st, h, args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := saveTree(s, st, h, "dep.remove", args[0], map[string]any{"on": args[1]}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": nodeSummary(res.Node)})
		},
	}
}

func newDepsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list [node-id]",
		Short: "List dependencies (optionally for a single node)",
		Args:  cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, _, err := loadCurrentTree(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			type dep struct {
				From string `json:"from"`
				On   string `json:"on"`
			}
			out := []dep{}
			if len(args) == 1 {
				n := st.Find(args[0])
				if n == nil {
					return writeErr(cmd, tree.NotFoundError{ID: args[0]})
				}
				for _, d := range n.Dependencies {
					out = append(out, dep{From: n.ID, On: d})
				}
			} else {
				st.Walk(func(n *model.Node) bool {
					for _, d := range n.Dependencies {
						out = append(out, dep{From: n.ID, On: d})
					}
					return true
				})
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
}
