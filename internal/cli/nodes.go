package cli

import (
	"encoding/json"
	"strings"

	"treelisty-cli/internal/model"
	"treelisty-cli/internal/mutate"
	"treelisty-cli/internal/tree"

	"github.com/spf13/cobra"
)

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [node-id]",
		Short: "Show a node (default: the tree root)",
		Args:  cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, _, err := loadCurrentTree(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			n := st.Tree.Root
			if len(args) == 1 {
				n = st.Find(args[0])
				if n == nil {
					return writeErr(cmd, tree.NotFoundError{ID: args[0]})
				}
			}
			return writeOut(cmd, app, map[string]any{"data": nodeSummary(n)})
		},
	}
}

func newAddCmd(app *App) *cobra.Command {
	var parentID string
	var nodeType string
	var description string
	var index int

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a node under a parent (default: the root)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, st, h, err := loadCurrentTree(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			parent := parentID
			if parent == "" {
				parent = st.Tree.ID
			}
			n := &model.Node{
				Name:        args[0],
				Description: description,
				Type:        nodeTypeOrDefault(st, nodeType, parent),
			}
			res, err := mutate.Add(st, h, parent, n, index)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := saveTree(s, st, h, "node.add", res.Node.ID, nodeSummary(res.Node)); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": nodeSummary(res.Node)})
		},
	}
	cmd.Flags().StringVar(&parentID, "parent", "", "Parent node id (default: tree root)")
	cmd.Flags().StringVar(&nodeType, "type", "", "Node type (default: one level below the parent)")
	cmd.Flags().StringVar(&description, "description", "", "Free-text description (may embed ((id)) references)")
	cmd.Flags().IntVar(&index, "at", -1, "Zero-based insertion index (default: append)")
	return cmd
}

// nodeTypeOrDefault derives the child level from the parent when no explicit
// type is given: root→phase→item→subtask, bottoming out at subtask.
func nodeTypeOrDefault(st *tree.Store, explicit, parentID string) model.NodeType {
	if explicit != "" {
		return model.NodeType(strings.TrimSpace(explicit))
	}
	parent := st.Find(parentID)
	if parent == nil {
		return model.NodeTypeItem
	}
	switch parent.Type {
	case model.NodeTypeRoot:
		return model.NodeTypePhase
	case model.NodeTypePhase:
		return model.NodeTypeItem
	default:
		return model.NodeTypeSubtask
	}
}

func newRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <node-id> <name>",
		Short: "Rename a node (renaming the root renames the tree)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, st, h, err := loadCurrentTree(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := mutate.Rename(st, h, args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := saveTree(s, st, h, "node.rename", args[0], map[string]any{"name": args[1]}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": nodeSummary(res.Node)})
		},
	}
}

func newDescribeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <node-id> <text>",
		Short: "Set a node's description (text may embed ((id)) references)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, st, h, err := loadCurrentTree(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := mutate.Describe(st, h, args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := saveTree(s, st, h, "node.describe", args[0], nil); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": nodeSummary(res.Node)})
		},
	}
}

func newSetCmd(app *App) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "set <node-id> <field> [value]",
		Short: "Set a pattern field (JSON values are decoded; otherwise stored as text)",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, st, h, err := loadCurrentTree(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			var value any
			if !clear {
				if len(args) < 3 {
					return writeErr(cmd, errMissingValue)
				}
				raw := args[2]
				if err := json.Unmarshal([]byte(raw), &value); err != nil {
					value = raw // plain text
				}
			}
			res, err := mutate.SetField(st, h, args[0], args[1], value)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := saveTree(s, st, h, "node.set", args[0], map[string]any{"field": args[1], "value": value}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": nodeSummary(res.Node)})
		},
	}
	cmd.Flags().BoolVar(&clear, "clear", false, "Remove the field instead of setting it")
	return cmd
}

func newMoveCmd(app *App) *cobra.Command {
	var index int

	cmd := &cobra.Command{
		Use:   "move <node-id> <new-parent-id>",
		Short: "Reparent a node (rejected if it would become its own descendant's child)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, st, h, err := loadCurrentTree(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := mutate.Move(st, h, args[0], args[1], index)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := saveTree(s, st, h, "node.move", args[0], map[string]any{"to": args[1], "at": index}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": nodeSummary(res.Node)})
		},
	}
	cmd.Flags().IntVar(&index, "at", -1, "Zero-based index at the new parent (default: append)")
	return cmd
}

func newRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <node-id>",
		Short: "Delete a node and its subtree (dependencies on it are stripped; ((id)) text stays)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, st, h, err := loadCurrentTree(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := mutate.Remove(st, h, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if err := saveTree(s, st, h, "node.remove", args[0], nil); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"removed": args[0]}})
		},
	}
}

func newMergeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <source-id> <target-id>",
		Short: "Move source's children under target, then delete source (same-name siblings both survive)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, st, h, err := loadCurrentTree(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := mutate.Merge(st, h, args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := saveTree(s, st, h, "node.merge", args[1], map[string]any{"source": args[0]}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": nodeSummary(res.Node)})
		},
	}
}

func newDuplicateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <node-id>",
		Short: "Deep-copy a subtree as a sibling (fresh ids/guids, per-node cloneOf provenance)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, st, h, err := loadCurrentTree(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := mutate.Duplicate(st, h, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := saveTree(s, st, h, "node.duplicate", res.Node.ID, map[string]any{"source": args[0]}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": nodeSummary(res.Node)})
		},
	}
}
