package cli

import (
	"treelisty-cli/internal/clone"
	"treelisty-cli/internal/model"
	"treelisty-cli/internal/store"
	"treelisty-cli/internal/tree"

	"github.com/spf13/cobra"
)

func newCloneCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clone",
		Short: "Clone subtrees and inspect clone provenance",
	}
	cmd.AddCommand(newCloneCreateCmd(app))
	cmd.AddCommand(newCloneSourceCmd(app))
	cmd.AddCommand(newCloneListCmd(app))
	return cmd
}

func newCloneCreateCmd(app *App) *cobra.Command {
	var intoTree, parentID string
	cmd := &cobra.Command{
		Use:   "create <source-id>",
		Short: "Clone a subtree, minting fresh ids and recording provenance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, st, _, err := loadCurrentTree(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			// Default destination is the current tree; --into-tree clones
			// across trees, mutating only the destination.
			dst := st
			if intoTree != "" && intoTree != st.Tree.ID {
				t, err := s.LoadTree(intoTree)
				if err != nil {
					return writeErr(cmd, err)
				}
				dst = tree.New(t)
			}
			dh, err := s.LoadHistory(dst.Tree.ID)
			if err != nil {
				return writeErr(cmd, err)
			}

			parent := parentID
			if parent == "" {
				parent = dst.Tree.ID
			}

			reg := clone.NewRegistry(st.Tree, dst.Tree)
			var copied *model.Node
			var idMap map[string]string
			if err := dh.Apply(dst, "clone", func() error {
				c, m, err := reg.CreateClone(st, args[0], dst, parent)
				copied, idMap = c, m
				return err
			}); err != nil {
				return writeErr(cmd, err)
			}

			if err := saveTree(s, dst, dh, "clone.create", copied.ID, map[string]any{
				"sourceId":   args[0],
				"sourceTree": st.Tree.ID,
				"idMap":      idMap,
			}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"node":  nodeSummary(copied),
				"tree":  dst.Tree.ID,
				"idMap": idMap,
			}})
		},
	}
	cmd.Flags().StringVar(&intoTree, "into-tree", "", "Destination tree id (default: current tree)")
	cmd.Flags().StringVar(&parentID, "parent", "", "Destination parent node id (default: destination root)")
	return cmd
}

func newCloneSourceCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "source <clone-guid>",
		Short: "Show the live source node behind a clone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := workspace(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			reg, err := registryOverWorkspace(s)
			if err != nil {
				return writeErr(cmd, err)
			}
			src, ok := reg.GetSource(args[0])
			if !ok {
				return writeOut(cmd, app, map[string]any{"data": nil, "found": false})
			}
			return writeOut(cmd, app, map[string]any{"data": nodeSummary(src), "found": true})
		},
	}
}

func newCloneListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <source-guid>",
		Short: "List every clone of a source node across all trees",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := workspace(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			reg, err := registryOverWorkspace(s)
			if err != nil {
				return writeErr(cmd, err)
			}
			out := []map[string]any{}
			for _, c := range reg.GetAllClones(args[0]) {
				out = append(out, nodeSummary(c))
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
}

func newViewCmd(app *App) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "view <node-id>...",
		Short: "Create a view tree whose roots are clones of the given nodes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, st, _, err := loadCurrentTree(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if name == "" {
				name = "View of " + st.Tree.Name
			}
			reg := clone.NewRegistry(st.Tree)
			vt, missing, err := reg.CreateViewTree(st, name, args)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.SaveTree(vt); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.AppendEvent("view.create", vt.ID, "", map[string]any{
				"sourceTree": st.Tree.ID,
				"nodes":      args,
				"missing":    missing,
			}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"treeId":  vt.ID,
				"name":    vt.Name,
				"missing": missing,
			}})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Name for the view tree")
	return cmd
}

func newAuditCmd(app *App) *cobra.Command {
	var cloneTree string
	cmd := &cobra.Command{
		Use:   "audit <source-id> <clone-id>",
		Short: "Verify a clone still mirrors its source (ids translated, no drift)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, st, _, err := loadCurrentTree(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ct := st.Tree
			if cloneTree != "" && cloneTree != st.Tree.ID {
				t, err := s.LoadTree(cloneTree)
				if err != nil {
					return writeErr(cmd, err)
				}
				ct = t
			}
			src := clone.FindNodeByIDDeep(args[0], st.Tree)
			if src == nil {
				return writeErr(cmd, tree.NotFoundError{ID: args[0]})
			}
			cl := clone.FindNodeByIDDeep(args[1], ct)
			if cl == nil {
				return writeErr(cmd, tree.NotFoundError{ID: args[1]})
			}
			idMap := clone.RebuildIDMap(src, cl)
			return writeOut(cmd, app, map[string]any{"data": clone.FullAudit(src, cl, idMap)})
		},
	}
	cmd.Flags().StringVar(&cloneTree, "clone-tree", "", "Tree holding the clone (default: current tree)")
	return cmd
}

// registryOverWorkspace loads every readable tree into one clone registry,
// for commands that follow provenance across tree boundaries.
func registryOverWorkspace(s store.Store) (*clone.Registry, error) {
	infos, err := s.ListTrees()
	if err != nil {
		return nil, err
	}
	reg := clone.NewRegistry()
	for _, info := range infos {
		t, err := s.LoadTree(info.ID)
		if err != nil {
			continue
		}
		reg.AddTree(t)
	}
	return reg, nil
}
