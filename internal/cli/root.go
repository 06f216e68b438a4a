package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"treelisty-cli/internal/format"
	"treelisty-cli/internal/model"
	"treelisty-cli/internal/mutate"
	"treelisty-cli/internal/store"
	"treelisty-cli/internal/tree"
	"treelisty-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	TreeID     string
	PrettyJSON bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "treelisty",
		Short:        "TreeListy (local-first) tree CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive outline browser
  treelisty

  # Scriptable commands
  treelisty trees list
  treelisty add --parent phase-abc "New item"

  # Direct node lookup (shortcut for: treelisty show <node-id>)
  treelisty item-vthqk3la
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("TREELISTY_DIR", ""), "Path to workspace dir (default: nearest .treelisty, else ./.treelisty)")
	cmd.PersistentFlags().StringVar(&app.TreeID, "tree", envOr("TREELISTY_TREE", ""), "Tree id (overrides currentTreeId in config.json)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newTreesCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newRenameCmd(app))
	cmd.AddCommand(newDescribeCmd(app))
	cmd.AddCommand(newSetCmd(app))
	cmd.AddCommand(newMoveCmd(app))
	cmd.AddCommand(newRmCmd(app))
	cmd.AddCommand(newMergeCmd(app))
	cmd.AddCommand(newDuplicateCmd(app))
	cmd.AddCommand(newCloneCmd(app))
	cmd.AddCommand(newViewCmd(app))
	cmd.AddCommand(newAuditCmd(app))
	cmd.AddCommand(newUndoCmd(app))
	cmd.AddCommand(newRedoCmd(app))
	cmd.AddCommand(newDepsCmd(app))
	cmd.AddCommand(newRefsCmd(app))
	cmd.AddCommand(newRenderCmd(app))
	cmd.AddCommand(newPatternsCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newLogCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newSyncCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newBrowseCmd(app))

	return cmd
}

func runTUI(app *App) error {
	s, st, _, err := loadCurrentTree(app)
	if err != nil {
		return err
	}
	return tui.Run(s, st)
}

func workspace(app *App) (store.Store, error) {
	dir := app.Dir
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return store.Store{}, err
		}
		dir = d
		app.Dir = dir
	}
	return store.Store{Dir: dir}, nil
}

// loadCurrentTree resolves the target tree (--tree flag, then config) and
// loads it together with its persisted undo history.
func loadCurrentTree(app *App) (store.Store, *tree.Store, *mutate.History, error) {
	s, err := workspace(app)
	if err != nil {
		return store.Store{}, nil, nil, err
	}
	treeID := app.TreeID
	if treeID == "" {
		cfg, err := s.LoadConfig()
		if err != nil {
			return s, nil, nil, err
		}
		treeID = cfg.CurrentTreeID
	}
	if treeID == "" {
		return s, nil, nil, errors.New("no current tree; run `treelisty init <name>` or `treelisty trees use <tree-id>` (or pass --tree)")
	}

	t, err := s.LoadTree(treeID)
	if err != nil {
		return s, nil, nil, fmt.Errorf("load tree %s: %w", treeID, err)
	}
	h, err := s.LoadHistory(treeID)
	if err != nil {
		return s, nil, nil, err
	}
	return s, tree.New(t), h, nil
}

// saveTree persists the tree, its history, and one event line. Mutating
// commands call this exactly once, after the mutation succeeded.
func saveTree(s store.Store, st *tree.Store, h *mutate.History, op, nodeID string, payload any) error {
	if err := s.SaveTree(st.Tree); err != nil {
		return err
	}
	if h != nil {
		if err := s.SaveHistory(st.Tree.ID, h); err != nil {
			return err
		}
	}
	return s.AppendEvent(op, st.Tree.ID, nodeID, payload)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.WriteJSON(cmd.OutOrStdout(), v, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

// nodeSummary is the CLI's public shape for one node (children folded to
// their ids; pattern fields inlined by the model's marshaler).
func nodeSummary(n *model.Node) map[string]any {
	out := map[string]any{
		"id":   n.ID,
		"guid": n.GUID,
		"name": n.Name,
		"type": n.Type,
	}
	if n.Description != "" {
		out["description"] = n.Description
	}
	if n.CloneOf != "" {
		out["cloneOf"] = n.CloneOf
	}
	if len(n.Dependencies) > 0 {
		out["dependencies"] = n.Dependencies
	}
	if len(n.Fields) > 0 {
		out["fields"] = n.Fields
	}
	if len(n.Children) > 0 {
		ids := make([]string, 0, len(n.Children))
		for _, c := range n.Children {
			ids = append(ids, c.ID)
		}
		out["children"] = ids
	}
	return out
}
