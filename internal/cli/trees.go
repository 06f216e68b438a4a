package cli

import (
	"errors"
	"fmt"

	"treelisty-cli/internal/pattern"
	"treelisty-cli/internal/tree"

	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	var patternKey string

	cmd := &cobra.Command{
		Use:   "init <name>",
		Short: "Create a workspace (if needed) and a first tree, and make it current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := workspace(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Ensure(); err != nil {
				return writeErr(cmd, err)
			}
			if patternKey != "" && !pattern.Known(patternKey) {
				return writeErr(cmd, fmt.Errorf("unknown pattern %q (see `treelisty patterns`)", patternKey))
			}

			t := tree.NewTree(args[0], patternKey)
			if err := s.SaveTree(t); err != nil {
				return writeErr(cmd, err)
			}
			cfg, err := s.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg.CurrentTreeID = t.ID
			if err := s.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.AppendEvent("tree.create", t.ID, "", map[string]any{"name": t.Name, "pattern": t.Pattern.Key}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"id": t.ID, "guid": t.GUID, "name": t.Name, "pattern": t.Pattern.Key,
			}})
		},
	}
	cmd.Flags().StringVar(&patternKey, "pattern", "generic", "Pattern key for the new tree")
	return cmd
}

func newTreesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trees",
		Short: "Tree registry commands",
	}
	cmd.AddCommand(newTreesListCmd(app))
	cmd.AddCommand(newTreesCreateCmd(app))
	cmd.AddCommand(newTreesUseCmd(app))
	cmd.AddCommand(newTreesRmCmd(app))
	return cmd
}

func newTreesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the workspace's trees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := workspace(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			infos, err := s.ListTrees()
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg, _ := s.LoadConfig()
			return writeOut(cmd, app, map[string]any{"data": infos, "current": cfg.CurrentTreeID})
		},
	}
}

func newTreesCreateCmd(app *App) *cobra.Command {
	var patternKey string
	var use bool

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := workspace(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if patternKey != "" && !pattern.Known(patternKey) {
				return writeErr(cmd, fmt.Errorf("unknown pattern %q (see `treelisty patterns`)", patternKey))
			}
			t := tree.NewTree(args[0], patternKey)
			if err := s.SaveTree(t); err != nil {
				return writeErr(cmd, err)
			}
			if use {
				cfg, err := s.LoadConfig()
				if err != nil {
					return writeErr(cmd, err)
				}
				cfg.CurrentTreeID = t.ID
				if err := s.SaveConfig(cfg); err != nil {
					return writeErr(cmd, err)
				}
			}
			if err := s.AppendEvent("tree.create", t.ID, "", map[string]any{"name": t.Name, "pattern": t.Pattern.Key}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"id": t.ID, "guid": t.GUID, "name": t.Name, "pattern": t.Pattern.Key,
			}})
		},
	}
	cmd.Flags().StringVar(&patternKey, "pattern", "generic", "Pattern key for the new tree")
	cmd.Flags().BoolVar(&use, "use", false, "Make the new tree current")
	return cmd
}

func newTreesUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <tree-id>",
		Short: "Make a tree the current one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := workspace(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := s.LoadTree(args[0]); err != nil {
				return writeErr(cmd, fmt.Errorf("tree not found: %s", args[0]))
			}
			cfg, err := s.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg.CurrentTreeID = args[0]
			if err := s.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"current": args[0]}})
		},
	}
}

func newTreesRmCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <tree-id>",
		Short: "Delete a tree from the workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return writeErr(cmd, errors.New("refusing to delete without --yes"))
			}
			s, err := workspace(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.DeleteTree(args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.AppendEvent("tree.delete", args[0], "", nil); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": args[0]}})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}
