package cli

import (
	"treelisty-cli/internal/gitrepo"

	"github.com/spf13/cobra"
)

func newSyncCmd(app *App) *cobra.Command {
	var message string
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Commit the workspace's canonical files to git",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := workspace(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if statusOnly {
				st, err := gitrepo.GetStatus(cmd.Context(), s.Dir)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": st})
			}
			committed, err := gitrepo.CommitWorkspace(cmd.Context(), s.Dir, message)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"committed": committed}})
		},
	}

	cmd.Flags().StringVar(&message, "message", "", "Commit message (default: summary of new events)")
	cmd.Flags().BoolVar(&statusOnly, "status", false, "Show git status for the workspace without committing")
	return cmd
}
