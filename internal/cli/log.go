package cli

import (
	"github.com/spf13/cobra"
)

func newLogCmd(app *App) *cobra.Command {
	var limit int
	var all bool
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent mutation events (newest last)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				s, err := workspace(app)
				if err != nil {
					return writeErr(cmd, err)
				}
				events, err := s.ReadEventsTail(limit)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": events})
			}
			s, st, _, err := loadCurrentTree(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			events, err := s.ReadEventsForTree(st.Tree.ID, limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": events})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of events")
	cmd.Flags().BoolVar(&all, "all", false, "Events for every tree, not just the current one")
	return cmd
}
