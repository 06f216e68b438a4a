package cli

import (
	"treelisty-cli/internal/publish"

	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var toDir string
	var overwrite bool
	var renderRefs bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the current tree as a Markdown document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, st, _, err := loadCurrentTree(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			opt := publish.WriteOptions{Overwrite: overwrite}
			opt.RenderRefs = renderRefs
			opt.Registry = s
			res, err := publish.WriteTree(st, toDir, opt)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}

	cmd.Flags().StringVar(&toDir, "to", "", "Directory to write <tree-id>.md into")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing export")
	cmd.Flags().BoolVar(&renderRefs, "render-refs", false, "Replace ((ref)) tokens with current node names")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
