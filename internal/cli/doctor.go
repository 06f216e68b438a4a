package cli

import (
	"treelisty-cli/internal/model"
	"treelisty-cli/internal/pattern"
	"treelisty-cli/internal/refs"
	"treelisty-cli/internal/tree"

	"github.com/spf13/cobra"
)

func newDoctorCmd(app *App) *cobra.Command {
	var reindex bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Report structural problems in the current tree (no repairs)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, st, _, err := loadCurrentTree(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			findings := st.Doctor()

			// Broken and malformed references surface here too; Render
			// degrades them quietly, so this is where a human gets told.
			st.Walk(func(n *model.Node) bool {
				for _, r := range refs.ResolveAll(n.Description, st, s) {
					if r.Token.Malformed {
						findings = append(findings, tree.Finding{
							Kind:   "malformed-ref",
							NodeID: n.ID,
							Detail: r.Token.Raw,
						})
					} else if r.Kind == refs.KindBroken {
						findings = append(findings, tree.Finding{
							Kind:   "broken-ref",
							NodeID: n.ID,
							Detail: r.Token.Raw,
						})
					}
				}
				return true
			})

			for _, msg := range pattern.Validate(st.Tree) {
				findings = append(findings, tree.Finding{Kind: "pattern-field", Detail: msg})
			}

			out := map[string]any{"data": findings, "healthy": len(findings) == 0}
			if reindex {
				n, err := s.Reindex(cmd.Context())
				if err != nil {
					return writeErr(cmd, err)
				}
				out["reindexed"] = n
			}
			return writeOut(cmd, app, out)
		},
	}
	cmd.Flags().BoolVar(&reindex, "reindex", false, "Rebuild the tree registry index from tree files")
	return cmd
}
