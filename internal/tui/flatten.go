package tui

import (
	"treelisty-cli/internal/model"
	"treelisty-cli/internal/tree"
)

type outlineRow struct {
	node        *model.Node
	depth       int
	hasChildren bool
	collapsed   bool
}

// flattenOutline turns the tree into the visible row list, depth-first in
// child order. Children of a collapsed node are skipped entirely, so the
// cursor can only ever land on a visible row. The root itself is row zero.
func flattenOutline(st *tree.Store, collapsed map[string]bool) []outlineRow {
	var out []outlineRow
	var walk func(n *model.Node, depth int)
	walk = func(n *model.Node, depth int) {
		c := collapsed[n.ID]
		out = append(out, outlineRow{
			node:        n,
			depth:       depth,
			hasChildren: len(n.Children) > 0,
			collapsed:   c,
		})
		if c {
			return
		}
		for _, ch := range n.Children {
			walk(ch, depth+1)
		}
	}
	if st != nil && st.Tree != nil && st.Tree.Root != nil {
		walk(st.Tree.Root, 0)
	}
	return out
}

// initialCollapsed seeds the collapse map from the persisted expanded flags.
// The map is then mutated locally only; browsing never writes the tree back.
func initialCollapsed(st *tree.Store) map[string]bool {
	collapsed := map[string]bool{}
	if st == nil || st.Tree == nil || st.Tree.Root == nil {
		return collapsed
	}
	st.Tree.Root.Walk(func(n *model.Node) bool {
		if len(n.Children) > 0 && !n.Expanded {
			collapsed[n.ID] = true
		}
		return true
	})
	return collapsed
}
