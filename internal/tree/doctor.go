package tree

import (
	"fmt"

	"treelisty-cli/internal/model"
)

// Finding is one report-only defect. Nothing here ever blocks loading or
// editing a tree.
type Finding struct {
	Kind   string `json:"kind"` // duplicate-id | missing-dependency | missing-guid | dangling-clone-of
	NodeID string `json:"nodeId"`
	Detail string `json:"detail"`
}

// Doctor scans the tree for integrity defects the operations cannot prevent:
// duplicate ids (imported data), dependencies whose target is gone, nodes
// without a guid, and provenance pointers whose source guid is not in this
// tree. The last one is only a hint: cloneOf may legitimately point into
// another tree.
func (s *Store) Doctor() []Finding {
	var out []Finding
	if s.Tree == nil || s.Tree.Root == nil {
		return out
	}

	ids := map[string]int{}
	guids := map[string]bool{}
	s.Walk(func(n *model.Node) bool {
		ids[n.ID]++
		if n.GUID != "" {
			guids[n.GUID] = true
		}
		return true
	})

	s.Walk(func(n *model.Node) bool {
		if ids[n.ID] > 1 {
			out = append(out, Finding{
				Kind:   "duplicate-id",
				NodeID: n.ID,
				Detail: fmt.Sprintf("id %q appears %d times; lookups resolve to the first in depth-first order", n.ID, ids[n.ID]),
			})
		}
		if n.GUID == "" {
			out = append(out, Finding{Kind: "missing-guid", NodeID: n.ID, Detail: "node has no guid"})
		}
		for _, dep := range n.Dependencies {
			if ids[dep] == 0 {
				out = append(out, Finding{
					Kind:   "missing-dependency",
					NodeID: n.ID,
					Detail: fmt.Sprintf("dependency target %q is not in the tree", dep),
				})
			}
		}
		if n.CloneOf != "" && !guids[n.CloneOf] {
			out = append(out, Finding{
				Kind:   "dangling-clone-of",
				NodeID: n.ID,
				Detail: fmt.Sprintf("clone source guid %q is not in this tree", n.CloneOf),
			})
		}
		return true
	})
	return out
}
