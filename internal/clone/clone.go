// Package clone creates and tracks derived copies of nodes: plain
// duplicates, registry clones, and the view trees built from them.
//
// Provenance is node-level: every copied node's cloneOf points at its own
// direct source's guid, never at another clone (no chained provenance).
package clone

import (
	"strings"
	"time"

	"treelisty-cli/internal/identity"
	"treelisty-cli/internal/model"
	"treelisty-cli/internal/refs"
	"treelisty-cli/internal/tree"
)

// CopySubtree deep-copies src for insertion into t. Every node in the copy
// gets a fresh id and guid and a cloneOf pointing at its direct source. The
// returned translation map goes source id → copy id.
//
// References between copied nodes are retargeted: a dependency or ((id))
// token pointing at another node inside the copied subtree follows the copy,
// not the original. References leaving the subtree are left as they are.
func CopySubtree(t *model.Tree, src *model.Node) (*model.Node, map[string]string) {
	taken := map[string]bool{}
	idMap := map[string]string{}

	var walk func(n *model.Node) *model.Node
	walk = func(n *model.Node) *model.Node {
		c := identity.ReassignOnCopy(t, n, taken)
		taken[c.ID] = true
		idMap[n.ID] = c.ID
		for _, child := range n.Children {
			c.Children = append(c.Children, walk(child))
		}
		return c
	}
	copied := walk(src)

	copied.Walk(func(n *model.Node) bool {
		for i, dep := range n.Dependencies {
			if translated, ok := idMap[dep]; ok {
				n.Dependencies[i] = translated
			}
		}
		n.Description = TranslateRefs(n.Description, idMap)
		return true
	})
	return copied, idMap
}

// TranslateRefs rewrites local ((id)) tokens through idMap. Cross-tree and
// unmatched tokens pass through untouched. This is the one place the core
// rewrites reference text; deletes never do.
func TranslateRefs(text string, idMap map[string]string) string {
	toks := refs.Scan(text)
	if len(toks) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, tok := range toks {
		if tok.Malformed || tok.TreeID != "" {
			continue
		}
		translated, ok := idMap[tok.Ref]
		if !ok {
			continue
		}
		b.WriteString(text[last:tok.Start])
		b.WriteString("((" + translated + "))")
		last = tok.End
	}
	b.WriteString(text[last:])
	return b.String()
}

// Entry records one clone creation.
type Entry struct {
	CloneGUID  string    `json:"cloneGuid"`
	SourceGUID string    `json:"sourceGuid"`
	TreeID     string    `json:"treeId"` // tree the clone was placed in
	CreatedAt  time.Time `json:"createdAt"`
}

// Registry tracks clones across a set of known trees.
type Registry struct {
	trees   []*model.Tree
	Entries []Entry `json:"entries"`
}

func NewRegistry(trees ...*model.Tree) *Registry {
	r := &Registry{}
	for _, t := range trees {
		r.AddTree(t)
	}
	return r
}

func (r *Registry) AddTree(t *model.Tree) {
	for _, existing := range r.trees {
		if existing == t {
			return
		}
	}
	r.trees = append(r.trees, t)
}

// CreateClone deep-copies the subtree at sourceID from src into dst under
// targetParentID, records the provenance entry, and returns the clone's root
// together with the source→clone id translation map.
func (r *Registry) CreateClone(src *tree.Store, sourceID string, dst *tree.Store, targetParentID string) (*model.Node, map[string]string, error) {
	source := FindNodeByIDDeep(sourceID, src.Tree)
	if source == nil {
		return nil, nil, tree.NotFoundError{ID: sourceID}
	}

	copied, idMap := CopySubtree(dst.Tree, source)
	if err := dst.Insert(targetParentID, copied, -1); err != nil {
		return nil, nil, err
	}

	r.AddTree(src.Tree)
	r.AddTree(dst.Tree)
	r.Entries = append(r.Entries, Entry{
		CloneGUID:  copied.GUID,
		SourceGUID: source.GUID,
		TreeID:     dst.Tree.ID,
		CreatedAt:  time.Now().UTC(),
	})
	return copied, idMap, nil
}

// GetSource returns the live source node for a clone's guid. ok is false
// when the clone is unknown or its source was deleted since; that is a
// reportable condition, not an error, and the clone itself stays valid.
func (r *Registry) GetSource(cloneGUID string) (*model.Node, bool) {
	var sourceGUID string
	for _, e := range r.Entries {
		if e.CloneGUID == cloneGUID {
			sourceGUID = e.SourceGUID
			break
		}
	}
	if sourceGUID == "" {
		// Fall back to the node's own provenance pointer; duplicates made
		// outside the registry still carry cloneOf.
		if n := r.findByGUID(cloneGUID); n != nil {
			sourceGUID = n.CloneOf
		}
	}
	if sourceGUID == "" {
		return nil, false
	}
	n := r.findByGUID(sourceGUID)
	return n, n != nil
}

// GetAllClones lists every live clone of a source guid across the registered
// trees, in registration order. One source fanning out into many view trees
// yields one element per destination.
func (r *Registry) GetAllClones(sourceGUID string) []*model.Node {
	var out []*model.Node
	for _, t := range r.trees {
		if t.Root == nil {
			continue
		}
		t.Root.Walk(func(n *model.Node) bool {
			if n.CloneOf == sourceGUID {
				out = append(out, n)
			}
			return true
		})
	}
	return out
}

func (r *Registry) findByGUID(guid string) *model.Node {
	for _, t := range r.trees {
		if t.Root == nil {
			continue
		}
		var found *model.Node
		t.Root.Walk(func(n *model.Node) bool {
			if n.GUID == guid {
				found = n
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// FindNodeByIDDeep is a depth-first first-match search over an entire tree.
// View-tree selection addresses nodes by their original tree's ids before
// cloning, which is exactly this lookup.
func FindNodeByIDDeep(id string, t *model.Tree) *model.Node {
	id = strings.TrimSpace(id)
	if id == "" || t == nil || t.Root == nil {
		return nil
	}
	var found *model.Node
	t.Root.Walk(func(n *model.Node) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// CreateViewTree builds a new tree of origin kind "view" whose root children
// are clones of the source nodes addressed by ids (depth-first lookup in the
// source tree, in the order given). Unknown ids are skipped and reported in
// the returned list rather than failing the whole selection.
func (r *Registry) CreateViewTree(src *tree.Store, name string, ids []string) (*model.Tree, []string, error) {
	vt := tree.NewTree(name, src.Tree.Pattern.Key)
	vt.Origin = &model.Origin{
		Kind:      model.OriginView,
		SourceID:  src.Tree.ID,
		CreatedAt: time.Now().UTC(),
	}
	dst := tree.New(vt)

	var missing []string
	for _, id := range ids {
		if FindNodeByIDDeep(id, src.Tree) == nil {
			missing = append(missing, id)
			continue
		}
		if _, _, err := r.CreateClone(src, id, dst, vt.ID); err != nil {
			return nil, missing, err
		}
	}
	return vt, missing, nil
}
