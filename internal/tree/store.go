// Package tree holds the in-memory tree store and its structural operations.
//
// Every operation validates before it mutates: a rejected call leaves the
// tree exactly as it was, so callers can snapshot-before / compare-after.
package tree

import (
	"strings"

	"treelisty-cli/internal/identity"
	"treelisty-cli/internal/model"
)

// Store owns one tree. Operations take the store explicitly; there is no
// ambient "current tree" anywhere in the core.
type Store struct {
	Tree *model.Tree
}

func New(t *model.Tree) *Store {
	return &Store{Tree: t}
}

// NewTree builds an empty tree with a minted identity and the given pattern.
func NewTree(name, patternKey string) *model.Tree {
	guid := identity.MintGUID()
	id, err := identity.NewRandomID("tree")
	if err != nil {
		id = "tree-" + guid[:8]
	}
	root := &model.Node{
		ID:       id,
		GUID:     guid,
		Name:     name,
		Type:     model.NodeTypeRoot,
		Expanded: true,
	}
	return &model.Tree{
		ID:      id,
		GUID:    guid,
		Name:    name,
		Pattern: model.Pattern{Key: patternKey},
		Root:    root,
	}
}

// Find returns the first node with id in depth-first child order, or nil.
// Duplicate ids are a reportable defect (see Doctor); lookups stay
// deterministic by always taking the first match.
func (s *Store) Find(id string) *model.Node {
	id = strings.TrimSpace(id)
	if id == "" || s.Tree == nil || s.Tree.Root == nil {
		return nil
	}
	var found *model.Node
	s.Tree.Root.Walk(func(n *model.Node) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindByGUID returns the first node with guid in depth-first child order.
func (s *Store) FindByGUID(guid string) *model.Node {
	guid = strings.TrimSpace(guid)
	if guid == "" || s.Tree == nil || s.Tree.Root == nil {
		return nil
	}
	var found *model.Node
	s.Tree.Root.Walk(func(n *model.Node) bool {
		if n.GUID == guid {
			found = n
			return false
		}
		return true
	})
	return found
}

// ParentOf returns the parent of the node with id, or nil for the root
// (and for ids not in the tree).
func (s *Store) ParentOf(id string) *model.Node {
	if s.Tree == nil || s.Tree.Root == nil {
		return nil
	}
	var parent *model.Node
	s.Tree.Root.Walk(func(n *model.Node) bool {
		for _, c := range n.Children {
			if c.ID == id {
				parent = n
				return false
			}
		}
		return true
	})
	return parent
}

// Walk visits every node depth-first in child order.
func (s *Store) Walk(fn func(*model.Node) bool) {
	if s.Tree == nil || s.Tree.Root == nil {
		return
	}
	s.Tree.Root.Walk(fn)
}

// Insert attaches n under parentID at index (index < 0 or past the end:
// append). Nodes without an id get one minted; explicitly assigned ids that
// already exist in the tree are rejected with DuplicateIDError. The whole
// inserted subtree is checked before anything is attached.
func (s *Store) Insert(parentID string, n *model.Node, index int) error {
	parent := s.Find(parentID)
	if parent == nil {
		return InvalidParentError{ID: parentID}
	}

	taken := map[string]bool{}
	var prep func(x *model.Node) error
	prep = func(x *model.Node) error {
		if strings.TrimSpace(x.ID) == "" {
			x.ID = identity.MintIDAvoiding(s.Tree, idPrefix(x.Type), taken)
		} else if taken[x.ID] || identity.IDExists(s.Tree, x.ID) {
			return DuplicateIDError{ID: x.ID}
		}
		taken[x.ID] = true
		if x.GUID == "" {
			x.GUID = identity.MintGUID()
		}
		for _, c := range x.Children {
			if err := prep(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := prep(n); err != nil {
		return err
	}

	insertAt(parent, n, index)
	return nil
}

// Remove detaches the node (and its subtree) and strips the removed ids from
// every remaining node's dependencies. Free text mentioning the removed ids
// is left alone; those references simply resolve as broken from now on.
func (s *Store) Remove(nodeID string) (*model.Node, error) {
	n := s.Find(nodeID)
	if n == nil {
		return nil, NotFoundError{ID: nodeID}
	}
	parent := s.ParentOf(n.ID)
	if parent == nil {
		return nil, InvalidParentError{ID: nodeID, Reason: "cannot remove the root"}
	}

	removed := map[string]bool{}
	n.Walk(func(x *model.Node) bool {
		removed[x.ID] = true
		return true
	})

	detach(parent, n)

	s.Walk(func(x *model.Node) bool {
		if len(x.Dependencies) == 0 {
			return true
		}
		kept := x.Dependencies[:0]
		for _, dep := range x.Dependencies {
			if !removed[dep] {
				kept = append(kept, dep)
			}
		}
		if len(kept) == 0 {
			x.Dependencies = nil
		} else {
			x.Dependencies = kept
		}
		return true
	})
	return n, nil
}

// Move reparents nodeID under newParentID at index. Rejected with CycleError
// when the new parent lies inside the moved subtree; nothing is touched on
// rejection.
func (s *Store) Move(nodeID, newParentID string, index int) error {
	n := s.Find(nodeID)
	if n == nil {
		return NotFoundError{ID: nodeID}
	}
	oldParent := s.ParentOf(n.ID)
	if oldParent == nil {
		return InvalidParentError{ID: nodeID, Reason: "cannot move the root"}
	}
	newParent := s.Find(newParentID)
	if newParent == nil {
		return InvalidParentError{ID: newParentID}
	}

	inside := false
	n.Walk(func(x *model.Node) bool {
		if x == newParent {
			inside = true
			return false
		}
		return true
	})
	if inside {
		return CycleError{NodeID: nodeID, ParentID: newParentID}
	}

	// Same-parent reorders: the index refers to the children slice after the
	// node is taken out, which is what callers see in every renderer.
	detach(oldParent, n)
	insertAt(newParent, n, index)
	return nil
}

// Merge moves all of source's children under target (appended, in order),
// then deletes source. Target keeps its own fields. Same-name children from
// the two sides both survive as siblings; nothing is auto-resolved.
func (s *Store) Merge(sourceID, targetID string) error {
	src := s.Find(sourceID)
	if src == nil {
		return NotFoundError{ID: sourceID}
	}
	dst := s.Find(targetID)
	if dst == nil {
		return NotFoundError{ID: targetID}
	}
	if src == dst {
		return InvalidParentError{ID: targetID, Reason: "cannot merge a node into itself"}
	}
	if s.ParentOf(src.ID) == nil {
		return InvalidParentError{ID: sourceID, Reason: "cannot merge the root away"}
	}

	// Target inside source's subtree would orphan target with its new
	// children; same rejection as a cyclic move.
	inside := false
	src.Walk(func(x *model.Node) bool {
		if x == dst {
			inside = true
			return false
		}
		return true
	})
	if inside {
		return CycleError{NodeID: sourceID, ParentID: targetID}
	}

	dst.Children = append(dst.Children, src.Children...)
	src.Children = nil
	_, err := s.Remove(src.ID)
	return err
}

// Rename updates the display name. Renaming the root renames the tree.
func (s *Store) Rename(nodeID, name string) error {
	n := s.Find(nodeID)
	if n == nil {
		return NotFoundError{ID: nodeID}
	}
	n.Name = name
	if n == s.Tree.Root {
		s.Tree.Name = name
	}
	return nil
}

// SetDescription replaces a node's free text. Reference tokens inside it are
// resolved at render time, never rewritten here.
func (s *Store) SetDescription(nodeID, description string) error {
	n := s.Find(nodeID)
	if n == nil {
		return NotFoundError{ID: nodeID}
	}
	n.Description = description
	return nil
}

// SetField sets (or, with a nil value, clears) a pattern-specific field.
func (s *Store) SetField(nodeID, key string, value any) error {
	n := s.Find(nodeID)
	if n == nil {
		return NotFoundError{ID: nodeID}
	}
	if value == nil {
		delete(n.Fields, key)
		if len(n.Fields) == 0 {
			n.Fields = nil
		}
		return nil
	}
	if n.Fields == nil {
		n.Fields = map[string]any{}
	}
	n.Fields[key] = value
	return nil
}

// AddDependency records that nodeID depends on depID. Both ends must exist
// in this tree at the time of the call.
func (s *Store) AddDependency(nodeID, depID string) error {
	n := s.Find(nodeID)
	if n == nil {
		return NotFoundError{ID: nodeID}
	}
	if s.Find(depID) == nil {
		return NotFoundError{ID: depID}
	}
	for _, d := range n.Dependencies {
		if d == depID {
			return nil
		}
	}
	n.Dependencies = append(n.Dependencies, depID)
	return nil
}

// RemoveDependency drops depID from nodeID's dependencies, if present.
func (s *Store) RemoveDependency(nodeID, depID string) error {
	n := s.Find(nodeID)
	if n == nil {
		return NotFoundError{ID: nodeID}
	}
	for i, d := range n.Dependencies {
		if d == depID {
			n.Dependencies = append(n.Dependencies[:i], n.Dependencies[i+1:]...)
			if len(n.Dependencies) == 0 {
				n.Dependencies = nil
			}
			return nil
		}
	}
	return nil
}

// SetExpanded flips the presentation-only expansion flag.
func (s *Store) SetExpanded(nodeID string, expanded bool) error {
	n := s.Find(nodeID)
	if n == nil {
		return NotFoundError{ID: nodeID}
	}
	n.Expanded = expanded
	return nil
}

func insertAt(parent *model.Node, n *model.Node, index int) {
	if index < 0 || index >= len(parent.Children) {
		parent.Children = append(parent.Children, n)
		return
	}
	parent.Children = append(parent.Children, nil)
	copy(parent.Children[index+1:], parent.Children[index:])
	parent.Children[index] = n
}

func detach(parent *model.Node, n *model.Node) {
	for i, c := range parent.Children {
		if c == n {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			if len(parent.Children) == 0 {
				parent.Children = nil
			}
			return
		}
	}
}

func idPrefix(t model.NodeType) string {
	switch t {
	case model.NodeTypePhase:
		return "phase"
	case model.NodeTypeSubtask:
		return "sub"
	default:
		return "item"
	}
}
