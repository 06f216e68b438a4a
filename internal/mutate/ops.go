package mutate

import (
	"treelisty-cli/internal/clone"
	"treelisty-cli/internal/model"
	"treelisty-cli/internal/tree"
)

// Result reports what a mutation did. Node is the affected node after the
// mutation (nil for removals).
type Result struct {
	Changed bool
	Node    *model.Node
}

// Add inserts a new node under parentID. Empty id/guid are minted.
func Add(s *tree.Store, h *History, parentID string, n *model.Node, index int) (Result, error) {
	err := h.Apply(s, "add "+n.Name, func() error {
		return s.Insert(parentID, n, index)
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Changed: true, Node: n}, nil
}

func Rename(s *tree.Store, h *History, nodeID, name string) (Result, error) {
	err := h.Apply(s, "rename "+nodeID, func() error {
		return s.Rename(nodeID, name)
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Changed: true, Node: s.Find(nodeID)}, nil
}

func Describe(s *tree.Store, h *History, nodeID, description string) (Result, error) {
	err := h.Apply(s, "describe "+nodeID, func() error {
		return s.SetDescription(nodeID, description)
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Changed: true, Node: s.Find(nodeID)}, nil
}

func SetField(s *tree.Store, h *History, nodeID, key string, value any) (Result, error) {
	err := h.Apply(s, "set "+nodeID+"."+key, func() error {
		return s.SetField(nodeID, key, value)
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Changed: true, Node: s.Find(nodeID)}, nil
}

func Move(s *tree.Store, h *History, nodeID, newParentID string, index int) (Result, error) {
	err := h.Apply(s, "move "+nodeID, func() error {
		return s.Move(nodeID, newParentID, index)
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Changed: true, Node: s.Find(nodeID)}, nil
}

func Remove(s *tree.Store, h *History, nodeID string) (Result, error) {
	err := h.Apply(s, "remove "+nodeID, func() error {
		_, rerr := s.Remove(nodeID)
		return rerr
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Changed: true}, nil
}

func Merge(s *tree.Store, h *History, sourceID, targetID string) (Result, error) {
	err := h.Apply(s, "merge "+sourceID+" into "+targetID, func() error {
		return s.Merge(sourceID, targetID)
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Changed: true, Node: s.Find(targetID)}, nil
}

// Duplicate deep-copies nodeID as a sibling placed right after the source.
// Every copied node gets a fresh id/guid and a cloneOf pointing at its own
// direct source, same as a registry clone (one provenance convention
// everywhere; clear CloneOf afterwards if the copy should not count).
func Duplicate(s *tree.Store, h *History, nodeID string) (Result, error) {
	var dup *model.Node
	err := h.Apply(s, "duplicate "+nodeID, func() error {
		src := s.Find(nodeID)
		if src == nil {
			return tree.NotFoundError{ID: nodeID}
		}
		parent := s.ParentOf(src.ID)
		if parent == nil {
			return tree.InvalidParentError{ID: nodeID, Reason: "cannot duplicate the root"}
		}
		copied, _ := clone.CopySubtree(s.Tree, src)
		index := -1
		for i, c := range parent.Children {
			if c == src {
				index = i + 1
				break
			}
		}
		if err := s.Insert(parent.ID, copied, index); err != nil {
			return err
		}
		dup = copied
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Changed: true, Node: dup}, nil
}

func AddDependency(s *tree.Store, h *History, nodeID, depID string) (Result, error) {
	err := h.Apply(s, "dep "+nodeID+" -> "+depID, func() error {
		return s.AddDependency(nodeID, depID)
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Changed: true, Node: s.Find(nodeID)}, nil
}

func RemoveDependency(s *tree.Store, h *History, nodeID, depID string) (Result, error) {
	err := h.Apply(s, "undep "+nodeID+" -> "+depID, func() error {
		return s.RemoveDependency(nodeID, depID)
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Changed: true, Node: s.Find(nodeID)}, nil
}
