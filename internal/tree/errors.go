package tree

import "fmt"

// NotFoundError: the addressed node is not in the tree.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("node not found: %s", e.ID)
}

// InvalidParentError: the addressed parent is absent or cannot take children
// (e.g. moving the root).
type InvalidParentError struct {
	ID     string
	Reason string
}

func (e InvalidParentError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid parent %s: %s", e.ID, e.Reason)
	}
	return fmt.Sprintf("invalid parent: %s", e.ID)
}

// CycleError: the move would make a node its own descendant's child.
type CycleError struct {
	NodeID   string
	ParentID string
}

func (e CycleError) Error() string {
	return fmt.Sprintf("cycle: %s is inside the subtree of %s", e.ParentID, e.NodeID)
}

// DuplicateIDError: an explicitly assigned id is already present in the tree.
// Auto-minted ids never produce this.
type DuplicateIDError struct {
	ID string
}

func (e DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate id: %s", e.ID)
}
