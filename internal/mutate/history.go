// Package mutate wraps tree operations with a linear undo/redo history.
//
// Every successful mutation pushes a full pre-mutation serialization of the
// tree and clears the redo stack. Snapshots are whole-tree rather than
// per-subtree diffs: moves and merges are not cleanly invertible via a diff,
// and trees at interactive-editing scale serialize in microseconds.
package mutate

import (
	"treelisty-cli/internal/model"
	"treelisty-cli/internal/tree"
)

// DefaultMaxDepth bounds the undo stack. Oldest snapshots fall off first.
const DefaultMaxDepth = 100

type Snapshot struct {
	Label string `json:"label"`
	State []byte `json:"state"`
}

// History is the linear undo/redo stack for one tree. The zero value is
// ready to use. It serializes, so a CLI can persist it between invocations.
type History struct {
	Undo     []Snapshot `json:"undo"`
	Redo     []Snapshot `json:"redo"`
	MaxDepth int        `json:"maxDepth,omitempty"`
}

// Apply runs op against the store. On success the pre-mutation snapshot is
// pushed and redo is cleared; on failure nothing is recorded (the operation
// itself guarantees it rejected before mutating).
func (h *History) Apply(s *tree.Store, label string, op func() error) error {
	before, err := model.Serialize(s.Tree)
	if err != nil {
		return err
	}
	if err := op(); err != nil {
		return err
	}
	h.Undo = append(h.Undo, Snapshot{Label: label, State: before})
	max := h.MaxDepth
	if max <= 0 {
		max = DefaultMaxDepth
	}
	if len(h.Undo) > max {
		h.Undo = append([]Snapshot(nil), h.Undo[len(h.Undo)-max:]...)
	}
	h.Redo = nil
	return nil
}

// UndoOp restores the most recent snapshot. It does not push onto the undo
// stack (the current state goes to redo instead), so the stacks drain.
// Returns false when there is nothing to undo.
func (h *History) UndoOp(s *tree.Store) (bool, error) {
	if len(h.Undo) == 0 {
		return false, nil
	}
	top := h.Undo[len(h.Undo)-1]

	current, err := model.Serialize(s.Tree)
	if err != nil {
		return false, err
	}
	if err := restore(s, top.State); err != nil {
		return false, err
	}
	h.Undo = h.Undo[:len(h.Undo)-1]
	h.Redo = append(h.Redo, Snapshot{Label: top.Label, State: current})
	return true, nil
}

// RedoOp re-applies the most recently undone mutation.
func (h *History) RedoOp(s *tree.Store) (bool, error) {
	if len(h.Redo) == 0 {
		return false, nil
	}
	top := h.Redo[len(h.Redo)-1]

	current, err := model.Serialize(s.Tree)
	if err != nil {
		return false, err
	}
	if err := restore(s, top.State); err != nil {
		return false, err
	}
	h.Redo = h.Redo[:len(h.Redo)-1]
	h.Undo = append(h.Undo, Snapshot{Label: top.Label, State: current})
	return true, nil
}

// LastLabel names the mutation Undo would revert, for UI hints.
func (h *History) LastLabel() string {
	if len(h.Undo) == 0 {
		return ""
	}
	return h.Undo[len(h.Undo)-1].Label
}

func restore(s *tree.Store, state []byte) error {
	t, err := model.Deserialize(state)
	if err != nil {
		return err
	}
	*s.Tree = *t
	return nil
}
