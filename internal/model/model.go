package model

import "time"

type NodeType string

const (
	NodeTypeRoot    NodeType = "root"
	NodeTypePhase   NodeType = "phase"
	NodeTypeItem    NodeType = "item"
	NodeTypeSubtask NodeType = "subtask"
)

// Node is one element of a tree. ID is the caller-facing identifier
// (unique within a tree); GUID is minted once and survives renames and moves.
//
// Fields carries pattern-specific keys (icon, stage, dealValue, ...) that the
// core does not interpret. They round-trip losslessly.
type Node struct {
	ID           string         `json:"id"`
	GUID         string         `json:"guid,omitempty"`
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	Type         NodeType       `json:"type"`
	Expanded     bool           `json:"expanded,omitempty"`
	Dependencies []string       `json:"dependencies,omitempty"`
	CloneOf      string         `json:"cloneOf,omitempty"`
	Children     []*Node        `json:"children,omitempty"`
	Fields       map[string]any `json:"-"`
}

// Pattern names the field schema applied to a tree's nodes.
// Labels is kept opaque; per-level label overrides belong to the UI layer.
type Pattern struct {
	Key    string `json:"key"`
	Labels any    `json:"labels,omitempty"`
}

type OriginKind string

const (
	OriginSource OriginKind = "source"
	OriginView   OriginKind = "view"
)

// Origin is present when a tree is derived from another tree (a view tree).
type Origin struct {
	Kind          OriginKind `json:"kind"`
	SourceID      string     `json:"sourceId,omitempty"`
	SourceVersion int        `json:"sourceVersion,omitempty"`
	CreatedAt     time.Time  `json:"createdAt,omitempty"`
}

// Tree is a named container rooted at one Node. On the wire the tree envelope
// and its root node share one JSON object (id/guid/name/type/children at the
// top level plus pattern/origin), matching the exported TreeListy shape.
type Tree struct {
	ID      string
	GUID    string
	Name    string
	Pattern Pattern
	Origin  *Origin
	Root    *Node
}

// TreeInfo is the registry's view of a tree, enough for cross-tree
// reference classification without loading the tree itself.
type TreeInfo struct {
	ID           string    `json:"id"`
	GUID         string    `json:"guid,omitempty"`
	Name         string    `json:"name"`
	Pattern      string    `json:"pattern,omitempty"`
	LastModified time.Time `json:"lastModified"`
}

// Event is one line of the append-only mutation log.
type Event struct {
	ID      string    `json:"id"`
	TS      time.Time `json:"ts"`
	Op      string    `json:"op"`
	TreeID  string    `json:"treeId"`
	NodeID  string    `json:"nodeId,omitempty"`
	Payload any       `json:"payload,omitempty"`
}

// Walk visits n and its subtree depth-first in child order. Return false from
// fn to stop early. This is the traversal order every "first match" rule in
// the core refers to.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// CopyShallow returns a copy of n with Children nil. Dependencies and Fields
// are copied, not shared, so edits to the copy cannot leak into the source.
func (n *Node) CopyShallow() *Node {
	c := *n
	c.Children = nil
	if n.Dependencies != nil {
		c.Dependencies = append([]string(nil), n.Dependencies...)
	}
	if n.Fields != nil {
		c.Fields = make(map[string]any, len(n.Fields))
		for k, v := range n.Fields {
			c.Fields[k] = v
		}
	}
	return &c
}
