package model

import (
	"encoding/json"
	"fmt"
)

// Structural keys the core owns. Everything else on a node object is a
// pattern-specific field and passes through opaquely.
var nodeStructuralKeys = map[string]bool{
	"id":           true,
	"guid":         true,
	"name":         true,
	"description":  true,
	"type":         true,
	"expanded":     true,
	"dependencies": true,
	"cloneOf":      true,
	"children":     true,
	"items":        true,
	"subtasks":     true,
}

// The exporters name the child array by level: "children" on the root,
// "items" on phases, "subtasks" on items. All three parse as children;
// output always writes the canonical "children".
var childAliasKeys = []string{"items", "subtasks"}

type nodeWire struct {
	ID           string   `json:"id"`
	GUID         string   `json:"guid,omitempty"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Type         NodeType `json:"type"`
	Expanded     bool     `json:"expanded,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	CloneOf      string   `json:"cloneOf,omitempty"`
	Children     []*Node  `json:"children,omitempty"`
}

func (n *Node) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	for k, v := range n.Fields {
		if nodeStructuralKeys[k] {
			// Structural fields win; a stale pass-through copy must not shadow them.
			continue
		}
		out[k] = v
	}
	out["id"] = n.ID
	out["name"] = n.Name
	out["type"] = n.Type
	if n.GUID != "" {
		out["guid"] = n.GUID
	}
	if n.Description != "" {
		out["description"] = n.Description
	}
	if n.Expanded {
		out["expanded"] = true
	}
	if len(n.Dependencies) > 0 {
		out["dependencies"] = n.Dependencies
	}
	if n.CloneOf != "" {
		out["cloneOf"] = n.CloneOf
	}
	if len(n.Children) > 0 {
		out["children"] = n.Children
	}
	return json.Marshal(out)
}

func (n *Node) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var w nodeWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	n.ID = w.ID
	n.GUID = w.GUID
	n.Name = w.Name
	n.Description = w.Description
	n.Type = w.Type
	n.Expanded = w.Expanded
	n.Dependencies = w.Dependencies
	n.CloneOf = w.CloneOf
	n.Children = w.Children
	for _, key := range childAliasKeys {
		rv, ok := raw[key]
		if !ok {
			continue
		}
		var extra []*Node
		if err := json.Unmarshal(rv, &extra); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		n.Children = append(n.Children, extra...)
	}

	n.Fields = nil
	for k, v := range raw {
		if nodeStructuralKeys[k] {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
		if n.Fields == nil {
			n.Fields = map[string]any{}
		}
		n.Fields[k] = val
	}
	return nil
}

// MarshalJSON flattens the tree envelope into the root node's object: the
// top level carries id/guid/name/type/children plus pattern and origin.
// This is the shape the TreeListy exporters produce and expect.
func (t *Tree) MarshalJSON() ([]byte, error) {
	root := t.Root
	if root == nil {
		root = &Node{Type: NodeTypeRoot}
	}
	b, err := root.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	// The envelope identity is authoritative over the root node's copy.
	out["id"] = t.ID
	out["name"] = t.Name
	if t.GUID != "" {
		out["guid"] = t.GUID
	}
	out["pattern"] = t.Pattern
	if t.Origin != nil {
		out["origin"] = t.Origin
	}
	return json.Marshal(out)
}

func (t *Tree) UnmarshalJSON(b []byte) error {
	var env struct {
		Pattern *Pattern `json:"pattern"`
		Origin  *Origin  `json:"origin"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}

	var root Node
	if err := json.Unmarshal(b, &root); err != nil {
		return err
	}
	// pattern/origin belong to the envelope, not the root node's field bag.
	delete(root.Fields, "pattern")
	delete(root.Fields, "origin")
	if len(root.Fields) == 0 {
		root.Fields = nil
	}
	if root.Type == "" {
		root.Type = NodeTypeRoot
	}

	t.Root = &root
	t.ID = root.ID
	t.GUID = root.GUID
	t.Name = root.Name
	if env.Pattern != nil {
		t.Pattern = *env.Pattern
	} else {
		t.Pattern = Pattern{}
	}
	t.Origin = env.Origin
	return nil
}

// Serialize returns the canonical JSON bytes for a tree. Output is
// deterministic (object keys sorted by encoding/json), so byte equality
// doubles as structural equality in tests and undo snapshots.
func Serialize(t *Tree) ([]byte, error) {
	return json.Marshal(t)
}

// Deserialize parses tree JSON produced by Serialize or by any exporter
// emitting the TreeListy wire shape.
func Deserialize(b []byte) (*Tree, error) {
	var t Tree
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
