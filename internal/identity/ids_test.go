package identity

import (
	"strings"
	"testing"

	"treelisty-cli/internal/model"
)

func TestNewRandomIDShape(t *testing.T) {
	id, err := NewRandomID("item")
	if err != nil {
		t.Fatalf("NewRandomID: %v", err)
	}
	if !strings.HasPrefix(id, "item-") {
		t.Fatalf("prefix: %q", id)
	}
	if got := len(id) - len("item-"); got != 8 {
		t.Fatalf("suffix length: %d (%q)", got, id)
	}
	if id != strings.ToLower(id) {
		t.Fatalf("suffix must be lowercase: %q", id)
	}
}

func TestMintIDAvoidsTreeAndTakenSet(t *testing.T) {
	tr := &model.Tree{Root: &model.Node{ID: "r", Children: []*model.Node{{ID: "a"}}}}

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id := MintIDAvoiding(tr, "item", seen)
		if seen[id] {
			t.Fatalf("duplicate minted id: %q", id)
		}
		if IDExists(tr, id) {
			t.Fatalf("minted id already in tree: %q", id)
		}
		seen[id] = true
	}
}

func TestMintGUIDUnique(t *testing.T) {
	a := MintGUID()
	b := MintGUID()
	if a == "" || a == b {
		t.Fatalf("guids: %q %q", a, b)
	}
}

func TestReassignOnCopyFreshIdentityKeepsContent(t *testing.T) {
	tr := &model.Tree{Root: &model.Node{ID: "r"}}
	src := &model.Node{
		ID: "a", GUID: "g-a", Name: "Alpha", Description: "d",
		Type:   model.NodeTypeItem,
		Fields: map[string]any{"stage": "won"},
	}
	c := ReassignOnCopy(tr, src, nil)
	if c.ID == src.ID || c.GUID == src.GUID {
		t.Fatalf("identity not reassigned: %+v", c)
	}
	if c.CloneOf != "g-a" {
		t.Fatalf("cloneOf: %q", c.CloneOf)
	}
	if c.Name != "Alpha" || c.Description != "d" || c.Fields["stage"] != "won" {
		t.Fatalf("content changed: %+v", c)
	}
	if !strings.HasPrefix(c.ID, "item-") {
		t.Fatalf("type prefix: %q", c.ID)
	}
}
