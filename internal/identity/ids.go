// Package identity mints node and tree identifiers.
//
// Two identifiers per node: id is the short, caller-facing handle used by
// references and commands (unique within one tree); guid is minted once and
// survives renames, moves and serialization (used for clone provenance).
package identity

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"treelisty-cli/internal/model"
)

// NewRandomID returns prefix-<suffix> where suffix is 8 chars of base32
// (lowercase, no padding). 8 chars base32 ~= 40 bits of space.
func NewRandomID(prefix string) (string, error) {
	var b [5]byte // 40 bits -> 8 base32 chars
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return prefix + "-" + suffix, nil
}

// MintID returns an id not currently present in t. The caller is
// single-threaded, so present-in-tree is checked once, not guarded.
func MintID(t *model.Tree, prefix string) string {
	return MintIDAvoiding(t, prefix, nil)
}

// MintIDAvoiding also refuses ids listed in taken. Deep copies mint many ids
// before any of them is attached to the tree; taken covers that window.
func MintIDAvoiding(t *model.Tree, prefix string, taken map[string]bool) string {
	if prefix == "" {
		prefix = "node"
	}
	for i := 0; i < 10; i++ {
		id, err := NewRandomID(prefix)
		if err != nil {
			break
		}
		if taken[id] || IDExists(t, id) {
			continue
		}
		return id
	}
	// crypto/rand failed or we collided ten times; fall back to a counted
	// suffix that is checked the same way.
	for i := 1; ; i++ {
		id := fmt.Sprintf("%s-%d", prefix, i)
		if !taken[id] && !IDExists(t, id) {
			return id
		}
	}
}

// IDExists reports whether any node in t carries id.
func IDExists(t *model.Tree, id string) bool {
	if t == nil || t.Root == nil {
		return false
	}
	found := false
	t.Root.Walk(func(n *model.Node) bool {
		if n.ID == id {
			found = true
			return false
		}
		return true
	})
	return found
}

// MintGUID returns a globally unique token. Collisions are treated as
// negligible, not impossible; no registry of spent guids is kept.
func MintGUID() string {
	return uuid.NewString()
}

// ReassignOnCopy returns a structural copy of n with fresh id and guid,
// unchanged name/description/fields, and cloneOf pointing at n's guid.
// Children are not carried; deep copies rebuild them node by node so every
// copied node gets its own identity.
func ReassignOnCopy(t *model.Tree, n *model.Node, taken map[string]bool) *model.Node {
	c := n.CopyShallow()
	c.ID = MintIDAvoiding(t, idPrefixFor(n.Type), taken)
	c.GUID = MintGUID()
	c.CloneOf = n.GUID
	return c
}

func idPrefixFor(t model.NodeType) string {
	switch t {
	case model.NodeTypeRoot:
		return "tree"
	case model.NodeTypePhase:
		return "phase"
	case model.NodeTypeSubtask:
		return "sub"
	default:
		return "item"
	}
}
