package refs

import (
	"treelisty-cli/internal/model"
	"treelisty-cli/internal/tree"
)

type Kind string

const (
	KindLocal     Kind = "local"
	KindCrossTree Kind = "cross-tree"
	KindBroken    Kind = "broken"
)

// Registry answers "which trees exist" for cross-tree classification. The
// core never loads other trees; one lookup method keeps network and storage
// out of the resolver entirely.
type Registry interface {
	Lookup(treeID string) (model.TreeInfo, bool)
}

// Resolved classifies one token against a tree and a registry.
type Resolved struct {
	Token    Token       `json:"token"`
	Kind     Kind        `json:"kind"`
	Node     *model.Node `json:"-"`
	NodeID   string      `json:"nodeId,omitempty"`
	TreeName string      `json:"treeName,omitempty"`
}

// Resolve classifies tok. Local tokens are looked up by id first, then by
// guid, so a ref that happens to collide with some node's guid still
// resolves predictably (id wins). Cross-tree tokens only verify that the
// tree is registered; verifying the node would mean loading the other tree,
// which is deliberately someone else's job.
func Resolve(tok Token, s *tree.Store, reg Registry) Resolved {
	out := Resolved{Token: tok, Kind: KindBroken}
	if tok.Malformed {
		return out
	}

	if tok.TreeID != "" {
		if reg == nil {
			return out
		}
		info, ok := reg.Lookup(tok.TreeID)
		if !ok {
			return out
		}
		out.Kind = KindCrossTree
		out.TreeName = info.Name
		return out
	}

	if s == nil {
		return out
	}
	n := s.Find(tok.Ref)
	if n == nil {
		n = s.FindByGUID(tok.Ref)
	}
	if n == nil {
		return out
	}
	out.Kind = KindLocal
	out.Node = n
	out.NodeID = n.ID
	return out
}

// ResolveAll scans text and resolves every token, in order.
func ResolveAll(text string, s *tree.Store, reg Registry) []Resolved {
	toks := Scan(text)
	out := make([]Resolved, 0, len(toks))
	for _, tok := range toks {
		out = append(out, Resolve(tok, s, reg))
	}
	return out
}
