package refs

import (
	"strings"

	"treelisty-cli/internal/tree"
)

// BrokenMarker prefixes unresolvable refs in rendered output.
const BrokenMarker = "⚠"

// Render replaces every token in text with its resolved label:
// local → the target node's current name; cross-tree → "TreeName → ref";
// broken → the raw ref behind a marker. It is pure and recomputes from the
// live tree on every call, so renames show up without rewriting stored text.
// Labels are inserted verbatim, so a node name that itself contains ((...))
// would resolve again on a second pass; callers always render from the
// stored source text, never from prior output.
func Render(text string, s *tree.Store, reg Registry) string {
	toks := Scan(text)
	if len(toks) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, tok := range toks {
		b.WriteString(text[last:tok.Start])
		r := Resolve(tok, s, reg)
		switch r.Kind {
		case KindLocal:
			b.WriteString(r.Node.Name)
		case KindCrossTree:
			b.WriteString(r.TreeName + " → " + tok.Ref)
		default:
			b.WriteString(BrokenMarker + tok.Raw)
		}
		last = tok.End
	}
	b.WriteString(text[last:])
	return b.String()
}
