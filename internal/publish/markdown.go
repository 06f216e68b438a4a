package publish

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"treelisty-cli/internal/model"
	"treelisty-cli/internal/refs"
	"treelisty-cli/internal/tree"
)

type RenderOptions struct {
	// RenderRefs replaces ((ref)) tokens with current node names via the
	// resolver; off, descriptions are exported verbatim.
	RenderRefs bool
	Registry   refs.Registry
}

// RenderTreeMarkdown turns a whole tree into a standalone Markdown document:
// one heading per node down to heading level 4, nested bullets below that.
// Pattern fields and dependencies come along as sub-bullets so the export
// stands on its own outside the workspace.
func RenderTreeMarkdown(st *tree.Store, opt RenderOptions) (string, error) {
	if st == nil || st.Tree == nil || st.Tree.Root == nil {
		return "", fmt.Errorf("missing tree")
	}

	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(st.Tree.Name))
	writeLn("")
	writeLn("- ID: " + st.Tree.ID)
	if st.Tree.Pattern.Key != "" {
		writeLn("- Pattern: " + st.Tree.Pattern.Key)
	}
	if st.Tree.Origin != nil {
		writeLn("- Origin: " + string(st.Tree.Origin.Kind) + " of " + st.Tree.Origin.SourceID)
	}

	var walk func(n *model.Node, depth int)
	walk = func(n *model.Node, depth int) {
		writeLn("")
		if depth <= 3 {
			writeLn(strings.Repeat("#", depth+1) + " " + strings.TrimSpace(n.Name))
		} else {
			writeLn(strings.Repeat("  ", depth-4) + "- **" + strings.TrimSpace(n.Name) + "**")
		}

		if meta := nodeMetaLines(n); len(meta) > 0 {
			writeLn("")
			for _, m := range meta {
				writeLn("- " + m)
			}
		}
		if desc := strings.TrimSpace(n.Description); desc != "" {
			if opt.RenderRefs {
				desc = refs.Render(desc, st, opt.Registry)
			}
			writeLn("")
			writeLn(desc)
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	for _, c := range st.Tree.Root.Children {
		walk(c, 1)
	}

	return buf.String(), nil
}

func nodeMetaLines(n *model.Node) []string {
	var out []string
	out = append(out, "ID: "+n.ID)
	if n.CloneOf != "" {
		out = append(out, "Clone of: "+n.CloneOf)
	}
	if len(n.Dependencies) > 0 {
		out = append(out, "Depends on: "+strings.Join(n.Dependencies, ", "))
	}
	if len(n.Fields) > 0 {
		keys := make([]string, 0, len(n.Fields))
		for k := range n.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if strings.HasPrefix(k, "_") {
				continue
			}
			out = append(out, k+": "+fmt.Sprint(n.Fields[k]))
		}
	}
	return out
}
