package refs

import (
	"testing"
	"time"

	"treelisty-cli/internal/model"
	"treelisty-cli/internal/tree"
)

type fakeRegistry map[string]model.TreeInfo

func (r fakeRegistry) Lookup(treeID string) (model.TreeInfo, bool) {
	info, ok := r[treeID]
	return info, ok
}

func refFixture() *tree.Store {
	return tree.New(&model.Tree{
		ID: "t1", GUID: "g-t1", Name: "Main",
		Root: &model.Node{
			ID: "t1", GUID: "g-t1", Name: "Main", Type: model.NodeTypeRoot,
			Children: []*model.Node{
				{ID: "a", GUID: "g-a", Name: "Alpha", Type: model.NodeTypeItem},
				{ID: "b", GUID: "g-b", Name: "Beta", Type: model.NodeTypeItem,
					Description: "see ((a))"},
			},
		},
	})
}

func TestScanFindsTokensInOrder(t *testing.T) {
	toks := Scan("before ((a)) middle ((other:42)) after")
	if len(toks) != 2 {
		t.Fatalf("tokens: %+v", toks)
	}
	if toks[0].Ref != "a" || toks[0].TreeID != "" || toks[0].Malformed {
		t.Fatalf("first token: %+v", toks[0])
	}
	if toks[1].TreeID != "other" || toks[1].Ref != "42" {
		t.Fatalf("second token: %+v", toks[1])
	}
	if got := "before ((a)) middle ((other:42)) after"[toks[0].Start:toks[0].End]; got != "((a))" {
		t.Fatalf("offsets: %q", got)
	}
}

func TestScanEdgeCases(t *testing.T) {
	// Empty ref.
	toks := Scan("x (()) y")
	if len(toks) != 1 || !toks[0].Malformed {
		t.Fatalf("empty ref: %+v", toks)
	}

	// Colon with empty tree id.
	toks = Scan("((:x))")
	if len(toks) != 1 || !toks[0].Malformed {
		t.Fatalf("empty treeId: %+v", toks)
	}

	// No closing: dropped, scan does not error.
	if toks := Scan("dangling ((a"); len(toks) != 0 {
		t.Fatalf("unclosed: %+v", toks)
	}

	// Bad characters.
	toks = Scan("((a b))")
	if len(toks) != 1 || !toks[0].Malformed {
		t.Fatalf("bad chars: %+v", toks)
	}
}

func TestScanNestedParensFirstCloseWins(t *testing.T) {
	// Known limitation carried over from the original editor: the token
	// closes at the first )), so the inner (( never nests.
	toks := Scan("((a((b))c))")
	if len(toks) != 1 {
		t.Fatalf("tokens: %+v", toks)
	}
	if toks[0].Raw != "a((b" || !toks[0].Malformed {
		t.Fatalf("token: %+v", toks[0])
	}
}

func TestResolveLocalIDWinsOverGUID(t *testing.T) {
	s := refFixture()
	// A second node whose id equals another node's guid: the id match must win.
	s.Tree.Root.Children = append(s.Tree.Root.Children,
		&model.Node{ID: "g-a", GUID: "g-c", Name: "Impostor", Type: model.NodeTypeItem})

	r := Resolve(Scan("((g-a))")[0], s, nil)
	if r.Kind != KindLocal || r.Node.Name != "Impostor" {
		t.Fatalf("id should win: %+v", r)
	}

	// Pure guid refs still resolve when no id matches.
	r = Resolve(Scan("((g-b))")[0], s, nil)
	if r.Kind != KindLocal || r.Node.Name != "Beta" {
		t.Fatalf("guid fallback: %+v", r)
	}
}

func TestResolveCrossTreeSkipsNodeVerification(t *testing.T) {
	s := refFixture()
	reg := fakeRegistry{"other": {ID: "other", Name: "Other Tree", LastModified: time.Now()}}

	r := Resolve(Scan("((other:42))")[0], s, reg)
	if r.Kind != KindCrossTree || r.TreeName != "Other Tree" {
		t.Fatalf("cross-tree: %+v", r)
	}

	r = Resolve(Scan("((missing:42))")[0], s, reg)
	if r.Kind != KindBroken {
		t.Fatalf("unknown tree must be broken: %+v", r)
	}
}

func TestRenderShowsCurrentNamesAndMarksBroken(t *testing.T) {
	s := refFixture()
	reg := fakeRegistry{"other": {ID: "other", Name: "Other Tree"}}

	text := "see ((a)) and ((other:42)) and ((ghost))"
	got := Render(text, s, reg)
	want := "see Alpha and Other Tree → 42 and " + BrokenMarker + "ghost"
	if got != want {
		t.Fatalf("render: %q want %q", got, want)
	}

	// Rename, re-render: the label follows the live tree; stored text is
	// never rewritten.
	if err := s.Rename("a", "Alpha Prime"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	got = Render(text, s, reg)
	if got != "see Alpha Prime and Other Tree → 42 and "+BrokenMarker+"ghost" {
		t.Fatalf("render after rename: %q", got)
	}
}

func TestRenderBrokenAfterDelete(t *testing.T) {
	s := refFixture()
	if _, err := s.Remove("a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	b := s.Find("b")
	if b.Description != "see ((a))" {
		t.Fatalf("stored text rewritten: %q", b.Description)
	}
	if got := Render(b.Description, s, nil); got != "see "+BrokenMarker+"a" {
		t.Fatalf("render: %q", got)
	}
}

func TestRenderPureAndRecomputesFromSource(t *testing.T) {
	s := refFixture()
	text := "((a)) twice ((ghost))"
	first := Render(text, s, nil)
	second := Render(text, s, nil)
	if first != second {
		t.Fatalf("not deterministic: %q vs %q", first, second)
	}

	// Labels are inserted verbatim, so a name that itself carries a token
	// resolves again if the output is fed back in. Rendering therefore
	// always starts from the stored source text.
	if err := s.Rename("a", "see ((b))"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	out := Render("((a))", s, nil)
	if out != "see ((b))" {
		t.Fatalf("render: %q", out)
	}
	if again := Render(out, s, nil); again != "see Beta" {
		t.Fatalf("second pass: %q", again)
	}
}
