package clone

import (
	"strings"
	"testing"

	"treelisty-cli/internal/model"
	"treelisty-cli/internal/tree"
)

func sourceFixture() *tree.Store {
	return tree.New(&model.Tree{
		ID: "src", GUID: "g-src", Name: "Source",
		Root: &model.Node{
			ID: "src", GUID: "g-src", Name: "Source", Type: model.NodeTypeRoot,
			Children: []*model.Node{
				{ID: "x", GUID: "g-x", Name: "X", Type: model.NodeTypeItem,
					Description: "pairs with ((y))",
					Children: []*model.Node{
						{ID: "y", GUID: "g-y", Name: "Y", Type: model.NodeTypeSubtask,
							Dependencies: []string{"x"},
							Fields:       map[string]any{"stage": "won"}},
					}},
				{ID: "z", GUID: "g-z", Name: "Z", Type: model.NodeTypeItem},
			},
		},
	})
}

func TestCreateCloneProvenanceClosure(t *testing.T) {
	src := sourceFixture()
	reg := NewRegistry()

	cl, idMap, err := reg.CreateClone(src, "x", src, "z")
	if err != nil {
		t.Fatalf("createClone: %v", err)
	}

	if cl.CloneOf != "g-x" {
		t.Fatalf("root cloneOf: %q", cl.CloneOf)
	}
	if got, ok := reg.GetSource(cl.GUID); !ok || got.ID != "x" {
		t.Fatalf("getSource: %v %v", got, ok)
	}
	clones := reg.GetAllClones("g-x")
	if len(clones) != 1 || clones[0] != cl {
		t.Fatalf("getAllClones: %+v", clones)
	}

	// Per-node provenance: the clone's child points at ITS source, not the root's.
	if len(cl.Children) != 1 || cl.Children[0].CloneOf != "g-y" {
		t.Fatalf("child cloneOf: %+v", cl.Children)
	}

	// Fresh identity on every copied node, and the map covers them all.
	if cl.ID == "x" || cl.GUID == "g-x" || cl.Children[0].ID == "y" {
		t.Fatalf("identity not reassigned: %+v", cl)
	}
	if idMap["x"] != cl.ID || idMap["y"] != cl.Children[0].ID {
		t.Fatalf("idMap: %v", idMap)
	}
}

func TestNewRegistryDedupesAliasedTrees(t *testing.T) {
	src := sourceFixture()
	// Cloning within one tree hands the same tree in as source and
	// destination; it must register once.
	reg := NewRegistry(src.Tree, src.Tree)

	cl, _, err := reg.CreateClone(src, "x", src, "z")
	if err != nil {
		t.Fatalf("createClone: %v", err)
	}
	clones := reg.GetAllClones("g-x")
	if len(clones) != 1 || clones[0] != cl {
		t.Fatalf("clone counted per registration: %+v", clones)
	}
}

func TestCloneRetargetsIntraCloneReferences(t *testing.T) {
	src := sourceFixture()
	reg := NewRegistry()

	cl, idMap, err := reg.CreateClone(src, "x", src, "z")
	if err != nil {
		t.Fatalf("createClone: %v", err)
	}

	// y depended on x; the clone of y must depend on the clone of x.
	cy := cl.Children[0]
	if len(cy.Dependencies) != 1 || cy.Dependencies[0] != idMap["x"] {
		t.Fatalf("dependency not translated: %v (map %v)", cy.Dependencies, idMap)
	}
	// The ((y)) token inside x's description must follow the cloned y.
	if want := "pairs with ((" + idMap["y"] + "))"; cl.Description != want {
		t.Fatalf("description not translated: %q want %q", cl.Description, want)
	}
	// The originals are untouched.
	if got := src.Find("x").Description; got != "pairs with ((y))" {
		t.Fatalf("source description rewritten: %q", got)
	}
}

func TestCloneSurvivesSourceDeletion(t *testing.T) {
	src := sourceFixture()
	reg := NewRegistry()

	cl, _, err := reg.CreateClone(src, "x", src, "z")
	if err != nil {
		t.Fatalf("createClone: %v", err)
	}
	if _, err := src.Remove("x"); err != nil {
		t.Fatalf("remove source: %v", err)
	}

	if src.Find(cl.ID) == nil {
		t.Fatalf("clone deleted with its source")
	}
	if cl.CloneOf != "g-x" {
		t.Fatalf("provenance corrupted: %q", cl.CloneOf)
	}
	// Source gone: reported as not found, never an error.
	if got, ok := reg.GetSource(cl.GUID); ok || got != nil {
		t.Fatalf("expected source-not-found; got %v %v", got, ok)
	}
}

func TestFullAuditValidThenDrift(t *testing.T) {
	src := sourceFixture()
	reg := NewRegistry()

	cl, idMap, err := reg.CreateClone(src, "x", src, "z")
	if err != nil {
		t.Fatalf("createClone: %v", err)
	}
	source := FindNodeByIDDeep("x", src.Tree)

	res := FullAudit(source, cl, idMap)
	if !res.Valid || len(res.Errors) != 0 {
		t.Fatalf("fresh clone must audit clean: %+v", res)
	}

	// Any drift after creation is flagged on re-audit.
	cl.Name = "X edited"
	res = FullAudit(source, cl, idMap)
	if res.Valid {
		t.Fatalf("drift not flagged")
	}
	found := false
	for _, e := range res.Errors {
		if strings.Contains(e, "name drifted") {
			found = true
		}
	}
	if !found {
		t.Fatalf("errors: %v", res.Errors)
	}
}

func TestFullAuditFlagsMissingMapEntryAndStaleRefs(t *testing.T) {
	src := sourceFixture()
	reg := NewRegistry()

	cl, idMap, err := reg.CreateClone(src, "x", src, "z")
	if err != nil {
		t.Fatalf("createClone: %v", err)
	}
	source := FindNodeByIDDeep("x", src.Tree)

	// Drop the child's entry.
	withoutChild := map[string]string{"x": idMap["x"]}
	res := FullAudit(source, cl, withoutChild)
	if res.Valid {
		t.Fatalf("missing map entry not flagged")
	}

	// Point the cloned child's dependency back at the source x: a hyperedge
	// dangling at the originals.
	cl.Children[0].Dependencies = []string{"x"}
	res = FullAudit(source, cl, idMap)
	if res.Valid {
		t.Fatalf("stale reference not flagged")
	}
	stale := false
	for _, e := range res.Errors {
		if strings.Contains(e, "escapes to the source") {
			stale = true
		}
	}
	if !stale {
		t.Fatalf("errors: %v", res.Errors)
	}
}

func TestCreateViewTree(t *testing.T) {
	src := sourceFixture()
	reg := NewRegistry()

	vt, missing, err := reg.CreateViewTree(src, "Focus view", []string{"y", "z", "ghost"})
	if err != nil {
		t.Fatalf("createViewTree: %v", err)
	}
	if len(missing) != 1 || missing[0] != "ghost" {
		t.Fatalf("missing: %v", missing)
	}
	if vt.Origin == nil || vt.Origin.Kind != model.OriginView || vt.Origin.SourceID != "src" {
		t.Fatalf("origin: %+v", vt.Origin)
	}
	if len(vt.Root.Children) != 2 {
		t.Fatalf("view children: %+v", vt.Root.Children)
	}
	if vt.Root.Children[0].CloneOf != "g-y" || vt.Root.Children[1].CloneOf != "g-z" {
		t.Fatalf("view provenance: %+v", vt.Root.Children)
	}
	// The source fans out: its clones are findable from the registry.
	if got := reg.GetAllClones("g-z"); len(got) != 1 {
		t.Fatalf("getAllClones across trees: %+v", got)
	}
}

func TestTranslateRefsLeavesForeignTokensAlone(t *testing.T) {
	idMap := map[string]string{"a": "a2"}
	in := "((a)) ((b)) ((other:a)) ((bad ref))"
	want := "((a2)) ((b)) ((other:a)) ((bad ref))"
	if got := TranslateRefs(in, idMap); got != want {
		t.Fatalf("translate: %q want %q", got, want)
	}
}
