package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"treelisty-cli/internal/model"
	"treelisty-cli/internal/tree"
)

func exportFixture(t *testing.T) *tree.Store {
	t.Helper()
	st := tree.New(tree.NewTree("Trip to Rome", "travel"))
	phase := &model.Node{ID: "phase-plan", Name: "Planning", Type: model.NodeTypePhase}
	if err := st.Insert(st.Tree.ID, phase, -1); err != nil {
		t.Fatalf("insert phase: %v", err)
	}
	item := &model.Node{
		ID:          "item-fly",
		Name:        "Book flights",
		Type:        model.NodeTypeItem,
		Description: "After ((item-visa)) clears.",
		Fields:      map[string]any{"budget": "300", "_rag": "green"},
	}
	if err := st.Insert("phase-plan", item, -1); err != nil {
		t.Fatalf("insert item: %v", err)
	}
	visa := &model.Node{ID: "item-visa", Name: "Get visa", Type: model.NodeTypeItem}
	if err := st.Insert("phase-plan", visa, -1); err != nil {
		t.Fatalf("insert visa: %v", err)
	}
	return st
}

func TestRenderTreeMarkdownStructure(t *testing.T) {
	t.Parallel()
	st := exportFixture(t)

	md, err := RenderTreeMarkdown(st, RenderOptions{})
	if err != nil {
		t.Fatalf("RenderTreeMarkdown: %v", err)
	}
	for _, want := range []string{
		"# Trip to Rome",
		"- Pattern: travel",
		"## Planning",
		"### Book flights",
		"- ID: item-fly",
		"- budget: 300",
		"After ((item-visa)) clears.",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	// Underscore-prefixed fields are private metadata, not export content.
	if strings.Contains(md, "_rag") {
		t.Fatalf("private field leaked into export:\n%s", md)
	}
}

func TestRenderTreeMarkdownRendersRefs(t *testing.T) {
	t.Parallel()
	st := exportFixture(t)

	md, err := RenderTreeMarkdown(st, RenderOptions{RenderRefs: true})
	if err != nil {
		t.Fatalf("RenderTreeMarkdown: %v", err)
	}
	if !strings.Contains(md, "After Get visa clears.") {
		t.Fatalf("refs not rendered:\n%s", md)
	}
	if strings.Contains(md, "((item-visa))") {
		t.Fatalf("raw token left in rendered export:\n%s", md)
	}
}

func TestWriteTreeRefusesOverwrite(t *testing.T) {
	t.Parallel()
	st := exportFixture(t)
	dir := t.TempDir()

	res, err := WriteTree(st, dir, WriteOptions{})
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	if len(res.Written) != 1 {
		t.Fatalf("expected one written file, got %v", res.Written)
	}
	wantPath := filepath.Join(dir, st.Tree.ID+".md")
	if res.Written[0] != wantPath {
		t.Fatalf("wrote %s, want %s", res.Written[0], wantPath)
	}
	if _, err := os.Stat(wantPath); err != nil {
		t.Fatalf("stat export: %v", err)
	}

	if _, err := WriteTree(st, dir, WriteOptions{}); err == nil {
		t.Fatalf("second export without --overwrite should fail")
	}
	if _, err := WriteTree(st, dir, WriteOptions{Overwrite: true}); err != nil {
		t.Fatalf("overwrite export: %v", err)
	}
}
