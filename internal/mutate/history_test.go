package mutate

import (
	"bytes"
	"testing"

	"treelisty-cli/internal/model"
	"treelisty-cli/internal/tree"
)

func historyFixture() *tree.Store {
	return tree.New(&model.Tree{
		ID: "t1", GUID: "g-t1", Name: "Project",
		Root: &model.Node{
			ID: "t1", GUID: "g-t1", Name: "Project", Type: model.NodeTypeRoot,
			Children: []*model.Node{
				{ID: "p1", GUID: "g-p1", Name: "Phase", Type: model.NodeTypePhase,
					Children: []*model.Node{
						{ID: "i1", GUID: "g-i1", Name: "Item", Type: model.NodeTypeItem},
					}},
			},
		},
	})
}

func snap(t *testing.T, s *tree.Store) []byte {
	t.Helper()
	b, err := model.Serialize(s.Tree)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return b
}

func TestUndoRestoresExactPreMutationState(t *testing.T) {
	s := historyFixture()
	h := &History{}
	before := snap(t, s)

	if _, err := Rename(s, h, "i1", "Item renamed"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	after := snap(t, s)
	if bytes.Equal(before, after) {
		t.Fatalf("mutation had no effect")
	}

	ok, err := h.UndoOp(s)
	if err != nil || !ok {
		t.Fatalf("undo: %v %v", ok, err)
	}
	if !bytes.Equal(before, snap(t, s)) {
		t.Fatalf("undo did not restore pre-mutation state")
	}

	ok, err = h.RedoOp(s)
	if err != nil || !ok {
		t.Fatalf("redo: %v %v", ok, err)
	}
	if !bytes.Equal(after, snap(t, s)) {
		t.Fatalf("redo did not restore post-mutation state")
	}
}

func TestUndoRedoDrainAndDoNotSelfPush(t *testing.T) {
	s := historyFixture()
	h := &History{}

	if _, err := Rename(s, h, "i1", "A"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, err := Rename(s, h, "i1", "B"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if len(h.Undo) != 2 {
		t.Fatalf("undo depth: %d", len(h.Undo))
	}

	// Undo everything; the stack must empty rather than grow.
	for {
		ok, err := h.UndoOp(s)
		if err != nil {
			t.Fatalf("undo: %v", err)
		}
		if !ok {
			break
		}
	}
	if len(h.Undo) != 0 || len(h.Redo) != 2 {
		t.Fatalf("stacks after draining: undo=%d redo=%d", len(h.Undo), len(h.Redo))
	}
	if got := s.Find("i1").Name; got != "Item" {
		t.Fatalf("fully undone name: %q", got)
	}
}

func TestNewMutationClearsRedo(t *testing.T) {
	s := historyFixture()
	h := &History{}

	if _, err := Rename(s, h, "i1", "A"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, err := h.UndoOp(s); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if len(h.Redo) != 1 {
		t.Fatalf("redo depth: %d", len(h.Redo))
	}
	if _, err := Rename(s, h, "i1", "C"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if len(h.Redo) != 0 {
		t.Fatalf("redo not cleared by new mutation")
	}
}

func TestFailedMutationPushesNothing(t *testing.T) {
	s := historyFixture()
	h := &History{}
	before := snap(t, s)

	if _, err := Move(s, h, "p1", "i1", -1); err == nil {
		t.Fatalf("expected cycle rejection")
	}
	if len(h.Undo) != 0 || len(h.Redo) != 0 {
		t.Fatalf("failed mutation recorded: undo=%d redo=%d", len(h.Undo), len(h.Redo))
	}
	if !bytes.Equal(before, snap(t, s)) {
		t.Fatalf("tree changed on failed mutation")
	}
}

func TestUndoSurvivesMoveAndMerge(t *testing.T) {
	s := historyFixture()
	h := &History{}
	if _, err := Add(s, h, "t1", &model.Node{Name: "Phase 2", Type: model.NodeTypePhase}, -1); err != nil {
		t.Fatalf("add: %v", err)
	}
	p2 := s.Tree.Root.Children[1]
	beforeMerge := snap(t, s)

	if _, err := Merge(s, h, "p1", p2.ID); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if s.Find("p1") != nil {
		t.Fatalf("merge source survived")
	}

	if ok, err := h.UndoOp(s); err != nil || !ok {
		t.Fatalf("undo merge: %v %v", ok, err)
	}
	if !bytes.Equal(beforeMerge, snap(t, s)) {
		t.Fatalf("merge not cleanly undone")
	}
	if s.Find("p1") == nil || s.Find("i1") == nil {
		t.Fatalf("merged subtree not restored")
	}
}

func TestDuplicateSetsPerNodeProvenance(t *testing.T) {
	s := historyFixture()
	h := &History{}

	res, err := Duplicate(s, h, "p1")
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	dup := res.Node
	if dup.CloneOf != "g-p1" {
		t.Fatalf("root cloneOf: %q", dup.CloneOf)
	}
	if len(dup.Children) != 1 || dup.Children[0].CloneOf != "g-i1" {
		t.Fatalf("child cloneOf: %+v", dup.Children)
	}
	// Placed right after the source.
	if s.Tree.Root.Children[0].ID != "p1" || s.Tree.Root.Children[1] != dup {
		t.Fatalf("placement: %+v", s.Tree.Root.Children)
	}
	// Undo removes the duplicate again.
	if ok, err := h.UndoOp(s); err != nil || !ok {
		t.Fatalf("undo: %v %v", ok, err)
	}
	if s.Find(dup.ID) != nil {
		t.Fatalf("duplicate survived undo")
	}
}

func TestHistoryDepthIsBounded(t *testing.T) {
	s := historyFixture()
	h := &History{MaxDepth: 3}
	for i := 0; i < 10; i++ {
		if _, err := Rename(s, h, "i1", "n"+string(rune('a'+i))); err != nil {
			t.Fatalf("rename: %v", err)
		}
	}
	if len(h.Undo) != 3 {
		t.Fatalf("depth: %d", len(h.Undo))
	}
}
