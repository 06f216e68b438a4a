package gitrepo

import (
	"context"
	"testing"
)

func TestGetStatusNonRepo(t *testing.T) {
	st, err := GetStatus(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if st.IsRepo {
		t.Fatalf("expected non-repo status")
	}
}

func TestParsePorcelain(t *testing.T) {
	cases := []struct {
		name     string
		out      string
		dirty    bool
		unmerged bool
	}{
		{"empty", "", false, false},
		{"modified", " M trees/tree-abc.json\n", true, false},
		{"untracked", "?? registry.sqlite\n", true, false},
		{"unmerged", "UU trees/tree-abc.json\n", true, true},
		{"mixed", " M config.json\nAA events.jsonl\n", true, true},
	}
	for _, c := range cases {
		dirty, unmerged := parsePorcelain(c.out)
		if dirty != c.dirty || unmerged != c.unmerged {
			t.Fatalf("%s: got dirty=%v unmerged=%v, want %v/%v", c.name, dirty, unmerged, c.dirty, c.unmerged)
		}
	}
}

func TestIsUnmergedXY(t *testing.T) {
	for _, xy := range []string{"DD", "AU", "UD", "UA", "DU", "AA", "UU", "U ", " U"} {
		if !isUnmergedXY(xy) {
			t.Fatalf("%q should count as unmerged", xy)
		}
	}
	for _, xy := range []string{" M", "??", "A ", "MM"} {
		if isUnmergedXY(xy) {
			t.Fatalf("%q should not count as unmerged", xy)
		}
	}
}

func TestParseAddedJSONLinesAndDescribe(t *testing.T) {
	diff := `diff --git a/events.jsonl b/events.jsonl
+++ b/events.jsonl
@@ -10,0 +11,3 @@
+{"id":"1","op":"node.add","treeId":"tree-a","nodeId":"item-x","payload":{"name":"Book flights"}}
+{"id":"2","op":"node.rename","treeId":"tree-a","nodeId":"item-x","payload":{"name":"Book trains"}}
+not json
`
	events := parseAddedJSONLines(diff)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if got := describeEvent(events[0]); got != `add "Book flights"` {
		t.Fatalf("describe add: got %q", got)
	}
	if got := describeEvent(events[1]); got != `rename to "Book trains"` {
		t.Fatalf("describe rename: got %q", got)
	}
	if got := describeEvent(stagedEvent{Op: "node.set"}); got != "set field" {
		t.Fatalf("describe set: got %q", got)
	}
	if got := describeEvent(stagedEvent{Op: "weird.custom_thing"}); got != "custom thing" {
		t.Fatalf("describe fallback: got %q", got)
	}
}
