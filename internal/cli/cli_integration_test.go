package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func decodeData(t *testing.T, out []byte) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(out, &payload); err != nil {
		t.Fatalf("decode output %q: %v", string(out), err)
	}
	data, ok := payload["data"].(map[string]any)
	if !ok {
		t.Fatalf("no data object in %q", string(out))
	}
	return data
}

func mustRun(t *testing.T, args []string) map[string]any {
	t.Helper()
	out, errOut, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("%v: %v\nstderr:\n%s", args, err, string(errOut))
	}
	return decodeData(t, out)
}

func TestInitAddShowUndoFlow(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	treeData := mustRun(t, []string{"--dir", dir, "init", "Launch", "--pattern", "generic"})
	treeID, _ := treeData["id"].(string)
	if treeID == "" {
		t.Fatalf("init returned no tree id: %v", treeData)
	}

	phase := mustRun(t, []string{"--dir", dir, "add", "Research"})
	phaseID, _ := phase["id"].(string)
	if !strings.HasPrefix(phaseID, "phase-") {
		t.Fatalf("child of root should default to a phase, got %q", phaseID)
	}

	item := mustRun(t, []string{"--dir", dir, "add", "Read papers", "--parent", phaseID})
	itemID, _ := item["id"].(string)
	if !strings.HasPrefix(itemID, "item-") {
		t.Fatalf("child of phase should default to an item, got %q", itemID)
	}

	shown := mustRun(t, []string{"--dir", dir, "show", itemID})
	if shown["name"] != "Read papers" {
		t.Fatalf("show: got %v", shown)
	}

	// Undo the last add; the item disappears but the phase stays.
	undo := mustRun(t, []string{"--dir", dir, "undo"})
	if undo["undone"] != true || undo["label"] != "add Read papers" {
		t.Fatalf("undo: got %v", undo)
	}
	if _, _, err := runCLI(t, []string{"--dir", dir, "show", itemID}); err == nil {
		t.Fatalf("undone item should not resolve")
	}
	mustRun(t, []string{"--dir", dir, "show", phaseID})

	redo := mustRun(t, []string{"--dir", dir, "redo"})
	if redo["redone"] != true {
		t.Fatalf("redo: got %v", redo)
	}
	mustRun(t, []string{"--dir", dir, "show", itemID})
}

func TestRenderFollowsRename(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	mustRun(t, []string{"--dir", dir, "init", "Wiki"})
	target := mustRun(t, []string{"--dir", dir, "add", "Glossary"})
	targetID := target["id"].(string)
	note := mustRun(t, []string{"--dir", dir, "add", "Notes", "--description", "see ((" + targetID + "))"})
	noteID := note["id"].(string)

	rendered := mustRun(t, []string{"--dir", dir, "render", noteID})
	if rendered["rendered"] != "see Glossary" {
		t.Fatalf("render: got %v", rendered)
	}

	mustRun(t, []string{"--dir", dir, "rename", targetID, "Index"})
	rendered = mustRun(t, []string{"--dir", dir, "render", noteID})
	if rendered["rendered"] != "see Index" {
		t.Fatalf("render after rename: got %v", rendered)
	}
	// The stored description keeps the token untouched.
	if rendered["source"] != "see (("+targetID+"))" {
		t.Fatalf("source drifted: got %v", rendered["source"])
	}
}

func TestCloneCreateAndAudit(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	mustRun(t, []string{"--dir", dir, "init", "Plans"})
	phase := mustRun(t, []string{"--dir", dir, "add", "Template phase"})
	phaseID := phase["id"].(string)
	mustRun(t, []string{"--dir", dir, "add", "Step one", "--parent", phaseID})

	cloned := mustRun(t, []string{"--dir", dir, "clone", "create", phaseID})
	node, ok := cloned["node"].(map[string]any)
	if !ok {
		t.Fatalf("clone output: %v", cloned)
	}
	cloneID := node["id"].(string)
	if cloneID == phaseID {
		t.Fatalf("clone kept the source id")
	}

	audit := mustRun(t, []string{"--dir", dir, "audit", phaseID, cloneID})
	if audit["valid"] != true {
		t.Fatalf("fresh clone should audit clean: %v", audit)
	}

	// Renaming the clone is drift; the audit reports it.
	mustRun(t, []string{"--dir", dir, "rename", cloneID, "Diverged"})
	audit = mustRun(t, []string{"--dir", dir, "audit", phaseID, cloneID})
	if audit["valid"] != false {
		t.Fatalf("drifted clone should fail the audit: %v", audit)
	}
}

func TestTreesUseSwitchesCurrent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	first := mustRun(t, []string{"--dir", dir, "init", "First"})
	second := mustRun(t, []string{"--dir", dir, "trees", "create", "Second"})
	secondID := second["id"].(string)

	mustRun(t, []string{"--dir", dir, "trees", "use", secondID})
	root := mustRun(t, []string{"--dir", dir, "show"})
	if root["name"] != "Second" {
		t.Fatalf("current tree should be Second, got %v", root["name"])
	}

	// --tree overrides the config without changing it.
	root = mustRun(t, []string{"--dir", dir, "--tree", first["id"].(string), "show"})
	if root["name"] != "First" {
		t.Fatalf("--tree override failed: %v", root["name"])
	}
}
