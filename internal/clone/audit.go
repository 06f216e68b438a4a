package clone

import (
	"fmt"
	"reflect"

	"treelisty-cli/internal/model"
	"treelisty-cli/internal/refs"
)

// AuditResult is the outcome of a structural fidelity check between a source
// subtree and one of its clones.
type AuditResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// FullAudit walks source and clone in lock-step (same depth-first child
// order) and verifies that:
//   - every source node has an entry in idMap and the mapped id matches the
//     clone node actually sitting at that position;
//   - each clone node's provenance points at its direct source's guid;
//   - field values still match the source's (post-creation drift IS flagged;
//     callers expecting intentional divergence simply don't re-run the audit);
//   - references between cloned siblings point at the translated ids, not
//     the stale source ids.
func FullAudit(source, cl *model.Node, idMap map[string]string) AuditResult {
	res := AuditResult{Valid: true, Errors: []string{}}
	fail := func(format string, args ...any) {
		res.Valid = false
		res.Errors = append(res.Errors, fmt.Sprintf(format, args...))
	}

	var walk func(s, c *model.Node)
	walk = func(s, c *model.Node) {
		mapped, ok := idMap[s.ID]
		if !ok {
			fail("source node %s has no idMap entry", s.ID)
		} else if mapped != c.ID {
			fail("idMap sends %s to %s but the clone node there is %s", s.ID, mapped, c.ID)
		}
		if c.CloneOf != s.GUID {
			fail("clone node %s: cloneOf %q does not point at source guid %q", c.ID, c.CloneOf, s.GUID)
		}

		if c.Name != s.Name {
			fail("node %s: name drifted (%q vs %q)", c.ID, c.Name, s.Name)
		}
		if c.Type != s.Type {
			fail("node %s: type drifted (%q vs %q)", c.ID, c.Type, s.Type)
		}
		if wantDesc := TranslateRefs(s.Description, idMap); c.Description != wantDesc {
			fail("node %s: description drifted", c.ID)
		}
		if !fieldsEqual(s.Fields, c.Fields) {
			fail("node %s: pattern fields drifted", c.ID)
		}

		auditDependencies(s, c, idMap, fail)
		auditCloneRefs(c, idMap, fail)

		if len(s.Children) != len(c.Children) {
			fail("node %s: child count %d vs source %d", c.ID, len(c.Children), len(s.Children))
			return
		}
		for i := range s.Children {
			walk(s.Children[i], c.Children[i])
		}
	}
	walk(source, cl)
	return res
}

// RebuildIDMap reconstructs the source-to-clone id translation for a clone
// created earlier in another process, using each clone node's provenance.
// Lock-step positions whose provenance no longer matches are left out of the
// map; FullAudit then reports them as missing entries.
func RebuildIDMap(source, cl *model.Node) map[string]string {
	idMap := make(map[string]string)
	var walk func(s, c *model.Node)
	walk = func(s, c *model.Node) {
		if c.CloneOf == s.GUID {
			idMap[s.ID] = c.ID
		}
		n := len(s.Children)
		if len(c.Children) < n {
			n = len(c.Children)
		}
		for i := 0; i < n; i++ {
			walk(s.Children[i], c.Children[i])
		}
	}
	walk(source, cl)
	return idMap
}

func auditDependencies(s, c *model.Node, idMap map[string]string, fail func(string, ...any)) {
	if len(s.Dependencies) != len(c.Dependencies) {
		fail("node %s: dependency count %d vs source %d", c.ID, len(c.Dependencies), len(s.Dependencies))
		return
	}
	for i, dep := range s.Dependencies {
		want := dep
		if translated, ok := idMap[dep]; ok {
			want = translated
		}
		if c.Dependencies[i] != want {
			fail("node %s: dependency %q should be %q", c.ID, c.Dependencies[i], want)
		}
	}
}

// auditCloneRefs flags hyperedge leaks: a ((id)) token inside the clone that
// still addresses a source node which was part of the cloned set. Post-clone
// it must address the translation instead.
func auditCloneRefs(c *model.Node, idMap map[string]string, fail func(string, ...any)) {
	for _, tok := range refs.Scan(c.Description) {
		if tok.Malformed || tok.TreeID != "" {
			continue
		}
		if translated, ok := idMap[tok.Ref]; ok {
			fail("node %s: reference ((%s)) escapes to the source; should be ((%s))", c.ID, tok.Ref, translated)
		}
	}
	for _, dep := range c.Dependencies {
		if translated, ok := idMap[dep]; ok {
			fail("node %s: dependency %q escapes to the source; should be %q", c.ID, dep, translated)
		}
	}
}

func fieldsEqual(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
