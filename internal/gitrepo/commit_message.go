package gitrepo

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
)

type stagedEvent struct {
	Op      string          `json:"op"`
	TreeID  string          `json:"treeId"`
	NodeID  string          `json:"nodeId"`
	Payload json.RawMessage `json:"payload"`
}

// StagedEventSummary inspects the staged diff of events.jsonl and summarizes
// newly-added events into a short human phrase list for commit messages.
// Best-effort: failures return an empty summary.
func StagedEventSummary(ctx context.Context, workspaceDir string, maxEvents int) (summary string, counts map[string]int, err error) {
	st, err := GetStatus(ctx, workspaceDir)
	if err != nil {
		return "", nil, err
	}
	if !st.IsRepo {
		return "", map[string]int{}, nil
	}
	if maxEvents <= 0 {
		maxEvents = 25
	}

	// Only added JSONL lines (new events) in the staged diff matter.
	diff, err := runGit(ctx, st.Root, "diff", "--cached", "--unified=0", "--no-color", "--", "*events.jsonl")
	if err != nil {
		return "", nil, err
	}

	events := parseAddedJSONLines(diff)
	if len(events) == 0 {
		return "", map[string]int{}, nil
	}

	counts = map[string]int{}
	phrases := make([]string, 0, maxEvents)
	for _, ev := range events {
		op := strings.TrimSpace(ev.Op)
		if op == "" {
			continue
		}
		counts[op]++
		if len(phrases) < maxEvents {
			phrases = append(phrases, describeEvent(ev))
		}
	}

	// Dedupe identical phrases so "rename x; rename x" collapses.
	out := make([]string, 0, len(phrases))
	seen := map[string]bool{}
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	if len(out) == 0 {
		return "", counts, nil
	}
	if extra := len(events) - maxEvents; extra > 0 {
		out = append(out, "+"+strconv.Itoa(extra)+" more")
	}
	return strings.Join(out, "; "), counts, nil
}

func parseAddedJSONLines(diff string) []stagedEvent {
	lines := strings.Split(diff, "\n")
	out := make([]stagedEvent, 0)
	for _, ln := range lines {
		ln = strings.TrimRight(ln, "\r")
		if !strings.HasPrefix(ln, "+") {
			continue
		}
		if strings.HasPrefix(ln, "+++") {
			continue
		}
		raw := strings.TrimSpace(strings.TrimPrefix(ln, "+"))
		if !strings.HasPrefix(raw, "{") {
			continue
		}
		var ev stagedEvent
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func describeEvent(ev stagedEvent) string {
	op := strings.TrimSpace(ev.Op)
	switch op {
	case "node.add":
		var p struct {
			Name string `json:"name"`
		}
		_ = json.Unmarshal(ev.Payload, &p)
		if strings.TrimSpace(p.Name) != "" {
			return `add "` + strings.TrimSpace(p.Name) + `"`
		}
		return "add node"
	case "node.rename":
		var p struct {
			Name string `json:"name"`
		}
		_ = json.Unmarshal(ev.Payload, &p)
		if strings.TrimSpace(p.Name) != "" {
			return `rename to "` + strings.TrimSpace(p.Name) + `"`
		}
		return "rename node"
	case "node.describe":
		return "edit description"
	case "node.move":
		return "move node"
	case "node.remove":
		return "remove node"
	case "node.merge":
		return "merge nodes"
	case "node.duplicate":
		return "duplicate node"
	case "node.set":
		return "set field"
	case "dep.add":
		return "add dependency"
	case "dep.remove":
		return "remove dependency"
	case "clone.create":
		return "clone subtree"
	case "view.create":
		return "create view"
	case "tree.create":
		var p struct {
			Name string `json:"name"`
		}
		_ = json.Unmarshal(ev.Payload, &p)
		if strings.TrimSpace(p.Name) != "" {
			return `new tree "` + strings.TrimSpace(p.Name) + `"`
		}
		return "new tree"
	case "tree.delete":
		return "delete tree"
	case "undo", "redo":
		return op
	default:
		// Compact fallback: strip entity prefix.
		if i := strings.Index(op, "."); i > 0 {
			return strings.ReplaceAll(op[i+1:], "_", " ")
		}
		return strings.ReplaceAll(op, "_", " ")
	}
}
