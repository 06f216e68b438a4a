package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// CommitWorkspace stages and commits the workspace's canonical files: tree
// documents, config, undo history, and the event log. The derived
// registry.sqlite index is deliberately never staged; it rebuilds from tree
// files on any machine.
//
// Returns committed=false when the workspace is not inside a git repo or
// there is nothing to commit.
func CommitWorkspace(ctx context.Context, workspaceDir string, message string) (committed bool, err error) {
	workspaceDir = filepath.Clean(workspaceDir)

	st, err := GetStatus(ctx, workspaceDir)
	if err != nil {
		return false, err
	}
	if !st.IsRepo {
		return false, nil
	}
	if st.Unmerged || st.InProgress {
		return false, errors.New("git repo has an in-progress merge/rebase; resolve first")
	}

	added, err := stageWorkspaceCanonical(ctx, workspaceDir, st.Root)
	if err != nil {
		return false, err
	}
	if !added {
		return false, nil
	}

	// Commit only if there's something staged.
	out, err := runGit(ctx, workspaceDir, "diff", "--cached", "--name-only")
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(out) == "" {
		return false, nil
	}

	msg := strings.TrimSpace(message)
	if msg == "" {
		if summary, _, err := StagedEventSummary(ctx, workspaceDir, 25); err == nil && summary != "" {
			msg = "treelisty: " + summary
		}
	}
	if msg == "" {
		msg = fmt.Sprintf("treelisty: update (%s)", time.Now().UTC().Format(time.RFC3339))
	}

	if _, err := runGit(ctx, workspaceDir, "commit", "-m", msg); err != nil {
		return false, err
	}
	return true, nil
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
	}
	return string(out), nil
}

func stageWorkspaceCanonical(ctx context.Context, workspaceDir string, repoRoot string) (bool, error) {
	workspaceDir = filepath.Clean(workspaceDir)
	repoRoot = filepath.Clean(repoRoot)

	// Temp dirs may involve symlinks like /var -> /private/var on macOS. Git
	// often reports a canonicalized repo root, so normalize both sides before
	// Rel() to avoid "path is outside repository" errors.
	if v, err := filepath.EvalSymlinks(workspaceDir); err == nil {
		workspaceDir = v
	}
	if v, err := filepath.EvalSymlinks(repoRoot); err == nil {
		repoRoot = v
	}

	rel, err := filepath.Rel(repoRoot, workspaceDir)
	if err != nil {
		return false, err
	}
	rel = filepath.Clean(rel)

	var targets []string
	addIfExists := func(subRel string) {
		subRel = filepath.Clean(subRel)
		abs := filepath.Join(workspaceDir, subRel)
		if _, err := os.Stat(abs); err == nil {
			if rel == "." {
				targets = append(targets, subRel)
			} else {
				targets = append(targets, filepath.Join(rel, subRel))
			}
		}
	}

	addIfExists("trees")
	addIfExists("history")
	addIfExists("config.json")
	addIfExists("events.jsonl")

	if len(targets) == 0 {
		return false, nil
	}

	args := []string{"-C", repoRoot, "add", "--"}
	args = append(args, targets...)
	if _, err := runGit(ctx, repoRoot, args...); err != nil {
		return false, err
	}
	return true, nil
}
