package gitrepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

type Status struct {
	IsRepo bool `json:"isRepo"`

	Root   string `json:"root,omitempty"`
	Branch string `json:"branch,omitempty"`
	Head   string `json:"head,omitempty"`

	Dirty bool `json:"dirty"`
	// DirtyTracked is like Dirty, but ignores untracked files (??). The
	// derived registry.sqlite index is local-only and often untracked, so
	// this is the flag snapshot decisions should use.
	DirtyTracked bool `json:"dirtyTracked"`
	Unmerged     bool `json:"unmerged"`

	InProgress     bool   `json:"inProgress"`
	InProgressKind string `json:"inProgressKind,omitempty"` // merge|rebase|cherry-pick|revert
}

func GetStatus(ctx context.Context, dir string) (Status, error) {
	root, err := git(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		// "not a git repository" is common; treat as non-repo rather than error.
		return Status{IsRepo: false}, nil
	}
	root = strings.TrimSpace(root)
	if root == "" {
		return Status{}, errors.New("git rev-parse returned empty root")
	}

	branch, _ := git(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	head, _ := git(ctx, dir, "rev-parse", "--short", "HEAD")

	porcelain, _ := git(ctx, dir, "status", "--porcelain=v1")
	dirty, unmerged := parsePorcelain(porcelain)
	porcelainTracked, _ := git(ctx, dir, "status", "--porcelain=v1", "--untracked-files=no")
	dirtyTracked, _ := parsePorcelain(porcelainTracked)

	inProgress, inProgressKind := detectInProgress(ctx, dir)

	return Status{
		IsRepo: true,
		Root:   root,
		Branch: strings.TrimSpace(branch),
		Head:   strings.TrimSpace(head),

		Dirty:        dirty,
		DirtyTracked: dirtyTracked,
		Unmerged:     unmerged,

		InProgress:     inProgress,
		InProgressKind: inProgressKind,
	}, nil
}

func git(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
	}
	return stdout.String(), nil
}

func parsePorcelain(out string) (dirty bool, unmerged bool) {
	lines := strings.Split(out, "\n")
	for _, ln := range lines {
		ln = strings.TrimRight(ln, "\r")
		if len(ln) < 2 {
			continue
		}
		xy := ln[:2]
		if strings.TrimSpace(xy) == "" {
			continue
		}
		dirty = true
		if isUnmergedXY(xy) {
			unmerged = true
		}
	}
	return dirty, unmerged
}

func detectInProgress(ctx context.Context, dir string) (bool, string) {
	switch {
	case gitRefExists(ctx, dir, "MERGE_HEAD"):
		return true, "merge"
	case gitRefExists(ctx, dir, "REBASE_HEAD"):
		return true, "rebase"
	case gitRefExists(ctx, dir, "CHERRY_PICK_HEAD"):
		return true, "cherry-pick"
	case gitRefExists(ctx, dir, "REVERT_HEAD"):
		return true, "revert"
	default:
		return false, ""
	}
}

func gitRefExists(ctx context.Context, dir string, ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return false
	}
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--verify", "-q", ref)
	cmd.Dir = dir
	return cmd.Run() == nil
}

func isUnmergedXY(xy string) bool {
	if len(xy) != 2 {
		return false
	}
	switch xy {
	case "DD", "AU", "UD", "UA", "DU", "AA", "UU":
		return true
	}
	// "U?" and "?U" variants.
	return xy[0] == 'U' || xy[1] == 'U'
}
