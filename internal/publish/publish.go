package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"treelisty-cli/internal/tree"
)

type WriteOptions struct {
	RenderOptions
	Overwrite bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteTree exports a tree as <toDir>/<tree-id>.md. Without Overwrite an
// existing file is an error, so repeated exports never silently clobber
// hand-edited output.
func WriteTree(st *tree.Store, toDir string, opt WriteOptions) (WriteResult, error) {
	if st == nil || st.Tree == nil {
		return WriteResult{}, errors.New("missing tree")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	md, err := RenderTreeMarkdown(st, opt.RenderOptions)
	if err != nil {
		return WriteResult{}, err
	}

	if err := os.MkdirAll(toDir, 0o755); err != nil {
		return WriteResult{}, err
	}
	path := filepath.Join(toDir, st.Tree.ID+".md")
	if !opt.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return WriteResult{}, errors.New("refusing to overwrite " + path + " (use --overwrite)")
		}
	}
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Written: []string{path}}, nil
}
