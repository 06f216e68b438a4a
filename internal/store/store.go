// Package store persists workspaces on disk: one JSON file per tree under
// .treelisty/trees/, a JSONL mutation log, per-tree undo history, and a
// SQLite registry index that backs cross-tree reference lookups.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"treelisty-cli/internal/model"
	"treelisty-cli/internal/mutate"
)

const (
	configFileName = "config.json"
	eventsFileName = "events.jsonl"
)

type Store struct {
	Dir string
}

// DiscoverDir walks up from start looking for a .treelisty directory.
func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, ".treelisty")
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, ".treelisty"), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.treesDir(), 0o755)
}

func (s Store) treesDir() string {
	return filepath.Join(s.Dir, "trees")
}

func (s Store) treePath(treeID string) string {
	return filepath.Join(s.treesDir(), treeID+".json")
}

func (s Store) historyPath(treeID string) string {
	return filepath.Join(s.Dir, "history", treeID+".json")
}

func (s Store) configPath() string {
	return filepath.Join(s.Dir, configFileName)
}

// LoadTree reads one tree by id.
func (s Store) LoadTree(treeID string) (*model.Tree, error) {
	treeID = strings.TrimSpace(treeID)
	if treeID == "" {
		return nil, errors.New("missing tree id")
	}
	b, err := os.ReadFile(s.treePath(treeID))
	if err != nil {
		return nil, err
	}
	return model.Deserialize(b)
}

// SaveTree writes the tree atomically (tmp + rename) and refreshes its
// registry row.
func (s Store) SaveTree(t *model.Tree) error {
	if t == nil || strings.TrimSpace(t.ID) == "" {
		return errors.New("tree has no id")
	}
	if err := s.Ensure(); err != nil {
		return err
	}
	b, err := model.Serialize(t)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.treePath(t.ID), b); err != nil {
		return err
	}
	return s.upsertRegistryRow(t)
}

// DeleteTree removes the tree file, its history, and its registry row.
func (s Store) DeleteTree(treeID string) error {
	if err := os.Remove(s.treePath(treeID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.Remove(s.historyPath(treeID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return s.deleteRegistryRow(treeID)
}

// ListTrees lists the workspace's trees from the tree files themselves
// (the registry is a derived index, never the source of truth).
func (s Store) ListTrees() ([]model.TreeInfo, error) {
	entries, err := os.ReadDir(s.treesDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.TreeInfo{}, nil
		}
		return nil, err
	}
	out := []model.TreeInfo{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		t, err := s.LoadTree(id)
		if err != nil {
			// A corrupt file must not hide the rest of the workspace.
			continue
		}
		info := model.TreeInfo{ID: t.ID, GUID: t.GUID, Name: t.Name, Pattern: t.Pattern.Key}
		if fi, err := e.Info(); err == nil {
			info.LastModified = fi.ModTime().UTC()
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// LoadHistory reads the persisted undo/redo stacks for a tree. A missing
// file is an empty history.
func (s Store) LoadHistory(treeID string) (*mutate.History, error) {
	b, err := os.ReadFile(s.historyPath(treeID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &mutate.History{}, nil
		}
		return nil, err
	}
	var h mutate.History
	if err := json.Unmarshal(b, &h); err != nil {
		return nil, fmt.Errorf("history for %s: %w", treeID, err)
	}
	return &h, nil
}

func (s Store) SaveHistory(treeID string, h *mutate.History) error {
	if err := os.MkdirAll(filepath.Dir(s.historyPath(treeID)), 0o755); err != nil {
		return err
	}
	b, err := json.Marshal(h)
	if err != nil {
		return err
	}
	return writeFileAtomic(s.historyPath(treeID), b)
}

// Config is the per-workspace configuration.
type Config struct {
	CurrentTreeID string `json:"currentTreeId,omitempty"`
}

func (s Store) LoadConfig() (Config, error) {
	var cfg Config
	b, err := os.ReadFile(s.configPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (s Store) SaveConfig(cfg Config) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.configPath(), b)
}

func writeFileAtomic(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
