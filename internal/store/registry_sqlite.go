package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"treelisty-cli/internal/model"

	_ "modernc.org/sqlite"
)

// The registry is a derived index over the tree files: id, guid, name,
// pattern, lastModified per tree. The reference resolver consults it to
// classify ((treeId:ref)) tokens without loading other trees. It can always
// be rebuilt with Reindex.

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, "registry.sqlite")
}

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS trees (
  id            TEXT PRIMARY KEY,
  guid          TEXT NOT NULL DEFAULT '',
  name          TEXT NOT NULL DEFAULT '',
  pattern       TEXT NOT NULL DEFAULT '',
  last_modified TEXT NOT NULL DEFAULT ''
)`); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (s Store) upsertRegistryRow(t *model.Tree) error {
	ctx := context.Background()
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx,
		`INSERT OR REPLACE INTO trees(id, guid, name, pattern, last_modified) VALUES(?, ?, ?, ?, ?)`,
		t.ID, t.GUID, t.Name, t.Pattern.Key, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (s Store) deleteRegistryRow(treeID string) error {
	ctx := context.Background()
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `DELETE FROM trees WHERE id = ?`, treeID)
	return err
}

// Lookup implements the resolver's Registry interface. Unknown or empty ids
// report not-found; so do backend failures, since a broken classification is
// the non-fatal degradation the resolver expects.
func (s Store) Lookup(treeID string) (model.TreeInfo, bool) {
	treeID = strings.TrimSpace(treeID)
	if treeID == "" {
		return model.TreeInfo{}, false
	}
	ctx := context.Background()
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.TreeInfo{}, false
	}
	defer db.Close()

	var info model.TreeInfo
	var lastModified string
	err = db.QueryRowContext(ctx,
		`SELECT id, guid, name, pattern, last_modified FROM trees WHERE id = ?`, treeID).
		Scan(&info.ID, &info.GUID, &info.Name, &info.Pattern, &lastModified)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			// Fall through to the files so a damaged index cannot hide a tree.
			if t, lerr := s.LoadTree(treeID); lerr == nil {
				return model.TreeInfo{ID: t.ID, GUID: t.GUID, Name: t.Name, Pattern: t.Pattern.Key}, true
			}
		}
		return model.TreeInfo{}, false
	}
	if ts, perr := time.Parse(time.RFC3339Nano, lastModified); perr == nil {
		info.LastModified = ts
	}
	return info, true
}

// Reindex rebuilds the registry from the tree files. Returns how many trees
// were indexed.
func (s Store) Reindex(ctx context.Context) (int, error) {
	infos, err := s.ListTrees()
	if err != nil {
		return 0, err
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trees`); err != nil {
		return 0, err
	}
	for _, info := range infos {
		mod := info.LastModified
		if mod.IsZero() {
			if fi, serr := os.Stat(s.treePath(info.ID)); serr == nil {
				mod = fi.ModTime().UTC()
			}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO trees(id, guid, name, pattern, last_modified) VALUES(?, ?, ?, ?, ?)`,
			info.ID, info.GUID, info.Name, info.Pattern, mod.Format(time.RFC3339Nano)); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(infos), nil
}
