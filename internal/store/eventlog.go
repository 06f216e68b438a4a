package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"treelisty-cli/internal/identity"
	"treelisty-cli/internal/model"
)

// AppendEvent appends one mutation record to the workspace's append-only
// JSONL log. The log is forensic: replay and sync live outside this core.
func (s Store) AppendEvent(op, treeID, nodeID string, payload any) error {
	if op == "" || treeID == "" {
		return fmt.Errorf("event contract: missing op or tree id")
	}
	if err := s.Ensure(); err != nil {
		return err
	}

	id, err := identity.NewRandomID("ev")
	if err != nil {
		return err
	}
	ev := model.Event{
		ID:      id,
		TS:      time.Now().UTC(),
		Op:      op,
		TreeID:  treeID,
		NodeID:  nodeID,
		Payload: payload,
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	path := filepath.Join(s.Dir, eventsFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Write(append(b, '\n')); err != nil {
		return err
	}
	return f.Close()
}

// ReadEventsTail reads the last N events, oldest-first within the returned
// window. limit <= 0 returns everything.
func (s Store) ReadEventsTail(limit int) ([]model.Event, error) {
	path := filepath.Join(s.Dir, eventsFileName)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Event{}, nil
		}
		return nil, err
	}
	defer f.Close()

	if limit <= 0 {
		var out []model.Event
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			var ev model.Event
			if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
				return nil, err
			}
			out = append(out, ev)
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
		if out == nil {
			out = []model.Event{}
		}
		return out, nil
	}

	// Ring buffer for the last `limit` events.
	ring := make([]model.Event, limit)
	start := 0
	size := 0

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev model.Event
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			return nil, err
		}
		if size < limit {
			ring[size] = ev
			size++
		} else {
			ring[start] = ev
			start = (start + 1) % limit
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if size == 0 {
		return []model.Event{}, nil
	}
	if size < limit {
		return ring[:size], nil
	}
	out := make([]model.Event, 0, limit)
	out = append(out, ring[start:]...)
	out = append(out, ring[:start]...)
	return out, nil
}

// ReadEventsForTree returns the events recorded against one tree,
// oldest-first. limit <= 0 returns all of them.
func (s Store) ReadEventsForTree(treeID string, limit int) ([]model.Event, error) {
	all, err := s.ReadEventsTail(0)
	if err != nil {
		return nil, err
	}
	out := []model.Event{}
	for _, ev := range all {
		if ev.TreeID == treeID {
			out = append(out, ev)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}
