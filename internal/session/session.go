// Package session owns the live reconciliation state: ground-truth files,
// the pending-change overlay, and undo/redo history. All mutating operations
// go through this one value, so the watcher and the UI never race over
// partially-applied state; callers serialize access (the TUI's update loop
// is the single consumer).
package session

import (
	"envdiff/internal/diff"
	"envdiff/internal/envfile"
	"envdiff/internal/history"
	"envdiff/internal/model"
	"envdiff/internal/overlay"
)

type Session struct {
	Files   []model.EnvFile
	Overlay *overlay.Overlay
	History *history.History
}

// Load reads every path into ground truth and starts an empty session.
func Load(paths []string) (*Session, error) {
	files, err := envfile.Load(paths)
	if err != nil {
		return nil, err
	}
	return &Session{
		Files:   files,
		Overlay: overlay.New(),
		History: history.New(),
	}, nil
}

// Rows returns the effective diff rows: ground truth overlaid with pending
// changes.
func (s *Session) Rows() []model.DiffRow {
	return s.Overlay.EffectiveRows(s.Files)
}

// GroundRows returns the diff of ground truth alone, ignoring the overlay.
func (s *Session) GroundRows() []model.DiffRow {
	return diff.Compute(s.Files)
}

// Dirty reports whether unsaved pending changes exist.
func (s *Session) Dirty() bool {
	return s.Overlay.Len() > 0
}

// PathIndex resolves a file path to its column index, or -1.
func (s *Session) PathIndex(path string) int {
	for i, f := range s.Files {
		if f.Path == path {
			return i
		}
	}
	return -1
}

// groundValue is the on-disk baseline for an identity, the Old recorded on
// every new pending change.
func (s *Session) groundValue(key string, file int) model.Value {
	if file < 0 || file >= len(s.Files) {
		return model.None()
	}
	return s.Files[file].Lookup(key)
}

// mutate wraps a mutation with the history discipline: the pre-mutation
// snapshot is captured first, the mutation runs, and the post-mutation state
// becomes the new present. fn reports whether it actually changed anything;
// a no-op records no history step.
func (s *Session) mutate(fn func() bool) bool {
	before := s.Overlay.Snapshot()
	if !fn() {
		return false
	}
	s.History.Push(before)
	s.History.Commit(s.Overlay.Snapshot())
	return true
}

// Set stages a new value for one cell. Setting a cell back to its on-disk
// value drops the pending change instead of staging an edit that changes
// nothing.
func (s *Session) Set(key string, file int, value string) bool {
	return s.mutate(func() bool {
		truth := s.groundValue(key, file)
		if model.Val(value).Equal(truth) {
			return s.Overlay.Remove(key, file)
		}
		if c, ok := s.Overlay.Get(key, file); ok && c.New.Equal(model.Val(value)) {
			return false
		}
		s.Overlay.Upsert(model.PendingChange{
			ChangeKey: model.ChangeKey{Key: key, File: file},
			Old:       truth,
			New:       model.Val(value),
		})
		return true
	})
}

// Delete stages removal of one cell's key. If the key exists only as an
// unsaved pending add it never hit disk, so the pending change is removed
// instead of staging a phantom delete directive.
func (s *Session) Delete(key string, file int) bool {
	return s.mutate(func() bool {
		truth := s.groundValue(key, file)
		if !truth.Defined() {
			return s.Overlay.Remove(key, file)
		}
		if c, ok := s.Overlay.Get(key, file); ok && c.IsDelete() {
			return false
		}
		s.Overlay.Upsert(model.PendingChange{
			ChangeKey: model.ChangeKey{Key: key, File: file},
			Old:       truth,
			New:       model.None(),
		})
		return true
	})
}

// RevertCell drops the pending change for one cell.
func (s *Session) RevertCell(key string, file int) bool {
	return s.mutate(func() bool {
		return s.Overlay.Remove(key, file)
	})
}

// RevertKey drops every file's pending change for a key in one history step.
func (s *Session) RevertKey(key string) bool {
	return s.mutate(func() bool {
		changed := false
		for _, c := range s.Overlay.Changes() {
			if c.Key == key {
				changed = true
			}
		}
		if !changed {
			return false
		}
		s.Overlay.RemoveAllForKey(key, -1)
		return true
	})
}

// SyncRow copies the source column's effective value for key into every
// other column, as a single history step. A missing source value syncs as a
// deletion. The source column's own pending change, if any, is left alone.
func (s *Session) SyncRow(key string, from int) bool {
	if from < 0 || from >= len(s.Files) {
		return false
	}
	return s.mutate(func() bool {
		want := s.groundValue(key, from)
		if c, ok := s.Overlay.Get(key, from); ok {
			want = c.New
		}

		changed := false
		for _, c := range s.Overlay.Changes() {
			if c.Key == key && c.File != from {
				changed = true
			}
		}
		s.Overlay.RemoveAllForKey(key, from)
		for i := range s.Files {
			if i == from {
				continue
			}
			truth := s.groundValue(key, i)
			if want.Equal(truth) {
				continue
			}
			s.Overlay.Upsert(model.PendingChange{
				ChangeKey: model.ChangeKey{Key: key, File: i},
				Old:       truth,
				New:       want,
			})
			changed = true
		}
		return changed
	})
}

// UndoLast removes the most recently staged change (LIFO).
func (s *Session) UndoLast() bool {
	return s.mutate(func() bool {
		return s.Overlay.UndoLast()
	})
}

// Undo steps the overlay back one history entry.
func (s *Session) Undo() bool {
	snap, ok := s.History.Undo()
	if !ok {
		return false
	}
	s.Overlay.Restore(snap)
	return true
}

// Redo steps the overlay forward one history entry.
func (s *Session) Redo() bool {
	snap, ok := s.History.Redo()
	if !ok {
		return false
	}
	s.Overlay.Restore(snap)
	return true
}

// UndoAll resets the overlay to empty in one step; redo restores the
// pre-reset state as a single entry.
func (s *Session) UndoAll() bool {
	snap, ok := s.History.UndoAll()
	if !ok {
		return false
	}
	s.Overlay.Restore(snap)
	return true
}
