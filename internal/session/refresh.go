package session

import (
	"envdiff/internal/envfile"
	"envdiff/internal/model"
	"envdiff/internal/overlay"
	"envdiff/internal/writer"
)

// ReconcileResult reports what one disk refresh did to the conflict set.
type ReconcileResult struct {
	File    int
	Flagged []model.ChangeKey
	Cleared []model.ChangeKey
}

// RefreshFile re-reads one watched path from disk, replaces that column's
// ground truth wholesale, and reconciles pending changes against the new
// contents. An unreadable file degrades the column to unavailable instead of
// failing; its last-known ground truth stays visible.
func (s *Session) RefreshFile(path string) (ReconcileResult, error) {
	idx := s.PathIndex(path)
	if idx < 0 {
		return ReconcileResult{File: -1}, nil
	}

	f, err := envfile.ReadFile(path)
	if err != nil {
		s.Files[idx].Gone = true
		return ReconcileResult{File: idx}, err
	}
	s.Files[idx] = f
	return s.reconcile(idx, f.Vars), nil
}

// FileRemoved marks one column unavailable after the watcher reports its
// file gone. Ground truth keeps the last-known values; pending changes stay
// staged and un-reconciled until the file reappears.
func (s *Session) FileRemoved(path string) int {
	idx := s.PathIndex(path)
	if idx >= 0 {
		s.Files[idx].Gone = true
	}
	return idx
}

// reconcile flags or clears conflicts for one column against a fresh
// on-disk map. Reconciliation is not an undoable step: conflict flags track
// disk reality, so the new state is committed as present without pushing a
// past entry.
func (s *Session) reconcile(idx int, newVars map[string]string) ReconcileResult {
	flagged, cleared := s.Overlay.Reconcile(idx, newVars)
	s.History.Commit(s.Overlay.Snapshot())
	return ReconcileResult{File: idx, Flagged: flagged, Cleared: cleared}
}

// Save applies every pending change to disk. On success the overlay empties
// and history resets (the changes are no longer pending, so there is nothing
// to step back to). On partial failure the changes for files that did write
// are dropped and the rest stay staged, still undoable.
func (s *Session) Save() error {
	if s.Overlay.Len() == 0 {
		return nil
	}

	files, err := writer.Apply(s.Files, s.Overlay.Changes())
	s.Files = files

	if err == nil {
		s.Overlay.Restore(overlay.Snapshot{})
		s.History.Reset()
		return nil
	}

	werr, ok := err.(*writer.WriteError)
	if !ok {
		return err
	}
	written := make(map[string]bool, len(werr.Written))
	for _, p := range werr.Written {
		written[p] = true
	}
	for _, c := range s.Overlay.Changes() {
		if c.File >= 0 && c.File < len(s.Files) && written[s.Files[c.File].Path] {
			s.Overlay.Remove(c.Key, c.File)
		}
	}
	s.History.Reset()
	s.History.Commit(s.Overlay.Snapshot())
	return werr
}
