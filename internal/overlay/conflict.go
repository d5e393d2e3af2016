package overlay

import "envdiff/internal/model"

// Reconcile compares pending changes against a freshly read on-disk map for
// one file. A change whose recorded baseline (Old) no longer matches disk is
// flagged; a flagged change whose baseline matches again is cleared (the
// external edit was reverted, or independently landed on the same value).
// The change itself is never rewritten: conflict is advisory, and silently
// rebasing a pending edit could clobber a value the user meant to diverge
// from. Returns the identities newly flagged and newly cleared.
func (o *Overlay) Reconcile(file int, newVars map[string]string) (flagged, cleared []model.ChangeKey) {
	for _, ck := range o.order {
		if ck.File != file {
			continue
		}
		c := o.changes[ck]

		disk := model.None()
		if v, ok := newVars[ck.Key]; ok {
			disk = model.Val(v)
		}

		_, wasFlagged := o.conflicts[ck]
		if !disk.Equal(c.Old) {
			if !wasFlagged {
				o.conflicts[ck] = struct{}{}
				flagged = append(flagged, ck)
			}
		} else if wasFlagged {
			delete(o.conflicts, ck)
			cleared = append(cleared, ck)
		}
	}
	return flagged, cleared
}

// Snapshot is an immutable copy of the overlay's state, the unit stored by
// the history manager.
type Snapshot struct {
	Changes   []model.PendingChange
	Conflicts []model.ChangeKey
}

// Snapshot deep-copies the current changes (in insertion order) and conflict
// flags.
func (o *Overlay) Snapshot() Snapshot {
	return Snapshot{
		Changes:   o.Changes(),
		Conflicts: o.conflictKeys(),
	}
}

// Restore replaces the overlay's state with a snapshot's contents.
func (o *Overlay) Restore(s Snapshot) {
	o.changes = make(map[model.ChangeKey]*model.PendingChange, len(s.Changes))
	o.order = make([]model.ChangeKey, 0, len(s.Changes))
	o.conflicts = make(map[model.ChangeKey]struct{}, len(s.Conflicts))
	for _, c := range s.Changes {
		cc := c
		o.changes[c.ChangeKey] = &cc
		o.order = append(o.order, c.ChangeKey)
	}
	for _, ck := range s.Conflicts {
		o.conflicts[ck] = struct{}{}
	}
}

func (o *Overlay) conflictKeys() []model.ChangeKey {
	out := make([]model.ChangeKey, 0, len(o.conflicts))
	for _, ck := range o.order {
		if _, ok := o.conflicts[ck]; ok {
			out = append(out, ck)
		}
	}
	return out
}
