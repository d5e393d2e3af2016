// Package overlay holds the pending-change store: in-flight edits layered
// over ground truth, plus the conflict flags raised when an external disk
// edit races a pending change.
package overlay

import (
	"envdiff/internal/diff"
	"envdiff/internal/model"
)

// Overlay is the keyed store of pending edits. At most one change per
// (key, file) identity; insertion order is preserved so LIFO undo and
// save-preview grouping are deterministic. Re-upserting an existing identity
// keeps its original slot.
type Overlay struct {
	changes   map[model.ChangeKey]*model.PendingChange
	order     []model.ChangeKey
	conflicts map[model.ChangeKey]struct{}
}

func New() *Overlay {
	return &Overlay{
		changes:   make(map[model.ChangeKey]*model.PendingChange),
		conflicts: make(map[model.ChangeKey]struct{}),
	}
}

// Upsert inserts or replaces the change for its identity.
func (o *Overlay) Upsert(c model.PendingChange) {
	if _, ok := o.changes[c.ChangeKey]; !ok {
		o.order = append(o.order, c.ChangeKey)
	}
	cc := c
	o.changes[c.ChangeKey] = &cc
}

// Get returns the pending change for an identity, if any.
func (o *Overlay) Get(key string, file int) (model.PendingChange, bool) {
	c, ok := o.changes[model.ChangeKey{Key: key, File: file}]
	if !ok {
		return model.PendingChange{}, false
	}
	return *c, true
}

// Remove deletes one identity. A removed change cannot stay in conflict, so
// its flag goes too. Reports whether anything was removed.
func (o *Overlay) Remove(key string, file int) bool {
	ck := model.ChangeKey{Key: key, File: file}
	if _, ok := o.changes[ck]; !ok {
		return false
	}
	delete(o.changes, ck)
	delete(o.conflicts, ck)
	o.dropFromOrder(ck)
	return true
}

// RemoveAllForKey removes every file's pending change for key. Pass a
// negative exclude to remove all; a valid file index spares that column,
// which lets a multi-file sync replace all-but-one column atomically.
func (o *Overlay) RemoveAllForKey(key string, exclude int) {
	kept := o.order[:0]
	for _, ck := range o.order {
		if ck.Key == key && ck.File != exclude {
			delete(o.changes, ck)
			delete(o.conflicts, ck)
			continue
		}
		kept = append(kept, ck)
	}
	o.order = kept
}

// UndoLast removes the most recently inserted change (LIFO by insertion
// order, not file index). Reports whether anything was removed.
func (o *Overlay) UndoLast() bool {
	if len(o.order) == 0 {
		return false
	}
	last := o.order[len(o.order)-1]
	return o.Remove(last.Key, last.File)
}

// Len reports the number of pending changes.
func (o *Overlay) Len() int {
	return len(o.order)
}

// Changes returns all pending changes in insertion order.
func (o *Overlay) Changes() []model.PendingChange {
	out := make([]model.PendingChange, 0, len(o.order))
	for _, ck := range o.order {
		out = append(out, *o.changes[ck])
	}
	return out
}

// InConflict reports whether an identity is flagged.
func (o *Overlay) InConflict(key string, file int) bool {
	_, ok := o.conflicts[model.ChangeKey{Key: key, File: file}]
	return ok
}

// Conflicts returns the flagged identities in insertion order of their
// changes.
func (o *Overlay) Conflicts() []model.ChangeKey {
	return o.conflictKeys()
}

func (o *Overlay) dropFromOrder(ck model.ChangeKey) {
	for i, c := range o.order {
		if c == ck {
			o.order = append(o.order[:i], o.order[i+1:]...)
			return
		}
	}
}

// EffectiveRows recomputes diff rows from ground truth, then overlays
// pending values. A key appears iff it lives in some file's ground truth or
// has a pending non-delete change; a pending delete blanks its cell but the
// row survives as long as ground truth still holds the key somewhere.
func (o *Overlay) EffectiveRows(files []model.EnvFile) []model.DiffRow {
	if len(files) == 0 {
		return nil
	}

	keys := make(map[string]struct{})
	for _, f := range files {
		for k := range f.Vars {
			keys[k] = struct{}{}
		}
	}
	for _, ck := range o.order {
		if o.changes[ck].New.Defined() {
			keys[ck.Key] = struct{}{}
		}
	}

	rows := make([]model.DiffRow, 0, len(keys))
	for k := range keys {
		values := make([]model.Value, len(files))
		for i, f := range files {
			v := f.Lookup(k)
			if c, ok := o.changes[model.ChangeKey{Key: k, File: i}]; ok {
				v = c.New
			}
			values[i] = v
		}
		rows = append(rows, model.DiffRow{
			Key:    k,
			Values: values,
			Status: diff.Classify(values),
		})
	}

	diff.Sort(rows)
	return rows
}
