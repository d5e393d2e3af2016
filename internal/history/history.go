// Package history implements linear snapshot undo/redo over the pending
// change overlay.
package history

import "envdiff/internal/overlay"

// History is the classic past/present/future stack machine. Present always
// mirrors the live overlay state immediately after any committed mutation;
// it seeds the next push. Any new mutation after an undo discards future.
type History struct {
	past    []overlay.Snapshot
	present overlay.Snapshot
	future  []overlay.Snapshot
}

func New() *History {
	return &History{}
}

// Push records the pre-mutation state. Every mutating operation must call
// this with the snapshot captured at its start, before touching the overlay;
// the post-mutation state is committed afterwards via Commit.
func (h *History) Push(before overlay.Snapshot) {
	h.past = append(h.past, before)
	h.future = nil
}

// Commit sets present to the state the mutation produced.
func (h *History) Commit(after overlay.Snapshot) {
	h.present = after
}

// Undo steps back one entry. Returns the snapshot to restore and whether a
// step was available.
func (h *History) Undo() (overlay.Snapshot, bool) {
	if len(h.past) == 0 {
		return overlay.Snapshot{}, false
	}
	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, h.present)
	h.present = prev
	return prev, true
}

// Redo steps forward one entry, symmetric to Undo.
func (h *History) Redo() (overlay.Snapshot, bool) {
	if len(h.future) == 0 {
		return overlay.Snapshot{}, false
	}
	next := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, h.present)
	h.present = next
	return next, true
}

// UndoAll collapses the entire past into one step back to the empty state.
// The pre-reset state becomes a single redo entry, so a full redo is
// possible but stepping through individual undone changes is not. O(1)
// reset semantics, deliberately traded against granular replay.
func (h *History) UndoAll() (overlay.Snapshot, bool) {
	if len(h.past) == 0 {
		return overlay.Snapshot{}, false
	}
	h.past = nil
	h.future = append(h.future, h.present)
	h.present = overlay.Snapshot{}
	return h.present, true
}

// CanUndo reports whether a backward step exists.
func (h *History) CanUndo() bool {
	return len(h.past) > 0
}

// CanRedo reports whether a forward step exists.
func (h *History) CanRedo() bool {
	return len(h.future) > 0
}

// Reset drops all history, e.g. after a successful save.
func (h *History) Reset() {
	h.past = nil
	h.future = nil
	h.present = overlay.Snapshot{}
}
