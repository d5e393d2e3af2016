package overlay

import (
	"testing"

	"github.com/stretchr/testify/require"

	"envdiff/internal/model"
)

func change(key string, file int, old, new model.Value) model.PendingChange {
	return model.PendingChange{
		ChangeKey: model.ChangeKey{Key: key, File: file},
		Old:       old,
		New:       new,
	}
}

func TestUpsert_KeepsInsertionSlotOnReplace(t *testing.T) {
	o := New()
	o.Upsert(change("A", 0, model.Val("1"), model.Val("x")))
	o.Upsert(change("B", 0, model.Val("2"), model.Val("y")))
	o.Upsert(change("A", 0, model.Val("1"), model.Val("z"))) // re-upsert same identity

	got := o.Changes()
	require.Len(t, got, 2)
	require.Equal(t, "A", got[0].Key, "re-upsert must keep the original slot")
	require.Equal(t, "z", got[0].New.Raw(), "but take the new value")
	require.Equal(t, "B", got[1].Key)
}

func TestRemove_AlsoClearsConflict(t *testing.T) {
	o := New()
	o.Upsert(change("A", 0, model.Val("a"), model.Val("b")))
	o.Reconcile(0, map[string]string{"A": "c"})
	require.True(t, o.InConflict("A", 0))

	require.True(t, o.Remove("A", 0))
	require.False(t, o.InConflict("A", 0))
	require.Zero(t, o.Len())
	require.False(t, o.Remove("A", 0), "second remove is a no-op")
}

func TestRemoveAllForKey_WithExclusion(t *testing.T) {
	o := New()
	o.Upsert(change("K", 0, model.None(), model.Val("a")))
	o.Upsert(change("K", 1, model.None(), model.Val("b")))
	o.Upsert(change("K", 2, model.None(), model.Val("c")))
	o.Upsert(change("OTHER", 0, model.None(), model.Val("d")))

	o.RemoveAllForKey("K", 1)

	got := o.Changes()
	require.Len(t, got, 2)
	require.Equal(t, model.ChangeKey{Key: "K", File: 1}, got[0].ChangeKey)
	require.Equal(t, model.ChangeKey{Key: "OTHER", File: 0}, got[1].ChangeKey)

	o.RemoveAllForKey("K", -1)
	require.Len(t, o.Changes(), 1)
}

func TestUndoLast_LIFOByInsertion(t *testing.T) {
	o := New()
	o.Upsert(change("A", 1, model.Val("1"), model.Val("x")))
	o.Upsert(change("B", 0, model.Val("2"), model.Val("y")))

	require.True(t, o.UndoLast())
	got := o.Changes()
	require.Len(t, got, 1)
	require.Equal(t, "A", got[0].Key, "LIFO is by insertion order, not file index")

	require.True(t, o.UndoLast())
	require.False(t, o.UndoLast())
}

func TestEffectiveRows_OverlayLaw(t *testing.T) {
	files := []model.EnvFile{
		{Name: "a.env", Vars: map[string]string{"FOO": "1"}},
		{Name: "b.env", Vars: map[string]string{"FOO": "2"}},
	}
	o := New()

	rows := o.EffectiveRows(files)
	require.Len(t, rows, 1)
	require.Equal(t, []model.Value{model.Val("1"), model.Val("2")}, rows[0].Values)
	require.Equal(t, model.StatusDifferent, rows[0].Status)

	// Pending edit overlays ground truth (I2).
	o.Upsert(change("FOO", 1, model.Val("2"), model.Val("9")))
	rows = o.EffectiveRows(files)
	require.Equal(t, []model.Value{model.Val("1"), model.Val("9")}, rows[0].Values)

	// Removing the change restores ground truth.
	require.True(t, o.UndoLast())
	rows = o.EffectiveRows(files)
	require.Equal(t, []model.Value{model.Val("1"), model.Val("2")}, rows[0].Values)
	require.Zero(t, o.Len())
}

func TestEffectiveRows_RowSetLaw(t *testing.T) {
	files := []model.EnvFile{
		{Name: "a.env", Vars: map[string]string{"ON_DISK": "v"}},
		{Name: "b.env", Vars: map[string]string{}},
	}
	o := New()

	// Pending add creates a row not present in ground truth (I3).
	o.Upsert(change("ADDED", 0, model.None(), model.Val("new")))
	rows := o.EffectiveRows(files)
	require.Len(t, rows, 2)

	// Pending delete keeps the row while ground truth still has the key.
	o.Upsert(change("ON_DISK", 0, model.Val("v"), model.None()))
	rows = o.EffectiveRows(files)
	require.Len(t, rows, 2)
	var onDisk model.DiffRow
	for _, r := range rows {
		if r.Key == "ON_DISK" {
			onDisk = r
		}
	}
	require.Equal(t, []model.Value{model.None(), model.None()}, onDisk.Values)

	// Dropping the pending add makes its row disappear.
	require.True(t, o.Remove("ADDED", 0))
	rows = o.EffectiveRows(files)
	require.Len(t, rows, 1)
	require.Equal(t, "ON_DISK", rows[0].Key)
}

func TestReconcile_FlagAndClear(t *testing.T) {
	o := New()
	// oldValue "a", pending "b".
	o.Upsert(change("K", 0, model.Val("a"), model.Val("b")))

	// Disk now reports "c": conflict.
	flagged, cleared := o.Reconcile(0, map[string]string{"K": "c"})
	require.Equal(t, []model.ChangeKey{{Key: "K", File: 0}}, flagged)
	require.Empty(t, cleared)
	require.True(t, o.InConflict("K", 0))

	// Re-reporting the same divergence does not re-flag.
	flagged, cleared = o.Reconcile(0, map[string]string{"K": "c"})
	require.Empty(t, flagged)
	require.Empty(t, cleared)

	// Disk back to "a": conflict clears.
	flagged, cleared = o.Reconcile(0, map[string]string{"K": "a"})
	require.Empty(t, flagged)
	require.Equal(t, []model.ChangeKey{{Key: "K", File: 0}}, cleared)
	require.False(t, o.InConflict("K", 0))
}

func TestReconcile_MissingOnDisk(t *testing.T) {
	o := New()
	o.Upsert(change("K", 0, model.Val("a"), model.Val("b")))

	// Key deleted externally: baseline no longer matches.
	flagged, _ := o.Reconcile(0, map[string]string{})
	require.Len(t, flagged, 1)

	// A change whose baseline is "missing" matches an absent key.
	o2 := New()
	o2.Upsert(change("NEW", 0, model.None(), model.Val("v")))
	flagged, cleared := o2.Reconcile(0, map[string]string{})
	require.Empty(t, flagged)
	require.Empty(t, cleared)
}

func TestReconcile_OtherFilesUntouched(t *testing.T) {
	o := New()
	o.Upsert(change("K", 0, model.Val("a"), model.Val("b")))
	o.Upsert(change("K", 1, model.Val("a"), model.Val("b")))

	flagged, _ := o.Reconcile(1, map[string]string{"K": "zzz"})
	require.Equal(t, []model.ChangeKey{{Key: "K", File: 1}}, flagged)
	require.False(t, o.InConflict("K", 0))
}

func TestReconcile_DoesNotRewriteChange(t *testing.T) {
	o := New()
	o.Upsert(change("K", 0, model.Val("a"), model.Val("b")))
	o.Reconcile(0, map[string]string{"K": "c"})

	c, ok := o.Get("K", 0)
	require.True(t, ok)
	require.Equal(t, model.Val("a"), c.Old, "conflict is advisory, baseline stays")
	require.Equal(t, model.Val("b"), c.New)
}

func TestSnapshotRestore(t *testing.T) {
	o := New()
	o.Upsert(change("A", 0, model.Val("1"), model.Val("x")))
	o.Upsert(change("B", 1, model.Val("2"), model.Val("y")))
	o.Reconcile(0, map[string]string{"A": "mutated"})

	snap := o.Snapshot()

	o.Upsert(change("C", 0, model.None(), model.Val("z")))
	o.Remove("A", 0)
	require.Len(t, o.Changes(), 2)

	o.Restore(snap)
	got := o.Changes()
	require.Len(t, got, 2)
	require.Equal(t, "A", got[0].Key)
	require.Equal(t, "B", got[1].Key)
	require.True(t, o.InConflict("A", 0))

	// Snapshots are value copies: mutating the overlay after Restore must
	// not leak into the snapshot.
	o.Upsert(change("A", 0, model.Val("1"), model.Val("different")))
	require.Equal(t, "x", snap.Changes[0].New.Raw())
}
