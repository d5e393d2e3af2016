package model

// EnvFile is the ground truth for one file: the last-known on-disk key/value
// map, replaced wholesale on load or disk refresh, never mutated in place.
type EnvFile struct {
	Path string            // Absolute or as-given path on disk
	Name string            // Display name (base name, deduplicated by caller if needed)
	Vars map[string]string // Key -> value, last occurrence wins for duplicates
	Gone bool              // File vanished mid-session; column shown as unavailable
}

// Lookup returns the file's value for key, or missing.
func (f EnvFile) Lookup(key string) Value {
	if f.Vars == nil {
		return None()
	}
	if v, ok := f.Vars[key]; ok {
		return Val(v)
	}
	return None()
}

// ChangeKey is the identity of one pending change: (key, file index).
// A struct rather than a "KEY:0" string so keys containing ':' can't collide.
type ChangeKey struct {
	Key  string
	File int
}

// PendingChange is one in-flight edit. Old records the on-disk value at the
// moment the change was created (the conflict baseline). New == None()
// encodes a deletion.
type PendingChange struct {
	ChangeKey
	Old Value
	New Value
}

// IsDelete reports whether the change removes the key from its file.
func (c PendingChange) IsDelete() bool {
	return !c.New.Defined()
}

// RowStatus classifies one diff row across all files.
type RowStatus int

const (
	StatusIdentical RowStatus = iota // Present everywhere with equal values
	StatusDifferent                  // Present everywhere, values differ
	StatusMissing                    // Absent from at least one file
)

func (s RowStatus) String() string {
	switch s {
	case StatusIdentical:
		return "identical"
	case StatusDifferent:
		return "different"
	case StatusMissing:
		return "missing"
	}
	return "unknown"
}

// DiffRow is one key's comparison across all files. Values has one entry per
// file, in file order. Derived data: recomputed whenever files or pending
// changes move, never stored.
type DiffRow struct {
	Key    string
	Values []Value
	Status RowStatus
}
