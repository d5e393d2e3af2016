// Package diff classifies each key's status across N env files.
package diff

import (
	"sort"
	"strings"

	"envdiff/internal/model"
)

// Compute builds one row per distinct key across all files' ground truth.
// Status is Missing if any file lacks the key, Different if present
// everywhere with unequal values, Identical otherwise. Rows are sorted by
// status priority (Missing, Different, Identical) so attention-worthy rows
// surface first, then case-insensitively by key.
func Compute(files []model.EnvFile) []model.DiffRow {
	if len(files) == 0 {
		return nil
	}

	keys := make(map[string]struct{})
	for _, f := range files {
		for k := range f.Vars {
			keys[k] = struct{}{}
		}
	}

	rows := make([]model.DiffRow, 0, len(keys))
	for k := range keys {
		values := make([]model.Value, len(files))
		for i, f := range files {
			values[i] = f.Lookup(k)
		}
		rows = append(rows, model.DiffRow{
			Key:    k,
			Values: values,
			Status: Classify(values),
		})
	}

	Sort(rows)
	return rows
}

// Classify derives a row status from its per-file values.
func Classify(values []model.Value) model.RowStatus {
	for _, v := range values {
		if !v.Defined() {
			return model.StatusMissing
		}
	}
	for _, v := range values[1:] {
		if !v.Equal(values[0]) {
			return model.StatusDifferent
		}
	}
	return model.StatusIdentical
}

// Sort orders rows by status priority then case-insensitive key. This is the
// one sort policy used everywhere; cursor stability relies on it never
// changing between recomputes.
func Sort(rows []model.DiffRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Status != rows[j].Status {
			return statusRank(rows[i].Status) < statusRank(rows[j].Status)
		}
		li, lj := strings.ToLower(rows[i].Key), strings.ToLower(rows[j].Key)
		if li != lj {
			return li < lj
		}
		return rows[i].Key < rows[j].Key
	})
}

func statusRank(s model.RowStatus) int {
	switch s {
	case model.StatusMissing:
		return 0
	case model.StatusDifferent:
		return 1
	default:
		return 2
	}
}
