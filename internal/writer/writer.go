// Package writer applies a finalized batch of pending changes to disk using
// the format-preserving patcher.
package writer

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"envdiff/internal/envfile"
	"envdiff/internal/model"
)

// WriteError reports per-file write failures. Writes are not transactional
// across files: Written lists the files that did land before or between
// failures, and they are not rolled back.
type WriteError struct {
	Failed  map[string]error // path -> cause
	Written []string         // paths successfully written in the same batch
}

func (e *WriteError) Error() string {
	parts := make([]string, 0, len(e.Failed))
	for path, err := range e.Failed {
		parts = append(parts, fmt.Sprintf("%s: %v", path, err))
	}
	return "write failed: " + strings.Join(parts, "; ")
}

// Apply patches each file that has at least one change and writes it back.
// Files with no changes pass through untouched, no I/O. Returned files carry
// refreshed ground-truth maps for everything written. On partial failure the
// successfully written files are still reflected in the returned slice
// alongside a *WriteError.
func Apply(files []model.EnvFile, changes []model.PendingChange) ([]model.EnvFile, error) {
	byFile := make(map[int][]model.PendingChange)
	for _, c := range changes {
		byFile[c.File] = append(byFile[c.File], c)
	}

	out := make([]model.EnvFile, len(files))
	copy(out, files)

	werr := &WriteError{Failed: make(map[string]error)}

	indices := make([]int, 0, len(byFile))
	for idx := range byFile {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	for _, idx := range indices {
		if idx < 0 || idx >= len(files) {
			continue
		}
		batch := byFile[idx]
		f := files[idx]

		data, err := os.ReadFile(f.Path)
		if err != nil {
			werr.Failed[f.Path] = err
			continue
		}
		lines := envfile.Parse(string(data))
		onDisk := envfile.Vars(lines)

		mods := make(map[string]model.Value)
		adds := make(map[string]string)
		for _, c := range batch {
			if _, present := onDisk[c.Key]; present {
				mods[c.Key] = c.New
			} else if c.New.Defined() {
				adds[c.Key] = c.New.Raw()
			}
			// Deleting a key that never hit disk is a no-op here; the
			// overlay is expected to drop that pending change instead of
			// emitting it.
		}

		text := envfile.Patch(lines, mods, adds)
		if err := os.WriteFile(f.Path, []byte(text), 0o644); err != nil {
			werr.Failed[f.Path] = err
			continue
		}
		werr.Written = append(werr.Written, f.Path)

		refreshed := f
		refreshed.Vars = envfile.Vars(envfile.Parse(text))
		out[idx] = refreshed
	}

	if len(werr.Failed) > 0 {
		return out, werr
	}
	return out, nil
}
