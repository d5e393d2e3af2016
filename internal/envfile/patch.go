package envfile

import (
	"sort"
	"strings"

	"envdiff/internal/model"
)

// Patch re-serializes lines with a set of edits applied. mods maps keys to a
// new value or a deletion (model.None()); adds maps brand-new keys to their
// value. Only the last assignment line for a duplicated key is authoritative:
// it is the one modified or deleted, earlier occurrences pass through
// untouched (Vars reports the last occurrence, so this is the line the user
// actually saw). All untouched lines are emitted byte-identically. Added keys
// land before any run of trailing blank lines. The output ends with exactly
// one "\n", except that zero remaining lines produce the empty string.
func Patch(lines []Line, mods map[string]model.Value, adds map[string]string) string {
	// Last authoritative line index per modified key.
	authoritative := make(map[int]string, len(mods))
	lastIdx := make(map[string]int, len(mods))
	for i, l := range lines {
		if l.Kind != KindAssignment {
			continue
		}
		if _, wanted := mods[l.Key]; wanted {
			lastIdx[l.Key] = i
		}
	}
	for key, i := range lastIdx {
		authoritative[i] = key
	}

	type outLine struct {
		text  string
		blank bool
	}
	var out []outLine

	for i, l := range lines {
		key, hit := authoritative[i]
		if !hit {
			out = append(out, outLine{text: l.Raw, blank: l.Kind == KindBlank})
			continue
		}
		next := mods[key]
		if !next.Defined() {
			continue // deletion: drop the line
		}
		out = append(out, outLine{text: BuildLine(key, next.Raw())})
	}

	if len(adds) > 0 {
		keys := make([]string, 0, len(adds))
		for k := range adds {
			if _, present := lastIdx[k]; present {
				continue // already handled as a modification target
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)

		// Insert before the trailing blank run so padding stays trailing.
		insert := len(out)
		for insert > 0 && out[insert-1].blank {
			insert--
		}
		added := make([]outLine, 0, len(keys))
		for _, k := range keys {
			added = append(added, outLine{text: BuildLine(k, adds[k])})
		}
		out = append(out[:insert], append(added, out[insert:]...)...)
	}

	if len(out) == 0 {
		return ""
	}
	var b strings.Builder
	for _, l := range out {
		b.WriteString(l.text)
		b.WriteByte('\n')
	}
	return b.String()
}

// BuildLine renders a fresh KEY=value assignment. Values containing
// whitespace, '#', a quote character, a backslash, or nothing at all are
// double-quoted with '"' and '\' escaped; this guarantees Parse reads back
// the identical value.
func BuildLine(key, value string) string {
	if needsQuoting(value) {
		return key + "=\"" + escapeDouble(value) + "\""
	}
	return key + "=" + value
}

func needsQuoting(v string) bool {
	if v == "" {
		return true
	}
	return strings.ContainsAny(v, " \t\n#\"'\\")
}

func escapeDouble(v string) string {
	v = strings.ReplaceAll(v, "\\", "\\\\")
	return strings.ReplaceAll(v, "\"", "\\\"")
}
