// Package report renders the diff for the non-interactive CLI modes.
package report

import (
	"fmt"
	"strings"

	"envdiff/internal/model"
)

// Generate produces the plain-text diagnostic report for --report mode.
// With verbose set, identical rows are listed too.
func Generate(files []model.EnvFile, rows []model.DiffRow, verbose bool) string {
	var b strings.Builder

	b.WriteString("envdiff report\n")
	b.WriteString("==============\n\n")
	b.WriteString("Files:\n")
	for i, f := range files {
		fmt.Fprintf(&b, "  [%d] %s (%d keys)\n", i+1, f.Path, len(f.Vars))
	}
	b.WriteString("\n")

	counts := map[model.RowStatus]int{}
	for _, r := range rows {
		counts[r.Status]++
	}
	fmt.Fprintf(&b, "Keys: %d total, %d missing somewhere, %d different, %d identical\n\n",
		len(rows), counts[model.StatusMissing], counts[model.StatusDifferent], counts[model.StatusIdentical])

	shown := 0
	for _, r := range rows {
		if r.Status == model.StatusIdentical && !verbose {
			continue
		}
		shown++
		fmt.Fprintf(&b, "%s %s (%s)\n", model.StatusIcon(r.Status), r.Key, r.Status)
		for i, v := range r.Values {
			name := fmt.Sprintf("[%d]", i+1)
			if i < len(files) {
				name = files[i].Name
			}
			if v.Defined() {
				fmt.Fprintf(&b, "    %-20s %s\n", name, v.Raw())
			} else {
				fmt.Fprintf(&b, "    %-20s (not set)\n", name)
			}
		}
	}
	if shown == 0 {
		b.WriteString("All keys identical across files.\n")
	}

	return b.String()
}

// JSONResult is the --json output shape.
type JSONResult struct {
	Files []JSONFile `json:"files"`
	Rows  []JSONRow  `json:"rows"`
}

type JSONFile struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Keys int    `json:"keys"`
}

type JSONRow struct {
	Key    string    `json:"key"`
	Status string    `json:"status"`
	Values []*string `json:"values"` // null = missing
}

// BuildJSON converts files and rows into the serializable result.
func BuildJSON(files []model.EnvFile, rows []model.DiffRow) JSONResult {
	res := JSONResult{
		Files: make([]JSONFile, 0, len(files)),
		Rows:  make([]JSONRow, 0, len(rows)),
	}
	for _, f := range files {
		res.Files = append(res.Files, JSONFile{Path: f.Path, Name: f.Name, Keys: len(f.Vars)})
	}
	for _, r := range rows {
		jr := JSONRow{Key: r.Key, Status: r.Status.String()}
		for _, v := range r.Values {
			if v.Defined() {
				s := v.Raw()
				jr.Values = append(jr.Values, &s)
			} else {
				jr.Values = append(jr.Values, nil)
			}
		}
		res.Rows = append(res.Rows, jr)
	}
	return res
}
