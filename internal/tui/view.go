package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"

	"envdiff/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")) // Orange

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")) // Sky Blue/Cyan

	diffAddStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")) // Green

	diffDelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Red
			Strikethrough(true)
)

func (m AppModel) View() string {
	if m.Loading {
		return "\n  Loading env files... please wait.\n"
	}
	if m.Err != nil {
		return fmt.Sprintf("\n  Error: %v\n", m.Err)
	}

	width := m.WindowSize.Width
	height := m.WindowSize.Height

	netWidth := width - 6
	if netWidth < 20 {
		netWidth = 20
	}
	leftWidth := netWidth * 3 / 5
	rightWidth := netWidth - leftWidth

	boxHeight := height - 6
	if boxHeight < 6 {
		boxHeight = 6
	}
	interiorHeight := boxHeight - 2
	if interiorHeight < 2 {
		interiorHeight = 2
	}

	accent := lipgloss.Color(m.Cfg.Accent)
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	normalStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	borderColor := lipgloss.Color("63")

	left := m.renderTable(leftWidth, interiorHeight, headerStyle, selectedStyle, normalStyle, borderColor)
	right := m.renderDetails(rightWidth, interiorHeight, headerStyle, borderColor)

	panels := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	body := m.renderTitle() + "\n" + panels + "\n" + m.renderFooter(width)

	switch m.Mode {
	case ModeConfirmQuit:
		return m.renderConfirmQuit()
	case ModeNormal, ModeSearch, ModeEdit, ModeAddKey:
		return body
	}
	return body
}

func (m AppModel) renderTitle() string {
	names := make([]string, 0, len(m.Session.Files))
	for _, f := range m.Session.Files {
		n := f.Name
		if f.Gone {
			n += " " + model.IconGone
		}
		names = append(names, n)
	}
	title := titleStyle.Render("envdiff " + strings.Join(names, " | "))

	extra := ""
	if n := m.Session.Overlay.Len(); n > 0 {
		extra += pendingStyle.Render(fmt.Sprintf("  %s %d pending", model.IconPending, n))
	}
	if c := len(m.Session.Overlay.Conflicts()); c > 0 {
		extra += warnStyle.Render(fmt.Sprintf("  %s %d conflict(s)", model.IconConflict, c))
	}
	return title + extra
}

// renderTable draws the key/value grid: one row per visible key, one value
// column per file.
func (m AppModel) renderTable(width, interiorHeight int, headerStyle, selectedStyle, normalStyle lipgloss.Style, borderColor lipgloss.Color) string {
	var b strings.Builder

	files := m.Session.Files
	// Column layout: status icon (2) + key + one cell per file.
	keyWidth := 18
	cellWidth := (width - keyWidth - 6) / max(len(files), 1)
	if cellWidth < 8 {
		cellWidth = 8
	}

	// Header row with column-cursor marker.
	header := fmt.Sprintf("  %-*s", keyWidth, "KEY")
	for i, f := range files {
		name := truncate(f.Name, cellWidth-2)
		if i == m.SelectedCol {
			name = "[" + name + "]"
		}
		header += fmt.Sprintf(" %-*s", cellWidth, name)
	}
	b.WriteString(headerStyle.Render(truncate(header, width-2)))
	b.WriteString("\n\n")

	visibleItems := interiorHeight - 2
	if visibleItems < 1 {
		visibleItems = 1
	}
	startIdx := 0
	endIdx := len(m.FilteredIndices)
	if len(m.FilteredIndices) > visibleItems {
		if m.SelectedIdx >= visibleItems/2 {
			startIdx = m.SelectedIdx - (visibleItems / 2)
		}
		if startIdx < 0 {
			startIdx = 0
		}
		if startIdx+visibleItems > len(m.FilteredIndices) {
			startIdx = len(m.FilteredIndices) - visibleItems
		}
		endIdx = startIdx + visibleItems
	}

	for i := startIdx; i < endIdx; i++ {
		row := m.Rows[m.FilteredIndices[i]]

		line := fmt.Sprintf("%s %-*s", model.StatusIcon(row.Status), keyWidth, truncate(row.Key, keyWidth))
		for col, v := range row.Values {
			line += " " + fmt.Sprintf("%-*s", cellWidth, truncate(m.cellText(row.Key, col, v), cellWidth))
		}
		line = truncate(line, width-2)

		if i == m.SelectedIdx {
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString(normalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if len(m.FilteredIndices) == 0 {
		b.WriteString(dimStyle.Render("  (no keys to show)"))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(interiorHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(borderColor).
		Render(strings.TrimSuffix(b.String(), "\n"))
}

// cellText renders one cell, marking pending state and conflicts.
func (m AppModel) cellText(key string, col int, v model.Value) string {
	marker := ""
	if c, ok := m.Session.Overlay.Get(key, col); ok {
		if m.Session.Overlay.InConflict(key, col) {
			marker = model.IconConflict
		} else if c.IsDelete() {
			marker = model.IconDeleted
		} else {
			marker = model.IconPending
		}
	}
	text := "(not set)"
	if v.Defined() {
		text = v.Raw()
	}
	if marker != "" {
		return marker + " " + text
	}
	return text
}

// renderDetails draws the right panel: the selected key's value in each
// file, pending old/new, conflict baselines, and a character diff of how
// other columns differ from the selected one.
func (m AppModel) renderDetails(width, interiorHeight int, headerStyle lipgloss.Style, borderColor lipgloss.Color) string {
	var b strings.Builder

	row, ok := m.currentRow()
	if !ok {
		b.WriteString(dimStyle.Render("No key selected"))
	} else {
		b.WriteString(headerStyle.Render(row.Key))
		b.WriteString("\n\n")

		var baseline model.Value
		if m.SelectedCol < len(row.Values) {
			baseline = row.Values[m.SelectedCol]
		}

		for i, f := range m.Session.Files {
			name := f.Name
			if f.Gone {
				name += " (unavailable " + model.IconGone + ")"
			}
			if i == m.SelectedCol {
				name = "> " + name
			} else {
				name = "  " + name
			}
			b.WriteString(headerStyle.Render(name))
			b.WriteString("\n")

			v := model.None()
			if i < len(row.Values) {
				v = row.Values[i]
			}

			if c, hasPending := m.Session.Overlay.Get(row.Key, i); hasPending {
				b.WriteString("    " + dimStyle.Render("disk: "+valueText(c.Old)) + "\n")
				b.WriteString("    " + pendingStyle.Render("pending: "+valueText(c.New)) + "\n")
				if m.Session.Overlay.InConflict(row.Key, i) {
					disk := m.Session.Files[i].Lookup(row.Key)
					b.WriteString("    " + warnStyle.Render(
						model.IconConflict+" disk changed externally to "+valueText(disk)) + "\n")
				}
			} else if i != m.SelectedCol && v.Defined() && baseline.Defined() && !v.Equal(baseline) {
				b.WriteString("    " + renderCharDiff(baseline.Raw(), v.Raw()) + "\n")
			} else {
				b.WriteString("    " + valueText(v) + "\n")
			}
			b.WriteString("\n")
		}
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(interiorHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Render(strings.TrimSuffix(b.String(), "\n"))
}

func valueText(v model.Value) string {
	if !v.Defined() {
		return "(not set)"
	}
	if v.Raw() == "" {
		return `""`
	}
	return v.Raw()
}

// renderCharDiff highlights how other differs from base, character by
// character.
func renderCharDiff(base, other string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(base, other, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		case diffmatchpatch.DiffInsert:
			b.WriteString(diffAddStyle.Render(d.Text))
		case diffmatchpatch.DiffDelete:
			b.WriteString(diffDelStyle.Render(d.Text))
		}
	}
	return b.String()
}

func (m AppModel) renderFooter(width int) string {
	var status string

	switch m.Mode {
	case ModeSearch:
		status = "Filter: " + m.InputBuffer.View()
	case ModeEdit:
		status = fmt.Sprintf("Edit %s [%s] = %s  (enter: stage, esc: cancel)",
			m.EditKey, m.fileName(m.SelectedCol), m.EditBuffer.View())
	case ModeAddKey:
		status = fmt.Sprintf("New key in [%s]: %s  (enter: next, esc: cancel)",
			m.fileName(m.SelectedCol), m.EditBuffer.View())
	case ModeConfirmQuit:
		status = "Unsaved changes. Quit anyway?"
	case ModeNormal:
		if m.StatusMsg != "" {
			status = m.StatusMsg
		} else {
			status = "enter:edit a:add d:delete s:sync r/R:revert u:undo ctrl+r:redo U:undo-all w:save /:filter i:identical q:quit"
		}
	}

	if m.SearchActive && m.Mode == ModeNormal {
		status += dimStyle.Render(fmt.Sprintf("  [filter: %s]", m.InputBuffer.Value()))
	}

	return dimStyle.Render(truncate(" "+status, width))
}

func (m AppModel) renderConfirmQuit() string {
	w, h := m.WindowSize.Width, m.WindowSize.Height
	if w < 20 || h < 10 {
		return "Unsaved changes. Quit anyway? (y/n)"
	}

	n := m.Session.Overlay.Len()
	content := fmt.Sprintf("%d unsaved pending change(s).\n\nQuit without saving? (y/n)", n)

	dialog := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("208")).
		Padding(1, 2).
		Render(content)

	return lipgloss.Place(w, h,
		lipgloss.Center, lipgloss.Center,
		dialog,
	)
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
