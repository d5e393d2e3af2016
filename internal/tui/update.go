package tui

import (
	"fmt"
	"strings"

	"envdiff/internal/envfile"
	"envdiff/internal/model"
	"envdiff/internal/session"
	"envdiff/internal/watcher"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// MsgSessionReady indicates the env files finished loading.
type MsgSessionReady struct {
	Session *session.Session
}

// MsgWatcherReady carries the started file watcher.
type MsgWatcherReady struct {
	Watch *watcher.Watcher
}

// MsgFileEvent is one debounced disk change forwarded from the watcher.
type MsgFileEvent watcher.Event

// MsgWatchClosed indicates the watcher's stream ended.
type MsgWatchClosed struct{}

// MsgError indicates an error occurred.
type MsgError error

// InitLoadCmd loads all files in the background.
func InitLoadCmd(paths []string) tea.Cmd {
	return func() tea.Msg {
		s, err := session.Load(paths)
		if err != nil {
			return MsgError(err)
		}
		return MsgSessionReady{Session: s}
	}
}

// startWatchCmd starts the fsnotify producer. Failure is non-fatal: the tool
// still works, just without live refresh.
func (m AppModel) startWatchCmd() tea.Cmd {
	return func() tea.Msg {
		w, err := watcher.New(m.Paths, m.Cfg.Debounce())
		if err != nil {
			return MsgError(fmt.Errorf("file watch disabled: %w", err))
		}
		return MsgWatcherReady{Watch: w}
	}
}

// waitEventCmd blocks on the watcher stream for the next event. Re-issued
// after each received event so changes funnel one at a time through Update,
// never interleaving with a user mutation.
func waitEventCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-w.Events()
		if !ok {
			return MsgWatchClosed{}
		}
		return MsgFileEvent(ev)
	}
}

// Update handles events.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WindowSize = msg
		return m, nil

	case MsgSessionReady:
		m.Loading = false
		m.Session = msg.Session
		m.refreshRows()
		return m, m.startWatchCmd()

	case MsgWatcherReady:
		m.watch = msg.Watch
		return m, waitEventCmd(m.watch)

	case MsgWatchClosed:
		return m, nil

	case MsgFileEvent:
		if m.Session == nil {
			return m, waitEventCmd(m.watch)
		}
		switch watcher.Event(msg).Kind {
		case watcher.Updated:
			res, err := m.Session.RefreshFile(msg.Path)
			if err != nil {
				m.StatusMsg = fmt.Sprintf("%s unreadable, column degraded", msg.Path)
			} else if len(res.Flagged) > 0 {
				keys := make([]string, 0, len(res.Flagged))
				for _, ck := range res.Flagged {
					keys = append(keys, ck.Key)
				}
				m.StatusMsg = fmt.Sprintf("%s external edit conflicts with pending: %s",
					model.IconConflict, strings.Join(keys, ", "))
			} else {
				m.StatusMsg = fmt.Sprintf("reloaded %s", msg.Path)
			}
		case watcher.Removed:
			m.Session.FileRemoved(msg.Path)
			m.StatusMsg = fmt.Sprintf("%s removed from disk, column unavailable", msg.Path)
		}
		m.refreshRows()
		return m, waitEventCmd(m.watch)

	case MsgError:
		if m.Session == nil {
			m.Err = msg
			m.Loading = false
		} else {
			m.StatusMsg = msg.Error()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, cmd
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.Mode {
	case ModeSearch:
		switch msg.Type {
		case tea.KeyEnter:
			m.Mode = ModeNormal
			m.InputBuffer.Blur()
			return m, nil
		case tea.KeyEsc:
			m.Mode = ModeNormal
			m.InputBuffer.Blur()
			m.SearchActive = false
			m.InputBuffer.SetValue("")
			m.refreshRows()
			return m, nil
		}
		m.InputBuffer, cmd = m.InputBuffer.Update(msg)
		m.SearchActive = m.InputBuffer.Value() != ""
		m.refreshRows()
		return m, cmd

	case ModeEdit:
		switch msg.Type {
		case tea.KeyEnter:
			m.Mode = ModeNormal
			m.EditBuffer.Blur()
			key := m.EditKey
			m.EditKey = ""
			if m.Session.Set(key, m.SelectedCol, m.EditBuffer.Value()) {
				m.StatusMsg = fmt.Sprintf("staged %s", key)
				m.refreshRows()
				m.moveCursorToKey(key)
			}
			return m, nil
		case tea.KeyEsc:
			m.Mode = ModeNormal
			m.EditBuffer.Blur()
			m.EditKey = ""
			return m, nil
		}
		m.EditBuffer, cmd = m.EditBuffer.Update(msg)
		return m, cmd

	case ModeAddKey:
		switch msg.Type {
		case tea.KeyEnter:
			key := strings.TrimSpace(m.EditBuffer.Value())
			if !envfile.ValidKey(key) {
				m.StatusMsg = fmt.Sprintf("invalid key name %q", key)
				return m, nil
			}
			m.EditKey = key
			m.EditBuffer.SetValue("")
			m.EditBuffer.Placeholder = "Value..."
			m.Mode = ModeEdit
			return m, textinput.Blink
		case tea.KeyEsc:
			m.Mode = ModeNormal
			m.EditBuffer.Blur()
			m.EditKey = ""
			return m, nil
		}
		m.EditBuffer, cmd = m.EditBuffer.Update(msg)
		return m, cmd

	case ModeConfirmQuit:
		switch msg.String() {
		case "y", "Y", "enter":
			return m, m.quit()
		case "n", "N", "esc", "q":
			m.Mode = ModeNormal
			return m, nil
		}
		return m, nil

	case ModeNormal:
		return m.handleNormalKey(msg)
	}

	return m, nil
}

func (m AppModel) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, m.quit()

	case "q":
		if m.Session != nil && m.Session.Dirty() {
			m.Mode = ModeConfirmQuit
			return m, nil
		}
		return m, m.quit()
	}

	if m.Session == nil {
		return m, nil // still loading, only quit keys work
	}

	switch msg.String() {
	case "esc":
		if m.SearchActive {
			m.SearchActive = false
			m.InputBuffer.SetValue("")
			m.refreshRows()
		}
		return m, nil

	case "up", "k":
		if m.SelectedIdx > 0 {
			m.SelectedIdx--
		}
		return m, nil

	case "down", "j":
		if m.SelectedIdx < len(m.FilteredIndices)-1 {
			m.SelectedIdx++
		}
		return m, nil

	case "left", "h":
		if m.SelectedCol > 0 {
			m.SelectedCol--
		}
		return m, nil

	case "right", "l":
		if m.SelectedCol < len(m.Session.Files)-1 {
			m.SelectedCol++
		}
		return m, nil

	case "enter", "e":
		row, ok := m.currentRow()
		if !ok {
			return m, nil
		}
		m.Mode = ModeEdit
		m.EditKey = row.Key
		val := ""
		if m.SelectedCol < len(row.Values) && row.Values[m.SelectedCol].Defined() {
			val = row.Values[m.SelectedCol].Raw()
		}
		m.EditBuffer.Placeholder = "Value..."
		m.EditBuffer.SetValue(val)
		m.EditBuffer.CursorEnd()
		m.EditBuffer.Focus()
		return m, textinput.Blink

	case "a":
		m.Mode = ModeAddKey
		m.EditKey = ""
		m.EditBuffer.Placeholder = "NEW_KEY_NAME"
		m.EditBuffer.SetValue("")
		m.EditBuffer.Focus()
		return m, textinput.Blink

	case "d":
		row, ok := m.currentRow()
		if !ok {
			return m, nil
		}
		if m.Session.Delete(row.Key, m.SelectedCol) {
			m.StatusMsg = fmt.Sprintf("staged delete of %s", row.Key)
			m.refreshRows()
		}
		return m, nil

	case "r":
		row, ok := m.currentRow()
		if !ok {
			return m, nil
		}
		if m.Session.RevertCell(row.Key, m.SelectedCol) {
			m.StatusMsg = fmt.Sprintf("reverted %s", row.Key)
			m.refreshRows()
		}
		return m, nil

	case "R":
		row, ok := m.currentRow()
		if !ok {
			return m, nil
		}
		if m.Session.RevertKey(row.Key) {
			m.StatusMsg = fmt.Sprintf("reverted all changes for %s", row.Key)
			m.refreshRows()
		}
		return m, nil

	case "s":
		row, ok := m.currentRow()
		if !ok {
			return m, nil
		}
		if m.Session.SyncRow(row.Key, m.SelectedCol) {
			m.StatusMsg = fmt.Sprintf("synced %s from %s", row.Key, m.fileName(m.SelectedCol))
			m.refreshRows()
			m.moveCursorToKey(row.Key)
		}
		return m, nil

	case "u":
		if m.Session.Undo() {
			m.StatusMsg = "undo"
			m.refreshRows()
		}
		return m, nil

	case "ctrl+r":
		if m.Session.Redo() {
			m.StatusMsg = "redo"
			m.refreshRows()
		}
		return m, nil

	case "U":
		if m.Session.UndoAll() {
			m.StatusMsg = "all pending changes undone"
			m.refreshRows()
		}
		return m, nil

	case "backspace":
		if m.Session.UndoLast() {
			m.StatusMsg = "last staged change removed"
			m.refreshRows()
		}
		return m, nil

	case "w":
		n := m.Session.Overlay.Len()
		if n == 0 {
			m.StatusMsg = "nothing to save"
			return m, nil
		}
		if err := m.Session.Save(); err != nil {
			m.StatusMsg = fmt.Sprintf("save failed: %v", err)
		} else {
			m.StatusMsg = fmt.Sprintf("saved %d change(s)", n)
		}
		m.refreshRows()
		return m, nil

	case "i":
		m.ShowIdentical = !m.ShowIdentical
		m.refreshRows()
		return m, nil

	case "/":
		m.Mode = ModeSearch
		m.InputBuffer.Focus()
		return m, textinput.Blink
	}

	return m, nil
}

func (m AppModel) quit() tea.Cmd {
	if m.watch != nil {
		_ = m.watch.Close()
	}
	return tea.Quit
}

// refreshRows recomputes effective rows and the visible filtered subset,
// then clamps the cursor.
func (m *AppModel) refreshRows() {
	if m.Session == nil {
		return
	}
	m.Rows = m.Session.Rows()

	term := strings.ToLower(m.InputBuffer.Value())
	m.FilteredIndices = m.FilteredIndices[:0]
	for i, row := range m.Rows {
		if !m.ShowIdentical && row.Status == model.StatusIdentical && !m.rowHasPending(row.Key) {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(row.Key), term) {
			continue
		}
		m.FilteredIndices = append(m.FilteredIndices, i)
	}

	if m.SelectedIdx >= len(m.FilteredIndices) {
		m.SelectedIdx = len(m.FilteredIndices) - 1
	}
	if m.SelectedIdx < 0 {
		m.SelectedIdx = 0
	}
	if m.Session != nil && m.SelectedCol >= len(m.Session.Files) {
		m.SelectedCol = len(m.Session.Files) - 1
	}
	if m.SelectedCol < 0 {
		m.SelectedCol = 0
	}
}

func (m *AppModel) rowHasPending(key string) bool {
	for _, c := range m.Session.Overlay.Changes() {
		if c.Key == key {
			return true
		}
	}
	return false
}

// moveCursorToKey keeps the cursor on a key after the rows resort.
func (m *AppModel) moveCursorToKey(key string) {
	for pos, idx := range m.FilteredIndices {
		if m.Rows[idx].Key == key {
			m.SelectedIdx = pos
			return
		}
	}
}

func (m AppModel) currentRow() (model.DiffRow, bool) {
	if m.Session == nil || m.SelectedIdx >= len(m.FilteredIndices) {
		return model.DiffRow{}, false
	}
	return m.Rows[m.FilteredIndices[m.SelectedIdx]], true
}

func (m AppModel) fileName(i int) string {
	if m.Session == nil || i < 0 || i >= len(m.Session.Files) {
		return "?"
	}
	return m.Session.Files[i].Name
}
