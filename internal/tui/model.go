package tui

import (
	"envdiff/internal/config"
	"envdiff/internal/model"
	"envdiff/internal/session"
	"envdiff/internal/watcher"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Mode is the input mode the TUI is in. Every dispatch site switches
// exhaustively over it.
type Mode int

const (
	ModeNormal      Mode = iota
	ModeSearch           // typing into the filter box
	ModeEdit             // editing one cell's value
	ModeAddKey           // typing the name of a brand-new key
	ModeConfirmQuit      // unsaved changes, asking before exit
)

// AppModel holds the TUI state.
type AppModel struct {
	// Data
	Paths   []string
	Cfg     config.Config
	Session *session.Session
	Rows    []model.DiffRow
	Loading bool
	Err     error

	// UI State
	Mode        Mode
	SelectedIdx int // cursor over FilteredIndices
	SelectedCol int // cursor over file columns
	WindowSize  tea.WindowSizeMsg
	StatusMsg   string

	// Display toggles
	ShowIdentical bool

	// Search State
	InputBuffer     textinput.Model
	FilteredIndices []int // Indices into Rows to show
	SearchActive    bool

	// Edit State
	EditBuffer textinput.Model
	EditKey    string // Key being edited, or the typed name in ModeAddKey

	watch *watcher.Watcher
}

// InitialModel returns the initial state for the given env file paths.
func InitialModel(paths []string, cfg config.Config) AppModel {
	ti := textinput.New()
	ti.Placeholder = "Filter keys..."
	ti.CharLimit = 80
	ti.Width = 24

	ed := textinput.New()
	ed.Placeholder = "Value..."
	ed.CharLimit = 512
	ed.Width = 40

	return AppModel{
		Paths:         paths,
		Cfg:           cfg,
		Loading:       true,
		InputBuffer:   ti,
		EditBuffer:    ed,
		ShowIdentical: cfg.ShowIdentical,
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, InitLoadCmd(m.Paths))
}
