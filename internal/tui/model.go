package tui

import (
	"lstree/internal/model"
	"lstree/internal/walk"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// AppModel holds the TUI state.
type AppModel struct {
	// Data
	Root     string
	Walker   *walk.Walker
	Listings []model.Listing
	Summary  model.Summary
	Loading  bool
	Err      error

	// UI State
	SelectedIdx int // Index into FilteredIndices
	WindowSize  tea.WindowSizeMsg

	// View Modes
	ShowHelp   bool
	ShowReport bool
	ReportText string
	ReportTop  int // First visible report line

	// Search State
	InputMode       bool
	InputBuffer     textinput.Model
	FilteredIndices []int          // Indices of Listings to show
	SearchMatches   map[int]string // Map of Listing Index -> first matching file name
	SearchActive    bool

	// Components
	FilesViewport viewport.Model
}

// InitialModel returns the initial state for browsing the tree walked by w.
func InitialModel(root string, w *walk.Walker) AppModel {
	ti := textinput.New()
	ti.Placeholder = "File name..."
	ti.CharLimit = 64
	ti.Width = 24

	return AppModel{
		Root:          root,
		Walker:        w,
		Loading:       true,
		InputBuffer:   ti,
		SearchMatches: map[int]string{},
		FilesViewport: viewport.New(40, 10),
	}
}

// Selected returns the listing under the cursor.
func (m AppModel) Selected() (model.Listing, bool) {
	if m.SelectedIdx < 0 || m.SelectedIdx >= len(m.FilteredIndices) {
		return model.Listing{}, false
	}
	return m.Listings[m.FilteredIndices[m.SelectedIdx]], true
}
