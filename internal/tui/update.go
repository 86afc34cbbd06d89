package tui

import (
	"context"
	"strings"

	"lstree/internal/logging"
	"lstree/internal/model"
	"lstree/internal/report"
	"lstree/internal/walk"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// MsgWalkReady indicates that the walk has completed.
type MsgWalkReady []model.Listing

// MsgError indicates an error occurred.
type MsgError error

// Update handles events.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WindowSize = msg
		m.FilesViewport.Width = msg.Width / 2
		m.FilesViewport.Height = msg.Height - 8 // borders, title, footer
		if m.FilesViewport.Height < 1 {
			m.FilesViewport.Height = 1
		}
		m.syncFiles()
		return m, nil

	case MsgWalkReady:
		m.Loading = false
		m.Listings = []model.Listing(msg)
		m.Summary = model.Summarize(m.Listings)
		m.resetFilter()
		m.SelectedIdx = 0
		m.syncFiles()
		return m, nil

	case MsgError:
		m.Err = msg
		m.Loading = false
		return m, nil

	case tea.KeyMsg:
		if m.InputMode {
			switch msg.Type {
			case tea.KeyEnter:
				// keep the filter active after leaving input mode
				m.InputMode = false
				m.InputBuffer.Blur()
				m.performSearch()
				return m, nil
			case tea.KeyEsc:
				m.clearSearch()
				return m, nil
			}
			m.InputBuffer, cmd = m.InputBuffer.Update(msg)
			return m, cmd
		}

		if m.ShowReport {
			switch msg.String() {
			case "up", "k":
				if m.ReportTop > 0 {
					m.ReportTop--
				}
				return m, nil
			case "down", "j":
				m.ReportTop++
				return m, nil
			}
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			switch {
			case m.ShowHelp:
				m.ShowHelp = false
			case m.ShowReport:
				m.ShowReport = false
			case m.SearchActive:
				m.clearSearch()
			}
			return m, nil
		case "?":
			m.ShowHelp = !m.ShowHelp
			m.ShowReport = false
		case "r":
			m.ShowReport = !m.ShowReport
			m.ShowHelp = false
			if m.ShowReport {
				m.ReportText = report.Generate(m.Root, m.Listings, report.Options{Verbose: true})
				m.ReportTop = 0
			}
		case "up", "k":
			if m.SelectedIdx > 0 {
				m.SelectedIdx--
				m.syncFiles()
			}
		case "down", "j":
			if m.SelectedIdx < len(m.FilteredIndices)-1 {
				m.SelectedIdx++
				m.syncFiles()
			}
		case "home", "g":
			m.SelectedIdx = 0
			m.syncFiles()
		case "end", "G":
			if len(m.FilteredIndices) > 0 {
				m.SelectedIdx = len(m.FilteredIndices) - 1
				m.syncFiles()
			}
		case "pgdown", "ctrl+d":
			m.FilesViewport.SetYOffset(m.FilesViewport.YOffset + m.FilesViewport.Height/2)
		case "pgup", "ctrl+u":
			m.FilesViewport.SetYOffset(m.FilesViewport.YOffset - m.FilesViewport.Height/2)
		case "/":
			m.InputMode = true
			m.InputBuffer.SetValue("")
			cmd = m.InputBuffer.Focus()
			return m, tea.Batch(cmd, textinput.Blink)
		}
	}

	return m, cmd
}

func (m *AppModel) clearSearch() {
	m.InputMode = false
	m.InputBuffer.Blur()
	m.InputBuffer.SetValue("")
	m.performSearch()
}

func (m *AppModel) resetFilter() {
	m.SearchActive = false
	m.SearchMatches = map[int]string{}
	m.FilteredIndices = make([]int, len(m.Listings))
	for i := range m.Listings {
		m.FilteredIndices[i] = i
	}
}

// performSearch keeps directories holding a file whose name starts with the
// search term, or whose path contains it.
func (m *AppModel) performSearch() {
	term := strings.ToLower(strings.TrimSpace(m.InputBuffer.Value()))
	if term == "" {
		m.resetFilter()
	} else {
		m.SearchActive = true
		m.SearchMatches = map[int]string{}
		var result []int
		for i, l := range m.Listings {
			matched := ""
			for _, name := range l.Files {
				if strings.HasPrefix(strings.ToLower(name), term) {
					matched = name
					break
				}
			}
			if matched != "" {
				m.SearchMatches[i] = matched
				result = append(result, i)
			} else if strings.Contains(strings.ToLower(l.Path), term) {
				result = append(result, i)
			}
		}
		m.FilteredIndices = result
	}

	// Bounds check
	if m.SelectedIdx >= len(m.FilteredIndices) {
		if len(m.FilteredIndices) > 0 {
			m.SelectedIdx = len(m.FilteredIndices) - 1
		} else {
			m.SelectedIdx = 0
		}
	}
	m.syncFiles()
}

// syncFiles loads the selected directory's entries into the right pane.
func (m *AppModel) syncFiles() {
	l, ok := m.Selected()
	if !ok {
		m.FilesViewport.SetContent("")
		return
	}
	m.FilesViewport.SetContent(renderFiles(l, m.SearchMatches[m.FilteredIndices[m.SelectedIdx]]))
	m.FilesViewport.GotoTop()
}

// WalkCmd runs the walk in the background.
func WalkCmd(w *walk.Walker) tea.Cmd {
	return func() tea.Msg {
		listings, err := walk.Collect(context.Background(), w)
		if err != nil {
			logging.Logf("tui", "walk failed: %v", err)
			return MsgError(err)
		}
		return MsgWalkReady(listings)
	}
}
