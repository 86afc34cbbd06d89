package tui

import (
	"fmt"
	"path"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lstree/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")). // Orange
			Bold(true)

	pathHighlightStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("81")). // Sky Blue/Cyan
				Bold(true)

	activeColor = lipgloss.Color("205")
	borderColor = lipgloss.Color("63")
)

const helpText = `lstree keys

  j / down     next directory
  k / up       previous directory
  g / G        first / last directory
  pgdn / pgup  scroll the file pane
  /            filter by file name prefix or path
  enter        keep the filter
  esc          clear filter / close popup
  r            summary report
  ?            this help
  q            quit`

func (m AppModel) View() string {
	if m.Loading {
		return fmt.Sprintf("\n  Walking %s... please wait.\n", m.Root)
	}
	if m.Err != nil {
		return fmt.Sprintf("\n  Error: %v\n", m.Err)
	}
	if m.ShowHelp {
		return m.renderPopup(helpText, 0, borderColor)
	}
	if m.ShowReport {
		return m.renderPopup(m.ReportText, m.ReportTop, lipgloss.Color("208"))
	}

	width := m.WindowSize.Width
	height := m.WindowSize.Height

	netWidth := width - 6
	if netWidth < 20 {
		netWidth = 20
	}
	leftWidth := netWidth / 2
	rightWidth := netWidth - leftWidth

	boxHeight := height - 6
	if boxHeight < 6 {
		boxHeight = 6
	}
	interiorHeight := boxHeight - 2

	// LEFT PANEL: directories
	var leftView strings.Builder
	leftView.WriteString(titleStyle.Render("Directories"))
	leftView.WriteString("\n\n")

	visibleItems := interiorHeight - 2
	if visibleItems < 1 {
		visibleItems = 1
	}
	startIdx, endIdx := window(len(m.FilteredIndices), m.SelectedIdx, visibleItems)

	for i := startIdx; i < endIdx; i++ {
		idx := m.FilteredIndices[i]
		l := m.Listings[idx]

		name := path.Base(l.Name)
		if l.Name == "." {
			name = l.Path
		}
		line := fmt.Sprintf("%s%s %s (%d)", strings.Repeat("  ", l.Depth), model.DirIcon(l), name, len(l.Files))
		if match, ok := m.SearchMatches[idx]; ok {
			line += " → " + match
		}
		if len(line) > leftWidth-2 && leftWidth > 5 {
			line = line[:leftWidth-5] + "..."
		}

		style := normalStyle
		if i == m.SelectedIdx {
			style = selectedStyle
		}
		leftView.WriteString(style.Render(line))
		leftView.WriteString("\n")
	}
	if len(m.FilteredIndices) == 0 {
		leftView.WriteString(dimStyle.Render("(no matches)"))
	}

	left := lipgloss.NewStyle().
		Width(leftWidth).
		Height(interiorHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(activeColor).
		Render(strings.TrimSuffix(leftView.String(), "\n"))

	// RIGHT PANEL: files of the selected directory
	var rightView strings.Builder
	if l, ok := m.Selected(); ok {
		rightView.WriteString(pathHighlightStyle.Render(l.Path))
	}
	rightView.WriteString("\n\n")
	rightView.WriteString(m.FilesViewport.View())

	right := lipgloss.NewStyle().
		Width(rightWidth).
		Height(interiorHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(borderColor).
		Render(rightView.String())

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right) + "\n" + m.footer()
}

func (m AppModel) footer() string {
	if m.InputMode {
		return " Filter: " + m.InputBuffer.View()
	}
	status := fmt.Sprintf(" %d dirs · %d files · depth %d", m.Summary.Dirs, m.Summary.Files, m.Summary.MaxDepth)
	if m.SearchActive {
		status += fmt.Sprintf(" · filter %q: %d", m.InputBuffer.Value(), len(m.FilteredIndices))
	}
	return dimStyle.Render(status + "  (? help, / filter, r report, q quit)")
}

// renderFiles lists a directory's entries for the file pane.
func renderFiles(l model.Listing, match string) string {
	var b strings.Builder
	for _, d := range l.Dirs {
		b.WriteString(dimStyle.Render(model.IconDir + " " + d + "/"))
		b.WriteString("\n")
	}
	for _, f := range l.Files {
		if f == match {
			b.WriteString(matchStyle.Render(model.IconFile + " " + f))
		} else {
			b.WriteString(normalStyle.Render(model.IconFile + " " + f))
		}
		b.WriteString("\n")
	}
	if len(l.Dirs) == 0 && len(l.Files) == 0 {
		b.WriteString(dimStyle.Render(model.IconEmpty + " empty"))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// window returns the [start, end) slice of n rows to show with selected
// kept near the middle.
func window(n, selected, visible int) (int, int) {
	if n <= visible {
		return 0, n
	}
	start := selected - visible/2
	if start < 0 {
		start = 0
	}
	if start+visible > n {
		start = n - visible
	}
	return start, start + visible
}

func (m AppModel) renderPopup(text string, top int, border lipgloss.Color) string {
	w, h := m.WindowSize.Width, m.WindowSize.Height
	if w < 20 || h < 10 {
		return "Window too small"
	}

	popupWidth := w * 80 / 100
	if popupWidth < 40 {
		popupWidth = 40
	}
	if popupWidth > w-4 {
		popupWidth = w - 4
	}
	popupHeight := h - 6
	if popupHeight < 5 {
		popupHeight = 5
	}

	lines := strings.Split(text, "\n")
	contentHeight := popupHeight - 2

	startY := top
	if startY > len(lines)-contentHeight {
		startY = len(lines) - contentHeight
	}
	if startY < 0 {
		startY = 0
	}
	endY := startY + contentHeight
	if endY > len(lines) {
		endY = len(lines)
	}

	dialog := lipgloss.NewStyle().
		Width(popupWidth).
		Height(popupHeight).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Render(strings.Join(lines[startY:endY], "\n"))

	return lipgloss.Place(w, h,
		lipgloss.Center, lipgloss.Center,
		dialog,
	)
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, WalkCmd(m.Walker))
}
