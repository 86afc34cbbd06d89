package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"lstree/internal/lister"
	"lstree/internal/model"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Options control report rendering.
type Options struct {
	Verbose bool // List every file name under its directory
	Color   bool // Style headings with lipgloss (terminal output only)
}

// Generate renders a diagnostic text report over listings.
func Generate(root string, listings []model.Listing, opts Options) string {
	style := func(s lipgloss.Style, text string) string {
		if !opts.Color {
			return text
		}
		return s.Render(text)
	}

	sum := model.Summarize(listings)
	var b strings.Builder

	b.WriteString(style(headingStyle, "lstree report"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Root:        %s\n", root)
	fmt.Fprintf(&b, "Version:     %s\n", model.Version)
	fmt.Fprintf(&b, "Directories: %d\n", sum.Dirs)
	fmt.Fprintf(&b, "Files:       %d\n", sum.Files)
	fmt.Fprintf(&b, "Max depth:   %d %s\n", sum.MaxDepth, model.IconDeepest)
	fmt.Fprintf(&b, "Empty dirs:  %d\n", sum.EmptyDirs)
	if sum.Dirs > 0 {
		fmt.Fprintf(&b, "Busiest:     %s (%d files)\n", sum.BusiestDir, sum.BusiestSize)
	}

	b.WriteString("\n")
	b.WriteString(style(headingStyle, "Directories"))
	b.WriteString("\n")
	for _, l := range listings {
		indent := strings.Repeat("  ", l.Depth)
		fmt.Fprintf(&b, "%s%s %s %s\n", indent, model.DirIcon(l), style(pathStyle, l.Path),
			style(dimStyle, fmt.Sprintf("[%d dirs, %d files]", len(l.Dirs), len(l.Files))))
		if opts.Verbose {
			names, err := lister.FormatNames(l.Files)
			if err != nil {
				names = fmt.Sprintf("<%v>", err)
			}
			fmt.Fprintf(&b, "%s    %s\n", indent, names)
		}
	}
	return b.String()
}
