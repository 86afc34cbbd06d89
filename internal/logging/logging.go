// Package logging holds the process-wide debug logger. Nothing is written
// until a logger is bound.
package logging

import (
	"fmt"
	"log"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var prefixStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")).
	Bold(true)

var (
	mu     sync.RWMutex
	std    *log.Logger
	styled bool
)

// Bind sets the underlying standard logger to use for Logf. Prefixes are
// rendered with lipgloss only when color is true.
func Bind(l *log.Logger, color bool) {
	mu.Lock()
	std = l
	styled = color
	mu.Unlock()
}

// Enabled reports whether a logger is bound.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return std != nil
}

// Logf prints a formatted message with a module prefix, e.g. Logf("walk", ...).
func Logf(prefix, format string, args ...any) {
	mu.RLock()
	l, color := std, styled
	mu.RUnlock()
	if l == nil {
		return
	}
	tag := "[" + prefix + "] "
	if color {
		tag = prefixStyle.Render("["+prefix+"]") + " "
	}
	l.Print(tag + fmt.Sprintf(format, args...))
}
