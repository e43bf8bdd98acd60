package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

// Painter colours status labels when its output is a terminal.
type Painter struct {
	enabled bool
}

// NewPainter enables colour only when out is a terminal.
func NewPainter(out io.Writer) Painter {
	f, ok := out.(*os.File)
	return Painter{enabled: ok && term.IsTerminal(int(f.Fd()))}
}

// Status renders a status label. Unknown labels are returned unchanged.
func (p Painter) Status(s string) string {
	if !p.enabled {
		return s
	}
	switch s {
	case "staged", "loaded", "ok", "stage", "load":
		return okStyle.Render(s)
	case "present", "no-manifest", "skipped":
		return dimStyle.Render(s)
	case "missing":
		return warnStyle.Render(s)
	case "failed", "malformed":
		return errStyle.Render(s)
	default:
		return s
	}
}
