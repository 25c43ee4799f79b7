package doctor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

// Render formats the findings for the terminal.
func Render(statuses []Status) string {
	// Plain marks when the terminal can't do color.
	color := termenv.DefaultOutput().Profile != termenv.Ascii

	var b strings.Builder
	b.WriteString("voxpaste doctor\n\n")

	for _, s := range statuses {
		mark, style := "[x]", okStyle
		switch {
		case s.OK:
		case s.Optional:
			mark, style = "[-]", warnStyle
		default:
			mark, style = "[ ]", failStyle
		}

		if color {
			mark = style.Render(mark)
		}
		line := fmt.Sprintf("%s %-18s", mark, s.Name)
		if s.Detail != "" {
			detail := s.Detail
			if color {
				detail = dimStyle.Render(detail)
			}
			line += " " + detail
		}
		b.WriteString(line + "\n")
	}

	return b.String()
}
