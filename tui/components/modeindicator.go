package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/clipedit-cli/editor"
	"github.com/user/clipedit-cli/tui/styles"
)

// ModeIndicator renders the editing mode with a one-line hint of what the
// mode is editing.
func ModeIndicator(mode editor.Mode, detail string, width int) string {
	left := " " + ModeBadge(mode)
	right := styles.SecondaryText.Render(detail + " ")

	pad := width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	return RenderInfoBox("Mode", []string{left + strings.Repeat(" ", pad) + right}, width)
}
