package layout

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/clipedit-cli/tui/styles"
)

// Responsive layout constants.
const (
	MinTerminalWidth  = 60 // below this only the mini player is shown
	PanelHideWidth    = 90 // below this the side panel is hidden
	PanelMinWidth     = 28
	PanelMaxWidth     = 40
	MinTerminalHeight = 16
)

// ComputeColumnWidths splits the terminal between the preview column and the
// side panel. The panel takes a third of the width within its bounds; below
// PanelHideWidth the preview gets everything.
func ComputeColumnWidths(termWidth int) (preview, panel int, showPanel bool) {
	if termWidth < PanelHideWidth {
		return termWidth, 0, false
	}
	usable := termWidth - 1 // one border column
	panel = usable / 3
	panel = max(PanelMinWidth, min(panel, PanelMaxWidth))
	return usable - panel, panel, true
}

// JoinColumns joins pre-rendered column strings side by side with border
// separators. Each column is normalized to height and padded to its width.
func JoinColumns(columns []string, widths []int, height int) string {
	border := styles.BorderLine.Render("│")

	colLines := make([][]string, len(columns))
	for i, col := range columns {
		colLines[i] = NormalizeLines(strings.Split(col, "\n"), height)
	}

	rows := make([]string, 0, height)
	for row := 0; row < height; row++ {
		parts := make([]string, len(colLines))
		for i, lines := range colLines {
			parts[i] = PadToWidth(lines[row], widths[i])
		}
		rows = append(rows, strings.Join(parts, border))
	}
	return strings.Join(rows, "\n")
}

// Center places block in the middle of a width x height area.
func Center(block string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, block)
}
