package layout

import (
	"strings"

	"github.com/user/clipedit-cli/tui/styles"
)

// Container wraps content into an exact Width x Height bounding box. Lines
// are truncated or padded to Width and the line count to Height. Content cut
// off at the bottom is marked on the last visible line.
type Container struct {
	Width  int
	Height int
}

// Render returns content constrained to exactly Width columns and Height lines.
func (c Container) Render(content string) string {
	if c.Height <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	if len(lines) > c.Height {
		lines = lines[:c.Height]
		lines[c.Height-1] = styles.SecondaryText.Render("↓ more")
	}
	lines = NormalizeLines(lines, c.Height)
	for i, line := range lines {
		lines[i] = PadToWidth(line, c.Width)
	}
	return strings.Join(lines, "\n")
}
