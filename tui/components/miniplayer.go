package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/clipedit-cli/editor"
	"github.com/user/clipedit-cli/pkg/timeutil"
	"github.com/user/clipedit-cli/tui/styles"
)

// RenderMiniPlayer renders a compact playback card for terminals too narrow
// for the preview. When fixedWidth > 0 the card uses that width instead of
// auto-sizing.
func RenderMiniPlayer(state StatusBarState, fixedWidth int) string {
	playIcon := "⏸"
	if state.Playing {
		playIcon = "▶"
	}

	lines := []string{
		styles.PrimaryText.Render(fmt.Sprintf(" %s  Step: %s  Speed: %s", playIcon, FormatStepSize(state.StepSize), FormatRate(state.Rate))),
		styles.PrimaryText.Render(fmt.Sprintf(" %s / %s", timeutil.FormatPrecise(state.Position), timeutil.FormatPrecise(state.Duration))),
	}
	if state.Crop != nil && !state.Crop.IsFull() {
		lines = append(lines, styles.PrimaryText.Render(" "+CropSummary(*state.Crop)))
	}
	if state.Mode != editor.ModeNormal {
		lines = append(lines, " "+ModeBadge(state.Mode))
	}
	if !state.Connected {
		lines = append(lines, styles.Warning.Render(" ! Not connected"))
	}

	width := fixedWidth
	if width <= 0 {
		for _, l := range lines {
			width = max(width, lipgloss.Width(l))
		}
		width += 4
	}
	return RenderInfoBox("Playback", lines, width)
}
