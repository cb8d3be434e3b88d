// Package components provides the rendering pieces of the editor.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/clipedit-cli/editor"
	"github.com/user/clipedit-cli/pkg/crop"
	"github.com/user/clipedit-cli/pkg/timeutil"
	"github.com/user/clipedit-cli/tui/layout"
	"github.com/user/clipedit-cli/tui/styles"
)

// StatusBarState is what the top bar shows.
type StatusBarState struct {
	Title     string
	Mode      editor.Mode
	Playing   bool
	Position  float64
	Duration  float64
	Rate      float64
	StepSize  float64
	Saving    bool
	Connected bool
	// Crop is the committed crop, nil when uncropped.
	Crop      *crop.Rect
}

// StatusBar renders the one-line bar at the top of the editor: mode badge,
// transport and time on the left, rate and step on the right.
func StatusBar(state StatusBarState, width int) string {
	playIcon := "⏸"
	if state.Playing {
		playIcon = "▶"
	}

	left := fmt.Sprintf("%s %s %s / %s  %s",
		ModeBadge(state.Mode),
		playIcon,
		timeutil.FormatPrecise(state.Position),
		timeutil.FormatPrecise(state.Duration),
		layout.Ellipsize(state.Title, 32))

	right := fmt.Sprintf("Speed: %s  Step: %s ", FormatRate(state.Rate), FormatStepSize(state.StepSize))
	if state.Saving {
		right = styles.Success.Render("Saving… ") + right
	}
	if !state.Connected {
		right = styles.Warning.Render("! no player ") + right
	}

	pad := width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	content := " " + left + fmt.Sprintf("%*s", pad-1, "") + right

	return lipgloss.NewStyle().
		Background(styles.DarkPurple).
		Foreground(styles.LightLavender).
		Bold(true).
		Width(width).
		MaxWidth(width).
		Render(content)
}

// ModeBadge renders the editing mode as a coloured tag.
func ModeBadge(m editor.Mode) string {
	switch m {
	case editor.ModeTrimming:
		return styles.ModeTrim.Render(m.String())
	case editor.ModeCropping:
		return styles.ModeCrop.Render(m.String())
	}
	return styles.ModeNormal.Render(m.String())
}

// FormatRate formats a playback rate as "1x", "0.5x", "1.25x".
func FormatRate(rate float64) string {
	if rate <= 0 {
		rate = 1
	}
	return fmt.Sprintf("%gx", rate)
}

// FormatStepSize shows a decimal for steps under a second.
func FormatStepSize(stepSize float64) string {
	if stepSize < 1 {
		return fmt.Sprintf("%.1fs", stepSize)
	}
	return fmt.Sprintf("%.0fs", stepSize)
}
