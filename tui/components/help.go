package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/clipedit-cli/tui/styles"
)

type binding struct {
	key  string
	desc string
}

type bindingGroup struct {
	title    string
	bindings []binding
}

var helpGroups = []bindingGroup{
	{
		title: "Playback",
		bindings: []binding{
			{"Space", "Toggle play/pause (restarts at the end)"},
			{"h / ←", "Step backward (by step size)"},
			{"l / →", "Step forward (by step size)"},
			{"< / >", "Decrease / increase step size"},
			{"s", "Cycle playback speed"},
			{"Mouse", "Click or drag the timeline to seek"},
		},
	},
	{
		title: "Trim",
		bindings: []binding{
			{"t", "Start trimming / apply trim"},
			{"[ / ]", "Set trim start / end at the playhead"},
			{"Mouse", "Drag near a marker to move it"},
			{"R", "Reset trim to the whole source"},
		},
	},
	{
		title: "Crop",
		bindings: []binding{
			{"c", "Start cropping / apply crop"},
			{"Mouse", "Drag the box, an edge or a corner"},
			{"Arrows", "Move the crop box"},
			{"1 2 3", "Full, 80% and 90% presets"},
			{"e", "Edit crop values"},
		},
	},
	{
		title: "Clip",
		bindings: []binding{
			{"/", "Split at the playhead"},
			{"d", "Duplicate"},
			{"Delete", "Delete the clip"},
			{"Ctrl+S", "Save"},
			{"x", "Discard the pending edit"},
			{":", "Enter command mode"},
			{"Esc / q", "Close, keeping speed"},
		},
	},
}

// HelpOverlay renders the keybinding reference centred in a width x height
// area.
func HelpOverlay(width, height int) string {
	titleStyle := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true).Padding(0, 1)
	groupStyle := styles.Header.MarginTop(1)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Lavender).Bold(true).Width(10)

	lines := []string{titleStyle.Render("Keybindings")}
	for _, g := range helpGroups {
		lines = append(lines, groupStyle.Render(g.title))
		for _, b := range g.bindings {
			lines = append(lines, "  "+keyStyle.Render(b.key)+styles.PrimaryText.Render(b.desc))
		}
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(styles.Lavender).Italic(true).Render("Press any key to close"))

	panel := lipgloss.NewStyle().
		Background(styles.DarkPurple).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BrightPurple).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, panel)
}
