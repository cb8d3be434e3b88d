package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/user/clipedit-cli/editor"
	"github.com/user/clipedit-cli/tui/styles"
)

// Control is one key binding shown in the side panel.
type Control struct {
	Name     string
	Shortcut string
}

// ControlGroup is a titled set of controls. Sub-groups are separated by
// dividers when rendered.
type ControlGroup struct {
	Name      string
	SubGroups [][]Control
}

// ControlGroups returns the bindings relevant to mode.
func ControlGroups(mode editor.Mode) []ControlGroup {
	playback := ControlGroup{
		Name: "Playback",
		SubGroups: [][]Control{
			{
				{Name: "Play", Shortcut: "Space"},
				{Name: "Back", Shortcut: "h / ←"},
				{Name: "Fwd", Shortcut: "l / →"},
			},
			{
				{Name: "Step -", Shortcut: "<"},
				{Name: "Step +", Shortcut: ">"},
				{Name: "Speed", Shortcut: "s"},
			},
		},
	}

	var edit ControlGroup
	switch mode {
	case editor.ModeTrimming:
		edit = ControlGroup{
			Name: "Trim",
			SubGroups: [][]Control{
				{
					{Name: "Set start", Shortcut: "["},
					{Name: "Set end", Shortcut: "]"},
					{Name: "Apply", Shortcut: "t / Enter"},
					{Name: "Discard", Shortcut: "x"},
				},
			},
		}
	case editor.ModeCropping:
		edit = ControlGroup{
			Name: "Crop",
			SubGroups: [][]Control{
				{
					{Name: "Move", Shortcut: "Arrows"},
					{Name: "Drag", Shortcut: "Mouse"},
					{Name: "Presets", Shortcut: "1 2 3"},
					{Name: "Numeric", Shortcut: "e"},
				},
				{
					{Name: "Apply", Shortcut: "c / Enter"},
					{Name: "Discard", Shortcut: "x"},
				},
			},
		}
	default:
		edit = ControlGroup{
			Name: "Edit",
			SubGroups: [][]Control{
				{
					{Name: "Trim", Shortcut: "t"},
					{Name: "Crop", Shortcut: "c"},
					{Name: "Reset trim", Shortcut: "R"},
				},
				{
					{Name: "Split", Shortcut: "/"},
					{Name: "Duplicate", Shortcut: "d"},
					{Name: "Delete", Shortcut: "Del"},
				},
			},
		}
	}

	clipGroup := ControlGroup{
		Name: "Clip",
		SubGroups: [][]Control{
			{
				{Name: "Save", Shortcut: "Ctrl+S"},
				{Name: "Command", Shortcut: ":"},
				{Name: "Help", Shortcut: "?"},
				{Name: "Close", Shortcut: "Esc / q"},
			},
		},
	}
	return []ControlGroup{playback, edit, clipGroup}
}

// RenderInfoBox renders a bordered box with a tab-style header. Content
// lines are used as-is and padded to the box.
//
//	╭─ Title ─────╮
//	│content      │
//	╰─────────────╯
func RenderInfoBox(title string, contentLines []string, width int) string {
	return renderBox(title, contentLines, nil, width)
}

// renderBox draws the box of RenderInfoBox with a divider after each
// content line index in dividers.
func renderBox(title string, contentLines []string, dividers map[int]bool, width int) string {
	if width < 4 {
		return ""
	}
	inner := width - 2

	if maxTitle := max(0, inner-3); lipgloss.Width(title) > maxTitle {
		title = ansi.Truncate(title, maxTitle, "…")
	}
	header := styles.Header.Render(" " + title + " ")
	fill := inner - 1 - lipgloss.Width(header)
	if fill < 0 {
		fill = 0
	}

	lines := make([]string, 0, len(contentLines)+len(dividers)+2)
	lines = append(lines, styles.BorderLine.Render("╭─")+header+styles.BorderLine.Render(strings.Repeat("─", fill)+"╮"))
	side := styles.BorderLine.Render("│")
	divider := styles.BorderLine.Render("├" + strings.Repeat("─", inner) + "┤")
	for i, line := range contentLines {
		w := lipgloss.Width(line)
		if w > inner {
			line = ansi.Truncate(line, inner, "")
			w = lipgloss.Width(line)
		}
		lines = append(lines, side+line+strings.Repeat(" ", inner-w)+side)
		if dividers[i] && i < len(contentLines)-1 {
			lines = append(lines, divider)
		}
	}
	lines = append(lines, styles.BorderLine.Render("╰"+strings.Repeat("─", inner)+"╯"))
	return strings.Join(lines, "\n")
}

// RenderControlBox renders a control group with dividers between
// sub-groups:
//
//	╭─ Playback ──────────╮
//	│ Play   [ Space ]    │
//	├─────────────────────┤
//	│ Step - [ < ]        │
//	╰─────────────────────╯
func RenderControlBox(group ControlGroup, width int) string {
	nameW := 0
	for _, sg := range group.SubGroups {
		for _, c := range sg {
			nameW = max(nameW, lipgloss.Width(c.Name))
		}
	}

	var rows []string
	dividers := make(map[int]bool)
	for _, sg := range group.SubGroups {
		for _, c := range sg {
			rows = append(rows, " "+styles.PrimaryText.Render(fmt.Sprintf("%-*s", nameW, c.Name))+
				"  "+styles.Shortcut.Render("[ "+c.Shortcut+" ]"))
		}
		dividers[len(rows)-1] = true
	}
	return renderBox(group.Name, rows, dividers, width)
}

// ControlsDisplay renders every control of mode on one centred line, for
// layouts without the side panel.
func ControlsDisplay(mode editor.Mode, width int) string {
	var groups []string
	for _, g := range ControlGroups(mode) {
		var parts []string
		for _, sg := range g.SubGroups {
			for _, c := range sg {
				parts = append(parts, styles.PrimaryText.Render(c.Name)+" "+styles.Shortcut.Render("["+c.Shortcut+"]"))
			}
		}
		groups = append(groups, strings.Join(parts, "  "))
	}
	line := strings.Join(groups, "   ")
	if lipgloss.Width(line) > width {
		line = ansi.Truncate(line, width, "…")
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, line)
}
