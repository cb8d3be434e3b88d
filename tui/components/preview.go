package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/user/clipedit-cli/editor"
	"github.com/user/clipedit-cli/pkg/crop"
	"github.com/user/clipedit-cli/pkg/timeutil"
	"github.com/user/clipedit-cli/tui/styles"
)

// PreviewZoneID marks the frame area for pointer hit testing.
const PreviewZoneID = "preview-frame"

// PreviewState is what the frame area shows.
type PreviewState struct {
	Mode     editor.Mode
	Playing  bool
	Position float64
	// Crop is the rect to outline: the pending crop while cropping, else the
	// committed one.
	Crop       crop.Rect
	DragHandle crop.Handle
	Notice     string
}

// PreviewGrid returns the frame cell grid inside a preview box of the given
// size. Crop geometry uses one unit per cell step, so a frame of n columns
// is n-1 units wide.
func PreviewGrid(width, height int) (cols, rows int) {
	return max(0, width-2), max(0, height-2)
}

// GridGeometry returns the crop geometry of a cols x rows grid.
func GridGeometry(cols, rows int) crop.Geometry {
	return crop.NewGeometry(float64(cols-1), float64(rows-1))
}

type cell struct {
	ch    string
	style lipgloss.Style
}

// Preview renders the schematic frame. While cropping the pending crop is
// drawn with its handles and the area outside it is shaded; otherwise a
// committed crop is outlined and the transport state is shown.
func Preview(state PreviewState, width, height int) string {
	cols, rows := PreviewGrid(width, height)
	if cols < 3 || rows < 3 {
		return RenderInfoBox("Preview", nil, width)
	}

	grid := make([][]cell, rows)
	for y := range grid {
		grid[y] = make([]cell, cols)
		for x := range grid[y] {
			grid[y][x] = cell{" ", styles.CropInside}
		}
	}

	g := GridGeometry(cols, rows)
	box, _ := g.ToPixels(state.Crop)
	l, t := gridIndex(box.Left, cols), gridIndex(box.Top, rows)
	r, b := gridIndex(box.Left+box.Width, cols), gridIndex(box.Top+box.Height, rows)

	cropping := state.Mode == editor.ModeCropping
	if cropping {
		for y := range grid {
			for x := range grid[y] {
				if x < l || x > r || y < t || y > b {
					grid[y][x] = cell{"·", styles.CropOutside}
				}
			}
		}
	}
	if cropping || !state.Crop.IsFull() {
		drawBox(grid, l, t, r, b, cropping, state.DragHandle)
	}

	lines := make([]string, rows)
	for y, row := range grid {
		var sb strings.Builder
		for _, c := range row {
			sb.WriteString(c.style.Render(c.ch))
		}
		lines[y] = sb.String()
	}

	status := previewStatus(state)
	if status != "" {
		mid := rows / 2
		lines[mid] = overlayCentered(status, cols)
	}

	title := "Preview"
	if cropping {
		title = fmt.Sprintf("Crop %s", state.Crop)
	}
	marked := zone.Mark(PreviewZoneID, strings.Join(lines, "\n"))
	return RenderInfoBox(title, strings.Split(marked, "\n"), width)
}

func gridIndex(v float64, n int) int {
	return max(0, min(int(math.Round(v)), n-1))
}

func drawBox(grid [][]cell, l, t, r, b int, handles bool, active crop.Handle) {
	edge := styles.CropBox
	for x := l; x <= r; x++ {
		grid[t][x] = cell{"─", edge}
		grid[b][x] = cell{"─", edge}
	}
	for y := t; y <= b; y++ {
		grid[y][l] = cell{"│", edge}
		grid[y][r] = cell{"│", edge}
	}
	grid[t][l] = cell{"┌", edge}
	grid[t][r] = cell{"┐", edge}
	grid[b][l] = cell{"└", edge}
	grid[b][r] = cell{"┘", edge}
	if !handles {
		return
	}

	cx, cy := (l+r)/2, (t+b)/2
	points := []struct {
		h    crop.Handle
		x, y int
	}{
		{crop.HandleNW, l, t}, {crop.HandleNE, r, t},
		{crop.HandleSW, l, b}, {crop.HandleSE, r, b},
		{crop.HandleN, cx, t}, {crop.HandleS, cx, b},
		{crop.HandleW, l, cy}, {crop.HandleE, r, cy},
	}
	for _, p := range points {
		style := edge
		if p.h == active {
			style = styles.CropHandle
		}
		grid[p.y][p.x] = cell{"■", style}
	}
	if active == crop.HandleMove {
		grid[cy][cx] = cell{"✥", styles.CropHandle}
	}
}

func previewStatus(state PreviewState) string {
	if state.Notice != "" {
		return styles.Warning.Render(state.Notice)
	}
	if state.Mode == editor.ModeCropping {
		return ""
	}
	icon := "⏸"
	if state.Playing {
		icon = "▶"
	}
	text := fmt.Sprintf(" %s %s ", icon, timeutil.FormatPrecise(state.Position))
	if !state.Crop.IsFull() {
		text += fmt.Sprintf("zoom %s ", FormatZoom(crop.Zoom(state.Crop)))
	}
	return styles.PrimaryText.Bold(true).Render(text)
}

// FormatZoom formats a crop zoom factor like "1.3x".
func FormatZoom(z float64) string {
	return fmt.Sprintf("%.1fx", z)
}

// CropSummary describes how r is displayed: the edge insets in percent,
// top/right/bottom/left, and the zoom that fills the view with it.
func CropSummary(r crop.Rect) string {
	tr := crop.DisplayTransform(r)
	return fmt.Sprintf("Crop: %.0f/%.0f/%.0f/%.0f%%  Zoom: %s",
		tr.Inset.Top, tr.Inset.Right, tr.Inset.Bottom, tr.Inset.Left, FormatZoom(crop.Zoom(r)))
}

func overlayCentered(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return ansi.Truncate(text, width, "")
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", width-w-left)
}
