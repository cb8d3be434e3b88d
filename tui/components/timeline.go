package components

import (
	"fmt"
	"math"
	"strings"

	zone "github.com/lrstanley/bubblezone"
	"github.com/user/clipedit-cli/pkg/timeutil"
	"github.com/user/clipedit-cli/tui/styles"
)

// TimelineZoneID marks the scrub track for pointer hit testing.
const TimelineZoneID = "timeline-track"

// TimelineHeight is the number of lines Timeline renders.
const TimelineHeight = 5

// TimelineState is what the scrub track shows. Times are effective seconds
// except the Raw* fields.
type TimelineState struct {
	Position float64
	Duration float64

	// Trimming is set while a pending trim is shown; MarkStart and MarkEnd
	// are then its effective bounds.
	Trimming  bool
	MarkStart float64
	MarkEnd   float64

	RawStart    float64
	RawEnd      float64
	RawDuration float64
	Rate        float64
}

// timeLabelWidth is the width of " M:SS.mmm / M:SS.mmm" for clips under ten minutes.
const timeLabelWidth = 20

// TimelineTrackWidth returns the number of cells of the scrub track for a
// timeline rendered at width.
func TimelineTrackWidth(width int) int {
	w := width - 4 - timeLabelWidth - 1
	if w < 10 {
		w = 10
	}
	return w
}

// TrackCell returns the cell of a track of n cells that shows time t of d.
// The first cell is time zero and the last is d.
func TrackCell(t, d float64, n int) int {
	if d <= 0 || n <= 1 {
		return 0
	}
	c := int(math.Round(t / d * float64(n-1)))
	return max(0, min(c, n-1))
}

// Timeline renders the scrub track in a bordered box: the track with the
// playhead and pending trim markers, a playhead pointer row, and the raw
// range the effective timeline covers.
func Timeline(state TimelineState, width int) string {
	if width < 20 {
		return ""
	}
	n := TimelineTrackWidth(width)
	head := TrackCell(state.Position, state.Duration, n)

	markStart, markEnd := -1, -1
	lo, hi := -1, -1
	if state.Trimming {
		markStart = TrackCell(state.MarkStart, state.Duration, n)
		markEnd = TrackCell(state.MarkEnd, state.Duration, n)
		lo, hi = min(markStart, markEnd), max(markStart, markEnd)
	}

	var bar strings.Builder
	for i := 0; i < n; i++ {
		switch {
		case i == markStart || i == markEnd:
			bar.WriteString(styles.TrimMarker.Render("┃"))
		case i == head:
			bar.WriteString(styles.Playhead.Render("╸"))
		case i >= lo && i <= hi:
			bar.WriteString(styles.TrackTrimmed.Render("━"))
		case i < head:
			bar.WriteString(styles.TrackPlayed.Render("━"))
		default:
			bar.WriteString(styles.TrackUnplayed.Render("─"))
		}
	}

	label := fmt.Sprintf(" %s / %s", timeutil.FormatPrecise(state.Position), timeutil.FormatPrecise(state.Duration))
	track := " " + zone.Mark(TimelineZoneID, bar.String()) + styles.PrimaryText.Bold(true).Render(label)

	pointer := " " + strings.Repeat(" ", head) + styles.Playhead.Render("▲")
	if state.Trimming {
		pointer += styles.TrimMarker.Render(fmt.Sprintf("  trim %s – %s",
			timeutil.FormatPrecise(math.Min(state.MarkStart, state.MarkEnd)),
			timeutil.FormatPrecise(math.Max(state.MarkStart, state.MarkEnd))))
	}

	raw := styles.SecondaryText.Render(fmt.Sprintf(" source %s – %s of %s at %s",
		timeutil.FormatPrecise(state.RawStart),
		timeutil.FormatPrecise(state.RawEnd),
		timeutil.FormatPrecise(state.RawDuration),
		FormatRate(state.Rate)))

	return RenderInfoBox("Timeline", []string{track, pointer, raw}, width)
}
