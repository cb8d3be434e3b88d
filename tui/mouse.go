package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/user/clipedit-cli/editor"
	"github.com/user/clipedit-cli/pkg/crop"
	"github.com/user/clipedit-cli/tui/components"
)

type pointerAction int

const (
	pointerPress pointerAction = iota
	pointerMove
	pointerRelease
)

// handleMouse routes a mouse event to the timeline or the crop preview.
// A press is claimed by the zone under it; motion and release go to
// whichever zone holds the press, even outside its bounds.
func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	var action pointerAction
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		action = pointerPress
	case msg.Action == tea.MouseActionMotion:
		action = pointerMove
	case msg.Action == tea.MouseActionRelease:
		action = pointerRelease
	default:
		return m, nil
	}

	switch {
	case m.scrubbing || (action == pointerPress && inZone(components.TimelineZoneID, msg)):
		x, _ := zoneOffset(components.TimelineZoneID, msg)
		m.pointerTimeline(action, x)
	case m.cropDrag || (action == pointerPress && inZone(components.PreviewZoneID, msg)):
		x, y := zoneOffset(components.PreviewZoneID, msg)
		m.pointerPreview(action, x, y)
	}
	return m, nil
}

func inZone(id string, msg tea.MouseMsg) bool {
	z := zone.Get(id)
	return z != nil && z.InBounds(msg)
}

// zoneOffset returns the pointer position relative to the top-left cell of
// zone id. The result may fall outside the zone.
func zoneOffset(id string, msg tea.MouseMsg) (int, int) {
	z := zone.Get(id)
	if z == nil || z.IsZero() {
		return 0, 0
	}
	return msg.X - z.StartX, msg.Y - z.StartY
}

// pointerTimeline feeds a pointer event at track cell x to the scrubber.
func (m *Model) pointerTimeline(action pointerAction, x int) {
	fx := float64(x)
	switch action {
	case pointerPress:
		m.scrubber.PointerDown(fx)
		m.scrubbing = m.scrubber.Active()
	case pointerMove:
		m.scrubber.PointerMove(fx)
	case pointerRelease:
		m.scrubber.PointerUp(fx)
		m.scrubbing = false
	}
}

// pointerPreview feeds a pointer event at grid cell (x, y) to the crop
// drag. Presses outside cropping mode are ignored.
func (m *Model) pointerPreview(action pointerAction, x, y int) {
	p := crop.Point{X: float64(x), Y: float64(y)}
	switch action {
	case pointerPress:
		if m.session.Mode() != editor.ModeCropping {
			return
		}
		h, err := m.session.BeginCropDragAt(p, cropHitTolerance)
		if err != nil {
			m.logger.Debug("crop drag not started", "error", err)
			return
		}
		m.cropDrag = h != crop.HandleNone
	case pointerMove:
		if m.cropDrag {
			m.session.DragTo(p)
		}
	case pointerRelease:
		if m.cropDrag {
			m.session.DragTo(p)
			m.session.EndCropDrag()
			m.cropDrag = false
		}
	}
}
