package crop

import (
	"fmt"
	"math"
)

// Handle is a named drag target on the crop box.
type Handle int

const (
	HandleNone Handle = iota
	HandleMove
	HandleN
	HandleS
	HandleE
	HandleW
	HandleNE
	HandleNW
	HandleSE
	HandleSW
)

var handleNames = map[Handle]string{
	HandleNone: "none",
	HandleMove: "move",
	HandleN:    "n",
	HandleS:    "s",
	HandleE:    "e",
	HandleW:    "w",
	HandleNE:   "ne",
	HandleNW:   "nw",
	HandleSE:   "se",
	HandleSW:   "sw",
}

func (h Handle) String() string {
	if s, ok := handleNames[h]; ok {
		return s
	}
	return "unknown"
}

// ParseHandle parses a handle name such as "move", "ne" or "w".
func ParseHandle(s string) (Handle, error) {
	for h, name := range handleNames {
		if name == s && h != HandleNone {
			return h, nil
		}
	}
	return HandleNone, fmt.Errorf("crop: unknown handle %q", s)
}

// edges reports which edges of the box a handle owns.
func (h Handle) edges() (left, right, top, bottom bool) {
	switch h {
	case HandleN:
		top = true
	case HandleS:
		bottom = true
	case HandleE:
		right = true
	case HandleW:
		left = true
	case HandleNE:
		top, right = true, true
	case HandleNW:
		top, left = true, true
	case HandleSE:
		bottom, right = true, true
	case HandleSW:
		bottom, left = true, true
	}
	return
}

// Resize applies a normalized pointer delta to anchor for handle h.
//
// Move translates the box inside the frame. Every other handle adjusts only
// the edges it owns: a left or top edge shifts the position by the delta and
// shrinks the size by the same amount, a right or bottom edge changes size
// only. Sizes are floored at MinSize and the result goes through Clamp.
func Resize(h Handle, anchor Rect, dx, dy float64) Rect {
	r := anchor
	if h == HandleMove {
		r.X = clamp(anchor.X+dx, 0, 1-anchor.Width)
		r.Y = clamp(anchor.Y+dy, 0, 1-anchor.Height)
		return r
	}

	left, right, top, bottom := h.edges()
	if left {
		r.X = anchor.X + dx
		r.Width = math.Max(MinSize, anchor.Width-dx)
	}
	if right {
		r.Width = math.Max(MinSize, anchor.Width+dx)
	}
	if top {
		r.Y = anchor.Y + dy
		r.Height = math.Max(MinSize, anchor.Height-dy)
	}
	if bottom {
		r.Height = math.Max(MinSize, anchor.Height+dy)
	}
	return Clamp(r)
}

// Drag is one pointer-driven crop interaction. It is created on pointer-down
// over a handle, fed every pointer move in delivery order, and finished
// exactly once by End or Cancel. Moves after that are ignored.
type Drag struct {
	handle    Handle
	geometry  Geometry
	anchorPtr Point
	anchor    Rect
	candidate Rect
	moves     int
	done      bool
}

// BeginDrag starts a drag of handle h from pointer position p over anchor.
func BeginDrag(g Geometry, h Handle, p Point, anchor Rect) (*Drag, error) {
	if !g.Ready() {
		return nil, ErrGeometryUnavailable
	}
	if h == HandleNone {
		return nil, fmt.Errorf("crop: no handle to drag")
	}
	return &Drag{
		handle:    h,
		geometry:  g,
		anchorPtr: p,
		anchor:    anchor,
		candidate: anchor,
	}, nil
}

// Handle returns the handle being dragged.
func (d *Drag) Handle() Handle { return d.handle }

// Anchor returns the crop rect captured at drag start.
func (d *Drag) Anchor() Rect { return d.anchor }

// Candidate returns the latest computed crop rect.
func (d *Drag) Candidate() Rect { return d.candidate }

// Moves returns how many pointer moves were applied.
func (d *Drag) Moves() int { return d.moves }

// Done reports whether the drag has ended or been cancelled.
func (d *Drag) Done() bool { return d.done }

// Move recomputes the candidate from the live pointer position. The result
// is always relative to the anchor, so repeated moves to the same point
// yield the same rect.
func (d *Drag) Move(p Point) Rect {
	if d.done {
		return d.candidate
	}
	dx, dy, err := d.geometry.PixelDeltaToNormalized(p.X-d.anchorPtr.X, p.Y-d.anchorPtr.Y)
	if err != nil {
		return d.candidate
	}
	d.candidate = Resize(d.handle, d.anchor, dx, dy)
	d.moves++
	return d.candidate
}

// End finishes the drag and returns the last candidate.
func (d *Drag) End() Rect {
	d.done = true
	return d.candidate
}

// Cancel finishes the drag and returns the anchor unchanged.
func (d *Drag) Cancel() Rect {
	d.done = true
	d.candidate = d.anchor
	return d.anchor
}
