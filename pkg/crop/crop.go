// Package crop converts normalized crop rectangles to and from container
// pixel space and drives handle-based crop resizing.
package crop

import (
	"errors"
	"fmt"
	"math"
)

// MinSize is the smallest normalized width or height a crop may have.
const MinSize = 0.1

// ErrGeometryUnavailable is returned when the container has no positive size yet.
var ErrGeometryUnavailable = errors.New("crop: container dimensions not available")

// Rect is a crop rectangle in normalized [0,1] frame coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Full is the uncropped frame.
var Full = Rect{X: 0, Y: 0, Width: 1, Height: 1}

// String formats the rect as percentages.
func (r Rect) String() string {
	return fmt.Sprintf("x=%.0f%% y=%.0f%% w=%.0f%% h=%.0f%%", r.X*100, r.Y*100, r.Width*100, r.Height*100)
}

// IsFull reports whether r covers the whole frame.
func (r Rect) IsFull() bool {
	return r == Full
}

// Valid reports whether r satisfies the crop invariants.
func (r Rect) Valid() bool {
	const eps = 1e-9
	for _, v := range []float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return false
		}
	}
	return r.Width >= MinSize-eps && r.Height >= MinSize-eps &&
		r.X+r.Width <= 1+eps && r.Y+r.Height <= 1+eps
}

// Right returns the normalized x of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the normalized y of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Clamp enforces the crop invariants. Position is clamped first, then size,
// and finally the far edge is pulled in so the rect stays inside the frame.
// The order decides which dimension yields when both overflow.
func Clamp(r Rect) Rect {
	r.X = clamp(r.X, 0, 1-MinSize)
	r.Y = clamp(r.Y, 0, 1-MinSize)
	r.Width = clamp(r.Width, MinSize, 1)
	r.Height = clamp(r.Height, MinSize, 1)
	if r.X+r.Width > 1 {
		r.Width = 1 - r.X
	}
	if r.Y+r.Height > 1 {
		r.Height = 1 - r.Y
	}
	return r
}

// Or returns *r, or Full when r is nil.
func Or(r *Rect) Rect {
	if r == nil {
		return Full
	}
	return *r
}

// Zoom returns the preview zoom factor for r, limited to [1,3].
func Zoom(r Rect) float64 {
	m := math.Min(r.Width, r.Height)
	if m <= 0 {
		return 3
	}
	return clamp(1/m, 1, 3)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
