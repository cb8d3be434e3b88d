package crop

import "fmt"

// Size is a container or frame size in pixels (or terminal cells).
type Size struct {
	Width  float64
	Height float64
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Box is a crop rectangle placed in container pixel space.
type Box struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Point is a pointer position in container pixel space.
type Point struct {
	X float64
	Y float64
}

// Geometry maps crop rectangles onto a container of a known size.
type Geometry struct {
	Container Size
}

// NewGeometry returns a Geometry for a w x h container.
func NewGeometry(w, h float64) Geometry {
	return Geometry{Container: Size{Width: w, Height: h}}
}

// Ready reports whether the container size is known.
func (g Geometry) Ready() bool {
	return g.Container.Valid()
}

// ToPixels places r inside the container.
func (g Geometry) ToPixels(r Rect) (Box, error) {
	if !g.Ready() {
		return Box{}, ErrGeometryUnavailable
	}
	return Box{
		Left:   r.X * g.Container.Width,
		Top:    r.Y * g.Container.Height,
		Width:  r.Width * g.Container.Width,
		Height: r.Height * g.Container.Height,
	}, nil
}

// FromPixels is the inverse of ToPixels.
func (g Geometry) FromPixels(b Box) (Rect, error) {
	if !g.Ready() {
		return Rect{}, ErrGeometryUnavailable
	}
	return Rect{
		X:      b.Left / g.Container.Width,
		Y:      b.Top / g.Container.Height,
		Width:  b.Width / g.Container.Width,
		Height: b.Height / g.Container.Height,
	}, nil
}

// PixelDeltaToNormalized converts a pointer delta to normalized frame units.
// Each component is limited to [-1,1]: a drag can never cover more than the frame.
func (g Geometry) PixelDeltaToNormalized(dx, dy float64) (float64, float64, error) {
	if !g.Ready() {
		return 0, 0, ErrGeometryUnavailable
	}
	return clamp(dx/g.Container.Width, -1, 1), clamp(dy/g.Container.Height, -1, 1), nil
}

// Inset is the crop expressed as edge insets in percent of the frame.
type Inset struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Transform describes how a surface displays a cropped frame: clip to the
// inset, then scale and translate so the crop fills the view.
type Transform struct {
	Inset      Inset
	Scale      float64
	TranslateX float64
	TranslateY float64
}

// DisplayTransform returns the transform that shows r filling the view.
func DisplayTransform(r Rect) Transform {
	cx := r.X + r.Width/2
	cy := r.Y + r.Height/2
	scale := 1.0
	if m := min(r.Width, r.Height); m > 0 {
		scale = 1 / m
	}
	return Transform{
		Inset: Inset{
			Top:    r.Y * 100,
			Right:  (1 - r.Right()) * 100,
			Bottom: (1 - r.Bottom()) * 100,
			Left:   r.X * 100,
		},
		Scale:      scale,
		TranslateX: (0.5 - cx) * 100,
		TranslateY: (0.5 - cy) * 100,
	}
}

// PixelCrop returns r in whole source pixels for a frame of w x h, formatted
// as WxH+X+Y.
func PixelCrop(r Rect, w, h int) string {
	pw := int(r.Width*float64(w) + 0.5)
	ph := int(r.Height*float64(h) + 0.5)
	px := int(r.X*float64(w) + 0.5)
	py := int(r.Y*float64(h) + 0.5)
	return fmt.Sprintf("%dx%d+%d+%d", pw, ph, px, py)
}
