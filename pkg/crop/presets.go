package crop

// Preset is a named crop rectangle offered by the crop editor.
type Preset struct {
	Name string
	Rect Rect
}

// Presets are the quick crops offered while cropping.
var Presets = []Preset{
	{Name: "Reset (Full)", Rect: Full},
	{Name: "80% Center", Rect: Rect{X: 0.1, Y: 0.1, Width: 0.8, Height: 0.8}},
	{Name: "90% Center", Rect: Rect{X: 0.05, Y: 0.05, Width: 0.9, Height: 0.9}},
}

// Field names a single value of a Rect for numeric editing.
type Field int

const (
	FieldX Field = iota
	FieldY
	FieldWidth
	FieldHeight
)

// SetField changes one value of r the way the crop sliders do: position is
// capped so the current size still fits, size is capped so the current
// position still fits, then the result is clamped.
func SetField(r Rect, f Field, v float64) Rect {
	switch f {
	case FieldX:
		r.X = min(v, 1-r.Width)
	case FieldY:
		r.Y = min(v, 1-r.Height)
	case FieldWidth:
		r.Width = min(v, 1-r.X)
	case FieldHeight:
		r.Height = min(v, 1-r.Y)
	}
	return Clamp(r)
}
