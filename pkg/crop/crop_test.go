package crop

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertRect(t *testing.T, want, got Rect) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-9, "y")
	assert.InDelta(t, want.Width, got.Width, 1e-9, "width")
	assert.InDelta(t, want.Height, got.Height, 1e-9, "height")
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		in   Rect
		want Rect
	}{
		{"full frame untouched", Full, Full},
		{"negative position", Rect{-0.2, -1, 0.5, 0.5}, Rect{0, 0, 0.5, 0.5}},
		{"too small", Rect{0.2, 0.2, 0.01, 0}, Rect{0.2, 0.2, MinSize, MinSize}},
		{"overflow shrinks far edge", Rect{0.6, 0.7, 0.8, 0.5}, Rect{0.6, 0.7, 0.4, 0.3}},
		{"position wins over size", Rect{1.5, 0.95, 1, 1}, Rect{0.9, 0.9, 0.1, 0.1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assertRect(t, tc.want, Clamp(tc.in))
		})
	}
}

func TestClampAlwaysValid(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		in := Rect{
			X:      rng.Float64()*3 - 1,
			Y:      rng.Float64()*3 - 1,
			Width:  rng.Float64()*3 - 1,
			Height: rng.Float64()*3 - 1,
		}
		out := Clamp(in)
		require.True(t, out.Valid(), "clamp(%+v) = %+v", in, out)
	}
}

func TestPixelRoundTrip(t *testing.T) {
	g := NewGeometry(800, 450)

	box, err := g.ToPixels(Full)
	require.NoError(t, err)
	assert.Equal(t, Box{Left: 0, Top: 0, Width: 800, Height: 450}, box)

	back, err := g.FromPixels(box)
	require.NoError(t, err)
	assert.InDelta(t, 0, back.X, 1e-6)
	assert.InDelta(t, 0, back.Y, 1e-6)
	assert.InDelta(t, 1, back.Width, 1e-6)
	assert.InDelta(t, 1, back.Height, 1e-6)

	r := Rect{X: 0.125, Y: 0.3, Width: 0.5, Height: 0.25}
	box, err = g.ToPixels(r)
	require.NoError(t, err)
	assert.InDelta(t, 100, box.Left, 1e-9)
	assert.InDelta(t, 135, box.Top, 1e-9)
	back, err = g.FromPixels(box)
	require.NoError(t, err)
	assertRect(t, r, back)
}

func TestGeometryUnavailable(t *testing.T) {
	for _, g := range []Geometry{NewGeometry(0, 450), NewGeometry(800, 0), {}} {
		_, err := g.ToPixels(Full)
		assert.ErrorIs(t, err, ErrGeometryUnavailable)
		_, _, err = g.PixelDeltaToNormalized(10, 10)
		assert.ErrorIs(t, err, ErrGeometryUnavailable)
	}
}

func TestPixelDeltaToNormalized(t *testing.T) {
	g := NewGeometry(800, 400)

	dx, dy, err := g.PixelDeltaToNormalized(80, -100)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, dx, 1e-9)
	assert.InDelta(t, -0.25, dy, 1e-9)

	dx, dy, err = g.PixelDeltaToNormalized(5000, -5000)
	require.NoError(t, err)
	assert.Equal(t, 1.0, dx)
	assert.Equal(t, -1.0, dy)
}

func TestDisplayTransform(t *testing.T) {
	tr := DisplayTransform(Rect{X: 0.1, Y: 0.2, Width: 0.5, Height: 0.4})
	assert.InDelta(t, 20, tr.Inset.Top, 1e-9)
	assert.InDelta(t, 40, tr.Inset.Right, 1e-9)
	assert.InDelta(t, 40, tr.Inset.Bottom, 1e-9)
	assert.InDelta(t, 10, tr.Inset.Left, 1e-9)
	assert.InDelta(t, 2.5, tr.Scale, 1e-9)
	assert.InDelta(t, 15, tr.TranslateX, 1e-9)
	assert.InDelta(t, 10, tr.TranslateY, 1e-9)

	full := DisplayTransform(Full)
	assert.Equal(t, 1.0, full.Scale)
	assert.InDelta(t, 0, full.TranslateX, 1e-9)
}

func TestZoom(t *testing.T) {
	assert.Equal(t, 1.0, Zoom(Full))
	assert.InDelta(t, 2.0, Zoom(Rect{0, 0, 0.5, 0.8}), 1e-9)
	assert.Equal(t, 3.0, Zoom(Rect{0, 0, 0.1, 0.1}))
}

func TestPixelCrop(t *testing.T) {
	assert.Equal(t, "960x540+480+270", PixelCrop(Rect{0.25, 0.25, 0.5, 0.5}, 1920, 1080))
	assert.Equal(t, "1920x1080+0+0", PixelCrop(Full, 1920, 1080))
}

func TestSetField(t *testing.T) {
	r := Rect{X: 0.2, Y: 0.2, Width: 0.6, Height: 0.5}

	assertRect(t, Rect{0.4, 0.2, 0.6, 0.5}, SetField(r, FieldX, 0.9))
	assertRect(t, Rect{0.2, 0.2, 0.8, 0.5}, SetField(r, FieldWidth, 1))
	assertRect(t, Rect{0.2, 0.2, 0.6, 0.1}, SetField(r, FieldHeight, 0.01))
	assertRect(t, Rect{0.2, 0.5, 0.6, 0.5}, SetField(r, FieldY, 0.7))
}

func TestPresetsAreValid(t *testing.T) {
	for _, p := range Presets {
		assert.True(t, p.Rect.Valid(), p.Name)
	}
}
