package crop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResizeRightEdge(t *testing.T) {
	anchor := Rect{X: 0.1, Y: 0.1, Width: 0.3, Height: 0.3}

	r := Resize(HandleE, anchor, 0.3, 0)
	assertRect(t, Rect{0.1, 0.1, 0.6, 0.3}, r)

	// Cumulative delta of 0.8 would overflow; the far edge is pulled in.
	r = Resize(HandleE, anchor, 0.8, 0)
	assertRect(t, Rect{0.1, 0.1, 0.9, 0.3}, r)
}

func TestResizeHandles(t *testing.T) {
	anchor := Rect{X: 0.2, Y: 0.2, Width: 0.4, Height: 0.4}

	tests := []struct {
		name   string
		handle Handle
		dx, dy float64
		want   Rect
	}{
		{"move", HandleMove, 0.1, -0.1, Rect{0.3, 0.1, 0.4, 0.4}},
		{"move clamps to frame", HandleMove, 0.9, -0.9, Rect{0.6, 0, 0.4, 0.4}},
		{"west grows left", HandleW, -0.1, 0, Rect{0.1, 0.2, 0.5, 0.4}},
		{"west past frame keeps grown width", HandleW, -0.5, 0, Rect{0, 0.2, 0.9, 0.4}},
		{"west floors width", HandleW, 0.5, 0, Rect{0.7, 0.2, 0.1, 0.4}},
		{"north past frame keeps grown height", HandleN, 0, -0.5, Rect{0.2, 0, 0.4, 0.9}},
		{"north floors height", HandleN, 0, 0.5, Rect{0.2, 0.7, 0.4, 0.1}},
		{"north shrinks", HandleN, 0, 0.1, Rect{0.2, 0.3, 0.4, 0.3}},
		{"south grows to frame", HandleS, 0, 0.7, Rect{0.2, 0.2, 0.4, 0.8}},
		{"south floors height", HandleS, 0, -0.6, Rect{0.2, 0.2, 0.4, 0.1}},
		{"north-east", HandleNE, 0.1, -0.1, Rect{0.2, 0.1, 0.5, 0.5}},
		{"north-west", HandleNW, -0.1, -0.1, Rect{0.1, 0.1, 0.5, 0.5}},
		{"south-east", HandleSE, 0.1, 0.1, Rect{0.2, 0.2, 0.5, 0.5}},
		{"south-west", HandleSW, 0.1, 0.1, Rect{0.3, 0.2, 0.3, 0.5}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Resize(tc.handle, anchor, tc.dx, tc.dy)
			assertRect(t, tc.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestResizeStaysInsideFrame(t *testing.T) {
	anchor := Rect{X: 0.3, Y: 0.3, Width: 0.4, Height: 0.4}
	for _, d := range []float64{-1, -0.5, -0.1, 0, 0.1, 0.3, 0.9, 1} {
		for _, h := range []Handle{HandleN, HandleS, HandleE, HandleW, HandleNE, HandleNW, HandleSE, HandleSW} {
			r := Resize(h, anchor, d, d)
			assert.True(t, r.Valid(), "%s d=%v: %s", h, d, r)
		}

		// right and bottom edges leave the position alone
		r := Resize(HandleSE, anchor, d, d)
		assert.Equal(t, anchor.X, r.X, "d=%v", d)
		assert.Equal(t, anchor.Y, r.Y, "d=%v", d)
	}
}

func TestDragSession(t *testing.T) {
	g := NewGeometry(1000, 500)
	anchor := Rect{X: 0.1, Y: 0.1, Width: 0.3, Height: 0.3}

	d, err := BeginDrag(g, HandleE, Point{X: 400, Y: 200}, anchor)
	require.NoError(t, err)
	assert.Equal(t, HandleE, d.Handle())
	assert.Equal(t, anchor, d.Candidate())

	got := d.Move(Point{X: 700, Y: 210})
	assertRect(t, Rect{0.1, 0.1, 0.6, 0.3}, got)

	got = d.Move(Point{X: 1200, Y: 210})
	assertRect(t, Rect{0.1, 0.1, 0.9, 0.3}, got)

	// Same pointer, same result.
	assertRect(t, got, d.Move(Point{X: 1200, Y: 210}))
	assert.Equal(t, 3, d.Moves())

	final := d.End()
	assertRect(t, got, final)
	assert.True(t, d.Done())

	// Late moves are ignored.
	d.Move(Point{X: 0, Y: 0})
	assertRect(t, final, d.Candidate())
	assert.Equal(t, 3, d.Moves())
}

func TestDragCancelRestoresAnchor(t *testing.T) {
	g := NewGeometry(100, 100)
	anchor := Rect{X: 0.2, Y: 0.2, Width: 0.5, Height: 0.5}

	d, err := BeginDrag(g, HandleMove, Point{X: 50, Y: 50}, anchor)
	require.NoError(t, err)
	d.Move(Point{X: 60, Y: 70})
	assert.Equal(t, anchor, d.Cancel())
	assert.Equal(t, anchor, d.Candidate())
}

func TestBeginDragErrors(t *testing.T) {
	_, err := BeginDrag(NewGeometry(0, 0), HandleMove, Point{}, Full)
	assert.ErrorIs(t, err, ErrGeometryUnavailable)

	_, err = BeginDrag(NewGeometry(10, 10), HandleNone, Point{}, Full)
	assert.Error(t, err)
}

func TestHitTest(t *testing.T) {
	b := Box{Left: 10, Top: 10, Width: 40, Height: 20}

	tests := []struct {
		name string
		p    Point
		want Handle
	}{
		{"outside", Point{0, 0}, HandleNone},
		{"inside", Point{30, 20}, HandleMove},
		{"top-left corner", Point{10, 10}, HandleNW},
		{"top-right corner", Point{50, 11}, HandleNE},
		{"bottom-left corner", Point{9, 30}, HandleSW},
		{"bottom-right corner", Point{50, 30}, HandleSE},
		{"top edge", Point{30, 10}, HandleN},
		{"bottom edge", Point{30, 31}, HandleS},
		{"left edge", Point{10, 20}, HandleW},
		{"right edge", Point{51, 20}, HandleE},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HitTest(b, tc.p, 1))
		})
	}
}

func TestParseHandle(t *testing.T) {
	for _, h := range []Handle{HandleMove, HandleN, HandleS, HandleE, HandleW, HandleNE, HandleNW, HandleSE, HandleSW} {
		got, err := ParseHandle(h.String())
		require.NoError(t, err)
		assert.Equal(t, h, got)
	}
	_, err := ParseHandle("none")
	assert.Error(t, err)
	_, err = ParseHandle("diagonal")
	assert.Error(t, err)
}
