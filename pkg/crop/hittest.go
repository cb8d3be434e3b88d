package crop

import "math"

// HitTest returns the handle under p for a crop box, or HandleNone.
// Corners win over edges, edges over the box interior. tol is the grab
// distance in container units.
func HitTest(b Box, p Point, tol float64) Handle {
	right := b.Left + b.Width
	bottom := b.Top + b.Height

	if p.X < b.Left-tol || p.X > right+tol || p.Y < b.Top-tol || p.Y > bottom+tol {
		return HandleNone
	}

	nearL := math.Abs(p.X-b.Left) <= tol
	nearR := math.Abs(p.X-right) <= tol
	nearT := math.Abs(p.Y-b.Top) <= tol
	nearB := math.Abs(p.Y-bottom) <= tol

	// A box narrower than two grab zones resolves to the closer edge.
	if nearL && nearR {
		nearL = math.Abs(p.X-b.Left) <= math.Abs(p.X-right)
		nearR = !nearL
	}
	if nearT && nearB {
		nearT = math.Abs(p.Y-b.Top) <= math.Abs(p.Y-bottom)
		nearB = !nearT
	}

	switch {
	case nearT && nearL:
		return HandleNW
	case nearT && nearR:
		return HandleNE
	case nearB && nearL:
		return HandleSW
	case nearB && nearR:
		return HandleSE
	case nearT:
		return HandleN
	case nearB:
		return HandleS
	case nearL:
		return HandleW
	case nearR:
		return HandleE
	}
	return HandleMove
}
