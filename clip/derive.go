package clip

import (
	"fmt"

	"github.com/user/clipedit-cli/pkg/timemap"
)

// Split cuts c at effective time at. The first record keeps c's ID and ends at
// the cut, the second gets a new ID and starts there. Both keep the rate and
// crop. The cut must fall strictly inside the active region.
func Split(c Clip, at float64) (Clip, Clip, error) {
	m := c.Mapper()
	start, end := m.ActiveStart(), m.ActiveEnd()
	cut := start + at*c.Rate()
	if cut <= start+timemap.Tolerance || cut >= end-timemap.Tolerance {
		return Clip{}, Clip{}, fmt.Errorf("%w: split point %.3fs is outside the clip", ErrInvalidRecord, at)
	}

	first := c.Clone()
	first.TrimStart = timemap.Float(start)
	first.TrimEnd = timemap.Float(cut)

	second := c.Clone()
	second.ID = NewID()
	second.TrimStart = timemap.Float(cut)
	second.TrimEnd = timemap.Float(end)
	if c.Title != "" {
		second.Title = c.Title + " (2)"
	}
	return first, second, nil
}

// Duplicate returns a copy of c under a new ID.
func Duplicate(c Clip) Clip {
	out := c.Clone()
	out.ID = NewID()
	if c.Title != "" {
		out.Title = c.Title + " copy"
	}
	return out
}
