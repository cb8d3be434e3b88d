// Package playback drives an opaque media surface from editor state and
// feeds the surface's reports back into the editor.
package playback

import (
	"math"

	"github.com/user/clipedit-cli/editor"
	"github.com/user/clipedit-cli/pkg/crop"
)

// DefaultHysteresis is the raw-time divergence, in seconds, below which no
// seek is issued.
const DefaultHysteresis = 0.1

// Surface is the playback surface contract: it takes a source, a rate, a
// raw seek target and a transport state.
type Surface interface {
	Load(url string) error
	SetRate(rate float64) error
	SeekTo(raw float64) error
	SetPaused(paused bool) error
}

// CropSurface is implemented by surfaces that can display a cropped frame.
// A nil rect shows the full frame.
type CropSurface interface {
	SetCrop(r *crop.Rect) error
}

// FrameSource is implemented by surfaces that can tell whether the current
// frame is readable for cropping.
type FrameSource interface {
	FrameSize() (crop.Size, error)
}

// Directive is what the surface should be doing for a given state.
type Directive struct {
	Rate float64
	// Target is the raw time the state maps to.
	Target float64
	// Seek is set when the reported raw time is too far from Target.
	Seek   bool
	Paused bool
	// Crop is the crop the surface shows. It is nil while cropping so the
	// overlay is drawn over the full frame.
	Crop *crop.Rect
}

// Plan computes the directive for st given the surface's last reported raw
// time.
func Plan(st editor.State, reportedRaw, hysteresis float64) Directive {
	target := st.RawPosition()
	d := Directive{
		Rate:   st.Rate,
		Target: target,
		Seek:   math.Abs(reportedRaw-target) > hysteresis,
		Paused: !st.Playing,
	}
	if st.Mode != editor.ModeCropping && st.Crop != nil {
		r := *st.Crop
		d.Crop = &r
	}
	return d
}

func sameCrop(a, b *crop.Rect) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
