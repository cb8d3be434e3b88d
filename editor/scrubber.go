package editor

import (
	"math"

	"github.com/user/clipedit-cli/pkg/timemap"
)

type scrubTarget int

const (
	scrubNone scrubTarget = iota
	scrubSeek
	scrubTrimStart
	scrubTrimEnd
)

// Scrubber maps pointer positions along a horizontal track to effective
// time. While trimming, pressing near a trim marker drags that marker
// instead of seeking.
type Scrubber struct {
	session *Session
	width   float64
	// MarkerTolerance is how far from a marker, in track units, a press
	// still grabs it.
	MarkerTolerance float64
	target          scrubTarget
}

// NewScrubber returns a scrubber for s with a track of the given width.
func NewScrubber(s *Session, width float64) *Scrubber {
	return &Scrubber{session: s, width: width, MarkerTolerance: 1}
}

// SetWidth updates the track width.
func (sc *Scrubber) SetWidth(w float64) { sc.width = w }

// Width returns the track width.
func (sc *Scrubber) Width() float64 { return sc.width }

// TimeAt converts a track position to an effective time by linear
// interpolation, clamped to the track.
func (sc *Scrubber) TimeAt(x float64) float64 {
	if sc.width <= 0 || math.IsNaN(x) {
		return 0
	}
	return timemap.Clamp(x/sc.width, 0, 1) * sc.session.EffectiveDuration()
}

// XFor converts an effective time to a track position.
func (sc *Scrubber) XFor(t float64) float64 {
	d := sc.session.EffectiveDuration()
	if d <= 0 || sc.width <= 0 {
		return 0
	}
	return timemap.Clamp(t/d, 0, 1) * sc.width
}

// Markers returns the track positions of the pending trim markers. ok is
// false outside trimming mode.
func (sc *Scrubber) Markers() (start, end float64, ok bool) {
	st := sc.session.State()
	if st.Mode != ModeTrimming || st.TempTrim == nil {
		return 0, 0, false
	}
	return sc.XFor(st.TempTrim.Start), sc.XFor(st.TempTrim.End), true
}

// Active reports whether a press is being tracked.
func (sc *Scrubber) Active() bool { return sc.target != scrubNone }

// PointerDown starts tracking a press at x. The scrubber is inert while
// cropping.
func (sc *Scrubber) PointerDown(x float64) {
	if sc.session.Mode() == ModeCropping || sc.session.Closed() {
		sc.target = scrubNone
		return
	}
	sc.target = scrubSeek
	if start, end, ok := sc.Markers(); ok {
		ds, de := math.Abs(x-start), math.Abs(x-end)
		switch {
		case ds <= sc.MarkerTolerance && ds <= de:
			sc.target = scrubTrimStart
		case de <= sc.MarkerTolerance:
			sc.target = scrubTrimEnd
		}
	}
	sc.apply(x)
}

// PointerMove follows a tracked press. Trim markers update continuously.
func (sc *Scrubber) PointerMove(x float64) {
	if sc.target == scrubNone {
		return
	}
	sc.apply(x)
}

// PointerUp applies the final position and stops tracking.
func (sc *Scrubber) PointerUp(x float64) {
	if sc.target == scrubNone {
		return
	}
	sc.apply(x)
	sc.target = scrubNone
}

// Cancel stops tracking without applying anything further.
func (sc *Scrubber) Cancel() {
	sc.target = scrubNone
}

func (sc *Scrubber) apply(x float64) {
	t := sc.TimeAt(x)
	switch sc.target {
	case scrubSeek:
		sc.session.Seek(t)
	case scrubTrimStart:
		sc.session.SetTrimPoint(EdgeStart, t)
	case scrubTrimEnd:
		sc.session.SetTrimPoint(EdgeEnd, t)
	}
}
