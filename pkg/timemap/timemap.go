// Package timemap converts between raw media time, trim-relative time and
// effective (speed-scaled) time.
package timemap

import "math"

// Tolerance is the accepted round-trip error between raw and effective time.
const Tolerance = 1e-3

// Rates is the fixed set the speed-cycle control steps through.
var Rates = []float64{0.5, 0.75, 1.0, 1.25, 1.5, 2.0}

// Mapper holds the trim bounds and rate a clip is viewed through.
// A nil TrimStart means 0 and a nil TrimEnd means RawDuration.
type Mapper struct {
	RawDuration float64
	TrimStart   *float64
	TrimEnd     *float64
	Rate        float64
}

// New returns a Mapper for the given raw duration, optional trim bounds and rate.
func New(rawDuration float64, trimStart, trimEnd *float64, rate float64) Mapper {
	return Mapper{
		RawDuration: rawDuration,
		TrimStart:   trimStart,
		TrimEnd:     trimEnd,
		Rate:        rate,
	}
}

// ActiveStart returns the raw time the active region starts at.
func (m Mapper) ActiveStart() float64 {
	if m.TrimStart != nil {
		return *m.TrimStart
	}
	return 0
}

// ActiveEnd returns the raw time the active region ends at.
func (m Mapper) ActiveEnd() float64 {
	if m.TrimEnd != nil {
		return *m.TrimEnd
	}
	return m.RawDuration
}

// rate returns the playback rate, treating non-positive values as 1x so
// callers never divide by zero.
func (m Mapper) rate() float64 {
	if m.Rate <= 0 || math.IsNaN(m.Rate) || math.IsInf(m.Rate, 0) {
		return 1
	}
	return m.Rate
}

// EffectiveDuration returns the length of the active region as experienced
// at the current rate.
func (m Mapper) EffectiveDuration() float64 {
	d := (m.ActiveEnd() - m.ActiveStart()) / m.rate()
	if d < 0 {
		return 0
	}
	return d
}

// RawToEffective converts a raw media time to effective time.
// Raw times at or past the end of the active region saturate at
// EffectiveDuration; raw times before the start report 0.
func (m Mapper) RawToEffective(raw float64) float64 {
	if raw >= m.ActiveEnd() {
		return m.EffectiveDuration()
	}
	return math.Max(0, raw-m.ActiveStart()) / m.rate()
}

// EffectiveToRaw converts an effective time to a raw media time, clamped to
// the active region.
func (m Mapper) EffectiveToRaw(eff float64) float64 {
	return Clamp(eff*m.rate()+m.ActiveStart(), m.ActiveStart(), m.ActiveEnd())
}

// ClampEffective clamps t to [0, EffectiveDuration].
func (m Mapper) ClampEffective(t float64) float64 {
	return Clamp(t, 0, m.EffectiveDuration())
}

// Clamp limits v to [lo, hi]. When hi < lo, lo wins.
func Clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// NextRate returns the rate after current in Rates, wrapping around.
// A rate outside the set cycles to the first entry.
func NextRate(current float64) float64 {
	for i, r := range Rates {
		if r == current {
			return Rates[(i+1)%len(Rates)]
		}
	}
	return Rates[0]
}

// ValidRate reports whether r can be used as a playback rate.
func ValidRate(r float64) bool {
	return r > 0 && !math.IsNaN(r) && !math.IsInf(r, 0)
}

// Float returns a pointer to v, for optional trim bounds.
func Float(v float64) *float64 {
	return &v
}
