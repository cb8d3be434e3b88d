package editor

import (
	"github.com/user/clipedit-cli/pkg/crop"
	"github.com/user/clipedit-cli/pkg/timemap"
)

// Mode is the editor's interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeTrimming
	ModeCropping
)

func (m Mode) String() string {
	switch m {
	case ModeTrimming:
		return "TRIM"
	case ModeCropping:
		return "CROP"
	default:
		return "NORMAL"
	}
}

// Edge selects one end of the pending trim.
type Edge int

const (
	EdgeStart Edge = iota
	EdgeEnd
)

func (e Edge) String() string {
	if e == EdgeEnd {
		return "end"
	}
	return "start"
}

// TrimRange is a pending trim in effective time. Start and End are not
// ordered until the trim is committed.
type TrimRange struct {
	Start float64
	End   float64
}

// State is a read-only snapshot of a session.
type State struct {
	ClipID      string
	RawDuration float64
	TrimStart   *float64
	TrimEnd     *float64
	Rate        float64
	// Crop is nil when the clip shows the full frame.
	Crop     *crop.Rect
	Mode     Mode
	Position float64

	// TempTrim is set only in ModeTrimming, TempCrop only in ModeCropping.
	TempTrim *TrimRange
	TempCrop *crop.Rect

	DragHandle crop.Handle
	Playing    bool
	Saving     bool
	Closed     bool
	Container  crop.Size

	// Version increases by one on every change.
	Version uint64
}

// Mapper returns the time mapper for the committed trim and rate.
func (s State) Mapper() timemap.Mapper {
	return timemap.New(s.RawDuration, s.TrimStart, s.TrimEnd, s.Rate)
}

// EffectiveDuration returns the committed effective duration.
func (s State) EffectiveDuration() float64 {
	return s.Mapper().EffectiveDuration()
}

// RawPosition returns the raw media time the effective position maps to.
func (s State) RawPosition() float64 {
	return s.Mapper().EffectiveToRaw(s.Position)
}

// VisibleCrop returns the rect the preview should show: the pending crop
// while cropping, else the committed one.
func (s State) VisibleCrop() crop.Rect {
	if s.TempCrop != nil {
		return *s.TempCrop
	}
	return crop.Or(s.Crop)
}

// Dragging reports whether a crop drag is in progress.
func (s State) Dragging() bool {
	return s.DragHandle != crop.HandleNone
}
