package playback

import (
	"fmt"
	"log/slog"

	"github.com/user/clipedit-cli/editor"
	"github.com/user/clipedit-cli/pkg/crop"
)

// Adapter keeps one surface in step with one editor session. It is the only
// writer of directives to the surface. All methods run on the UI loop.
type Adapter struct {
	session    *editor.Session
	surface    Surface
	logger     *slog.Logger
	hysteresis float64

	reported float64
	applied  bool
	rate     float64
	paused   bool
	crop     *crop.Rect
	mode     editor.Mode

	unsubscribe func()
}

// NewAdapter attaches surface to session. Every session change is pushed to
// the surface until Detach is called.
func NewAdapter(session *editor.Session, surface Surface, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Adapter{
		session:    session,
		surface:    surface,
		logger:     logger,
		hysteresis: DefaultHysteresis,
	}
	a.unsubscribe = session.Subscribe(a.Sync)
	return a
}

// SetHysteresis changes the seek threshold. Non-positive values reset it to
// DefaultHysteresis.
func (a *Adapter) SetHysteresis(h float64) {
	if h <= 0 {
		h = DefaultHysteresis
	}
	a.hysteresis = h
}

// Detach stops pushing session changes to the surface.
func (a *Adapter) Detach() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

// Open loads url into the surface and pushes the initial state.
func (a *Adapter) Open(url string) error {
	if err := a.surface.Load(url); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	a.reported = 0
	a.applied = false
	a.Sync(a.session.State())
	return nil
}

// Target returns the raw time the surface is being driven to.
func (a *Adapter) Target() float64 {
	return Plan(a.session.State(), a.reported, a.hysteresis).Target
}

// Reported returns the last raw time the surface reported or was sent to.
func (a *Adapter) Reported() float64 { return a.reported }

// Sync issues the directives needed to bring the surface in line with st.
func (a *Adapter) Sync(st editor.State) {
	if st.Closed {
		if !a.paused || !a.applied {
			a.setPaused(true)
		}
		return
	}

	d := Plan(st, a.reported, a.hysteresis)

	if !a.applied || d.Rate != a.rate {
		if err := a.surface.SetRate(d.Rate); err != nil {
			a.logger.Warn("surface rejected rate", "rate", d.Rate, "error", err)
		} else {
			a.rate = d.Rate
		}
	}

	if d.Seek || !a.applied {
		if err := a.surface.SeekTo(d.Target); err != nil {
			a.logger.Warn("surface rejected seek", "target", d.Target, "error", err)
		} else {
			a.reported = d.Target
		}
	}

	if cs, ok := a.surface.(CropSurface); ok && (!a.applied || !sameCrop(d.Crop, a.crop)) {
		if err := cs.SetCrop(d.Crop); err != nil {
			a.logger.Warn("surface rejected crop", "error", err)
		} else {
			a.crop = d.Crop
		}
	}

	enteredCrop := st.Mode == editor.ModeCropping && a.mode != editor.ModeCropping
	a.mode = st.Mode

	if !a.applied || d.Paused != a.paused {
		a.applied = true
		if !a.setPaused(d.Paused) && !d.Paused {
			// Play was refused; show the paused state instead.
			a.session.SetPlaying(false)
		}
	}
	a.applied = true

	if enteredCrop {
		a.checkFrame()
	}
}

func (a *Adapter) setPaused(paused bool) bool {
	if err := a.surface.SetPaused(paused); err != nil {
		a.logger.Warn("surface rejected transport change", "paused", paused, "error", err)
		return false
	}
	a.paused = paused
	return true
}

func (a *Adapter) checkFrame() {
	fs, ok := a.surface.(FrameSource)
	if !ok {
		return
	}
	size, err := fs.FrameSize()
	if err == nil && !size.Valid() {
		err = crop.ErrGeometryUnavailable
	}
	if err != nil {
		a.session.FrameUnavailable(err)
	}
}

// OnMetadataLoaded handles the surface reporting the media duration. The
// full state is pushed again since directives sent before the media was
// loaded may have been dropped.
func (a *Adapter) OnMetadataLoaded(duration float64) {
	a.session.SetRawDuration(duration)
	a.applied = false
	a.Sync(a.session.State())
}

// OnPositionChanged handles a raw position report. Once raw time reaches
// the end of the active range the surface is paused and the position is
// pinned to the effective duration.
func (a *Adapter) OnPositionChanged(raw float64) {
	a.reported = raw
	before := a.session.Version()
	m := a.session.Mapper()
	end := m.ActiveEnd()
	if end > 0 && raw >= end {
		a.setPaused(true)
		a.session.SetPlaying(false)
		a.session.SetPosition(m.EffectiveDuration())
	} else {
		a.session.SetPosition(m.RawToEffective(raw))
	}
	// An unchanged session still has to pull the surface back into range.
	if a.session.Version() == before {
		a.Sync(a.session.State())
	}
}

// OnPlayStateChanged handles the surface reporting its transport state.
func (a *Adapter) OnPlayStateChanged(playing bool) {
	a.paused = !playing
	a.session.SetPlaying(playing)
}

// OnEnded handles the surface reaching the end of the media.
func (a *Adapter) OnEnded() {
	a.paused = true
	a.session.Ended()
}
