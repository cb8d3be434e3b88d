// Package editor owns the edit state of one open clip: trim bounds, rate,
// crop, interaction mode and preview position. All methods must be called
// from a single goroutine, the UI loop.
package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/user/clipedit-cli/clip"
	"github.com/user/clipedit-cli/pkg/crop"
	"github.com/user/clipedit-cli/pkg/timemap"
)

var (
	// ErrClosed is returned by commands on a closed or deleted session.
	ErrClosed = errors.New("editor: session closed")
	// ErrInvalidRate is returned for a non-positive or non-finite rate.
	ErrInvalidRate = errors.New("editor: invalid playback rate")
	// ErrWrongMode is returned when a command needs a different mode.
	ErrWrongMode = errors.New("editor: command not available in this mode")
)

// Session is the single owner of a clip's edit state.
type Session struct {
	id        string
	notify    Notifier
	logger    *slog.Logger
	rawDur    float64
	trimStart *float64
	trimEnd   *float64
	rate      float64
	crop      *crop.Rect
	mode      Mode
	position  float64
	tempTrim  *TrimRange
	tempCrop  *crop.Rect
	drag      *crop.Drag
	playing   bool
	saving    bool
	closed    bool
	container crop.Size

	notice      string
	noticeShown bool

	version   uint64
	observers []observer
	nextObsID int
}

type observer struct {
	id int
	fn func(State)
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New opens a session for c. A nil notifier discards notifications.
func New(c clip.Clip, n Notifier, opts ...Option) *Session {
	if n == nil {
		n = NopNotifier{}
	}
	s := &Session{
		id:     c.ID,
		notify: n,
		logger: slog.Default(),
		rawDur: math.Max(0, c.Duration),
		rate:   c.Rate(),
	}
	if !timemap.ValidRate(s.rate) {
		s.rate = 1
	}
	if c.TrimStart != nil && c.TrimEnd != nil && *c.TrimEnd > *c.TrimStart {
		s.trimStart = timemap.Float(*c.TrimStart)
		s.trimEnd = timemap.Float(*c.TrimEnd)
	}
	if c.Crop != nil {
		r := crop.Clamp(*c.Crop)
		if !r.IsFull() {
			s.crop = &r
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the clip ID.
func (s *Session) ID() string { return s.id }

// Mode returns the current mode.
func (s *Session) Mode() Mode { return s.mode }

// Closed reports whether the session was closed or deleted.
func (s *Session) Closed() bool { return s.closed }

// Version returns the change counter.
func (s *Session) Version() uint64 { return s.version }

// Position returns the effective preview position.
func (s *Session) Position() float64 { return s.position }

// Rate returns the committed playback rate.
func (s *Session) Rate() float64 { return s.rate }

// Mapper returns the time mapper for the committed trim and rate.
func (s *Session) Mapper() timemap.Mapper {
	return timemap.New(s.rawDur, s.trimStart, s.trimEnd, s.rate)
}

// EffectiveDuration returns the committed effective duration.
func (s *Session) EffectiveDuration() float64 {
	return s.Mapper().EffectiveDuration()
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	st := State{
		ClipID:      s.id,
		RawDuration: s.rawDur,
		Rate:        s.rate,
		Mode:        s.mode,
		Position:    s.position,
		Playing:     s.playing,
		Saving:      s.saving,
		Closed:      s.closed,
		Container:   s.container,
		Version:     s.version,
	}
	if s.trimStart != nil {
		st.TrimStart = timemap.Float(*s.trimStart)
	}
	if s.trimEnd != nil {
		st.TrimEnd = timemap.Float(*s.trimEnd)
	}
	if s.crop != nil {
		r := *s.crop
		st.Crop = &r
	}
	if s.tempTrim != nil {
		tt := *s.tempTrim
		st.TempTrim = &tt
	}
	if s.tempCrop != nil {
		r := *s.tempCrop
		st.TempCrop = &r
	}
	if s.drag != nil {
		st.DragHandle = s.drag.Handle()
	}
	return st
}

// Subscribe registers fn to receive a snapshot after every change and
// returns a function that removes it.
func (s *Session) Subscribe(fn func(State)) func() {
	s.nextObsID++
	id := s.nextObsID
	s.observers = append(s.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *Session) changed() {
	s.version++
	if len(s.observers) == 0 {
		return
	}
	st := s.State()
	for _, o := range append([]observer(nil), s.observers...) {
		o.fn(st)
	}
}

// Seek moves the preview to effective time t, clamped to the active range.
// It does nothing while cropping.
func (s *Session) Seek(t float64) {
	if s.closed || s.mode == ModeCropping {
		return
	}
	s.setPosition(t)
}

// SeekBy moves the preview by delta seconds of effective time.
func (s *Session) SeekBy(delta float64) {
	s.Seek(s.position + delta)
}

func (s *Session) setPosition(t float64) {
	if math.IsNaN(t) {
		t = 0
	}
	p := s.Mapper().ClampEffective(t)
	if p == s.position {
		return
	}
	s.position = p
	s.changed()
}

// remap keeps the preview on the same raw frame across a change of trim or
// rate, clamped to the new effective range.
func (s *Session) remap(old timemap.Mapper) {
	raw := old.EffectiveToRaw(s.position)
	s.position = s.Mapper().ClampEffective(s.Mapper().RawToEffective(raw))
}

// EnterTrim starts trimming with the pending range covering the whole
// current effective range. A pending crop is discarded first.
func (s *Session) EnterTrim() {
	if s.closed || s.mode == ModeTrimming {
		return
	}
	if s.mode == ModeCropping {
		s.discardCrop()
	}
	s.tempTrim = &TrimRange{Start: 0, End: s.EffectiveDuration()}
	s.mode = ModeTrimming
	s.logger.Debug("enter trim", "clip", s.id, "range", s.tempTrim.End)
	s.changed()
}

// SetTrimPoint moves one end of the pending trim to effective time t and
// moves the preview there. Ordering is only checked on commit.
func (s *Session) SetTrimPoint(edge Edge, t float64) {
	if s.closed || s.mode != ModeTrimming || s.tempTrim == nil {
		return
	}
	t = s.Mapper().ClampEffective(t)
	if edge == EdgeEnd {
		s.tempTrim.End = t
	} else {
		s.tempTrim.Start = t
	}
	s.position = t
	s.changed()
}

// CommitTrim writes the pending trim as the new raw trim bounds and returns
// to normal mode. A pending range whose end is not after its start is
// discarded and the committed bounds stay as they were. It reports whether
// the trim was applied.
func (s *Session) CommitTrim() bool {
	if s.closed || s.mode != ModeTrimming {
		return false
	}
	tt := s.tempTrim
	s.tempTrim = nil
	s.mode = ModeNormal

	applied := false
	if tt != nil && tt.End > tt.Start {
		old := s.Mapper()
		start := old.EffectiveToRaw(tt.Start)
		end := old.EffectiveToRaw(tt.End)
		if end > start {
			s.trimStart = timemap.Float(start)
			s.trimEnd = timemap.Float(end)
			s.remap(old)
			applied = true
		}
	}
	if applied {
		s.logger.Info("trim applied", "clip", s.id, "start", *s.trimStart, "end", *s.trimEnd)
	} else {
		s.logger.Debug("trim discarded", "clip", s.id)
	}
	s.changed()
	if applied {
		s.notify.OnTrim(s.id, *s.trimStart, *s.trimEnd)
	}
	return applied
}

// DiscardTrim drops the pending trim and returns to normal mode.
func (s *Session) DiscardTrim() {
	if s.closed || s.mode != ModeTrimming {
		return
	}
	s.tempTrim = nil
	s.mode = ModeNormal
	s.changed()
}

// ToggleTrim enters trimming, or commits when already trimming.
func (s *Session) ToggleTrim() {
	if s.mode == ModeTrimming {
		s.CommitTrim()
		return
	}
	s.EnterTrim()
}

// ResetTrim clears the committed trim so the full media range is active.
func (s *Session) ResetTrim() {
	if s.closed || (s.trimStart == nil && s.trimEnd == nil) {
		return
	}
	old := s.Mapper()
	s.trimStart, s.trimEnd = nil, nil
	s.remap(old)
	s.changed()
	s.notify.OnTrim(s.id, 0, s.rawDur)
}

// EnterCrop starts cropping with the pending crop seeded from the committed
// one. A pending trim is discarded first.
func (s *Session) EnterCrop() {
	if s.closed || s.mode == ModeCropping {
		return
	}
	if s.mode == ModeTrimming {
		s.tempTrim = nil
		s.mode = ModeNormal
	}
	r := crop.Or(s.crop)
	s.tempCrop = &r
	s.mode = ModeCropping
	s.logger.Debug("enter crop", "clip", s.id, "crop", r.String())
	s.changed()
}

// SetTempCrop replaces the pending crop, clamped to the crop invariants.
func (s *Session) SetTempCrop(r crop.Rect) {
	if s.closed || s.mode != ModeCropping {
		return
	}
	r = crop.Clamp(r)
	s.tempCrop = &r
	s.changed()
}

// SetCropField sets one numeric field of the pending crop.
func (s *Session) SetCropField(f crop.Field, v float64) {
	if s.closed || s.mode != ModeCropping || s.tempCrop == nil {
		return
	}
	s.SetTempCrop(crop.SetField(*s.tempCrop, f, v))
}

// NudgeCrop moves the pending crop by a normalized delta.
func (s *Session) NudgeCrop(dx, dy float64) {
	if s.closed || s.mode != ModeCropping || s.tempCrop == nil {
		return
	}
	s.SetTempCrop(crop.Resize(crop.HandleMove, *s.tempCrop, dx, dy))
}

// ApplyPreset replaces the pending crop with a named preset.
func (s *Session) ApplyPreset(p crop.Preset) {
	s.SetTempCrop(p.Rect)
}

// CommitCrop writes the pending crop as the committed crop and returns to
// normal mode. A crop covering the full frame is stored as no crop.
func (s *Session) CommitCrop() bool {
	if s.closed || s.mode != ModeCropping {
		return false
	}
	if s.drag != nil {
		r := s.drag.End()
		s.tempCrop = &r
		s.drag = nil
	}
	r := crop.Clamp(crop.Or(s.tempCrop))
	s.tempCrop = nil
	s.mode = ModeNormal
	if r.IsFull() {
		s.crop = nil
	} else {
		s.crop = &r
	}
	s.logger.Info("crop applied", "clip", s.id, "crop", r.String())
	s.changed()
	var out *crop.Rect
	if s.crop != nil {
		c := *s.crop
		out = &c
	}
	s.notify.OnCrop(s.id, out)
	return true
}

// DiscardCrop drops the pending crop, cancelling any drag, and returns to
// normal mode.
func (s *Session) DiscardCrop() {
	if s.closed || s.mode != ModeCropping {
		return
	}
	s.discardCrop()
	s.changed()
}

func (s *Session) discardCrop() {
	if s.drag != nil {
		s.drag.Cancel()
		s.drag = nil
	}
	s.tempCrop = nil
	s.mode = ModeNormal
}

// ToggleCrop enters cropping, or commits when already cropping.
func (s *Session) ToggleCrop() {
	if s.mode == ModeCropping {
		s.CommitCrop()
		return
	}
	s.EnterCrop()
}

// Cancel leaves the current mode without committing anything.
func (s *Session) Cancel() {
	switch s.mode {
	case ModeTrimming:
		s.DiscardTrim()
	case ModeCropping:
		s.DiscardCrop()
	}
}

// SetContainerSize records the size of the area the crop overlay is drawn
// in. A drag in progress is cancelled if the size becomes unusable.
func (s *Session) SetContainerSize(w, h float64) {
	size := crop.Size{Width: w, Height: h}
	if size == s.container {
		return
	}
	s.container = size
	if !size.Valid() && s.drag != nil {
		r := s.drag.Cancel()
		s.tempCrop = &r
		s.drag = nil
	}
	s.changed()
}

// Geometry returns the crop geometry for the current container.
func (s *Session) Geometry() crop.Geometry {
	return crop.Geometry{Container: s.container}
}

// CropOverlay returns the pending crop placed in container space. It
// reports false outside cropping mode or while the container size is unknown.
func (s *Session) CropOverlay() (crop.Box, bool) {
	if s.mode != ModeCropping || s.tempCrop == nil {
		return crop.Box{}, false
	}
	b, err := s.Geometry().ToPixels(*s.tempCrop)
	if err != nil {
		return crop.Box{}, false
	}
	return b, true
}

// BeginCropDrag starts dragging handle h from pointer position p. A drag
// already in progress is ended first.
func (s *Session) BeginCropDrag(h crop.Handle, p crop.Point) error {
	if s.closed {
		return ErrClosed
	}
	if s.mode != ModeCropping || s.tempCrop == nil {
		return ErrWrongMode
	}
	if s.drag != nil {
		r := s.drag.End()
		s.tempCrop = &r
		s.drag = nil
	}
	d, err := crop.BeginDrag(s.Geometry(), h, p, *s.tempCrop)
	if err != nil {
		return fmt.Errorf("failed to start crop drag: %w", err)
	}
	s.drag = d
	s.changed()
	return nil
}

// BeginCropDragAt hit-tests p against the crop overlay and starts a drag on
// the handle under it. It returns HandleNone without error when p misses.
func (s *Session) BeginCropDragAt(p crop.Point, tol float64) (crop.Handle, error) {
	box, ok := s.CropOverlay()
	if !ok {
		if s.closed {
			return crop.HandleNone, ErrClosed
		}
		if s.mode != ModeCropping {
			return crop.HandleNone, ErrWrongMode
		}
		return crop.HandleNone, crop.ErrGeometryUnavailable
	}
	h := crop.HitTest(box, p, tol)
	if h == crop.HandleNone {
		return h, nil
	}
	return h, s.BeginCropDrag(h, p)
}

// DragTo feeds a pointer move to the active drag.
func (s *Session) DragTo(p crop.Point) {
	if s.drag == nil {
		return
	}
	before := s.drag.Candidate()
	r := s.drag.Move(p)
	s.tempCrop = &r
	if r != before {
		s.changed()
	}
}

// EndCropDrag finishes the active drag, keeping its last candidate as the
// pending crop. The mode is unchanged.
func (s *Session) EndCropDrag() {
	if s.drag == nil {
		return
	}
	r := s.drag.End()
	s.tempCrop = &r
	s.drag = nil
	s.changed()
}

// CancelCropDrag abandons the active drag and restores the pending crop it
// started from.
func (s *Session) CancelCropDrag() {
	if s.drag == nil {
		return
	}
	r := s.drag.Cancel()
	s.tempCrop = &r
	s.drag = nil
	s.changed()
}

// SetRate sets the playback rate. The preview stays on the same raw frame,
// clamped to the new effective range.
func (s *Session) SetRate(r float64) error {
	if s.closed {
		return ErrClosed
	}
	if !timemap.ValidRate(r) {
		return fmt.Errorf("%w: %v", ErrInvalidRate, r)
	}
	if r == s.rate {
		return nil
	}
	old := s.Mapper()
	s.rate = r
	s.remap(old)
	s.changed()
	s.notify.OnSpeedChange(s.id, r)
	return nil
}

// CycleRate advances to the next rate in the speed-cycle set and returns it.
func (s *Session) CycleRate() (float64, error) {
	next := timemap.NextRate(s.rate)
	if err := s.SetRate(next); err != nil {
		return s.rate, err
	}
	return next, nil
}

// Split reports the current effective position as a cut point.
func (s *Session) Split() float64 {
	if s.closed {
		return s.position
	}
	at := s.position
	s.logger.Info("split", "clip", s.id, "at", at)
	s.notify.OnSplit(s.id, at)
	return at
}

// Duplicate asks the collection to copy the clip.
func (s *Session) Duplicate() {
	if s.closed {
		return
	}
	s.notify.OnDuplicate(s.id)
}

// Save asks the collection to save the clip and marks a save in progress.
// It returns false when a save is already running.
func (s *Session) Save() bool {
	if s.closed || s.saving {
		return false
	}
	s.saving = true
	s.changed()
	s.notify.OnSave(s.id)
	return true
}

// FinishSave clears the in-progress flag set by Save.
func (s *Session) FinishSave() {
	if !s.saving {
		return
	}
	s.saving = false
	s.changed()
}

// Delete asks the collection to delete the clip and tears the session down
// without reporting a rate.
func (s *Session) Delete() {
	if s.closed {
		return
	}
	s.notify.OnDelete(s.id)
	s.teardown()
}

// Close dismisses the editor, reporting the current rate. Pending trim and
// crop edits are dropped.
func (s *Session) Close() float64 {
	if s.closed {
		return s.rate
	}
	rate := s.rate
	s.notify.OnClose(s.id, rate)
	s.teardown()
	return rate
}

func (s *Session) teardown() {
	if s.drag != nil {
		s.drag.Cancel()
		s.drag = nil
	}
	s.tempTrim = nil
	s.tempCrop = nil
	s.mode = ModeNormal
	s.playing = false
	s.closed = true
	s.changed()
	s.observers = nil
}

// SetRawDuration records the media duration reported by the surface. Trim
// bounds past the new duration are pulled in.
func (s *Session) SetRawDuration(d float64) {
	if s.closed || d < 0 || math.IsNaN(d) || math.IsInf(d, 0) || d == s.rawDur {
		return
	}
	s.rawDur = d
	if d > 0 && s.trimEnd != nil && *s.trimEnd > d {
		*s.trimEnd = d
		if s.trimStart != nil && *s.trimStart >= d {
			s.trimStart, s.trimEnd = nil, nil
		}
	}
	s.position = s.Mapper().ClampEffective(s.position)
	s.changed()
}

// SetPosition records an effective position reported by the surface.
func (s *Session) SetPosition(t float64) {
	if s.closed {
		return
	}
	s.setPosition(t)
}

// SetPlaying records the surface's play state.
func (s *Session) SetPlaying(playing bool) {
	if s.closed || s.playing == playing {
		return
	}
	s.playing = playing
	s.changed()
}

// TogglePlay flips the requested play state.
func (s *Session) TogglePlay() {
	s.SetPlaying(!s.playing)
}

// Ended handles the surface reaching the end of the media: playback stops
// and the preview returns to the start.
func (s *Session) Ended() {
	if s.closed {
		return
	}
	s.playing = false
	s.position = 0
	s.changed()
}

// FrameUnavailable reports that the frame cannot be read for cropping. The
// first report leaves a notice; cropping is abandoned every time.
func (s *Session) FrameUnavailable(err error) {
	if s.closed {
		return
	}
	if !s.noticeShown {
		s.noticeShown = true
		s.notice = "Cropping is unavailable for this video"
		if err != nil {
			s.notice = fmt.Sprintf("Cropping is unavailable for this video: %v", err)
		}
		s.logger.Warn("frame unavailable", "clip", s.id, "error", err)
	}
	if s.mode == ModeCropping {
		s.discardCrop()
	}
	s.changed()
}

// TakeNotice returns the pending user notice, if any, and clears it.
func (s *Session) TakeNotice() string {
	n := s.notice
	s.notice = ""
	return n
}
