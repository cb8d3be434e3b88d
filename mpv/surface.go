package mpv

import (
	"fmt"

	"github.com/user/clipedit-cli/pkg/crop"
)

// Observed property IDs.
const (
	obsTimePos = iota + 1
	obsDuration
	obsPause
	obsEOF
)

// LoadFile replaces the current file with url.
func (c *Client) LoadFile(url string) error {
	_, err := c.sendCommand("loadfile", url, "replace")
	return err
}

// Seek seeks to an absolute raw position in seconds.
func (c *Client) Seek(seconds float64) error {
	_, err := c.sendCommand("seek", seconds, "absolute+exact")
	return err
}

// SetSpeed sets the playback speed.
func (c *Client) SetSpeed(speed float64) error {
	return c.SetProperty("speed", speed)
}

// SetPause pauses or resumes playback.
func (c *Client) SetPause(paused bool) error {
	return c.SetProperty("pause", paused)
}

// TogglePause flips the pause state.
func (c *Client) TogglePause() error {
	_, err := c.sendCommand("cycle", "pause")
	return err
}

// Observe subscribes to the properties the editor follows: position,
// duration, pause state and end of file.
func (c *Client) Observe() error {
	props := []struct {
		id   int
		name string
	}{
		{obsTimePos, "time-pos"},
		{obsDuration, "duration"},
		{obsPause, "pause"},
		{obsEOF, "eof-reached"},
	}
	for _, p := range props {
		if err := c.ObserveProperty(p.id, p.name); err != nil {
			return fmt.Errorf("failed to observe %s: %w", p.name, err)
		}
	}
	return nil
}

// Surface adapts a Client to the playback surface interfaces.
type Surface struct {
	*Client
}

// NewSurface wraps c.
func NewSurface(c *Client) *Surface {
	return &Surface{Client: c}
}

func (s *Surface) Load(url string) error       { return s.LoadFile(url) }
func (s *Surface) SetRate(rate float64) error  { return s.SetSpeed(rate) }
func (s *Surface) SeekTo(raw float64) error    { return s.Seek(raw) }
func (s *Surface) SetPaused(paused bool) error { return s.SetPause(paused) }

// FrameSize returns the decoded video size. It fails when the file has no
// video track or has not been loaded yet.
func (s *Surface) FrameSize() (crop.Size, error) {
	w, err := s.GetProperty("video-params/w")
	if err != nil {
		return crop.Size{}, fmt.Errorf("failed to read video width: %w", err)
	}
	h, err := s.GetProperty("video-params/h")
	if err != nil {
		return crop.Size{}, fmt.Errorf("failed to read video height: %w", err)
	}
	fw, err := toFloat64(w)
	if err != nil {
		return crop.Size{}, err
	}
	fh, err := toFloat64(h)
	if err != nil {
		return crop.Size{}, err
	}
	return crop.Size{Width: fw, Height: fh}, nil
}

// SetCrop shows r through mpv's video-crop property. A nil rect removes the
// crop.
func (s *Surface) SetCrop(r *crop.Rect) error {
	if r == nil {
		return s.SetProperty("video-crop", "")
	}
	size, err := s.FrameSize()
	if err != nil {
		return err
	}
	if !size.Valid() {
		return crop.ErrGeometryUnavailable
	}
	return s.SetProperty("video-crop", crop.PixelCrop(*r, int(size.Width), int(size.Height)))
}

// Handler receives surface reports translated from mpv events.
type Handler interface {
	OnMetadataLoaded(duration float64)
	OnPositionChanged(raw float64)
	OnPlayStateChanged(playing bool)
	OnEnded()
}

// Dispatch translates one mpv event into a Handler call. Events the editor
// does not follow are ignored.
func Dispatch(ev Event, h Handler) {
	if ev.Name != "property-change" || ev.Data == nil {
		return
	}
	switch ev.Property {
	case "time-pos":
		if v, err := toFloat64(ev.Data); err == nil {
			h.OnPositionChanged(v)
		}
	case "duration":
		if v, err := toFloat64(ev.Data); err == nil {
			h.OnMetadataLoaded(v)
		}
	case "pause":
		if paused, ok := ev.Data.(bool); ok {
			h.OnPlayStateChanged(!paused)
		}
	case "eof-reached":
		if eof, ok := ev.Data.(bool); ok && eof {
			h.OnEnded()
		}
	}
}
