// Package clip defines the clip record exchanged between the editor and the
// clip collection, its JSON wire format, and the records derived from it.
package clip

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/user/clipedit-cli/pkg/crop"
	"github.com/user/clipedit-cli/pkg/timemap"
)

// ErrInvalidRecord is returned for records that break the clip invariants.
var ErrInvalidRecord = errors.New("clip: invalid record")

// Clip is one non-destructive edit of a source video. Optional fields are
// nil when unset: no trim means the full range, no rate means 1x and no crop
// means the full frame.
type Clip struct {
	ID           string     `json:"id"`
	SourceURL    string     `json:"sourceUrl"`
	Duration     float64    `json:"duration"`
	Title        string     `json:"title,omitempty"`
	TrimStart    *float64   `json:"trimStart,omitempty"`
	TrimEnd      *float64   `json:"trimEnd,omitempty"`
	PlaybackRate *float64   `json:"playbackRate,omitempty"`
	Crop         *crop.Rect `json:"crop,omitempty"`
}

// New returns a clip for sourceURL with a fresh ID.
func New(sourceURL, title string, duration float64) Clip {
	return Clip{
		ID:        NewID(),
		SourceURL: sourceURL,
		Duration:  duration,
		Title:     title,
	}
}

// NewID returns a new random clip ID.
func NewID() string {
	return uuid.NewString()
}

// Rate returns the playback rate, 1 when unset.
func (c Clip) Rate() float64 {
	if c.PlaybackRate == nil {
		return 1
	}
	return *c.PlaybackRate
}

// Mapper returns the time mapper for the clip's current trim and rate.
func (c Clip) Mapper() timemap.Mapper {
	return timemap.New(c.Duration, c.TrimStart, c.TrimEnd, c.Rate())
}

// DisplayName returns the title, or a short form of the ID.
func (c Clip) DisplayName() string {
	if strings.TrimSpace(c.Title) != "" {
		return c.Title
	}
	if len(c.ID) > 8 {
		return c.ID[:8]
	}
	return c.ID
}

// Check verifies the record invariants that the schema cannot express.
func (c Clip) Check() error {
	if c.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	if c.SourceURL == "" {
		return fmt.Errorf("%w: missing sourceUrl", ErrInvalidRecord)
	}
	if c.Duration < 0 {
		return fmt.Errorf("%w: negative duration %v", ErrInvalidRecord, c.Duration)
	}
	if c.PlaybackRate != nil && !timemap.ValidRate(*c.PlaybackRate) {
		return fmt.Errorf("%w: playbackRate must be positive, got %v", ErrInvalidRecord, *c.PlaybackRate)
	}
	m := c.Mapper()
	start, end := m.ActiveStart(), m.ActiveEnd()
	if start < 0 {
		return fmt.Errorf("%w: trimStart %v is negative", ErrInvalidRecord, start)
	}
	if c.TrimStart != nil && c.TrimEnd != nil && end <= start {
		return fmt.Errorf("%w: trimEnd %v must be after trimStart %v", ErrInvalidRecord, end, start)
	}
	if c.Duration > 0 && c.TrimEnd != nil && end > c.Duration {
		return fmt.Errorf("%w: trimEnd %v exceeds duration %v", ErrInvalidRecord, end, c.Duration)
	}
	if c.Crop != nil && !c.Crop.Valid() {
		return fmt.Errorf("%w: crop %s out of bounds", ErrInvalidRecord, c.Crop)
	}
	return nil
}

// Clone returns a deep copy of c.
func (c Clip) Clone() Clip {
	out := c
	out.TrimStart = clonePtr(c.TrimStart)
	out.TrimEnd = clonePtr(c.TrimEnd)
	out.PlaybackRate = clonePtr(c.PlaybackRate)
	if c.Crop != nil {
		r := *c.Crop
		out.Crop = &r
	}
	return out
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
