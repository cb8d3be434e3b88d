package db

import (
	"time"

	"github.com/user/clipedit-cli/clip"
)

// Source represents a row in the sources table.
type Source struct {
	ID         int64
	URL        string
	Filename   string
	Extension  string
	Duration   float64
	ProbeError string
}

// ClipRow is a clip record together with its bookkeeping columns.
type ClipRow struct {
	clip.Clip
	CreatedAt time.Time
	UpdatedAt time.Time
	SavedAt   *time.Time
}
