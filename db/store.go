package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/user/clipedit-cli/clip"
)

// ProbeStore exposes the clip table to the duration prober.
type ProbeStore struct {
	DB *sql.DB
}

var _ clip.ProbeStore = ProbeStore{}

// NextUnprobed returns a clip whose source has no duration and no recorded
// probe failure, or nil.
func (s ProbeStore) NextUnprobed(ctx context.Context) (*clip.Clip, error) {
	row, err := scanClip(s.DB.QueryRowContext(ctx, SelectNextUnprobedSQL))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select next unprobed: %w", err)
	}
	return &row.Clip, nil
}

// SetDuration stores the probed duration of the clip's source.
func (s ProbeStore) SetDuration(ctx context.Context, id string, duration float64) error {
	if _, err := s.DB.ExecContext(ctx, UpdateSourceDurationSQL, duration, id); err != nil {
		return fmt.Errorf("update source duration: %w", err)
	}
	return nil
}

// MarkProbeError records why probing the clip's source failed so it is not
// picked up again.
func (s ProbeStore) MarkProbeError(ctx context.Context, id, msg string) error {
	if _, err := s.DB.ExecContext(ctx, UpdateSourceProbeErrorSQL, msg, id); err != nil {
		return fmt.Errorf("update source probe error: %w", err)
	}
	return nil
}
