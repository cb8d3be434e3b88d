package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/user/clipedit-cli/clip"
	"github.com/user/clipedit-cli/pkg/crop"
)

// ErrNotFound is returned when no clip matches an ID.
var ErrNotFound = errors.New("clip not found")

// ErrAmbiguous is returned when an ID prefix matches more than one clip.
var ErrAmbiguous = errors.New("clip id prefix is ambiguous")

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ensureSource returns the source ID for url, inserting a row if needed.
// A positive duration is stored when the row has none yet.
func ensureSource(ctx context.Context, q querier, url string, duration float64) (int64, error) {
	var id int64
	var stored float64
	err := q.QueryRowContext(ctx, SelectSourceByURLSQL, url).Scan(&id, &stored)
	if err == nil {
		if duration > 0 && stored <= 0 {
			if _, err := q.ExecContext(ctx, "UPDATE sources SET duration = ? WHERE id = ?", duration, id); err != nil {
				return 0, fmt.Errorf("update source duration: %w", err)
			}
		}
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("select source by url: %w", err)
	}

	base := filepath.Base(url)
	ext := strings.TrimPrefix(filepath.Ext(url), ".")
	result, err := q.ExecContext(ctx, InsertSourceSQL, url, base, ext, duration)
	if err != nil {
		return 0, fmt.Errorf("insert source: %w", err)
	}
	return result.LastInsertId()
}

func insertClip(ctx context.Context, q querier, c clip.Clip) error {
	sourceID, err := ensureSource(ctx, q, c.SourceURL, c.Duration)
	if err != nil {
		return err
	}
	x, y, w, h := cropArgs(c.Crop)
	_, err = q.ExecContext(ctx, InsertClipSQL, c.ID, sourceID, c.Title,
		nullFloat(c.TrimStart), nullFloat(c.TrimEnd), nullFloat(c.PlaybackRate), x, y, w, h)
	if err != nil {
		return fmt.Errorf("insert clip: %w", err)
	}
	return nil
}

// InsertClip validates and stores a new clip.
func InsertClip(db *sql.DB, c clip.Clip) error {
	if err := c.Check(); err != nil {
		return err
	}
	return insertClip(context.Background(), db, c)
}

// InsertClips stores several clips in one transaction.
func InsertClips(db *sql.DB, clips []clip.Clip) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	for _, c := range clips {
		if err := c.Check(); err != nil {
			tx.Rollback()
			return err
		}
		if err := insertClip(context.Background(), tx, c); err != nil {
			tx.Rollback()
			return fmt.Errorf("clip %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClip(r rowScanner) (*ClipRow, error) {
	var (
		row                        ClipRow
		trimStart, trimEnd, rate   sql.NullFloat64
		cropX, cropY, cropW, cropH sql.NullFloat64
		savedAt                    sql.NullTime
	)
	err := r.Scan(&row.ID, &row.SourceURL, &row.Duration, &row.Title, &trimStart, &trimEnd, &rate,
		&cropX, &cropY, &cropW, &cropH, &row.CreatedAt, &row.UpdatedAt, &savedAt)
	if err != nil {
		return nil, err
	}
	row.TrimStart = floatPtr(trimStart)
	row.TrimEnd = floatPtr(trimEnd)
	row.PlaybackRate = floatPtr(rate)
	if cropX.Valid && cropY.Valid && cropW.Valid && cropH.Valid {
		row.Crop = &crop.Rect{X: cropX.Float64, Y: cropY.Float64, Width: cropW.Float64, Height: cropH.Float64}
	}
	if savedAt.Valid {
		t := savedAt.Time
		row.SavedAt = &t
	}
	return &row, nil
}

func selectClips(db *sql.DB, query string, args ...any) ([]ClipRow, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clips []ClipRow
	for rows.Next() {
		c, err := scanClip(rows)
		if err != nil {
			return nil, err
		}
		clips = append(clips, *c)
	}
	return clips, rows.Err()
}

// SelectClips returns all clips in creation order.
func SelectClips(db *sql.DB) ([]ClipRow, error) {
	return selectClips(db, SelectClipsSQL)
}

// SelectClipsBySource returns the clips cut from url.
func SelectClipsBySource(db *sql.DB, url string) ([]ClipRow, error) {
	return selectClips(db, SelectClipsBySourceSQL, url)
}

// SelectClipByID returns one clip, or ErrNotFound.
func SelectClipByID(db *sql.DB, id string) (*ClipRow, error) {
	c, err := scanClip(db.QueryRow(SelectClipByIDSQL, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("select clip: %w", err)
	}
	return c, nil
}

// ResolveClipID expands a unique ID prefix to the full clip ID.
func ResolveClipID(db *sql.DB, prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("%w: empty id", ErrNotFound)
	}
	rows, err := db.Query(SelectClipIDsByPrefixSQL, prefix)
	if err != nil {
		return "", fmt.Errorf("resolve clip id: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch {
	case len(ids) == 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case len(ids) > 1 && ids[0] != prefix:
		return "", fmt.Errorf("%w: %s", ErrAmbiguous, prefix)
	}
	return ids[0], nil
}

func execOne(db *sql.DB, what, query string, args ...any) error {
	result, err := db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateClipTrim sets the raw trim bounds; nil clears a bound.
func UpdateClipTrim(db *sql.DB, id string, start, end *float64) error {
	return execOne(db, "update clip trim", UpdateClipTrimSQL, nullFloat(start), nullFloat(end), id)
}

// UpdateClipRate sets the playback rate.
func UpdateClipRate(db *sql.DB, id string, rate float64) error {
	return execOne(db, "update clip rate", UpdateClipRateSQL, rate, id)
}

// UpdateClipCrop sets the crop; nil stores no crop.
func UpdateClipCrop(db *sql.DB, id string, r *crop.Rect) error {
	x, y, w, h := cropArgs(r)
	return execOne(db, "update clip crop", UpdateClipCropSQL, x, y, w, h, id)
}

// UpdateClipTitle renames a clip.
func UpdateClipTitle(db *sql.DB, id, title string) error {
	return execOne(db, "update clip title", UpdateClipTitleSQL, title, id)
}

// MarkClipSaved stamps the clip's saved_at.
func MarkClipSaved(db *sql.DB, id string, at time.Time) error {
	return execOne(db, "mark clip saved", UpdateClipSavedSQL, at, id)
}

// DeleteClip removes a clip. It returns ErrNotFound if nothing was deleted.
func DeleteClip(db *sql.DB, id string) error {
	return execOne(db, "delete clip", DeleteClipSQL, id)
}

// SplitClip replaces the clip with the two halves of a cut at effective
// time at and returns the new second half.
func SplitClip(db *sql.DB, id string, at float64) (*clip.Clip, error) {
	row, err := SelectClipByID(db, id)
	if err != nil {
		return nil, err
	}
	first, second, err := clip.Split(row.Clip, at)
	if err != nil {
		return nil, err
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	if _, err := tx.Exec(UpdateClipTrimSQL, nullFloat(first.TrimStart), nullFloat(first.TrimEnd), id); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("update first half: %w", err)
	}
	if err := insertClip(context.Background(), tx, second); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("insert second half: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit split: %w", err)
	}
	return &second, nil
}

// DuplicateClip copies a clip under a new ID and returns the copy.
func DuplicateClip(db *sql.DB, id string) (*clip.Clip, error) {
	row, err := SelectClipByID(db, id)
	if err != nil {
		return nil, err
	}
	dup := clip.Duplicate(row.Clip)
	if err := insertClip(context.Background(), db, dup); err != nil {
		return nil, err
	}
	return &dup, nil
}

// UpdateSourceDuration stores the media duration of the clip's source.
func UpdateSourceDuration(db *sql.DB, clipID string, duration float64) error {
	return execOne(db, "update source duration", UpdateSourceDurationSQL, duration, clipID)
}

func cropArgs(r *crop.Rect) (x, y, w, h any) {
	if r == nil {
		return nil, nil, nil, nil
	}
	return r.X, r.Y, r.Width, r.Height
}

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
