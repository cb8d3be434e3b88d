package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/clipedit-cli/editor"
	"github.com/user/clipedit-cli/pkg/crop"
)

// Collection persists editor notifications to the clip table. Failures are
// logged and kept as the last status message; they never reach the editor.
type Collection struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time

	status  string
	created []string
	deleted bool
}

var _ editor.Notifier = (*Collection)(nil)

// NewCollection returns a Collection writing to db.
func NewCollection(db *sql.DB, logger *slog.Logger) *Collection {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collection{db: db, logger: logger, now: time.Now}
}

// TakeStatus returns the last status message and clears it.
func (c *Collection) TakeStatus() string {
	s := c.status
	c.status = ""
	return s
}

// Created returns the IDs of clips created by split or duplicate.
func (c *Collection) Created() []string {
	return append([]string(nil), c.created...)
}

// Deleted reports whether the edited clip was deleted.
func (c *Collection) Deleted() bool { return c.deleted }

func (c *Collection) fail(op, id string, err error) {
	c.logger.Warn("clip collection update failed", "op", op, "clip", id, "error", err)
	c.status = fmt.Sprintf("Failed to %s: %v", op, err)
}

func (c *Collection) OnTrim(id string, start, end float64) {
	if err := UpdateClipTrim(c.db, id, &start, &end); err != nil {
		c.fail("save trim", id, err)
		return
	}
	c.logger.Debug("trim stored", "clip", id, "start", start, "end", end)
}

func (c *Collection) OnSpeedChange(id string, rate float64) {
	if err := UpdateClipRate(c.db, id, rate); err != nil {
		c.fail("save speed", id, err)
	}
}

func (c *Collection) OnCrop(id string, r *crop.Rect) {
	if err := UpdateClipCrop(c.db, id, r); err != nil {
		c.fail("save crop", id, err)
	}
}

func (c *Collection) OnSplit(id string, at float64) {
	second, err := SplitClip(c.db, id, at)
	if err != nil {
		c.fail("split", id, err)
		return
	}
	c.created = append(c.created, second.ID)
	c.status = fmt.Sprintf("Split into %s and %s", shortID(id), shortID(second.ID))
	c.logger.Info("clip split", "clip", id, "at", at, "new", second.ID)
}

func (c *Collection) OnDelete(id string) {
	if err := DeleteClip(c.db, id); err != nil {
		c.fail("delete", id, err)
		return
	}
	c.deleted = true
	c.logger.Info("clip deleted", "clip", id)
}

func (c *Collection) OnDuplicate(id string) {
	dup, err := DuplicateClip(c.db, id)
	if err != nil {
		c.fail("duplicate", id, err)
		return
	}
	c.created = append(c.created, dup.ID)
	c.status = fmt.Sprintf("Duplicated as %s", shortID(dup.ID))
}

func (c *Collection) OnSave(id string) {
	if err := MarkClipSaved(c.db, id, c.now()); err != nil {
		c.fail("save", id, err)
		return
	}
	c.status = "Saved"
}

func (c *Collection) OnClose(id string, rate float64) {
	if err := UpdateClipRate(c.db, id, rate); err != nil {
		c.fail("save speed", id, err)
	}
}

// RecordDuration stores a duration reported by the playback surface.
func (c *Collection) RecordDuration(id string, duration float64) {
	if duration <= 0 {
		return
	}
	if err := UpdateSourceDuration(c.db, id, duration); err != nil {
		c.logger.Warn("failed to store source duration", "clip", id, "error", err)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
