package db

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/clipedit-cli/clip"
	"github.com/user/clipedit-cli/pkg/crop"
	"github.com/user/clipedit-cli/pkg/timemap"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "nested", "clips.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClip(id string) clip.Clip {
	return clip.Clip{
		ID:        id,
		SourceURL: "/videos/match.mp4",
		Duration:  20,
		Title:     "Kickoff",
		TrimStart: timemap.Float(2),
		TrimEnd:   timemap.Float(14),
	}
}

func TestOpenRunsMigrations(t *testing.T) {
	d := openTestDB(t)

	v, err := SchemaVersion(d)
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	ran, err := runMigrations(d)
	require.NoError(t, err)
	assert.Empty(t, ran, "second run must be a no-op")
}

func TestListMigrationsSorted(t *testing.T) {
	ms, err := listMigrations(migrationsFS, "sql/migrations")
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, 1, ms[0].version)
	assert.Equal(t, 2, ms[1].version)
}

func TestInsertAndSelectClip(t *testing.T) {
	d := openTestDB(t)
	c := testClip("aaaa1111-0000-0000-0000-000000000000")
	c.PlaybackRate = timemap.Float(2)
	c.Crop = &crop.Rect{X: 0.1, Y: 0.2, Width: 0.5, Height: 0.6}
	require.NoError(t, InsertClip(d, c))

	got, err := SelectClipByID(d, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, got.Clip)
	assert.Nil(t, got.SavedAt)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = SelectClipByID(d, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestInsertClipRejectsInvalid(t *testing.T) {
	d := openTestDB(t)
	c := testClip("bad")
	c.TrimEnd = timemap.Float(1)
	err := InsertClip(d, c)
	assert.True(t, errors.Is(err, clip.ErrInvalidRecord))

	clips, err := SelectClips(d)
	require.NoError(t, err)
	assert.Empty(t, clips)
}

func TestInsertClipsSharesSource(t *testing.T) {
	d := openTestDB(t)
	a, b := testClip("a1"), testClip("b1")
	b.TrimStart, b.TrimEnd = nil, nil
	require.NoError(t, InsertClips(d, []clip.Clip{a, b}))

	var sources int
	require.NoError(t, d.QueryRow("SELECT COUNT(*) FROM sources").Scan(&sources))
	assert.Equal(t, 1, sources)

	clips, err := SelectClipsBySource(d, "/videos/match.mp4")
	require.NoError(t, err)
	require.Len(t, clips, 2)
	assert.Equal(t, "a1", clips[0].ID)
	assert.Nil(t, clips[1].TrimStart)
	assert.Nil(t, clips[1].Crop)
}

func TestInsertClipsRollsBack(t *testing.T) {
	d := openTestDB(t)
	bad := testClip("b2")
	bad.PlaybackRate = timemap.Float(-1)
	err := InsertClips(d, []clip.Clip{testClip("a2"), bad})
	require.Error(t, err)

	clips, err := SelectClips(d)
	require.NoError(t, err)
	assert.Empty(t, clips)
}

func TestResolveClipID(t *testing.T) {
	d := openTestDB(t)
	require.NoError(t, InsertClips(d, []clip.Clip{testClip("abc123"), testClip("abd456")}))

	tests := []struct {
		prefix  string
		want    string
		wantErr error
	}{
		{"abc", "abc123", nil},
		{"abd456", "abd456", nil},
		{"ab", "", ErrAmbiguous},
		{"zz", "", ErrNotFound},
		{"", "", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			got, err := ResolveClipID(d, tt.prefix)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpdates(t *testing.T) {
	d := openTestDB(t)
	c := testClip("u1")
	require.NoError(t, InsertClip(d, c))

	require.NoError(t, UpdateClipTrim(d, c.ID, timemap.Float(3), nil))
	require.NoError(t, UpdateClipRate(d, c.ID, 0.5))
	require.NoError(t, UpdateClipCrop(d, c.ID, &crop.Rect{X: 0, Y: 0, Width: 0.5, Height: 0.5}))
	require.NoError(t, UpdateClipTitle(d, c.ID, "Line-out"))
	saved := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, MarkClipSaved(d, c.ID, saved))

	got, err := SelectClipByID(d, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, *got.TrimStart)
	assert.Nil(t, got.TrimEnd)
	assert.Equal(t, 0.5, got.Rate())
	assert.Equal(t, &crop.Rect{X: 0, Y: 0, Width: 0.5, Height: 0.5}, got.Crop)
	assert.Equal(t, "Line-out", got.Title)
	require.NotNil(t, got.SavedAt)
	assert.True(t, saved.Equal(*got.SavedAt))

	require.NoError(t, UpdateClipCrop(d, c.ID, nil))
	got, err = SelectClipByID(d, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Crop)

	assert.True(t, errors.Is(UpdateClipRate(d, "nope", 1), ErrNotFound))
}

func TestDeleteClip(t *testing.T) {
	d := openTestDB(t)
	require.NoError(t, InsertClip(d, testClip("d1")))
	require.NoError(t, DeleteClip(d, "d1"))
	assert.True(t, errors.Is(DeleteClip(d, "d1"), ErrNotFound))
}

func TestSplitClip(t *testing.T) {
	d := openTestDB(t)
	c := testClip("s1")
	c.PlaybackRate = timemap.Float(2)
	require.NoError(t, InsertClip(d, c))

	// effective 2s at 2x is raw 2 + 4 = 6
	second, err := SplitClip(d, c.ID, 2)
	require.NoError(t, err)

	first, err := SelectClipByID(d, c.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2, *first.TrimStart, timemap.Tolerance)
	assert.InDelta(t, 6, *first.TrimEnd, timemap.Tolerance)

	stored, err := SelectClipByID(d, second.ID)
	require.NoError(t, err)
	assert.InDelta(t, 6, *stored.TrimStart, timemap.Tolerance)
	assert.InDelta(t, 14, *stored.TrimEnd, timemap.Tolerance)
	assert.Equal(t, "Kickoff (2)", stored.Title)
	assert.Equal(t, 2.0, stored.Rate())

	_, err = SplitClip(d, c.ID, 100)
	assert.True(t, errors.Is(err, clip.ErrInvalidRecord))
}

func TestDuplicateClip(t *testing.T) {
	d := openTestDB(t)
	require.NoError(t, InsertClip(d, testClip("dup")))

	copied, err := DuplicateClip(d, "dup")
	require.NoError(t, err)
	assert.NotEqual(t, "dup", copied.ID)

	clips, err := SelectClips(d)
	require.NoError(t, err)
	assert.Len(t, clips, 2)

	_, err = DuplicateClip(d, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestProbeStore(t *testing.T) {
	d := openTestDB(t)
	store := ProbeStore{DB: d}
	ctx := context.Background()

	c := testClip("p1")
	c.Duration = 0
	c.TrimStart, c.TrimEnd = nil, nil
	require.NoError(t, InsertClip(d, c))

	next, err := store.NextUnprobed(ctx)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "p1", next.ID)

	require.NoError(t, store.SetDuration(ctx, "p1", 42.5))
	next, err = store.NextUnprobed(ctx)
	require.NoError(t, err)
	assert.Nil(t, next)

	got, err := SelectClipByID(d, "p1")
	require.NoError(t, err)
	assert.Equal(t, 42.5, got.Duration)

	other := testClip("p2")
	other.SourceURL = "/videos/broken.mp4"
	other.Duration = 0
	other.TrimStart, other.TrimEnd = nil, nil
	require.NoError(t, InsertClip(d, other))
	require.NoError(t, store.MarkProbeError(ctx, "p2", "no video stream"))
	next, err = store.NextUnprobed(ctx)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestCollectionPersistsNotifications(t *testing.T) {
	d := openTestDB(t)
	require.NoError(t, InsertClip(d, testClip("c1")))
	coll := NewCollection(d, quietLogger())
	coll.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	coll.OnTrim("c1", 4, 10)
	coll.OnSpeedChange("c1", 1.5)
	coll.OnCrop("c1", &crop.Rect{X: 0.1, Y: 0.1, Width: 0.8, Height: 0.8})
	coll.OnSave("c1")
	assert.Equal(t, "Saved", coll.TakeStatus())
	assert.Empty(t, coll.TakeStatus())

	got, err := SelectClipByID(d, "c1")
	require.NoError(t, err)
	assert.Equal(t, 4.0, *got.TrimStart)
	assert.Equal(t, 10.0, *got.TrimEnd)
	assert.Equal(t, 1.5, got.Rate())
	require.NotNil(t, got.Crop)
	require.NotNil(t, got.SavedAt)

	coll.OnCrop("c1", nil)
	coll.OnClose("c1", 0.5)
	got, err = SelectClipByID(d, "c1")
	require.NoError(t, err)
	assert.Nil(t, got.Crop)
	assert.Equal(t, 0.5, got.Rate())

	coll.OnDuplicate("c1")
	coll.OnSplit("c1", 2)
	assert.Len(t, coll.Created(), 2)
	assert.True(t, strings.HasPrefix(coll.TakeStatus(), "Split into"))

	coll.OnDelete("c1")
	assert.True(t, coll.Deleted())
	_, err = SelectClipByID(d, "c1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCollectionReportsFailures(t *testing.T) {
	d := openTestDB(t)
	coll := NewCollection(d, quietLogger())

	coll.OnSpeedChange("ghost", 2)
	assert.True(t, strings.HasPrefix(coll.TakeStatus(), "Failed to save speed"))

	coll.OnDelete("ghost")
	assert.False(t, coll.Deleted())
	assert.Contains(t, coll.TakeStatus(), "Failed to delete")
}

func TestCollectionRecordDuration(t *testing.T) {
	d := openTestDB(t)
	c := testClip("r1")
	c.Duration = 0
	c.TrimStart, c.TrimEnd = nil, nil
	require.NoError(t, InsertClip(d, c))
	coll := NewCollection(d, quietLogger())

	coll.RecordDuration("r1", 0)
	coll.RecordDuration("r1", 31)
	got, err := SelectClipByID(d, "r1")
	require.NoError(t, err)
	assert.Equal(t, 31.0, got.Duration)
}
