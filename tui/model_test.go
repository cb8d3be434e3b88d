package tui

import (
	"database/sql"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/clipedit-cli/clip"
	"github.com/user/clipedit-cli/config"
	"github.com/user/clipedit-cli/db"
	"github.com/user/clipedit-cli/editor"
	"github.com/user/clipedit-cli/logging"
	"github.com/user/clipedit-cli/mpv"
	"github.com/user/clipedit-cli/pkg/crop"
	"github.com/user/clipedit-cli/pkg/timemap"
	"github.com/user/clipedit-cli/playback"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

type fakeSurface struct {
	paused []bool
	seeks  []float64
	rates  []float64
}

func (f *fakeSurface) Load(string) error           { return nil }
func (f *fakeSurface) SetRate(r float64) error     { f.rates = append(f.rates, r); return nil }
func (f *fakeSurface) SeekTo(raw float64) error    { f.seeks = append(f.seeks, raw); return nil }
func (f *fakeSurface) SetPaused(paused bool) error { f.paused = append(f.paused, paused); return nil }

type fakeEvents struct {
	ch        chan mpv.Event
	connected bool
}

func (f *fakeEvents) Events() <-chan mpv.Event { return f.ch }
func (f *fakeEvents) IsConnected() bool        { return f.connected }

type harness struct {
	m       *Model
	db      *sql.DB
	session *editor.Session
	surface *fakeSurface
	logger  *logging.Logger
}

// newHarness opens a 20s source trimmed to 2..14 at 2x, so the clip plays
// for 6 effective seconds, in a 120x40 terminal.
func newHarness(t *testing.T) *harness {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "clips.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	c := clip.Clip{
		ID:           "c1",
		SourceURL:    "/videos/match.mp4",
		Duration:     20,
		Title:        "Kickoff",
		TrimStart:    timemap.Float(2),
		TrimEnd:      timemap.Float(14),
		PlaybackRate: timemap.Float(2),
	}
	require.NoError(t, db.InsertClip(d, c))

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	collection := db.NewCollection(d, quiet)
	session := editor.New(c, collection, editor.WithLogger(quiet))
	surface := &fakeSurface{}
	adapter := playback.NewAdapter(session, surface, quiet)
	require.NoError(t, adapter.Open(c.SourceURL))

	logger := logging.NewWriter(io.Discard, slog.LevelInfo, "text")
	m := NewModel(Options{
		Session:    session,
		Adapter:    adapter,
		Events:     &fakeEvents{ch: make(chan mpv.Event, 4), connected: true},
		Collection: collection,
		Logger:     logger,
		Title:      c.Title,
	})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return &harness{m: m, db: d, session: session, surface: surface, logger: logger}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "delete":
		return tea.KeyMsg{Type: tea.KeyDelete}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (h *harness) press(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = h.m.Update(keyMsg(k))
	}
	return cmd
}

func (h *harness) command(line string) {
	h.press(":")
	for _, r := range line {
		h.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	h.press("enter")
}

func (h *harness) stored(t *testing.T, id string) clip.Clip {
	t.Helper()
	row, err := db.SelectClipByID(h.db, id)
	require.NoError(t, err)
	return row.Clip
}

func TestResizeSetsTrackAndCropGrid(t *testing.T) {
	h := newHarness(t)

	// 120 columns: track of 95 cells, preview column of 80 with a 78x31 grid.
	assert.Equal(t, 94.0, h.m.scrubber.Width())
	assert.Equal(t, crop.Size{Width: 77, Height: 30}, h.session.State().Container)
}

func TestPlayToggle(t *testing.T) {
	h := newHarness(t)

	h.press("space")
	assert.True(t, h.session.State().Playing)
	require.NotEmpty(t, h.surface.paused)
	assert.False(t, h.surface.paused[len(h.surface.paused)-1])

	h.press("space")
	assert.False(t, h.session.State().Playing)
}

func TestPlayAtEndRestarts(t *testing.T) {
	h := newHarness(t)
	h.session.Seek(6)
	require.Equal(t, 6.0, h.session.Position())

	h.press("space")
	assert.Equal(t, 0.0, h.session.Position())
	assert.True(t, h.session.State().Playing)
}

func TestStepSeek(t *testing.T) {
	h := newHarness(t)

	h.press("l")
	assert.Equal(t, 1.0, h.session.Position())

	h.press(">", "l")
	assert.Equal(t, 2.0, h.m.stepSize)
	assert.Equal(t, 3.0, h.session.Position())

	h.press("<", "<", "h")
	assert.Equal(t, 0.5, h.m.stepSize)
	assert.Equal(t, 2.5, h.session.Position())
}

func TestStepSizeBounds(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 10; i++ {
		h.press(">")
	}
	assert.Equal(t, 30.0, h.m.stepSize)
	for i := 0; i < 10; i++ {
		h.press("<")
	}
	assert.Equal(t, 0.1, h.m.stepSize)
}

func TestTrimWithKeys(t *testing.T) {
	h := newHarness(t)

	h.press("t")
	require.Equal(t, editor.ModeTrimming, h.session.Mode())

	h.press("l", "[", "l", "l", "]", "enter")
	assert.Equal(t, editor.ModeNormal, h.session.Mode())
	assert.Equal(t, 2.0, h.session.EffectiveDuration())

	// effective 1..3 at 2x from raw 2 is raw 4..8
	c := h.stored(t, "c1")
	require.NotNil(t, c.TrimStart)
	assert.InDelta(t, 4.0, *c.TrimStart, 1e-9)
	assert.InDelta(t, 8.0, *c.TrimEnd, 1e-9)
}

func TestTrimMarkEntersTrimMode(t *testing.T) {
	h := newHarness(t)
	h.press("l", "l", "]")

	st := h.session.State()
	assert.Equal(t, editor.ModeTrimming, st.Mode)
	require.NotNil(t, st.TempTrim)
	assert.Equal(t, 2.0, st.TempTrim.End)
}

func TestEscClosesKeepingRateOnly(t *testing.T) {
	h := newHarness(t)
	before := h.stored(t, "c1")

	h.press("s", "t", "l", "]")
	require.Equal(t, editor.ModeTrimming, h.session.Mode())
	rate := h.session.Rate()

	cmd := h.press("esc")
	assert.True(t, h.session.Closed())
	assert.True(t, h.m.quitting)
	assert.NotNil(t, cmd)
	assert.Empty(t, h.m.View())

	after := h.stored(t, "c1")
	assert.Equal(t, rate, after.Rate())
	assert.Equal(t, before.TrimStart, after.TrimStart, "pending trim is dropped")
	assert.Equal(t, before.TrimEnd, after.TrimEnd, "pending trim is dropped")
}

func TestCropPresetNudgeCommit(t *testing.T) {
	h := newHarness(t)

	h.press("c", "2", "right", "enter")
	st := h.session.State()
	assert.Equal(t, editor.ModeNormal, st.Mode)
	require.NotNil(t, st.Crop)
	assert.InDelta(t, 0.11, st.Crop.X, 1e-9)
	assert.InDelta(t, 0.8, st.Crop.Width, 1e-9)

	c := h.stored(t, "c1")
	require.NotNil(t, c.Crop)
	assert.InDelta(t, 0.11, c.Crop.X, 1e-9)
}

func TestCropDiscard(t *testing.T) {
	h := newHarness(t)
	h.press("c", "3", "x")
	assert.Equal(t, editor.ModeNormal, h.session.Mode())
	assert.Nil(t, h.session.State().Crop)
}

func TestArrowsSeekOutsideCrop(t *testing.T) {
	h := newHarness(t)
	h.press("right", "right", "left")
	assert.Equal(t, 1.0, h.session.Position())
}

func TestCropDragWithPointer(t *testing.T) {
	h := newHarness(t)
	h.press("c", "2")

	// 80% preset on a 77x30 grid: box from (7.7, 3) to (69.3, 27)
	h.m.pointerPreview(pointerPress, 69, 27)
	require.True(t, h.m.cropDrag)
	assert.Equal(t, crop.HandleSE, h.session.State().DragHandle)

	h.m.pointerPreview(pointerMove, 64, 25)
	h.m.pointerPreview(pointerRelease, 59, 22)
	assert.False(t, h.m.cropDrag)

	st := h.session.State()
	assert.False(t, st.Dragging())
	require.NotNil(t, st.TempCrop)
	assert.InDelta(t, 0.8-10.0/77, st.TempCrop.Width, 1e-9)
	assert.InDelta(t, 0.8-5.0/30, st.TempCrop.Height, 1e-9)
	assert.InDelta(t, 0.1, st.TempCrop.X, 1e-9)
}

func TestCropDragEscCloses(t *testing.T) {
	h := newHarness(t)
	h.press("c", "2")

	h.m.pointerPreview(pointerPress, 38, 15)
	require.Equal(t, crop.HandleMove, h.session.State().DragHandle)
	h.m.pointerPreview(pointerMove, 45, 15)

	h.press("esc")
	assert.False(t, h.m.cropDrag)
	assert.True(t, h.session.Closed())
	assert.Nil(t, h.stored(t, "c1").Crop, "crop under drag is not saved")
}

func TestPreviewPressIgnoredOutsideCrop(t *testing.T) {
	h := newHarness(t)
	h.m.pointerPreview(pointerPress, 10, 10)
	assert.False(t, h.m.cropDrag)
	assert.Equal(t, editor.ModeNormal, h.session.Mode())
}

func TestTimelineScrub(t *testing.T) {
	h := newHarness(t)

	h.m.pointerTimeline(pointerPress, 47)
	assert.True(t, h.m.scrubbing)
	assert.InDelta(t, 3.0, h.session.Position(), 1e-9)

	h.m.pointerTimeline(pointerMove, 200)
	assert.InDelta(t, 6.0, h.session.Position(), 1e-9)

	h.m.pointerTimeline(pointerRelease, 0)
	assert.False(t, h.m.scrubbing)
	assert.Equal(t, 0.0, h.session.Position())
}

func TestTimelineDragsTrimMarker(t *testing.T) {
	h := newHarness(t)
	h.press("t")

	h.m.pointerTimeline(pointerPress, 1)
	h.m.pointerTimeline(pointerMove, 47)
	h.m.pointerTimeline(pointerRelease, 47)

	st := h.session.State()
	require.NotNil(t, st.TempTrim)
	assert.InDelta(t, 3.0, st.TempTrim.Start, 1e-9)
	assert.InDelta(t, 6.0, st.TempTrim.End, 1e-9)
}

func TestSplitNarrowsSessionToFirstHalf(t *testing.T) {
	h := newHarness(t)
	h.session.Seek(3)

	h.press("/")
	assert.InDelta(t, 3.0, h.session.EffectiveDuration(), 1e-9)
	assert.Contains(t, h.m.commandInput.Result, "Split into")
	assert.False(t, h.m.commandInput.IsError)

	first := h.stored(t, "c1")
	assert.InDelta(t, 8.0, *first.TrimEnd, 1e-9)

	rows, err := db.SelectClips(h.db)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		if r.Clip.ID != "c1" {
			assert.Equal(t, "Kickoff (2)", r.Clip.Title)
			assert.InDelta(t, 8.0, *r.Clip.TrimStart, 1e-9)
		}
	}
}

func TestSplitAtStartFails(t *testing.T) {
	h := newHarness(t)

	h.press("/")
	assert.True(t, h.m.commandInput.IsError)
	assert.InDelta(t, 6.0, h.session.EffectiveDuration(), 1e-9)
}

func TestDuplicate(t *testing.T) {
	h := newHarness(t)
	h.press("d")
	assert.Contains(t, h.m.commandInput.Result, "Duplicated as")

	rows, err := db.SelectClips(h.db)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestSaveShowsIndicator(t *testing.T) {
	h := newHarness(t)

	cmd := h.press("ctrl+s")
	require.NotNil(t, cmd)
	assert.True(t, h.session.State().Saving)
	assert.Contains(t, ansi.Strip(h.m.View()), "Saving…")

	assert.Nil(t, h.press("ctrl+s"), "second save while saving is ignored")

	h.m.Update(saveDoneMsg{})
	assert.False(t, h.session.State().Saving)
	assert.Equal(t, "Saved", h.m.commandInput.Result)
}

func TestDeleteConfirmed(t *testing.T) {
	h := newHarness(t)

	h.press("delete")
	require.NotNil(t, h.m.form)
	assert.Equal(t, formDelete, h.m.formKind)

	h.m.confirmDelete = true
	kind := h.m.formKind
	h.m.closeForm()
	cmd := h.m.finishForm(kind)

	assert.NotNil(t, cmd)
	assert.True(t, h.session.Closed())
	_, err := db.SelectClipByID(h.db, "c1")
	assert.Error(t, err)
}

func TestDeleteFormEscKeepsClip(t *testing.T) {
	h := newHarness(t)
	h.press("delete", "esc")
	assert.Nil(t, h.m.form)
	assert.False(t, h.session.Closed())
}

func TestCropForm(t *testing.T) {
	h := newHarness(t)
	h.press("c", "e")
	require.NotNil(t, h.m.form)
	require.Equal(t, formCrop, h.m.formKind)

	h.m.cropResult.X = "0.2"
	h.m.cropResult.Width = "0.5"
	h.m.closeForm()
	h.m.finishForm(formCrop)

	st := h.session.State()
	require.NotNil(t, st.TempCrop)
	assert.InDelta(t, 0.2, st.TempCrop.X, 1e-9)
	assert.InDelta(t, 0.5, st.TempCrop.Width, 1e-9)
}

func TestCommands(t *testing.T) {
	h := newHarness(t)

	h.command("speed 1.5")
	assert.Equal(t, 1.5, h.session.Rate())
	assert.Equal(t, "Speed set to 1.5x", h.m.commandInput.Result)
	assert.Equal(t, 1.5, h.stored(t, "c1").Rate())

	h.command("seek 0:02")
	assert.InDelta(t, 2.0, h.session.Position(), 1e-9)

	h.command("trim 1 3")
	assert.InDelta(t, 2.0, h.session.EffectiveDuration(), 1e-9)

	h.command("trim 3 1")
	assert.True(t, h.m.commandInput.IsError)

	h.command("crop 0.1 0.2 0.5 0.5")
	require.NotNil(t, h.session.State().Crop)
	assert.InDelta(t, 0.2, h.session.State().Crop.Y, 1e-9)

	h.command("crop reset")
	assert.Nil(t, h.session.State().Crop)

	h.command("step 5")
	assert.Equal(t, 5.0, h.m.stepSize)

	h.command("bogus")
	assert.True(t, h.m.commandInput.IsError)
	assert.Contains(t, h.m.commandInput.Result, "unknown command: bogus")

	assert.Equal(t, []string{"speed 1.5", "seek 0:02", "trim 1 3", "trim 3 1", "crop 0.1 0.2 0.5 0.5", "crop reset", "step 5", "bogus"},
		h.m.commandInput.History())
}

func TestQuitCommandCloses(t *testing.T) {
	h := newHarness(t)
	h.command("quit")
	assert.True(t, h.session.Closed())
	assert.True(t, h.m.quitting)
}

func TestPlayerEvents(t *testing.T) {
	h := newHarness(t)

	h.m.Update(mpvEventMsg(mpv.Event{Name: "property-change", Property: "time-pos", Data: 6.0}))
	assert.InDelta(t, 2.0, h.session.Position(), 1e-9)

	h.m.Update(mpvEventMsg(mpv.Event{Name: "property-change", Property: "pause", Data: false}))
	assert.True(t, h.session.State().Playing)

	h.m.Update(mpvClosedMsg{})
	assert.False(t, h.m.connected)
	assert.True(t, h.m.commandInput.IsError)
}

func TestConfigReload(t *testing.T) {
	h := newHarness(t)

	cfg := config.Default()
	cfg.Log.Level = "debug"
	cfg.Playback.SeekHysteresis = 0.5
	h.m.Update(configMsg(cfg))

	assert.Equal(t, slog.LevelDebug, h.logger.Level())
}

func TestView(t *testing.T) {
	h := newHarness(t)
	out := h.m.View()
	plain := ansi.Strip(out)

	assert.Len(t, strings.Split(out, "\n"), 40)
	for _, s := range []string{"NORMAL", "Kickoff", "Timeline", "Preview", "Details", "Playback", "speed 2x"} {
		assert.Contains(t, plain, s)
	}
}

func TestViewModes(t *testing.T) {
	h := newHarness(t)

	h.press("c")
	assert.Contains(t, ansi.Strip(h.m.View()), "CROP")

	h.press("x", "t")
	plain := ansi.Strip(h.m.View())
	assert.Contains(t, plain, "TRIM")
	assert.Contains(t, plain, "trim 0:00.000 – 0:06.000")
}

func TestViewHelpAndCompact(t *testing.T) {
	h := newHarness(t)

	h.press("?")
	assert.Contains(t, ansi.Strip(h.m.View()), "Keybindings")
	h.press("a")
	assert.False(t, h.m.showHelp)

	h.m.Update(tea.WindowSizeMsg{Width: 50, Height: 20})
	plain := ansi.Strip(h.m.View())
	assert.Contains(t, plain, "Playback")
	assert.NotContains(t, plain, "Timeline")
}
