package mpv

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/clipedit-cli/pkg/crop"
)

// fakeMpv is a minimal JSON IPC server.
type fakeMpv struct {
	t        *testing.T
	ln       net.Listener
	mu       sync.Mutex
	conn     net.Conn
	props    map[string]interface{}
	commands [][]interface{}
	ready    chan struct{}
}

func newFakeMpv(t *testing.T) (*fakeMpv, string) {
	t.Helper()
	dir, err := os.MkdirTemp("", "mpv")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "s.sock")

	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	f := &fakeMpv{
		t:  t,
		ln: ln,
		props: map[string]interface{}{
			"duration":       42.5,
			"pause":          true,
			"video-params/w": 1920.0,
			"video-params/h": 1080.0,
		},
		ready: make(chan struct{}),
	}
	t.Cleanup(func() { ln.Close() })
	go f.serve()
	return f, path
}

func (f *fakeMpv) serve() {
	conn, err := f.ln.Accept()
	if err != nil {
		return
	}
	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()
	close(f.ready)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var req ipcRequest
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			continue
		}
		f.mu.Lock()
		f.commands = append(f.commands, req.Command)
		f.mu.Unlock()

		name, _ := req.Command[0].(string)
		resp := map[string]interface{}{"request_id": req.RequestID, "error": "success"}
		switch name {
		case "hang":
			continue
		case "get_property":
			prop, _ := req.Command[1].(string)
			f.mu.Lock()
			v, ok := f.props[prop]
			f.mu.Unlock()
			if ok {
				resp["data"] = v
			} else {
				resp["error"] = "property unavailable"
			}
		case "set_property":
			prop, _ := req.Command[1].(string)
			f.mu.Lock()
			f.props[prop] = req.Command[2]
			f.mu.Unlock()
		}
		f.write(resp)
	}
}

func (f *fakeMpv) write(v interface{}) {
	data, _ := json.Marshal(v)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conn.Write(append(data, '\n'))
}

func (f *fakeMpv) prop(name string) interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.props[name]
}

func (f *fakeMpv) lastCommand() []interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.commands) == 0 {
		return nil
	}
	return f.commands[len(f.commands)-1]
}

func connect(t *testing.T) (*fakeMpv, *Client) {
	t.Helper()
	f, path := newFakeMpv(t)
	c := NewClient(path)
	require.NoError(t, c.Connect())
	t.Cleanup(func() { c.Close() })
	<-f.ready
	return f, c
}

func TestConnectMissingSocket(t *testing.T) {
	c := NewClient(filepath.Join(t.TempDir(), "missing.sock"))
	err := c.Connect()
	assert.ErrorIs(t, err, ErrSocketNotFound)
	assert.False(t, c.IsConnected())

	_, err = c.GetDuration()
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestGetAndSetProperty(t *testing.T) {
	f, c := connect(t)

	d, err := c.GetDuration()
	require.NoError(t, err)
	assert.Equal(t, 42.5, d)

	paused, err := c.GetPaused()
	require.NoError(t, err)
	assert.True(t, paused)

	require.NoError(t, c.SetSpeed(1.5))
	assert.Equal(t, 1.5, f.prop("speed"))

	_, err = c.GetTimePos()
	assert.ErrorContains(t, err, "property unavailable")
}

func TestSurfaceCommands(t *testing.T) {
	f, c := connect(t)
	s := NewSurface(c)

	require.NoError(t, s.SeekTo(12.5))
	assert.Equal(t, []interface{}{"seek", 12.5, "absolute+exact"}, f.lastCommand())

	require.NoError(t, s.Load("file:///a.mp4"))
	assert.Equal(t, []interface{}{"loadfile", "file:///a.mp4", "replace"}, f.lastCommand())

	require.NoError(t, s.SetPaused(false))
	assert.Equal(t, false, f.prop("pause"))

	size, err := s.FrameSize()
	require.NoError(t, err)
	assert.Equal(t, crop.Size{Width: 1920, Height: 1080}, size)

	require.NoError(t, s.SetCrop(&crop.Rect{X: 0.25, Y: 0.25, Width: 0.5, Height: 0.5}))
	assert.Equal(t, "960x540+480+270", f.prop("video-crop"))

	require.NoError(t, s.SetCrop(nil))
	assert.Equal(t, "", f.prop("video-crop"))
}

func TestFrameSizeUnavailable(t *testing.T) {
	f, c := connect(t)
	f.mu.Lock()
	delete(f.props, "video-params/w")
	f.mu.Unlock()

	_, err := NewSurface(c).FrameSize()
	assert.Error(t, err)
}

func TestEventsAreDelivered(t *testing.T) {
	f, c := connect(t)
	require.NoError(t, c.Observe())

	f.write(map[string]interface{}{"event": "property-change", "id": 1, "name": "time-pos", "data": 3.5})

	select {
	case ev := <-c.Events():
		assert.Equal(t, "property-change", ev.Name)
		assert.Equal(t, "time-pos", ev.Property)
		assert.Equal(t, 3.5, ev.Data)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestCommandTimeout(t *testing.T) {
	_, c := connect(t)
	c.SetTimeout(50 * time.Millisecond)
	_, err := c.sendCommand("hang")
	assert.True(t, errors.Is(err, ErrTimeout))
}

func TestCloseEndsEvents(t *testing.T) {
	_, c := connect(t)
	events := c.Events()
	require.NoError(t, c.Close())

	select {
	case _, ok := <-events:
		for ok {
			_, ok = <-events
		}
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed")
	}
	_, err := c.GetDuration()
	assert.ErrorIs(t, err, ErrNotConnected)
}

type recordingHandler struct {
	calls []string
	last  float64
}

func (h *recordingHandler) OnMetadataLoaded(d float64) {
	h.calls = append(h.calls, "metadata")
	h.last = d
}

func (h *recordingHandler) OnPositionChanged(raw float64) {
	h.calls = append(h.calls, "position")
	h.last = raw
}

func (h *recordingHandler) OnPlayStateChanged(playing bool) {
	if playing {
		h.calls = append(h.calls, "playing")
	} else {
		h.calls = append(h.calls, "paused")
	}
}

func (h *recordingHandler) OnEnded() { h.calls = append(h.calls, "ended") }

func TestDispatch(t *testing.T) {
	h := &recordingHandler{}

	Dispatch(Event{Name: "property-change", Property: "duration", Data: 20.0}, h)
	assert.Equal(t, 20.0, h.last)
	Dispatch(Event{Name: "property-change", Property: "time-pos", Data: 7.25}, h)
	assert.Equal(t, 7.25, h.last)
	Dispatch(Event{Name: "property-change", Property: "pause", Data: false}, h)
	Dispatch(Event{Name: "property-change", Property: "eof-reached", Data: false}, h)
	Dispatch(Event{Name: "property-change", Property: "eof-reached", Data: true}, h)
	Dispatch(Event{Name: "property-change", Property: "time-pos", Data: nil}, h)
	Dispatch(Event{Name: "file-loaded"}, h)

	assert.Equal(t, []string{"metadata", "position", "playing", "ended"}, h.calls)
}
