package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultSocketPath is the default Unix socket path for mpv IPC.
	DefaultSocketPath = "/tmp/clipedit-mpv.sock"
	// DefaultTimeout bounds how long a command waits for its reply.
	DefaultTimeout = 2 * time.Second
)

var (
	// ErrNotConnected is returned when attempting operations on a disconnected client.
	ErrNotConnected = errors.New("mpv: not connected")
	// ErrSocketNotFound is returned when the socket file doesn't exist.
	ErrSocketNotFound = errors.New("mpv: socket not found - is mpv running with --input-ipc-server?")
	// ErrTimeout is returned when mpv does not answer a command in time.
	ErrTimeout = errors.New("mpv: command timed out")
)

// ipcRequest represents a JSON IPC request to mpv.
type ipcRequest struct {
	Command   []interface{} `json:"command"`
	RequestID uint64        `json:"request_id"`
}

// ipcMessage is any line mpv writes: a reply carries request_id, an event
// carries event.
type ipcMessage struct {
	Data      interface{} `json:"data"`
	RequestID uint64      `json:"request_id"`
	Error     string      `json:"error"`
	Event     string      `json:"event"`
	Name      string      `json:"name"`
	ID        int64       `json:"id"`
	Reason    string      `json:"reason"`
}

// Event is an asynchronous message from mpv.
type Event struct {
	// Name is the mpv event name, e.g. "property-change" or "file-loaded".
	Name string
	// Property is set for property-change events.
	Property string
	Data     interface{}
	Reason   string
}

// Client is an mpv IPC client that communicates via Unix socket. Replies
// and events are read by a background goroutine; events are delivered on
// the channel returned by Events.
type Client struct {
	socketPath string
	timeout    time.Duration
	logger     *slog.Logger

	mu      sync.Mutex
	conn    net.Conn
	pending map[uint64]chan ipcMessage
	events  chan Event
	done    chan struct{}

	writeMu   sync.Mutex
	requestID uint64
}

// NewClient creates a new mpv IPC client.
// If socketPath is empty, DefaultSocketPath is used.
func NewClient(socketPath string) *Client {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	return &Client{
		socketPath: socketPath,
		timeout:    DefaultTimeout,
		logger:     slog.Default(),
	}
}

// SetLogger sets the logger used for dropped events and read errors.
func (c *Client) SetLogger(l *slog.Logger) {
	if l != nil {
		c.logger = l
	}
}

// SetTimeout sets the per-command reply timeout.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// Connect establishes a connection to the mpv IPC socket and starts the
// reader. Returns ErrSocketNotFound if nothing is listening.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil // Already connected
	}

	conn, err := net.Dial("unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSocketNotFound, err)
	}

	c.conn = conn
	c.pending = make(map[uint64]chan ipcMessage)
	c.events = make(chan Event, 256)
	c.done = make(chan struct{})
	go c.readLoop(conn, c.pending, c.events, c.done)
	return nil
}

// ConnectWithRetry keeps trying to connect until it succeeds or ctx ends.
// mpv creates its socket a moment after the process starts.
func (c *Client) ConnectWithRetry(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		err := c.Connect()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to connect to mpv at %s: %w", c.socketPath, err)
		case <-ticker.C:
		}
	}
}

// Close closes the connection to mpv. The events channel is closed once the
// reader exits.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

// IsConnected returns true if the client is connected to mpv.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// SocketPath returns the socket path this client is configured to use.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// Events returns the channel mpv events are delivered on. It is nil before
// Connect and closed when the connection ends.
func (c *Client) Events() <-chan Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events
}

func (c *Client) readLoop(conn net.Conn, pending map[uint64]chan ipcMessage, events chan Event, done chan struct{}) {
	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		for id, ch := range pending {
			close(ch)
			delete(pending, id)
		}
		c.mu.Unlock()
		close(done)
		close(events)
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			// Skip malformed lines
			continue
		}

		if msg.Event != "" {
			ev := Event{Name: msg.Event, Property: msg.Name, Data: msg.Data, Reason: msg.Reason}
			select {
			case events <- ev:
			default:
				c.logger.Debug("mpv event dropped", "event", ev.Name, "property", ev.Property)
			}
			continue
		}

		c.mu.Lock()
		ch, ok := pending[msg.RequestID]
		delete(pending, msg.RequestID)
		c.mu.Unlock()
		if ok {
			ch <- msg
		}
	}
	if err := scanner.Err(); err != nil {
		c.logger.Debug("mpv connection closed", "error", err)
	}
}

// GetProperty retrieves the value of an mpv property.
// The property name should be the mpv property name (e.g., "time-pos", "duration", "pause").
func (c *Client) GetProperty(name string) (interface{}, error) {
	return c.sendCommand("get_property", name)
}

// SetProperty sets the value of an mpv property.
// The property name should be the mpv property name (e.g., "pause", "speed").
func (c *Client) SetProperty(name string, value interface{}) error {
	_, err := c.sendCommand("set_property", name, value)
	return err
}

// ObserveProperty asks mpv to send property-change events for name.
func (c *Client) ObserveProperty(id int, name string) error {
	_, err := c.sendCommand("observe_property", id, name)
	return err
}

// GetTimePos returns the current playback position in seconds.
func (c *Client) GetTimePos() (float64, error) {
	result, err := c.GetProperty("time-pos")
	if err != nil {
		return 0, err
	}
	return toFloat64(result)
}

// GetDuration returns the total duration of the video in seconds.
func (c *Client) GetDuration() (float64, error) {
	result, err := c.GetProperty("duration")
	if err != nil {
		return 0, err
	}
	return toFloat64(result)
}

// GetPaused returns true if playback is paused.
func (c *Client) GetPaused() (bool, error) {
	result, err := c.GetProperty("pause")
	if err != nil {
		return false, err
	}
	paused, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("mpv: unexpected pause value type: %T", result)
	}
	return paused, nil
}

// toFloat64 converts an interface{} to float64.
// JSON numbers from mpv are typically decoded as float64.
func toFloat64(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("mpv: unexpected numeric value type: %T", v)
	}
}

// sendCommand sends a JSON IPC command to mpv and waits for its reply.
// The command is formatted as {"command": [command, args...], "request_id": <id>}
// and sent as newline-terminated JSON over the socket.
func (c *Client) sendCommand(command string, args ...interface{}) (interface{}, error) {
	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	reqID := atomic.AddUint64(&c.requestID, 1)
	replyCh := make(chan ipcMessage, 1)
	c.pending[reqID] = replyCh
	done := c.done
	c.mu.Unlock()

	// Build command array: [command, arg1, arg2, ...]
	cmdArray := make([]interface{}, 0, len(args)+1)
	cmdArray = append(cmdArray, command)
	cmdArray = append(cmdArray, args...)

	data, err := json.Marshal(ipcRequest{Command: cmdArray, RequestID: reqID})
	if err != nil {
		c.forget(reqID)
		return nil, fmt.Errorf("mpv: failed to marshal command: %w", err)
	}

	c.writeMu.Lock()
	_, err = conn.Write(append(data, '\n'))
	c.writeMu.Unlock()
	if err != nil {
		c.forget(reqID)
		return nil, fmt.Errorf("mpv: failed to send command: %w", err)
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case resp, ok := <-replyCh:
		if !ok {
			return nil, ErrNotConnected
		}
		if resp.Error != "" && resp.Error != "success" {
			return nil, fmt.Errorf("mpv: %s: %s", command, resp.Error)
		}
		return resp.Data, nil
	case <-done:
		return nil, ErrNotConnected
	case <-timer.C:
		c.forget(reqID)
		return nil, fmt.Errorf("%w: %s", ErrTimeout, command)
	}
}

func (c *Client) forget(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}
