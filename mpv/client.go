// Package mpv drives a running mpv over its JSON IPC socket and serves as the
// playback clock while annotating.
package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/user/tagging-fight-cli/annotate"
)

// DefaultSocketPath is used when no socket is configured.
const DefaultSocketPath = "/tmp/tagging-fight-mpv.sock"

var (
	// ErrNotConnected is returned when the client has no open socket.
	ErrNotConnected = errors.New("mpv: not connected")
	// ErrSocketNotFound is returned when nothing listens on the socket path.
	ErrSocketNotFound = errors.New("mpv: socket not found - is mpv running with --input-ipc-server?")
	// ErrNoValue is returned while mpv has no value for a property yet,
	// such as time-pos before a file is loaded.
	ErrNoValue = errors.New("mpv: property unavailable")

	requestID uint64
)

type ipcRequest struct {
	Command   []any  `json:"command"`
	RequestID uint64 `json:"request_id"`
}

type ipcResponse struct {
	Data      any    `json:"data"`
	RequestID uint64 `json:"request_id"`
	Error     string `json:"error"`
	Event     string `json:"event"`
}

// Client is an mpv IPC client over a Unix socket. It is safe for concurrent use.
type Client struct {
	socketPath string
	timeout    time.Duration
	conn       net.Conn
	reader     *bufio.Reader
	mu         sync.Mutex
}

var _ annotate.Playback = (*Client)(nil)

// NewClient creates a client for socketPath, or DefaultSocketPath when empty.
func NewClient(socketPath string) *Client {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	return &Client{socketPath: socketPath, timeout: 2 * time.Second}
}

// SocketPath returns the configured socket path.
func (c *Client) SocketPath() string { return c.socketPath }

// Connect opens the socket. It is a no-op when already connected.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}
	conn, err := net.Dial("unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("%w (%s)", ErrSocketNotFound, c.socketPath)
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// WaitConnect retries Connect until it succeeds or ctx ends. mpv creates the
// socket a moment after it starts.
func (c *Client) WaitConnect(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	for {
		err := c.Connect()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", err, ctx.Err())
		case <-time.After(interval):
		}
	}
}

// Close closes the socket.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.reader = nil
	return err
}

// IsConnected reports whether the socket is open.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// GetProperty reads an mpv property such as "time-pos" or "pause".
func (c *Client) GetProperty(name string) (any, error) {
	return c.sendCommand("get_property", name)
}

// SetProperty writes an mpv property.
func (c *Client) SetProperty(name string, value any) error {
	_, err := c.sendCommand("set_property", name, value)
	return err
}

// CurrentTime returns the playback position in seconds.
func (c *Client) CurrentTime() (float64, error) {
	return c.floatProperty("time-pos")
}

// Duration returns the length of the loaded video in seconds.
func (c *Client) Duration() (float64, error) {
	return c.floatProperty("duration")
}

// Seek jumps to an absolute position.
func (c *Client) Seek(seconds float64) error {
	if seconds < 0 {
		seconds = 0
	}
	_, err := c.sendCommand("seek", seconds, "absolute")
	return err
}

// Play resumes playback.
func (c *Client) Play() error { return c.SetProperty("pause", false) }

// Pause pauses playback.
func (c *Client) Pause() error { return c.SetProperty("pause", true) }

// Paused reports whether playback is paused.
func (c *Client) Paused() (bool, error) {
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

// TogglePause flips the pause state.
func (c *Client) TogglePause() error {
	_, err := c.sendCommand("cycle", "pause")
	return err
}

// SeekRelative moves the position by delta seconds.
func (c *Client) SeekRelative(delta float64) error {
	_, err := c.sendCommand("seek", delta, "relative")
	return err
}

// ShowText displays an on-screen message for ms milliseconds.
func (c *Client) ShowText(text string, ms int) error {
	_, err := c.sendCommand("show-text", text, ms)
	return err
}

func (c *Client) floatProperty(name string) (float64, error) {
	result, err := c.GetProperty(name)
	if err != nil {
		return 0, err
	}
	if result == nil {
		return 0, ErrNoValue
	}
	return toFloat64(result)
}

func toFloat64(v any) (float64, error) {
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

// sendCommand writes {"command": [...], "request_id": N} and reads lines until
// the matching reply, skipping events.
func (c *Client) sendCommand(command string, args ...any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, ErrNotConnected
	}

	reqID := atomic.AddUint64(&requestID, 1)
	data, err := json.Marshal(ipcRequest{
		Command:   append([]any{command}, args...),
		RequestID: reqID,
	})
	if err != nil {
		return nil, fmt.Errorf("mpv: failed to marshal command: %w", err)
	}
	data = append(data, '\n')

	if c.timeout > 0 {
		_ = c.conn.SetDeadline(time.Now().Add(c.timeout))
		defer c.conn.SetDeadline(time.Time{})
	}
	if _, err := c.conn.Write(data); err != nil {
		return nil, fmt.Errorf("mpv: failed to send command: %w", err)
	}

	for {
		line, err := c.reader.ReadBytes('\n')
		if err != nil {
			return nil, fmt.Errorf("mpv: failed to read response: %w", err)
		}
		var resp ipcResponse
		if err := json.Unmarshal(line, &resp); err != nil || resp.Event != "" {
			continue
		}
		if resp.RequestID != reqID {
			continue
		}
		switch resp.Error {
		case "", "success":
			return resp.Data, nil
		case "property unavailable":
			return nil, ErrNoValue
		default:
			return nil, fmt.Errorf("mpv: %s", resp.Error)
		}
	}
}
