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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMpv answers IPC commands from a property map and records commands.
type fakeMpv struct {
	mu       sync.Mutex
	props    map[string]any
	commands [][]any
}

func (f *fakeMpv) serve(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "mpv")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	sock := filepath.Join(dir, "s.sock")

	ln, err := net.Listen("unix", sock)
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go f.handle(conn)
		}
	}()
	return sock
}

func (f *fakeMpv) handle(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	enc := json.NewEncoder(conn)
	for {
		line, err := r.ReadBytes('\n')
		if err != nil {
			return
		}
		var req ipcRequest
		if err := json.Unmarshal(line, &req); err != nil {
			return
		}

		f.mu.Lock()
		f.commands = append(f.commands, req.Command)
		resp := map[string]any{"request_id": req.RequestID, "error": "success"}
		switch req.Command[0] {
		case "get_property":
			v, ok := f.props[req.Command[1].(string)]
			if !ok {
				resp["error"] = "property unavailable"
			} else {
				resp["data"] = v
			}
		case "set_property":
			f.props[req.Command[1].(string)] = req.Command[2]
		}
		f.mu.Unlock()

		// An unrelated event first; the client must skip it.
		_ = enc.Encode(map[string]any{"event": "property-change"})
		_ = enc.Encode(resp)
	}
}

func TestClientPlayback(t *testing.T) {
	fake := &fakeMpv{props: map[string]any{"time-pos": 12.5, "duration": 600.0, "pause": true}}
	sock := fake.serve(t)

	c := NewClient(sock)
	require.NoError(t, c.Connect())
	defer c.Close()
	assert.True(t, c.IsConnected())

	now, err := c.CurrentTime()
	require.NoError(t, err)
	assert.Equal(t, 12.5, now)

	d, err := c.Duration()
	require.NoError(t, err)
	assert.Equal(t, 600.0, d)

	require.NoError(t, c.Play())
	paused, err := c.Paused()
	require.NoError(t, err)
	assert.False(t, paused)

	require.NoError(t, c.Seek(-3))

	fake.mu.Lock()
	last := fake.commands[len(fake.commands)-1]
	fake.mu.Unlock()
	assert.Equal(t, []any{"seek", 0.0, "absolute"}, last)
}

func TestClientUnavailableProperty(t *testing.T) {
	fake := &fakeMpv{props: map[string]any{}}
	c := NewClient(fake.serve(t))
	require.NoError(t, c.Connect())
	defer c.Close()

	_, err := c.CurrentTime()
	assert.True(t, errors.Is(err, ErrNoValue))
}

func TestClientNotConnected(t *testing.T) {
	c := NewClient(filepath.Join(t.TempDir(), "missing.sock"))
	_, err := c.CurrentTime()
	assert.True(t, errors.Is(err, ErrNotConnected))

	assert.True(t, errors.Is(c.Connect(), ErrSocketNotFound))
	assert.NoError(t, c.Close())
}

func TestDefaultSocket(t *testing.T) {
	assert.Equal(t, DefaultSocketPath, NewClient("").SocketPath())
}
