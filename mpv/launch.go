package mpv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/user/tagging-fight-cli/deps"
)

// Launch starts mpv paused on videoPath with the IPC server on socketPath,
// waits for the socket and returns the running process with a connected client.
// The caller owns both.
func Launch(ctx context.Context, videoPath, socketPath string) (*exec.Cmd, *Client, error) {
	if err := deps.CheckMpv(); err != nil {
		return nil, nil, err
	}
	if _, err := os.Stat(videoPath); err != nil {
		return nil, nil, fmt.Errorf("video: %w", err)
	}
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	// A socket left over from an earlier run would accept nothing.
	_ = os.Remove(socketPath)

	cmd := exec.Command("mpv",
		"--input-ipc-server="+socketPath,
		"--pause",
		"--keep-open=yes",
		"--osd-level=2",
		videoPath,
	)
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("starting mpv: %w", err)
	}

	client := NewClient(socketPath)
	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.WaitConnect(waitCtx, 100*time.Millisecond); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, nil, err
	}
	return cmd, client, nil
}
