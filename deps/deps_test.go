package deps

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeLookPath(t *testing.T, found ...string) {
	t.Helper()
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })
	lookPath = func(name string) (string, error) {
		for _, f := range found {
			if f == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func TestCheckAll(t *testing.T) {
	fakeLookPath(t, "mpv")

	statuses := CheckAll()
	require.Len(t, statuses, 2)
	assert.True(t, statuses[0].OK())
	assert.Equal(t, "/usr/bin/mpv", statuses[0].Path)
	assert.False(t, statuses[1].OK())

	missing := Missing(statuses)
	require.Len(t, missing, 1)
	var depErr *DependencyError
	require.True(t, errors.As(missing[0], &depErr))
	assert.Equal(t, "ffmpeg", depErr.Name)
	assert.Contains(t, depErr.Error(), FfmpegInstallURL)
}

func TestCheckHelpers(t *testing.T) {
	fakeLookPath(t)
	assert.Error(t, CheckMpv())
	assert.Error(t, CheckFfmpeg())

	fakeLookPath(t, "mpv", "ffmpeg")
	assert.NoError(t, CheckMpv())
	assert.NoError(t, CheckFfmpeg())
}
