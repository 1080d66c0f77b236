package clip

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/tagging-fight-cli/pkg/export"
)

func sampleClips() []export.Clip {
	return []export.Clip{
		{Index: 1, Label: "Jab landed", Start: 9.5, End: 14.5},
		{Index: 2, Label: "Attack", Start: 10, End: 20},
	}
}

func TestPlan(t *testing.T) {
	jobs := Plan("/videos/bout.mp4", "", sampleClips())
	require.Len(t, jobs, 2)
	assert.Equal(t, filepath.Join("/videos", "bout-clips", "001_0-00-09_jab_landed.mp4"), jobs[0].Output)

	jobs = Plan("/videos/bout.mp4", "/out", sampleClips())
	assert.Equal(t, filepath.Join("/out", "002_0-00-10_attack.mp4"), jobs[1].Output)
}

func TestProcessorRun(t *testing.T) {
	var mu sync.Mutex
	var cut []string
	p := &Processor{
		VideoPath: "/videos/bout.mp4",
		Extract: func(_ context.Context, video string, start, end float64, output string, _ bool) error {
			mu.Lock()
			defer mu.Unlock()
			cut = append(cut, output)
			if start == 10 {
				return errors.New("ffmpeg exploded")
			}
			return nil
		},
	}

	results, err := p.Run(context.Background(), Plan(p.VideoPath, "/out", sampleClips()))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.Equal(t, 2, results[1].Done)
	assert.Equal(t, 2, results[1].Total)
	assert.Len(t, cut, 2)
}

func TestProcessorStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Processor{
		Extract: func(context.Context, string, float64, float64, string, bool) error {
			cancel()
			return nil
		},
	}
	results, err := p.Run(ctx, Plan("/v.mp4", "/out", sampleClips()))
	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, len(results), 1)
}
