package clip

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/user/tagging-fight-cli/deps"
	"github.com/user/tagging-fight-cli/pkg/cliputil"
	"github.com/user/tagging-fight-cli/pkg/logger"
)

// Result is the outcome of one job.
type Result struct {
	Job     Job
	Err     error
	Elapsed time.Duration
	Done    int
	Total   int
}

// Extractor cuts one clip. cliputil.ExtractClip in production.
type Extractor func(ctx context.Context, video string, start, end float64, output string, reencode bool) error

// Processor cuts clips one at a time in the background.
type Processor struct {
	VideoPath string
	Reencode  bool
	Logger    *zap.Logger
	// Extract defaults to cliputil.ExtractClip.
	Extract Extractor
}

// Start checks for ffmpeg and launches a goroutine that cuts the jobs in order,
// sending one Result per job. The channel is closed when all jobs ran or ctx
// is cancelled.
func (p *Processor) Start(ctx context.Context, jobs []Job) (<-chan Result, error) {
	extract := p.Extract
	if extract == nil {
		if err := deps.CheckFfmpeg(); err != nil {
			return nil, err
		}
		extract = cliputil.ExtractClip
	}
	log := logger.OrNop(p.Logger)

	out := make(chan Result)
	go func() {
		defer close(out)
		for i, job := range jobs {
			if ctx.Err() != nil {
				return
			}
			began := time.Now()
			err := extract(ctx, p.VideoPath, job.Clip.Start, job.Clip.End, job.Output, p.Reencode)
			res := Result{Job: job, Err: err, Elapsed: time.Since(began), Done: i + 1, Total: len(jobs)}
			if err != nil {
				log.Warn("clip failed", zap.Int("index", job.Clip.Index), zap.Error(err))
			} else {
				log.Debug("clip written", zap.String("output", job.Output))
			}
			select {
			case out <- res:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Run cuts every job and returns the results.
func (p *Processor) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	ch, err := p.Start(ctx, jobs)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(jobs))
	for r := range ch {
		results = append(results, r)
	}
	return results, ctx.Err()
}
