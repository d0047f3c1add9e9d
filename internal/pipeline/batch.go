package pipeline

import (
	"context"

	"github.com/sakhalinlab/waveproc/internal/log"
	"github.com/sakhalinlab/waveproc/internal/types"
	"golang.org/x/sync/errgroup"
)

// RunAll executes one pipeline run per buffer with at most workers runs in
// flight, sending every terminal result to the results channel.  Buffers are
// never shared between runs, so the runs need no coordination beyond the
// concurrency limit.  Rejected runs are reported as results, not as errors;
// the returned error is only non-nil when the context is cancelled.
func RunAll(ctx context.Context, p *Pipeline, bursts []*types.SeriesBuffer, workers int, results chan<- types.RunResult) error {
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, buf := range bursts {
		buf := buf
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			res := p.Run(buf)
			log.Debugf("burst %d finished in state %s", buf.Burst, res.State)

			select {
			case results <- *res:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}

	return g.Wait()
}
