package engine

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tartampluch/go-bazi/internal/config"
)

// BatchResult is the outcome of one input of a batch; exactly one of Chart
// and Err is meaningful.
type BatchResult struct {
	Index int
	Chart Chart
	Err   error
}

// ComputeBatch computes every input on up to GOMAXPROCS workers. Results are
// in input order and one failure never affects another input. Inputs not yet
// started when ctx is cancelled fail with ctx's error.
func (e *Engine) ComputeBatch(ctx context.Context, inputs []BirthInput) []BatchResult {
	start := time.Now()
	workers := runtime.GOMAXPROCS(0)
	log := e.batchLog
	log.DebugContext(ctx, config.MsgBatchStarted,
		config.LogKeyCount, len(inputs),
		config.LogKeyWorkers, workers)

	results := make([]BatchResult, len(inputs))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, in := range inputs {
		g.Go(func() error {
			c, err := e.Compute(ctx, in)
			if err != nil {
				log.DebugContext(ctx, config.MsgChartFailed,
					config.LogKeyIndex, i,
					config.LogKeyError, err)
			}
			results[i] = BatchResult{Index: i, Chart: c, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	log.InfoContext(ctx, config.MsgBatchFinished,
		config.LogKeyCount, len(inputs),
		config.LogKeyFailed, failed,
		config.LogKeyDuration, time.Since(start).Milliseconds())
	return results
}
