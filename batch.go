package homcubes

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/hupe1980/homcubes/grid"
	"golang.org/x/sync/errgroup"
)

// ComputeBatch computes the diagrams of independent grids concurrently.
// Each grid runs the sequential chain of Compute; results are returned in
// input order.
//
// Concurrency is bounded by the worker slots of the resource controller, or
// by GOMAXPROCS without one. Memory reservations wait for running
// computations instead of failing, unless a single grid exceeds the whole
// budget. The first error cancels the grids not yet started.
func (e *Engine) ComputeBatch(ctx context.Context, grids []*grid.Grid) ([]*Result, error) {
	start := time.Now()
	results := make([]*Result, len(grids))
	var failed atomic.Int64

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(e.parallelism())

	for i, g := range grids {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				failed.Add(1)
				return err
			}
			rc := e.opts.controller
			if err := rc.AcquireWorker(ctx); err != nil {
				failed.Add(1)
				return err
			}
			defer rc.ReleaseWorker()

			res, err := e.compute(ctx, g, true)
			if err != nil {
				failed.Add(1)
				return fmt.Errorf("grid %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	err := eg.Wait()
	n := int(failed.Load())
	e.opts.metricsCollector.RecordBatch(len(grids), n, time.Since(start))
	e.opts.logger.LogBatch(ctx, len(grids), n)
	if err != nil {
		return results, err
	}
	return results, nil
}

func (e *Engine) parallelism() int {
	if rc := e.opts.controller; rc != nil {
		return int(rc.Config().MaxWorkers)
	}
	return runtime.GOMAXPROCS(0)
}
