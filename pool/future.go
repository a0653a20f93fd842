package pool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WaitAll blocks until every future is resolved and returns their values in
// the same order. It returns the first error observed, without waiting for the
// remaining futures, or ctx's error if ctx is done first.
//
// Example:
//
//	futures := make([]*pool.Future[int], 0, len(jobs))
//	for _, j := range jobs {
//	    futures = append(futures, pool.Submit1(p, process, j))
//	}
//	results, err := pool.WaitAll(ctx, futures...)
func WaitAll[R any](ctx context.Context, futures ...*Future[R]) ([]R, error) {
	results := make([]R, len(futures))
	if len(futures) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range futures {
		g.Go(func() error {
			v, err := f.GetWithContext(gctx)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
