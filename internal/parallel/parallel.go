// Package parallel provides parallel execution helpers.
package parallel

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// NumWorkers returns the default number of workers for parallel operations.
func NumWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// ForEach executes fn for indices [0, n) using at most workers goroutines.
//
// When calls fail, the error of the lowest failing index is returned. A
// failure at index i cancels the contexts of indices above i only, so every
// index below the lowest failure runs to completion and the returned error
// does not depend on scheduling.
func ForEach(ctx context.Context, n, workers int, fn func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return ctx.Err()
	}
	if workers <= 0 {
		workers = NumWorkers()
	}

	if workers == 1 {
		for i := range n {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx, i); err != nil {
				return err
			}
		}
		return nil
	}

	var (
		mu       sync.Mutex
		failed   = n // lowest failing index, n while none failed
		firstErr error
		cancels  = make(map[int]context.CancelFunc)
	)

	// stopped reports whether index i can no longer produce the result.
	stopped := func(i int) bool {
		mu.Lock()
		defer mu.Unlock()
		return failed < i
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range n {
		if ctx.Err() != nil || stopped(i) {
			break
		}
		g.Go(func() error {
			ictx, cancel := context.WithCancel(ctx)
			defer cancel()

			mu.Lock()
			if failed < i {
				mu.Unlock()
				return nil
			}
			cancels[i] = cancel
			mu.Unlock()

			err := fn(ictx, i)

			mu.Lock()
			defer mu.Unlock()
			delete(cancels, i)
			if err != nil && i < failed {
				failed, firstErr = i, err
				for j, c := range cancels {
					if j > i {
						c()
					}
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// Map applies fn to each index in [0, n) and collects results in index
// order, independent of the order in which calls complete.
func Map[T any](ctx context.Context, n, workers int, fn func(ctx context.Context, i int) (T, error)) ([]T, error) {
	results := make([]T, max(n, 0))
	err := ForEach(ctx, n, workers, func(ctx context.Context, i int) error {
		v, err := fn(ctx, i)
		if err != nil {
			return err
		}
		results[i] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
