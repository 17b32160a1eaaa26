// Package fanout runs batches of independent tasks with a fixed
// concurrency ceiling.
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type Task func(ctx context.Context) error

// Run executes all tasks with at most limit in flight. Every task runs to
// completion regardless of sibling failures; a task's error is recorded at
// its own index and never aborts the batch.
func Run(ctx context.Context, limit int, tasks []Task) []error {
	if limit <= 0 {
		limit = 1
	}

	errs := make([]error, len(tasks))
	var g errgroup.Group
	g.SetLimit(limit)

	for i, task := range tasks {
		g.Go(func() error {
			errs[i] = task(ctx)
			return nil
		})
	}

	_ = g.Wait()
	return errs
}
