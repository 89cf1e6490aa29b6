package core

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Task is one half of a fork-join.
type Task func(ctx context.Context) error

// Executor runs two independent tasks and waits for both. Structural
// algorithms hand it sub-problems that share no mutable state; results are
// deterministic whichever executor runs them.
type Executor interface {
	ForkJoin(ctx context.Context, a, b Task) error
}

// Sequential runs a, then b, on the calling goroutine.
type Sequential struct{}

// ForkJoin implements Executor.
func (Sequential) ForkJoin(ctx context.Context, a, b Task) error {
	if err := a(ctx); err != nil {
		return err
	}
	return b(ctx)
}

// Parallel runs a and b on new goroutines. The first error cancels the
// context passed to the other task.
type Parallel struct{}

// ForkJoin implements Executor.
func (Parallel) ForkJoin(ctx context.Context, a, b Task) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a(gctx) })
	g.Go(func() error { return b(gctx) })
	return g.Wait()
}

// Bounded forks like Parallel while fewer than its limit of forks are in
// flight, and runs both tasks on the calling goroutine otherwise.
type Bounded struct {
	sem *semaphore.Weighted
}

// NewBounded returns an executor with at most n concurrent forks. n below 1
// is treated as 1.
func NewBounded(n int) *Bounded {
	if n < 1 {
		n = 1
	}
	return &Bounded{sem: semaphore.NewWeighted(int64(n))}
}

// ForkJoin implements Executor.
func (b *Bounded) ForkJoin(ctx context.Context, a, c Task) error {
	if !b.sem.TryAcquire(1) {
		return Sequential{}.ForkJoin(ctx, a, c)
	}
	defer b.sem.Release(1)
	return Parallel{}.ForkJoin(ctx, a, c)
}

type executorKey struct{}

// WithExecutor returns a context whose structural operations dispatch
// independent sub-problems through e.
func WithExecutor(ctx context.Context, e Executor) context.Context {
	return context.WithValue(ctx, executorKey{}, e)
}

// ExecutorFrom returns the executor installed in ctx, or Sequential.
func ExecutorFrom(ctx context.Context) Executor {
	if e, ok := ctx.Value(executorKey{}).(Executor); ok && e != nil {
		return e
	}
	return Sequential{}
}

// forEach calls fn for 0..n-1 by recursive halving through the context's
// executor.
func forEach(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	return forRange(ctx, ExecutorFrom(ctx), 0, n, fn)
}

func forRange(ctx context.Context, e Executor, lo, hi int, fn func(ctx context.Context, i int) error) error {
	switch hi - lo {
	case 0:
		return nil
	case 1:
		if err := checkpoint(ctx); err != nil {
			return err
		}
		return fn(ctx, lo)
	}
	mid := lo + (hi-lo)/2
	return e.ForkJoin(ctx,
		func(ctx context.Context) error { return forRange(ctx, e, lo, mid, fn) },
		func(ctx context.Context) error { return forRange(ctx, e, mid, hi, fn) },
	)
}
