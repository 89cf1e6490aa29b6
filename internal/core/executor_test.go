package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecutorFrom_DefaultsToSequential(t *testing.T) {
	assert.Equal(t, Executor(Sequential{}), ExecutorFrom(context.Background()))
	assert.Equal(t, Executor(Parallel{}), ExecutorFrom(WithExecutor(context.Background(), Parallel{})))
}

func TestForEach_VisitsAll(t *testing.T) {
	for _, e := range []Executor{Sequential{}, Parallel{}, NewBounded(2)} {
		var sum atomic.Int64
		err := forEach(WithExecutor(context.Background(), e), 10, func(_ context.Context, i int) error {
			sum.Add(int64(i))
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(45), sum.Load())
	}
}

func TestForEach_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	for _, e := range []Executor{Sequential{}, Parallel{}, NewBounded(2)} {
		err := forEach(WithExecutor(context.Background(), e), 5, func(_ context.Context, i int) error {
			if i == 3 {
				return boom
			}
			return nil
		})
		assert.ErrorIs(t, err, boom)
	}
}

func TestForEach_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := forEach(ctx, 3, func(context.Context, int) error { return nil })
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestBounded_LimitsForks(t *testing.T) {
	b := NewBounded(1)
	var inFlight, peak atomic.Int64
	err := forEach(WithExecutor(context.Background(), b), 16, func(_ context.Context, i int) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		inFlight.Add(-1)
		return nil
	})
	assert.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int64(2), "one fork runs at most two leaves at once")
}

func TestNewBounded_ClampsLimit(t *testing.T) {
	b := NewBounded(0)
	assert.True(t, b.sem.TryAcquire(1))
	assert.False(t, b.sem.TryAcquire(1))
}
