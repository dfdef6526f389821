package executor_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kernelio/fskit/cfg"
	"github.com/kernelio/fskit/executor"
	"github.com/kernelio/fskit/ioerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExecutor(model cfg.ThreadModel, workers, queueLimit int) *executor.Executor {
	return executor.New(executor.Config{
		ExecutorConfig: cfg.ExecutorConfig{
			Workers:     workers,
			QueueLimit:  queueLimit,
			ThreadModel: model,
		},
	})
}

func TestRunCooperativeReturnsResult(t *testing.T) {
	e := newExecutor(cfg.Cooperative, 4, 16)
	defer e.Shutdown()

	v, err := executor.Run(context.Background(), e, func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestRunDedicatedReturnsResult(t *testing.T) {
	e := newExecutor(cfg.Dedicated, 2, 16)
	defer e.Shutdown()

	v, err := executor.Run(context.Background(), e, func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestRunPropagatesJobError(t *testing.T) {
	e := newExecutor(cfg.Cooperative, 2, 16)
	defer e.Shutdown()

	wantErr := errors.New("boom")
	_, err := executor.Run(context.Background(), e, func() (int, error) { return 0, wantErr })
	assert.ErrorIs(t, err, wantErr)
}

func TestQueueLimitAppliesBackpressure(t *testing.T) {
	e := newExecutor(cfg.Dedicated, 1, 1)
	defer e.Shutdown()

	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_, _ = executor.Run(context.Background(), e, func() (int, error) {
			close(started)
			<-release
			return 0, nil
		})
	}()
	<-started

	// The single worker is busy and queue-limit is 1, so a second
	// submission with a 20ms timeout must observe backpressure and
	// fail with Cancelled rather than running immediately.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := executor.Run(ctx, e, func() (int, error) { return 0, nil })
	assert.True(t, ioerr.Is(err, ioerr.Cancelled))

	close(release)
}

func TestShutdownIsIdempotent(t *testing.T) {
	e := newExecutor(cfg.Cooperative, 2, 16)
	e.Shutdown()
	assert.NotPanics(t, func() { e.Shutdown() })
}

func TestRunAfterShutdownFailsWithShutdownKind(t *testing.T) {
	e := newExecutor(cfg.Cooperative, 2, 16)
	e.Shutdown()

	_, err := executor.Run(context.Background(), e, func() (int, error) { return 1, nil })
	assert.True(t, ioerr.Is(err, ioerr.Shutdown))
}

func TestShutdownWaitsForInFlightJobs(t *testing.T) {
	e := newExecutor(cfg.Cooperative, 2, 16)

	var completed atomic.Bool
	started := make(chan struct{})
	go func() {
		_, _ = executor.Run(context.Background(), e, func() (int, error) {
			close(started)
			time.Sleep(30 * time.Millisecond)
			completed.Store(true)
			return 0, nil
		})
	}()
	<-started

	e.Shutdown()
	assert.True(t, completed.Load())
}

func TestShutdownDropsQueuedDedicatedJobs(t *testing.T) {
	e := newExecutor(cfg.Dedicated, 1, 4)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = executor.Run(context.Background(), e, func() (int, error) {
			close(started)
			<-release
			return 0, nil
		})
	}()
	<-started

	queuedErr := make(chan error, 1)
	go func() {
		_, err := executor.Run(context.Background(), e, func() (int, error) { return 0, nil })
		queuedErr <- err
	}()

	// Give the second job a moment to land in the pending set before we
	// start draining.
	time.Sleep(10 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		e.Shutdown()
		close(done)
	}()

	// Unblock the in-flight job so Shutdown can finish.
	close(release)
	<-done

	err := <-queuedErr
	assert.True(t, ioerr.Is(err, ioerr.Shutdown))
}

type fakeCloser struct {
	closed atomic.Bool
}

func (f *fakeCloser) Close() error {
	f.closed.Store(true)
	return nil
}

func TestHandleRegistryRoundTrip(t *testing.T) {
	e := newExecutor(cfg.Cooperative, 2, 16)
	defer e.Shutdown()

	c := &fakeCloser{}
	id, err := e.RegisterHandle(context.Background(), c)
	require.NoError(t, err)

	v, err := executor.WithHandle(context.Background(), e, id, func(cl executor.Closer) (int, error) {
		_, ok := cl.(*fakeCloser)
		assert.True(t, ok)
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	require.NoError(t, e.DestroyHandle(context.Background(), id))
	assert.True(t, c.closed.Load())

	_, err = executor.WithHandle(context.Background(), e, id, func(executor.Closer) (int, error) { return 0, nil })
	assert.True(t, ioerr.Is(err, ioerr.InvalidHandle))
}

func TestShutdownClosesOutstandingHandles(t *testing.T) {
	e := newExecutor(cfg.Cooperative, 2, 16)

	c := &fakeCloser{}
	id, err := e.RegisterHandle(context.Background(), c)
	require.NoError(t, err)

	e.Shutdown()
	assert.True(t, c.closed.Load())

	_, err = executor.WithHandle(context.Background(), e, id, func(executor.Closer) (int, error) { return 0, nil })
	assert.True(t, ioerr.Is(err, ioerr.InvalidHandle))
}

func TestRegisterHandleAfterShutdownFailsWithShutdownKind(t *testing.T) {
	e := newExecutor(cfg.Cooperative, 2, 16)
	e.Shutdown()

	_, err := e.RegisterHandle(context.Background(), &fakeCloser{})
	assert.True(t, ioerr.Is(err, ioerr.Shutdown))
}

func TestHandleIDScopeMismatchAcrossExecutors(t *testing.T) {
	e1 := newExecutor(cfg.Cooperative, 1, 4)
	defer e1.Shutdown()
	e2 := newExecutor(cfg.Cooperative, 1, 4)
	defer e2.Shutdown()

	id, err := e1.RegisterHandle(context.Background(), &fakeCloser{})
	require.NoError(t, err)

	_, err = executor.WithHandle(context.Background(), e2, id, func(executor.Closer) (int, error) { return 0, nil })
	assert.True(t, ioerr.Is(err, ioerr.ScopeMismatch))
}
