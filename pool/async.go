package pool

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// AsyncConfig configures an Async executor.
type AsyncConfig struct {
	// Limit is the maximum number of concurrently running functions.
	// Correlation tasks park on this executor while they wait for start
	// and completion conditions, so the limit should comfortably exceed
	// the host's expected executor count. Default: 64
	Limit int64

	// OnPanic is called when a submitted function panics. Optional.
	OnPanic func(v any)
}

// Async runs functions asynchronously with bounded concurrency.
//
// Submission never blocks the caller: each function gets its own goroutine
// which first waits for a semaphore slot. This keeps lifecycle-callback
// threads fast while still capping the amount of in-flight correlation work.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Context: Close honors cancellation/deadlines while draining.
// - Errors: panics in submitted functions are routed to OnPanic.
type Async struct {
	config AsyncConfig
	sem    *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewAsync creates a new Async executor.
func NewAsync(config AsyncConfig) *Async {
	if config.Limit <= 0 {
		config.Limit = 64
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Async{
		config: config,
		sem:    semaphore.NewWeighted(config.Limit),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Go schedules fn for asynchronous execution. It returns immediately.
// Returns ErrClosed if the executor has been closed.
func (a *Async) Go(fn func()) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	a.wg.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.wg.Done()

		if err := a.sem.Acquire(a.ctx, 1); err != nil {
			return // executor closed while waiting for a slot
		}
		defer a.sem.Release(1)

		defer func() {
			if v := recover(); v != nil && a.config.OnPanic != nil {
				a.config.OnPanic(v)
			}
		}()
		fn()
	}()
	return nil
}

// Wait blocks until all scheduled functions have finished.
func (a *Async) Wait() {
	a.wg.Wait()
}

// Close stops accepting work, cancels functions still waiting for a slot,
// and waits for running functions to finish or ctx to expire.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	a.cancel()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
