package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAsync_Go(t *testing.T) {
	a := NewAsync(AsyncConfig{Limit: 4})

	var count atomic.Int64
	for i := 0; i < 10; i++ {
		if err := a.Go(func() { count.Add(1) }); err != nil {
			t.Fatalf("Go failed: %v", err)
		}
	}

	a.Wait()
	if count.Load() != 10 {
		t.Errorf("Ran %d functions, want 10", count.Load())
	}
}

func TestAsync_SubmissionNeverBlocks(t *testing.T) {
	a := NewAsync(AsyncConfig{Limit: 1})
	defer a.Close(context.Background())

	release := make(chan struct{})
	defer close(release)
	a.Go(func() { <-release })

	// With the single slot occupied, further submissions must still
	// return promptly.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			a.Go(func() { <-release })
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Go blocked the caller")
	}
}

func TestAsync_BoundedConcurrency(t *testing.T) {
	a := NewAsync(AsyncConfig{Limit: 3})

	var active, peak atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		a.Go(func() {
			defer wg.Done()
			n := active.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
		})
	}

	wg.Wait()
	if peak.Load() > 3 {
		t.Errorf("Peak concurrency = %d, want <= 3", peak.Load())
	}
}

func TestAsync_PanicRecovered(t *testing.T) {
	var got atomic.Value
	a := NewAsync(AsyncConfig{
		Limit:   2,
		OnPanic: func(v any) { got.Store(v) },
	})

	a.Go(func() { panic("correlation failed") })
	a.Wait()

	if got.Load() != "correlation failed" {
		t.Errorf("OnPanic saw %v, want 'correlation failed'", got.Load())
	}
}

func TestAsync_Close(t *testing.T) {
	a := NewAsync(AsyncConfig{Limit: 1})

	release := make(chan struct{})
	a.Go(func() { <-release })

	// Give the first function time to claim the slot, then queue another
	// behind it; Close must cancel its semaphore wait.
	time.Sleep(10 * time.Millisecond)
	var ran atomic.Bool
	a.Go(func() { ran.Store(true) })

	close(release)
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := a.Go(func() {}); err != ErrClosed {
		t.Errorf("Go after Close = %v, want ErrClosed", err)
	}
}

func TestAsync_CloseTimeout(t *testing.T) {
	a := NewAsync(AsyncConfig{Limit: 1})

	release := make(chan struct{})
	defer close(release)
	a.Go(func() { <-release })
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := a.Close(ctx); err != context.DeadlineExceeded {
		t.Errorf("Close = %v, want DeadlineExceeded", err)
	}
}
