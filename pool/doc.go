// Package pool provides the bounded execution primitives used by the health
// scheduler and the queue tracker.
//
// Two shapes are provided:
//
// Workers is a fixed-size worker pool with a resizable pending queue and a
// discard-oldest overflow policy. When a submission would exceed the queue
// capacity, the oldest pending (not yet started) task is evicted and its
// handle cancelled; tasks that have started running are never interrupted.
//
//	w := pool.NewWorkers(pool.WorkersConfig{Size: 4})
//	w.SetQueueCapacity(3)
//	task, _ := w.Submit("disk-space", func() { probe() })
//	<-task.Done()
//
// Async is a concurrency-bounded executor for fire-and-forget correlation
// work. Callers never block on submission: each submitted function runs on
// its own goroutine that first acquires a weighted semaphore slot.
//
//	a := pool.NewAsync(pool.AsyncConfig{Limit: 16})
//	a.Go(func() { <-started; notify() })
//	a.Close(ctx)
package pool
