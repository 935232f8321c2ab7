package track

// Shared test fakes for the track package.

import (
	"sync"
	"testing"
	"time"
)

type fakeTask struct {
	name string
}

func (t *fakeTask) Name() string { return t.name }

type fakeSubTask struct {
	name  string
	owner Task
}

func (t *fakeSubTask) Name() string { return t.name }
func (t *fakeSubTask) Owner() Task  { return t.owner }

type fakeItem struct {
	id         int64
	enqueuedAt time.Time
	label      string
	task       Task
}

func (i *fakeItem) ID() int64             { return i.id }
func (i *fakeItem) EnqueuedAt() time.Time { return i.enqueuedAt }
func (i *fakeItem) Label() string         { return i.label }
func (i *fakeItem) Task() Task            { return i.task }

type fakeRun struct {
	id string
}

func (r *fakeRun) RunID() string { return r.id }

type fakeExec struct {
	task      Task
	started   chan struct{}
	done      chan struct{}
	executors int

	mu         sync.Mutex
	startedAt  time.Time
	finishedAt time.Time
}

func newFakeExec(task Task) *fakeExec {
	return &fakeExec{
		task:      task,
		started:   make(chan struct{}),
		done:      make(chan struct{}),
		executors: 1,
	}
}

func (e *fakeExec) Task() Task               { return e.task }
func (e *fakeExec) Started() <-chan struct{} { return e.started }
func (e *fakeExec) Done() <-chan struct{}    { return e.done }
func (e *fakeExec) ExecutorCount() int       { return e.executors }

func (e *fakeExec) StartedAt() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startedAt
}

func (e *fakeExec) FinishedAt() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.finishedAt
}

func (e *fakeExec) start(at time.Time) {
	e.mu.Lock()
	e.startedAt = at
	e.mu.Unlock()
	close(e.started)
}

func (e *fakeExec) finish(at time.Time) {
	e.mu.Lock()
	e.finishedAt = at
	e.mu.Unlock()
	close(e.done)
}

// recListener records every event it receives.
type recListener struct {
	mu     sync.Mutex
	events []Event
}

func (l *recListener) record(e Event) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *recListener) OnQueued(e Event)    { l.record(e) }
func (l *recListener) OnCancelled(e Event) { l.record(e) }
func (l *recListener) OnStarted(e Event)   { l.record(e) }
func (l *recListener) OnFinished(e Event)  { l.record(e) }

func (l *recListener) snapshot() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// wait polls until the listener has received n events or the deadline hits.
func (l *recListener) wait(t *testing.T, n int) []Event {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		events := l.snapshot()
		if len(events) >= n {
			return events
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d events, have %d", n, len(events))
		}
		time.Sleep(time.Millisecond)
	}
}

// fakeClock provides a controllable time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{t: start}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
	return c.t
}

type fakeQueueView struct {
	mu  sync.Mutex
	ids []int64
}

func (q *fakeQueueView) ItemIDs() []int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]int64, len(q.ids))
	copy(out, q.ids)
	return out
}

func (q *fakeQueueView) set(ids ...int64) {
	q.mu.Lock()
	q.ids = ids
	q.mu.Unlock()
}
