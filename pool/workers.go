package pool

import (
	"sync"
)

// Task state values.
const (
	taskPending int32 = iota
	taskRunning
	taskDone
	taskCancelled
)

// Task is the handle for a unit of work submitted to Workers.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Ownership: a Task belongs to the pool that created it; callers only
//   observe it and may cancel it while pending.
type Task struct {
	label string
	fn    func()

	mu    sync.Mutex
	state int32
	done  chan struct{}
}

func newTask(label string, fn func()) *Task {
	return &Task{
		label: label,
		fn:    fn,
		state: taskPending,
		done:  make(chan struct{}),
	}
}

// Label returns the label the task was submitted with.
func (t *Task) Label() string {
	return t.label
}

// Done returns a channel closed when the task finishes or is cancelled.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Finished reports whether the task has completed or been cancelled.
func (t *Task) Finished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Cancelled reports whether the task was evicted or cancelled before it ran.
func (t *Task) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == taskCancelled
}

// Cancel cancels the task if it has not started running.
// Returns true if the task was cancelled by this call.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != taskPending {
		return false
	}
	t.state = taskCancelled
	close(t.done)
	return true
}

// start transitions the task to running. Returns false if it was cancelled.
func (t *Task) start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != taskPending {
		return false
	}
	t.state = taskRunning
	return true
}

func (t *Task) finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == taskRunning {
		t.state = taskDone
		close(t.done)
	}
}

// WorkersConfig configures a Workers pool.
type WorkersConfig struct {
	// Size is the number of worker goroutines.
	// Default: 4. Minimum: 2 (one slot may be held by a coordinating task
	// that waits on the others).
	Size int

	// QueueCapacity is the initial pending-queue capacity.
	// May be changed later with SetQueueCapacity. Default: 0.
	QueueCapacity int

	// OnEvict is called (outside the pool lock) for every task discarded
	// by the overflow policy. Optional.
	OnEvict func(t *Task)

	// OnPanic is called when a task panics. The panic does not escape the
	// worker. Optional.
	OnPanic func(label string, v any)
}

// Workers is a fixed-size worker pool with a discard-oldest pending queue.
type Workers struct {
	config WorkersConfig

	mu       sync.Mutex
	cond     *sync.Cond
	pending  []*Task
	capacity int
	idle     int // workers not currently executing a task
	closed   bool
	evicted  int64

	wg sync.WaitGroup
}

// NewWorkers creates a new Workers pool and starts its workers.
func NewWorkers(config WorkersConfig) *Workers {
	if config.Size <= 0 {
		config.Size = 4
	}
	if config.Size < 2 {
		config.Size = 2
	}
	if config.QueueCapacity < 0 {
		config.QueueCapacity = 0
	}

	w := &Workers{
		config:   config,
		capacity: config.QueueCapacity,
		idle:     config.Size,
	}
	w.cond = sync.NewCond(&w.mu)

	w.wg.Add(config.Size)
	for i := 0; i < config.Size; i++ {
		go w.worker()
	}
	return w
}

// Size returns the number of worker goroutines.
func (w *Workers) Size() int {
	return w.config.Size
}

// SetQueueCapacity resizes the pending queue. Shrinking below the current
// backlog evicts the oldest pending tasks until the backlog fits.
func (w *Workers) SetQueueCapacity(n int) {
	if n < 0 {
		n = 0
	}

	var evicted []*Task
	w.mu.Lock()
	w.capacity = n
	for len(w.pending) > w.capacity && w.idle == 0 {
		evicted = append(evicted, w.pending[0])
		w.pending = w.pending[1:]
		w.evicted++
	}
	w.mu.Unlock()

	w.notifyEvicted(evicted)
}

// QueueCapacity returns the current pending-queue capacity.
func (w *Workers) QueueCapacity() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.capacity
}

// Pending returns the current number of queued-but-not-started tasks.
func (w *Workers) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Evicted returns the total number of tasks discarded by the overflow policy.
func (w *Workers) Evicted() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.evicted
}

// Submit queues fn for execution and returns its handle.
//
// If no worker is idle and the pending queue is at capacity, the oldest
// pending task is evicted and cancelled to make room. If the queue has
// capacity zero and nothing is pending, the submitted task itself is
// rejected: its handle is returned cancelled along with ErrRejected.
func (w *Workers) Submit(label string, fn func()) (*Task, error) {
	t := newTask(label, fn)

	var evicted []*Task
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		t.Cancel()
		return t, ErrClosed
	}

	if w.idle == 0 && len(w.pending) >= w.capacity {
		if len(w.pending) == 0 {
			w.evicted++
			w.mu.Unlock()
			t.Cancel()
			w.notifyEvicted([]*Task{t})
			return t, ErrRejected
		}
		evicted = append(evicted, w.pending[0])
		w.pending = w.pending[1:]
		w.evicted++
	}

	w.pending = append(w.pending, t)
	w.cond.Signal()
	w.mu.Unlock()

	w.notifyEvicted(evicted)
	return t, nil
}

func (w *Workers) notifyEvicted(tasks []*Task) {
	for _, t := range tasks {
		t.Cancel()
		if w.config.OnEvict != nil {
			w.config.OnEvict(t)
		}
	}
}

func (w *Workers) worker() {
	defer w.wg.Done()

	w.mu.Lock()
	for {
		for len(w.pending) == 0 && !w.closed {
			w.cond.Wait()
		}
		if len(w.pending) == 0 && w.closed {
			w.mu.Unlock()
			return
		}

		t := w.pending[0]
		w.pending = w.pending[1:]
		w.idle--
		w.mu.Unlock()

		w.run(t)

		w.mu.Lock()
		w.idle++
	}
}

func (w *Workers) run(t *Task) {
	if !t.start() {
		return // evicted between dequeue and start
	}
	defer t.finish()
	defer func() {
		if v := recover(); v != nil && w.config.OnPanic != nil {
			w.config.OnPanic(t.label, v)
		}
	}()
	t.fn()
}

// Close stops the pool. Pending tasks are cancelled; running tasks complete.
// Close blocks until all workers have exited.
func (w *Workers) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.wg.Wait()
		return
	}
	w.closed = true
	cancelled := w.pending
	w.pending = nil
	w.cond.Broadcast()
	w.mu.Unlock()

	for _, t := range cancelled {
		t.Cancel()
	}
	w.wg.Wait()
}
