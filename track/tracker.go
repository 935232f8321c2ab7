package track

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/forgeops/pulse/observe"
	"github.com/forgeops/pulse/pool"
)

// QueueView exposes the ids the host's queue currently knows about,
// including recently-left items. Used by the periodic trim to evict stale
// per-item state for items that disappeared without a matching callback.
type QueueView interface {
	ItemIDs() []int64
}

// SubTaskRecord is the duration record produced when a subtask finishes
// executing, attached to the resolved parent run.
type SubTaskRecord struct {
	// Run is the parent run the subtask belongs to. Nil when no resolver
	// matched.
	Run Run

	// SubTask is the finished subtask.
	SubTask SubTask

	// Item is the queue item the subtask ran for.
	Item Item

	// Executing is the subtask's execution duration.
	Executing time.Duration
}

// Config configures a Tracker.
type Config struct {
	// Listeners receive the item event stream. Each listener is invoked
	// independently per event.
	Listeners []Listener

	// Resolvers map executables to durable runs, tried in order.
	Resolvers []RunResolver

	// Queue is consulted by the periodic trim to evict state for items
	// that vanished without a terminal callback. Optional.
	Queue QueueView

	// StashTTL bounds how long an unclaimed duration record survives.
	// Default: 5 minutes.
	StashTTL time.Duration

	// TrimInterval is the minimum time between trims. Default: 1 minute.
	TrimInterval time.Duration

	// AsyncLimit caps concurrently running correlation tasks.
	// Default: 64.
	AsyncLimit int64

	// OnSubTask receives subtask duration records. Optional.
	OnSubTask func(SubTaskRecord)

	// Logger receives correlation and trim events. Optional.
	Logger observe.Logger

	// Meter publishes duration histograms and event counters. Optional.
	Meter metric.Meter
}

// Tracker observes queue lifecycle transitions, accumulates per-state
// durations per item, correlates items with their eventual executables and
// runs, and emits the event sequence QUEUED -> (STARTED | CANCELLED) ->
// [FINISHED] to all listeners.
//
// Contract:
// - Concurrency: all callbacks are safe for concurrent use and return
//   quickly; listener notification and future-awaiting happen on a bounded
//   async executor, never on the caller's thread.
// - Ordering: events for one item id are emitted in causal order with a
//   monotonic tick; no cross-item ordering is implied.
type Tracker struct {
	config  Config
	async   *pool.Async
	logger  observe.Logger
	metrics *trackerMetrics

	totals totalsMap
	stash  *Stash

	// contexts holds the per-state item->entry-time maps. One mutex guards
	// all three; each mutation is a single map operation.
	mu       sync.Mutex
	contexts [numStates]map[int64]time.Time

	tick     atomic.Int64
	nextTrim atomic.Int64 // unix nanos

	now func() time.Time
}

// NewTracker creates a new Tracker.
func NewTracker(config Config) (*Tracker, error) {
	if config.TrimInterval <= 0 {
		config.TrimInterval = time.Minute
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}

	t := &Tracker{
		config: config,
		logger: config.Logger,
		stash:  NewStash(config.StashTTL),
		now:    time.Now,
	}
	for i := range t.contexts {
		t.contexts[i] = make(map[int64]time.Time)
	}

	t.async = pool.NewAsync(pool.AsyncConfig{
		Limit: config.AsyncLimit,
		OnPanic: func(v any) {
			t.logger.Error(context.Background(), "queue correlation task panicked",
				observe.Field{Key: "panic", Value: fmt.Sprint(v)})
		},
	})

	// The first trim becomes eligible one interval after construction.
	t.nextTrim.Store(t.now().Add(config.TrimInterval).UnixNano())

	if config.Meter != nil {
		m, err := newTrackerMetrics(config.Meter)
		if err != nil {
			_ = t.async.Close(context.Background())
			return nil, err
		}
		t.metrics = m
	}
	return t, nil
}

// OnEnterWaiting records that the item entered the waiting state.
func (t *Tracker) OnEnterWaiting(item Item) { t.enter(item, stateWaiting) }

// OnLeaveWaiting records that the item left the waiting state.
func (t *Tracker) OnLeaveWaiting(item Item) { t.leave(item, stateWaiting) }

// OnEnterBlocked records that the item entered the blocked state.
func (t *Tracker) OnEnterBlocked(item Item) { t.enter(item, stateBlocked) }

// OnLeaveBlocked records that the item left the blocked state.
func (t *Tracker) OnLeaveBlocked(item Item) { t.leave(item, stateBlocked) }

// OnEnterBuildable records that the item entered the buildable state.
func (t *Tracker) OnEnterBuildable(item Item) { t.enter(item, stateBuildable) }

// OnLeaveBuildable records that the item left the buildable state.
func (t *Tracker) OnLeaveBuildable(item Item) { t.leave(item, stateBuildable) }

func (t *Tracker) enter(item Item, state int) {
	t.maybeTrim()
	t.ensureQueued(item)

	id := item.ID()
	t.mu.Lock()
	t.contexts[state][id] = t.now()
	t.mu.Unlock()
}

func (t *Tracker) leave(item Item, state int) {
	t.maybeTrim()

	id := item.ID()
	t.mu.Lock()
	start, ok := t.contexts[state][id]
	if ok {
		delete(t.contexts[state], id)
	}
	t.mu.Unlock()

	if ok {
		t.totals.get(id).add(state, t.now().Sub(start))
	}
}

// OnLeft handles the terminal transition out of the queue. A nil executable
// means the item was cancelled. The item's accumulated totals are claimed
// once; for executing items the resulting duration record is stashed
// for the run-start path and the start/finish futures are awaited
// asynchronously.
func (t *Tracker) OnLeft(item Item, ex Executable) {
	t.maybeTrim()
	t.ensureQueued(item)

	id := item.ID()
	leftAt := t.now()

	// Flush timing contexts the host never closed with a leave callback.
	t.mu.Lock()
	var lingering [numStates]time.Duration
	for state := range t.contexts {
		if start, ok := t.contexts[state][id]; ok {
			delete(t.contexts[state], id)
			lingering[state] = leftAt.Sub(start)
		}
	}
	t.mu.Unlock()

	entry, ok := t.totals.take(id)
	if !ok {
		return // terminal callback already handled for this id
	}
	for state, d := range lingering {
		if d > 0 {
			entry.add(state, d)
		}
	}

	durations := entry.durations()
	durations.Queuing = leftAt.Sub(item.EnqueuedAt())

	if ex == nil {
		t.submit(item, func() {
			<-entry.queuedDone
			t.emit(Event{
				State:     StateCancelled,
				Item:      item,
				Durations: durations,
			})
		})
		return
	}

	t.stash.Put(ex, &Record{Item: item, Durations: durations, LeftAt: leftAt})
	t.submit(item, func() {
		t.correlate(item, ex, entry, durations)
	})
}

// correlate awaits the executable's start and completion conditions,
// emitting STARTED and FINISHED in order.
func (t *Tracker) correlate(item Item, ex Executable, entry *itemTotals, durations Durations) {
	<-entry.queuedDone

	<-ex.Started()
	startObserved := t.now()
	run, _ := Resolvers(t.config.Resolvers).Resolve(ex)

	t.emit(Event{
		State:         StateStarted,
		Item:          item,
		Run:           run,
		Executable:    ex,
		Durations:     durations,
		ExecutorCount: ex.ExecutorCount(),
	})

	<-ex.Done()
	finishObserved := t.now()

	startedAt, finishedAt := ex.StartedAt(), ex.FinishedAt()
	if startedAt.IsZero() {
		startedAt = startObserved
	}
	if finishedAt.IsZero() {
		finishedAt = finishObserved
	}

	durations.Executing = finishedAt.Sub(startedAt)
	durations.Total = durations.Queuing + durations.Executing

	t.emit(Event{
		State:         StateFinished,
		Item:          item,
		Run:           run,
		Executable:    ex,
		Durations:     durations,
		ExecutorCount: ex.ExecutorCount(),
	})

	if st, ok := ex.Task().(SubTask); ok && t.config.OnSubTask != nil {
		t.config.OnSubTask(SubTaskRecord{
			Run:       run,
			SubTask:   st,
			Item:      item,
			Executing: durations.Executing,
		})
	}
}

// ensureQueued claims and emits the QUEUED event exactly once per item.
func (t *Tracker) ensureQueued(item Item) {
	entry := t.totals.get(item.ID())
	if !entry.queued.CompareAndSwap(false, true) {
		return
	}
	if err := t.submit(item, func() {
		defer close(entry.queuedDone)
		t.emit(Event{State: StateQueued, Item: item})
	}); err != nil {
		close(entry.queuedDone)
	}
}

func (t *Tracker) submit(item Item, fn func()) error {
	err := t.async.Go(fn)
	if err != nil {
		t.logger.Warn(context.Background(), "queue event dropped, tracker closed",
			observe.Field{Key: "item", Value: item.ID()})
	}
	return err
}

// emit assigns the event's tick, fans it out to every listener as an
// independent invocation, waits for the fan-out, then pushes measurements.
// Always called from the async executor, never the queue thread.
func (t *Tracker) emit(event Event) {
	event.Tick = t.tick.Add(1)

	var wg sync.WaitGroup
	for _, l := range t.config.Listeners {
		wg.Add(1)
		go func(l Listener) {
			defer wg.Done()
			t.dispatch(l, event)
		}(l)
	}
	wg.Wait()

	t.metrics.record(context.Background(), event)
}

func (t *Tracker) dispatch(l Listener, event Event) {
	defer func() {
		if v := recover(); v != nil {
			t.logger.Error(context.Background(), "queue event listener panicked",
				observe.Field{Key: "state", Value: event.State.String()},
				observe.Field{Key: "item", Value: event.Item.ID()},
				observe.Field{Key: "panic", Value: fmt.Sprint(v)})
		}
	}()

	switch event.State {
	case StateQueued:
		l.OnQueued(event)
	case StateCancelled:
		l.OnCancelled(event)
	case StateStarted:
		l.OnStarted(event)
	case StateFinished:
		l.OnFinished(event)
	}
}

// TakeRecord removes and returns the duration record stashed for the
// executable. The host's run-start path calls this to attach queue timings
// to the new run. Returns ErrNoRecord when nothing was stashed (or the
// record expired).
func (t *Tracker) TakeRecord(ex Executable) (*Record, error) {
	record, ok := t.stash.Take(ex)
	if !ok {
		return nil, ErrNoRecord
	}
	return record, nil
}

// maybeTrim schedules a trim if the interval has elapsed. The next-trim
// timestamp is advanced with a compare-and-swap so concurrent callers
// produce at most one trim.
func (t *Tracker) maybeTrim() {
	now := t.now()
	next := t.nextTrim.Load()
	if now.UnixNano() < next {
		return
	}
	if !t.nextTrim.CompareAndSwap(next, now.Add(t.config.TrimInterval).UnixNano()) {
		return
	}
	_ = t.async.Go(t.trim)
}

// trim reconciles per-item state against the queue's known ids, evicting
// entries for items that left without a terminal callback, and sweeps the
// record stash.
func (t *Tracker) trim() {
	swept := t.stash.Sweep()

	evicted := 0
	var known map[int64]bool
	if t.config.Queue != nil {
		known = make(map[int64]bool)
		for _, id := range t.config.Queue.ItemIDs() {
			known[id] = true
		}
	}

	// Taken entries are tombstones left by the terminal callback; they are
	// discarded here whether or not a queue view is configured.
	for _, id := range t.totals.ids() {
		entry, ok := t.totals.peek(id)
		if !ok {
			continue
		}
		if entry.taken.Load() || (known != nil && !known[id]) {
			t.totals.drop(id)
			evicted++
		}
	}

	if t.config.Queue != nil {
		t.mu.Lock()
		for state := range t.contexts {
			for id := range t.contexts[state] {
				if !known[id] {
					delete(t.contexts[state], id)
					evicted++
				}
			}
		}
		t.mu.Unlock()
	}

	if evicted > 0 || swept > 0 {
		t.logger.Debug(context.Background(), "trimmed stale queue tracking state",
			observe.Field{Key: "evicted", Value: evicted},
			observe.Field{Key: "swept", Value: swept})
	}
}

// Close stops the async executor, waiting for in-flight correlation tasks
// until ctx expires. Callbacks arriving after Close are dropped.
func (t *Tracker) Close(ctx context.Context) error {
	return t.async.Close(ctx)
}
