package track

import (
	"sync"
	"sync/atomic"
	"time"
)

// itemTotals accumulates the time one item spent in each pre-execution
// state. Counters are only ever added to; the entry lives from the item's
// first observation until the terminal leave-queue callback claims it, and
// stays in the table as a tombstone until a trim discards it. Keeping the
// tombstone is what makes a duplicate terminal callback a no-op: the id
// never maps to a fresh entry whose queued flag could fire again.
type itemTotals struct {
	blocked   atomic.Int64 // nanoseconds
	buildable atomic.Int64
	waiting   atomic.Int64

	// queued flips once when the QUEUED event is claimed for emission;
	// queuedDone is closed after its fan-out completes so the terminal
	// event can be ordered after it. taken flips once when the terminal
	// callback claims the entry.
	queued     atomic.Bool
	queuedDone chan struct{}
	taken      atomic.Bool
}

func newItemTotals() *itemTotals {
	return &itemTotals{queuedDone: make(chan struct{})}
}

func (t *itemTotals) add(state int, d time.Duration) {
	switch state {
	case stateBlocked:
		t.blocked.Add(int64(d))
	case stateBuildable:
		t.buildable.Add(int64(d))
	case stateWaiting:
		t.waiting.Add(int64(d))
	}
}

func (t *itemTotals) durations() Durations {
	return Durations{
		Blocked:   time.Duration(t.blocked.Load()),
		Buildable: time.Duration(t.buildable.Load()),
		Waiting:   time.Duration(t.waiting.Load()),
	}
}

// pre-execution states used as totals keys and timing-context map indexes.
const (
	stateWaiting = iota
	stateBlocked
	stateBuildable
	numStates
)

// totalsMap is the id-keyed table of in-flight accumulators.
type totalsMap struct {
	m sync.Map // int64 -> *itemTotals
}

// get returns the accumulator for id, creating it exactly once.
func (tm *totalsMap) get(id int64) *itemTotals {
	if v, ok := tm.m.Load(id); ok {
		return v.(*itemTotals)
	}
	v, _ := tm.m.LoadOrStore(id, newItemTotals())
	return v.(*itemTotals)
}

// take claims the accumulator for id. The second return is false when the
// entry was already taken or never existed. The claimed entry remains in the
// table as a tombstone until a trim drops it.
func (tm *totalsMap) take(id int64) (*itemTotals, bool) {
	v, ok := tm.m.Load(id)
	if !ok {
		return nil, false
	}
	entry := v.(*itemTotals)
	if !entry.taken.CompareAndSwap(false, true) {
		return nil, false
	}
	return entry, true
}

// peek returns the accumulator without removing it.
func (tm *totalsMap) peek(id int64) (*itemTotals, bool) {
	v, ok := tm.m.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*itemTotals), true
}

// ids returns the ids currently held.
func (tm *totalsMap) ids() []int64 {
	var out []int64
	tm.m.Range(func(k, _ any) bool {
		out = append(out, k.(int64))
		return true
	})
	return out
}

// drop removes the entry for id without reading it.
func (tm *totalsMap) drop(id int64) {
	tm.m.Delete(id)
}
