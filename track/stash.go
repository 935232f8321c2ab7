package track

import (
	"sync"
	"time"
)

// Record is the duration record built when an item leaves the queue into
// execution. It is stashed keyed by the execution context so the host's
// run-start path, which fires on a different thread, can pick it up and
// attach it to the run.
type Record struct {
	// Item is the queue item the record was built from.
	Item Item

	// Durations holds the pre-execution durations read from the item's
	// totals at leave-queue time. Executing and Total are not yet set.
	Durations Durations

	// LeftAt is when the item left the queue.
	LeftAt time.Time
}

// Stash is a TTL-bounded store of duration records keyed by executable.
// Entries are single-read: Take removes what it returns. Entries never
// taken (the run-start path did not fire) expire and are swept by the
// tracker's periodic trim.
type Stash struct {
	mu      sync.Mutex
	entries map[Executable]*stashEntry
	ttl     time.Duration
	now     func() time.Time
}

type stashEntry struct {
	record    *Record
	expiresAt time.Time
}

// NewStash creates a stash whose entries expire after ttl.
// A non-positive ttl defaults to 5 minutes.
func NewStash(ttl time.Duration) *Stash {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Stash{
		entries: make(map[Executable]*stashEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put stores the record for the executable, replacing any previous entry.
func (s *Stash) Put(ex Executable, record *Record) {
	s.mu.Lock()
	s.entries[ex] = &stashEntry{
		record:    record,
		expiresAt: s.now().Add(s.ttl),
	}
	s.mu.Unlock()
}

// Take removes and returns the record for the executable.
// Returns (nil, false) on miss or expiry.
func (s *Stash) Take(ex Executable) (*Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[ex]
	if !ok {
		return nil, false
	}
	delete(s.entries, ex)
	if s.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.record, true
}

// Sweep removes expired entries and returns how many were evicted.
func (s *Stash) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	evicted := 0
	for ex, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, ex)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of stashed records.
func (s *Stash) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
