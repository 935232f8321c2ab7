package health

import "time"

// Entry is a single named result inside a snapshot.
type Entry struct {
	Name   string
	Result Result
}

// Snapshot is an immutable point-in-time collection of health check results.
// Each scheduler run produces exactly one new snapshot that atomically
// replaces the previous one; a snapshot is never mutated after construction.
type Snapshot struct {
	entries   []Entry
	index     map[string]int
	createdAt time.Time
	expiresAt time.Time
}

// NewSnapshot creates a snapshot from entries in their collection order.
// Entries are copied; expiresAt may be zero when no expiry applies.
func NewSnapshot(entries []Entry, createdAt, expiresAt time.Time) *Snapshot {
	s := &Snapshot{
		entries:   make([]Entry, len(entries)),
		index:     make(map[string]int, len(entries)),
		createdAt: createdAt,
		expiresAt: expiresAt,
	}
	copy(s.entries, entries)
	for i, e := range s.entries {
		s.index[e.Name] = i
	}
	return s
}

// Entries returns the results in collection order.
func (s *Snapshot) Entries() []Entry {
	entries := make([]Entry, len(s.entries))
	copy(entries, s.entries)
	return entries
}

// Result returns the result recorded for name.
func (s *Snapshot) Result(name string) (Result, bool) {
	i, ok := s.index[name]
	if !ok {
		return Result{}, false
	}
	return s.entries[i].Result, true
}

// Len returns the number of results collected.
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// CreatedAt returns the snapshot creation time.
func (s *Snapshot) CreatedAt() time.Time {
	return s.createdAt
}

// ExpiresAt returns the time after which the snapshot is considered stale.
// Zero when no expiry was set.
func (s *Snapshot) ExpiresAt() time.Time {
	return s.expiresAt
}

// Unhealthy returns the names of unhealthy results mapped to their messages.
func (s *Snapshot) Unhealthy() map[string]string {
	out := make(map[string]string)
	for _, e := range s.entries {
		if !e.Result.Healthy {
			out[e.Name] = e.Result.Message
		}
	}
	return out
}

// Score returns the ratio of healthy results to total results, in [0, 1].
// A snapshot with no results scores 1.0 (vacuous pass).
func (s *Snapshot) Score() float64 {
	if len(s.entries) == 0 {
		return 1.0
	}
	healthy := 0
	for _, e := range s.entries {
		if e.Result.Healthy {
			healthy++
		}
	}
	return float64(healthy) / float64(len(s.entries))
}
