package track

import "time"

// State is the lifecycle state an event reports.
type State int

const (
	// StateQueued is emitted once when an item is first observed in the queue.
	StateQueued State = iota

	// StateCancelled is emitted when an item leaves the queue without
	// executing. Mutually exclusive with StateStarted.
	StateCancelled

	// StateStarted is emitted when the item's executable begins executing.
	StateStarted

	// StateFinished is emitted when the executable completes. Only ever
	// follows StateStarted.
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateCancelled:
		return "cancelled"
	case StateStarted:
		return "started"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Durations aggregates the time an item spent in each lifecycle phase.
// Fields are zero when not yet applicable for the event's state.
type Durations struct {
	// Queuing is the total time from enqueue to leaving the queue.
	Queuing time.Duration

	// Blocked, Buildable and Waiting are the accumulated times spent in
	// the respective pre-execution states.
	Blocked   time.Duration
	Buildable time.Duration
	Waiting   time.Duration

	// Executing is the time from execution start to completion.
	// Only set on finished events.
	Executing time.Duration

	// Total is Queuing + Executing. Only set on finished events.
	Total time.Duration
}

// Event describes one lifecycle transition of a queue item.
//
// Tick is monotonic across all events from one tracker; for a single item
// id, ticks order the item's events causally. Across items no ordering is
// implied.
type Event struct {
	Tick  int64
	State State
	Item  Item

	// Run is the durable record resolved for the executable. Nil when no
	// resolver matched or the event precedes execution.
	Run Run

	// Executable is the runtime unit. Nil on queued and cancelled events.
	Executable Executable

	Durations     Durations
	ExecutorCount int
}

// Listener receives queue item events. Each applicable state is delivered
// at most once per item.
//
// Contract:
// - Concurrency: methods are invoked from the tracker's async executor,
//   never from the host's queue-maintenance thread; implementations must be
//   safe for concurrent use across items.
// - Errors: panics are recovered and logged per invocation; one listener's
//   failure does not affect delivery to the others.
type Listener interface {
	OnQueued(event Event)
	OnCancelled(event Event)
	OnStarted(event Event)
	OnFinished(event Event)
}

// ListenerFuncs adapts plain functions to the Listener interface. Nil
// functions are skipped.
type ListenerFuncs struct {
	Queued    func(Event)
	Cancelled func(Event)
	Started   func(Event)
	Finished  func(Event)
}

func (l ListenerFuncs) OnQueued(event Event) {
	if l.Queued != nil {
		l.Queued(event)
	}
}

func (l ListenerFuncs) OnCancelled(event Event) {
	if l.Cancelled != nil {
		l.Cancelled(event)
	}
}

func (l ListenerFuncs) OnStarted(event Event) {
	if l.Started != nil {
		l.Started(event)
	}
}

func (l ListenerFuncs) OnFinished(event Event) {
	if l.Finished != nil {
		l.Finished(event)
	}
}
