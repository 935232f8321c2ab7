package track

import "time"

// Task is the unit of work an item carries through the queue.
type Task interface {
	// Name returns a human-readable task name.
	Name() string
}

// SubTask is a component of a multi-part task. It belongs to exactly one
// owner task.
type SubTask interface {
	Task

	// Owner returns the parent task this subtask belongs to.
	Owner() Task
}

// Item is a unit of pending work observed in the host's queue.
//
// Contract:
// - Identity: ID is monotonically increasing and stable for the item's
//   lifetime in the queue.
// - Concurrency: implementations must be safe for concurrent use; the
//   tracker reads items from multiple callback threads.
type Item interface {
	// ID returns the item's queue id.
	ID() int64

	// EnqueuedAt returns when the item entered the queue.
	EnqueuedAt() time.Time

	// Label returns the item's assigned label. May be empty.
	Label() string

	// Task returns the task the item carries.
	Task() Task
}

// Executable is the runtime unit produced when an item leaves the queue to
// execute.
//
// Contract:
// - Comparability: values are used as stash keys and must have a comparable
//   dynamic type (pointer implementations satisfy this trivially).
// - Concurrency: Started and Done return channels closed at the respective
//   transition; they may be received from by any number of goroutines.
type Executable interface {
	// Task returns the task being executed.
	Task() Task

	// Started is closed when execution begins.
	Started() <-chan struct{}

	// Done is closed when execution completes.
	Done() <-chan struct{}

	// StartedAt returns when execution began. Zero before Started.
	StartedAt() time.Time

	// FinishedAt returns when execution completed. Zero before Done.
	FinishedAt() time.Time

	// ExecutorCount returns the number of executors occupied.
	ExecutorCount() int
}

// Run is a durable record of an execution, resolved from an Executable via
// the resolver chain. The tracker treats it as opaque.
type Run interface {
	// RunID returns the durable identifier of the run.
	RunID() string
}
