// Package track observes a work queue's lifecycle transitions and turns
// them into per-item duration metrics and a correlated event stream.
//
// The host's queue-maintenance thread delivers enter/leave callbacks for
// the waiting, blocked and buildable states plus a terminal OnLeft. Every
// callback returns quickly: per-state elapsed time is accumulated into an
// atomic per-item totals entry, and everything slow (waiting for the
// executable's start and completion, resolving the durable run, notifying
// listeners) happens on a bounded async executor.
//
// For each item the emitted event sequence is exactly
//
//	QUEUED -> STARTED -> FINISHED   (items that execute)
//	QUEUED -> CANCELLED             (items that leave without executing)
//
// with a monotonic tick ordering events of the same item. Listeners are
// notified independently; one listener's panic does not affect the others.
//
// # Basic Usage
//
//	tracker, err := track.NewTracker(track.Config{
//	    Listeners: []track.Listener{metricsListener},
//	    Resolvers: []track.RunResolver{buildResolver},
//	})
//	if err != nil {
//	    return err
//	}
//	defer tracker.Close(context.Background())
//
//	// Wire the host queue's callbacks:
//	queue.OnEnterWaiting = tracker.OnEnterWaiting
//	queue.OnLeaveWaiting = tracker.OnLeaveWaiting
//	queue.OnLeft = tracker.OnLeft
//
// When an item leaves the queue into execution its pre-execution durations
// are stashed keyed by the executable; the host's run-start path claims
// them with TakeRecord to attach queue timings to the new run.
//
// Stale per-item state (items that vanish without a terminal callback) is
// reclaimed by a self-throttled trim that runs at most once per interval
// and reconciles against the queue's currently-known item ids.
package track
