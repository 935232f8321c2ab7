package track

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// trackerMetrics pushes per-item duration measurements into OTel
// instruments. All instruments are nil-safe: a tracker built without a
// meter simply skips recording.
type trackerMetrics struct {
	queuingHist   metric.Float64Histogram
	blockedHist   metric.Float64Histogram
	buildableHist metric.Float64Histogram
	waitingHist   metric.Float64Histogram
	executingHist metric.Float64Histogram
	totalHist     metric.Float64Histogram

	events metric.Int64Counter
}

func newTrackerMetrics(meter metric.Meter) (*trackerMetrics, error) {
	m := &trackerMetrics{}

	histograms := []struct {
		target *metric.Float64Histogram
		name   string
		desc   string
	}{
		{&m.queuingHist, "queue.item.queuing_ms", "Time items spent in the queue before leaving"},
		{&m.blockedHist, "queue.item.blocked_ms", "Time items spent blocked"},
		{&m.buildableHist, "queue.item.buildable_ms", "Time items spent buildable"},
		{&m.waitingHist, "queue.item.waiting_ms", "Time items spent waiting"},
		{&m.executingHist, "queue.item.executing_ms", "Time items spent executing"},
		{&m.totalHist, "queue.item.total_ms", "Total time from enqueue to completion"},
	}
	for _, h := range histograms {
		hist, err := meter.Float64Histogram(h.name,
			metric.WithDescription(h.desc),
			metric.WithUnit("ms"),
		)
		if err != nil {
			return nil, err
		}
		*h.target = hist
	}

	events, err := meter.Int64Counter("queue.item.events",
		metric.WithDescription("Queue item lifecycle events emitted"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}
	m.events = events
	return m, nil
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// record pushes the measurements carried by one event.
func (m *trackerMetrics) record(ctx context.Context, event Event) {
	if m == nil {
		return
	}

	m.events.Add(ctx, 1, metric.WithAttributes(
		attribute.String("state", event.State.String()),
	))

	switch event.State {
	case StateStarted, StateCancelled:
		m.queuingHist.Record(ctx, millis(event.Durations.Queuing))
		m.blockedHist.Record(ctx, millis(event.Durations.Blocked))
		m.buildableHist.Record(ctx, millis(event.Durations.Buildable))
		m.waitingHist.Record(ctx, millis(event.Durations.Waiting))
	case StateFinished:
		m.executingHist.Record(ctx, millis(event.Durations.Executing))
		m.totalHist.Record(ctx, millis(event.Durations.Total))
	}
}
