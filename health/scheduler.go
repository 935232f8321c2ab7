package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/forgeops/pulse/observe"
	"github.com/forgeops/pulse/pool"
)

// SchedulerConfig configures the health check scheduler.
type SchedulerConfig struct {
	// Period is the interval between check runs.
	// Default: 1 minute
	Period time.Duration

	// PoolSize is the number of worker goroutines executing checks.
	// The run itself occupies one worker while it waits for the units it
	// submitted, so the effective check parallelism is PoolSize-1.
	// Default: 4. Minimum: 2.
	PoolSize int

	// Providers returns the current set of check providers. It is
	// re-queried on every cycle so providers can contribute checks
	// dynamically. Optional.
	Providers func() []Provider

	// Logger receives scheduling and delta events. Optional.
	Logger observe.Logger

	// Meter publishes score/count/duration measurements. Optional.
	Meter metric.Meter

	// Probes wraps every check execution with tracing, metrics and
	// logging. Optional.
	Probes *observe.Middleware
}

// Scheduler runs all registered health checks once per period through a
// bounded worker pool, never overlapping runs, and publishes an immutable
// snapshot of each cycle's results.
//
// The pending-work queue is resized every cycle to max(0, H-P+1) for H
// registered checks and pool size P; when a submission would exceed that,
// the oldest queued-but-not-started check is evicted and simply absent from
// the cycle's snapshot. Running checks are never interrupted.
type Scheduler struct {
	config   SchedulerConfig
	registry *Registry
	workers  *pool.Workers
	logger   observe.Logger

	scoreGauge metric.Float64Gauge
	countGauge metric.Int64Gauge
	runHist    metric.Float64Histogram
	evictions  metric.Int64Counter

	mu      sync.Mutex
	started bool
	stop    chan struct{}
	loopDone chan struct{}

	// runMu serializes run submission so a timer tick racing RunOnce
	// cannot both observe the previous task finished and submit.
	runMu   sync.Mutex
	runTask atomic.Pointer[pool.Task]
	latest  atomic.Pointer[Snapshot]

	// lastUnhealthy is only touched by the run in flight; runs never
	// overlap, so no lock is needed.
	lastUnhealthy map[string]string

	cycles  atomic.Int64
	skipped atomic.Int64
}

// NewScheduler creates a new Scheduler.
func NewScheduler(config SchedulerConfig) (*Scheduler, error) {
	if config.Period <= 0 {
		config.Period = time.Minute
	}
	if config.PoolSize <= 0 {
		config.PoolSize = 4
	}
	if config.PoolSize < 2 {
		config.PoolSize = 2
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}

	s := &Scheduler{
		config:        config,
		registry:      NewRegistry(),
		logger:        config.Logger,
		lastUnhealthy: make(map[string]string),
	}

	s.workers = pool.NewWorkers(pool.WorkersConfig{
		Size: config.PoolSize,
		OnEvict: func(task *pool.Task) {
			ctx := context.Background()
			s.logger.Warn(ctx, "health check evicted under load",
				observe.Field{Key: "check", Value: task.Label()})
			if s.evictions != nil {
				s.evictions.Add(ctx, 1)
			}
		},
		OnPanic: func(label string, v any) {
			s.logger.Error(context.Background(), "health check task panicked",
				observe.Field{Key: "check", Value: label},
				observe.Field{Key: "panic", Value: fmt.Sprint(v)})
		},
	})

	if config.Meter != nil {
		if err := s.initInstruments(config.Meter); err != nil {
			s.workers.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) initInstruments(meter metric.Meter) error {
	var err error
	s.scoreGauge, err = meter.Float64Gauge(
		"health.check.score",
		metric.WithDescription("Ratio of healthy checks to total checks"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}
	s.countGauge, err = meter.Int64Gauge(
		"health.check.count",
		metric.WithDescription("Number of results collected in the last run"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return err
	}
	s.runHist, err = meter.Float64Histogram(
		"health.run.duration_ms",
		metric.WithDescription("Duration of a full health check run"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}
	s.evictions, err = meter.Int64Counter(
		"health.run.evictions",
		metric.WithDescription("Checks evicted from the pending queue under load"),
		metric.WithUnit("{check}"),
	)
	return err
}

// Registry returns the scheduler's check registry. Checks registered here
// directly participate in every run alongside provider-contributed checks.
func (s *Scheduler) Registry() *Registry {
	return s.registry
}

// Latest returns the most recent snapshot. The second return is false
// before the first run has completed.
func (s *Scheduler) Latest() (*Snapshot, bool) {
	snap := s.latest.Load()
	return snap, snap != nil
}

// Score returns the score of the latest snapshot, or 1.0 before the first
// run has completed.
func (s *Scheduler) Score() float64 {
	snap := s.latest.Load()
	if snap == nil {
		return 1.0
	}
	return snap.Score()
}

// Cycles returns the number of completed runs.
func (s *Scheduler) Cycles() int64 {
	return s.cycles.Load()
}

// Skipped returns the number of timer fires skipped because the previous
// run was still in flight.
func (s *Scheduler) Skipped() int64 {
	return s.skipped.Load()
}

// Evicted returns the total number of checks discarded under load.
func (s *Scheduler) Evicted() int64 {
	return s.workers.Evicted()
}

// Start begins periodic runs. The first run happens one period after Start.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true
	s.stop = make(chan struct{})
	s.loopDone = make(chan struct{})
	go s.loop(s.stop, s.loopDone)
	return nil
}

func (s *Scheduler) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.config.Period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick(context.Background())
		}
	}
}

// submitRun submits one run to the pool. The check-then-submit is done under
// runMu so only one submitter can win while a run is unfinished.
func (s *Scheduler) submitRun(fn func()) (*pool.Task, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if prev := s.runTask.Load(); prev != nil && !prev.Finished() {
		return nil, ErrRunInFlight
	}
	task, err := s.workers.Submit("health-check-run", fn)
	if err != nil {
		return nil, err
	}
	s.runTask.Store(task)
	return task, nil
}

// tick submits one run to the pool unless the previous run is unfinished.
func (s *Scheduler) tick(ctx context.Context) {
	_, err := s.submitRun(func() {
		s.run(context.Background())
	})
	switch {
	case errors.Is(err, ErrRunInFlight):
		s.skipped.Add(1)
		s.logger.Warn(ctx, "previous health check run still in flight, skipping cycle")
	case err != nil:
		s.logger.Error(ctx, "failed to submit health check run",
			observe.Field{Key: "error", Value: err.Error()})
	}
}

// RunOnce triggers a run outside the periodic schedule and waits for it.
// Returns ErrRunInFlight if a run is already executing.
func (s *Scheduler) RunOnce(ctx context.Context) (*Snapshot, error) {
	task, err := s.submitRun(func() {
		s.run(ctx)
	})
	if err != nil {
		return nil, err
	}

	select {
	case <-task.Done():
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	snap := s.latest.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

// run executes one full cycle: reconcile the registry, fan the checks out
// through the pool, collect, publish.
func (s *Scheduler) run(ctx context.Context) {
	defer func() {
		if v := recover(); v != nil {
			s.logger.Error(ctx, "health check run failed",
				observe.Field{Key: "panic", Value: fmt.Sprint(v)})
		}
	}()

	start := time.Now()

	if s.config.Providers != nil {
		s.registry.Reconcile(s.config.Providers())
	}

	checks := s.registry.All()
	capacity := len(checks) - s.workers.Size() + 1
	if capacity < 0 {
		capacity = 0
	}
	s.workers.SetQueueCapacity(capacity)

	type collected struct {
		result Result
		ok     bool
	}
	results := make([]collected, len(checks))
	tasks := make([]*pool.Task, 0, len(checks))
	for i, check := range checks {
		task, err := s.workers.Submit(check.Name(), func() {
			results[i] = collected{result: s.execute(ctx, check), ok: true}
		})
		if err != nil {
			// Rejected outright; the check is absent from this cycle
			// and retried on the next one.
			continue
		}
		tasks = append(tasks, task)
	}
	for _, task := range tasks {
		<-task.Done()
	}

	entries := make([]Entry, 0, len(checks))
	for i, check := range checks {
		if results[i].ok {
			entries = append(entries, Entry{Name: check.Name(), Result: results[i].result})
		}
	}

	now := time.Now()
	snap := NewSnapshot(entries, now, now.Add(s.config.Period))
	s.latest.Store(snap)
	s.cycles.Add(1)

	s.publish(ctx, snap, time.Since(start))
	s.logDeltas(ctx, snap)
}

// execute runs a single check, recovering panics into unhealthy results.
func (s *Scheduler) execute(ctx context.Context, check Check) Result {
	start := time.Now()

	var result Result
	probe := func(ctx context.Context, meta observe.ProbeMeta) error {
		result = s.safeCheck(ctx, check)
		if !result.Healthy {
			return fmt.Errorf("%w: %s", ErrUnhealthy, result.Message)
		}
		return nil
	}
	if s.config.Probes != nil {
		probe = s.config.Probes.Wrap(probe)
	}
	_ = probe(ctx, observe.ProbeMeta{Component: "health", Name: check.Name()})

	result.Duration = time.Since(start)
	if result.Timestamp.IsZero() {
		result.Timestamp = start
	}
	return result
}

func (s *Scheduler) safeCheck(ctx context.Context, check Check) (result Result) {
	defer func() {
		if v := recover(); v != nil {
			result = Unhealthy(fmt.Sprint(v))
		}
	}()
	return check.Check(ctx)
}

func (s *Scheduler) publish(ctx context.Context, snap *Snapshot, elapsed time.Duration) {
	if s.scoreGauge != nil {
		s.scoreGauge.Record(ctx, snap.Score())
	}
	if s.countGauge != nil {
		s.countGauge.Record(ctx, int64(snap.Len()))
	}
	if s.runHist != nil {
		s.runHist.Record(ctx, float64(elapsed.Milliseconds()))
	}
}

// logDeltas logs changes in the unhealthy set between consecutive runs:
// newly failing checks at warn, persisting failures at debug, recoveries
// at info.
func (s *Scheduler) logDeltas(ctx context.Context, snap *Snapshot) {
	current := snap.Unhealthy()

	for name, message := range current {
		fields := []observe.Field{
			{Key: "check", Value: name},
			{Key: "message", Value: message},
		}
		if _, was := s.lastUnhealthy[name]; was {
			s.logger.Debug(ctx, "health check still failing", fields...)
		} else {
			s.logger.Warn(ctx, "health check failing", fields...)
		}
	}

	for name, message := range s.lastUnhealthy {
		if _, still := current[name]; still {
			continue
		}
		// Only report a recovery if the check was actually collected
		// this cycle; an evicted check is unknown, not recovered, and
		// stays in the failing set.
		if _, collected := snap.Result(name); collected {
			s.logger.Info(ctx, "health check recovered",
				observe.Field{Key: "check", Value: name})
		} else {
			current[name] = message
		}
	}

	s.lastUnhealthy = current
}

// Stop halts the periodic timer and shuts the worker pool down. Pending
// checks are cancelled; running checks complete.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		close(s.stop)
		s.started = false
	}
	loopDone := s.loopDone
	s.mu.Unlock()

	if loopDone != nil {
		select {
		case <-loopDone:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.workers.Close()
	return nil
}
