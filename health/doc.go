// Package health provides a periodic health check scheduler with bounded
// concurrency.
//
// Checks are simple units of work that return a binary verdict. The
// Scheduler runs every registered check once per period through a fixed-size
// worker pool, never overlapping runs, and publishes an immutable Snapshot
// of each cycle's results. Under load the pending queue discards the oldest
// not-yet-started checks rather than blocking or growing without bound; a
// running check is never interrupted.
//
// # Core Concepts
//
// A Check performs one probe and reports a Result. A Provider contributes a
// dynamic bundle of checks and is re-queried before every run, so components
// can register checks after startup. The Registry reconciles the union of
// all providers with directly registered checks.
//
// # Basic Usage
//
//	sched, err := health.NewScheduler(health.SchedulerConfig{
//	    Period:   time.Minute,
//	    PoolSize: 4,
//	})
//	if err != nil {
//	    return err
//	}
//	sched.Registry().Register(health.NewMemoryCheck(health.MemoryCheckConfig{}))
//	sched.Registry().Register(health.NewCheckFunc("database", pingDB))
//	if err := sched.Start(); err != nil {
//	    return err
//	}
//	defer sched.Stop(context.Background())
//
// The aggregate score is the ratio of healthy results to collected results:
//
//	score := sched.Score() // 1.0 means everything healthy
//
// # HTTP Endpoints
//
// Handlers serve from the latest snapshot, so probes are always cheap:
//
//	// Liveness probe (for Kubernetes)
//	http.Handle("/healthz", health.LivenessHandler())
//
//	// Readiness probe from the latest snapshot
//	http.Handle("/readyz", health.ReadinessHandler(sched))
//
//	// Detailed per-check results and score
//	http.Handle("/health", health.DetailedHandler(sched))
package health
