package health

import (
	"context"
	"time"
)

// Result contains the outcome of a health check.
type Result struct {
	// Healthy is the binary verdict of the check.
	Healthy bool

	// Message provides additional context about the verdict.
	Message string

	// Duration is how long the check took.
	Duration time.Duration

	// Timestamp is when the check was performed.
	Timestamp time.Time
}

// Healthy creates a healthy result.
func Healthy(message string) Result {
	return Result{
		Healthy:   true,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Unhealthy creates an unhealthy result.
func Unhealthy(message string) Result {
	return Result{
		Message:   message,
		Timestamp: time.Now(),
	}
}

// WithDuration sets the duration on a result.
func (r Result) WithDuration(d time.Duration) Result {
	r.Duration = d
	return r
}

// Check is the interface for health check units.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Check should honor cancellation/deadlines where it can; slow
//   checks are never interrupted by the scheduler, only delayed.
// - Errors: implementations should return an unhealthy Result rather than
//   panic; panics are recovered and converted by the scheduler.
type Check interface {
	// Name returns the unique name of this check.
	Name() string

	// Check performs the probe and returns the verdict.
	Check(ctx context.Context) Result
}

// CheckFunc is an adapter to allow ordinary functions to be used as Checks.
type CheckFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckFunc creates a new CheckFunc.
func NewCheckFunc(name string, fn func(context.Context) Result) *CheckFunc {
	return &CheckFunc{name: name, fn: fn}
}

// Name returns the name of this check.
func (f *CheckFunc) Name() string {
	return f.name
}

// Check performs the probe.
func (f *CheckFunc) Check(ctx context.Context) Result {
	return f.fn(ctx)
}

// Provider contributes a bundle of named health checks. Providers are
// re-queried on every scheduler cycle, so a provider may register new
// checks dynamically after startup.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: HealthChecks must not panic and should be cheap; it is called
//   once per cycle.
type Provider interface {
	// HealthChecks returns the checks contributed by this provider,
	// keyed by check name.
	HealthChecks() map[string]Check
}

// ProviderFunc is an adapter to allow ordinary functions to be used as
// Providers.
type ProviderFunc func() map[string]Check

// HealthChecks returns the checks contributed by this provider.
func (f ProviderFunc) HealthChecks() map[string]Check {
	return f()
}

// StaticProvider returns a Provider that always contributes the given checks.
func StaticProvider(checks ...Check) Provider {
	m := make(map[string]Check, len(checks))
	for _, c := range checks {
		m[c.Name()] = c
	}
	return ProviderFunc(func() map[string]Check { return m })
}
