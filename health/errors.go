package health

import "errors"

var (
	// ErrCheckNotFound indicates a check was not found in the registry.
	ErrCheckNotFound = errors.New("health: check not found")

	// ErrAlreadyStarted indicates the scheduler was started twice.
	ErrAlreadyStarted = errors.New("health: scheduler already started")

	// ErrNoSnapshot indicates no run has completed yet.
	ErrNoSnapshot = errors.New("health: no snapshot available")

	// ErrRunInFlight indicates a run is already executing.
	ErrRunInFlight = errors.New("health: run already in flight")

	// ErrUnhealthy reports an unhealthy check verdict through the probe
	// instrumentation path.
	ErrUnhealthy = errors.New("health: check unhealthy")
)
