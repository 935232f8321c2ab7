// Package observe provides observability primitives for the metrics and
// health subsystem.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond exporter setup. Consumers wire the observer into the health
// scheduler and queue tracker.
package observe
