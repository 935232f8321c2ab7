package health

import (
	"context"
	"fmt"
	"runtime"
)

// MemoryCheckConfig configures the built-in memory health check.
type MemoryCheckConfig struct {
	// Threshold is the fraction of allocated memory, relative to MaxAlloc,
	// above which the check reports unhealthy.
	// Value should be between 0 and 1. Default: 0.95 (95%)
	Threshold float64

	// MaxAlloc is the maximum expected allocation in bytes.
	// If zero, the runtime's reserved memory (MemStats.Sys) is used.
	MaxAlloc uint64
}

// MemoryCheck reports unhealthy when heap allocation crosses a threshold.
type MemoryCheck struct {
	config MemoryCheckConfig
}

// NewMemoryCheck creates a new memory health check.
func NewMemoryCheck(config MemoryCheckConfig) *MemoryCheck {
	if config.Threshold <= 0 || config.Threshold >= 1 {
		config.Threshold = 0.95
	}
	return &MemoryCheck{config: config}
}

// Name returns the name of this check.
func (m *MemoryCheck) Name() string {
	return "memory"
}

// Check performs the memory health check.
func (m *MemoryCheck) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled: " + ctx.Err().Error())
	default:
	}

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	maxAlloc := m.config.MaxAlloc
	if maxAlloc == 0 {
		maxAlloc = stats.Sys
	}
	if maxAlloc == 0 {
		return Healthy("memory stats unavailable")
	}

	usageRatio := float64(stats.Alloc) / float64(maxAlloc)
	if usageRatio >= m.config.Threshold {
		return Unhealthy(fmt.Sprintf("memory usage critical: %.1f%% (%d of %d bytes)",
			usageRatio*100, stats.Alloc, maxAlloc))
	}

	return Healthy(fmt.Sprintf("memory usage normal: %.1f%%", usageRatio*100))
}

// ForceGC triggers a garbage collection.
// Useful for tests or when accurate memory stats are needed.
func (m *MemoryCheck) ForceGC() {
	runtime.GC()
}
