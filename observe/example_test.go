package observe_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/forgeops/pulse/observe"
)

func ExampleNewObserver() {
	cfg := observe.Config{
		ServiceName: "example-service",
		Version:     "1.0.0",
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "none"},
		Metrics:     observe.MetricsConfig{Enabled: false},
		Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
	}

	ctx := context.Background()
	obs, err := observe.NewObserver(ctx, cfg)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer func() {
		_ = obs.Shutdown(ctx)
	}()

	fmt.Println("Observer created successfully")
	// Output:
	// Observer created successfully
}

func ExampleNewObserver_validation() {
	// Missing service name triggers validation error
	cfg := observe.Config{
		ServiceName: "", // Empty - will fail validation
	}

	ctx := context.Background()
	_, err := observe.NewObserver(ctx, cfg)
	if errors.Is(err, observe.ErrMissingServiceName) {
		fmt.Println("Caught: missing service name")
	}
	// Output:
	// Caught: missing service name
}

func ExampleConfig_Validate() {
	// Valid configuration
	cfg := observe.Config{
		ServiceName: "my-service",
		Version:     "1.0.0",
		Tracing: observe.TracingConfig{
			Enabled:   true,
			Exporter:  "stdout",
			SamplePct: 0.5, // 50% sampling
		},
		Metrics: observe.MetricsConfig{
			Enabled:  true,
			Exporter: "prometheus",
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
	}

	if err := cfg.Validate(); err != nil {
		fmt.Println("Invalid:", err)
	} else {
		fmt.Println("Configuration is valid")
	}
	// Output:
	// Configuration is valid
}

func ExampleProbeMeta_SpanName() {
	// With component
	meta := observe.ProbeMeta{
		Name:      "disk_space",
		Component: "health",
	}
	fmt.Println(meta.SpanName())

	// Without component
	meta2 := observe.ProbeMeta{
		Name: "queue_trim",
	}
	fmt.Println(meta2.SpanName())
	// Output:
	// probe.exec.health.disk_space
	// probe.exec.queue_trim
}

func ExampleProbeMeta_ProbeID() {
	// With component
	meta := observe.ProbeMeta{
		Name:      "disk_space",
		Component: "health",
	}
	fmt.Println(meta.ProbeID())

	// Without component
	meta2 := observe.ProbeMeta{
		Name: "queue_trim",
	}
	fmt.Println(meta2.ProbeID())
	// Output:
	// health.disk_space
	// queue_trim
}

func ExampleProbeMeta_Validate() {
	// Valid metadata
	meta := observe.ProbeMeta{
		Name:      "disk_space",
		Component: "health",
		Version:   "1.0.0",
	}
	if err := meta.Validate(); err != nil {
		fmt.Println("Invalid:", err)
	} else {
		fmt.Println("Valid probe metadata")
	}

	// Invalid - missing name
	meta2 := observe.ProbeMeta{
		Component: "health",
	}
	if errors.Is(meta2.Validate(), observe.ErrMissingProbeName) {
		fmt.Println("Caught: missing probe name")
	}
	// Output:
	// Valid probe metadata
	// Caught: missing probe name
}

func ExampleNewLoggerWithWriter() {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("info", &buf)

	ctx := context.Background()
	logger.Info(ctx, "application started", observe.Field{Key: "version", Value: "1.0.0"})

	// Output contains JSON with timestamp, level, msg, and version field
	fmt.Println("Logged message contains 'application started':", bytes.Contains(buf.Bytes(), []byte("application started")))
	// Output:
	// Logged message contains 'application started': true
}

func ExampleLogger_WithProbe() {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("info", &buf)

	meta := observe.ProbeMeta{
		Name:      "disk_space",
		Component: "health",
		Version:   "2.0.0",
	}

	// Create probe-scoped logger
	probeLogger := logger.WithProbe(meta)

	ctx := context.Background()
	probeLogger.Info(ctx, "probe started")

	// Output contains probe context
	output := buf.String()
	fmt.Println("Contains probe.name:", bytes.Contains([]byte(output), []byte("probe.name")))
	fmt.Println("Contains probe.component:", bytes.Contains([]byte(output), []byte("probe.component")))
	// Output:
	// Contains probe.name: true
	// Contains probe.component: true
}

func ExampleMiddleware_Wrap() {
	ctx := context.Background()

	// Create observer with disabled exporters for example
	cfg := observe.Config{
		ServiceName: "example",
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "none"},
		Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "none"},
		Logging:     observe.LoggingConfig{Enabled: false},
	}
	obs, _ := observe.NewObserver(ctx, cfg)
	defer func() {
		_ = obs.Shutdown(ctx)
	}()

	// Create middleware
	mw, _ := observe.MiddlewareFromObserver(obs)

	// Define probe function
	probe := func(ctx context.Context, meta observe.ProbeMeta) error {
		return nil
	}

	// Wrap with observability
	wrapped := mw.Wrap(probe)

	// Execute - automatically traced, metered, and logged
	err := wrapped(ctx, observe.ProbeMeta{
		Name:      "disk_space",
		Component: "health",
	})

	if err != nil {
		fmt.Println("Error:", err)
	} else {
		fmt.Println("Probe succeeded")
	}
	// Output:
	// Probe succeeded
}

func ExampleParseLogLevel() {
	levels := []string{"debug", "info", "warn", "error", "unknown"}
	for _, s := range levels {
		level := observe.ParseLogLevel(s)
		fmt.Printf("%s -> %s\n", s, level)
	}
	// Output:
	// debug -> debug
	// info -> info
	// warn -> warn
	// error -> error
	// unknown -> info
}
