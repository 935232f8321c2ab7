package health

import (
	"context"
	"testing"
	"time"
)

func TestResult_Constructors(t *testing.T) {
	h := Healthy("all good")
	if !h.Healthy {
		t.Error("Healthy() should produce a healthy result")
	}
	if h.Message != "all good" {
		t.Errorf("expected message 'all good', got %q", h.Message)
	}
	if h.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}

	u := Unhealthy("disk full")
	if u.Healthy {
		t.Error("Unhealthy() should produce an unhealthy result")
	}
	if u.Message != "disk full" {
		t.Errorf("expected message 'disk full', got %q", u.Message)
	}
}

func TestResult_WithDuration(t *testing.T) {
	r := Healthy("ok").WithDuration(42 * time.Millisecond)
	if r.Duration != 42*time.Millisecond {
		t.Errorf("expected duration 42ms, got %v", r.Duration)
	}
}

func TestCheckFunc(t *testing.T) {
	called := false
	check := NewCheckFunc("ping", func(ctx context.Context) Result {
		called = true
		return Healthy("pong")
	})

	if check.Name() != "ping" {
		t.Errorf("expected name 'ping', got %q", check.Name())
	}

	result := check.Check(context.Background())
	if !called {
		t.Error("expected check function to be invoked")
	}
	if !result.Healthy || result.Message != "pong" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestStaticProvider(t *testing.T) {
	a := NewCheckFunc("a", func(ctx context.Context) Result { return Healthy("") })
	b := NewCheckFunc("b", func(ctx context.Context) Result { return Healthy("") })

	p := StaticProvider(a, b)
	checks := p.HealthChecks()
	if len(checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(checks))
	}
	if checks["a"] != a || checks["b"] != b {
		t.Error("provider should return the registered checks by name")
	}
}

func TestProviderFunc(t *testing.T) {
	calls := 0
	p := ProviderFunc(func() map[string]Check {
		calls++
		return map[string]Check{}
	})

	p.HealthChecks()
	p.HealthChecks()
	if calls != 2 {
		t.Errorf("expected provider to be re-queried each call, got %d calls", calls)
	}
}
