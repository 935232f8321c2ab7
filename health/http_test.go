package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLivenessHandler(t *testing.T) {
	handler := LivenessHandler()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "OK" {
		t.Errorf("expected body 'OK', got %q", body)
	}
}

func TestReadinessHandler_BeforeFirstRun(t *testing.T) {
	s := newTestScheduler(t, SchedulerConfig{})
	handler := ReadinessHandler(s)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 before first run, got %d", rec.Code)
	}
}

func TestReadinessHandler_Unhealthy(t *testing.T) {
	s := newTestScheduler(t, SchedulerConfig{})
	s.Registry().Register(NewCheckFunc("down", func(ctx context.Context) Result {
		return Unhealthy("broken")
	}))
	if _, err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	rec := httptest.NewRecorder()
	ReadinessHandler(s)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "UNHEALTHY") {
		t.Errorf("expected UNHEALTHY body, got %q", rec.Body.String())
	}
}

func TestReadinessHandler_Healthy(t *testing.T) {
	s := newTestScheduler(t, SchedulerConfig{})
	s.Registry().Register(namedCheck("up"))
	if _, err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	rec := httptest.NewRecorder()
	ReadinessHandler(s)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestDetailedHandler(t *testing.T) {
	s := newTestScheduler(t, SchedulerConfig{})
	s.Registry().Register(namedCheck("up"))
	s.Registry().Register(NewCheckFunc("down", func(ctx context.Context) Result {
		return Unhealthy("broken")
	}))
	if _, err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	rec := httptest.NewRecorder()
	DetailedHandler(s)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 with failures, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Score != 0.5 {
		t.Errorf("expected score 0.5, got %v", resp.Score)
	}
	if len(resp.Checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(resp.Checks))
	}
	if resp.Checks["down"].Healthy || resp.Checks["down"].Message != "broken" {
		t.Errorf("unexpected 'down' entry: %+v", resp.Checks["down"])
	}
	if !resp.Checks["up"].Healthy {
		t.Errorf("unexpected 'up' entry: %+v", resp.Checks["up"])
	}
}

func TestDetailedHandler_BeforeFirstRun(t *testing.T) {
	s := newTestScheduler(t, SchedulerConfig{})

	rec := httptest.NewRecorder()
	DetailedHandler(s)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 before first run, got %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Score != 1.0 {
		t.Errorf("expected score 1.0 before first run, got %v", resp.Score)
	}
}

func TestSingleCheckHandler(t *testing.T) {
	s := newTestScheduler(t, SchedulerConfig{})
	s.Registry().Register(namedCheck("db"))
	if _, err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	rec := httptest.NewRecorder()
	SingleCheckHandler(s, "db")(rec, httptest.NewRequest(http.MethodGet, "/health/db", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	SingleCheckHandler(s, "missing")(rec, httptest.NewRequest(http.MethodGet, "/health/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown check, got %d", rec.Code)
	}
}

func TestRegisterHandlers(t *testing.T) {
	s := newTestScheduler(t, SchedulerConfig{})
	mux := http.NewServeMux()
	RegisterHandlers(mux, s)

	for _, path := range []string{"/healthz", "/readyz", "/health"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}
