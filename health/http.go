package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// LivenessHandler returns an HTTP handler for liveness probes.
// This is a simple check that the service is running.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler returns an HTTP handler for readiness probes. It reports
// from the scheduler's latest snapshot rather than running checks inline, so
// a probe is always cheap. Before the first run completes it reports OK.
func ReadinessHandler(s *Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, ok := s.Latest()

		w.Header().Set("Content-Type", "text/plain")

		if !ok || snap.Score() == 1.0 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("UNHEALTHY"))
	}
}

// HealthResponse is the JSON response for the detailed health endpoint.
type HealthResponse struct {
	Score     float64                  `json:"score"`
	Timestamp string                   `json:"timestamp"`
	Expires   string                   `json:"expires,omitempty"`
	Checks    map[string]CheckResponse `json:"checks,omitempty"`
}

// CheckResponse is the JSON response for a single health check.
type CheckResponse struct {
	Healthy  bool   `json:"healthy"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// DetailedHandler returns an HTTP handler that serves the latest snapshot
// with per-check results and the aggregate score.
func DetailedHandler(s *Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, ok := s.Latest()
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(HealthResponse{
				Score:     1.0,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
			return
		}

		response := HealthResponse{
			Score:     snap.Score(),
			Timestamp: snap.CreatedAt().UTC().Format(time.RFC3339),
			Checks:    make(map[string]CheckResponse, snap.Len()),
		}
		if !snap.ExpiresAt().IsZero() {
			response.Expires = snap.ExpiresAt().UTC().Format(time.RFC3339)
		}
		for _, e := range snap.Entries() {
			response.Checks[e.Name] = CheckResponse{
				Healthy:  e.Result.Healthy,
				Message:  e.Result.Message,
				Duration: e.Result.Duration.String(),
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if snap.Score() == 1.0 {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(response)
	}
}

// SingleCheckHandler returns an HTTP handler serving one check's latest result.
func SingleCheckHandler(s *Scheduler, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		snap, ok := s.Latest()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": ErrNoSnapshot.Error(),
			})
			return
		}

		result, found := snap.Result(name)
		if !found {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": ErrCheckNotFound.Error(),
			})
			return
		}

		response := CheckResponse{
			Healthy:  result.Healthy,
			Message:  result.Message,
			Duration: result.Duration.String(),
		}
		if result.Healthy {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(response)
	}
}

// RegisterHandlers registers all health check handlers on the given mux.
func RegisterHandlers(mux *http.ServeMux, s *Scheduler) {
	mux.HandleFunc("/healthz", LivenessHandler())
	mux.HandleFunc("/readyz", ReadinessHandler(s))
	mux.HandleFunc("/health", DetailedHandler(s))
}
