package handler

import (
	"net/http"
	"time"
)

// Health handles GET /health.
func Health(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r.Header.Get(HeaderRequestID), http.StatusOK, HealthResponse{
			Status:  "healthy",
			Version: version,
			Time:    time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// Ready handles GET /ready. ready is consulted on every call; a nil func
// always reports ready.
func Ready(ready func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, code := "ready", http.StatusOK
		if ready != nil && !ready() {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		writeJSON(w, r.Header.Get(HeaderRequestID), code, HealthResponse{
			Status: status,
			Time:   time.Now().UTC().Format(time.RFC3339),
		})
	}
}
