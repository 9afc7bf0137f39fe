package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cuemby/swarm/pkg/metrics"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Version    string            `json:"version,omitempty"`
	Uptime     string            `json:"uptime,omitempty"`
	Components map[string]string `json:"components,omitempty"`
}

// ReadyResponse represents the readiness check response
type ReadyResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Message   string            `json:"message,omitempty"`
}

// healthHandler implements the /health endpoint from the components
// registered with metrics; 503 once any of them reports unhealthy
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	h := metrics.GetHealth()
	code := http.StatusOK
	if h.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:     h.Status,
		Timestamp:  time.Now(),
		Version:    s.version,
		Uptime:     h.Uptime,
		Components: h.Components,
	})
}

// readyHandler implements the /ready endpoint: the stack must be readable
// and the container engine must answer
func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	ready := true
	var message string

	if s.manager == nil {
		checks["stack"] = "not initialized"
		checks["docker"] = "not initialized"
		ready = false
		message = "Manager not initialized"
	} else {
		if _, err := s.manager.Snapshot(); err != nil {
			checks["stack"] = fmt.Sprintf("error: %v", err)
			ready = false
			message = "Stack not readable"
		} else {
			checks["stack"] = "ok"
		}

		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		n, err := s.manager.ContainerCount(ctx)
		cancel()
		if err != nil {
			checks["docker"] = fmt.Sprintf("error: %v", err)
			ready = false
			if message == "" {
				message = "Docker not reachable"
			}
		} else {
			checks["docker"] = fmt.Sprintf("%d containers", n)
		}
	}

	status := "ready"
	statusCode := http.StatusOK
	if !ready {
		status = "not ready"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, ReadyResponse{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
		Message:   message,
	})
}
