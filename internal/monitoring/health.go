// internal/monitoring/health.go
package monitoring

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"
)

// HealthStatus represents the health status of the process.
type HealthStatus string

const (
	HealthStatusHealthy  HealthStatus = "healthy"
	HealthStatusDegraded HealthStatus = "degraded"
)

// HealthSnapshot is the payload served by the health endpoint.
type HealthSnapshot struct {
	Status     HealthStatus  `json:"status"`
	Version    string        `json:"version,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
	Uptime     time.Duration `json:"uptime"`
	Goroutines int           `json:"goroutines"`
	MemoryMB   uint64        `json:"memory_mb"`
}

// Health tracks process start time and version for health reporting.
type Health struct {
	version string
	started time.Time
}

// NewHealth creates a health reporter.
func NewHealth(version string) *Health {
	return &Health{version: version, started: time.Now()}
}

// Snapshot captures the current process state.
func (h *Health) Snapshot() HealthSnapshot {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	return HealthSnapshot{
		Status:     HealthStatusHealthy,
		Version:    h.version,
		Timestamp:  time.Now(),
		Uptime:     time.Since(h.started),
		Goroutines: runtime.NumGoroutine(),
		MemoryMB:   stats.Alloc / 1024 / 1024,
	}
}

// Handler serves the snapshot as JSON.
func (h *Health) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(h.Snapshot()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
