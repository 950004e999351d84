package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

var startTime = time.Now()

// HealthChecker tracks liveness of the bar feed and the governor state
// and serves them as a JSON health endpoint
type HealthChecker struct {
	mu        sync.RWMutex
	lastBar   time.Time
	lastPrice float64
	halted    bool
	errors    []string

	// staleAfter marks the feed degraded when no bar arrives in time
	staleAfter time.Duration
}

type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	LastBar   time.Time `json:"last_bar"`
	LastPrice float64   `json:"last_price"`
	Halted    bool      `json:"halted"`
	Uptime    string    `json:"uptime"`
	Errors    []string  `json:"errors,omitempty"`
}

// NewHealthChecker creates a health checker. staleAfter bounds the gap
// between bars before the feed counts as degraded.
func NewHealthChecker(staleAfter time.Duration) *HealthChecker {
	return &HealthChecker{
		staleAfter: staleAfter,
		errors:     make([]string, 0),
	}
}

// MarkBar records a processed bar
func (h *HealthChecker) MarkBar(price float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastBar = time.Now()
	h.lastPrice = price
}

// SetHalted records the governor permission state
func (h *HealthChecker) SetHalted(halted bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.halted = halted
}

// AddError records a fatal error for the health report
func (h *HealthChecker) AddError(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, msg)
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	if h.lastBar.IsZero() || time.Since(h.lastBar) > h.staleAfter {
		status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if len(h.errors) > 0 {
		status = "unhealthy"
		w.WriteHeader(http.StatusInternalServerError)
	}

	health := HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		LastBar:   h.lastBar,
		LastPrice: h.lastPrice,
		Halted:    h.halted,
		Uptime:    time.Since(startTime).String(),
		Errors:    h.errors,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}
