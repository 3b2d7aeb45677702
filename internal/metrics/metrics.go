package metrics

import (
	"sync"
	"time"
)

// Metrics collects counters across a run. A single Global instance is
// exposed over the optional monitoring endpoints.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	ItemsExtracted     int64
	ItemsAccepted      int64
	DuplicatesRejected int64
	StaleRejected      int64
	SourcesFailed      int64

	// Timings
	LastRunDuration time.Duration

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddExtracted(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsExtracted += int64(n)
}

func (m *Metrics) IncrementAccepted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsAccepted++
}

func (m *Metrics) IncrementDuplicates() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesRejected++
}

func (m *Metrics) IncrementStale() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StaleRejected++
}

func (m *Metrics) IncrementSourcesFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SourcesFailed++
}

func (m *Metrics) RecordRun(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunDuration = duration
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"items_extracted":      m.ItemsExtracted,
		"items_accepted":       m.ItemsAccepted,
		"duplicates_rejected":  m.DuplicatesRejected,
		"stale_rejected":       m.StaleRejected,
		"sources_failed":       m.SourcesFailed,
		"last_run_duration_ms": m.LastRunDuration.Milliseconds(),
		"last_run_time":        m.LastRunTime.Format(time.RFC3339),
		"last_error_time":      m.LastErrorTime.Format(time.RFC3339),
		"last_error":           m.LastError,
		"is_healthy":           m.IsHealthy,
	}
}
