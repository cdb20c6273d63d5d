// Package metrics keeps process-level counters for the monitoring endpoints.
// It is the only state shared between the scheduler loop and the HTTP server,
// guarded by its own mutex.
package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	EntriesProcessed     int64
	FilteredOut          int64
	DuplicatesSuppressed int64
	FetchErrors          int64
	Published            int64
	SendFailures         int64

	// Status
	LastCycleTime     time.Time
	LastCycleDuration time.Duration
	LastError         string
	LastErrorTime     time.Time
	PostingEnabled    bool
}

var Global = &Metrics{PostingEnabled: true}

func (m *Metrics) AddEntriesProcessed(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EntriesProcessed += int64(n)
}

func (m *Metrics) IncFilteredOut() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FilteredOut++
}

func (m *Metrics) IncDuplicateSuppressed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesSuppressed++
}

func (m *Metrics) IncFetchError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchErrors++
}

func (m *Metrics) IncPublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published++
}

func (m *Metrics) IncSendFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendFailures++
}

// RecordCycle marks the end of one poll cycle.
func (m *Metrics) RecordCycle(start time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastCycleTime = time.Now()
	m.LastCycleDuration = time.Since(start)
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
}

// SetPostingEnabled flips the degraded-mode flag shown by /metrics.
func (m *Metrics) SetPostingEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PostingEnabled = enabled
}

// Snapshot returns a copy of all values for the /metrics handler.
func (m *Metrics) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"entries_processed":      m.EntriesProcessed,
		"filtered_out":           m.FilteredOut,
		"duplicates_suppressed":  m.DuplicatesSuppressed,
		"fetch_errors":           m.FetchErrors,
		"published":              m.Published,
		"send_failures":          m.SendFailures,
		"last_cycle_time":        m.LastCycleTime.Format(time.RFC3339),
		"last_cycle_duration_ms": m.LastCycleDuration.Milliseconds(),
		"last_error":             m.LastError,
		"last_error_time":        m.LastErrorTime.Format(time.RFC3339),
		"posting_enabled":        m.PostingEnabled,
	}
}
