package respcache

import (
	"sync"
	"time"
)

// Monitor accumulates per-process counters for turn outcomes. It is a
// diagnostic aid surfaced through logs, not an external metrics pipeline.
type Monitor struct {
	mu          sync.Mutex
	requests    int64
	successes   int64
	failures    int64
	timeouts    int64
	cacheHits   int64
	cacheMisses int64
	aiDuration  time.Duration
	aiCalls     int64
}

// NewMonitor constructs a zeroed monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// RecordRequest counts an incoming turn.
func (m *Monitor) RecordRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
}

// RecordOutcome counts a finished turn.
func (m *Monitor) RecordOutcome(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if success {
		m.successes++
	} else {
		m.failures++
	}
}

// RecordTimeout counts a model call that ran out the turn deadline.
func (m *Monitor) RecordTimeout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeouts++
}

// RecordCacheLookup counts a response-cache probe.
func (m *Monitor) RecordCacheLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.cacheHits++
	} else {
		m.cacheMisses++
	}
}

// RecordAIDuration accumulates wall time spent waiting on the model.
func (m *Monitor) RecordAIDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aiDuration += d
	m.aiCalls++
}

// Report is a point-in-time snapshot of the counters.
type Report struct {
	Requests      int64
	Successes     int64
	Failures      int64
	Timeouts      int64
	CacheHits     int64
	CacheMisses   int64
	AvgAIDuration time.Duration
}

// Snapshot returns the current counter values.
func (m *Monitor) Snapshot() Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := Report{
		Requests:    m.requests,
		Successes:   m.successes,
		Failures:    m.failures,
		Timeouts:    m.timeouts,
		CacheHits:   m.cacheHits,
		CacheMisses: m.cacheMisses,
	}
	if m.aiCalls > 0 {
		r.AvgAIDuration = m.aiDuration / time.Duration(m.aiCalls)
	}
	return r
}
