package session

import (
	"sync"
	"time"
)

// Metrics accumulates per-session performance counters.
type Metrics struct {
	mu            sync.Mutex
	responseTimes []time.Duration
	toolUsage     map[string]int
	successes     int
	errors        int
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	ResponseTimes       []time.Duration `json:"response_times"`
	ToolUsage           map[string]int  `json:"tool_usage"`
	SuccessfulResponses int             `json:"successful_responses"`
	ErrorCount          int             `json:"error_count"`
	AverageResponseTime time.Duration   `json:"average_response_time"`
	// SuccessRate is a percentage; 100 before any turn.
	SuccessRate float64 `json:"success_rate"`
}

// NewMetrics creates empty metrics.
func NewMetrics() *Metrics {
	return &Metrics{toolUsage: make(map[string]int)}
}

// Process records a completed turn. Tool usage is counted from the tools
// the agent actually invoked.
func (m *Metrics) Process(t *Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !t.Success() {
		m.errors++
		return
	}
	m.successes++
	m.responseTimes = append(m.responseTimes, t.Duration)
	for _, name := range t.Result.ToolsUsed() {
		m.toolUsage[name]++
	}
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := MetricsSnapshot{
		ResponseTimes:       append([]time.Duration(nil), m.responseTimes...),
		ToolUsage:           make(map[string]int, len(m.toolUsage)),
		SuccessfulResponses: m.successes,
		ErrorCount:          m.errors,
		SuccessRate:         100,
	}
	for k, v := range m.toolUsage {
		snap.ToolUsage[k] = v
	}
	if n := len(m.responseTimes); n > 0 {
		var total time.Duration
		for _, d := range m.responseTimes {
			total += d
		}
		snap.AverageResponseTime = total / time.Duration(n)
	}
	if total := m.successes + m.errors; total > 0 {
		snap.SuccessRate = float64(m.successes) / float64(total) * 100
	}
	return snap
}

// Reset zeroes every counter.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responseTimes = nil
	m.toolUsage = make(map[string]int)
	m.successes = 0
	m.errors = 0
}
