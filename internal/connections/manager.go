package connections

import (
	"sync"
	"time"
)

// TimeoutConfig holds the liveness settings applied to every open stream
type TimeoutConfig struct {
	PingPeriod time.Duration
	WriteWait  time.Duration
}

// Stream describes one open assistant response stream
type Stream struct {
	ID          string
	Transport   string
	RequesterID string
	StartedAt   time.Time
}

// Manager tracks the assistant streams that are currently open
type Manager struct {
	streams  sync.Map
	mu       sync.RWMutex
	timeouts TimeoutConfig
}

// DefaultTimeouts keeps idle-looking streams alive behind proxies that cut connections
// after 30-60 seconds without traffic.
var DefaultTimeouts = TimeoutConfig{
	PingPeriod: 15 * time.Second,
	WriteWait:  10 * time.Second,
}

// NewManager creates a new stream manager with the specified timeouts
func NewManager(timeouts TimeoutConfig) *Manager {
	return &Manager{
		timeouts: timeouts,
	}
}

// AddStream registers an open stream
func (m *Manager) AddStream(s Stream) {
	m.streams.Store(s.ID, s)
}

// RemoveStream forgets a stream
func (m *Manager) RemoveStream(id string) {
	m.streams.Delete(id)
}

// GetStreamCount returns the current number of open streams
func (m *Manager) GetStreamCount() int {
	count := 0
	m.streams.Range(func(key, value interface{}) bool {
		count++
		return true
	})
	return count
}

// HasStream checks if a specific stream is registered
func (m *Manager) HasStream(id string) bool {
	_, exists := m.streams.Load(id)
	return exists
}

// GetTimeouts returns the current timeout configuration
func (m *Manager) GetTimeouts() TimeoutConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.timeouts
}

// SetTimeouts updates the timeout configuration
func (m *Manager) SetTimeouts(timeouts TimeoutConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeouts = timeouts
}
