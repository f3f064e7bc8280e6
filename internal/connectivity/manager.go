package connectivity

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"atr-trader/internal/logger"
)

// Status is the API reachability state derived from consecutive failures.
type Status string

const (
	StatusConnected    Status = "CONNECTED"
	StatusDegraded     Status = "DEGRADED"
	StatusDisconnected Status = "DISCONNECTED"
)

// Config holds the failure thresholds and backoff policy.
type Config struct {
	DegradedThreshold     int
	DisconnectedThreshold int
	BackoffMultiplier     float64
	MaxRetryDelaySeconds  int
}

// State is a point-in-time copy of the manager's internals, safe to read
// without holding the manager's lock.
type State struct {
	Status              Status
	ConsecutiveFailures int
	RetryDelaySeconds   int
	NextRetryTime       time.Time
	LastErrorMessage    string
}

// Manager is the central backoff policy shared by all outbound calls. All
// mutation happens under one lock; reads hand out value copies.
type Manager struct {
	mu  sync.Mutex
	cfg Config
	st  State
	now func() time.Time
}

// NewManager validates the configuration and returns a manager in the
// Connected state. Invalid thresholds are configuration errors and fail fast.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.DegradedThreshold <= 0 {
		return nil, fmt.Errorf("degraded threshold must be positive, got %d", cfg.DegradedThreshold)
	}
	if cfg.DisconnectedThreshold <= cfg.DegradedThreshold {
		return nil, fmt.Errorf("disconnected threshold (%d) must exceed degraded threshold (%d)",
			cfg.DisconnectedThreshold, cfg.DegradedThreshold)
	}
	if cfg.BackoffMultiplier <= 1.0 {
		return nil, fmt.Errorf("backoff multiplier must be > 1.0, got %v", cfg.BackoffMultiplier)
	}
	if cfg.MaxRetryDelaySeconds < 1 {
		return nil, fmt.Errorf("max retry delay must be >= 1s, got %d", cfg.MaxRetryDelaySeconds)
	}
	return &Manager{
		cfg: cfg,
		st: State{
			Status:            StatusConnected,
			RetryDelaySeconds: 1,
		},
		now: time.Now,
	}, nil
}

// ReportSuccess resets the manager to the Connected state.
func (m *Manager) ReportSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.st = State{
		Status:            StatusConnected,
		RetryDelaySeconds: 1,
	}
}

// ReportFailure records one failed outbound call: bumps the consecutive
// failure count, recomputes status from the thresholds and extends the
// retry delay up to the configured cap.
func (m *Manager) ReportFailure(ctx context.Context, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.st.ConsecutiveFailures++
	m.st.LastErrorMessage = message

	oldStatus := m.st.Status
	m.st.Status = m.statusFor(m.st.ConsecutiveFailures)

	delay := int(math.Ceil(float64(m.st.RetryDelaySeconds) * m.cfg.BackoffMultiplier))
	if delay > m.cfg.MaxRetryDelaySeconds {
		delay = m.cfg.MaxRetryDelaySeconds
	}
	m.st.RetryDelaySeconds = delay
	m.st.NextRetryTime = m.now().Add(time.Duration(delay) * time.Second)

	if oldStatus != m.st.Status {
		logger.Warn(ctx, "Connectivity status changed",
			"from", string(oldStatus),
			"to", string(m.st.Status),
			"consecutive_failures", m.st.ConsecutiveFailures,
			"retry_delay_seconds", m.st.RetryDelaySeconds,
			"last_error", message,
		)
	}
}

// ShouldAttempt reports whether an outbound call may be attempted now.
// While Connected every call goes through; otherwise calls are held back
// until the retry deadline has passed.
func (m *Manager) ShouldAttempt() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.st.Status == StatusConnected {
		return true
	}
	return !m.now().Before(m.st.NextRetryTime)
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st
}

func (m *Manager) statusFor(failures int) Status {
	switch {
	case failures >= m.cfg.DisconnectedThreshold:
		return StatusDisconnected
	case failures >= m.cfg.DegradedThreshold:
		return StatusDegraded
	default:
		return StatusConnected
	}
}
