package jobs

import (
	"errors"
	"fmt"
	"sync"

	"caption-studio/internal/domain"
)

// ErrJobAlreadyRunning is returned when submitting while a job is active.
var ErrJobAlreadyRunning = errors.New("job already running")

// ErrPollActive is returned when a poll is started before the previous
// one was cleared.
var ErrPollActive = errors.New("poll handle still active")

// Manager tracks the single allowed active job and owns its poll
// handle. Clearing the slot is the sole cancellation mechanism: it
// stops further poll ticks but cannot recall an in-flight request.
type Manager struct {
	mu       sync.RWMutex
	current  domain.Job
	stopPoll func()
}

// NewManager creates a manager in idle state.
func NewManager() *Manager {
	return &Manager{
		current: domain.Job{Phase: domain.JobPhaseIdle},
	}
}

// Start moves the slot into uploading phase. Rejects concurrent
// submissions so a double-click cannot create two jobs.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if isActive(m.current.Phase) {
		return ErrJobAlreadyRunning
	}

	m.current = domain.Job{Phase: domain.JobPhaseUploading}
	return nil
}

// StartPolling records the server-issued job id and the poll stop
// function. The previous poll handle must have been cleared first.
func (m *Manager) StartPolling(jobID string, stop func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopPoll != nil {
		return ErrPollActive
	}
	if m.current.Phase != domain.JobPhaseUploading {
		return fmt.Errorf("cannot poll from phase %s", m.current.Phase)
	}

	m.current.ID = jobID
	m.current.Phase = domain.JobPhasePolling
	m.current.StatusID = domain.StatusNotStarted
	m.current.Progress = 0
	m.stopPoll = stop
	return nil
}

// SetStatus records the latest server-reported state and returns the
// updated snapshot. Ignored when the slot was cleared concurrently.
func (m *Manager) SetStatus(statusID, progress int) domain.Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.ID == "" {
		return m.current
	}

	m.current.StatusID = statusID
	m.current.Progress = progress
	return m.current
}

// Clear stops any live poll handle, discards the job id, and leaves the
// slot in the given final phase. Safe to call repeatedly.
func (m *Manager) Clear(final domain.JobPhase) {
	m.mu.Lock()
	stop := m.stopPoll
	m.stopPoll = nil
	m.current.ID = ""
	m.current.Phase = final
	m.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// Current returns a snapshot of the current job.
func (m *Manager) Current() domain.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// ActiveJobID returns the id of the job being polled, or empty.
func (m *Manager) ActiveJobID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.ID
}

// IsRunning reports whether an upload or poll is in flight.
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return isActive(m.current.Phase)
}

// isActive checks if a phase represents work in flight.
func isActive(phase domain.JobPhase) bool {
	switch phase {
	case domain.JobPhaseUploading, domain.JobPhasePolling:
		return true
	default:
		return false
	}
}
