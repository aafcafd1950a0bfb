package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"caption-studio/internal/domain"
)

// EventType says how the frontend should render an event.
type EventType string

const (
	EventTypeStatus   EventType = "status"
	EventTypeProgress EventType = "progress"
	EventTypeNotice   EventType = "notice"
	EventTypeError    EventType = "error"
	EventTypeReady    EventType = "ready"
)

// Event is a sequenced payload consumed by the frontend. Notice and
// error events render as transient auto-dismissing notifications; a
// ready event creates the one-time download affordance for a job.
type Event struct {
	ID        string          `json:"id"`
	Seq       int64           `json:"seq"`
	Timestamp time.Time       `json:"timestamp"`
	JobID     string          `json:"jobId"`
	Type      EventType       `json:"type"`
	Phase     domain.JobPhase `json:"phase,omitempty"`
	Message   string          `json:"message,omitempty"`
	Progress  int             `json:"progress,omitempty"`
}

// EventBus buffers recent events so the frontend can catch up after a
// reload by asking for everything past its last seen sequence.
type EventBus struct {
	mu        sync.RWMutex
	nextSeq   int64
	maxEvents int
	events    []Event
}

// NewEventBus creates a buffer holding at most maxEvents entries.
func NewEventBus(maxEvents int) *EventBus {
	if maxEvents <= 0 {
		maxEvents = 500
	}

	return &EventBus{
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
	}
}

// Publish stamps the event with an id, the next sequence number, and a
// timestamp, then appends it, dropping the oldest entries past the cap.
func (b *EventBus) Publish(event Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSeq++
	event.Seq = b.nextSeq
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.events = append(b.events, event)
	if len(b.events) > b.maxEvents {
		trim := len(b.events) - b.maxEvents
		b.events = append([]Event(nil), b.events[trim:]...)
	}

	return event
}

// Since lists buffered events newer than the given sequence number.
// Events trimmed by the cap are gone; callers only ever move forward.
func (b *EventBus) Since(seq int64) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.events) == 0 {
		return nil
	}

	out := make([]Event, 0, len(b.events))
	for _, event := range b.events {
		if event.Seq > seq {
			out = append(out, event)
		}
	}
	return out
}
