package broadcast

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event names pushed over a subscriber's channel.
const (
	EventConnected = "connected"
	EventHeartbeat = "heartbeat"
	EventLogs      = "logs"
)

// Event is one server-push message.
type Event struct {
	Name string
	Data any
}

// Subscriber is one live dashboard connection. Its event channel is
// buffered; a subscriber that stops draining misses events rather than
// blocking the broadcaster.
type Subscriber struct {
	id        string
	city      string
	service   string
	createdAt time.Time

	events chan Event
	done   chan struct{}
	once   sync.Once
}

func newSubscriber(city, service string) *Subscriber {
	return &Subscriber{
		id:        uuid.NewString(),
		city:      city,
		service:   service,
		createdAt: time.Now(),
		events:    make(chan Event, 8),
		done:      make(chan struct{}),
	}
}

// ID returns the subscriber identifier.
func (s *Subscriber) ID() string { return s.id }

// Events is the channel the transport drains to write SSE frames.
func (s *Subscriber) Events() <-chan Event { return s.events }

// Done is closed when the subscriber is removed.
func (s *Subscriber) Done() <-chan struct{} { return s.done }

// send delivers without blocking. A full channel drops the event.
func (s *Subscriber) send(evt Event) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.events <- evt:
		return true
	default:
		return false
	}
}

func (s *Subscriber) close() {
	s.once.Do(func() {
		close(s.done)
	})
}

func (s *Subscriber) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
