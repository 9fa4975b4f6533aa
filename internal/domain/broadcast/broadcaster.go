package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/MianAhsan577/waapi-server/internal/domain/admin"
	"github.com/MianAhsan577/waapi-server/internal/domain/eventbus"
	"github.com/MianAhsan577/waapi-server/internal/platform/logging"
)

const (
	defaultInterval  = 10 * time.Second
	defaultHeartbeat = 30 * time.Second
	broadcastPage    = 20
)

// LogLister supplies the filtered page each subscriber receives.
type LogLister interface {
	ListLogs(ctx context.Context, f admin.Filters, page, pageSize int) (admin.Page, error)
}

// Options configures a Broadcaster.
type Options struct {
	Lister LogLister
	Bus    *eventbus.Bus
	Logger *logging.Logger
	// Interval is the polling period for log pushes. Heartbeat is the
	// per-subscriber keep-alive period. Zero values take the defaults.
	Interval  time.Duration
	Heartbeat time.Duration
}

// Broadcaster maintains the set of live dashboard subscribers and pushes
// each one its own filtered view of the logs on a fixed polling interval.
// Mutations nudge an immediate pass through the event bus, but polling
// stays the primary mechanism.
type Broadcaster struct {
	lister    LogLister
	bus       *eventbus.Bus
	logger    *logging.Logger
	interval  time.Duration
	heartbeat time.Duration

	mu          sync.Mutex
	subscribers map[string]*Subscriber

	nudge    chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New builds a Broadcaster. Call Start to begin the polling loop.
func New(opts Options) *Broadcaster {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	heartbeat := opts.Heartbeat
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &Broadcaster{
		lister:      opts.Lister,
		bus:         opts.Bus,
		logger:      opts.Logger,
		interval:    interval,
		heartbeat:   heartbeat,
		subscribers: make(map[string]*Subscriber),
		nudge:       make(chan struct{}, 1),
		stop:        make(chan struct{}),
	}
}

// Start launches the polling loop and subscribes to mutation nudges.
func (b *Broadcaster) Start() {
	if b.bus != nil {
		_ = b.bus.SubscribeAsync(eventbus.TopicLogsChanged, b.requestPass)
	}
	b.wg.Add(1)
	go b.run()
}

// Stop tears down the loop and disconnects every subscriber.
func (b *Broadcaster) Stop() {
	b.stopOnce.Do(func() {
		if b.bus != nil {
			_ = b.bus.Unsubscribe(eventbus.TopicLogsChanged, b.requestPass)
		}
		close(b.stop)
	})
	b.wg.Wait()

	b.mu.Lock()
	for id, sub := range b.subscribers {
		sub.close()
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

// Subscribe registers a live connection with optional city/service filters
// and immediately queues the connection-confirmation event.
func (b *Broadcaster) Subscribe(city, service string) *Subscriber {
	sub := newSubscriber(city, service)

	b.mu.Lock()
	b.subscribers[sub.id] = sub
	count := len(b.subscribers)
	b.mu.Unlock()

	sub.send(Event{Name: EventConnected, Data: map[string]any{
		"message":   "Connected to live log updates",
		"timestamp": sub.createdAt.UTC().Format(time.RFC3339),
	}})

	b.wg.Add(1)
	go b.heartbeatLoop(sub)

	b.debugTag("subscriber %s connected (city=%q service=%q, %d active)",
		sub.id, city, service, count)
	return sub
}

// Unsubscribe removes the subscriber and stops its heartbeat. Safe to call
// more than once.
func (b *Broadcaster) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	delete(b.subscribers, sub.id)
	b.mu.Unlock()
	sub.close()
}

func (b *Broadcaster) run() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			b.broadcastPass()
		case <-b.nudge:
			b.broadcastPass()
		}
	}
}

// requestPass coalesces mutation nudges into at most one pending pass.
func (b *Broadcaster) requestPass() {
	select {
	case b.nudge <- struct{}{}:
	default:
	}
}

// broadcastPass recomputes each subscriber's filtered page and pushes it
// when non-empty. A subscriber that fails to accept the event is skipped,
// never waited on; closed subscribers are pruned.
func (b *Broadcaster) broadcastPass() {
	subs := b.snapshot()
	if len(subs) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.interval)
	defer cancel()

	for _, sub := range subs {
		if sub.closed() {
			b.Unsubscribe(sub)
			continue
		}
		page, err := b.lister.ListLogs(ctx, admin.Filters{
			City:    sub.city,
			Service: sub.service,
		}, 1, broadcastPage)
		if err != nil {
			b.warnTag("log push for subscriber %s failed: %v", sub.id, err)
			continue
		}
		if len(page.Records) == 0 {
			continue
		}
		sub.send(Event{Name: EventLogs, Data: map[string]any{
			"logs":       page.Records,
			"totalCount": page.TotalCount,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
		}})
	}
}

func (b *Broadcaster) heartbeatLoop(sub *Subscriber) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-sub.done:
			return
		case <-b.stop:
			return
		case <-ticker.C:
			sub.send(Event{Name: EventHeartbeat, Data: map[string]any{
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			}})
		}
	}
}

func (b *Broadcaster) snapshot() []*Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := make([]*Subscriber, 0, len(b.subscribers))
	for _, sub := range b.subscribers {
		subs = append(subs, sub)
	}
	return subs
}

func (b *Broadcaster) debugTag(format string, args ...any) {
	if b.logger != nil {
		b.logger.DebugTag("Broadcast", format, args...)
	}
}

func (b *Broadcaster) warnTag(format string, args ...any) {
	if b.logger != nil {
		b.logger.WarnTag("Broadcast", format, args...)
	}
}
