package eventbus

import (
	evbus "github.com/asaskevich/EventBus"
)

// Topics published on the bus.
const (
	// TopicLogsChanged fires after any mutation of the log-bearing
	// collections so the broadcaster can push ahead of its next tick.
	TopicLogsChanged = "logs.changed"
)

// Bus is a process-local publish/subscribe channel between the services.
// Constructed once in bootstrap and injected; there is no package-level
// instance.
type Bus struct {
	inner evbus.Bus
}

// New creates an event bus.
func New() *Bus {
	return &Bus{inner: evbus.New()}
}

// Publish delivers the event to current subscribers.
func (b *Bus) Publish(topic string, args ...any) {
	b.inner.Publish(topic, args...)
}

// Subscribe registers fn for the topic.
func (b *Bus) Subscribe(topic string, fn any) error {
	return b.inner.Subscribe(topic, fn)
}

// SubscribeAsync registers fn to run on its own goroutine per event, so a
// slow handler cannot block the publisher.
func (b *Bus) SubscribeAsync(topic string, fn any) error {
	return b.inner.SubscribeAsync(topic, fn, false)
}

// Unsubscribe removes a previously registered handler.
func (b *Bus) Unsubscribe(topic string, fn any) error {
	return b.inner.Unsubscribe(topic, fn)
}
