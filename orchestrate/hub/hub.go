package hub

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tailored-agentic-units/contract-review/observability"
	"github.com/tailored-agentic-units/contract-review/orchestrate/config"
)

const (
	EventSubscribe   observability.EventType = "hub.subscribe"
	EventUnsubscribe observability.EventType = "hub.unsubscribe"
	EventDropped     observability.EventType = "hub.dropped"
	EventShutdown    observability.EventType = "hub.shutdown"
)

// Hub distributes run outputs to subscribers. It satisfies the engine's
// OutputSink.
type Hub interface {
	Emit(ctx context.Context, value any)

	Subscribe(name string, topics ...Topic) (*Subscription, error)
	Unsubscribe(name string) error

	Metrics() MetricsSnapshot
	Shutdown(timeout time.Duration) error
}

// Subscription is one subscriber's view of the hub.
type Subscription struct {
	Name    string
	topics  []Topic
	channel *MessageChannel[*Message]
}

// Receive returns the next message for the subscriber.
func (s *Subscription) Receive(ctx context.Context) (*Message, error) {
	return s.channel.Receive(ctx)
}

func (s *Subscription) wants(topic Topic) bool {
	return len(s.topics) == 0 || slices.Contains(s.topics, topic)
}

type hub struct {
	name       string
	bufferSize int
	observer   observability.Observer

	subscribers map[string]*Subscription
	subsMutex   sync.RWMutex

	sequence atomic.Int64
	metrics  *Metrics

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a hub bound to ctx. A nil observer discards events.
func New(ctx context.Context, hubConfig config.HubConfig, observer observability.Observer) Hub {
	cfg := config.DefaultHubConfig()
	cfg.Merge(&hubConfig)

	if observer == nil {
		observer = observability.NoOpObserver{}
	}

	hubCtx, cancel := context.WithCancel(ctx)

	return &hub{
		name:        cfg.Name,
		bufferSize:  cfg.ChannelBufferSize,
		observer:    observer,
		subscribers: make(map[string]*Subscription),
		metrics:     NewMetrics(),
		ctx:         hubCtx,
		cancel:      cancel,
	}
}

// Subscribe registers name for topics. No topics means every topic.
func (h *hub) Subscribe(name string, topics ...Topic) (*Subscription, error) {
	h.subsMutex.Lock()
	defer h.subsMutex.Unlock()

	if h.ctx.Err() != nil {
		return nil, fmt.Errorf("hub %s is shut down", h.name)
	}

	if _, exists := h.subscribers[name]; exists {
		return nil, fmt.Errorf("subscriber already registered: %s", name)
	}

	sub := &Subscription{
		Name:    name,
		topics:  slices.Clone(topics),
		channel: NewMessageChannel[*Message](h.ctx, h.bufferSize),
	}
	h.subscribers[name] = sub
	h.metrics.RecordSubscriber(1)

	h.emit(h.ctx, EventSubscribe, observability.LevelVerbose, map[string]any{
		"subscriber": name,
		"topics":     len(topics),
	})

	return sub, nil
}

func (h *hub) Unsubscribe(name string) error {
	h.subsMutex.Lock()
	sub, exists := h.subscribers[name]
	if exists {
		delete(h.subscribers, name)
		sub.channel.Close()
	}
	h.subsMutex.Unlock()

	if !exists {
		return fmt.Errorf("subscriber not found: %s", name)
	}

	h.metrics.RecordSubscriber(-1)
	h.emit(h.ctx, EventUnsubscribe, observability.LevelVerbose, map[string]any{
		"subscriber": name,
	})
	return nil
}

// Emit delivers value to every matching subscriber in subscription name
// order. Delivery to a subscriber whose buffer stays full until ctx ends is
// dropped and reported.
func (h *hub) Emit(ctx context.Context, value any) {
	msg := newMessage(h.name, h.sequence.Add(1), value)
	h.metrics.RecordPublished(1)

	h.subsMutex.RLock()
	names := make([]string, 0, len(h.subscribers))
	for name := range h.subscribers {
		names = append(names, name)
	}
	slices.Sort(names)
	subs := make([]*Subscription, 0, len(names))
	for _, name := range names {
		subs = append(subs, h.subscribers[name])
	}
	h.subsMutex.RUnlock()

	for _, sub := range subs {
		if !sub.wants(msg.Topic) {
			continue
		}

		if err := sub.channel.Send(ctx, msg); err != nil {
			h.metrics.RecordDropped(1)
			h.emit(ctx, EventDropped, observability.LevelWarning, map[string]any{
				"subscriber": sub.Name,
				"topic":      string(msg.Topic),
				"error":      err.Error(),
			})
			continue
		}
		h.metrics.RecordDelivered(1)
	}
}

func (h *hub) Metrics() MetricsSnapshot {
	return h.metrics.Snapshot()
}

// Shutdown closes every subscription and stops accepting subscribers.
// Subscribers may keep draining buffered messages until timeout elapses,
// after which the hub context is cancelled.
func (h *hub) Shutdown(timeout time.Duration) error {
	h.subsMutex.Lock()
	subs := h.subscribers
	h.subscribers = make(map[string]*Subscription)
	h.subsMutex.Unlock()

	for _, sub := range subs {
		sub.channel.Close()
	}
	h.metrics.RecordSubscriber(-len(subs))

	deadline := time.Now().Add(timeout)
	for _, sub := range subs {
		for sub.channel.QueueLength() > 0 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
	}

	pending := 0
	for _, sub := range subs {
		pending += sub.channel.QueueLength()
	}

	h.emit(context.Background(), EventShutdown, observability.LevelVerbose, map[string]any{
		"subscribers": len(subs),
		"undrained":   pending,
	})
	h.cancel()

	if pending > 0 {
		return fmt.Errorf("hub %s shut down with %d undelivered messages", h.name, pending)
	}
	return nil
}

func (h *hub) emit(ctx context.Context, typ observability.EventType, level observability.Level, data map[string]any) {
	data["hub"] = h.name
	h.observer.OnEvent(ctx, observability.Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "hub",
		Data:      data,
	})
}
