package broker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"chat-backend/errors"
)

const inboxCapacity = 64

// Hub is the process-local exchange behind MemoryBroker. It exists for tests
// and single-process deployments; delivery is best-effort, matching the
// at-least-once, may-drop semantics the subscription loop already tolerates.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan []byte]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]map[chan []byte]struct{})}
}

func (h *Hub) attach(channel string, inbox chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[channel] == nil {
		h.subscribers[channel] = make(map[chan []byte]struct{})
	}
	h.subscribers[channel][inbox] = struct{}{}
}

func (h *Hub) detach(channel string, inbox chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers[channel], inbox)
}

func (h *Hub) publish(channel string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for inbox := range h.subscribers[channel] {
		select {
		case inbox <- message:
		default:
			// Slow consumer: drop rather than block chat throughput.
		}
	}
}

// MemoryBroker is one consumer connection on a Hub.
type MemoryBroker struct {
	hub     *Hub
	log     *slog.Logger
	timeout time.Duration

	mu       sync.Mutex
	inbox    chan []byte
	channels map[string]struct{}
}

func (h *Hub) NewBroker(log *slog.Logger, timeout time.Duration) *MemoryBroker {
	return &MemoryBroker{
		hub:      h,
		log:      log,
		timeout:  timeout,
		channels: make(map[string]struct{}),
	}
}

func (b *MemoryBroker) Start(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inbox == nil {
		b.inbox = make(chan []byte, inboxCapacity)
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inbox == nil {
		return errors.ErrBrokerNotStarted
	}
	b.hub.attach(channel, b.inbox)
	b.channels[channel] = struct{}{}
	return nil
}

func (b *MemoryBroker) Unsubscribe(_ context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inbox == nil {
		return errors.ErrBrokerNotStarted
	}
	b.hub.detach(channel, b.inbox)
	delete(b.channels, channel)
	return nil
}

func (b *MemoryBroker) SendMessage(_ context.Context, channel string, message []byte) error {
	b.hub.publish(channel, message)
	return nil
}

func (b *MemoryBroker) GetMessage(ctx context.Context) ([]byte, error) {
	b.mu.Lock()
	inbox := b.inbox
	b.mu.Unlock()
	if inbox == nil {
		return nil, errors.ErrBrokerNotStarted
	}

	select {
	case message := <-inbox:
		return message, nil
	case <-time.After(b.timeout):
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *MemoryBroker) Stop(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inbox == nil {
		return errors.ErrBrokerNotStarted
	}
	for channel := range b.channels {
		b.hub.detach(channel, b.inbox)
		delete(b.channels, channel)
	}
	b.inbox = nil
	return nil
}
