// Package messaging implements the in-process event bus for TaskTrek. The
// engine publishes level-up, badge, quest, and archive events; out-of-scope
// surfaces (notifications, API push) subscribe instead of polling storage.
package messaging

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

// ErrBusClosed is returned when publishing to a closed bus.
var ErrBusClosed = errors.New("messaging: event bus is closed")

// InMemoryEventBus is a synchronous in-process implementation of
// shared.EventPublisher. Suitable for single-instance deployments and tests.
// Handler errors are logged, never propagated to the publisher: a broken
// subscriber must not fail a completion or an archive run.
type InMemoryEventBus struct {
	mu          sync.RWMutex
	handlers    map[shared.EventType][]shared.EventHandler
	allHandlers []shared.EventHandler
	logger      *slog.Logger
	closed      bool
}

// NewInMemoryEventBus creates a new event bus. A nil logger falls back to
// slog.Default.
func NewInMemoryEventBus(logger *slog.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventBus{
		handlers: make(map[shared.EventType][]shared.EventHandler),
		logger:   logger,
	}
}

// Subscribe registers a handler for one event type.
func (b *InMemoryEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) {
	if handler == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeAll registers a handler for every event type.
func (b *InMemoryEventBus) SubscribeAll(handler shared.EventHandler) {
	if handler == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.allHandlers = append(b.allHandlers, handler)
}

// Publish delivers the event to all matching handlers synchronously.
func (b *InMemoryEventBus) Publish(event shared.Event) error {
	if event == nil {
		return nil
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	typed := make([]shared.EventHandler, len(b.handlers[event.Type()]))
	copy(typed, b.handlers[event.Type()])
	all := make([]shared.EventHandler, len(b.allHandlers))
	copy(all, b.allHandlers)
	b.mu.RUnlock()

	for _, handler := range typed {
		b.invoke(handler, event)
	}
	for _, handler := range all {
		b.invoke(handler, event)
	}

	return nil
}

// Close stops the bus; further publishes fail with ErrBusClosed.
func (b *InMemoryEventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

func (b *InMemoryEventBus) invoke(handler shared.EventHandler, event shared.Event) {
	defer func() {
		if p := recover(); p != nil {
			b.logger.Error("event handler panicked",
				"event_type", string(event.Type()),
				"panic", p,
			)
		}
	}()

	if err := handler(event); err != nil {
		b.logger.Warn("event handler failed",
			"event_type", string(event.Type()),
			"aggregate_id", event.AggregateID(),
			"error", err,
		)
	}
}
