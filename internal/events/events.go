package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// Event is the interface all events must implement
type Event interface {
	GetEventID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides the common event fields
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// GetEventID returns the event ID
func (e *BaseEvent) GetEventID() string { return e.EventID }

// GetEventType returns the event type
func (e *BaseEvent) GetEventType() string { return e.EventType }

// GetTimestamp returns when the event occurred
func (e *BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// Handler processes events of a subscribed type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
	GetHandlerID() string
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc struct {
	ID string
	Fn func(ctx context.Context, event Event) error
}

// Handle invokes the wrapped function
func (f HandlerFunc) Handle(ctx context.Context, event Event) error { return f.Fn(ctx, event) }

// GetHandlerID returns the handler ID
func (f HandlerFunc) GetHandlerID() string { return f.ID }

// Bus delivers published events to subscribed handlers. Delivery is
// asynchronous; publishing never blocks the caller on handler work.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	queue    chan Event
	wg       sync.WaitGroup
	closed   bool
	logger   *zap.Logger
}

// NewBus creates and starts an event bus with the given queue depth.
func NewBus(queueSize int, logger *zap.Logger) *Bus {
	if queueSize <= 0 {
		queueSize = 256
	}
	b := &Bus{
		handlers: make(map[string][]Handler),
		queue:    make(chan Event, queueSize),
		logger:   logger,
	}
	b.wg.Add(1)
	go b.dispatch()
	return b
}

// Subscribe registers a handler for an event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish enqueues an event for delivery. Publishing after Close, or
// when the queue is full, returns an error instead of blocking.
func (b *Bus) Publish(event Event) error {
	// The lock is held across the send so Close cannot close the
	// channel between the closed check and the enqueue.
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("event bus is closed")
	}

	select {
	case b.queue <- event:
		return nil
	default:
		return fmt.Errorf("event queue is full, dropping %s", event.GetEventType())
	}
}

// Close stops delivery after draining queued events.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.queue)
	b.mu.Unlock()

	b.wg.Wait()
}

func (b *Bus) dispatch() {
	defer b.wg.Done()
	for event := range b.queue {
		b.deliver(event)
	}
}

func (b *Bus) deliver(event Event) {
	b.mu.RLock()
	handlers := b.handlers[event.GetEventType()]
	b.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, handler := range handlers {
		if err := handler.Handle(ctx, event); err != nil {
			b.logger.Error("Event handler failed",
				zap.String("event_type", event.GetEventType()),
				zap.String("event_id", event.GetEventID()),
				zap.String("handler_id", handler.GetHandlerID()),
				zap.Error(err),
			)
		}
	}
}

// GenerateEventID returns a unique event identifier.
func GenerateEventID() string {
	if id, err := uuid.NewV4(); err == nil {
		return id.String()
	}
	return fmt.Sprintf("evt-%d", time.Now().UnixNano())
}
