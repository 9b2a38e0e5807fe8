// Package eventbus provides an in-process pub/sub event bus for domain events.
// The composition service publishes after responding; subscribers process
// events asynchronously in a single consumer goroutine.
package eventbus

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/matthewbaird/signatures/internal/event"
)

// Handler processes a domain event. Implementations must be safe for
// concurrent calls from different goroutines.
type Handler interface {
	HandleEvent(ctx context.Context, evt event.DomainEvent) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, evt event.DomainEvent) error

func (f HandlerFunc) HandleEvent(ctx context.Context, evt event.DomainEvent) error {
	return f(ctx, evt)
}

// Bus is a simple in-process event bus. Events are published to a buffered
// channel and dispatched to all subscribers in a single consumer goroutine,
// so handlers see events in publish order.
type Bus struct {
	mu          sync.RWMutex
	subscribers []namedHandler
	events      chan event.DomainEvent
	done        chan struct{}
	logger      *zap.Logger

	stopOnce sync.Once
	closed   bool
	dropped  int
}

type namedHandler struct {
	name    string
	handler Handler
}

// New creates a new Bus with the given channel buffer size.
func New(bufSize int, logger *zap.Logger) *Bus {
	if bufSize < 1 {
		bufSize = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		events: make(chan event.DomainEvent, bufSize),
		done:   make(chan struct{}),
		logger: logger.Named("eventbus"),
	}
}

// Subscribe registers a named handler. Must be called before Start.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, namedHandler{name: name, handler: h})
}

// Publish sends an event to the bus. Non-blocking: if the buffer is full or
// the bus is stopped the event is dropped and a warning is logged.
func (b *Bus) Publish(_ context.Context, evt event.DomainEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		b.dropped++
		b.logger.Warn("bus stopped, dropping event",
			zap.String("event_type", evt.EventType), zap.String("event_id", evt.ID))
		return
	}
	select {
	case b.events <- evt:
	default:
		b.dropped++
		b.logger.Warn("buffer full, dropping event",
			zap.String("event_type", evt.EventType), zap.String("event_id", evt.ID))
	}
}

// Dropped returns the number of events dropped so far.
func (b *Bus) Dropped() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}

// Start begins the consumer goroutine. It processes events until the
// context is cancelled or Stop is called; pending events are drained first.
func (b *Bus) Start(ctx context.Context) {
	go func() {
		defer close(b.done)
		for {
			select {
			case evt, ok := <-b.events:
				if !ok {
					return
				}
				b.dispatch(ctx, evt)
			case <-ctx.Done():
				b.drain(context.WithoutCancel(ctx))
				return
			}
		}
	}()
}

func (b *Bus) drain(ctx context.Context) {
	for {
		select {
		case evt, ok := <-b.events:
			if !ok {
				return
			}
			b.dispatch(ctx, evt)
		default:
			return
		}
	}
}

// Stop closes the bus and waits for the consumer goroutine to finish
// processing queued events. Start must have been called.
func (b *Bus) Stop() {
	b.stopOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		close(b.events)
		b.mu.Unlock()
	})
	<-b.done
}

func (b *Bus) dispatch(ctx context.Context, evt event.DomainEvent) {
	b.mu.RLock()
	subs := b.subscribers
	b.mu.RUnlock()

	for _, s := range subs {
		if err := s.handler.HandleEvent(ctx, evt); err != nil {
			b.logger.Error("handler failed",
				zap.String("handler", s.name),
				zap.String("event_type", evt.EventType),
				zap.Error(err))
		}
	}
}
