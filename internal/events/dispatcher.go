package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher fans domain events out to in-process subscribers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
	// SubscribeAll registers a handler that receives every event type, after the typed handlers.
	SubscribeAll(handler EventHandler)
}

type inMemoryDispatcher struct {
	mu       sync.RWMutex
	typed    map[EventType][]EventHandler
	catchAll []EventHandler
}

// NewInMemoryDispatcher creates a synchronous dispatcher. Services publish on the request path,
// so subscribers that talk to the network should hand events off instead of blocking.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{typed: make(map[EventType][]EventHandler)}
}

func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := make([]EventHandler, 0, len(d.typed[event.Type])+len(d.catchAll))
	handlers = append(handlers, d.typed[event.Type]...)
	handlers = append(handlers, d.catchAll...)
	d.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := invoke(ctx, handler, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.typed[eventType] = append(d.typed[eventType], handler)
}

func (d *inMemoryDispatcher) SubscribeAll(handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.catchAll = append(d.catchAll, handler)
}

// invoke turns a subscriber panic into an error so one broken handler cannot fail the
// operation that emitted the event.
func invoke(ctx context.Context, handler EventHandler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s handler panicked: %v", event.Type, r)
		}
	}()
	return handler(ctx, event)
}
