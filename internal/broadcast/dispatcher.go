package broadcast

import (
	"context"
	"errors"
	"sync"
)

// Handler handles a published message.
type Handler func(context.Context, Message) error

// Dispatcher interface allows message publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, msg Message) error
	Subscribe(msgType MessageType, handler Handler)
}

// inMemoryDispatcher is a simple synchronous dispatcher.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[MessageType][]Handler
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{
		listeners: make(map[MessageType][]Handler),
	}
}

// Publish synchronously invokes handlers for the message type. Every handler
// runs; their errors are joined.
func (d *inMemoryDispatcher) Publish(ctx context.Context, msg Message) error {
	d.mu.RLock()
	handlers := append([]Handler{}, d.listeners[msg.Type]...)
	d.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers a handler for the given message type.
func (d *inMemoryDispatcher) Subscribe(msgType MessageType, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[msgType] = append(d.listeners[msgType], handler)
}
