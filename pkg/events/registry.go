package events

import (
	"context"
	"fmt"
	"sync"
)

// Handler executes one side effect for a dispatched event. Implementations
// open their own unit of work; they never share the transaction that produced
// the event.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// Registration pairs a handler with the name it was registered under; the
// name shows up in logs and metrics labels.
type Registration struct {
	name    string
	handler Handler
}

// Name returns the handler's registered name.
func (r Registration) Name() string { return r.name }

// Handle forwards to the registered handler.
func (r Registration) Handle(ctx context.Context, event Event) error {
	return r.handler.Handle(ctx, event)
}

// Registry maps event names to their ordered handler lists. It is assembled at
// process start and injected into the dispatcher; nothing registers after the
// dispatcher starts.
type Registry struct {
	mtx      sync.RWMutex
	handlers map[string][]Registration
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string][]Registration)}
}

// Register appends a handler for the named event. Handlers run in
// registration order.
func (r *Registry) Register(eventName, handlerName string, handler Handler) {
	if handler == nil {
		return
	}
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.handlers[eventName] = append(r.handlers[eventName], Registration{
		name:    handlerName,
		handler: handler,
	})
}

// HandlersFor returns the registrations for the event, in order.
func (r *Registry) HandlersFor(eventName string) []Registration {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return r.handlers[eventName]
}

type typedHandler[T Event] struct {
	fn func(ctx context.Context, event T) error
}

func (h typedHandler[T]) Handle(ctx context.Context, event Event) error {
	typed, ok := event.(T)
	if !ok {
		return fmt.Errorf("handler expected %T, got %T", *new(T), event)
	}
	return h.fn(ctx, typed)
}

// On registers a typed handler function. The event name is derived from the
// concrete event type, so a registration can never disagree with its payload.
func On[T Event](r *Registry, handlerName string, fn func(ctx context.Context, event T) error) {
	var zero T
	r.Register(zero.EventName(), handlerName, typedHandler[T]{fn: fn})
}
