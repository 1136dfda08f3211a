package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CarlosPavajeau/cetus/pkg/logger"
	"github.com/CarlosPavajeau/cetus/pkg/metrics"
)

// Dispatcher is the single long-lived consumer of the bus. It preserves global
// FIFO order by draining one event at a time and running that event's handler
// chain sequentially before dequeuing the next.
type Dispatcher struct {
	bus      *Bus
	registry *Registry
	logg     *logger.Logger
	metrics  *metrics.EventPipelineMetrics
}

func NewDispatcher(bus *Bus, registry *Registry, logg *logger.Logger, m *metrics.EventPipelineMetrics) (*Dispatcher, error) {
	if bus == nil {
		return nil, errors.New("bus is required")
	}
	if registry == nil {
		return nil, errors.New("registry is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Dispatcher{
		bus:      bus,
		registry: registry,
		logg:     logg,
		metrics:  m,
	}, nil
}

// Run consumes events until ctx is canceled. Cancellation is only honored
// between events: a handler chain that has started always runs to completion,
// so the worst case on shutdown is the partial loss the at-most-once design
// already accepts, never a half-aborted chain.
func (d *Dispatcher) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	d.logg.Info(ctx, "event dispatcher started")

	for {
		select {
		case <-ctx.Done():
			d.logg.Info(ctx, "event dispatcher stopped")
			return ctx.Err()
		case event := <-d.bus.Receive():
			d.dispatch(context.WithoutCancel(ctx), event)
			d.metrics.SetDepth(d.bus.Depth())
		}
	}
}

// Drain processes whatever is already queued and returns without waiting for
// new events. cmd/api calls this during graceful shutdown.
func (d *Dispatcher) Drain(ctx context.Context, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		select {
		case event := <-d.bus.Receive():
			d.dispatch(context.WithoutCancel(ctx), event)
		default:
			return
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, event Event) {
	name := event.EventName()
	ctx = d.logg.WithEvent(ctx, name)

	registrations := d.registry.HandlersFor(name)
	if len(registrations) == 0 {
		d.logg.Warn(ctx, "no handlers registered for event")
		return
	}

	for _, reg := range registrations {
		d.invoke(ctx, name, reg, event)
	}
	d.metrics.IncDispatched(name)
}

// invoke isolates a single handler: a panic or error in one side effect must
// not halt the dispatcher or starve the remaining handlers.
func (d *Dispatcher) invoke(ctx context.Context, eventName string, reg Registration, event Event) {
	ctx = d.logg.WithField(ctx, "handler", reg.name)
	start := time.Now()

	defer func() {
		d.metrics.ObserveHandlerDuration(eventName, reg.name, time.Since(start))
		if rec := recover(); rec != nil {
			d.metrics.IncHandlerFailure(eventName, reg.name)
			d.logg.Error(ctx, "event handler panicked", fmt.Errorf("panic: %v", rec))
		}
	}()

	if err := reg.handler.Handle(ctx, event); err != nil {
		d.metrics.IncHandlerFailure(eventName, reg.name)
		d.logg.Error(ctx, "event handler failed", err)
	}
}
