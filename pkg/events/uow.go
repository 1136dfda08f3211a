package events

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/CarlosPavajeau/cetus/pkg/logger"
	"github.com/CarlosPavajeau/cetus/pkg/metrics"
)

// TxRunner abstracts pkg/db.Client's transaction boundary.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Recorder collects the aggregates touched by one unit of work so their
// buffered events can be flushed after the commit.
type Recorder struct {
	raisers []Raiser
}

// Track registers an aggregate for the post-commit flush. Tracking the same
// aggregate twice is harmless: PullEvents drains, so the second pull is empty.
func (r *Recorder) Track(raiser Raiser) {
	if raiser == nil {
		return
	}
	r.raisers = append(r.raisers, raiser)
}

// UnitOfWork wraps a database transaction and flushes the pending events of
// every tracked aggregate into the bus strictly after a successful commit.
// Events therefore always describe already-durable state; a rolled-back
// transaction publishes nothing.
type UnitOfWork struct {
	tx      TxRunner
	bus     *Bus
	logg    *logger.Logger
	metrics *metrics.EventPipelineMetrics
}

func NewUnitOfWork(tx TxRunner, bus *Bus, logg *logger.Logger, m *metrics.EventPipelineMetrics) (*UnitOfWork, error) {
	if tx == nil {
		return nil, errors.New("transaction runner is required")
	}
	if bus == nil {
		return nil, errors.New("bus is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &UnitOfWork{tx: tx, bus: bus, logg: logg, metrics: m}, nil
}

// Execute runs fn inside a transaction. On success it drains every tracked
// aggregate in tracking-then-insertion order into the bus, blocking on a full
// channel (cooperative backpressure).
func (u *UnitOfWork) Execute(ctx context.Context, fn func(tx *gorm.DB, rec *Recorder) error) error {
	rec := &Recorder{}

	if err := u.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return fn(tx, rec)
	}); err != nil {
		return err
	}

	u.flush(ctx, rec)
	return nil
}

func (u *UnitOfWork) flush(ctx context.Context, rec *Recorder) {
	for _, raiser := range rec.raisers {
		for _, event := range raiser.PullEvents() {
			if err := u.bus.Publish(ctx, event); err != nil {
				// The commit already happened; the only publish failure mode
				// is cancellation while the channel is full. The event is
				// lost, which the non-durable design accepts, but never
				// silently.
				evCtx := u.logg.WithEvent(ctx, event.EventName())
				u.logg.Error(evCtx, "dropping domain event after commit", err)
				continue
			}
			u.metrics.IncPublished(event.EventName())
		}
	}
	u.metrics.SetDepth(u.bus.Depth())
}
