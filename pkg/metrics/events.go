package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EventPipelineMetrics instruments the domain event channel and dispatcher.
type EventPipelineMetrics struct {
	depth           prometheus.Gauge
	published       *prometheus.CounterVec
	dispatched      *prometheus.CounterVec
	handlerFailures *prometheus.CounterVec
	handlerDuration *prometheus.HistogramVec
}

// NewEventPipelineMetrics registers the pipeline metrics on the provided registerer.
func NewEventPipelineMetrics(reg prometheus.Registerer) *EventPipelineMetrics {
	if reg == nil {
		return &EventPipelineMetrics{}
	}
	depth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "event_channel_depth",
		Help: "Number of domain events waiting in the channel.",
	})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "events_published_total",
		Help: "Domain events flushed into the channel after commit.",
	}, []string{"event"})
	dispatched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "events_dispatched_total",
		Help: "Domain events fully processed by the dispatcher.",
	}, []string{"event"})
	handlerFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "event_handler_failures_total",
		Help: "Handler invocations that returned an error or panicked.",
	}, []string{"event", "handler"})
	handlerDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "event_handler_duration_seconds",
		Help:    "Duration of individual handler invocations.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event", "handler"})
	reg.MustRegister(depth, published, dispatched, handlerFailures, handlerDuration)
	return &EventPipelineMetrics{
		depth:           depth,
		published:       published,
		dispatched:      dispatched,
		handlerFailures: handlerFailures,
		handlerDuration: handlerDuration,
	}
}

// SetDepth records the current channel depth.
func (m *EventPipelineMetrics) SetDepth(depth int) {
	if m == nil || m.depth == nil {
		return
	}
	m.depth.Set(float64(depth))
}

// IncPublished counts a flushed event.
func (m *EventPipelineMetrics) IncPublished(event string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(event).Inc()
}

// IncDispatched counts a fully processed event.
func (m *EventPipelineMetrics) IncDispatched(event string) {
	if m == nil || m.dispatched == nil {
		return
	}
	m.dispatched.WithLabelValues(event).Inc()
}

// IncHandlerFailure counts a failed handler invocation.
func (m *EventPipelineMetrics) IncHandlerFailure(event, handler string) {
	if m == nil || m.handlerFailures == nil {
		return
	}
	m.handlerFailures.WithLabelValues(event, handler).Inc()
}

// ObserveHandlerDuration records how long a handler invocation took.
func (m *EventPipelineMetrics) ObserveHandlerDuration(event, handler string, duration time.Duration) {
	if m == nil || m.handlerDuration == nil {
		return
	}
	m.handlerDuration.WithLabelValues(event, handler).Observe(duration.Seconds())
}
