// Package metrics exports event counters and durations for Prometheus.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"morph-bang/internal/morph"
)

// Recorder counts handled command events and their duration per action.
type Recorder struct {
	eventsTotal   *prometheus.CounterVec
	eventDuration *prometheus.HistogramVec
}

// NewRecorder registers the event metrics with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		eventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "morphbang_events_total",
				Help: "Command events handled, by outcome action.",
			},
			[]string{"action"},
		),
		eventDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "morphbang_event_duration_seconds",
				Help:    "Time spent handling a command event, by outcome action.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300, 600},
			},
			[]string{"action"},
		),
	}
}

// Record implements morph.EventRecorder.
func (r *Recorder) Record(_ context.Context, rec morph.EventRecord) {
	action := string(rec.Action)
	r.eventsTotal.WithLabelValues(action).Inc()
	r.eventDuration.WithLabelValues(action).Observe(rec.Duration().Seconds())
}

// Compile-time check that Recorder implements morph.EventRecorder interface
var _ morph.EventRecorder = (*Recorder)(nil)
