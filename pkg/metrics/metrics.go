package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "garagehub"

// Recorder collects the event engine's counters
type Recorder struct {
	events   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRecorder registers the collectors on reg. Pass prometheus.DefaultRegisterer
// to expose them on Handler.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Garage events processed, by type and outcome code.",
		}, []string{"event_type", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_duration_seconds",
			Help:      "Time spent applying one garage event.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_type"}),
	}

	reg.MustRegister(r.events, r.duration)
	return r
}

// ObserveEvent counts one processed event. outcome is "OK" or the error code.
func (r *Recorder) ObserveEvent(eventType, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.events.WithLabelValues(eventType, outcome).Inc()
	r.duration.WithLabelValues(eventType).Observe(elapsed.Seconds())
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
