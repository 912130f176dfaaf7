package docstore

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

// Metrics holds the store request collectors. A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the store collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todosync_store_requests_total",
				Help: "Document store requests by method and outcome.",
			},
			[]string{"method", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todosync_store_request_duration_seconds",
				Help:    "Document store request latency.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.3, 1, 3, 10},
			},
			[]string{"method"},
		),
	}
}

func (m *Metrics) observe(method, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, outcome).Inc()
	m.duration.WithLabelValues(method).Observe(d.Seconds())
}

// LogSummary logs the request counters gathered from g at debug level.
func LogSummary(log *logrus.Entry, g prometheus.Gatherer) {
	families, err := g.Gather()
	if err != nil {
		log.WithError(err).Debug("gather metrics")
		return
	}
	for _, mf := range families {
		if mf.GetName() != "todosync_store_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			fields := logrus.Fields{"count": m.GetCounter().GetValue()}
			for _, lp := range m.GetLabel() {
				fields[lp.GetName()] = lp.GetValue()
			}
			log.WithFields(fields).Debug("store requests")
		}
	}
}
