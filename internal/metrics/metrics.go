package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "activity_bot"

// Metrics holds the collectors shared by the consumer and the api
type Metrics struct {
	messagesTotal      *prometheus.CounterVec
	extractionFailures *prometheus.CounterVec
	extractionDuration *prometheus.HistogramVec
	ingestTotal        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Chat messages consumed, by outcome",
		}, []string{"outcome"}),
		extractionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_failures_total",
			Help:      "Extractions that yielded no material, by strategy and reason",
		}, []string{"strategy", "reason"}),
		extractionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Time spent extracting a link, by strategy",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"strategy"}),
		ingestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_total",
			Help:      "Ingest outcomes, by category and outcome",
		}, []string{"category", "outcome"}),
	}

	reg.MustRegister(m.messagesTotal, m.extractionFailures, m.extractionDuration, m.ingestTotal)
	return m
}

// MessageConsumed counts a processed queue message
func (m *Metrics) MessageConsumed(outcome string) {
	m.messagesTotal.WithLabelValues(outcome).Inc()
}

// ExtractionFailed counts an extraction soft failure
func (m *Metrics) ExtractionFailed(strategy, reason string) {
	m.extractionFailures.WithLabelValues(strategy, reason).Inc()
}

// ObserveExtraction records how long a strategy took
func (m *Metrics) ObserveExtraction(strategy string, elapsed time.Duration) {
	m.extractionDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

// IngestOutcome counts a stored, touched or rejected link
func (m *Metrics) IngestOutcome(category, outcome string) {
	m.ingestTotal.WithLabelValues(category, outcome).Inc()
}
