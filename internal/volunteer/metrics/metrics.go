package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	platformmetrics "volunteermatch/internal/platform/metrics"
)

// Outcome label values.
const (
	OutcomeSuccess      = "success"
	OutcomeInvalid      = "invalid"
	OutcomeFailed       = "failed"
	OutcomeUnauthorized = "unauthenticated"
	OutcomeForbidden    = "forbidden"
)

// Metrics provides observability for registration and matching.
type Metrics struct {
	Registrations    *prometheus.CounterVec
	MatchRequests    *prometheus.CounterVec
	MatchesReturned  prometheus.Histogram
	FindMatchesDelay prometheus.Histogram
	SkippedItems     *prometheus.CounterVec
}

// New creates the volunteer metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: platformmetrics.Namespace,
			Name:      "registrations_total",
			Help:      "Volunteer registrations by outcome",
		}, []string{"outcome"}),
		MatchRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: platformmetrics.Namespace,
			Name:      "match_requests_total",
			Help:      "findMatches requests by outcome",
		}, []string{"outcome"}),
		MatchesReturned: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: platformmetrics.Namespace,
			Name:      "matches_returned",
			Help:      "Number of matches returned per successful findMatches",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		}),
		FindMatchesDelay: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: platformmetrics.Namespace,
			Name:      "find_matches_duration_seconds",
			Help:      "Duration of findMatches including the store query",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		SkippedItems: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: platformmetrics.Namespace,
			Name:      "match_items_skipped_total",
			Help:      "Index items skipped while matching, by reason",
		}, []string{"reason"}),
	}
}

// IncrementRegistration records one registration outcome.
func (m *Metrics) IncrementRegistration(outcome string) {
	m.Registrations.WithLabelValues(outcome).Inc()
}

// IncrementMatchRequest records one findMatches outcome.
func (m *Metrics) IncrementMatchRequest(outcome string) {
	m.MatchRequests.WithLabelValues(outcome).Inc()
}

// ObserveMatches records the result size of a successful findMatches.
func (m *Metrics) ObserveMatches(n int) {
	m.MatchesReturned.Observe(float64(n))
}

// ObserveFindMatches records the duration of findMatches.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveFindMatches(start time.Time) {
	m.FindMatchesDelay.Observe(time.Since(start).Seconds())
}

// IncrementSkipped records an item dropped from a match scan.
func (m *Metrics) IncrementSkipped(reason string) {
	m.SkippedItems.WithLabelValues(reason).Inc()
}
