package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	platformmetrics "volunteermatch/internal/platform/metrics"
)

// Outcome label values.
const (
	OutcomeResolved = "resolved"
	OutcomeDeclined = "declined"
	OutcomeRejected = "rejected"
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeStale    = "stale"
)

// Metrics provides observability for claims resolution and key fetching.
type Metrics struct {
	ClaimsResolutions *prometheus.CounterVec
	KeyFetches        *prometheus.CounterVec
}

// New creates the auth metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ClaimsResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: platformmetrics.Namespace,
			Name:      "claims_resolutions_total",
			Help:      "Claims resolution attempts by strategy and outcome",
		}, []string{"strategy", "outcome"}),
		KeyFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: platformmetrics.Namespace,
			Name:      "jwks_fetches_total",
			Help:      "Signing key set fetches by outcome",
		}, []string{"outcome"}),
	}
}

// IncrementResolution records the outcome of one strategy.
func (m *Metrics) IncrementResolution(strategy, outcome string) {
	m.ClaimsResolutions.WithLabelValues(strategy, outcome).Inc()
}

// IncrementKeyFetch records one key set fetch.
func (m *Metrics) IncrementKeyFetch(outcome string) {
	m.KeyFetches.WithLabelValues(outcome).Inc()
}
