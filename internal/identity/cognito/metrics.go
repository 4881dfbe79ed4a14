package cognito

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	platformmetrics "volunteermatch/internal/platform/metrics"
)

// Outcome label values.
const (
	OutcomeAdded   = "added"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Metrics counts group assignments.
type Metrics struct {
	GroupAssignments *prometheus.CounterVec
}

// NewMetrics registers the hook metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		GroupAssignments: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: platformmetrics.Namespace,
			Name:      "group_assignments_total",
			Help:      "Post-confirmation group assignments by outcome",
		}, []string{"outcome"}),
	}
}

// IncrementAssignment records one assignment outcome.
func (m *Metrics) IncrementAssignment(outcome string) {
	m.GroupAssignments.WithLabelValues(outcome).Inc()
}
