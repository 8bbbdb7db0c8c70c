package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics counts polling synchronizer activity per resource.
type SyncMetrics struct {
	polls     *prometheus.CounterVec
	refetches *prometheus.CounterVec
	failures  *prometheus.CounterVec
}

// NewSyncMetrics registers the synchronizer metrics on the provided
// registerer. A nil registerer yields a no-op recorder.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	polls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_polls_total",
		Help: "Change-marker probes issued per resource.",
	}, []string{"resource"})
	refetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_refetches_total",
		Help: "Full refetches triggered by a marker change.",
	}, []string{"resource"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_failures_total",
		Help: "Swallowed polling failures per resource.",
	}, []string{"resource"})
	reg.MustRegister(polls, refetches, failures)
	return &SyncMetrics{
		polls:     polls,
		refetches: refetches,
		failures:  failures,
	}
}

// IncPoll counts one marker probe for the named resource.
func (s *SyncMetrics) IncPoll(resource string) {
	if s == nil || s.polls == nil {
		return
	}
	s.polls.WithLabelValues(normalizeLabel(resource)).Inc()
}

// IncRefetch counts one triggered refetch for the named resource.
func (s *SyncMetrics) IncRefetch(resource string) {
	if s == nil || s.refetches == nil {
		return
	}
	s.refetches.WithLabelValues(normalizeLabel(resource)).Inc()
}

// IncFailure counts one swallowed polling failure for the named resource.
func (s *SyncMetrics) IncFailure(resource string) {
	if s == nil || s.failures == nil {
		return
	}
	s.failures.WithLabelValues(normalizeLabel(resource)).Inc()
}

func normalizeLabel(resource string) string {
	if resource == "" {
		return "unknown"
	}
	return resource
}
