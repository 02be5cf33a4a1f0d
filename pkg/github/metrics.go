package github

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK          = "ok"
	resultRateLimited = "rate_limited"
	resultError       = "error"
)

var (
	upstreamRequestsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chaosboard_github_requests_total",
		Help: "GitHub API calls that missed the cache, by endpoint and outcome",
	}, []string{"endpoint", "result"})
	degradedFieldsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chaosboard_degraded_fields_total",
		Help: "Per pull request fetches that failed and fell back to an optimistic default",
	}, []string{"field"})
)

func recordRequest(endpoint string, err error) {
	switch {
	case err == nil:
		upstreamRequestsMetric.WithLabelValues(endpoint, resultOK).Inc()
	case IsRateLimited(err):
		upstreamRequestsMetric.WithLabelValues(endpoint, resultRateLimited).Inc()
	default:
		upstreamRequestsMetric.WithLabelValues(endpoint, resultError).Inc()
	}
}
