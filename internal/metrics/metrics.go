package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paylynx_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paylynx_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	PolicyDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paylynx_policy_decisions_total",
			Help: "Total number of policy decisions by outcome and reason.",
		},
		[]string{"outcome", "reason"},
	)

	PolicyUpdatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "paylynx_policy_updates_total",
			Help: "Total number of accepted policy settings updates.",
		},
	)

	LedgerCommitRevertsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "paylynx_ledger_commit_reverts_total",
			Help: "Total number of ledger commits reverted after racing past the daily limit.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		PolicyDecisionsTotal,
		PolicyUpdatesTotal,
		LedgerCommitRevertsTotal,
	)
}
