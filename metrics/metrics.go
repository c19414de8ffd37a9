// Package metrics holds the Prometheus collectors exported on /metrics.
// Labels carry agent, tool and operation names only; never ids.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OpenTargetsRequestsTotal counts GraphQL requests by operation and outcome.
	OpenTargetsRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "otagent_opentargets_requests_total",
		Help: "Total Open Targets GraphQL requests, by operation and status (ok/graphql_error/http_error/cached).",
	}, []string{"operation", "status"})

	OpenTargetsRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "otagent_opentargets_request_duration_seconds",
		Help:    "Latency of Open Targets GraphQL requests that reached the network.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "otagent_cache_lookups_total",
		Help: "Response cache lookups, by result (hit/miss/error).",
	}, []string{"result"})

	ToolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "otagent_tool_calls_total",
		Help: "Tool invocations, by agent, tool and status (ok/error/unknown).",
	}, []string{"agent", "tool", "status"})

	AgentRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "otagent_agent_runs_total",
		Help: "Completed agent executions, by agent and status.",
	}, []string{"agent", "status"})

	AgentRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "otagent_agent_run_duration_seconds",
		Help:    "Wall time of one agent execution including tool calls and delegation.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"agent"})

	ActiveRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "otagent_active_requests",
		Help: "Questions currently being answered by the web server.",
	})
)
