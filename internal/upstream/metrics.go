package upstream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Call outcomes
const (
	outcomeOK        = "ok"
	outcomeTransport = "transport_error"
	outcomeInvalid   = "invalid_response"
	outcomeUpstream  = "upstream_error"
)

var (
	callsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "penzgtu_upstream_calls_total",
		Help: "Upstream method calls by method and outcome",
	}, []string{"method", "outcome"})

	callDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "penzgtu_upstream_call_duration_seconds",
		Help:    "Latency of upstream method calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)
