// Package metrics holds the prometheus collectors exposed on /metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RPCRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tracker",
		Name:      "rpc_requests_total",
		Help:      "Batched RPC balance requests by chain and status.",
	}, []string{"chain", "status"})

	TrackingRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tracker",
		Name:      "tracking_runs_total",
		Help:      "Wallet tracking runs by status.",
	}, []string{"status"})

	TrackingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tracker",
		Name:      "tracking_run_duration_seconds",
		Help:      "Duration of a full tracking pass over all wallets.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	BackfillDays = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tracker",
		Name:      "backfill_days_total",
		Help:      "Historical days processed by outcome.",
	}, []string{"outcome"})

	AutoExclusions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tracker",
		Name:      "auto_exclusions_total",
		Help:      "Days auto-excluded for exceeding the change threshold.",
	}, []string{"token"})

	Wallets = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tracker",
		Name:      "wallets",
		Help:      "Registered wallets.",
	})

	registerOnce sync.Once
)

// MustRegister registers every collector with the default registry once.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RPCRequests, TrackingRuns, TrackingDuration, BackfillDays, AutoExclusions, Wallets)
	})
}
