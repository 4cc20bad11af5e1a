// Package metrics exposes the engine's Prometheus instrumentation: per-market
// open-interest/utilization gauges and fee-routing counters. Registration is
// lazy (via sync.Once against a package-level registry) so unit tests that
// never call Register don't need a live prometheus.Registry.
//
// Grounded on the teacher's observability/metrics-style client_golang usage
// elsewhere in the pack (gauges/counters registered once at service start).
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	openInterest = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "zenex",
		Subsystem: "market",
		Name:      "open_interest",
		Help:      "Aggregate notional open interest per asset and side, at S7 precision.",
	}, []string{"asset", "side"})

	utilization = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "zenex",
		Subsystem: "market",
		Name:      "utilization_ratio",
		Help:      "Open interest as a fraction of max_payout, at S7 precision (1e7 = 100%).",
	}, []string{"asset"})

	feesRouted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zenex",
		Subsystem: "fees",
		Name:      "routed_total",
		Help:      "Cumulative fee amount routed to a destination (vault or keeper), at S7 precision.",
	}, []string{"destination"})

	keeperRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zenex",
		Subsystem: "keeper",
		Name:      "requests_total",
		Help:      "Keeper batch requests processed, by request type and result code.",
	}, []string{"request_type", "result"})
)

// Register adds every collector to reg. Safe to call multiple times; only
// the first call has an effect.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(openInterest, utilization, feesRouted, keeperRequests)
	})
}

// ObserveOpenInterest records the current long/short notional for asset, in
// whole S7 units cast to float64 (acceptable precision loss for a dashboard
// gauge; never used in engine math).
func ObserveOpenInterest(asset string, longNotional, shortNotional float64) {
	openInterest.WithLabelValues(asset, "long").Set(longNotional)
	openInterest.WithLabelValues(asset, "short").Set(shortNotional)
}

// ObserveUtilization records the current utilization ratio for asset.
func ObserveUtilization(asset string, ratio float64) {
	utilization.WithLabelValues(asset).Set(ratio)
}

// RecordFee increments the cumulative fee counter for destination ("vault"
// or "keeper") by amount.
func RecordFee(destination string, amount float64) {
	if amount <= 0 {
		return
	}
	feesRouted.WithLabelValues(destination).Add(amount)
}

// RecordKeeperRequest increments the keeper-request counter for one
// Execute-batch entry.
func RecordKeeperRequest(requestType, result string) {
	keeperRequests.WithLabelValues(requestType, result).Inc()
}
