// Package metrics exports the state of the node as prometheus metrics.
package metrics

import (
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// MilestoneSource provides the milestone tracker values.
type MilestoneSource interface {
	LatestMilestoneIndex() uint32
	LatestSolidMilestoneIndex() uint32
	CandidatesAnalyzedPerMinute() int64
}

// LedgerSource provides the ledger values.
type LedgerSource interface {
	IsReady() bool
	SnapshotIndex() uint32
}

// TipSource provides the tip pool values.
type TipSource interface {
	Size() int
}

// RequestSource provides the number of missing transactions.
type RequestSource interface {
	Size() int
}

// RegisterMilestoneMetrics registers the milestone_* gauges.
func RegisterMilestoneMetrics(registry prometheus.Registerer, source MilestoneSource) error {
	return register(registry,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "milestone_latest_index",
			Help: "Index of the latest milestone.",
		}, func() float64 {
			return float64(source.LatestMilestoneIndex())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "milestone_latest_solid_index",
			Help: "Index of the latest solid milestone.",
		}, func() float64 {
			return float64(source.LatestSolidMilestoneIndex())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "milestone_candidates_analyzed_per_minute",
			Help: "Number of milestone candidates validated during the last minute.",
		}, func() float64 {
			return float64(source.CandidatesAnalyzedPerMinute())
		}),
	)
}

// RegisterLedgerMetrics registers the ledger_* gauges.
func RegisterLedgerMetrics(registry prometheus.Registerer, source LedgerSource) error {
	return register(registry,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "ledger_ready",
			Help: "1 if the ledger finished its initialization.",
		}, func() float64 {
			if source.IsReady() {
				return 1
			}
			return 0
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "ledger_snapshot_index",
			Help: "Index of the last milestone applied to the ledger.",
		}, func() float64 {
			return float64(source.SnapshotIndex())
		}),
	)
}

// RegisterTipMetrics registers the tips_count gauge.
func RegisterTipMetrics(registry prometheus.Registerer, source TipSource) error {
	return register(registry,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "tips_count",
			Help: "Number of solid transactions without solid approvers.",
		}, func() float64 {
			return float64(source.Size())
		}),
	)
}

// RegisterRequestMetrics registers the requests_count gauge.
func RegisterRequestMetrics(registry prometheus.Registerer, source RequestSource) error {
	return register(registry,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "requests_count",
			Help: "Number of transactions that are referenced but missing.",
		}, func() float64 {
			return float64(source.Size())
		}),
	)
}

func register(registry prometheus.Registerer, collectors ...prometheus.Collector) error {
	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return errors.Wrap(err, "failed to register metric")
		}
	}

	return nil
}
