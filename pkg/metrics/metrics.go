// Package metrics provides Prometheus metrics for the edge and
// bankroll engine's batch runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics collects and exposes engine-related Prometheus metrics.
type EngineMetrics struct {
	registry *prometheus.Registry

	// Rating metrics
	MatchesProcessed prometheus.Counter
	MatchesSkipped   prometheus.Counter
	RebuildDuration  prometheus.Histogram
	TeamsTracked     prometheus.Gauge

	// Edge metrics
	EdgesEvaluated prometheus.Counter
	EdgesSurfaced  *prometheus.CounterVec
	EdgeSize       prometheus.Histogram

	// Bet ledger metrics
	BetsRecorded prometheus.Counter
	BetsSettled  prometheus.Counter
	ClosingsSeen prometheus.Counter

	// Simulator metrics
	SimulationRuns     *prometheus.CounterVec
	SimulationDuration prometheus.Histogram
}

// New creates and registers the engine metrics on a fresh registry.
func New() *EngineMetrics {
	registry := prometheus.NewRegistry()

	m := &EngineMetrics{
		registry: registry,

		MatchesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oddskit_matches_processed_total",
			Help: "Finished matches applied to the rating store",
		}),
		MatchesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oddskit_matches_skipped_total",
			Help: "Matches rejected during a replay (unfinished or malformed)",
		}),
		RebuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "oddskit_rebuild_duration_seconds",
			Help:    "Full-history rating rebuild duration",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		TeamsTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "oddskit_teams_tracked",
			Help: "Teams currently in the rating store",
		}),

		EdgesEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oddskit_edges_evaluated_total",
			Help: "Markets evaluated for edge",
		}),
		EdgesSurfaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oddskit_edges_surfaced_total",
			Help: "Actionable edges above the minimum threshold",
		}, []string{"market", "risk_tier"}),
		EdgeSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "oddskit_edge_pct",
			Help:    "Edge percentage of surfaced decisions",
			Buckets: []float64{1, 2, 3, 5, 8, 10, 15, 20, 30, 50},
		}),

		BetsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oddskit_bets_recorded_total",
			Help: "Bets recorded in the ledger",
		}),
		BetsSettled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oddskit_bets_settled_total",
			Help: "Bets settled with a known outcome",
		}),
		ClosingsSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oddskit_closing_lines_total",
			Help: "Closing-line updates applied to the ledger",
		}),

		SimulationRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oddskit_simulation_runs_total",
			Help: "Bankroll simulations executed",
		}, []string{"policy"}),
		SimulationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "oddskit_simulation_duration_seconds",
			Help:    "Bankroll simulation duration",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
		}),
	}

	registry.MustRegister(
		m.MatchesProcessed, m.MatchesSkipped, m.RebuildDuration, m.TeamsTracked,
		m.EdgesEvaluated, m.EdgesSurfaced, m.EdgeSize,
		m.BetsRecorded, m.BetsSettled, m.ClosingsSeen,
		m.SimulationRuns, m.SimulationDuration,
	)

	return m
}

// Registry returns the underlying registry for scrape-endpoint or
// push-gateway wiring by a collaborator.
func (m *EngineMetrics) Registry() *prometheus.Registry {
	return m.registry
}
