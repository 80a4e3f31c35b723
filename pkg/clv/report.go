package clv

import (
	"time"

	"github.com/pitchside/oddskit/pkg/edge"
)

// Report bundles the windows a scheduled run publishes: all-time,
// monthly and weekly stats, the per-market breakdown, and the
// assessment. Counts are always present so a consumer can tell an
// empty ledger from a losing one.
type Report struct {
	GeneratedAt time.Time                   `json:"generated_at"`
	AllTime     Stats                       `json:"all_time"`
	Monthly     Stats                       `json:"monthly"`
	Weekly      Stats                       `json:"weekly"`
	ByMarket    map[edge.Market]MarketStats `json:"by_market"`
	Assessment  Assessment                  `json:"assessment"`
}

// GenerateReport builds the standard summary report over the whole
// ledger.
func (t *Tracker) GenerateReport() Report {
	allTime := t.Stats(PeriodAllTime, "")
	return Report{
		GeneratedAt: t.now(),
		AllTime:     allTime,
		Monthly:     t.Stats(PeriodMonthly, ""),
		Weekly:      t.Stats(PeriodWeekly, ""),
		ByMarket:    allTime.ByMarket,
		Assessment:  AssessPerformance(allTime),
	}
}
