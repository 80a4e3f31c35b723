package clv

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pitchside/oddskit/pkg/edge"
)

// Period selects the stats window, anchored at now.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
	PeriodAllTime Period = "all_time"
)

// windowStart returns the inclusive lower bound on match dates for a
// period. All-time has no lower bound.
func (p Period) windowStart(now time.Time) time.Time {
	switch p {
	case PeriodDaily:
		return now.AddDate(0, 0, -1)
	case PeriodWeekly:
		return now.AddDate(0, 0, -7)
	case PeriodMonthly:
		return now.AddDate(0, -1, 0)
	case PeriodYearly:
		return now.AddDate(-1, 0, 0)
	default:
		return time.Time{}
	}
}

// MarketStats is the per-market slice of a stats window.
type MarketStats struct {
	Bets        int             `json:"bets"`
	BetsWithCLV int             `json:"bets_with_clv"`
	AvgCLVPct   float64         `json:"avg_clv_pct"`
	Settled     int             `json:"settled"`
	Wins        int             `json:"wins"`
	Profit      decimal.Decimal `json:"profit"`
}

// Stats is a windowed aggregate over the bet ledger. CLV figures cover
// only bets with a known closing line; win rate and ROI cover only
// settled bets. Always recomputed, never persisted. Counts are always
// present so a consumer can tell "no data" from "zero edge".
type Stats struct {
	Period          Period                      `json:"period"`
	MarketFilter    edge.Market                 `json:"market_filter,omitempty"`
	TotalBets       int                         `json:"total_bets"`
	TotalStake      decimal.Decimal             `json:"total_stake"`
	BetsWithCLV     int                         `json:"bets_with_clv"`
	AvgCLVPct       float64                     `json:"avg_clv_pct"`
	PositiveCLVRate float64                     `json:"positive_clv_rate"`
	SettledBets     int                         `json:"settled_bets"`
	Wins            int                         `json:"wins"`
	WinRate         float64                     `json:"win_rate"`
	TotalProfit     decimal.Decimal             `json:"total_profit"`
	ROIPct          float64                     `json:"roi_pct"`
	ByMarket        map[edge.Market]MarketStats `json:"by_market"`
}

// Stats aggregates the ledger over a period and optional market
// filter (empty = all markets). An empty filtered set returns an
// all-zero Stats rather than failing.
func (t *Tracker) Stats(period Period, marketFilter edge.Market) Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := Stats{
		Period:       period,
		MarketFilter: marketFilter,
		TotalStake:   decimal.Zero,
		TotalProfit:  decimal.Zero,
		ByMarket:     make(map[edge.Market]MarketStats),
	}

	start := period.windowStart(t.now())
	positiveCLV := 0
	clvSum := 0.0
	settledStake := decimal.Zero
	clvSumByMarket := make(map[edge.Market]float64)

	for _, bet := range t.bets {
		if !start.IsZero() && bet.MatchDate.Before(start) {
			continue
		}
		if marketFilter != "" && bet.Market != marketFilter {
			continue
		}

		stats.TotalBets++
		stats.TotalStake = stats.TotalStake.Add(bet.Stake)
		ms := stats.ByMarket[bet.Market]
		ms.Bets++

		if bet.CLVPct != nil {
			stats.BetsWithCLV++
			clvSum += *bet.CLVPct
			if *bet.CLVPct > 0 {
				positiveCLV++
			}
			ms.BetsWithCLV++
			clvSumByMarket[bet.Market] += *bet.CLVPct
		}

		if bet.Won != nil {
			stats.SettledBets++
			settledStake = settledStake.Add(bet.Stake)
			ms.Settled++
			if *bet.Won {
				stats.Wins++
				ms.Wins++
			}
			if bet.Profit != nil {
				stats.TotalProfit = stats.TotalProfit.Add(*bet.Profit)
				ms.Profit = ms.Profit.Add(*bet.Profit)
			}
		}

		stats.ByMarket[bet.Market] = ms
	}

	if stats.BetsWithCLV > 0 {
		stats.AvgCLVPct = clvSum / float64(stats.BetsWithCLV)
		stats.PositiveCLVRate = float64(positiveCLV) / float64(stats.BetsWithCLV)
	}
	if stats.SettledBets > 0 {
		stats.WinRate = float64(stats.Wins) / float64(stats.SettledBets)
		if settledStake.IsPositive() {
			roi, _ := stats.TotalProfit.Div(settledStake).Mul(decimal.NewFromInt(100)).Float64()
			stats.ROIPct = roi
		}
	}
	for market, ms := range stats.ByMarket {
		if ms.BetsWithCLV > 0 {
			ms.AvgCLVPct = clvSumByMarket[market] / float64(ms.BetsWithCLV)
			stats.ByMarket[market] = ms
		}
	}

	return stats
}

// Assessment is a qualitative read on a stats window.
type Assessment struct {
	Confidence string `json:"confidence"` // "low" below the sample threshold, else "high".
	Message    string `json:"message"`
	Profitable bool   `json:"profitable"`
}

// minSampleSize is the bet count below which any CLV reading is
// treated as noise.
const minSampleSize = 100

// AssessPerformance bands a stats window into a confidence level and a
// qualitative message. Confidence is low below 100 total bets
// regardless of CLV sign.
func AssessPerformance(stats Stats) Assessment {
	a := Assessment{Profitable: stats.TotalProfit.IsPositive()}

	if stats.TotalBets < minSampleSize {
		a.Confidence = "low"
		a.Message = "insufficient sample size; CLV reading is noise at this volume"
		return a
	}

	a.Confidence = "high"
	switch {
	case stats.AvgCLVPct > 3:
		a.Message = "excellent: model consistently beats the closing line"
	case stats.AvgCLVPct > 1:
		a.Message = "good: positive closing line value"
	case stats.AvgCLVPct > 0:
		a.Message = "slight edge over the closing line"
	case stats.AvgCLVPct > -1:
		a.Message = "break-even against the closing line"
	default:
		a.Message = "negative: the market closes ahead of the model"
	}
	return a
}
