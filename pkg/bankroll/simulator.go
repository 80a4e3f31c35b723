// Package bankroll replays an ordered log of resolved bets under a
// staking policy and produces an equity curve with risk statistics.
// A simulation is a pure function of (bet log, policy, config):
// identical inputs reproduce identical output, including the curve.
package bankroll

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pitchside/oddskit/pkg/edge"
)

// Bet is one resolved historical bet in the replay log.
type Bet struct {
	Date      time.Time   `json:"date"`
	Market    edge.Market `json:"market"`
	EdgePct   float64     `json:"edge_pct"`
	ModelProb float64     `json:"model_prob"`
	BestOdds  float64     `json:"best_odds"`
	Won       bool        `json:"won"`
}

// Filters qualify bets before staking. Every policy sees the same
// filters.
type Filters struct {
	Markets    []edge.Market `yaml:"markets"`      // Allow-list; empty = all markets.
	MinEdgePct float64       `yaml:"min_edge_pct"` // Bets below this edge are skipped.
}

func (f Filters) allow(bet Bet) bool {
	if bet.EdgePct < f.MinEdgePct {
		return false
	}
	if len(f.Markets) == 0 {
		return true
	}
	for _, m := range f.Markets {
		if m == bet.Market {
			return true
		}
	}
	return false
}

// Config holds the simulation inputs beyond the policy itself.
type Config struct {
	InitialBankroll decimal.Decimal
	Filters         Filters
}

// DefaultConfig returns a 1000-unit bankroll with no filters.
func DefaultConfig() *Config {
	return &Config{InitialBankroll: decimal.NewFromInt(1000)}
}

// EquityPoint is one step of the capital-over-time series, recorded
// after each placed bet.
type EquityPoint struct {
	Date     time.Time       `json:"date"`
	Bankroll decimal.Decimal `json:"bankroll"`
	Drawdown float64         `json:"drawdown"`
}

// Result is the outcome of one simulation run. Produced once and never
// mutated afterward.
type Result struct {
	Policy              string                     `json:"policy"`
	InitialBankroll     decimal.Decimal            `json:"initial_bankroll"`
	FinalBankroll       decimal.Decimal            `json:"final_bankroll"`
	PeakBankroll        decimal.Decimal            `json:"peak_bankroll"`
	MaxDrawdown         float64                    `json:"max_drawdown"`
	LongestLosingStreak int                        `json:"longest_losing_streak"`
	BetsPlaced          int                        `json:"bets_placed"`
	BetsWon             int                        `json:"bets_won"`
	BetsSkipped         int                        `json:"bets_skipped"`
	Busted              bool                       `json:"busted"`
	PnLByDay            map[string]decimal.Decimal `json:"pnl_by_day"`
	PnLByMonth          map[string]decimal.Decimal `json:"pnl_by_month"`
	PnLByQuarter        map[string]decimal.Decimal `json:"pnl_by_quarter"`
	EquityCurve         []EquityPoint              `json:"equity_curve"`
}

// Simulate replays the bet log chronologically under the given policy.
// The log is re-sorted by date defensively; wins add stake*(odds-1),
// losses subtract the stake; the stake is always capped at the current
// bankroll so it can never go negative.
func Simulate(bets []Bet, policy Policy, cfg *Config) *Result {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	ordered := make([]Bet, len(bets))
	copy(ordered, bets)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	result := &Result{
		Policy:          policy.Name(),
		InitialBankroll: cfg.InitialBankroll,
		PeakBankroll:    cfg.InitialBankroll,
		PnLByDay:        make(map[string]decimal.Decimal),
		PnLByMonth:      make(map[string]decimal.Decimal),
		PnLByQuarter:    make(map[string]decimal.Decimal),
	}

	bankroll := cfg.InitialBankroll
	losingStreak := 0

	for _, bet := range ordered {
		if !cfg.Filters.allow(bet) {
			result.BetsSkipped++
			continue
		}

		stake, ok := policy.Stake(bankroll, bet)
		if !ok {
			result.Busted = true
			break
		}
		if !stake.IsPositive() {
			result.BetsSkipped++
			continue
		}
		if stake.GreaterThan(bankroll) {
			stake = bankroll
		}

		var pnl decimal.Decimal
		if bet.Won {
			pnl = stake.Mul(decimal.NewFromFloat(bet.BestOdds - 1.0))
			result.BetsWon++
			losingStreak = 0
		} else {
			pnl = stake.Neg()
			losingStreak++
			if losingStreak > result.LongestLosingStreak {
				result.LongestLosingStreak = losingStreak
			}
		}

		bankroll = bankroll.Add(pnl)
		result.BetsPlaced++

		addPnL(result.PnLByDay, bet.Date.Format("2006-01-02"), pnl)
		addPnL(result.PnLByMonth, bet.Date.Format("2006-01"), pnl)
		addPnL(result.PnLByQuarter, quarterKey(bet.Date), pnl)

		if bankroll.GreaterThan(result.PeakBankroll) {
			result.PeakBankroll = bankroll
		}
		drawdown := 0.0
		if result.PeakBankroll.IsPositive() {
			dd, _ := result.PeakBankroll.Sub(bankroll).Div(result.PeakBankroll).Float64()
			drawdown = dd
		}
		if drawdown > result.MaxDrawdown {
			result.MaxDrawdown = drawdown
		}

		result.EquityCurve = append(result.EquityCurve, EquityPoint{
			Date:     bet.Date,
			Bankroll: bankroll,
			Drawdown: drawdown,
		})
	}

	result.FinalBankroll = bankroll
	return result
}

func addPnL(m map[string]decimal.Decimal, key string, pnl decimal.Decimal) {
	m[key] = m[key].Add(pnl)
}

func quarterKey(t time.Time) string {
	return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
}
