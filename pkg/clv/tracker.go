// Package clv records the full lifecycle of placed bets and measures
// model quality against the market's closing price. A bet record is a
// durable audit trail: it outlives the quotes and match results it was
// derived from.
package clv

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pitchside/oddskit/pkg/edge"
)

// Status is the lifecycle state of a bet record.
type Status string

const (
	// StatusPlaced is the initial state: model probability, bet odds
	// and stake are known; closing price and outcome are not.
	StatusPlaced Status = "placed"
	// StatusClosingKnown means a closing price arrived and CLV was
	// computed. Re-entrant: a later closing price overwrites.
	StatusClosingKnown Status = "closing_known"
	// StatusSettled is terminal: the outcome is known and profit set.
	// A bet may settle without ever seeing a closing price.
	StatusSettled Status = "settled"
)

// BetRecord is one placed bet. The model probability is frozen at
// placement; closing-line figures always compare against it, never
// against a re-evaluated model.
type BetRecord struct {
	ID            string           `json:"id"`
	MatchID       string           `json:"match_id"`
	Market        edge.Market      `json:"market"`
	Selection     string           `json:"selection"`
	MatchDate     time.Time        `json:"match_date"`
	ModelProb     float64          `json:"model_probability"`
	OpeningOdds   float64          `json:"opening_odds"`
	BetOdds       float64          `json:"bet_odds"`
	Stake         decimal.Decimal  `json:"stake"`
	Status        Status           `json:"status"`
	PlacedAt      time.Time        `json:"placed_at"`
	ClosingOdds   *float64         `json:"closing_odds,omitempty"`
	ClosingProb   *float64         `json:"closing_probability,omitempty"`
	CLVPct        *float64         `json:"clv_pct,omitempty"`
	EdgeVsClosing *float64         `json:"edge_vs_closing,omitempty"`
	Won           *bool            `json:"won,omitempty"`
	Profit        *decimal.Decimal `json:"profit,omitempty"`
	SettledAt     *time.Time       `json:"settled_at,omitempty"`
}

// BetInput is the data needed to record a new bet.
type BetInput struct {
	MatchID     string
	Market      edge.Market
	Selection   string
	MatchDate   time.Time
	ModelProb   float64
	OpeningOdds float64 // Defaults to BetOdds when zero.
	BetOdds     float64
	Stake       decimal.Decimal
}

// Tracker owns the bet ledger. All mutation goes through the tracker;
// persistence is the collaborator's concern via a Store.
type Tracker struct {
	mu     sync.RWMutex
	bets   []*BetRecord
	logger zerolog.Logger
	now    func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker(logger zerolog.Logger) *Tracker {
	return &Tracker{
		logger: logger,
		now:    time.Now,
	}
}

// RecordBet appends a new bet in the placed state. It always succeeds;
// the opening odds default to the bet odds when not supplied
// separately.
func (t *Tracker) RecordBet(in BetInput) *BetRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	opening := in.OpeningOdds
	if opening == 0 {
		opening = in.BetOdds
	}

	bet := &BetRecord{
		ID:          uuid.New().String(),
		MatchID:     in.MatchID,
		Market:      in.Market,
		Selection:   in.Selection,
		MatchDate:   in.MatchDate,
		ModelProb:   in.ModelProb,
		OpeningOdds: opening,
		BetOdds:     in.BetOdds,
		Stake:       in.Stake,
		Status:      StatusPlaced,
		PlacedAt:    t.now(),
	}
	t.bets = append(t.bets, bet)

	out := *bet
	return &out
}

// UpdateClosingOdds applies a closing price to every bet on the given
// match and market, recomputing clv_pct and edge_vs_closing for each.
// Calling again with a new price overwrites; no history is kept.
// Returns the number of bets updated.
func (t *Tracker) UpdateClosingOdds(matchID string, market edge.Market, closingOdds float64) int {
	if closingOdds <= 1.0 {
		t.logger.Warn().
			Str("match_id", matchID).
			Str("market", string(market)).
			Float64("closing_odds", closingOdds).
			Msg("ignoring invalid closing odds")
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	updated := 0
	for _, bet := range t.bets {
		if bet.MatchID != matchID || bet.Market != market {
			continue
		}

		closing := closingOdds
		closingProb := 1.0 / closingOdds
		clvPct := (bet.BetOdds - closingOdds) / closingOdds * 100.0
		edgeVsClosing := bet.ModelProb - closingProb

		bet.ClosingOdds = &closing
		bet.ClosingProb = &closingProb
		bet.CLVPct = &clvPct
		bet.EdgeVsClosing = &edgeVsClosing
		if bet.Status == StatusPlaced {
			bet.Status = StatusClosingKnown
		}
		updated++
	}
	return updated
}

// UpdateResult settles every bet on the given match and market:
// profit is stake*(bet_odds-1) on a win, -stake on a loss. A closing
// price is informational, never a precondition for settlement.
// Returns the number of bets settled.
func (t *Tracker) UpdateResult(matchID string, market edge.Market, won bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	settledAt := t.now()
	settled := 0
	for _, bet := range t.bets {
		if bet.MatchID != matchID || bet.Market != market {
			continue
		}

		w := won
		var profit decimal.Decimal
		if won {
			profit = bet.Stake.Mul(decimal.NewFromFloat(bet.BetOdds - 1.0)).Round(2)
		} else {
			profit = bet.Stake.Neg()
		}

		bet.Won = &w
		bet.Profit = &profit
		bet.Status = StatusSettled
		at := settledAt
		bet.SettledAt = &at
		settled++
	}
	return settled
}

// Bets returns a snapshot copy of the ledger.
func (t *Tracker) Bets() []BetRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]BetRecord, len(t.bets))
	for i, bet := range t.bets {
		out[i] = *bet
	}
	return out
}

// Len returns the number of recorded bets.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.bets)
}
