// Package edge turns model probabilities and bookmaker odds into
// implied probabilities, edge percentages, risk tiers and Kelly stake
// fractions.
package edge

import (
	"errors"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/pitchside/oddskit/pkg/feed"
)

// ErrInvalidOdds marks odds at or below 1.0 or probabilities outside
// (0,1]. Such inputs are excluded from aggregation, never fatal to a
// batch.
var ErrInvalidOdds = errors.New("invalid odds or probability")

// ProbabilitySupplier is the opaque score model contract: given two
// team identities it returns a probability per market, covering at
// least the match-odds group. Probabilities within each mutually
// exclusive group sum to 1.
type ProbabilitySupplier interface {
	MatchProbabilities(homeTeam, awayTeam string) (map[Market]float64, error)
}

// Tier classifies how defensible an edge is.
type Tier string

const (
	TierSafe   Tier = "safe"
	TierMedium Tier = "medium"
	TierRisky  Tier = "risky"
)

// Config holds the calculator's tuning knobs. The tier and edge
// thresholds are empirically chosen defaults meant to be tuned per
// market, not hard invariants.
type Config struct {
	MinEdgePct       float64 `yaml:"min_edge_pct" validate:"gte=0"`
	SafeEdgePct      float64 `yaml:"safe_edge_pct" validate:"gte=0"`
	SafeConfidence   float64 `yaml:"safe_confidence" validate:"gte=0,lte=1"`
	MediumEdgePct    float64 `yaml:"medium_edge_pct" validate:"gte=0"`
	MediumConfidence float64 `yaml:"medium_confidence" validate:"gte=0,lte=1"`
	KellyMultiplier  float64 `yaml:"kelly_multiplier" validate:"gt=0,lte=1"`
	MaxStakePct      float64 `yaml:"max_stake_pct" validate:"gt=0,lte=1"`
}

// DefaultConfig returns the default calculator configuration.
func DefaultConfig() *Config {
	return &Config{
		MinEdgePct:       3.0,
		SafeEdgePct:      10.0,
		SafeConfidence:   0.7,
		MediumEdgePct:    5.0,
		MediumConfidence: 0.5,
		KellyMultiplier:  0.25,
		MaxStakePct:      0.05,
	}
}

// Decision is one actionable edge: a market where the model's
// probability beats the best available price by at least the minimum
// edge. Stateless and produced fresh per evaluation.
type Decision struct {
	MatchID       string          `json:"match_id"`
	Market        Market          `json:"market"`
	Bookmaker     string          `json:"bookmaker"`
	Odds          float64         `json:"odds"`
	ModelProb     float64         `json:"model_probability"`
	ImpliedProb   float64         `json:"bookmaker_probability"`
	EdgePct       float64         `json:"edge_pct"`
	RiskTier      Tier            `json:"risk_tier"`
	KellyFraction float64         `json:"kelly_fraction"`
	Confidence    float64         `json:"confidence"`
	Stake         decimal.Decimal `json:"stake"`
}

// Calculator computes edges against a configuration.
type Calculator struct {
	cfg *Config
}

// NewCalculator creates a calculator. A nil config uses the defaults.
func NewCalculator(cfg *Config) *Calculator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Calculator{cfg: cfg}
}

// ImpliedProbability converts decimal odds to the bookmaker's implied
// probability. Odds at or below 1 have no meaningful implied
// probability and report 0.
func ImpliedProbability(odds float64) float64 {
	if odds <= 1.0 {
		return 0
	}
	return 1.0 / odds
}

// KellyFraction returns the fraction of bankroll to stake under the
// Kelly criterion with the configured fractional multiplier:
// max(0, multiplier * (b*p - q) / b) with b = odds-1, p = model
// probability, q = 1-p. Zero whenever there is no positive expected
// value.
func (c *Calculator) KellyFraction(modelProb, odds float64) float64 {
	b := odds - 1.0
	if b <= 0 || modelProb <= 0 || modelProb > 1 {
		return 0
	}
	q := 1.0 - modelProb
	full := (b*modelProb - q) / b
	if full <= 0 {
		return 0
	}
	return c.cfg.KellyMultiplier * full
}

// riskTier bands a decision by edge size and model confidence.
func (c *Calculator) riskTier(edgePct, confidence float64) Tier {
	switch {
	case edgePct >= c.cfg.SafeEdgePct && confidence >= c.cfg.SafeConfidence:
		return TierSafe
	case edgePct >= c.cfg.MediumEdgePct && confidence >= c.cfg.MediumConfidence:
		return TierMedium
	default:
		return TierRisky
	}
}

// BestQuotes picks the maximum decimal odds per market, the best
// available price for the bettor, recording which bookmaker offered
// it. Quotes with odds <= 1 are dropped.
func BestQuotes(quotes []feed.MarketQuote) map[Market]feed.MarketQuote {
	best := make(map[Market]feed.MarketQuote)
	for _, q := range quotes {
		if q.DecimalOdds <= 1.0 {
			continue
		}
		market := Market(q.Market)
		if !market.Valid() {
			continue
		}
		if cur, ok := best[market]; !ok || q.DecimalOdds > cur.DecimalOdds {
			best[market] = q
		}
	}
	return best
}

// ComputeEdges evaluates every market that has both a model probability
// and a bookmaker quote, and returns the decisions whose edge clears
// the configured minimum, sorted by descending edge. Invalid
// probabilities and quotes are skipped; the suggested stake is sized
// from the given bankroll, Kelly-capped at MaxStakePct.
func (c *Calculator) ComputeEdges(matchID string, probs map[Market]float64, confidence float64, quotes []feed.MarketQuote, bankroll decimal.Decimal) []Decision {
	best := BestQuotes(quotes)

	var decisions []Decision
	for market, quote := range best {
		modelProb, ok := probs[market]
		if !ok {
			continue
		}
		if modelProb <= 0 || modelProb > 1 {
			continue
		}

		implied := ImpliedProbability(quote.DecimalOdds)
		if implied == 0 {
			continue
		}

		edgePct := (modelProb - implied) / implied * 100.0
		if edgePct < c.cfg.MinEdgePct {
			continue
		}

		kelly := c.KellyFraction(modelProb, quote.DecimalOdds)
		stakeFrac := math.Min(kelly, c.cfg.MaxStakePct)

		decisions = append(decisions, Decision{
			MatchID:       matchID,
			Market:        market,
			Bookmaker:     quote.Bookmaker,
			Odds:          quote.DecimalOdds,
			ModelProb:     modelProb,
			ImpliedProb:   implied,
			EdgePct:       edgePct,
			RiskTier:      c.riskTier(edgePct, confidence),
			KellyFraction: kelly,
			Confidence:    confidence,
			Stake:         bankroll.Mul(decimal.NewFromFloat(stakeFrac)).Round(2),
		})
	}

	sort.Slice(decisions, func(i, j int) bool {
		if decisions[i].EdgePct != decisions[j].EdgePct {
			return decisions[i].EdgePct > decisions[j].EdgePct
		}
		return decisions[i].Market < decisions[j].Market
	})
	return decisions
}

// ValidateGroup checks that the probabilities supplied for one
// mutually exclusive group sum to 1 within tolerance. Groups with no
// supplied markets are ignored.
func ValidateGroup(probs map[Market]float64, group Group, tolerance float64) error {
	sum := 0.0
	n := 0
	for market, p := range probs {
		if g, ok := market.Group(); ok && g == group {
			sum += p
			n++
		}
	}
	if n == 0 {
		return nil
	}
	if math.Abs(sum-1.0) > tolerance {
		return ErrInvalidOdds
	}
	return nil
}
