package bankroll

import (
	"github.com/shopspring/decimal"
)

// Policy sizes the stake for one bet given the current bankroll.
// Returning ok=false stops the simulation (bust); returning a zero
// stake skips the bet.
type Policy interface {
	Name() string
	Stake(bankroll decimal.Decimal, bet Bet) (stake decimal.Decimal, ok bool)
}

// FlatUnit stakes a fixed currency amount on every qualifying bet and
// stops once the bankroll can no longer cover one unit.
type FlatUnit struct {
	Unit decimal.Decimal
}

// NewFlatUnit creates a flat-unit policy.
func NewFlatUnit(unit float64) *FlatUnit {
	return &FlatUnit{Unit: decimal.NewFromFloat(unit)}
}

func (p *FlatUnit) Name() string { return "flat_unit" }

func (p *FlatUnit) Stake(bankroll decimal.Decimal, _ Bet) (decimal.Decimal, bool) {
	if bankroll.LessThan(p.Unit) {
		return decimal.Zero, false
	}
	return p.Unit, true
}

// FlatPercent stakes a fixed fraction of the current bankroll.
type FlatPercent struct {
	Pct decimal.Decimal
}

// NewFlatPercent creates a flat-percentage policy; pct is a fraction,
// e.g. 0.02 for 2%.
func NewFlatPercent(pct float64) *FlatPercent {
	return &FlatPercent{Pct: decimal.NewFromFloat(pct)}
}

func (p *FlatPercent) Name() string { return "flat_percent" }

func (p *FlatPercent) Stake(bankroll decimal.Decimal, _ Bet) (decimal.Decimal, bool) {
	if !bankroll.IsPositive() {
		return decimal.Zero, false
	}
	return bankroll.Mul(p.Pct), true
}

// ProgressivePercent stakes bankroll*pct clamped to [MinUnit, MaxUnit]
// and stops once the bankroll drops below the minimum unit.
type ProgressivePercent struct {
	Pct     decimal.Decimal
	MinUnit decimal.Decimal
	MaxUnit decimal.Decimal
}

// NewProgressivePercent creates a progressive-percentage policy.
func NewProgressivePercent(pct, minUnit, maxUnit float64) *ProgressivePercent {
	return &ProgressivePercent{
		Pct:     decimal.NewFromFloat(pct),
		MinUnit: decimal.NewFromFloat(minUnit),
		MaxUnit: decimal.NewFromFloat(maxUnit),
	}
}

func (p *ProgressivePercent) Name() string { return "progressive_percent" }

func (p *ProgressivePercent) Stake(bankroll decimal.Decimal, _ Bet) (decimal.Decimal, bool) {
	if bankroll.LessThan(p.MinUnit) {
		return decimal.Zero, false
	}
	stake := bankroll.Mul(p.Pct)
	if stake.LessThan(p.MinUnit) {
		stake = p.MinUnit
	}
	if stake.GreaterThan(p.MaxUnit) {
		stake = p.MaxUnit
	}
	return stake, true
}

// FractionalKelly stakes bankroll * kelly(model_prob, odds) *
// multiplier, capped at bankroll * MaxStakePct. Bets with no positive
// expected value are skipped, not staked.
type FractionalKelly struct {
	Multiplier  decimal.Decimal
	MaxStakePct decimal.Decimal
}

// NewFractionalKelly creates a fractional-Kelly policy.
func NewFractionalKelly(multiplier, maxStakePct float64) *FractionalKelly {
	return &FractionalKelly{
		Multiplier:  decimal.NewFromFloat(multiplier),
		MaxStakePct: decimal.NewFromFloat(maxStakePct),
	}
}

func (p *FractionalKelly) Name() string { return "fractional_kelly" }

func (p *FractionalKelly) Stake(bankroll decimal.Decimal, bet Bet) (decimal.Decimal, bool) {
	if !bankroll.IsPositive() {
		return decimal.Zero, false
	}

	full := kellyFraction(bet.ModelProb, bet.BestOdds)
	if full <= 0 {
		return decimal.Zero, true
	}

	stake := bankroll.Mul(decimal.NewFromFloat(full)).Mul(p.Multiplier)
	maxStake := bankroll.Mul(p.MaxStakePct)
	if stake.GreaterThan(maxStake) {
		stake = maxStake
	}
	return stake, true
}

// kellyFraction is the full Kelly fraction (b*p - q) / b with
// b = odds-1; zero when there is no positive expected value.
func kellyFraction(modelProb, odds float64) float64 {
	b := odds - 1.0
	if b <= 0 || modelProb <= 0 || modelProb > 1 {
		return 0
	}
	f := (b*modelProb - (1.0 - modelProb)) / b
	if f < 0 {
		return 0
	}
	return f
}
