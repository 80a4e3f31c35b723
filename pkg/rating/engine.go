// Package rating implements an elo-style team strength model for
// football. Ratings update match by match from expected-vs-actual
// outcome comparison, scaled by the margin of victory, and feed the
// 1X2 match predictor.
package rating

import (
	"fmt"
	"math"

	"github.com/pitchside/oddskit/pkg/feed"
)

// Params holds the tunable constants of the rating model. The draw
// heuristic values are empirically chosen defaults, not invariants.
type Params struct {
	KFactor       float64 `yaml:"k_factor" validate:"gt=0"`
	HomeAdvantage float64 `yaml:"home_advantage" validate:"gte=0"`
	InitialRating float64 `yaml:"initial_rating" validate:"gt=0"`
	DrawBase      float64 `yaml:"draw_base" validate:"gt=0,lt=1"`
	DrawScale     float64 `yaml:"draw_scale" validate:"gt=0"`
	DrawMin       float64 `yaml:"draw_min" validate:"gte=0"`
	DrawMax       float64 `yaml:"draw_max" validate:"lt=1"`
}

// DefaultParams returns the default model parameters.
func DefaultParams() Params {
	return Params{
		KFactor:       32,
		HomeAdvantage: 100,
		InitialRating: 1500,
		DrawBase:      0.25,
		DrawScale:     1000,
		DrawMin:       0.10,
		DrawMax:       0.35,
	}
}

// Prediction holds outcome probabilities for one match. The three
// components always sum to 1.
type Prediction struct {
	HomeWin float64 `json:"home_win"`
	Draw    float64 `json:"draw"`
	AwayWin float64 `json:"away_win"`
}

// Engine computes expected outcomes and post-match rating updates
// against a Store.
type Engine struct {
	params Params
	store  *Store
}

// NewEngine creates an engine over a fresh store.
func NewEngine(params Params) *Engine {
	return &Engine{
		params: params,
		store:  NewStore(params.InitialRating),
	}
}

// Store exposes the underlying rating store.
func (e *Engine) Store() *Store {
	return e.store
}

// ExpectedScore returns the probability that a team rated ratingA
// scores against a team rated ratingB, using the standard logistic
// curve. ExpectedScore(a, b) + ExpectedScore(b, a) == 1.
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/400.0))
}

// ActualScore maps a final score to the elo outcome value:
// 1 for a win, 0.5 for a draw, 0 for a loss.
func ActualScore(goalsA, goalsB int) float64 {
	switch {
	case goalsA > goalsB:
		return 1.0
	case goalsA == goalsB:
		return 0.5
	default:
		return 0.0
	}
}

// goalDiffMultiplier scales the rating delta by the win margin so a
// rout moves ratings more than a narrow win.
func goalDiffMultiplier(homeGoals, awayGoals int) float64 {
	margin := homeGoals - awayGoals
	if margin < 0 {
		margin = -margin
	}
	switch {
	case margin <= 1:
		return 1.0
	case margin == 2:
		return 1.5
	default:
		return (11.0 + float64(margin)) / 8.0
	}
}

// UpdateRatings computes post-match ratings for both sides. The home
// advantage biases the expectation only; it never enters the stored
// rating. Deltas mirror exactly: the away delta is the negated home
// delta, so rating mass is conserved.
func (e *Engine) UpdateRatings(homeRating, awayRating float64, homeGoals, awayGoals int) (newHome, newAway, homeDelta float64) {
	expectedHome := ExpectedScore(homeRating+e.params.HomeAdvantage, awayRating)
	actualHome := ActualScore(homeGoals, awayGoals)

	homeDelta = e.params.KFactor * goalDiffMultiplier(homeGoals, awayGoals) * (actualHome - expectedHome)
	return homeRating + homeDelta, awayRating - homeDelta, homeDelta
}

// ProcessMatch applies one finished match to the store, creating unseen
// teams lazily and appending a ledger entry per side. Matches that are
// not finished are rejected.
func (e *Engine) ProcessMatch(m feed.MatchResult) error {
	if !m.Finished() {
		return fmt.Errorf("match %s is not finished (status %q)", m.MatchID, m.Status)
	}
	homeGoals, awayGoals := m.Score()

	e.store.mu.Lock()
	defer e.store.mu.Unlock()

	home := e.store.getOrCreate(m.HomeTeam)
	away := e.store.getOrCreate(m.AwayTeam)

	newHome, newAway, delta := e.UpdateRatings(home.Rating, away.Rating, homeGoals, awayGoals)

	e.store.ledger = append(e.store.ledger,
		ChangeEvent{
			TeamID:    home.ID,
			MatchID:   m.MatchID,
			Before:    home.Rating,
			After:     newHome,
			Delta:     delta,
			Timestamp: m.Kickoff,
		},
		ChangeEvent{
			TeamID:    away.ID,
			MatchID:   m.MatchID,
			Before:    away.Rating,
			After:     newAway,
			Delta:     -delta,
			Timestamp: m.Kickoff,
		},
	)

	home.Rating = newHome
	away.Rating = newAway
	return nil
}

// Rebuild resets the store and replays the full match history in
// kickoff order. Unfinished matches are skipped and counted. Replaying
// the same history twice produces identical ratings and an identical
// ledger; this is the model's core correctness property.
func (e *Engine) Rebuild(matches []feed.MatchResult) (processed, skipped int) {
	ordered := make([]feed.MatchResult, len(matches))
	copy(ordered, matches)
	feed.SortMatches(ordered)

	e.store.Reset()
	for _, m := range ordered {
		if err := e.ProcessMatch(m); err != nil {
			skipped++
			continue
		}
		processed++
	}
	return processed, skipped
}

// PredictMatch derives home/draw/away probabilities for an upcoming
// match from the two current ratings. The draw probability shrinks as
// the rating gap grows, clamped to [DrawMin, DrawMax]; the remainder is
// split between home and away in proportion to the home expectation,
// then the triple is renormalized to sum to exactly 1.
func (e *Engine) PredictMatch(homeTeam, awayTeam string) Prediction {
	homeRating := e.store.Rating(homeTeam)
	awayRating := e.store.Rating(awayTeam)

	expectedHome := ExpectedScore(homeRating+e.params.HomeAdvantage, awayRating)

	// The draw heuristic uses the raw gap, without home advantage, so
	// equal ratings land exactly on the base draw probability.
	gap := math.Abs(homeRating - awayRating)
	draw := clamp(e.params.DrawBase*(1.0-gap/e.params.DrawScale), e.params.DrawMin, e.params.DrawMax)

	remaining := 1.0 - draw
	home := remaining * expectedHome
	away := remaining * (1.0 - expectedHome)

	total := home + draw + away
	return Prediction{
		HomeWin: home / total,
		Draw:    draw / total,
		AwayWin: away / total,
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
