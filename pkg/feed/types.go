// Package feed defines the externally supplied inputs to the engine:
// finished match results and bookmaker market quotes. Collaborators
// (scrapers, API clients, storage) materialize these in memory before
// any engine component runs.
package feed

import (
	"sort"
	"time"
)

// Match status values as supplied by the fixture feed.
const (
	StatusScheduled = "scheduled"
	StatusLive      = "live"
	StatusFinished  = "finished"
	StatusPostponed = "postponed"
)

// MatchResult is one fixture as reported by the match feed.
// Only finished matches with both scores present are valid input
// to the rating engine and form analyzer.
type MatchResult struct {
	MatchID   string    `json:"match_id"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	HomeGoals *int      `json:"home_goals"`
	AwayGoals *int      `json:"away_goals"`
	Kickoff   time.Time `json:"kickoff_time"`
	Status    string    `json:"status"`
}

// Finished reports whether the match is eligible for rating and form
// processing: status final and both scores known.
func (m *MatchResult) Finished() bool {
	return m.Status == StatusFinished && m.HomeGoals != nil && m.AwayGoals != nil
}

// Score returns the final score. Only meaningful when Finished() is true.
func (m *MatchResult) Score() (home, away int) {
	if m.HomeGoals != nil {
		home = *m.HomeGoals
	}
	if m.AwayGoals != nil {
		away = *m.AwayGoals
	}
	return home, away
}

// MarketQuote is one bookmaker price for one market of one match.
// A match may carry many quotes across markets and bookmakers.
type MarketQuote struct {
	MatchID     string  `json:"match_id"`
	Market      string  `json:"market"`
	Bookmaker   string  `json:"bookmaker"`
	DecimalOdds float64 `json:"decimal_odds"`
}

// SortMatches orders matches chronologically by kickoff time, in place.
// The rating engine requires chronological input.
func SortMatches(matches []MatchResult) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Kickoff.Before(matches[j].Kickoff)
	})
}
