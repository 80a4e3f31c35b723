// Package form derives rolling-window performance summaries and
// head-to-head records from a team's match history. Every value is a
// pure function of the supplied window; nothing is cached or persisted.
package form

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pitchside/oddskit/pkg/feed"
)

// Venue filters a window to matches at a particular ground.
type Venue int

const (
	VenueAny Venue = iota
	VenueHome
	VenueAway
)

// Options narrows the match window before summarizing.
type Options struct {
	Venue  Venue
	Before time.Time // Only matches kicking off strictly before this instant; zero = no cutoff.
	Limit  int       // Most recent N matches; <= 0 = all.
}

// Summary is the rolling form of one team over a window of its
// finished matches. An empty window yields the zero Summary.
type Summary struct {
	TeamID       string `json:"team_id"`
	Played       int    `json:"played"`
	Wins         int    `json:"wins"`
	Draws        int    `json:"draws"`
	Losses       int    `json:"losses"`
	Points       int    `json:"points"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
	CleanSheets  int    `json:"clean_sheets"`
	Streak       string `json:"streak"`        // e.g. "W3", "D1"; empty for no matches.
	UnbeatenRun  int    `json:"unbeaten_run"`  // Matches since the last loss, counted from the most recent.
	WinlessRun   int    `json:"winless_run"`   // Matches since the last win, counted from the most recent.
	FormString   string `json:"form_string"`   // Result letters, most recent first.
}

// HeadToHead is the record between two teams over their last meetings,
// reported from the first team's perspective.
type HeadToHead struct {
	TeamID       string `json:"team_id"`
	OpponentID   string `json:"opponent_id"`
	Meetings     int    `json:"meetings"`
	Wins         int    `json:"wins"`
	Draws        int    `json:"draws"`
	Losses       int    `json:"losses"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
}

// result is one match folded into the team's perspective.
type result struct {
	letter       byte
	goalsFor     int
	goalsAgainst int
}

// Summarize computes the form summary for a team over its match
// history. Matches the team did not play in, unfinished matches, and
// matches excluded by the options are ignored. Order of the input does
// not matter; the window is taken from the most recent matches.
func Summarize(teamID string, matches []feed.MatchResult, opts Options) Summary {
	results := collect(teamID, matches, opts)

	summary := Summary{TeamID: teamID, Played: len(results)}
	if len(results) == 0 {
		return summary
	}

	var letters strings.Builder
	for _, r := range results {
		letters.WriteByte(r.letter)
		summary.GoalsFor += r.goalsFor
		summary.GoalsAgainst += r.goalsAgainst
		if r.goalsAgainst == 0 {
			summary.CleanSheets++
		}
		switch r.letter {
		case 'W':
			summary.Wins++
		case 'D':
			summary.Draws++
		case 'L':
			summary.Losses++
		}
	}
	summary.Points = summary.Wins*3 + summary.Draws
	summary.FormString = letters.String()

	// Runs are counted from the most recent match backward until broken.
	streakLen := 1
	for i := 1; i < len(results); i++ {
		if results[i].letter != results[0].letter {
			break
		}
		streakLen++
	}
	summary.Streak = fmt.Sprintf("%c%d", results[0].letter, streakLen)

	for _, r := range results {
		if r.letter == 'L' {
			break
		}
		summary.UnbeatenRun++
	}
	for _, r := range results {
		if r.letter == 'W' {
			break
		}
		summary.WinlessRun++
	}

	return summary
}

// Meetings computes the head-to-head record between two teams over
// their last lastN meetings, from teamID's perspective. A lastN <= 0
// considers all meetings. Only finished matches involving both teams
// count.
func Meetings(teamID, opponentID string, matches []feed.MatchResult, lastN int) HeadToHead {
	h2h := HeadToHead{TeamID: teamID, OpponentID: opponentID}

	var mutual []feed.MatchResult
	for _, m := range matches {
		if !m.Finished() {
			continue
		}
		if (m.HomeTeam == teamID && m.AwayTeam == opponentID) ||
			(m.HomeTeam == opponentID && m.AwayTeam == teamID) {
			mutual = append(mutual, m)
		}
	}
	sortRecentFirst(mutual)
	if lastN > 0 && lastN < len(mutual) {
		mutual = mutual[:lastN]
	}

	for _, m := range mutual {
		r := perspective(teamID, m)
		h2h.Meetings++
		h2h.GoalsFor += r.goalsFor
		h2h.GoalsAgainst += r.goalsAgainst
		switch r.letter {
		case 'W':
			h2h.Wins++
		case 'D':
			h2h.Draws++
		case 'L':
			h2h.Losses++
		}
	}
	return h2h
}

// collect filters, orders most-recent-first, and folds matches into the
// team's perspective.
func collect(teamID string, matches []feed.MatchResult, opts Options) []result {
	var filtered []feed.MatchResult
	for _, m := range matches {
		if !m.Finished() {
			continue
		}
		isHome := m.HomeTeam == teamID
		isAway := m.AwayTeam == teamID
		if !isHome && !isAway {
			continue
		}
		if opts.Venue == VenueHome && !isHome {
			continue
		}
		if opts.Venue == VenueAway && !isAway {
			continue
		}
		if !opts.Before.IsZero() && !m.Kickoff.Before(opts.Before) {
			continue
		}
		filtered = append(filtered, m)
	}

	sortRecentFirst(filtered)
	if opts.Limit > 0 && opts.Limit < len(filtered) {
		filtered = filtered[:opts.Limit]
	}

	results := make([]result, len(filtered))
	for i, m := range filtered {
		results[i] = perspective(teamID, m)
	}
	return results
}

func perspective(teamID string, m feed.MatchResult) result {
	homeGoals, awayGoals := m.Score()
	gf, ga := homeGoals, awayGoals
	if m.AwayTeam == teamID {
		gf, ga = awayGoals, homeGoals
	}

	letter := byte('D')
	if gf > ga {
		letter = 'W'
	} else if gf < ga {
		letter = 'L'
	}
	return result{letter: letter, goalsFor: gf, goalsAgainst: ga}
}

func sortRecentFirst(matches []feed.MatchResult) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Kickoff.After(matches[j].Kickoff)
	})
}
