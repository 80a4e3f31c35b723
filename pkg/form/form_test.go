package form

import (
	"testing"
	"time"

	"github.com/pitchside/oddskit/pkg/feed"
)

var day = 24 * time.Hour

func match(id, home, away string, homeGoals, awayGoals int, kickoff time.Time) feed.MatchResult {
	hg, ag := homeGoals, awayGoals
	return feed.MatchResult{
		MatchID:   id,
		HomeTeam:  home,
		AwayTeam:  away,
		HomeGoals: &hg,
		AwayGoals: &ag,
		Kickoff:   kickoff,
		Status:    feed.StatusFinished,
	}
}

// fixtures builds ARS's history, oldest first:
//
//	m1 ARS 2-0 CHE  (home win, clean sheet)
//	m2 TOT 1-1 ARS  (away draw)
//	m3 ARS 0-1 LIV  (home loss)
//	m4 WHU 0-3 ARS  (away win, clean sheet)
//	m5 ARS 2-1 TOT  (home win)
//
// Most recent first the form string reads "WWLDW".
func fixtures() []feed.MatchResult {
	start := time.Date(2025, 8, 2, 15, 0, 0, 0, time.UTC)
	return []feed.MatchResult{
		match("m1", "ARS", "CHE", 2, 0, start),
		match("m2", "TOT", "ARS", 1, 1, start.Add(7*day)),
		match("m3", "ARS", "LIV", 0, 1, start.Add(14*day)),
		match("m4", "WHU", "ARS", 0, 3, start.Add(21*day)),
		match("m5", "ARS", "TOT", 2, 1, start.Add(28*day)),
	}
}

func TestSummarizeCounts(t *testing.T) {
	s := Summarize("ARS", fixtures(), Options{})

	if s.Played != 5 {
		t.Fatalf("played = %d, want 5", s.Played)
	}
	if s.Wins != 3 || s.Draws != 1 || s.Losses != 1 {
		t.Errorf("W/D/L = %d/%d/%d, want 3/1/1", s.Wins, s.Draws, s.Losses)
	}
	if s.Points != 10 {
		t.Errorf("points = %d, want 10", s.Points)
	}
	if s.GoalsFor != 8 || s.GoalsAgainst != 3 {
		t.Errorf("goals = %d:%d, want 8:3", s.GoalsFor, s.GoalsAgainst)
	}
	if s.CleanSheets != 2 {
		t.Errorf("clean sheets = %d, want 2", s.CleanSheets)
	}
	if s.FormString != "WWLDW" {
		t.Errorf("form string = %q, want WWLDW", s.FormString)
	}
}

func TestSummarizeStreaksAndRuns(t *testing.T) {
	s := Summarize("ARS", fixtures(), Options{})

	if s.Streak != "W2" {
		t.Errorf("streak = %q, want W2", s.Streak)
	}
	if s.UnbeatenRun != 2 {
		t.Errorf("unbeaten run = %d, want 2", s.UnbeatenRun)
	}
	if s.WinlessRun != 0 {
		t.Errorf("winless run = %d, want 0", s.WinlessRun)
	}
}

func TestSummarizeOptions(t *testing.T) {
	matches := fixtures()
	cutoff := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		opts       Options
		wantPlayed int
		wantForm   string
	}{
		{"home only", Options{Venue: VenueHome}, 3, "WLW"},
		{"away only", Options{Venue: VenueAway}, 2, "WD"},
		{"last three", Options{Limit: 3}, 3, "WWL"},
		{"before cutoff", Options{Before: cutoff}, 3, "LDW"},
		{"combined", Options{Venue: VenueHome, Limit: 1}, 1, "W"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize("ARS", matches, tt.opts)
			if s.Played != tt.wantPlayed {
				t.Errorf("played = %d, want %d", s.Played, tt.wantPlayed)
			}
			if s.FormString != tt.wantForm {
				t.Errorf("form string = %q, want %q", s.FormString, tt.wantForm)
			}
		})
	}
}

func TestSummarizeEmptyWindow(t *testing.T) {
	s := Summarize("NEW", fixtures(), Options{})

	if s.Played != 0 || s.Points != 0 {
		t.Errorf("empty window: played=%d points=%d, want zeros", s.Played, s.Points)
	}
	if s.Streak != "" || s.FormString != "" {
		t.Errorf("empty window: streak=%q form=%q, want empty", s.Streak, s.FormString)
	}
}

func TestSummarizeIgnoresUnfinished(t *testing.T) {
	matches := fixtures()
	matches = append(matches, feed.MatchResult{
		MatchID:  "m6",
		HomeTeam: "ARS",
		AwayTeam: "CHE",
		Kickoff:  time.Date(2025, 9, 13, 15, 0, 0, 0, time.UTC),
		Status:   feed.StatusScheduled,
	})

	s := Summarize("ARS", matches, Options{})
	if s.Played != 5 {
		t.Errorf("played = %d, unfinished matches must not count", s.Played)
	}
}

func TestSummarizeOrderIndependent(t *testing.T) {
	matches := fixtures()
	shuffled := []feed.MatchResult{matches[3], matches[0], matches[4], matches[2], matches[1]}

	a := Summarize("ARS", matches, Options{Limit: 3})
	b := Summarize("ARS", shuffled, Options{Limit: 3})
	if a != b {
		t.Errorf("summaries differ on input order:\n%+v\n%+v", a, b)
	}
}

func TestMeetings(t *testing.T) {
	h2h := Meetings("ARS", "TOT", fixtures(), 0)

	if h2h.Meetings != 2 {
		t.Fatalf("meetings = %d, want 2", h2h.Meetings)
	}
	if h2h.Wins != 1 || h2h.Draws != 1 || h2h.Losses != 0 {
		t.Errorf("W/D/L = %d/%d/%d, want 1/1/0", h2h.Wins, h2h.Draws, h2h.Losses)
	}
	if h2h.GoalsFor != 3 || h2h.GoalsAgainst != 2 {
		t.Errorf("goals = %d:%d, want 3:2", h2h.GoalsFor, h2h.GoalsAgainst)
	}
}

func TestMeetingsLastN(t *testing.T) {
	// Only the most recent meeting (m5, ARS 2-1 TOT) should count.
	h2h := Meetings("ARS", "TOT", fixtures(), 1)

	if h2h.Meetings != 1 || h2h.Wins != 1 {
		t.Errorf("meetings=%d wins=%d, want 1 and 1", h2h.Meetings, h2h.Wins)
	}
}

func TestMeetingsNoHistory(t *testing.T) {
	h2h := Meetings("ARS", "NEW", fixtures(), 5)
	if h2h.Meetings != 0 {
		t.Errorf("meetings = %d, want 0", h2h.Meetings)
	}
}
