package feed

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// LoadMatchesJSON loads match results from a JSON file holding an array
// of MatchResult objects. The result is sorted by kickoff time.
func LoadMatchesJSON(filename string) ([]MatchResult, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var matches []MatchResult
	if err := json.NewDecoder(file).Decode(&matches); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	SortMatches(matches)
	return matches, nil
}

// LoadMatchesCSV loads match results from a CSV file.
// Expected columns: match_id, home_team, away_team, home_goals, away_goals, kickoff_time, status.
// Rows that cannot be parsed are logged and skipped; one bad row never
// aborts the batch. The result is sorted by kickoff time.
func LoadMatchesCSV(filename string, logger zerolog.Logger) ([]MatchResult, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[col] = i
	}

	var matches []MatchResult
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logger.Warn().Err(err).Int("line", line).Msg("skipping unreadable match row")
			continue
		}

		match, err := parseMatchRecord(record, colIndex)
		if err != nil {
			logger.Warn().Err(err).Int("line", line).Msg("skipping malformed match row")
			continue
		}
		matches = append(matches, match)
	}

	SortMatches(matches)
	return matches, nil
}

func parseMatchRecord(record []string, colIndex map[string]int) (MatchResult, error) {
	field := func(name string) string {
		if idx, ok := colIndex[name]; ok && idx < len(record) {
			return record[idx]
		}
		return ""
	}

	match := MatchResult{
		MatchID:  field("match_id"),
		HomeTeam: field("home_team"),
		AwayTeam: field("away_team"),
		Status:   field("status"),
	}
	if match.MatchID == "" || match.HomeTeam == "" || match.AwayTeam == "" {
		return MatchResult{}, fmt.Errorf("missing match identity fields")
	}

	kickoff, err := parseTimestamp(field("kickoff_time"))
	if err != nil {
		return MatchResult{}, fmt.Errorf("invalid kickoff_time: %w", err)
	}
	match.Kickoff = kickoff

	// Scores are optional for unfinished matches.
	if s := field("home_goals"); s != "" {
		goals, err := strconv.Atoi(s)
		if err != nil {
			return MatchResult{}, fmt.Errorf("invalid home_goals: %w", err)
		}
		match.HomeGoals = &goals
	}
	if s := field("away_goals"); s != "" {
		goals, err := strconv.Atoi(s)
		if err != nil {
			return MatchResult{}, fmt.Errorf("invalid away_goals: %w", err)
		}
		match.AwayGoals = &goals
	}

	return match, nil
}

// LoadQuotesJSON loads market quotes from a JSON file holding an array
// of MarketQuote objects.
func LoadQuotesJSON(filename string) ([]MarketQuote, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var quotes []MarketQuote
	if err := json.NewDecoder(file).Decode(&quotes); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	return quotes, nil
}

// LoadQuotesCSV loads market quotes from a CSV file.
// Expected columns: match_id, market, bookmaker, decimal_odds.
// Malformed rows are logged and skipped.
func LoadQuotesCSV(filename string, logger zerolog.Logger) ([]MarketQuote, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[col] = i
	}

	var quotes []MarketQuote
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logger.Warn().Err(err).Int("line", line).Msg("skipping unreadable quote row")
			continue
		}

		field := func(name string) string {
			if idx, ok := colIndex[name]; ok && idx < len(record) {
				return record[idx]
			}
			return ""
		}

		odds, err := strconv.ParseFloat(field("decimal_odds"), 64)
		if err != nil {
			logger.Warn().Err(err).Int("line", line).Msg("skipping quote with invalid odds")
			continue
		}

		quote := MarketQuote{
			MatchID:     field("match_id"),
			Market:      field("market"),
			Bookmaker:   field("bookmaker"),
			DecimalOdds: odds,
		}
		if quote.MatchID == "" || quote.Market == "" {
			logger.Warn().Int("line", line).Msg("skipping quote with missing identity fields")
			continue
		}
		quotes = append(quotes, quote)
	}

	return quotes, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(ts, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
