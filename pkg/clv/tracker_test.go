package clv

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pitchside/oddskit/pkg/edge"
)

func newTestTracker() *Tracker {
	t := NewTracker(zerolog.Nop())
	t.now = func() time.Time {
		return time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	}
	return t
}

func testInput(matchID string, market edge.Market) BetInput {
	return BetInput{
		MatchID:   matchID,
		Market:    market,
		Selection: "ARS",
		MatchDate: time.Date(2025, 8, 30, 15, 0, 0, 0, time.UTC),
		ModelProb: 0.52,
		BetOdds:   2.10,
		Stake:     decimal.NewFromInt(25),
	}
}

func TestRecordBetDefaults(t *testing.T) {
	tracker := newTestTracker()

	bet := tracker.RecordBet(testInput("m1", edge.MarketHomeWin))

	if bet.ID == "" {
		t.Error("bet has no id")
	}
	if bet.Status != StatusPlaced {
		t.Errorf("status = %s, want placed", bet.Status)
	}
	if bet.OpeningOdds != bet.BetOdds {
		t.Errorf("opening odds = %v, want defaulted to bet odds %v", bet.OpeningOdds, bet.BetOdds)
	}
	if tracker.Len() != 1 {
		t.Errorf("tracker length = %d, want 1", tracker.Len())
	}
}

func TestUpdateClosingOddsCLV(t *testing.T) {
	tracker := newTestTracker()
	tracker.RecordBet(testInput("m1", edge.MarketHomeWin))

	// Beat the close: 2.10 taken, market closed at 1.90.
	if n := tracker.UpdateClosingOdds("m1", edge.MarketHomeWin, 1.90); n != 1 {
		t.Fatalf("updated = %d, want 1", n)
	}

	bet := tracker.Bets()[0]
	if bet.Status != StatusClosingKnown {
		t.Errorf("status = %s, want closing_known", bet.Status)
	}
	if bet.CLVPct == nil {
		t.Fatal("clv_pct not set")
	}
	wantCLV := (2.10 - 1.90) / 1.90 * 100.0 // ~ +10.53%
	if math.Abs(*bet.CLVPct-wantCLV) > 1e-9 {
		t.Errorf("clv = %.4f%%, want %.4f%%", *bet.CLVPct, wantCLV)
	}
	wantEdge := 0.52 - 1.0/1.90
	if math.Abs(*bet.EdgeVsClosing-wantEdge) > 1e-9 {
		t.Errorf("edge vs closing = %.6f, want %.6f", *bet.EdgeVsClosing, wantEdge)
	}
}

func TestUpdateClosingOddsReentrant(t *testing.T) {
	tracker := newTestTracker()
	tracker.RecordBet(testInput("m1", edge.MarketHomeWin))

	tracker.UpdateClosingOdds("m1", edge.MarketHomeWin, 1.90)
	first := *tracker.Bets()[0].CLVPct

	// Same price again: unchanged.
	tracker.UpdateClosingOdds("m1", edge.MarketHomeWin, 1.90)
	if got := *tracker.Bets()[0].CLVPct; got != first {
		t.Errorf("repeated identical closing changed clv: %v -> %v", first, got)
	}

	// New price overwrites, no history.
	tracker.UpdateClosingOdds("m1", edge.MarketHomeWin, 2.00)
	second := *tracker.Bets()[0].CLVPct
	if second == first {
		t.Error("new closing price did not overwrite clv")
	}
	wantCLV := (2.10 - 2.00) / 2.00 * 100.0
	if math.Abs(second-wantCLV) > 1e-9 {
		t.Errorf("clv after overwrite = %.4f%%, want %.4f%%", second, wantCLV)
	}
}

func TestUpdateClosingOddsScope(t *testing.T) {
	tracker := newTestTracker()
	tracker.RecordBet(testInput("m1", edge.MarketHomeWin))
	tracker.RecordBet(testInput("m1", edge.MarketHomeWin))
	tracker.RecordBet(testInput("m1", edge.MarketDraw))
	tracker.RecordBet(testInput("m2", edge.MarketHomeWin))

	if n := tracker.UpdateClosingOdds("m1", edge.MarketHomeWin, 1.95); n != 2 {
		t.Errorf("updated = %d, want both m1 home_win bets", n)
	}
	for _, bet := range tracker.Bets() {
		matched := bet.MatchID == "m1" && bet.Market == edge.MarketHomeWin
		if matched && bet.CLVPct == nil {
			t.Error("matching bet not updated")
		}
		if !matched && bet.CLVPct != nil {
			t.Errorf("bet %s/%s updated out of scope", bet.MatchID, bet.Market)
		}
	}
}

func TestUpdateClosingOddsRejectsInvalid(t *testing.T) {
	tracker := newTestTracker()
	tracker.RecordBet(testInput("m1", edge.MarketHomeWin))

	if n := tracker.UpdateClosingOdds("m1", edge.MarketHomeWin, 1.0); n != 0 {
		t.Errorf("updated = %d for odds 1.0, want 0", n)
	}
	if tracker.Bets()[0].Status != StatusPlaced {
		t.Error("invalid closing odds must not advance status")
	}
}

func TestUpdateResult(t *testing.T) {
	tests := []struct {
		name       string
		won        bool
		wantProfit decimal.Decimal
	}{
		{"win pays stake times odds-1", true, decimal.NewFromFloat(27.5)},
		{"loss costs the stake", false, decimal.NewFromInt(-25)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := newTestTracker()
			tracker.RecordBet(testInput("m1", edge.MarketHomeWin))

			if n := tracker.UpdateResult("m1", edge.MarketHomeWin, tt.won); n != 1 {
				t.Fatalf("settled = %d, want 1", n)
			}
			bet := tracker.Bets()[0]
			if bet.Status != StatusSettled {
				t.Errorf("status = %s, want settled", bet.Status)
			}
			if bet.Profit == nil || !bet.Profit.Equal(tt.wantProfit) {
				t.Errorf("profit = %v, want %s", bet.Profit, tt.wantProfit)
			}
		})
	}
}

func TestSettleWithoutClosing(t *testing.T) {
	tracker := newTestTracker()
	tracker.RecordBet(testInput("m1", edge.MarketHomeWin))

	// Settlement never waits for a closing price.
	if n := tracker.UpdateResult("m1", edge.MarketHomeWin, true); n != 1 {
		t.Fatalf("settled = %d, want 1", n)
	}
	bet := tracker.Bets()[0]
	if bet.Status != StatusSettled {
		t.Errorf("status = %s, want settled", bet.Status)
	}
	if bet.ClosingOdds != nil {
		t.Error("closing odds appeared from nowhere")
	}

	// A late closing price still fills the CLV fields but the bet stays
	// settled.
	tracker.UpdateClosingOdds("m1", edge.MarketHomeWin, 2.00)
	bet = tracker.Bets()[0]
	if bet.Status != StatusSettled {
		t.Errorf("late closing price demoted status to %s", bet.Status)
	}
	if bet.CLVPct == nil {
		t.Error("late closing price did not record clv")
	}
}

func TestStatsEmpty(t *testing.T) {
	tracker := newTestTracker()

	stats := tracker.Stats(PeriodAllTime, "")
	if stats.TotalBets != 0 || stats.AvgCLVPct != 0 || stats.WinRate != 0 {
		t.Errorf("empty ledger stats not zero: %+v", stats)
	}
	if !stats.TotalProfit.IsZero() {
		t.Errorf("empty ledger profit = %s, want 0", stats.TotalProfit)
	}
}

func TestStatsAggregation(t *testing.T) {
	tracker := newTestTracker()
	tracker.RecordBet(testInput("m1", edge.MarketHomeWin))
	tracker.RecordBet(testInput("m2", edge.MarketHomeWin))
	tracker.RecordBet(testInput("m3", edge.MarketDraw))

	tracker.UpdateClosingOdds("m1", edge.MarketHomeWin, 1.90) // clv +10.53
	tracker.UpdateClosingOdds("m2", edge.MarketHomeWin, 2.20) // clv -4.55
	tracker.UpdateResult("m1", edge.MarketHomeWin, true)      // +27.50
	tracker.UpdateResult("m2", edge.MarketHomeWin, false)     // -25.00

	stats := tracker.Stats(PeriodAllTime, "")

	if stats.TotalBets != 3 || stats.BetsWithCLV != 2 || stats.SettledBets != 2 {
		t.Errorf("counts = %d/%d/%d, want 3/2/2", stats.TotalBets, stats.BetsWithCLV, stats.SettledBets)
	}
	if stats.PositiveCLVRate != 0.5 {
		t.Errorf("positive clv rate = %v, want 0.5", stats.PositiveCLVRate)
	}
	if stats.WinRate != 0.5 {
		t.Errorf("win rate = %v, want 0.5", stats.WinRate)
	}
	if !stats.TotalProfit.Equal(decimal.NewFromFloat(2.5)) {
		t.Errorf("total profit = %s, want 2.5", stats.TotalProfit)
	}
	// ROI over the settled stake only: 2.5 / 50 = 5%.
	if math.Abs(stats.ROIPct-5.0) > 1e-9 {
		t.Errorf("roi = %.4f%%, want 5%%", stats.ROIPct)
	}
	if ms := stats.ByMarket[edge.MarketDraw]; ms.Bets != 1 || ms.BetsWithCLV != 0 {
		t.Errorf("draw market slice = %+v", ms)
	}
}

func TestStatsMarketFilterAndWindow(t *testing.T) {
	tracker := newTestTracker()

	old := testInput("m1", edge.MarketHomeWin)
	old.MatchDate = time.Date(2025, 7, 1, 15, 0, 0, 0, time.UTC)
	tracker.RecordBet(old)
	tracker.RecordBet(testInput("m2", edge.MarketHomeWin))
	tracker.RecordBet(testInput("m3", edge.MarketDraw))

	byMarket := tracker.Stats(PeriodAllTime, edge.MarketDraw)
	if byMarket.TotalBets != 1 {
		t.Errorf("filtered bets = %d, want 1", byMarket.TotalBets)
	}

	// Weekly window from the fixed now (2025-09-01) excludes the July
	// match.
	weekly := tracker.Stats(PeriodWeekly, "")
	if weekly.TotalBets != 2 {
		t.Errorf("weekly bets = %d, want 2", weekly.TotalBets)
	}
}

func TestAssessPerformance(t *testing.T) {
	tests := []struct {
		name           string
		totalBets      int
		avgCLV         float64
		wantConfidence string
	}{
		{"small sample", 40, 5.0, "low"},
		{"large sample positive", 150, 2.0, "high"},
		{"large sample negative", 150, -2.0, "high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := AssessPerformance(Stats{TotalBets: tt.totalBets, AvgCLVPct: tt.avgCLV})
			if a.Confidence != tt.wantConfidence {
				t.Errorf("confidence = %s, want %s", a.Confidence, tt.wantConfidence)
			}
			if a.Message == "" {
				t.Error("assessment has no message")
			}
		})
	}
}

func TestJSONStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bets.json")
	ctx := context.Background()

	tracker := newTestTracker()
	tracker.RecordBet(testInput("m1", edge.MarketHomeWin))
	tracker.UpdateClosingOdds("m1", edge.MarketHomeWin, 1.90)

	if err := tracker.SaveTo(ctx, NewJSONStore(path)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	restored := newTestTracker()
	n, err := restored.LoadFrom(ctx, NewJSONStore(path))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("loaded = %d, want 1", n)
	}

	bet := restored.Bets()[0]
	if bet.Status != StatusClosingKnown || bet.CLVPct == nil {
		t.Errorf("restored bet lost closing state: %+v", bet)
	}
}

func TestJSONStoreMissingFile(t *testing.T) {
	tracker := newTestTracker()
	n, err := tracker.LoadFrom(context.Background(), NewJSONStore(filepath.Join(t.TempDir(), "absent.json")))
	if err != nil {
		t.Fatalf("missing file must load as empty, got %v", err)
	}
	if n != 0 {
		t.Errorf("loaded = %d, want 0", n)
	}
}

func TestLoadFromSkipsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bets.json")
	data := `[
		{"id": "b1", "match_id": "m1", "market": "home_win", "model_probability": 0.5, "bet_odds": 2.1, "status": "placed"},
		{"id": "", "match_id": "m2", "market": "home_win", "model_probability": 0.5, "bet_odds": 2.1, "status": "placed"},
		{"id": "b3", "match_id": "m3", "market": "home_win", "model_probability": 0.5, "bet_odds": 0.8, "status": "placed"},
		{"id": "b4", "match_id": "m4", "market": "home_win", "model_probability": 1.7, "bet_odds": 2.1, "status": "placed"},
		{"id": "b5", "match_id": "m5", "market": "home_win", "model_probability": 0.5, "bet_odds": 2.1, "status": "weird"}
	]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	tracker := newTestTracker()
	n, err := tracker.LoadFrom(context.Background(), NewJSONStore(path))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if n != 1 {
		t.Errorf("loaded = %d, want only the valid record", n)
	}
	if tracker.Bets()[0].ID != "b1" {
		t.Errorf("kept %s, want b1", tracker.Bets()[0].ID)
	}
}
