// oddskit is a CLI for the football edge and bankroll engine: it
// rebuilds team ratings from a match history, predicts upcoming
// matches, computes market edges against bookmaker quotes, replays bet
// logs under staking policies, and emits closing-line-value reports.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pitchside/oddskit/pkg/bankroll"
	"github.com/pitchside/oddskit/pkg/clv"
	"github.com/pitchside/oddskit/pkg/config"
	"github.com/pitchside/oddskit/pkg/edge"
	"github.com/pitchside/oddskit/pkg/feed"
	"github.com/pitchside/oddskit/pkg/metrics"
	"github.com/pitchside/oddskit/pkg/rating"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "rebuild":
		err = runRebuild(os.Args[2:], logger)
	case "predict":
		err = runPredict(os.Args[2:], logger)
	case "edges":
		err = runEdges(os.Args[2:], logger)
	case "simulate":
		err = runSimulate(os.Args[2:], logger)
	case "report":
		err = runReport(os.Args[2:], logger)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Fatal().Err(err).Str("command", os.Args[1]).Msg("command failed")
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: oddskit <command> [flags]

commands:
  rebuild   replay a match history into team ratings and rankings
  predict   predict home/draw/away probabilities for a fixture
  edges     compute actionable market edges for a fixture
  simulate  replay a resolved bet log under a staking policy
  report    generate a CLV performance report from a bet store`)
}

// ratingSupplier adapts the rating engine to the opaque score-model
// contract for the match-odds group.
type ratingSupplier struct {
	engine *rating.Engine
}

func (s *ratingSupplier) MatchProbabilities(homeTeam, awayTeam string) (map[edge.Market]float64, error) {
	p := s.engine.PredictMatch(homeTeam, awayTeam)
	return map[edge.Market]float64{
		edge.MarketHomeWin: p.HomeWin,
		edge.MarketDraw:    p.Draw,
		edge.MarketAwayWin: p.AwayWin,
	}, nil
}

// buildEngine rebuilds the rating store from a match history file.
func buildEngine(matchesFile string, params rating.Params, m *metrics.EngineMetrics, logger zerolog.Logger) (*rating.Engine, error) {
	matches, err := loadMatches(matchesFile, logger)
	if err != nil {
		return nil, err
	}

	engine := rating.NewEngine(params)
	start := time.Now()
	processed, skipped := engine.Rebuild(matches)
	m.RebuildDuration.Observe(time.Since(start).Seconds())
	m.MatchesProcessed.Add(float64(processed))
	m.MatchesSkipped.Add(float64(skipped))
	m.TeamsTracked.Set(float64(engine.Store().Size()))

	logger.Info().
		Int("processed", processed).
		Int("skipped", skipped).
		Int("teams", engine.Store().Size()).
		Msg("rating rebuild complete")
	return engine, nil
}

func loadMatches(filename string, logger zerolog.Logger) ([]feed.MatchResult, error) {
	switch {
	case strings.HasSuffix(filename, ".json"):
		return feed.LoadMatchesJSON(filename)
	case strings.HasSuffix(filename, ".csv"):
		return feed.LoadMatchesCSV(filename, logger)
	default:
		return nil, fmt.Errorf("unknown match file format: %s (expected .json or .csv)", filename)
	}
}

func loadQuotes(filename string, logger zerolog.Logger) ([]feed.MarketQuote, error) {
	switch {
	case strings.HasSuffix(filename, ".json"):
		return feed.LoadQuotesJSON(filename)
	case strings.HasSuffix(filename, ".csv"):
		return feed.LoadQuotesCSV(filename, logger)
	default:
		return nil, fmt.Errorf("unknown quote file format: %s (expected .json or .csv)", filename)
	}
}

func runRebuild(args []string, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("rebuild", flag.ExitOnError)
	matchesFile := fs.String("matches", "", "Path to match history (JSON or CSV)")
	configFile := fs.String("config", "", "Path to YAML config")
	limit := fs.Int("limit", 0, "Max rankings to print (0 = all)")
	ledgerFile := fs.String("ledger", "", "Optional output path for the rating change ledger (JSON)")
	fs.Parse(args)

	if *matchesFile == "" {
		return fmt.Errorf("-matches is required")
	}
	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}

	engine, err := buildEngine(*matchesFile, cfg.Rating, metrics.New(), logger)
	if err != nil {
		return err
	}

	if *ledgerFile != "" {
		data, err := json.MarshalIndent(engine.Store().Ledger(), "", "  ")
		if err != nil {
			return fmt.Errorf("encode ledger: %w", err)
		}
		if err := os.WriteFile(*ledgerFile, data, 0o644); err != nil {
			return fmt.Errorf("write ledger: %w", err)
		}
		logger.Info().Str("path", *ledgerFile).Msg("rating ledger written")
	}

	return printJSON(engine.Store().Rankings(*limit))
}

func runPredict(args []string, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	matchesFile := fs.String("matches", "", "Path to match history (JSON or CSV)")
	configFile := fs.String("config", "", "Path to YAML config")
	fs.Parse(args)

	if fs.NArg() != 2 {
		return fmt.Errorf("usage: oddskit predict [flags] <home_team> <away_team>")
	}
	if *matchesFile == "" {
		return fmt.Errorf("-matches is required")
	}
	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}

	engine, err := buildEngine(*matchesFile, cfg.Rating, metrics.New(), logger)
	if err != nil {
		return err
	}

	home, away := fs.Arg(0), fs.Arg(1)
	return printJSON(struct {
		HomeTeam   string            `json:"home_team"`
		AwayTeam   string            `json:"away_team"`
		HomeRating float64           `json:"home_rating"`
		AwayRating float64           `json:"away_rating"`
		Prediction rating.Prediction `json:"prediction"`
	}{
		HomeTeam:   home,
		AwayTeam:   away,
		HomeRating: engine.Store().Rating(home),
		AwayRating: engine.Store().Rating(away),
		Prediction: engine.PredictMatch(home, away),
	})
}

func runEdges(args []string, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("edges", flag.ExitOnError)
	matchesFile := fs.String("matches", "", "Path to match history (JSON or CSV)")
	quotesFile := fs.String("quotes", "", "Path to market quotes (JSON or CSV)")
	configFile := fs.String("config", "", "Path to YAML config")
	matchID := fs.String("match", "", "Match ID the quotes belong to")
	bankrollAmt := fs.Float64("bankroll", 1000, "Bankroll for stake sizing")
	confidence := fs.Float64("confidence", 0.6, "Model confidence in (0,1]")
	fs.Parse(args)

	if fs.NArg() != 2 {
		return fmt.Errorf("usage: oddskit edges [flags] <home_team> <away_team>")
	}
	if *matchesFile == "" || *quotesFile == "" {
		return fmt.Errorf("-matches and -quotes are required")
	}
	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}

	m := metrics.New()
	engine, err := buildEngine(*matchesFile, cfg.Rating, m, logger)
	if err != nil {
		return err
	}
	quotes, err := loadQuotes(*quotesFile, logger)
	if err != nil {
		return err
	}

	supplier := &ratingSupplier{engine: engine}
	probs, err := supplier.MatchProbabilities(fs.Arg(0), fs.Arg(1))
	if err != nil {
		return err
	}
	if err := edge.ValidateGroup(probs, edge.GroupMatchOdds, 1e-6); err != nil {
		return fmt.Errorf("model probabilities for match odds do not sum to 1: %w", err)
	}

	calc := edge.NewCalculator(&cfg.Edge)
	decisions := calc.ComputeEdges(*matchID, probs, *confidence, quotes, decimal.NewFromFloat(*bankrollAmt))

	m.EdgesEvaluated.Add(float64(len(quotes)))
	for _, d := range decisions {
		m.EdgesSurfaced.WithLabelValues(string(d.Market), string(d.RiskTier)).Inc()
		m.EdgeSize.Observe(d.EdgePct)
	}
	logger.Info().Int("quotes", len(quotes)).Int("edges", len(decisions)).Msg("edge evaluation complete")

	return printJSON(decisions)
}

func runSimulate(args []string, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	betsFile := fs.String("bets", "", "Path to resolved bet log (JSON)")
	configFile := fs.String("config", "", "Path to YAML config")
	policyName := fs.String("policy", "flat_unit", "Staking policy: flat_unit, flat_percent, progressive_percent, fractional_kelly")
	fs.Parse(args)

	if *betsFile == "" {
		return fmt.Errorf("-bets is required")
	}
	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(*betsFile)
	if err != nil {
		return fmt.Errorf("read bet log: %w", err)
	}
	var bets []bankroll.Bet
	if err := json.Unmarshal(data, &bets); err != nil {
		return fmt.Errorf("decode bet log: %w", err)
	}

	policy, err := buildPolicy(*policyName, cfg.Bankroll)
	if err != nil {
		return err
	}

	m := metrics.New()
	start := time.Now()
	result := bankroll.Simulate(bets, policy, &bankroll.Config{
		InitialBankroll: decimal.NewFromFloat(cfg.Bankroll.InitialBankroll),
		Filters: bankroll.Filters{
			Markets:    cfg.Bankroll.Markets,
			MinEdgePct: cfg.Bankroll.MinEdgePct,
		},
	})
	m.SimulationDuration.Observe(time.Since(start).Seconds())
	m.SimulationRuns.WithLabelValues(policy.Name()).Inc()

	logger.Info().
		Str("policy", policy.Name()).
		Int("placed", result.BetsPlaced).
		Int("skipped", result.BetsSkipped).
		Bool("busted", result.Busted).
		Msg("simulation complete")

	return printJSON(result)
}

func buildPolicy(name string, cfg config.BankrollConfig) (bankroll.Policy, error) {
	switch name {
	case "flat_unit":
		return bankroll.NewFlatUnit(cfg.FlatUnit), nil
	case "flat_percent":
		return bankroll.NewFlatPercent(cfg.FlatPct), nil
	case "progressive_percent":
		return bankroll.NewProgressivePercent(cfg.FlatPct, cfg.MinUnit, cfg.MaxUnit), nil
	case "fractional_kelly":
		return bankroll.NewFractionalKelly(cfg.KellyMultiplier, cfg.MaxStakePct), nil
	default:
		return nil, fmt.Errorf("unknown staking policy %q", name)
	}
}

func runReport(args []string, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	storeFile := fs.String("store", "", "Path to the JSON bet store")
	fs.Parse(args)

	if *storeFile == "" {
		return fmt.Errorf("-store is required")
	}

	tracker := clv.NewTracker(logger)
	loaded, err := tracker.LoadFrom(context.Background(), clv.NewJSONStore(*storeFile))
	if err != nil {
		return err
	}
	logger.Info().Int("bets", loaded).Msg("bet ledger loaded")

	return printJSON(tracker.GenerateReport())
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
