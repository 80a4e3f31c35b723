package clv

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // postgres driver
	"github.com/shopspring/decimal"

	"github.com/pitchside/oddskit/pkg/edge"
)

// PostgresStore persists the bet ledger in a single table, upserting
// on bet id so re-saving after closing-line or settlement updates
// overwrites in place.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the bets table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS bets (
			id              TEXT PRIMARY KEY,
			match_id        TEXT NOT NULL,
			market          TEXT NOT NULL,
			selection       TEXT NOT NULL DEFAULT '',
			match_date      TIMESTAMPTZ NOT NULL,
			model_prob      DOUBLE PRECISION NOT NULL,
			opening_odds    DOUBLE PRECISION NOT NULL,
			bet_odds        DOUBLE PRECISION NOT NULL,
			stake           NUMERIC(14,2) NOT NULL,
			status          TEXT NOT NULL,
			placed_at       TIMESTAMPTZ NOT NULL,
			closing_odds    DOUBLE PRECISION,
			closing_prob    DOUBLE PRECISION,
			clv_pct         DOUBLE PRECISION,
			edge_vs_closing DOUBLE PRECISION,
			won             BOOLEAN,
			profit          NUMERIC(14,2),
			settled_at      TIMESTAMPTZ
		)
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create bets table: %w", err)
	}
	return nil
}

// Save upserts every record by id.
func (s *PostgresStore) Save(ctx context.Context, bets []BetRecord) error {
	query := `
		INSERT INTO bets (
			id, match_id, market, selection, match_date, model_prob,
			opening_odds, bet_odds, stake, status, placed_at,
			closing_odds, closing_prob, clv_pct, edge_vs_closing,
			won, profit, settled_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		ON CONFLICT (id) DO UPDATE SET
			status          = EXCLUDED.status,
			closing_odds    = EXCLUDED.closing_odds,
			closing_prob    = EXCLUDED.closing_prob,
			clv_pct         = EXCLUDED.clv_pct,
			edge_vs_closing = EXCLUDED.edge_vs_closing,
			won             = EXCLUDED.won,
			profit          = EXCLUDED.profit,
			settled_at      = EXCLUDED.settled_at
	`

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	for _, bet := range bets {
		var profit *string
		if bet.Profit != nil {
			p := bet.Profit.String()
			profit = &p
		}
		_, err := tx.ExecContext(ctx, query,
			bet.ID, bet.MatchID, string(bet.Market), bet.Selection,
			bet.MatchDate, bet.ModelProb, bet.OpeningOdds, bet.BetOdds,
			bet.Stake.String(), string(bet.Status), bet.PlacedAt,
			bet.ClosingOdds, bet.ClosingProb, bet.CLVPct, bet.EdgeVsClosing,
			bet.Won, profit, bet.SettledAt,
		)
		if err != nil {
			return fmt.Errorf("save bet %s: %w", bet.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Load reads the full ledger ordered by placement time.
func (s *PostgresStore) Load(ctx context.Context) ([]BetRecord, error) {
	query := `
		SELECT id, match_id, market, selection, match_date, model_prob,
		       opening_odds, bet_odds, stake, status, placed_at,
		       closing_odds, closing_prob, clv_pct, edge_vs_closing,
		       won, profit, settled_at
		FROM bets
		ORDER BY placed_at
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load bets: %w", err)
	}
	defer rows.Close()

	var bets []BetRecord
	for rows.Next() {
		var (
			bet       BetRecord
			market    string
			status    string
			stake     string
			profit    sql.NullString
			settledAt sql.NullTime
		)
		err := rows.Scan(
			&bet.ID, &bet.MatchID, &market, &bet.Selection, &bet.MatchDate,
			&bet.ModelProb, &bet.OpeningOdds, &bet.BetOdds, &stake, &status,
			&bet.PlacedAt, &bet.ClosingOdds, &bet.ClosingProb, &bet.CLVPct,
			&bet.EdgeVsClosing, &bet.Won, &profit, &settledAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan bet: %w", err)
		}

		bet.Market = edge.Market(market)
		bet.Status = Status(status)
		bet.Stake, err = decimal.NewFromString(stake)
		if err != nil {
			return nil, fmt.Errorf("parse stake for bet %s: %w", bet.ID, err)
		}
		if profit.Valid {
			p, err := decimal.NewFromString(profit.String)
			if err != nil {
				return nil, fmt.Errorf("parse profit for bet %s: %w", bet.ID, err)
			}
			bet.Profit = &p
		}
		if settledAt.Valid {
			at := settledAt.Time
			bet.SettledAt = &at
		}
		bets = append(bets, bet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bets: %w", err)
	}
	return bets, nil
}

var _ Store = (*PostgresStore)(nil)
