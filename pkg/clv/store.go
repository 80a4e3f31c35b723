package clv

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Store persists the bet ledger across process restarts. Persistence
// is a collaborator concern; the tracker only requires that previously
// recorded bets come back and that one bad record does not abort the
// load.
type Store interface {
	Save(ctx context.Context, bets []BetRecord) error
	Load(ctx context.Context) ([]BetRecord, error)
}

// JSONStore persists the ledger as a JSON array in a single file.
type JSONStore struct {
	Path string
}

// NewJSONStore creates a file-backed store.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{Path: path}
}

// Save writes the full ledger, replacing the previous file.
func (s *JSONStore) Save(ctx context.Context, bets []BetRecord) error {
	data, err := json.MarshalIndent(bets, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode bets: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write bet store: %w", err)
	}
	return nil
}

// Load reads the full ledger. A missing file is an empty ledger, not
// an error.
func (s *JSONStore) Load(ctx context.Context) ([]BetRecord, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read bet store: %w", err)
	}

	var bets []BetRecord
	if err := json.Unmarshal(data, &bets); err != nil {
		return nil, fmt.Errorf("failed to decode bet store: %w", err)
	}
	return bets, nil
}

// LoadFrom replaces the tracker's ledger with the store's contents.
// Malformed records (missing identity, nonsensical odds) are logged
// and skipped so partial corruption never loses the whole ledger.
// Returns the number of bets loaded.
func (t *Tracker) LoadFrom(ctx context.Context, store Store) (int, error) {
	bets, err := store.Load(ctx)
	if err != nil {
		return 0, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.bets = t.bets[:0]
	for _, bet := range bets {
		if err := validateRecord(bet); err != nil {
			t.logger.Warn().Err(err).Str("bet_id", bet.ID).Msg("skipping malformed bet record")
			continue
		}
		b := bet
		t.bets = append(t.bets, &b)
	}
	return len(t.bets), nil
}

// SaveTo writes the tracker's ledger to the store.
func (t *Tracker) SaveTo(ctx context.Context, store Store) error {
	return store.Save(ctx, t.Bets())
}

func validateRecord(bet BetRecord) error {
	if bet.ID == "" {
		return fmt.Errorf("missing bet id")
	}
	if bet.MatchID == "" {
		return fmt.Errorf("missing match id")
	}
	if bet.BetOdds <= 1.0 {
		return fmt.Errorf("bet odds %.4f out of range", bet.BetOdds)
	}
	if bet.ModelProb <= 0 || bet.ModelProb > 1 {
		return fmt.Errorf("model probability %.4f out of range", bet.ModelProb)
	}
	switch bet.Status {
	case StatusPlaced, StatusClosingKnown, StatusSettled:
	default:
		return fmt.Errorf("unknown status %q", bet.Status)
	}
	return nil
}
