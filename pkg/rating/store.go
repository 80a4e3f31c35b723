package rating

import (
	"sort"
	"sync"
	"time"
)

// Team is one rated team. The rating is owned exclusively by the engine
// and mutated only through rating updates.
type Team struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
}

// ChangeEvent is one immutable entry in the append-only rating ledger.
// One pair is emitted per processed match (home and away).
type ChangeEvent struct {
	TeamID    string    `json:"team_id"`
	MatchID   string    `json:"match_id"`
	Before    float64   `json:"rating_before"`
	After     float64   `json:"rating_after"`
	Delta     float64   `json:"delta"`
	Timestamp time.Time `json:"timestamp"`
}

// Store holds the current rating per team plus the change ledger.
// Teams are created lazily at the initial rating on first sight and
// never deleted. A single logical writer mutates the store during a
// replay; the mutex only guards against concurrent readers.
type Store struct {
	mu            sync.RWMutex
	initialRating float64
	teams         map[string]*Team
	ledger        []ChangeEvent
}

// NewStore creates an empty store with the given initial rating for
// newly seen teams.
func NewStore(initialRating float64) *Store {
	return &Store{
		initialRating: initialRating,
		teams:         make(map[string]*Team),
	}
}

// getOrCreate returns the team, creating it at the initial rating on
// first sight. Callers must hold the write lock.
func (s *Store) getOrCreate(teamID string) *Team {
	team, ok := s.teams[teamID]
	if !ok {
		team = &Team{ID: teamID, Name: teamID, Rating: s.initialRating}
		s.teams[teamID] = team
	}
	return team
}

// Rating returns the current rating for a team. Unknown teams report
// the initial rating without being created.
func (s *Store) Rating(teamID string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if team, ok := s.teams[teamID]; ok {
		return team.Rating
	}
	return s.initialRating
}

// Team returns a copy of the team record.
func (s *Store) Team(teamID string) (Team, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	team, ok := s.teams[teamID]
	if !ok {
		return Team{}, false
	}
	return *team, true
}

// Rankings returns teams ordered by descending rating. A limit <= 0
// returns all teams. Ties break on team ID so the order is stable.
func (s *Store) Rankings(limit int) []Team {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teams := make([]Team, 0, len(s.teams))
	for _, team := range s.teams {
		teams = append(teams, *team)
	}
	sort.Slice(teams, func(i, j int) bool {
		if teams[i].Rating != teams[j].Rating {
			return teams[i].Rating > teams[j].Rating
		}
		return teams[i].ID < teams[j].ID
	})

	if limit > 0 && limit < len(teams) {
		teams = teams[:limit]
	}
	return teams
}

// Ledger returns a copy of the rating change ledger in append order.
func (s *Store) Ledger() []ChangeEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ChangeEvent, len(s.ledger))
	copy(out, s.ledger)
	return out
}

// Size returns the number of known teams.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.teams)
}

// Reset drops all teams and the ledger. Used by full-history rebuilds,
// which must start from a clean slate to stay reproducible.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teams = make(map[string]*Team)
	s.ledger = nil
}
