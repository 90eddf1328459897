package game

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/nineball/internal/config"
	"github.com/redis/go-redis/v9"
)

// ErrMatchNotFound is returned when no match has the requested ID.
var ErrMatchNotFound = errors.New("match not found")

// MatchManager keeps every live match in memory. Postgres and Redis are
// optional; without them matches simply are not persisted.
type MatchManager struct {
	matches map[string]*Match
	db      *sqlx.DB
	rdb     *redis.Client
	config  *config.Config
	profile Profile
	mu      sync.RWMutex
}

// NewMatchManager creates a manager racking matches with profile.
func NewMatchManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config, profile Profile) *MatchManager {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &MatchManager{
		matches: make(map[string]*Match),
		db:      db,
		rdb:     rdb,
		config:  cfg,
		profile: profile,
	}
}

// generateToken generates a secure random hex token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func generateMatchID() string {
	return "match_" + generateToken(8)
}

// Create racks a new match and registers it.
func (mm *MatchManager) Create() *Match {
	p := mm.profile
	m := NewMatch(generateMatchID(), MatchOptions{
		Profile:  &p,
		TickRate: mm.config.TickRate,
		MaxTicks: mm.config.MaxTicksPerFrame,
	})

	mm.mu.Lock()
	mm.matches[m.ID] = m
	mm.mu.Unlock()

	slog.Info("match created", "component", "manager", "match_id", m.ID)
	return m
}

// Get returns a live match.
func (mm *MatchManager) Get(id string) (*Match, error) {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	m, ok := mm.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return m, nil
}

// Remove drops a match from memory.
func (mm *MatchManager) Remove(id string) error {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	if _, ok := mm.matches[id]; !ok {
		return ErrMatchNotFound
	}
	delete(mm.matches, id)

	slog.Info("match removed", "component", "manager", "match_id", id)
	return nil
}

// List returns the live matches, oldest first.
func (mm *MatchManager) List() []*Match {
	mm.mu.RLock()
	list := make([]*Match, 0, len(mm.matches))
	for _, m := range mm.matches {
		list = append(list, m)
	}
	mm.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

// Count returns how many matches are live.
func (mm *MatchManager) Count() int {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return len(mm.matches)
}

// Profile returns the table profile new matches are racked with.
func (mm *MatchManager) Profile() Profile {
	return mm.profile
}
