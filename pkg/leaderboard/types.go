package leaderboard

import (
	"context"
	"time"

	"github.com/Web3vDev/SolanaRacer/pkg/providers"
	"github.com/rs/zerolog"
)

const (
	// DefaultRefreshInterval is how often the cached standings are rebuilt
	// from the profile store
	DefaultRefreshInterval = 30 * time.Second

	// DefaultTopLimit is how many rows the cached standings hold
	DefaultTopLimit = 100

	// rankKey is the sorted set backing rank lookups
	rankKey = "leaderboard:points"
)

// Cache is the subset of redis operations the leaderboard needs. It stays
// small so tests can fake it without a running redis.
type Cache interface {
	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZCount(ctx context.Context, key, min, max string) (int64, error)
	ZCard(ctx context.Context, key string) (int64, error)
	Delete(ctx context.Context, key string) error
}

// ServiceConfig holds leaderboard service configuration
type ServiceConfig struct {
	Logger          zerolog.Logger
	Store           providers.ProfileStore
	Cache           Cache
	RefreshInterval time.Duration
	TopLimit        int
}

// Snapshot is one refresh of the standings, broadcast to listeners
type Snapshot struct {
	Entries     []providers.LeaderboardEntry `json:"entries"`
	RefreshedAt time.Time                    `json:"refreshed_at"`
}
