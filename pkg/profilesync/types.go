package profilesync

import (
	"time"

	"github.com/Web3vDev/SolanaRacer/game"
	"github.com/Web3vDev/SolanaRacer/pkg/providers"
	"github.com/rs/zerolog"
)

const (
	// DefaultDebounce is how long enqueued updates coalesce before a flush
	DefaultDebounce = 2 * time.Second

	// DefaultBootstrapTimeout bounds the identity fetch at session start
	DefaultBootstrapTimeout = 2 * time.Second

	// DefaultMaxBackoff caps the flush retry delay after store failures
	DefaultMaxBackoff = 30 * time.Second

	// flushTimeout bounds a single store update call
	flushTimeout = 10 * time.Second
)

// Config holds synchronizer configuration
type Config struct {
	Logger           zerolog.Logger
	Store            providers.ProfileStore
	Identity         providers.IdentityProvider
	RNG              game.RandomSource
	Debounce         time.Duration
	BootstrapTimeout time.Duration
	MaxBackoff       time.Duration
}

func (c *Config) setDefaults() {
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.BootstrapTimeout <= 0 {
		c.BootstrapTimeout = DefaultBootstrapTimeout
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = DefaultMaxBackoff
	}
	if c.RNG == nil {
		c.RNG = game.DefaultRNG()
	}
}

// DefaultIdentity is the fallback used when the identity provider does not
// answer within the bootstrap timeout. It keeps the game playable in
// development shells and degraded environments.
func DefaultIdentity() game.Identity {
	return game.Identity{
		FID:         1,
		Username:    "guest",
		DisplayName: "Guest Racer",
	}
}
