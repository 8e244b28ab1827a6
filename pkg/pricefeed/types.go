package pricefeed

import (
	"context"
	"time"

	"github.com/Web3vDev/SolanaRacer/game"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	// DefaultRefreshInterval is how often the real market price is fetched
	DefaultRefreshInterval = 30 * time.Second

	// DefaultTickInterval is how often an animated tick is broadcast
	DefaultTickInterval = 2 * time.Second

	// tickJitter bounds the per-tick wobble around the market price
	tickJitter = 0.0025
)

// DefaultBasePrice keeps the feed alive when the market source is down
var DefaultBasePrice = decimal.NewFromInt(150)

// PriceSource fetches the current SOL market price
type PriceSource interface {
	FetchPrice(ctx context.Context) (decimal.Decimal, error)
}

// Tick is one animated price sample
type Tick struct {
	Price decimal.Decimal `json:"price"`
	At    time.Time       `json:"at"`
}

// ServiceConfig holds price feed configuration
type ServiceConfig struct {
	Logger          zerolog.Logger
	Source          PriceSource
	RNG             game.RandomSource
	RefreshInterval time.Duration
	TickInterval    time.Duration
}
