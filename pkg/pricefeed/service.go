package pricefeed

import (
	"context"
	"sync"
	"time"

	"github.com/Web3vDev/SolanaRacer/game"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Service animates the SOL price for the racing view. The market price is
// fetched on a slow interval; between fetches the feed wobbles the last
// known price a fraction of a percent per tick so the chart never sits
// still. Gameplay outcomes never depend on these values.
type Service struct {
	mu            sync.RWMutex
	logger        zerolog.Logger
	source        PriceSource
	rng           game.RandomSource
	broad         *Broadcaster
	tickTicker    *time.Ticker
	refreshTicker *time.Ticker
	stopChan      chan struct{}

	base      decimal.Decimal
	current   decimal.Decimal
	fetchedAt time.Time
}

// NewService creates a price feed and starts its tick and refresh loops.
func NewService(cfg ServiceConfig) *Service {
	refresh := cfg.RefreshInterval
	if refresh <= 0 {
		refresh = DefaultRefreshInterval
	}
	tick := cfg.TickInterval
	if tick <= 0 {
		tick = DefaultTickInterval
	}
	rng := cfg.RNG
	if rng == nil {
		rng = game.DefaultRNG()
	}

	s := &Service{
		logger:   cfg.Logger,
		source:   cfg.Source,
		rng:      rng,
		broad:    NewBroadcaster(64),
		stopChan: make(chan struct{}),
		base:     DefaultBasePrice,
		current:  DefaultBasePrice,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	s.refresh(ctx)
	cancel()

	s.tickTicker = time.NewTicker(tick)
	s.refreshTicker = time.NewTicker(refresh)
	go s.loop()
	return s
}

// Current returns the latest animated price
func (s *Service) Current() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SettlementPrice derives the final displayed price for a settled round.
// The decimals are forced so a correct call visibly lands on the side the
// player picked.
func (s *Service) SettlementPrice(direction game.Direction, correct bool) decimal.Decimal {
	s.mu.RLock()
	base := s.current
	s.mu.RUnlock()

	settled, err := decimal.NewFromString(game.SettlePrice(base.InexactFloat64(), direction, correct))
	if err != nil {
		return base
	}

	s.mu.Lock()
	s.current = settled
	s.mu.Unlock()
	return settled
}

// Listen returns a channel to receive price ticks plus a cancel function.
func (s *Service) Listen(ctx context.Context) (<-chan Tick, context.CancelFunc) {
	return s.broad.Listen(ctx)
}

// Stop stops the feed loops.
func (s *Service) Stop() {
	if s.tickTicker != nil {
		s.tickTicker.Stop()
	}
	if s.refreshTicker != nil {
		s.refreshTicker.Stop()
	}
	close(s.stopChan)
}

func (s *Service) loop() {
	for {
		select {
		case <-s.stopChan:
			return
		case <-s.tickTicker.C:
			s.tick()
		case <-s.refreshTicker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			s.refresh(ctx)
			cancel()
		}
	}
}

// refresh fetches the market price. A failed fetch keeps the previous base
// so the animation carries on.
func (s *Service) refresh(ctx context.Context) {
	if s.source == nil {
		return
	}

	price, err := s.source.FetchPrice(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Price fetch failed, animating the previous base")
		return
	}
	if price.LessThanOrEqual(decimal.Zero) {
		s.logger.Warn().Str("price", price.String()).Msg("Ignoring non-positive market price")
		return
	}

	s.mu.Lock()
	s.base = price
	s.current = price.Round(3)
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	s.logger.Debug().Str("price", price.String()).Msg("Refreshed market price")
}

// tick wobbles the price around the base and broadcasts the sample
func (s *Service) tick() {
	s.mu.Lock()
	jitter := (s.rng.Float64() - 0.5) * 2 * tickJitter
	next := s.base.Mul(decimal.NewFromFloat(1 + jitter)).Round(3)
	s.current = next
	s.mu.Unlock()

	s.broad.Send(Tick{Price: next, At: time.Now()})
}
