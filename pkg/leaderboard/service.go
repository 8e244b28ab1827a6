package leaderboard

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/Web3vDev/SolanaRacer/pkg/providers"
	"github.com/rs/zerolog"
)

// Service maintains the points standings. The profile store is the source
// of truth; a redis sorted set caches scores so rank lookups stay cheap,
// and a refresh loop rebuilds both on a fixed interval.
type Service struct {
	mu       sync.RWMutex
	logger   zerolog.Logger
	store    providers.ProfileStore
	cache    Cache
	broad    *Broadcaster
	interval time.Duration
	limit    int
	ticker   *time.Ticker
	stopChan chan struct{}

	entries     []providers.LeaderboardEntry
	refreshedAt time.Time
}

// NewService creates a leaderboard service and starts its refresh loop.
func NewService(cfg ServiceConfig) *Service {
	interval := cfg.RefreshInterval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	limit := cfg.TopLimit
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	s := &Service{
		logger:   cfg.Logger,
		store:    cfg.Store,
		cache:    cfg.Cache,
		broad:    NewBroadcaster(16),
		interval: interval,
		limit:    limit,
		stopChan: make(chan struct{}),
	}
	s.start()
	return s
}

// Top returns the current standings, at most limit rows. Zero or negative
// limit means the full cached snapshot.
func (s *Service) Top(ctx context.Context, limit int) ([]providers.LeaderboardEntry, error) {
	s.mu.RLock()
	entries := s.entries
	stale := s.refreshedAt.IsZero()
	s.mu.RUnlock()

	if stale {
		if err := s.Refresh(ctx); err != nil {
			return nil, err
		}
		s.mu.RLock()
		entries = s.entries
		s.mu.RUnlock()
	}

	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

// Rank returns the 1-based rank a player with the given points holds.
// Players with strictly more points rank ahead; ties share the better rank.
func (s *Service) Rank(ctx context.Context, points int) (int, error) {
	if s.cache != nil {
		ahead, err := s.cache.ZCount(ctx, rankKey, "("+strconv.Itoa(points), "+inf")
		if err == nil {
			return int(ahead) + 1, nil
		}
		s.logger.Debug().Err(err).Msg("Rank lookup fell back to the profile store")
	}

	ahead, err := s.store.CountWithPointsGreaterThan(ctx, points)
	if err != nil {
		return 0, err
	}
	return ahead + 1, nil
}

// RecordPoints updates one player's cached score so rank lookups reflect
// gameplay between refreshes
func (s *Service) RecordPoints(ctx context.Context, fid int64, points int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.ZAdd(ctx, rankKey, float64(points), strconv.FormatInt(fid, 10)); err != nil {
		s.logger.Debug().Err(err).Int64("fid", fid).Msg("Failed to record score in cache")
	}
}

// Refresh rebuilds the snapshot and the rank cache from the profile store
// and broadcasts the new standings.
func (s *Service) Refresh(ctx context.Context) error {
	entries, err := s.store.ListTopByPoints(ctx, s.limit)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Leaderboard refresh failed, keeping previous standings")
		return err
	}

	now := time.Now()
	s.mu.Lock()
	s.entries = entries
	s.refreshedAt = now
	s.mu.Unlock()

	if s.cache != nil {
		for _, entry := range entries {
			if err := s.cache.ZAdd(ctx, rankKey, float64(entry.Points), strconv.FormatInt(entry.FID, 10)); err != nil {
				s.logger.Debug().Err(err).Int64("fid", entry.FID).Msg("Failed to cache score")
				break
			}
		}
	}

	s.broad.Send(Snapshot{Entries: entries, RefreshedAt: now})
	return nil
}

// Listen returns a channel to receive standings snapshots plus a cancel function.
func (s *Service) Listen(ctx context.Context) (<-chan Snapshot, context.CancelFunc) {
	return s.broad.Listen(ctx)
}

// Stop stops the refresh loop.
func (s *Service) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopChan)
}

func (s *Service) start() {
	s.ticker = time.NewTicker(s.interval)
	go s.loop()
}

func (s *Service) loop() {
	for {
		select {
		case <-s.stopChan:
			return
		case <-s.ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := s.Refresh(ctx); err != nil {
				s.logger.Debug().Err(err).Msg("Scheduled leaderboard refresh failed")
			}
			cancel()
		}
	}
}
