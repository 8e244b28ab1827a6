package profilesync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Web3vDev/SolanaRacer/game"
	"github.com/Web3vDev/SolanaRacer/pkg/providers"
	"github.com/rs/zerolog"
)

// Syncer reconciles one profile against the remote store. Writes coalesce
// through a debounce window so rapid gameplay does not hammer the store;
// at most one flush is in flight at a time.
type Syncer struct {
	mu       sync.Mutex
	logger   zerolog.Logger
	store    providers.ProfileStore
	fid      int64
	debounce time.Duration
	maxDelay time.Duration

	pending  *providers.ProfileUpdate
	timer    *time.Timer
	delay    time.Duration
	inFlight bool
	flushed  *sync.Cond
	rank     int
	closed   bool
}

// Bootstrap resolves the session identity, falling back to the default
// identity when the provider does not answer in time. The error is
// informational; callers always get a usable identity.
func Bootstrap(ctx context.Context, cfg Config) (game.Identity, error) {
	cfg.setDefaults()

	if cfg.Identity == nil {
		return DefaultIdentity(), nil
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.BootstrapTimeout)
	defer cancel()

	identity, err := cfg.Identity.GetContext(ctx)
	if err != nil {
		cfg.Logger.Warn().Err(err).Msg("Identity bootstrap failed, using default identity")
		return DefaultIdentity(), err
	}

	return game.Identity{
		FID:         identity.FID,
		Username:    identity.Username,
		DisplayName: identity.DisplayName,
		AvatarURL:   identity.AvatarURL,
	}, nil
}

// LoadOrCreate reads the stored profile or creates the default one for a
// first-time player. A store failure other than not-found degrades to an
// in-memory default profile; gameplay is never gated on the store.
func LoadOrCreate(ctx context.Context, cfg Config, identity game.Identity) (*game.Profile, bool, error) {
	cfg.setDefaults()

	record, err := cfg.Store.Read(ctx, identity.FID)
	if err == nil {
		profile, convErr := ProfileFromRecord(record)
		if convErr != nil {
			cfg.Logger.Error().Err(convErr).Int64("fid", identity.FID).Msg("Stored profile is corrupt, starting fresh")
			return game.NewDefaultProfile(identity, cfg.RNG), false, convErr
		}
		return profile, false, nil
	}

	if !errors.Is(err, providers.ErrNotFound) {
		cfg.Logger.Warn().Err(err).Int64("fid", identity.FID).Msg("Profile read failed, playing on in-memory default")
		return game.NewDefaultProfile(identity, cfg.RNG), false, err
	}

	profile := game.NewDefaultProfile(identity, cfg.RNG)
	record, convErr := RecordFromProfile(profile, 0)
	if convErr != nil {
		return profile, false, convErr
	}
	if createErr := cfg.Store.Create(ctx, record); createErr != nil {
		cfg.Logger.Warn().Err(createErr).Int64("fid", identity.FID).Msg("Profile create failed, playing on in-memory default")
		return profile, false, createErr
	}

	cfg.Logger.Info().Int64("fid", identity.FID).Msg("Created default profile")
	return profile, true, nil
}

// NewSyncer creates a synchronizer for one profile
func NewSyncer(cfg Config, fid int64) *Syncer {
	cfg.setDefaults()
	s := &Syncer{
		logger:   cfg.Logger.With().Str("component", "profile-syncer").Int64("fid", fid).Logger(),
		store:    cfg.Store,
		fid:      fid,
		debounce: cfg.Debounce,
		maxDelay: cfg.MaxBackoff,
		delay:    cfg.Debounce,
	}
	s.flushed = sync.NewCond(&s.mu)
	return s
}

// SetRank updates the leaderboard rank used when recomputing derived
// badge sets at flush time
func (s *Syncer) SetRank(rank int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rank = rank
}

// Enqueue merges a partial update into the pending buffer and (re)arms
// the debounce timer. Later fields win over earlier ones.
func (s *Syncer) Enqueue(update providers.ProfileUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.pending == nil {
		s.pending = &providers.ProfileUpdate{}
	}
	mergeOver(s.pending, &update)
	s.armLocked(s.delay)
}

// ForceUpdate flushes immediately, bypassing the debounce, and propagates
// the store error to the caller. A debounce flush already in flight finishes
// first; at most one store update runs at a time.
func (s *Syncer) ForceUpdate(ctx context.Context) error {
	s.mu.Lock()
	for s.inFlight {
		s.flushed.Wait()
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	update := s.pending
	s.pending = nil
	if update == nil || update.IsEmpty() {
		s.mu.Unlock()
		return nil
	}
	s.inFlight = true
	rank := s.rank
	s.mu.Unlock()

	decorate(update, rank)
	err := s.store.Update(ctx, s.fid, update)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	s.flushed.Broadcast()
	if err != nil {
		s.requeueLocked(update)
		return err
	}
	s.delay = s.debounce
	return nil
}

// Close stops the timer and flushes best-effort
func (s *Syncer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := s.forceClosed(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Final flush failed on close")
	}
}

func (s *Syncer) forceClosed(ctx context.Context) error {
	s.mu.Lock()
	update := s.pending
	s.pending = nil
	rank := s.rank
	s.mu.Unlock()

	if update == nil || update.IsEmpty() {
		return nil
	}
	decorate(update, rank)
	return s.store.Update(ctx, s.fid, update)
}

func (s *Syncer) armLocked(d time.Duration) {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(d, s.flush)
}

// flush sends the pending buffer to the store. Updates enqueued while the
// flush is in flight buffer for the next cycle; a failed flush merges its
// fields back under anything newer and retries with a growing delay.
func (s *Syncer) flush() {
	s.mu.Lock()
	if s.inFlight || s.closed || s.pending == nil || s.pending.IsEmpty() {
		s.mu.Unlock()
		return
	}
	update := s.pending
	s.pending = nil
	s.inFlight = true
	rank := s.rank
	s.mu.Unlock()

	decorate(update, rank)

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	err := s.store.Update(ctx, s.fid, update)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	s.flushed.Broadcast()

	if err != nil {
		s.requeueLocked(update)
		s.delay = s.delay * 2
		if s.delay > s.maxDelay {
			s.delay = s.maxDelay
		}
		s.logger.Warn().Err(err).Dur("retry_in", s.delay).Msg("Profile flush failed, buffering for retry")
		if !s.closed {
			s.armLocked(s.delay)
		}
		return
	}

	s.delay = s.debounce
	if s.pending != nil && !s.pending.IsEmpty() && !s.closed {
		s.armLocked(s.delay)
	}
}

// requeueLocked restores failed fields without clobbering newer pending ones
func (s *Syncer) requeueLocked(failed *providers.ProfileUpdate) {
	if s.pending == nil {
		s.pending = failed
		return
	}
	mergeUnder(s.pending, failed)
}

// decorate recomputes derived tier fields whenever points travel in the update
func decorate(update *providers.ProfileUpdate, rank int) {
	if update.Points == nil {
		return
	}
	level := game.CurrentLevel(*update.Points).Level
	update.Level = &level
	update.BadgeIDs = game.UnlockedBadgeIDs(*update.Points, rank)
	update.FrameIDs = game.UnlockedFrameIDs(*update.Points)
}

// mergeOver copies every set field of src into dst, overwriting
func mergeOver(dst, src *providers.ProfileUpdate) {
	if src.Username != nil {
		dst.Username = src.Username
	}
	if src.DisplayName != nil {
		dst.DisplayName = src.DisplayName
	}
	if src.AvatarURL != nil {
		dst.AvatarURL = src.AvatarURL
	}
	if src.Points != nil {
		dst.Points = src.Points
	}
	if src.WinStreak != nil {
		dst.WinStreak = src.WinStreak
	}
	if src.TotalRaces != nil {
		dst.TotalRaces = src.TotalRaces
	}
	if src.EnergyRemaining != nil {
		dst.EnergyRemaining = src.EnergyRemaining
	}
	if src.EnergyMax != nil {
		dst.EnergyMax = src.EnergyMax
	}
	if src.LastPrediction != nil {
		dst.LastPrediction = src.LastPrediction
	}
	if src.BoostActive != nil {
		dst.BoostActive = src.BoostActive
	}
	if src.BoostEndsAt != nil {
		dst.BoostEndsAt = src.BoostEndsAt
	}
	if src.Level != nil {
		dst.Level = src.Level
	}
	if src.BadgeIDs != nil {
		dst.BadgeIDs = src.BadgeIDs
	}
	if src.FrameIDs != nil {
		dst.FrameIDs = src.FrameIDs
	}
	if src.Upgrades != nil {
		dst.Upgrades = src.Upgrades
	}
	if src.Cars != nil {
		dst.Cars = src.Cars
	}
	if src.Items != nil {
		dst.Items = src.Items
	}
	if src.Tasks != nil {
		dst.Tasks = src.Tasks
	}
}

// mergeUnder copies set fields of src into dst only where dst is unset
func mergeUnder(dst, src *providers.ProfileUpdate) {
	if dst.Username == nil {
		dst.Username = src.Username
	}
	if dst.DisplayName == nil {
		dst.DisplayName = src.DisplayName
	}
	if dst.AvatarURL == nil {
		dst.AvatarURL = src.AvatarURL
	}
	if dst.Points == nil {
		dst.Points = src.Points
	}
	if dst.WinStreak == nil {
		dst.WinStreak = src.WinStreak
	}
	if dst.TotalRaces == nil {
		dst.TotalRaces = src.TotalRaces
	}
	if dst.EnergyRemaining == nil {
		dst.EnergyRemaining = src.EnergyRemaining
	}
	if dst.EnergyMax == nil {
		dst.EnergyMax = src.EnergyMax
	}
	if dst.LastPrediction == nil {
		dst.LastPrediction = src.LastPrediction
	}
	if dst.BoostActive == nil {
		dst.BoostActive = src.BoostActive
	}
	if dst.BoostEndsAt == nil {
		dst.BoostEndsAt = src.BoostEndsAt
	}
	if dst.Level == nil {
		dst.Level = src.Level
	}
	if dst.BadgeIDs == nil {
		dst.BadgeIDs = src.BadgeIDs
	}
	if dst.FrameIDs == nil {
		dst.FrameIDs = src.FrameIDs
	}
	if dst.Upgrades == nil {
		dst.Upgrades = src.Upgrades
	}
	if dst.Cars == nil {
		dst.Cars = src.Cars
	}
	if dst.Items == nil {
		dst.Items = src.Items
	}
	if dst.Tasks == nil {
		dst.Tasks = src.Tasks
	}
}
