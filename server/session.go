package server

import (
	"context"
	"sync"
	"time"

	"github.com/Web3vDev/SolanaRacer/config"
	apperrors "github.com/Web3vDev/SolanaRacer/errors"
	"github.com/Web3vDev/SolanaRacer/game"
	"github.com/Web3vDev/SolanaRacer/pkg/leaderboard"
	"github.com/Web3vDev/SolanaRacer/pkg/pricefeed"
	"github.com/Web3vDev/SolanaRacer/pkg/profilesync"
	"github.com/Web3vDev/SolanaRacer/pkg/providers"
	"github.com/rs/zerolog"
)

// Deps holds the shared services every session draws on
type Deps struct {
	Logger      zerolog.Logger
	Config      *config.Config
	Store       providers.ProfileStore
	Identity    providers.IdentityProvider
	Audit       providers.AuditLogger
	Leaderboard *leaderboard.Service
	Prices      *pricefeed.Service
	RNG         game.RandomSource
	Clock       func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now()
}

// Session is the server-side home of one player. It owns the canonical
// profile, the round engine, the energy regenerator, and the profile
// synchronizer. All gameplay for a player funnels through its mutex.
type Session struct {
	mu       sync.Mutex
	logger   zerolog.Logger
	deps     Deps
	identity game.Identity
	profile  *game.Profile
	engine   *game.Engine
	syncer   *profilesync.Syncer
	events   *EventBroadcaster

	regenTimer   *time.Timer
	resolveTimer *time.Timer
	resetTimer   *time.Timer

	lastSeen time.Time
	closed   bool
}

// newSession loads or creates the player profile and starts the session
// machinery. A store failure degrades to an in-memory profile; the session
// still plays.
func newSession(ctx context.Context, deps Deps, identity game.Identity) *Session {
	syncCfg := profilesync.Config{
		Logger:           deps.Logger,
		Store:            deps.Store,
		Identity:         deps.Identity,
		RNG:              deps.RNG,
		Debounce:         deps.Config.Game.SyncDebounce,
		BootstrapTimeout: deps.Config.Game.BootstrapTimeout,
	}

	identity = resolveIdentity(ctx, syncCfg, identity, deps.Logger)

	profile, created, err := profilesync.LoadOrCreate(ctx, syncCfg, identity)
	if err != nil {
		deps.Logger.Warn().Err(err).Int64("fid", identity.FID).Msg("Session started on degraded profile")
	}

	s := &Session{
		logger:   deps.Logger.With().Str("component", "session").Int64("fid", identity.FID).Logger(),
		deps:     deps,
		identity: identity,
		profile:  profile,
		engine:   game.NewEngine(profile, deps.RNG, deps.Config.Game.RoundWindow, deps.Clock),
		syncer:   profilesync.NewSyncer(syncCfg, identity.FID),
		events:   NewEventBroadcaster(32),
		lastSeen: deps.now(),
	}

	if created {
		s.logger.Info().Msg("New racer joined")
	}

	s.mu.Lock()
	s.armRegenLocked()
	s.mu.Unlock()
	return s
}

// resolveIdentity fills in identity fields the token did not carry by asking
// the identity provider. The provider may hang, so Bootstrap bounds the call
// with the bootstrap timeout and degrades to the default guest identity.
// Fields the token did carry always win.
func resolveIdentity(ctx context.Context, cfg profilesync.Config, identity game.Identity, logger zerolog.Logger) game.Identity {
	if identity.FID != 0 && identity.Username != "" && identity.DisplayName != "" {
		return identity
	}

	resolved, err := profilesync.Bootstrap(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Int64("fid", identity.FID).Msg("Identity bootstrap degraded to defaults")
	}
	if identity.FID == 0 {
		identity.FID = resolved.FID
	}
	if identity.Username == "" {
		identity.Username = resolved.Username
	}
	if identity.DisplayName == "" {
		identity.DisplayName = resolved.DisplayName
	}
	if identity.AvatarURL == "" {
		identity.AvatarURL = resolved.AvatarURL
	}
	return identity
}

// Touch marks the session as recently used
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = s.deps.now()
	s.mu.Unlock()
}

// Profile returns a copy of the player profile
func (s *Session) Profile() *game.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.Clone()
}

// Round returns a snapshot of the active round
func (s *Session) Round() game.Round {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Current()
}

// NextEnergyTick reports when the next energy point arrives
func (s *Session) NextEnergyTick() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	interval := game.RegenInterval(s.deps.Config.Game.BaseRegenInterval, s.profile)
	return game.NextTickIn(s.deps.now(), s.profile, interval)
}

// Events exposes the session event stream
func (s *Session) Events() *EventBroadcaster {
	return s.events
}

// Predict accepts a price call and schedules its resolution
func (s *Session) Predict(direction game.Direction) (game.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !direction.Valid() {
		return s.engine.Current(), apperrors.New(apperrors.ErrInvalidRequest, "direction must be up or down")
	}
	if s.engine.Current().State != game.RoundIdle {
		return s.engine.Current(), apperrors.New(apperrors.ErrRoundInProgress, "a race is already running")
	}
	if s.profile.Energy.Remaining <= 0 {
		return s.engine.Current(), apperrors.New(apperrors.ErrInsufficientEnergy, "no energy left")
	}

	if !s.engine.Predict(direction) {
		return s.engine.Current(), apperrors.New(apperrors.ErrRoundInProgress, "prediction rejected")
	}

	// Prediction moved the regen anchor
	s.armRegenLocked()

	if s.resolveTimer != nil {
		s.resolveTimer.Stop()
	}
	s.resolveTimer = time.AfterFunc(s.deps.Config.Game.RoundWindow, s.resolve)

	s.syncer.Enqueue(providers.ProfileUpdate{
		EnergyRemaining: intRef(s.profile.Energy.Remaining),
		TotalRaces:      intRef(s.profile.TotalRaces),
		LastPrediction:  timeRef(s.profile.LastPrediction),
	})

	return s.engine.Current(), nil
}

// resolve settles the round when its window elapses
func (s *Session) resolve() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	pointsBefore := s.profile.Points
	direction := s.engine.Current().Direction
	result := s.engine.Resolve()
	if result == nil {
		s.mu.Unlock()
		return
	}

	pointsAfter := s.profile.Points
	streak := s.profile.WinStreak
	round := s.engine.Current()

	if s.resetTimer != nil {
		s.resetTimer.Stop()
	}
	s.resetTimer = time.AfterFunc(s.deps.Config.Game.ResultDisplayDelay, s.reset)
	s.mu.Unlock()

	finalPrice := s.deps.Prices.SettlementPrice(direction, result.Correct)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	unlocks := s.syncPoints(ctx, pointsBefore, pointsAfter)
	s.syncer.Enqueue(providers.ProfileUpdate{
		Points:    intRef(pointsAfter),
		WinStreak: intRef(streak),
	})

	if s.deps.Audit != nil {
		if err := s.deps.Audit.LogRace(ctx, &providers.RaceLog{
			FID:           s.identity.FID,
			Username:      s.identity.Username,
			Direction:     string(direction),
			Correct:       result.Correct,
			PointsAwarded: result.PointsAwarded,
			Streak:        result.Streak,
			Boosted:       result.Boosted,
			FinalPrice:    finalPrice.String(),
			Timestamp:     result.SettledAt,
		}); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to audit race")
		}
	}

	event := StreamEvent{
		Type:       EventTypeSettled,
		Timestamp:  s.deps.now().Unix(),
		Round:      &round,
		Result:     result,
		FinalPrice: finalPrice.String(),
	}
	// Only the freshest unlock is surfaced; the rest live in the audit trail
	if len(unlocks) > 0 {
		event.Unlock = &unlocks[0]
	}
	s.events.Send(event)
}

// reset returns the engine to idle after the result has been displayed
func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.engine.Reset()
}

// BuyUpgrade purchases one upgrade level
func (s *Session) BuyUpgrade(ctx context.Context, upgradeID int) (*game.Profile, error) {
	s.mu.Lock()
	upgrade, ok := game.FindUpgrade(s.profile.Upgrades, upgradeID)
	if !ok {
		s.mu.Unlock()
		return nil, apperrors.New(apperrors.ErrNotFound, "unknown upgrade")
	}
	cost := upgrade.NextCost()

	if err := game.BuyUpgrade(s.profile, upgradeID); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	snapshot := s.profile.Clone()
	s.enqueueSnapshotLocked()
	s.mu.Unlock()

	s.auditPurchase(ctx, "upgrade", upgradeID, cost)
	return snapshot, nil
}

// BuyCar purchases a car from the garage catalog
func (s *Session) BuyCar(ctx context.Context, carID int) (*game.Profile, error) {
	s.mu.Lock()
	car, ok := game.FindCar(s.profile.Cars, carID)
	if !ok {
		s.mu.Unlock()
		return nil, apperrors.New(apperrors.ErrNotFound, "unknown car")
	}

	if err := game.BuyCar(s.profile, carID); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	snapshot := s.profile.Clone()
	s.enqueueSnapshotLocked()
	s.mu.Unlock()

	s.auditPurchase(ctx, "car", carID, car.Price)
	return snapshot, nil
}

// EquipCar swaps the equipped car
func (s *Session) EquipCar(carID int) (*game.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := game.EquipCar(s.profile, carID); err != nil {
		return nil, err
	}
	s.enqueueSnapshotLocked()
	return s.profile.Clone(), nil
}

// UseItem consumes one inventory item
func (s *Session) UseItem(itemID int) (*game.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := game.UseItem(s.profile, itemID, s.deps.now()); err != nil {
		return nil, err
	}
	// Energy restores shift the next regen tick
	s.armRegenLocked()
	s.enqueueSnapshotLocked()
	return s.profile.Clone(), nil
}

// CompleteTask claims a task reward
func (s *Session) CompleteTask(ctx context.Context, taskID int) (*game.Profile, game.Task, error) {
	s.mu.Lock()
	pointsBefore := s.profile.Points

	task, err := game.CompleteTask(s.profile, taskID, s.deps.now())
	if err != nil {
		s.mu.Unlock()
		return nil, game.Task{}, err
	}

	pointsAfter := s.profile.Points
	snapshot := s.profile.Clone()
	s.enqueueSnapshotLocked()
	s.mu.Unlock()

	if pointsAfter != pointsBefore {
		s.syncPoints(ctx, pointsBefore, pointsAfter)
	}
	return snapshot, task, nil
}

// regenTick restores one energy point and re-arms the timer
func (s *Session) regenTick() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	ticked := game.RegenTick(s.profile)
	energy := s.profile.Energy
	if ticked {
		s.syncer.Enqueue(providers.ProfileUpdate{
			EnergyRemaining: intRef(energy.Remaining),
		})
	}
	s.armRegenLocked()
	interval := game.RegenInterval(s.deps.Config.Game.BaseRegenInterval, s.profile)
	next := game.NextTickIn(s.deps.now(), s.profile, interval)
	s.mu.Unlock()

	if ticked {
		s.events.Send(StreamEvent{
			Type:           EventTypeEnergy,
			Timestamp:      s.deps.now().Unix(),
			Energy:         &energy,
			NextEnergyTick: int64(next.Seconds()),
		})
	}
}

func (s *Session) armRegenLocked() {
	if s.regenTimer != nil {
		s.regenTimer.Stop()
	}
	interval := game.RegenInterval(s.deps.Config.Game.BaseRegenInterval, s.profile)
	s.regenTimer = time.AfterFunc(game.NextTickIn(s.deps.now(), s.profile, interval), s.regenTick)
}

// enqueueSnapshotLocked buffers a full-profile update, used after shop and
// task operations that touch the nested collections
func (s *Session) enqueueSnapshotLocked() {
	update, err := profilesync.SnapshotUpdate(s.profile)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to snapshot profile for sync")
		return
	}
	s.syncer.Enqueue(*update)
}

// syncPoints recomputes ranks around a points change, records unlocks in
// the audit trail, and returns them in catalog order
func (s *Session) syncPoints(ctx context.Context, pointsBefore, pointsAfter int) []game.Unlock {
	rankBefore := 0
	rankAfter := 0
	if s.deps.Leaderboard != nil {
		if rank, err := s.deps.Leaderboard.Rank(ctx, pointsBefore); err == nil {
			rankBefore = rank
		}
		s.deps.Leaderboard.RecordPoints(ctx, s.identity.FID, pointsAfter)
		if rank, err := s.deps.Leaderboard.Rank(ctx, pointsAfter); err == nil {
			rankAfter = rank
		}
		s.syncer.SetRank(rankAfter)
	}

	unlocks := game.DetectUnlocks(pointsBefore, pointsAfter, rankBefore, rankAfter)
	if s.deps.Audit != nil {
		for _, unlock := range unlocks {
			if err := s.deps.Audit.LogUnlock(ctx, &providers.UnlockLog{
				FID:        s.identity.FID,
				Username:   s.identity.Username,
				UnlockKind: string(unlock.Kind),
				UnlockID:   unlock.ID,
				UnlockName: unlock.Name,
				Timestamp:  s.deps.now(),
			}); err != nil {
				s.logger.Warn().Err(err).Msg("Failed to audit unlock")
			}
		}
	}
	return unlocks
}

func (s *Session) auditPurchase(ctx context.Context, itemType string, itemID, cost int) {
	if s.deps.Audit == nil {
		return
	}
	if err := s.deps.Audit.LogPurchase(ctx, &providers.PurchaseLog{
		FID:       s.identity.FID,
		Username:  s.identity.Username,
		ItemType:  itemType,
		ItemID:    itemID,
		Cost:      cost,
		Timestamp: s.deps.now(),
	}); err != nil {
		s.logger.Warn().Err(err).Str("item_type", itemType).Msg("Failed to audit purchase")
	}
}

// idleSince reports how long the session has been untouched
func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// Close stops the timers and flushes pending profile updates
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.regenTimer != nil {
		s.regenTimer.Stop()
	}
	if s.resolveTimer != nil {
		s.resolveTimer.Stop()
	}
	if s.resetTimer != nil {
		s.resetTimer.Stop()
	}
	s.mu.Unlock()

	s.syncer.Close()
}

func intRef(v int) *int { return &v }

func timeRef(v time.Time) *time.Time { return &v }
