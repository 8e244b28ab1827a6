package profilesync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Web3vDev/SolanaRacer/game"
	"github.com/Web3vDev/SolanaRacer/pkg/providers"
	"github.com/rs/zerolog"
)

type fakeStore struct {
	mu      sync.Mutex
	records map[int64]*providers.ProfileRecord
	updates []*providers.ProfileUpdate
	creates int
	failing bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[int64]*providers.ProfileRecord)}
}

func (f *fakeStore) Read(_ context.Context, fid int64) (*providers.ProfileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errors.New("store unavailable")
	}
	record, ok := f.records[fid]
	if !ok {
		return nil, providers.ErrNotFound
	}
	return record, nil
}

func (f *fakeStore) Create(_ context.Context, record *providers.ProfileRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.failing {
		return errors.New("store unavailable")
	}
	f.records[record.FID] = record
	return nil
}

func (f *fakeStore) Update(_ context.Context, _ int64, update *providers.ProfileUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("store unavailable")
	}
	f.updates = append(f.updates, update)
	return nil
}

func (f *fakeStore) ListTopByPoints(context.Context, int) ([]providers.LeaderboardEntry, error) {
	return nil, nil
}

func (f *fakeStore) CountWithPointsGreaterThan(context.Context, int) (int, error) {
	return 0, nil
}

func (f *fakeStore) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func (f *fakeStore) lastUpdate() *providers.ProfileUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.updates) == 0 {
		return nil
	}
	return f.updates[len(f.updates)-1]
}

func (f *fakeStore) setFailing(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = v
}

type hangingIdentity struct{}

func (hangingIdentity) GetContext(ctx context.Context) (*providers.IdentityContext, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (hangingIdentity) Ready(context.Context) error { return nil }

func testConfig(store *fakeStore, debounce time.Duration) Config {
	return Config{
		Logger:           zerolog.Nop(),
		Store:            store,
		RNG:              game.NewSeededRNG(3),
		Debounce:         debounce,
		BootstrapTimeout: 50 * time.Millisecond,
	}
}

func intPtr(v int) *int { return &v }

func TestBootstrapFallsBackOnHang(t *testing.T) {
	cfg := testConfig(newFakeStore(), time.Second)
	cfg.Identity = hangingIdentity{}

	start := time.Now()
	identity, err := Bootstrap(context.Background(), cfg)
	if err == nil {
		t.Error("expected a timeout error alongside the fallback")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("bootstrap did not respect timeout, took %v", elapsed)
	}
	if identity != DefaultIdentity() {
		t.Errorf("expected default identity, got %+v", identity)
	}
}

func TestLoadOrCreateFirstRun(t *testing.T) {
	store := newFakeStore()
	cfg := testConfig(store, time.Second)

	profile, created, err := LoadOrCreate(context.Background(), cfg, game.Identity{FID: 7, Username: "newbie"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected profile to be created")
	}
	if store.creates != 1 {
		t.Errorf("expected exactly one create call, got %d", store.creates)
	}
	if profile.Points != 0 || profile.Energy.Remaining != 10 || profile.Energy.Max != 20 {
		t.Errorf("unexpected default profile: points=%d energy=%d/%d",
			profile.Points, profile.Energy.Remaining, profile.Energy.Max)
	}
}

func TestLoadOrCreateRoundTrip(t *testing.T) {
	store := newFakeStore()
	cfg := testConfig(store, time.Second)
	identity := game.Identity{FID: 8, Username: "veteran"}

	first, _, err := LoadOrCreate(context.Background(), cfg, identity)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	first.Points = 1234

	record, err := RecordFromProfile(first, 0)
	if err != nil {
		t.Fatalf("record conversion failed: %v", err)
	}
	store.records[identity.FID] = record

	second, created, err := LoadOrCreate(context.Background(), cfg, identity)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if created {
		t.Error("reload must not create")
	}
	if second.Points != 1234 {
		t.Errorf("expected 1234 points after round trip, got %d", second.Points)
	}
	if second.BaseSuccessRate != first.BaseSuccessRate {
		t.Errorf("base success rate changed across round trip: %v -> %v",
			first.BaseSuccessRate, second.BaseSuccessRate)
	}
	if len(second.Upgrades) != 5 || len(second.Cars) != 11 {
		t.Errorf("collections lost in round trip: %d upgrades, %d cars",
			len(second.Upgrades), len(second.Cars))
	}
}

func TestLoadOrCreateDegradesOnStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.setFailing(true)
	cfg := testConfig(store, time.Second)

	profile, created, err := LoadOrCreate(context.Background(), cfg, game.Identity{FID: 9})
	if err == nil {
		t.Error("expected the store error to surface")
	}
	if created {
		t.Error("failed read must not report created")
	}
	if profile == nil || profile.Energy.Max != 20 {
		t.Fatal("expected a playable default profile despite the failure")
	}
}

func TestEnqueueDebouncesAndCoalesces(t *testing.T) {
	store := newFakeStore()
	syncer := NewSyncer(testConfig(store, 30*time.Millisecond), 7)
	defer syncer.Close()

	syncer.Enqueue(providers.ProfileUpdate{Points: intPtr(100)})
	syncer.Enqueue(providers.ProfileUpdate{Points: intPtr(250)})
	syncer.Enqueue(providers.ProfileUpdate{WinStreak: intPtr(2)})

	if store.updateCount() != 0 {
		t.Fatal("flush fired before the debounce window")
	}

	time.Sleep(100 * time.Millisecond)

	if got := store.updateCount(); got != 1 {
		t.Fatalf("expected one coalesced flush, got %d", got)
	}
	update := store.lastUpdate()
	if update.Points == nil || *update.Points != 250 {
		t.Errorf("expected last-write-wins points 250, got %v", update.Points)
	}
	if update.WinStreak == nil || *update.WinStreak != 2 {
		t.Errorf("expected win streak 2, got %v", update.WinStreak)
	}
}

func TestFlushRecomputesDerivedTiers(t *testing.T) {
	store := newFakeStore()
	syncer := NewSyncer(testConfig(store, 20*time.Millisecond), 7)
	defer syncer.Close()

	syncer.SetRank(5)
	syncer.Enqueue(providers.ProfileUpdate{Points: intPtr(1200)})
	time.Sleep(80 * time.Millisecond)

	update := store.lastUpdate()
	if update == nil {
		t.Fatal("expected a flush")
	}
	if update.Level == nil || *update.Level != 4 {
		t.Errorf("expected level 4 at 1200 points, got %v", update.Level)
	}
	// points badges 1,2,3 plus top-10/50/100 at rank 5
	if len(update.BadgeIDs) != 6 {
		t.Errorf("expected 6 badges, got %v", update.BadgeIDs)
	}
	if len(update.FrameIDs) != 3 {
		t.Errorf("expected 3 frames at 1200 points, got %v", update.FrameIDs)
	}
}

func TestFailedFlushMergesBackAndRetries(t *testing.T) {
	store := newFakeStore()
	store.setFailing(true)
	syncer := NewSyncer(testConfig(store, 20*time.Millisecond), 7)

	syncer.Enqueue(providers.ProfileUpdate{Points: intPtr(100)})
	time.Sleep(60 * time.Millisecond)

	if store.updateCount() != 0 {
		t.Fatal("failing store must not record updates")
	}

	// A newer value enqueued after the failure wins over the merged-back one
	syncer.Enqueue(providers.ProfileUpdate{Points: intPtr(300)})
	store.setFailing(false)
	time.Sleep(200 * time.Millisecond)

	update := store.lastUpdate()
	if update == nil {
		t.Fatal("expected a retried flush")
	}
	if update.Points == nil || *update.Points != 300 {
		t.Errorf("expected newest points 300 after retry, got %v", update.Points)
	}
	syncer.Close()
}

func TestForceUpdatePropagatesErrors(t *testing.T) {
	store := newFakeStore()
	store.setFailing(true)
	syncer := NewSyncer(testConfig(store, time.Hour), 7)

	syncer.Enqueue(providers.ProfileUpdate{Points: intPtr(50)})
	if err := syncer.ForceUpdate(context.Background()); err == nil {
		t.Fatal("expected force update to surface the store error")
	}

	store.setFailing(false)
	if err := syncer.ForceUpdate(context.Background()); err != nil {
		t.Fatalf("expected retried force update to succeed, got %v", err)
	}
	update := store.lastUpdate()
	if update.Points == nil || *update.Points != 50 {
		t.Errorf("failed force update lost its fields: %v", update.Points)
	}
}

// slowStore stalls every update and records how many ran at once
type slowStore struct {
	*fakeStore
	cmu           sync.Mutex
	delay         time.Duration
	inFlight      int
	maxConcurrent int
}

func (s *slowStore) Update(ctx context.Context, fid int64, update *providers.ProfileUpdate) error {
	s.cmu.Lock()
	s.inFlight++
	if s.inFlight > s.maxConcurrent {
		s.maxConcurrent = s.inFlight
	}
	s.cmu.Unlock()

	time.Sleep(s.delay)
	err := s.fakeStore.Update(ctx, fid, update)

	s.cmu.Lock()
	s.inFlight--
	s.cmu.Unlock()
	return err
}

func (s *slowStore) peakConcurrency() int {
	s.cmu.Lock()
	defer s.cmu.Unlock()
	return s.maxConcurrent
}

func TestForceUpdateWaitsForInFlightFlush(t *testing.T) {
	store := &slowStore{fakeStore: newFakeStore(), delay: 60 * time.Millisecond}
	cfg := testConfig(store.fakeStore, 10*time.Millisecond)
	cfg.Store = store
	syncer := NewSyncer(cfg, 7)
	defer syncer.Close()

	syncer.Enqueue(providers.ProfileUpdate{Points: intPtr(100)})
	// Let the debounce flush start and stall inside the slow store
	time.Sleep(30 * time.Millisecond)

	syncer.Enqueue(providers.ProfileUpdate{WinStreak: intPtr(3)})
	if err := syncer.ForceUpdate(context.Background()); err != nil {
		t.Fatalf("force update failed: %v", err)
	}

	if got := store.peakConcurrency(); got != 1 {
		t.Errorf("expected a single in-flight store update, got %d", got)
	}
	if got := store.updateCount(); got != 2 {
		t.Errorf("expected both flushes to land, got %d", got)
	}
	update := store.lastUpdate()
	if update.WinStreak == nil || *update.WinStreak != 3 {
		t.Errorf("forced flush lost its fields: %+v", update)
	}
}

func TestForceUpdateWithNothingPending(t *testing.T) {
	store := newFakeStore()
	syncer := NewSyncer(testConfig(store, time.Hour), 7)

	if err := syncer.ForceUpdate(context.Background()); err != nil {
		t.Fatalf("expected nil for empty flush, got %v", err)
	}
	if store.updateCount() != 0 {
		t.Error("empty force update must not call the store")
	}
}

func TestCloseFlushesBestEffort(t *testing.T) {
	store := newFakeStore()
	syncer := NewSyncer(testConfig(store, time.Hour), 7)

	syncer.Enqueue(providers.ProfileUpdate{Points: intPtr(42)})
	syncer.Close()

	if store.updateCount() != 1 {
		t.Fatalf("expected close to flush pending update, got %d flushes", store.updateCount())
	}

	// Enqueue after close is dropped
	syncer.Enqueue(providers.ProfileUpdate{Points: intPtr(99)})
	time.Sleep(20 * time.Millisecond)
	if store.updateCount() != 1 {
		t.Error("enqueue after close must be ignored")
	}
}
