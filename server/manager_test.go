package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Web3vDev/SolanaRacer/game"
)

type stubClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func testManager(t *testing.T) (*SessionManager, *stubClock) {
	t.Helper()
	deps, _, _ := testDeps(t, forcedRNG{0})
	clock := &stubClock{t: time.Now()}
	deps.Clock = clock.Now

	m := NewSessionManager(deps)
	t.Cleanup(m.Close)
	return m, clock
}

func TestAcquireReturnsSameSession(t *testing.T) {
	m, _ := testManager(t)

	first := m.Acquire(context.Background(), game.Identity{FID: 1})
	second := m.Acquire(context.Background(), game.Identity{FID: 1})
	if first != second {
		t.Fatal("expected the same session for the same player")
	}
	if m.ActiveCount() != 1 {
		t.Errorf("expected 1 active session, got %d", m.ActiveCount())
	}

	other := m.Acquire(context.Background(), game.Identity{FID: 2})
	if other == first {
		t.Fatal("different players must not share a session")
	}
	if m.ActiveCount() != 2 {
		t.Errorf("expected 2 active sessions, got %d", m.ActiveCount())
	}
}

func TestPeekDoesNotCreate(t *testing.T) {
	m, _ := testManager(t)

	if _, ok := m.Peek(42); ok {
		t.Fatal("Peek must not report a session that was never acquired")
	}
	if m.ActiveCount() != 0 {
		t.Errorf("Peek must not create sessions, got %d active", m.ActiveCount())
	}

	created := m.Acquire(context.Background(), game.Identity{FID: 42})
	peeked, ok := m.Peek(42)
	if !ok || peeked != created {
		t.Fatal("Peek should return the live session")
	}
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	m, clock := testManager(t)

	m.Acquire(context.Background(), game.Identity{FID: 3})
	clock.Advance(31 * time.Minute)
	m.sweep()

	if m.ActiveCount() != 0 {
		t.Errorf("expected idle session evicted, got %d active", m.ActiveCount())
	}
	if _, ok := m.Peek(3); ok {
		t.Error("evicted session still visible via Peek")
	}
}

func TestSweepKeepsFreshSessions(t *testing.T) {
	m, clock := testManager(t)

	m.Acquire(context.Background(), game.Identity{FID: 4})
	clock.Advance(10 * time.Minute)
	m.sweep()

	if m.ActiveCount() != 1 {
		t.Errorf("fresh session must survive the sweep, got %d active", m.ActiveCount())
	}
}

func TestSweepSkipsInFlightRounds(t *testing.T) {
	m, clock := testManager(t)
	// Keep the round in flight while the clock jumps past the TTL
	m.deps.Config.Game.RoundWindow = time.Hour

	session := m.Acquire(context.Background(), game.Identity{FID: 5})
	if _, err := session.Predict(game.DirectionUp); err != nil {
		t.Fatalf("Predict: %v", err)
	}

	clock.Advance(31 * time.Minute)
	m.sweep()

	if m.ActiveCount() != 1 {
		t.Errorf("session with an in-flight round must survive the sweep, got %d active", m.ActiveCount())
	}
}
