package server

import (
	"context"
	"sync"
	"time"

	"github.com/Web3vDev/SolanaRacer/game"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const sweepInterval = time.Minute

// SessionManager hands out one session per player and evicts sessions
// that sit idle past the configured TTL
type SessionManager struct {
	mu       sync.Mutex
	logger   zerolog.Logger
	deps     Deps
	sessions map[int64]*Session
	ttl      time.Duration
	ticker   *time.Ticker
	stopChan chan struct{}
}

// NewSessionManager creates a session manager and starts its sweep loop
func NewSessionManager(deps Deps) *SessionManager {
	ttl := deps.Config.Game.SessionIdleTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	m := &SessionManager{
		logger:   deps.Logger.With().Str("component", "session-manager").Logger(),
		deps:     deps,
		sessions: make(map[int64]*Session),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}
	m.ticker = time.NewTicker(sweepInterval)
	go m.loop()
	return m
}

// Acquire returns the player's session, creating it on first touch
func (m *SessionManager) Acquire(ctx context.Context, identity game.Identity) *Session {
	m.mu.Lock()
	session, ok := m.sessions[identity.FID]
	if ok {
		m.mu.Unlock()
		session.Touch()
		return session
	}
	m.mu.Unlock()

	// Build outside the manager lock; profile loading may hit the network
	session = newSession(ctx, m.deps, identity)

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[identity.FID]; ok {
		// Lost the race to a concurrent request
		go session.Close()
		existing.Touch()
		return existing
	}
	m.sessions[identity.FID] = session
	m.logger.Debug().Int64("fid", identity.FID).Int("active", len(m.sessions)).Msg("Session created")
	return session
}

// Peek returns the session if one is live, without creating it
func (m *SessionManager) Peek(fid int64) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[fid]
	return session, ok
}

// ActiveCount returns the number of live sessions
func (m *SessionManager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops the sweep loop and closes every session
func (m *SessionManager) Close() {
	m.ticker.Stop()
	close(m.stopChan)

	m.mu.Lock()
	sessions := lo.Values(m.sessions)
	m.sessions = make(map[int64]*Session)
	m.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}

func (m *SessionManager) loop() {
	for {
		select {
		case <-m.stopChan:
			return
		case <-m.ticker.C:
			m.sweep()
		}
	}
}

// sweep closes sessions idle past the TTL. An in-flight round keeps its
// session alive until the next pass.
func (m *SessionManager) sweep() {
	now := m.deps.now()

	m.mu.Lock()
	expired := make([]*Session, 0)
	for fid, session := range m.sessions {
		if session.idleSince(now) < m.ttl {
			continue
		}
		if session.Round().State == game.RoundAwaitingResolution {
			continue
		}
		delete(m.sessions, fid)
		expired = append(expired, session)
	}
	remaining := len(m.sessions)
	m.mu.Unlock()

	for _, session := range expired {
		session.Close()
	}
	if len(expired) > 0 {
		m.logger.Info().Int("evicted", len(expired)).Int("active", remaining).Msg("Swept idle sessions")
	}
}
