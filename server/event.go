package server

import (
	"context"
	"sync"

	"github.com/Web3vDev/SolanaRacer/game"
	"github.com/Web3vDev/SolanaRacer/pkg/providers"
	"github.com/shopspring/decimal"
)

const (
	EventTypeConnected   = "connected"
	EventTypePrice       = "price"
	EventTypeSettled     = "settled"
	EventTypeEnergy      = "energy"
	EventTypeLeaderboard = "leaderboard"
	EventTypeHeartbeat   = "heartbeat"
)

// StreamEvent is one message pushed over the race stream. Only the fields
// matching Type are populated.
type StreamEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`

	Price *decimal.Decimal `json:"price,omitempty"`

	Round      *game.Round       `json:"round,omitempty"`
	Result     *game.RoundResult `json:"result,omitempty"`
	FinalPrice string            `json:"final_price,omitempty"`
	Unlock     *game.Unlock      `json:"unlock,omitempty"`

	Energy         *game.Energy `json:"energy,omitempty"`
	NextEnergyTick int64        `json:"next_energy_tick,omitempty"`

	Leaderboard []providers.LeaderboardEntry `json:"leaderboard,omitempty"`
}

// EventBroadcaster is a minimal pub/sub for session events. Every listener
// gets its own buffered channel, so one slow client never starves another.
type EventBroadcaster struct {
	mu     sync.Mutex
	buffer int
	nextID int
	subs   map[int]chan StreamEvent
}

// NewEventBroadcaster creates a broadcaster; buffer sizes each listener channel.
func NewEventBroadcaster(buffer int) *EventBroadcaster {
	return &EventBroadcaster{
		buffer: buffer,
		subs:   make(map[int]chan StreamEvent),
	}
}

// Send delivers the event to every listener (non-blocking with drop on full
// buffer per listener).
func (b *EventBroadcaster) Send(event StreamEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
			// drop for slow listeners; keep simple
		}
	}
}

// Listen registers a listener and returns its channel plus a cancel function
// that unregisters it and closes the channel.
func (b *EventBroadcaster) Listen(ctx context.Context) (<-chan StreamEvent, context.CancelFunc) {
	listenerCtx, cancel := context.WithCancel(ctx)
	ch := make(chan StreamEvent, b.buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-listenerCtx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		close(ch)
	}()

	return ch, cancel
}
