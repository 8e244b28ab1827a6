package pricefeed

import (
	"context"
	"sync"
)

// Broadcaster is a minimal pub/sub for price ticks. Every listener gets its
// own buffered channel, so one slow client never starves another.
type Broadcaster struct {
	mu     sync.Mutex
	buffer int
	nextID int
	subs   map[int]chan Tick
}

// NewBroadcaster creates a broadcaster; buffer sizes each listener channel.
func NewBroadcaster(buffer int) *Broadcaster {
	return &Broadcaster{
		buffer: buffer,
		subs:   make(map[int]chan Tick),
	}
}

// Send delivers the tick to every listener (non-blocking with drop on full
// buffer per listener).
func (b *Broadcaster) Send(tick Tick) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- tick:
		default:
			// drop for slow listeners; keep simple
		}
	}
}

// Listen registers a listener and returns its channel plus a cancel function
// that unregisters it and closes the channel.
func (b *Broadcaster) Listen(ctx context.Context) (<-chan Tick, context.CancelFunc) {
	listenerCtx, cancel := context.WithCancel(ctx)
	ch := make(chan Tick, b.buffer)

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
