package leaderboard

import (
	"context"
	"testing"
	"time"
)

func TestBroadcastReachesEveryListener(t *testing.T) {
	b := NewBroadcaster(4)

	first, cancelFirst := b.Listen(context.Background())
	defer cancelFirst()
	second, cancelSecond := b.Listen(context.Background())
	defer cancelSecond()

	sent := Snapshot{RefreshedAt: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)}
	b.Send(sent)

	for i, ch := range []<-chan Snapshot{first, second} {
		select {
		case got := <-ch:
			if !got.RefreshedAt.Equal(sent.RefreshedAt) {
				t.Errorf("listener %d received a different snapshot: %+v", i, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("listener %d never received the snapshot", i)
		}
	}
}

func TestCancelledListenerStopsReceiving(t *testing.T) {
	b := NewBroadcaster(4)

	ch, cancel := b.Listen(context.Background())
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected the listener channel to close after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("listener channel never closed after cancel")
	}

	// Sending after the listener left must not panic or block
	b.Send(Snapshot{})
}

func TestSlowListenerDoesNotBlockSend(t *testing.T) {
	b := NewBroadcaster(1)

	slow, cancelSlow := b.Listen(context.Background())
	defer cancelSlow()
	fresh, cancelFresh := b.Listen(context.Background())
	defer cancelFresh()

	// The slow listener never drains; its buffer fills after the first send
	// and later snapshots drop for it only
	for i := 0; i < 2; i++ {
		b.Send(Snapshot{})
		select {
		case <-fresh:
		case <-time.After(time.Second):
			t.Fatalf("healthy listener starved by a slow one, got %d of 2", i)
		}
	}

	// The slow listener still holds the one snapshot its buffer had room for
	select {
	case <-slow:
	case <-time.After(time.Second):
		t.Fatal("slow listener lost its buffered snapshot")
	}
}
