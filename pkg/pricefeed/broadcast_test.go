package pricefeed

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTickReachesEveryListener(t *testing.T) {
	b := NewBroadcaster(4)

	first, cancelFirst := b.Listen(context.Background())
	defer cancelFirst()
	second, cancelSecond := b.Listen(context.Background())
	defer cancelSecond()

	sent := Tick{Price: decimal.NewFromFloat(187.42), At: time.Now()}
	b.Send(sent)

	for i, ch := range []<-chan Tick{first, second} {
		select {
		case got := <-ch:
			if !got.Price.Equal(sent.Price) {
				t.Errorf("listener %d received price %s, want %s", i, got.Price, sent.Price)
			}
		case <-time.After(time.Second):
			t.Fatalf("listener %d never received the tick", i)
		}
	}
}

func TestCancelledTickListenerUnregisters(t *testing.T) {
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

	b.Send(Tick{Price: decimal.NewFromInt(1)})
}
