package pricefeed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Web3vDev/SolanaRacer/game"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type fakeSource struct {
	price decimal.Decimal
	err   error
}

func (f *fakeSource) FetchPrice(context.Context) (decimal.Decimal, error) {
	return f.price, f.err
}

func newTestService(source PriceSource) *Service {
	return NewService(ServiceConfig{
		Logger:          zerolog.Nop(),
		Source:          source,
		RNG:             game.NewSeededRNG(11),
		RefreshInterval: time.Hour,
		TickInterval:    time.Hour,
	})
}

func TestInitialFetchSetsBase(t *testing.T) {
	svc := newTestService(&fakeSource{price: decimal.NewFromFloat(187.42)})
	defer svc.Stop()

	if !svc.Current().Equal(decimal.NewFromFloat(187.42)) {
		t.Errorf("expected 187.42, got %s", svc.Current())
	}
}

func TestFailedFetchFallsBackToDefault(t *testing.T) {
	svc := newTestService(&fakeSource{err: errors.New("rate limited")})
	defer svc.Stop()

	if !svc.Current().Equal(DefaultBasePrice) {
		t.Errorf("expected default base price, got %s", svc.Current())
	}
}

func TestNonPositivePriceIgnored(t *testing.T) {
	svc := newTestService(&fakeSource{price: decimal.Zero})
	defer svc.Stop()

	if !svc.Current().Equal(DefaultBasePrice) {
		t.Errorf("expected default base price for zero fetch, got %s", svc.Current())
	}
}

func TestTickWobblesWithinBounds(t *testing.T) {
	base := decimal.NewFromInt(200)
	svc := newTestService(&fakeSource{price: base})
	defer svc.Stop()

	ch, cancel := svc.Listen(context.Background())
	defer cancel()

	low := base.Mul(decimal.NewFromFloat(1 - tickJitter))
	high := base.Mul(decimal.NewFromFloat(1 + tickJitter))

	for i := 0; i < 50; i++ {
		svc.tick()
		select {
		case tick := <-ch:
			if tick.Price.LessThan(low.Round(3)) || tick.Price.GreaterThan(high.Round(3)) {
				t.Fatalf("tick %s outside [%s, %s]", tick.Price, low, high)
			}
			if tick.Price.Exponent() < -3 {
				t.Fatalf("tick %s has more than 3 decimal places", tick.Price)
			}
		case <-time.After(time.Second):
			t.Fatal("expected a broadcast tick")
		}
	}
}

func TestSettlementPriceForcesDecimals(t *testing.T) {
	tests := []struct {
		name      string
		direction game.Direction
		correct   bool
		want      string
	}{
		{"correct pump lands high", game.DirectionUp, true, "187.999"},
		{"correct dump lands low", game.DirectionDown, true, "187.001"},
		{"wrong pump lands low", game.DirectionUp, false, "187.001"},
		{"wrong dump lands high", game.DirectionDown, false, "187.999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&fakeSource{price: decimal.NewFromFloat(187.42)})
			defer svc.Stop()

			got := svc.SettlementPrice(tt.direction, tt.correct)
			if got.String() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
			if !svc.Current().Equal(got) {
				t.Errorf("settlement must pin the current price, got %s", svc.Current())
			}
		})
	}
}
