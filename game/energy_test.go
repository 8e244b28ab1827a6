package game

import (
	"testing"
	"time"
)

func TestRegenInterval(t *testing.T) {
	tests := []struct {
		name          string
		recoveryLevel int
		want          time.Duration
	}{
		{name: "no discount", recoveryLevel: 0, want: 10 * time.Minute},
		{name: "level 1 is 20 percent off", recoveryLevel: 1, want: 8 * time.Minute},
		{name: "level 3 is 60 percent off", recoveryLevel: 3, want: 4 * time.Minute},
		{name: "max level is capped", recoveryLevel: 5, want: 30 * time.Second}, // 95% clamp
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProfile()
			setUpgradeLevel(p, EffectRecoverySpeed, tt.recoveryLevel)

			got := RegenInterval(10*time.Minute, p)
			if got != tt.want {
				t.Errorf("expected interval %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNextTickIn(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	interval := 10 * time.Minute

	tests := []struct {
		name       string
		lastAction time.Time
		now        time.Time
		want       time.Duration
	}{
		{name: "never raced", lastAction: time.Time{}, now: base, want: interval},
		{name: "just raced", lastAction: base, now: base, want: interval},
		{name: "partway through", lastAction: base, now: base.Add(3 * time.Minute), want: 7 * time.Minute},
		{name: "second cycle", lastAction: base, now: base.Add(13 * time.Minute), want: 7 * time.Minute},
		{name: "many cycles later", lastAction: base, now: base.Add(95 * time.Minute), want: 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProfile()
			p.LastPrediction = tt.lastAction

			got := NextTickIn(tt.now, p, interval)
			if got != tt.want {
				t.Errorf("expected %v until next tick, got %v", tt.want, got)
			}
		})
	}
}

func TestRegenTick(t *testing.T) {
	p := newTestProfile()
	p.Energy.Remaining = 19

	if !RegenTick(p) {
		t.Fatal("expected tick to grant energy below cap")
	}
	if p.Energy.Remaining != 20 {
		t.Errorf("expected energy 20, got %d", p.Energy.Remaining)
	}

	// At cap, a tick grants nothing. No catch-up is ever applied.
	if RegenTick(p) {
		t.Error("tick at cap must not grant energy")
	}
	if p.Energy.Remaining != 20 {
		t.Errorf("energy changed at cap: %d", p.Energy.Remaining)
	}
}

func TestRegenTickRespectsTankUpgrade(t *testing.T) {
	p := newTestProfile()
	setUpgradeLevel(p, EffectMaxEnergy, 5)
	p.Energy.Remaining = 22

	if !RegenTick(p) {
		t.Fatal("expected tick below upgraded cap to grant energy")
	}
	if p.Energy.Remaining != 23 {
		t.Errorf("expected energy 23, got %d", p.Energy.Remaining)
	}
}

func TestSyncEnergyMax(t *testing.T) {
	p := newTestProfile()
	setUpgradeLevel(p, EffectMaxEnergy, 4)

	SyncEnergyMax(p)
	if p.Energy.Max != 24 {
		t.Errorf("expected max 24, got %d", p.Energy.Max)
	}
}
