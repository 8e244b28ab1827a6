package game

import (
	"testing"
)

// forcedRNG always returns the same value, letting tests pin a round outcome
type forcedRNG struct{ v float64 }

func (f forcedRNG) Float64() float64 { return f.v }

func newTestProfile() *Profile {
	return NewDefaultProfile(Identity{FID: 42, Username: "tester"}, forcedRNG{v: 0.5})
}

func setUpgradeLevel(p *Profile, kind EffectKind, level int) {
	for i := range p.Upgrades {
		if p.Upgrades[i].Effect.Kind == kind {
			p.Upgrades[i].Level = level
		}
	}
}

func equipCarByID(t *testing.T, p *Profile, id int) {
	t.Helper()
	for i := range p.Cars {
		p.Cars[i].Owned = p.Cars[i].Owned || p.Cars[i].ID == id
		p.Cars[i].Equipped = false
	}
	if err := EquipCar(p, id); err != nil {
		t.Fatalf("EquipCar(%d): %v", id, err)
	}
}

func TestEffectiveSuccessRateCap(t *testing.T) {
	tests := []struct {
		name     string
		baseRate float64
		carID    int
		want     float64
	}{
		{name: "base only", baseRate: 65, carID: 0, want: 65},
		{name: "with car bonus", baseRate: 65, carID: 7, want: 75},
		{name: "capped at 95", baseRate: 90, carID: 10, want: 95},
		{name: "exactly at cap", baseRate: 75, carID: 10, want: 95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProfile()
			p.BaseSuccessRate = tt.baseRate
			equipCarByID(t, p, tt.carID)

			got := EffectiveSuccessRate(p)
			if got != tt.want {
				t.Errorf("expected rate %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPointsMultiplier(t *testing.T) {
	tests := []struct {
		name      string
		multLevel int
		carID     int
		want      float64
	}{
		{name: "no upgrades starter car", multLevel: 0, carID: 0, want: 1.0},
		{name: "multiplier level 3", multLevel: 3, carID: 0, want: 1.3},
		{name: "max multiplier with red bull", multLevel: 5, carID: 10, want: 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProfile()
			setUpgradeLevel(p, EffectPointsMultiplier, tt.multLevel)
			equipCarByID(t, p, tt.carID)

			got := PointsMultiplier(p)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("expected multiplier %v, got %v", tt.want, got)
			}
		})
	}
}

func TestComboBonus(t *testing.T) {
	tests := []struct {
		name   string
		level  int
		streak int
		want   int
	}{
		{name: "no upgrade no bonus", level: 0, streak: 5, want: 0},
		{name: "streak below two", level: 3, streak: 1, want: 0},
		{name: "streak of two", level: 1, streak: 2, want: 0},  // floor(15*1*2/100)
		{name: "level 3 streak 4", level: 3, streak: 4, want: 1}, // floor(15*3*4/100)
		{name: "max level long streak", level: 5, streak: 10, want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProfile()
			setUpgradeLevel(p, EffectComboBonus, tt.level)

			got := ComboBonus(p, tt.streak)
			if got != tt.want {
				t.Errorf("expected combo bonus %d, got %d", tt.want, got)
			}
		})
	}
}

func TestWinPoints(t *testing.T) {
	tests := []struct {
		name       string
		winLevel   int
		multLevel  int
		comboLevel int
		streak     int
		carID      int
		want       int
	}{
		{name: "bare profile", want: 100},
		{name: "win bonus only", winLevel: 4, want: 200},
		{name: "multiplier applied to bonus", winLevel: 2, multLevel: 2, want: 180}, // floor(150*1.2)
		{name: "combo added after floor", winLevel: 0, comboLevel: 5, streak: 4, want: 103},
		{name: "car multiplier counts", carID: 8, want: 130}, // floor(100*1.3)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProfile()
			setUpgradeLevel(p, EffectWinBonus, tt.winLevel)
			setUpgradeLevel(p, EffectPointsMultiplier, tt.multLevel)
			setUpgradeLevel(p, EffectComboBonus, tt.comboLevel)
			if tt.carID != 0 {
				equipCarByID(t, p, tt.carID)
			}

			got := WinPoints(p, tt.streak)
			if got != tt.want {
				t.Errorf("expected %d points, got %d", tt.want, got)
			}
		})
	}
}

func TestMaxEnergyAndDiscount(t *testing.T) {
	p := newTestProfile()
	if got := MaxEnergy(p); got != 20 {
		t.Fatalf("expected base max energy 20, got %d", got)
	}
	if got := RecoveryDiscount(p); got != 0 {
		t.Fatalf("expected zero discount, got %v", got)
	}

	setUpgradeLevel(p, EffectMaxEnergy, 7)
	setUpgradeLevel(p, EffectRecoverySpeed, 3)

	if got := MaxEnergy(p); got != 27 {
		t.Errorf("expected max energy 27, got %d", got)
	}
	if got := RecoveryDiscount(p); got != 60 {
		t.Errorf("expected discount 60, got %v", got)
	}
}

func TestRecoveryDiscountClamped(t *testing.T) {
	p := newTestProfile()
	for i := range p.Upgrades {
		if p.Upgrades[i].Effect.Kind == EffectRecoverySpeed {
			p.Upgrades[i].Level = 10 // beyond max level, 200% raw
		}
	}
	if got := RecoveryDiscount(p); got != 95 {
		t.Errorf("expected discount clamped to 95, got %v", got)
	}
}

func TestDefaultProfile(t *testing.T) {
	p := NewDefaultProfile(Identity{FID: 1}, NewSeededRNG(7))

	if p.Points != 0 {
		t.Errorf("expected 0 starting points, got %d", p.Points)
	}
	if p.Energy.Remaining != 10 || p.Energy.Max != 20 {
		t.Errorf("expected energy 10/20, got %d/%d", p.Energy.Remaining, p.Energy.Max)
	}
	if p.BaseSuccessRate < 60 || p.BaseSuccessRate > 70 {
		t.Errorf("base success rate %v outside [60,70]", p.BaseSuccessRate)
	}
	if p.BaseSuccessRate != float64(int(p.BaseSuccessRate)) {
		t.Errorf("base success rate %v is not an integer", p.BaseSuccessRate)
	}

	equipped := 0
	for _, car := range p.Cars {
		if car.Equipped {
			equipped++
			if car.ID != 0 {
				t.Errorf("expected starter car equipped, got id %d", car.ID)
			}
		}
	}
	if equipped != 1 {
		t.Errorf("expected exactly one equipped car, got %d", equipped)
	}

	if len(p.Upgrades) != 5 {
		t.Errorf("expected 5 upgrades, got %d", len(p.Upgrades))
	}
	for _, u := range p.Upgrades {
		if u.Level != 0 {
			t.Errorf("upgrade %q starts at level %d, want 0", u.Name, u.Level)
		}
	}
}
