package game

import "math"

// Reward calculators. All functions here are pure reads over a profile
// snapshot; none of them mutate state or clamp stored values.

// EffectiveSuccessRate returns the win probability in percent, capped at 95
func EffectiveSuccessRate(p *Profile) float64 {
	rate := p.BaseSuccessRate + p.EquippedCar().WinRateBonus
	return math.Min(rate, maxEffectiveRate)
}

// PointsMultiplier returns the total multiplier applied to base winnings
func PointsMultiplier(p *Profile) float64 {
	multiplier := 1.0
	for _, u := range p.Upgrades {
		if u.Effect.Kind == EffectPointsMultiplier {
			multiplier += u.Effect.Value * float64(u.Level)
		}
	}
	return multiplier + p.EquippedCar().PointsMultiplier
}

// WinBonus returns the flat bonus added to the base win payout
func WinBonus(p *Profile) int {
	bonus := 0
	for _, u := range p.Upgrades {
		if u.Effect.Kind == EffectWinBonus {
			bonus += int(u.Effect.Value) * u.Level
		}
	}
	return bonus
}

// ComboBonus returns the streak bonus for the given streak length.
// It pays nothing below a streak of 2 or without the combo upgrade.
func ComboBonus(p *Profile, streak int) int {
	for _, u := range p.Upgrades {
		if u.Effect.Kind != EffectComboBonus {
			continue
		}
		if u.Level <= 0 || streak < 2 {
			return 0
		}
		return int(math.Floor(u.Effect.Value * float64(u.Level) * float64(streak) / 100))
	}
	return 0
}

// RecoveryDiscount returns the energy regeneration discount in percent,
// clamped so the interval never collapses to zero
func RecoveryDiscount(p *Profile) float64 {
	discount := 0.0
	for _, u := range p.Upgrades {
		if u.Effect.Kind == EffectRecoverySpeed {
			discount += u.Effect.Value * float64(u.Level)
		}
	}
	return math.Min(math.Max(discount, 0), maxRecoveryDiscount)
}

// MaxEnergy returns the energy cap including tank upgrades
func MaxEnergy(p *Profile) int {
	max := baseMaxEnergy
	for _, u := range p.Upgrades {
		if u.Effect.Kind == EffectMaxEnergy {
			max += int(u.Effect.Value) * u.Level
		}
	}
	return max
}

// WinPoints returns the total points awarded for a correct prediction at
// the given streak, before any boost doubling
func WinPoints(p *Profile, streak int) int {
	base := float64(100+WinBonus(p)) * PointsMultiplier(p)
	return int(math.Floor(base)) + ComboBonus(p, streak)
}
