package game

import "time"

// Energy regeneration. The interval is anchored to the last prediction,
// so ticks land at fixed offsets from it rather than drifting with
// server restarts.

// RegenInterval returns the effective regeneration interval after
// applying the recovery discount
func RegenInterval(base time.Duration, p *Profile) time.Duration {
	discount := RecoveryDiscount(p)
	return time.Duration(float64(base) * (100 - discount) / 100)
}

// NextTickIn returns how long until the next regeneration tick. A profile
// that never raced regenerates on the plain interval from now.
func NextTickIn(now time.Time, p *Profile, interval time.Duration) time.Duration {
	if interval <= 0 {
		return 0
	}
	if p.LastPrediction.IsZero() {
		return interval
	}
	since := now.Sub(p.LastPrediction)
	if since < 0 {
		since = 0
	}
	return interval - (since % interval)
}

// RegenTick grants a single unit of energy if the profile is below its
// cap. Missed intervals are not back-filled.
func RegenTick(p *Profile) bool {
	max := MaxEnergy(p)
	if p.Energy.Remaining >= max {
		return false
	}
	p.Energy.Remaining++
	return true
}

// SyncEnergyMax reconciles the stored cap with the tank upgrades. The
// remaining amount is never clipped down; it drains through play.
func SyncEnergyMax(p *Profile) {
	p.Energy.Max = MaxEnergy(p)
}
