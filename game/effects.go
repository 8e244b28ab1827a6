package game

import "math"

// EffectKind identifies what an upgrade modifies
type EffectKind int

const (
	EffectWinBonus EffectKind = iota
	EffectPointsMultiplier
	EffectRecoverySpeed
	EffectMaxEnergy
	EffectComboBonus
)

// String returns the wire name of the effect kind
func (k EffectKind) String() string {
	switch k {
	case EffectWinBonus:
		return "win_bonus"
	case EffectPointsMultiplier:
		return "points_multiplier"
	case EffectRecoverySpeed:
		return "recovery_speed"
	case EffectMaxEnergy:
		return "max_energy"
	case EffectComboBonus:
		return "combo_bonus"
	default:
		return "unknown"
	}
}

// ParseEffectKind converts a wire name back into an EffectKind
func ParseEffectKind(s string) (EffectKind, bool) {
	switch s {
	case "win_bonus":
		return EffectWinBonus, true
	case "points_multiplier":
		return EffectPointsMultiplier, true
	case "recovery_speed":
		return EffectRecoverySpeed, true
	case "max_energy":
		return EffectMaxEnergy, true
	case "combo_bonus":
		return EffectComboBonus, true
	default:
		return 0, false
	}
}

// MarshalText implements encoding.TextMarshaler
func (k EffectKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *EffectKind) UnmarshalText(text []byte) error {
	if parsed, ok := ParseEffectKind(string(text)); ok {
		*k = parsed
	}
	return nil
}

// Effect is a single upgrade effect with its per-level magnitude
type Effect struct {
	Kind  EffectKind `json:"kind"`
	Value float64    `json:"value"`
}

// Upgrade is a purchasable, leveled profile improvement
type Upgrade struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	BaseCost    int    `json:"base_cost"`
	Level       int    `json:"level"`
	MaxLevel    int    `json:"max_level"`
	Effect      Effect `json:"effect"`
}

// NextCost returns the price of the next level. Cost grows geometrically
// with the current level.
func (u Upgrade) NextCost() int {
	return int(math.Floor(float64(u.BaseCost) * math.Pow(1.5, float64(u.Level))))
}

// Maxed reports whether the upgrade cannot be leveled further
func (u Upgrade) Maxed() bool {
	return u.Level >= u.MaxLevel
}
