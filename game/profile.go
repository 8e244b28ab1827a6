package game

import (
	"math"
	"time"
)

// Identity carries the external identity fields attached to a profile
type Identity struct {
	FID         int64  `json:"fid"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// Energy tracks how many races remain before the regenerator must catch up
type Energy struct {
	Remaining int `json:"remaining"`
	Max       int `json:"max"`
}

// Boost tracks a temporary point-doubling effect
type Boost struct {
	Active bool      `json:"active"`
	EndsAt time.Time `json:"ends_at,omitempty"`
}

// ActiveAt reports whether the boost applies at the given instant
func (b Boost) ActiveAt(now time.Time) bool {
	return b.Active && now.Before(b.EndsAt)
}

// Car is a purchasable racer with passive bonuses
type Car struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	Team             string  `json:"team"`
	Price            int     `json:"price"`
	Rarity           string  `json:"rarity"`
	WinRateBonus     float64 `json:"win_rate_bonus"`
	PointsMultiplier float64 `json:"points_multiplier"`
	Owned            bool    `json:"owned"`
	Equipped         bool    `json:"equipped"`
}

// ItemKind identifies a consumable's behavior
type ItemKind string

const (
	ItemEnergyRestore ItemKind = "energy_restore"
	ItemDoublePoints  ItemKind = "double_points"
)

// Item is a consumable inventory entry
type Item struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Kind        ItemKind `json:"kind"`
	Quantity    int      `json:"quantity"`
}

// TaskState tracks a single task's completion for one profile
type TaskState struct {
	CompletedAt time.Time `json:"completed_at"`
	Count       int       `json:"count"`
}

// Profile is the canonical per-player game state. One session owns each
// profile; everything else reads snapshots.
type Profile struct {
	Identity

	Points          int       `json:"points"`
	WinStreak       int       `json:"win_streak"`
	TotalRaces      int       `json:"total_races"`
	Energy          Energy    `json:"energy"`
	BaseSuccessRate float64   `json:"base_success_rate"`
	LastPrediction  time.Time `json:"last_prediction"`
	Boost           Boost     `json:"boost"`

	Upgrades []Upgrade         `json:"upgrades"`
	Cars     []Car             `json:"cars"`
	Items    []Item            `json:"items"`
	Tasks    map[int]TaskState `json:"tasks"`
}

const (
	baseMaxEnergy        = 20
	defaultStartEnergy   = 10
	minBaseSuccessRate   = 60
	successRateSpread    = 11 // integer rates 60..70
	maxEffectiveRate     = 95
	maxRecoveryDiscount  = 95
	defaultBoostDuration = time.Hour
)

// NewDefaultProfile creates the starting profile for a first-time player.
// The base success rate is rolled once at creation and never re-rolled.
func NewDefaultProfile(identity Identity, rng RandomSource) *Profile {
	rate := minBaseSuccessRate + math.Floor(rng.Float64()*successRateSpread)

	return &Profile{
		Identity:        identity,
		Points:          0,
		WinStreak:       0,
		TotalRaces:      0,
		Energy:          Energy{Remaining: defaultStartEnergy, Max: baseMaxEnergy},
		BaseSuccessRate: rate,
		Upgrades:        DefaultUpgrades(),
		Cars:            CarCatalog(),
		Items:           DefaultItems(),
		Tasks:           make(map[int]TaskState),
	}
}

// EquippedCar returns the currently equipped car. The starter car backstops
// a profile that somehow has nothing equipped.
func (p *Profile) EquippedCar() Car {
	for _, car := range p.Cars {
		if car.Equipped {
			return car
		}
	}
	return p.Cars[0]
}

// UpgradeLevel returns the level of the first upgrade with the given effect kind
func (p *Profile) UpgradeLevel(kind EffectKind) int {
	for _, u := range p.Upgrades {
		if u.Effect.Kind == kind {
			return u.Level
		}
	}
	return 0
}

// Clone returns a deep copy for read-only consumers
func (p *Profile) Clone() *Profile {
	cp := *p
	cp.Upgrades = append([]Upgrade(nil), p.Upgrades...)
	cp.Cars = append([]Car(nil), p.Cars...)
	cp.Items = append([]Item(nil), p.Items...)
	cp.Tasks = make(map[int]TaskState, len(p.Tasks))
	for id, st := range p.Tasks {
		cp.Tasks[id] = st
	}
	return &cp
}
