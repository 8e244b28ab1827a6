package game

import "github.com/samber/lo"

// DefaultUpgrades returns the five purchasable upgrades at level 0
func DefaultUpgrades() []Upgrade {
	return []Upgrade{
		{
			ID:          1,
			Name:        "Win Bonus",
			Description: "Extra points when winning",
			BaseCost:    1000,
			Level:       0,
			MaxLevel:    10,
			Effect:      Effect{Kind: EffectWinBonus, Value: 25},
		},
		{
			ID:          2,
			Name:        "Point Multiplier",
			Description: "Increase points percentage",
			BaseCost:    2000,
			Level:       0,
			MaxLevel:    5,
			Effect:      Effect{Kind: EffectPointsMultiplier, Value: 0.1},
		},
		{
			ID:          3,
			Name:        "Recovery Speed",
			Description: "Faster energy recovery",
			BaseCost:    1500,
			Level:       0,
			MaxLevel:    5,
			Effect:      Effect{Kind: EffectRecoverySpeed, Value: 20},
		},
		{
			ID:          4,
			Name:        "Energy Tank",
			Description: "Increase maximum energy",
			BaseCost:    2500,
			Level:       0,
			MaxLevel:    10,
			Effect:      Effect{Kind: EffectMaxEnergy, Value: 1},
		},
		{
			ID:          5,
			Name:        "Combo Master",
			Description: "Bonus points for win streaks",
			BaseCost:    1800,
			Level:       0,
			MaxLevel:    5,
			Effect:      Effect{Kind: EffectComboBonus, Value: 15},
		},
	}
}

// CarCatalog returns the full car roster. Only the starter is owned and equipped.
func CarCatalog() []Car {
	return []Car{
		{ID: 0, Name: "Basic Racer", Team: "Starter", Price: 0, Rarity: "common", WinRateBonus: 0, PointsMultiplier: 0, Owned: true, Equipped: true},
		{ID: 1, Name: "Williams FW46", Team: "Williams Racing", Price: 2500, Rarity: "common", WinRateBonus: 2, PointsMultiplier: 0.05},
		{ID: 2, Name: "Haas VF-24", Team: "MoneyGram Haas F1", Price: 3000, Rarity: "common", WinRateBonus: 3, PointsMultiplier: 0.08},
		{ID: 3, Name: "Kick Sauber C44", Team: "Stake F1 Team", Price: 4000, Rarity: "rare", WinRateBonus: 4, PointsMultiplier: 0.12},
		{ID: 4, Name: "Alpine A524", Team: "BWT Alpine F1", Price: 5500, Rarity: "rare", WinRateBonus: 5, PointsMultiplier: 0.15},
		{ID: 5, Name: "VCARB 01", Team: "Visa Cash App RB", Price: 7000, Rarity: "rare", WinRateBonus: 6, PointsMultiplier: 0.18},
		{ID: 6, Name: "Aston Martin AMR24", Team: "Aston Martin Aramco", Price: 9000, Rarity: "epic", WinRateBonus: 8, PointsMultiplier: 0.22},
		{ID: 7, Name: "Mercedes W15", Team: "Mercedes-AMG Petronas", Price: 12000, Rarity: "epic", WinRateBonus: 10, PointsMultiplier: 0.25},
		{ID: 8, Name: "Ferrari SF-24", Team: "Scuderia Ferrari", Price: 15000, Rarity: "legendary", WinRateBonus: 12, PointsMultiplier: 0.3},
		{ID: 9, Name: "McLaren MCL38", Team: "McLaren F1 Team", Price: 18000, Rarity: "legendary", WinRateBonus: 15, PointsMultiplier: 0.35},
		{ID: 10, Name: "Red Bull RB20", Team: "Oracle Red Bull Racing", Price: 25000, Rarity: "mythic", WinRateBonus: 20, PointsMultiplier: 0.5},
	}
}

// DefaultItems returns the starting consumable inventory
func DefaultItems() []Item {
	return []Item{
		{ID: 1, Name: "Energy Restore", Description: "Restore all energy instantly", Kind: ItemEnergyRestore, Quantity: 1},
		{ID: 2, Name: "Double Points", Description: "Double all points earned for 1 hour", Kind: ItemDoublePoints, Quantity: 1},
	}
}

// TaskKind identifies how often a task can repeat
type TaskKind string

const (
	TaskOneTime TaskKind = "onetime"
	TaskDaily   TaskKind = "daily"
	TaskWeekly  TaskKind = "weekly"
)

// TaskReward lists what a completed task grants
type TaskReward struct {
	Points int         `json:"points,omitempty"`
	Energy int         `json:"energy,omitempty"`
	Items  []ItemGrant `json:"items,omitempty"`
}

// ItemGrant is an item quantity granted by a task reward
type ItemGrant struct {
	ItemID   int `json:"item_id"`
	Quantity int `json:"quantity"`
}

// Task is an entry of the static task catalog
type Task struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Kind        TaskKind   `json:"kind"`
	Category    string     `json:"category"`
	Reward      TaskReward `json:"reward"`
	ExternalURL string     `json:"external_url,omitempty"`
}

// TaskCatalog returns the static task list
func TaskCatalog() []Task {
	return []Task{
		// One-time tasks
		{ID: 1, Title: "Follow GMonchain.eth", Description: "Follow @gmonchain.eth on Farcaster to stay updated", Kind: TaskOneTime, Category: "social", Reward: TaskReward{Points: 500, Energy: 2}, ExternalURL: "https://farcaster.xyz/gmonchain.eth"},
		{ID: 2, Title: "Join GMonchain Channel", Description: "Follow the official GMonchain channel", Kind: TaskOneTime, Category: "social", Reward: TaskReward{Points: 300, Energy: 1}, ExternalURL: "https://farcaster.xyz/~/channel/gmonchain"},
		{ID: 3, Title: "Join FarRank Channel", Description: "Follow the FarRank channel for rankings", Kind: TaskOneTime, Category: "social", Reward: TaskReward{Points: 300, Energy: 1}, ExternalURL: "https://farcaster.xyz/~/channel/farrank"},
		{ID: 4, Title: "Join Monader Channel", Description: "Follow the Monader channel for updates", Kind: TaskOneTime, Category: "social", Reward: TaskReward{Points: 300, Energy: 1}, ExternalURL: "https://farcaster.xyz/~/channel/monader"},
		{ID: 5, Title: "Connect Wallet", Description: "Connect your Solana wallet to the game", Kind: TaskOneTime, Category: "system", Reward: TaskReward{Points: 1000, Energy: 5}},
		{ID: 6, Title: "Make First Prediction", Description: "Make your first SOL price prediction", Kind: TaskOneTime, Category: "engagement", Reward: TaskReward{Points: 200}},
		{ID: 7, Title: "Win 5 Predictions", Description: "Successfully predict SOL price 5 times", Kind: TaskOneTime, Category: "engagement", Reward: TaskReward{Points: 1500, Items: []ItemGrant{{ItemID: 1, Quantity: 1}}}},
		{ID: 8, Title: "Reach 1000 Points", Description: "Accumulate 1000 total points", Kind: TaskOneTime, Category: "engagement", Reward: TaskReward{Points: 500, Energy: 3}},

		// Daily tasks
		{ID: 101, Title: "Daily Check-in", Description: "Check in daily to receive bonus energy", Kind: TaskDaily, Category: "system", Reward: TaskReward{Points: 50, Energy: 3}},
		{ID: 102, Title: "Share on Twitter", Description: "Share SOL Race on Twitter/X", Kind: TaskDaily, Category: "social", Reward: TaskReward{Points: 100, Energy: 1}},
		{ID: 103, Title: "Share on Warpcast", Description: "Cast about SOL Race on Farcaster", Kind: TaskDaily, Category: "social", Reward: TaskReward{Points: 150, Energy: 1}},
		{ID: 104, Title: "Make 3 Predictions", Description: "Make at least 3 price predictions today", Kind: TaskDaily, Category: "engagement", Reward: TaskReward{Points: 200}},
		{ID: 105, Title: "Win 2 Predictions", Description: "Successfully predict SOL price 2 times today", Kind: TaskDaily, Category: "engagement", Reward: TaskReward{Points: 300, Energy: 2}},

		// Weekly tasks
		{ID: 201, Title: "Weekly Champion", Description: "Complete all daily tasks for 7 days", Kind: TaskWeekly, Category: "special", Reward: TaskReward{Points: 2000, Energy: 10, Items: []ItemGrant{{ItemID: 2, Quantity: 1}}}},
		{ID: 202, Title: "Social Media Master", Description: "Share on all platforms 5 times this week", Kind: TaskWeekly, Category: "social", Reward: TaskReward{Points: 1000, Energy: 5}},
	}
}

// FindTask looks up a task by id in the catalog
func FindTask(id int) (Task, bool) {
	return lo.Find(TaskCatalog(), func(t Task) bool { return t.ID == id })
}

// FindCar looks up a car by id in a roster
func FindCar(cars []Car, id int) (Car, bool) {
	return lo.Find(cars, func(c Car) bool { return c.ID == id })
}

// FindUpgrade looks up an upgrade by id
func FindUpgrade(upgrades []Upgrade, id int) (Upgrade, bool) {
	return lo.Find(upgrades, func(u Upgrade) bool { return u.ID == id })
}

// TasksByKind filters the catalog by repeat kind
func TasksByKind(kind TaskKind) []Task {
	return lo.Filter(TaskCatalog(), func(t Task, _ int) bool { return t.Kind == kind })
}
