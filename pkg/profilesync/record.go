package profilesync

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Web3vDev/SolanaRacer/game"
	"github.com/Web3vDev/SolanaRacer/pkg/providers"
)

// RecordFromProfile converts a profile into its stored shape, including
// the derived tier fields
func RecordFromProfile(p *game.Profile, rank int) (*providers.ProfileRecord, error) {
	upgrades, err := json.Marshal(p.Upgrades)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upgrades: %w", err)
	}
	cars, err := json.Marshal(p.Cars)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cars: %w", err)
	}
	items, err := json.Marshal(p.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal items: %w", err)
	}
	tasks, err := json.Marshal(p.Tasks)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tasks: %w", err)
	}

	return &providers.ProfileRecord{
		FID:             p.FID,
		Username:        p.Username,
		DisplayName:     p.DisplayName,
		AvatarURL:       p.AvatarURL,
		Points:          p.Points,
		WinStreak:       p.WinStreak,
		TotalRaces:      p.TotalRaces,
		EnergyRemaining: p.Energy.Remaining,
		EnergyMax:       p.Energy.Max,
		BaseSuccessRate: p.BaseSuccessRate,
		LastPrediction:  p.LastPrediction,
		BoostActive:     p.Boost.Active,
		BoostEndsAt:     p.Boost.EndsAt,
		Level:           game.CurrentLevel(p.Points).Level,
		BadgeIDs:        game.UnlockedBadgeIDs(p.Points, rank),
		FrameIDs:        game.UnlockedFrameIDs(p.Points),
		Upgrades:        upgrades,
		Cars:            cars,
		Items:           items,
		Tasks:           tasks,
		UpdatedAt:       time.Now(),
	}, nil
}

// ProfileFromRecord restores a profile from its stored shape. Missing
// collections fall back to the defaults so old records stay loadable.
func ProfileFromRecord(r *providers.ProfileRecord) (*game.Profile, error) {
	p := &game.Profile{
		Identity: game.Identity{
			FID:         r.FID,
			Username:    r.Username,
			DisplayName: r.DisplayName,
			AvatarURL:   r.AvatarURL,
		},
		Points:          r.Points,
		WinStreak:       r.WinStreak,
		TotalRaces:      r.TotalRaces,
		Energy:          game.Energy{Remaining: r.EnergyRemaining, Max: r.EnergyMax},
		BaseSuccessRate: r.BaseSuccessRate,
		LastPrediction:  r.LastPrediction,
		Boost:           game.Boost{Active: r.BoostActive, EndsAt: r.BoostEndsAt},
		Tasks:           make(map[int]game.TaskState),
	}

	if len(r.Upgrades) > 0 {
		if err := json.Unmarshal(r.Upgrades, &p.Upgrades); err != nil {
			return nil, fmt.Errorf("failed to unmarshal upgrades: %w", err)
		}
	}
	if len(p.Upgrades) == 0 {
		p.Upgrades = game.DefaultUpgrades()
	}

	if len(r.Cars) > 0 {
		if err := json.Unmarshal(r.Cars, &p.Cars); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cars: %w", err)
		}
	}
	if len(p.Cars) == 0 {
		p.Cars = game.CarCatalog()
	}

	if len(r.Items) > 0 {
		if err := json.Unmarshal(r.Items, &p.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal items: %w", err)
		}
	}
	if len(p.Items) == 0 {
		p.Items = game.DefaultItems()
	}

	if len(r.Tasks) > 0 {
		if err := json.Unmarshal(r.Tasks, &p.Tasks); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tasks: %w", err)
		}
	}

	game.SyncEnergyMax(p)
	return p, nil
}

// SnapshotUpdate builds a full-profile update, used by force flushes and
// by shop operations that touch the nested collections
func SnapshotUpdate(p *game.Profile) (*providers.ProfileUpdate, error) {
	record, err := RecordFromProfile(p, 0)
	if err != nil {
		return nil, err
	}

	return &providers.ProfileUpdate{
		Username:        &record.Username,
		DisplayName:     &record.DisplayName,
		AvatarURL:       &record.AvatarURL,
		Points:          &record.Points,
		WinStreak:       &record.WinStreak,
		TotalRaces:      &record.TotalRaces,
		EnergyRemaining: &record.EnergyRemaining,
		EnergyMax:       &record.EnergyMax,
		LastPrediction:  &record.LastPrediction,
		BoostActive:     &record.BoostActive,
		BoostEndsAt:     &record.BoostEndsAt,
		Upgrades:        record.Upgrades,
		Cars:            record.Cars,
		Items:           record.Items,
		Tasks:           record.Tasks,
	}, nil
}
