package providers

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned by ProfileStore.Read for unknown players
var ErrNotFound = errors.New("profile not found")

// IdentityContext is the player identity delivered by the host platform
type IdentityContext struct {
	FID         int64  `json:"fid"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	ClientAdded bool   `json:"client_added"`
}

// IdentityProvider resolves the platform identity for a session. GetContext
// may hang on an unresponsive host, so callers guard it with a bootstrap
// timeout and fall back to a default identity.
type IdentityProvider interface {
	GetContext(ctx context.Context) (*IdentityContext, error)
	Ready(ctx context.Context) error
}

// ProfileRecord is the stored shape of a player profile. The nested
// collections travel as raw JSON so the store schema stays flat.
type ProfileRecord struct {
	FID         int64  `json:"fid"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`

	Points          int       `json:"points"`
	WinStreak       int       `json:"win_streak"`
	TotalRaces      int       `json:"total_races"`
	EnergyRemaining int       `json:"energy_remaining"`
	EnergyMax       int       `json:"energy_max"`
	BaseSuccessRate float64   `json:"base_success_rate"`
	LastPrediction  time.Time `json:"last_prediction"`
	BoostActive     bool      `json:"boost_active"`
	BoostEndsAt     time.Time `json:"boost_ends_at"`

	// Derived tiers, recomputed by the synchronizer on every flush
	Level    int   `json:"level"`
	BadgeIDs []int `json:"badge_ids"`
	FrameIDs []int `json:"frame_ids"`

	Upgrades json.RawMessage `json:"upgrades,omitempty"`
	Cars     json.RawMessage `json:"cars,omitempty"`
	Items    json.RawMessage `json:"items,omitempty"`
	Tasks    json.RawMessage `json:"tasks,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileUpdate is a partial, last-write-wins update. Nil fields are left
// untouched by the store.
type ProfileUpdate struct {
	Username    *string `json:"username,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`

	Points          *int       `json:"points,omitempty"`
	WinStreak       *int       `json:"win_streak,omitempty"`
	TotalRaces      *int       `json:"total_races,omitempty"`
	EnergyRemaining *int       `json:"energy_remaining,omitempty"`
	EnergyMax       *int       `json:"energy_max,omitempty"`
	LastPrediction  *time.Time `json:"last_prediction,omitempty"`
	BoostActive     *bool      `json:"boost_active,omitempty"`
	BoostEndsAt     *time.Time `json:"boost_ends_at,omitempty"`

	Level    *int  `json:"level,omitempty"`
	BadgeIDs []int `json:"badge_ids,omitempty"`
	FrameIDs []int `json:"frame_ids,omitempty"`

	Upgrades json.RawMessage `json:"upgrades,omitempty"`
	Cars     json.RawMessage `json:"cars,omitempty"`
	Items    json.RawMessage `json:"items,omitempty"`
	Tasks    json.RawMessage `json:"tasks,omitempty"`
}

// IsEmpty reports whether the update would change nothing
func (u *ProfileUpdate) IsEmpty() bool {
	return u.Username == nil && u.DisplayName == nil && u.AvatarURL == nil &&
		u.Points == nil && u.WinStreak == nil && u.TotalRaces == nil &&
		u.EnergyRemaining == nil && u.EnergyMax == nil && u.LastPrediction == nil &&
		u.BoostActive == nil && u.BoostEndsAt == nil && u.Level == nil &&
		u.BadgeIDs == nil && u.FrameIDs == nil &&
		u.Upgrades == nil && u.Cars == nil && u.Items == nil && u.Tasks == nil
}

// LeaderboardEntry is one row of the points leaderboard
type LeaderboardEntry struct {
	FID         int64  `json:"fid"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Points      int    `json:"points"`
	Level       int    `json:"level"`
}

// ProfileStore is the remote profile persistence service
type ProfileStore interface {
	Read(ctx context.Context, fid int64) (*ProfileRecord, error)
	Create(ctx context.Context, record *ProfileRecord) error
	Update(ctx context.Context, fid int64, update *ProfileUpdate) error
	ListTopByPoints(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	CountWithPointsGreaterThan(ctx context.Context, points int) (int, error)
}

// RaceLog is the audit entry for one settled round
type RaceLog struct {
	FID           int64     `json:"fid"`
	Username      string    `json:"username"`
	Direction     string    `json:"direction"`
	Correct       bool      `json:"correct"`
	PointsAwarded int       `json:"points_awarded"`
	Streak        int       `json:"streak"`
	Boosted       bool      `json:"boosted"`
	FinalPrice    string    `json:"final_price"`
	Timestamp     time.Time `json:"timestamp"`
}

// PurchaseLog is the audit entry for a shop purchase
type PurchaseLog struct {
	FID       int64     `json:"fid"`
	Username  string    `json:"username"`
	ItemType  string    `json:"item_type"` // "upgrade", "car", "consumable"
	ItemID    int       `json:"item_id"`
	Cost      int       `json:"cost"`
	Timestamp time.Time `json:"timestamp"`
}

// UnlockLog is the audit entry for a badge, frame, or level unlock
type UnlockLog struct {
	FID        int64     `json:"fid"`
	Username   string    `json:"username"`
	UnlockKind string    `json:"unlock_kind"`
	UnlockID   int       `json:"unlock_id"`
	UnlockName string    `json:"unlock_name"`
	Timestamp  time.Time `json:"timestamp"`
}

// HistoryQuery selects audit entries for one player
type HistoryQuery struct {
	FID   int64  `json:"fid"`
	Kind  string `json:"kind"` // "race", "purchase", "unlock"
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

// HistoryResponse is a page of audit entries
type HistoryResponse struct {
	Total int           `json:"total"`
	Items []interface{} `json:"items"`
}

// AuditLogger records gameplay events for the audit pipeline
type AuditLogger interface {
	LogRace(ctx context.Context, log *RaceLog) error
	LogPurchase(ctx context.Context, log *PurchaseLog) error
	LogUnlock(ctx context.Context, log *UnlockLog) error
	GetHistory(ctx context.Context, query *HistoryQuery) (*HistoryResponse, error)
}
