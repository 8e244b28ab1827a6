package game

import "github.com/samber/lo"

// BadgeCategory separates points badges from leaderboard badges
type BadgeCategory string

const (
	BadgePoints      BadgeCategory = "points"
	BadgeLeaderboard BadgeCategory = "leaderboard"
)

// Badge is a static badge catalog entry
type Badge struct {
	ID             int           `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	PointsRequired int           `json:"points_required"`
	Rarity         string        `json:"rarity"`
	Category       BadgeCategory `json:"category"`
}

// Badges is the full badge catalog in display order
var Badges = []Badge{
	{ID: 1, Name: "First Steps", Description: "Welcome to SOL Race! Earn your first 100 points", PointsRequired: 100, Rarity: "common", Category: BadgePoints},
	{ID: 2, Name: "Getting Started", Description: "You're getting the hang of it! Reach 500 points", PointsRequired: 500, Rarity: "common", Category: BadgePoints},
	{ID: 3, Name: "Rising Star", Description: "You're on fire! Accumulate 1,000 points", PointsRequired: 1000, Rarity: "rare", Category: BadgePoints},
	{ID: 4, Name: "Skilled Racer", Description: "Impressive performance! Reach 2,500 points", PointsRequired: 2500, Rarity: "rare", Category: BadgePoints},
	{ID: 5, Name: "Expert Trader", Description: "You know the market! Earn 5,000 points", PointsRequired: 5000, Rarity: "epic", Category: BadgePoints},
	{ID: 6, Name: "Market Master", Description: "Exceptional skills! Accumulate 10,000 points", PointsRequired: 10000, Rarity: "epic", Category: BadgePoints},
	{ID: 7, Name: "SOL Legend", Description: "Legendary status! Reach 25,000 points", PointsRequired: 25000, Rarity: "legendary", Category: BadgePoints},
	{ID: 8, Name: "Diamond Hands", Description: "Ultimate dedication! Earn 50,000 points", PointsRequired: 50000, Rarity: "legendary", Category: BadgePoints},
	{ID: 9, Name: "Crypto God", Description: "Mythical achievement! Accumulate 100,000 points", PointsRequired: 100000, Rarity: "mythic", Category: BadgePoints},

	{ID: 10, Name: "Champion", Description: "Reached #1 on the leaderboard! You are the ultimate SOL racer!", Rarity: "mythic", Category: BadgeLeaderboard},
	{ID: 11, Name: "Runner-up", Description: "Achieved #2 on the leaderboard! So close to the top!", Rarity: "legendary", Category: BadgeLeaderboard},
	{ID: 12, Name: "Podium Finisher", Description: "Made it to #3 on the leaderboard! Bronze medal earned!", Rarity: "legendary", Category: BadgeLeaderboard},
	{ID: 13, Name: "Top 10", Description: "Ranked in the top 10 players! Elite performance!", Rarity: "epic", Category: BadgeLeaderboard},
	{ID: 14, Name: "Top 50", Description: "Ranked in the top 50 players! Great racing skills!", Rarity: "rare", Category: BadgeLeaderboard},
	{ID: 15, Name: "Top 100", Description: "Ranked in the top 100 players! You're among the best!", Rarity: "rare", Category: BadgeLeaderboard},
}

// rankBadgeHolds reports whether a rank earns the given leaderboard badge.
// The podium badges are exact placements; the rest are ranges.
func rankBadgeHolds(badgeID, rank int) bool {
	if rank <= 0 {
		return false
	}
	switch badgeID {
	case 10:
		return rank == 1
	case 11:
		return rank == 2
	case 12:
		return rank == 3
	case 13:
		return rank <= 10
	case 14:
		return rank <= 50
	case 15:
		return rank <= 100
	default:
		return false
	}
}

// UnlockedBadges returns every badge held at the given points and rank,
// in catalog order. A rank of 0 means unranked.
func UnlockedBadges(points, rank int) []Badge {
	return lo.Filter(Badges, func(b Badge, _ int) bool {
		switch b.Category {
		case BadgePoints:
			return points >= b.PointsRequired
		case BadgeLeaderboard:
			return rankBadgeHolds(b.ID, rank)
		default:
			return false
		}
	})
}

// UnlockedBadgeIDs returns the held badge ids in catalog order
func UnlockedBadgeIDs(points, rank int) []int {
	return lo.Map(UnlockedBadges(points, rank), func(b Badge, _ int) int { return b.ID })
}

// NextBadge returns the first points badge still locked, or false when
// all points badges are held
func NextBadge(points int) (Badge, bool) {
	return lo.Find(Badges, func(b Badge) bool {
		return b.Category == BadgePoints && points < b.PointsRequired
	})
}
