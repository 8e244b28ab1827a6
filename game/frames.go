package game

import "github.com/samber/lo"

// Frame is an avatar frame catalog entry
type Frame struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	PointsRequired int    `json:"points_required"`
	Rarity         string `json:"rarity"`
}

// Frames is the ascending frame catalog. The starter frame is free.
var Frames = []Frame{
	{ID: 0, Name: "Starter Frame", Description: "Your first avatar frame! Welcome to SOL Race", PointsRequired: 0, Rarity: "common"},
	{ID: 1, Name: "Silver Ring", Description: "A sleek silver frame for dedicated racers", PointsRequired: 250, Rarity: "common"},
	{ID: 2, Name: "Bronze Star", Description: "Show your rising star status with this bronze frame", PointsRequired: 750, Rarity: "rare"},
	{ID: 3, Name: "Aqua Elite", Description: "A refined aqua frame for skilled traders", PointsRequired: 1500, Rarity: "rare"},
	{ID: 4, Name: "Golden Circle", Description: "Pure gold frame for exceptional performance", PointsRequired: 3000, Rarity: "epic"},
	{ID: 5, Name: "Royal Crown", Description: "Majestic frame with royal spikes for true champions", PointsRequired: 7500, Rarity: "epic"},
	{ID: 6, Name: "Diamond Sovereign", Description: "Crystalline perfection for market masters", PointsRequired: 15000, Rarity: "legendary"},
	{ID: 7, Name: "Ruby Emperor", Description: "Imperial frame with precious ruby for legends", PointsRequired: 35000, Rarity: "legendary"},
	{ID: 8, Name: "Obsidian God", Description: "The ultimate frame for crypto gods", PointsRequired: 75000, Rarity: "mythic"},
}

// UnlockedFrames returns every frame held at the given points, in catalog order
func UnlockedFrames(points int) []Frame {
	return lo.Filter(Frames, func(f Frame, _ int) bool { return points >= f.PointsRequired })
}

// UnlockedFrameIDs returns the held frame ids in catalog order
func UnlockedFrameIDs(points int) []int {
	return lo.Map(UnlockedFrames(points), func(f Frame, _ int) int { return f.ID })
}

// CurrentFrame returns the best frame held
func CurrentFrame(points int) Frame {
	unlocked := UnlockedFrames(points)
	if len(unlocked) == 0 {
		return Frames[0]
	}
	return unlocked[len(unlocked)-1]
}

// NextFrame returns the first frame still locked, or false when all are held
func NextFrame(points int) (Frame, bool) {
	return lo.Find(Frames, func(f Frame) bool { return points < f.PointsRequired })
}
