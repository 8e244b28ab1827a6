package game

// UnlockKind identifies what category an unlock belongs to
type UnlockKind string

const (
	UnlockBadge UnlockKind = "badge"
	UnlockFrame UnlockKind = "frame"
	UnlockLevel UnlockKind = "level"
)

// Unlock is a newly earned badge, frame, or level
type Unlock struct {
	Kind UnlockKind `json:"kind"`
	ID   int        `json:"id"`
	Name string     `json:"name"`
}

// DetectUnlocks diffs the unlocked sets before and after a points or rank
// change. Results come back in catalog order: badges, then frames, then
// the level step. Callers that can only surface one notification show the
// first and drop the rest.
func DetectUnlocks(pointsBefore, pointsAfter, rankBefore, rankAfter int) []Unlock {
	var unlocks []Unlock

	before := make(map[int]bool)
	for _, id := range UnlockedBadgeIDs(pointsBefore, rankBefore) {
		before[id] = true
	}
	for _, badge := range UnlockedBadges(pointsAfter, rankAfter) {
		if !before[badge.ID] {
			unlocks = append(unlocks, Unlock{Kind: UnlockBadge, ID: badge.ID, Name: badge.Name})
		}
	}

	framesBefore := make(map[int]bool)
	for _, id := range UnlockedFrameIDs(pointsBefore) {
		framesBefore[id] = true
	}
	for _, frame := range UnlockedFrames(pointsAfter) {
		if !framesBefore[frame.ID] {
			unlocks = append(unlocks, Unlock{Kind: UnlockFrame, ID: frame.ID, Name: frame.Name})
		}
	}

	levelBefore := CurrentLevel(pointsBefore)
	levelAfter := CurrentLevel(pointsAfter)
	if levelAfter.Level > levelBefore.Level {
		unlocks = append(unlocks, Unlock{Kind: UnlockLevel, ID: levelAfter.Level, Name: levelAfter.Name})
	}

	return unlocks
}
