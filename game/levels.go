package game

import "math"

// Level is a named points tier
type Level struct {
	Level          int    `json:"level"`
	Name           string `json:"name"`
	PointsRequired int    `json:"points_required"`
}

// Levels is the ascending level table. Membership is inclusive: a profile
// sitting exactly on a threshold holds that level.
var Levels = []Level{
	{Level: 1, Name: "Rookie", PointsRequired: 0},
	{Level: 2, Name: "Amateur", PointsRequired: 100},
	{Level: 3, Name: "Semi-Pro", PointsRequired: 500},
	{Level: 4, Name: "Professional", PointsRequired: 1000},
	{Level: 5, Name: "Expert", PointsRequired: 2500},
	{Level: 6, Name: "Master", PointsRequired: 5000},
	{Level: 7, Name: "Champion", PointsRequired: 10000},
	{Level: 8, Name: "Legend", PointsRequired: 25000},
	{Level: 9, Name: "Mythic", PointsRequired: 50000},
	{Level: 10, Name: "Godlike", PointsRequired: 100000},
}

// CurrentLevel returns the highest level whose threshold the points meet
func CurrentLevel(points int) Level {
	current := Levels[0]
	for _, level := range Levels {
		if points >= level.PointsRequired {
			current = level
		} else {
			break
		}
	}
	return current
}

// NextLevel returns the next tier, or false at the top
func NextLevel(points int) (Level, bool) {
	current := CurrentLevel(points)
	for i, level := range Levels {
		if level.Level == current.Level && i < len(Levels)-1 {
			return Levels[i+1], true
		}
	}
	return Level{}, false
}

// LevelProgress returns the percent progress toward the next level,
// capped at 100
func LevelProgress(points int) float64 {
	current := CurrentLevel(points)
	next, ok := NextLevel(points)
	if !ok {
		return 100
	}

	earned := float64(points - current.PointsRequired)
	needed := float64(next.PointsRequired - current.PointsRequired)
	return math.Min(earned/needed*100, 100)
}
