package game

import "testing"

func TestCurrentLevelInclusiveThresholds(t *testing.T) {
	tests := []struct {
		points int
		want   int
	}{
		{points: 0, want: 1},
		{points: 99, want: 1},
		{points: 100, want: 2},
		{points: 499, want: 2},
		{points: 500, want: 3},
		{points: 2500, want: 5},
		{points: 99999, want: 9},
		{points: 100000, want: 10},
		{points: 5000000, want: 10},
	}

	for _, tt := range tests {
		got := CurrentLevel(tt.points)
		if got.Level != tt.want {
			t.Errorf("CurrentLevel(%d) = %d, want %d", tt.points, got.Level, tt.want)
		}
	}
}

func TestNextLevel(t *testing.T) {
	next, ok := NextLevel(0)
	if !ok || next.Level != 2 {
		t.Errorf("expected next level 2 at 0 points, got %v ok=%v", next.Level, ok)
	}

	if _, ok := NextLevel(100000); ok {
		t.Error("expected no next level at the top tier")
	}
}

func TestLevelProgress(t *testing.T) {
	tests := []struct {
		points int
		want   float64
	}{
		{points: 0, want: 0},
		{points: 50, want: 50},
		{points: 100, want: 0},   // start of level 2
		{points: 300, want: 50},  // halfway 100 -> 500
		{points: 100000, want: 100},
	}

	for _, tt := range tests {
		got := LevelProgress(tt.points)
		if got != tt.want {
			t.Errorf("LevelProgress(%d) = %v, want %v", tt.points, got, tt.want)
		}
	}
}

func TestUnlockedBadges(t *testing.T) {
	tests := []struct {
		name   string
		points int
		rank   int
		want   []int
	}{
		{name: "fresh profile", points: 0, rank: 0, want: nil},
		{name: "first badge on threshold", points: 100, rank: 0, want: []int{1}},
		{name: "mid game", points: 5000, rank: 0, want: []int{1, 2, 3, 4, 5}},
		{name: "rank 1 gets champion and ranges", points: 0, rank: 1, want: []int{10, 13, 14, 15}},
		{name: "rank 2 is runner-up not champion", points: 0, rank: 2, want: []int{11, 13, 14, 15}},
		{name: "rank 4 only ranges", points: 0, rank: 4, want: []int{13, 14, 15}},
		{name: "rank 100 boundary", points: 0, rank: 100, want: []int{15}},
		{name: "rank 101 nothing", points: 0, rank: 101, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UnlockedBadgeIDs(tt.points, tt.rank)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestNextBadge(t *testing.T) {
	badge, ok := NextBadge(0)
	if !ok || badge.ID != 1 {
		t.Errorf("expected badge 1 next, got %v ok=%v", badge.ID, ok)
	}

	badge, ok = NextBadge(100)
	if !ok || badge.ID != 2 {
		t.Errorf("expected badge 2 next at 100 points, got %v ok=%v", badge.ID, ok)
	}

	if _, ok := NextBadge(100000); ok {
		t.Error("expected no next badge with all points badges held")
	}
}

func TestFrames(t *testing.T) {
	if got := CurrentFrame(0); got.ID != 0 {
		t.Errorf("expected starter frame at 0 points, got %d", got.ID)
	}
	if got := CurrentFrame(750); got.ID != 2 {
		t.Errorf("expected frame 2 at 750 points, got %d", got.ID)
	}
	if got := CurrentFrame(80000); got.ID != 8 {
		t.Errorf("expected top frame at 80000 points, got %d", got.ID)
	}

	next, ok := NextFrame(250)
	if !ok || next.ID != 2 {
		t.Errorf("expected frame 2 next at 250 points, got %v ok=%v", next.ID, ok)
	}
	if _, ok := NextFrame(75000); ok {
		t.Error("expected no next frame at the top")
	}
}

func TestDetectUnlocks(t *testing.T) {
	tests := []struct {
		name         string
		pointsBefore int
		pointsAfter  int
		rankBefore   int
		rankAfter    int
		want         []Unlock
	}{
		{
			name: "no change no unlocks",
			pointsBefore: 50, pointsAfter: 80,
			want: nil,
		},
		{
			name: "badge level and nothing else",
			pointsBefore: 80, pointsAfter: 120,
			want: []Unlock{
				{Kind: UnlockBadge, ID: 1, Name: "First Steps"},
				{Kind: UnlockLevel, ID: 2, Name: "Amateur"},
			},
		},
		{
			name: "crossing several thresholds at once",
			pointsBefore: 300, pointsAfter: 800,
			want: []Unlock{
				{Kind: UnlockBadge, ID: 2, Name: "Getting Started"},
				{Kind: UnlockFrame, ID: 2, Name: "Bronze Star"},
				{Kind: UnlockLevel, ID: 3, Name: "Semi-Pro"},
			},
		},
		{
			name: "rank improvement unlocks leaderboard badges",
			pointsBefore: 1000, pointsAfter: 1000,
			rankBefore: 120, rankAfter: 9,
			want: []Unlock{
				{Kind: UnlockBadge, ID: 13, Name: "Top 10"},
				{Kind: UnlockBadge, ID: 14, Name: "Top 50"},
				{Kind: UnlockBadge, ID: 15, Name: "Top 100"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectUnlocks(tt.pointsBefore, tt.pointsAfter, tt.rankBefore, tt.rankAfter)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("unlock %d: got %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
