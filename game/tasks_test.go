package game

import (
	"testing"
	"time"

	apperrors "github.com/Web3vDev/SolanaRacer/errors"
)

func TestCompleteOneTimeTask(t *testing.T) {
	p := newTestProfile()
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	task, err := CompleteTask(p, 1, now)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if p.Points != task.Reward.Points {
		t.Errorf("expected %d points, got %d", task.Reward.Points, p.Points)
	}
	if p.Energy.Remaining != 10+task.Reward.Energy {
		t.Errorf("expected energy %d, got %d", 10+task.Reward.Energy, p.Energy.Remaining)
	}

	_, err = CompleteTask(p, 1, now.Add(48*time.Hour))
	if apperrors.GetCode(err) != apperrors.ErrConflict {
		t.Errorf("one-time task must not repeat, got %v", err)
	}
}

func TestDailyTaskResetsAtMidnight(t *testing.T) {
	p := newTestProfile()
	evening := time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC)

	if _, err := CompleteTask(p, 101, evening); err != nil {
		t.Fatalf("first completion failed: %v", err)
	}
	if _, err := CompleteTask(p, 101, evening.Add(30*time.Minute)); err == nil {
		t.Fatal("same-day repeat must be rejected")
	}

	// 90 minutes later is past midnight
	if _, err := CompleteTask(p, 101, evening.Add(90*time.Minute)); err != nil {
		t.Errorf("next-day completion failed: %v", err)
	}
	if p.Tasks[101].Count != 2 {
		t.Errorf("expected completion count 2, got %d", p.Tasks[101].Count)
	}
}

func TestWeeklyTaskResetsAtWeekStart(t *testing.T) {
	p := newTestProfile()
	// 2025-06-04 is a Wednesday; the week starts Sunday 2025-06-01
	wednesday := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)

	if _, err := CompleteTask(p, 202, wednesday); err != nil {
		t.Fatalf("first completion failed: %v", err)
	}
	if _, err := CompleteTask(p, 202, wednesday.AddDate(0, 0, 2)); err == nil {
		t.Fatal("same-week repeat must be rejected")
	}
	// Next Sunday opens a new week
	if _, err := CompleteTask(p, 202, wednesday.AddDate(0, 0, 4)); err != nil {
		t.Errorf("next-week completion failed: %v", err)
	}
}

func TestTaskEnergyRewardCapsAtMax(t *testing.T) {
	p := newTestProfile()
	p.Energy.Remaining = MaxEnergy(p)
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	if _, err := CompleteTask(p, 101, now); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if max := MaxEnergy(p); p.Energy.Remaining != max {
		t.Errorf("expected energy clamped at %d, got %d", max, p.Energy.Remaining)
	}
	if p.Points != 50 {
		t.Errorf("points reward must still apply, got %d", p.Points)
	}
}

func TestTaskItemReward(t *testing.T) {
	p := newTestProfile()
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	if _, err := CompleteTask(p, 7, now); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	item, ok := findItem(p, 1)
	if !ok || item.Quantity != 2 {
		t.Errorf("expected energy restore quantity 2, got %+v", item)
	}
}

func TestCompleteUnknownTask(t *testing.T) {
	p := newTestProfile()
	_, err := CompleteTask(p, 999, time.Now())
	if apperrors.GetCode(err) != apperrors.ErrNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}
