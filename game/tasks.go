package game

import (
	"time"

	apperrors "github.com/Web3vDev/SolanaRacer/errors"
)

// CanCompleteTask checks the repeat gate for a task. One-time tasks
// complete once; daily tasks reset at local midnight; weekly tasks reset
// at the start of the week (Sunday).
func CanCompleteTask(p *Profile, task Task, now time.Time) bool {
	state, done := p.Tasks[task.ID]
	if !done {
		return true
	}

	switch task.Kind {
	case TaskOneTime:
		return false
	case TaskDaily:
		return !sameDay(state.CompletedAt, now)
	case TaskWeekly:
		return state.CompletedAt.Before(weekStart(now))
	default:
		return false
	}
}

// CompleteTask applies a task's reward and records the completion.
// Reward energy tops up toward the cap, matching the energy restore item.
func CompleteTask(p *Profile, taskID int, now time.Time) (Task, error) {
	task, ok := FindTask(taskID)
	if !ok {
		return Task{}, apperrors.New(apperrors.ErrNotFound, "task not found")
	}
	if !CanCompleteTask(p, task, now) {
		return Task{}, apperrors.New(apperrors.ErrConflict, "task already completed")
	}

	p.Points += task.Reward.Points
	p.Energy.Remaining += task.Reward.Energy
	if max := MaxEnergy(p); p.Energy.Remaining > max {
		p.Energy.Remaining = max
	}
	for _, grant := range task.Reward.Items {
		GrantItem(p, grant.ItemID, grant.Quantity)
	}

	state := p.Tasks[task.ID]
	state.CompletedAt = now
	state.Count++
	p.Tasks[task.ID] = state

	return task, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func weekStart(now time.Time) time.Time {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return midnight.AddDate(0, 0, -int(now.Weekday()))
}
