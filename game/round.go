package game

import (
	"math"
	"strconv"
	"time"
)

// RoundState is the phase of the prediction round state machine
type RoundState int

const (
	RoundIdle RoundState = iota
	RoundAwaitingResolution
	RoundSettled
)

// String returns the wire name of the round state
func (s RoundState) String() string {
	switch s {
	case RoundIdle:
		return "idle"
	case RoundAwaitingResolution:
		return "awaiting_resolution"
	case RoundSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// Direction is the player's price call
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Valid reports whether the direction is one of the two allowed calls
func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

// RoundResult is the settled outcome of one round
type RoundResult struct {
	Correct       bool      `json:"correct"`
	PointsAwarded int       `json:"points_awarded"`
	Streak        int       `json:"streak"`
	Boosted       bool      `json:"boosted"`
	SettledAt     time.Time `json:"settled_at"`
}

// Round is a snapshot of the engine's current round
type Round struct {
	State      RoundState   `json:"state"`
	Direction  Direction    `json:"direction,omitempty"`
	StartedAt  time.Time    `json:"started_at,omitempty"`
	ResolvesAt time.Time    `json:"resolves_at,omitempty"`
	Result     *RoundResult `json:"result,omitempty"`
}

// Engine runs the prediction round state machine over one profile. It is
// not safe for concurrent use; the owning session serializes access.
type Engine struct {
	profile *Profile
	rng     RandomSource
	now     func() time.Time
	window  time.Duration

	round Round
}

// NewEngine creates a round engine bound to a profile. A nil clock
// defaults to time.Now.
func NewEngine(profile *Profile, rng RandomSource, window time.Duration, clock func() time.Time) *Engine {
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		profile: profile,
		rng:     rng,
		now:     clock,
		window:  window,
		round:   Round{State: RoundIdle},
	}
}

// Predict accepts a price call if the engine is idle and energy remains.
// A rejected call leaves every counter untouched.
func (e *Engine) Predict(direction Direction) bool {
	if !direction.Valid() {
		return false
	}
	if e.round.State != RoundIdle {
		return false
	}
	if e.profile.Energy.Remaining <= 0 {
		return false
	}

	now := e.now()
	e.profile.Energy.Remaining--
	e.profile.LastPrediction = now
	e.profile.TotalRaces++

	e.round = Round{
		State:      RoundAwaitingResolution,
		Direction:  direction,
		StartedAt:  now,
		ResolvesAt: now.Add(e.window),
	}
	return true
}

// Resolve draws the outcome and settles the round. The points total and
// streak move together: a win adds points and extends the streak, a loss
// only resets the streak.
func (e *Engine) Resolve() *RoundResult {
	if e.round.State != RoundAwaitingResolution {
		return nil
	}

	now := e.now()
	draw := e.rng.Float64() * 100
	correct := draw < EffectiveSuccessRate(e.profile)

	result := &RoundResult{
		Correct:   correct,
		SettledAt: now,
	}

	if correct {
		total := WinPoints(e.profile, e.profile.WinStreak)
		boosted := e.profile.Boost.ActiveAt(now)
		if boosted {
			total *= 2
		}
		e.profile.Points += total
		e.profile.WinStreak++
		result.PointsAwarded = total
		result.Boosted = boosted
	} else {
		e.profile.WinStreak = 0
	}
	result.Streak = e.profile.WinStreak

	e.round.State = RoundSettled
	e.round.Result = result
	return result
}

// Reset returns a settled engine to idle so the next round can start
func (e *Engine) Reset() {
	if e.round.State != RoundSettled {
		return
	}
	e.round = Round{State: RoundIdle}
}

// Current returns a snapshot of the active round
func (e *Engine) Current() Round {
	return e.round
}

// SettlePrice derives the displayed final price from the outcome. The
// decimals are cosmetic: a correct call always lands on the side the
// player picked.
func SettlePrice(basePrice float64, direction Direction, correct bool) string {
	decimal := "001"
	up := direction == DirectionUp
	if up == correct {
		decimal = "999"
	}
	whole := int(math.Floor(basePrice))
	return strconv.Itoa(whole) + "." + decimal
}
