package game

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time               { return c.t }
func (c *fakeClock) Advance(d time.Duration)      { c.t = c.t.Add(d) }

func newRoundFixture(rng RandomSource) (*Profile, *Engine, *fakeClock) {
	p := newTestProfile()
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	engine := NewEngine(p, rng, 4*time.Second, clock.Now)
	return p, engine, clock
}

func TestPredictAcceptance(t *testing.T) {
	p, engine, clock := newRoundFixture(forcedRNG{v: 0.1})

	if !engine.Predict(DirectionUp) {
		t.Fatal("expected prediction to be accepted")
	}
	if p.Energy.Remaining != 9 {
		t.Errorf("expected energy 9, got %d", p.Energy.Remaining)
	}
	if p.TotalRaces != 1 {
		t.Errorf("expected total races 1, got %d", p.TotalRaces)
	}
	if !p.LastPrediction.Equal(clock.Now()) {
		t.Errorf("expected last prediction %v, got %v", clock.Now(), p.LastPrediction)
	}

	round := engine.Current()
	if round.State != RoundAwaitingResolution {
		t.Errorf("expected awaiting state, got %v", round.State)
	}
	if want := clock.Now().Add(4 * time.Second); !round.ResolvesAt.Equal(want) {
		t.Errorf("expected resolve at %v, got %v", want, round.ResolvesAt)
	}
}

func TestPredictRejectedWithoutEnergy(t *testing.T) {
	p, engine, _ := newRoundFixture(forcedRNG{v: 0.1})
	p.Energy.Remaining = 0

	if engine.Predict(DirectionUp) {
		t.Fatal("expected prediction to be rejected")
	}
	if p.TotalRaces != 0 {
		t.Errorf("rejected prediction must not count a race, got %d", p.TotalRaces)
	}
	if !p.LastPrediction.IsZero() {
		t.Error("rejected prediction must not touch last prediction time")
	}
	if engine.Current().State != RoundIdle {
		t.Errorf("expected idle state, got %v", engine.Current().State)
	}
}

func TestPredictRejectedWhileInFlight(t *testing.T) {
	p, engine, _ := newRoundFixture(forcedRNG{v: 0.1})

	if !engine.Predict(DirectionUp) {
		t.Fatal("first prediction should be accepted")
	}
	if engine.Predict(DirectionDown) {
		t.Fatal("second prediction should be rejected while awaiting resolution")
	}
	if p.Energy.Remaining != 9 {
		t.Errorf("re-entrant prediction must not spend energy, got %d", p.Energy.Remaining)
	}
	if p.TotalRaces != 1 {
		t.Errorf("re-entrant prediction must not count a race, got %d", p.TotalRaces)
	}
}

func TestPredictRejectsInvalidDirection(t *testing.T) {
	p, engine, _ := newRoundFixture(forcedRNG{v: 0.1})
	if engine.Predict(Direction("sideways")) {
		t.Fatal("expected invalid direction to be rejected")
	}
	if p.Energy.Remaining != 10 {
		t.Errorf("invalid direction must not spend energy, got %d", p.Energy.Remaining)
	}
}

func TestResolveCorrectPrediction(t *testing.T) {
	// base rate 65, draw 0.1*100=10 < 65 -> correct
	p, engine, _ := newRoundFixture(forcedRNG{v: 0.1})
	p.BaseSuccessRate = 65

	engine.Predict(DirectionUp)
	result := engine.Resolve()

	if result == nil || !result.Correct {
		t.Fatal("expected a correct result")
	}
	if result.PointsAwarded != 100 {
		t.Errorf("expected 100 points awarded, got %d", result.PointsAwarded)
	}
	if p.Points != 100 {
		t.Errorf("expected profile points 100, got %d", p.Points)
	}
	if p.WinStreak != 1 {
		t.Errorf("expected streak 1, got %d", p.WinStreak)
	}
	if engine.Current().State != RoundSettled {
		t.Errorf("expected settled state, got %v", engine.Current().State)
	}
}

func TestResolveIncorrectPrediction(t *testing.T) {
	// base rate 65, draw 99 >= 65 -> incorrect
	p, engine, _ := newRoundFixture(forcedRNG{v: 0.99})
	p.BaseSuccessRate = 65
	p.Points = 500
	p.WinStreak = 3

	engine.Predict(DirectionDown)
	result := engine.Resolve()

	if result == nil || result.Correct {
		t.Fatal("expected an incorrect result")
	}
	if p.Points != 500 {
		t.Errorf("loss must not change points, got %d", p.Points)
	}
	if p.WinStreak != 0 {
		t.Errorf("loss must reset streak, got %d", p.WinStreak)
	}
	if result.PointsAwarded != 0 {
		t.Errorf("loss awards no points, got %d", result.PointsAwarded)
	}
}

func TestResolveComboUsesStreakBeforeIncrement(t *testing.T) {
	p, engine, _ := newRoundFixture(forcedRNG{v: 0.1})
	p.BaseSuccessRate = 65
	p.WinStreak = 4
	setUpgradeLevel(p, EffectComboBonus, 5)

	engine.Predict(DirectionUp)
	result := engine.Resolve()

	// 100 + floor(15*5*4/100) = 103
	if result.PointsAwarded != 103 {
		t.Errorf("expected 103 points, got %d", result.PointsAwarded)
	}
	if p.WinStreak != 5 {
		t.Errorf("expected streak 5 after win, got %d", p.WinStreak)
	}
}

func TestResolveDoublesWithActiveBoost(t *testing.T) {
	p, engine, clock := newRoundFixture(forcedRNG{v: 0.1})
	p.BaseSuccessRate = 65
	p.Boost = Boost{Active: true, EndsAt: clock.Now().Add(time.Hour)}

	engine.Predict(DirectionUp)
	result := engine.Resolve()

	if result.PointsAwarded != 200 {
		t.Errorf("expected boosted 200 points, got %d", result.PointsAwarded)
	}
	if !result.Boosted {
		t.Error("expected result marked as boosted")
	}
}

func TestResolveIgnoresExpiredBoost(t *testing.T) {
	p, engine, clock := newRoundFixture(forcedRNG{v: 0.1})
	p.BaseSuccessRate = 65
	p.Boost = Boost{Active: true, EndsAt: clock.Now().Add(-time.Minute)}

	engine.Predict(DirectionUp)
	result := engine.Resolve()

	if result.PointsAwarded != 100 {
		t.Errorf("expired boost must not double, got %d", result.PointsAwarded)
	}
	if result.Boosted {
		t.Error("expired boost must not mark the result boosted")
	}
}

func TestRoundLifecycle(t *testing.T) {
	_, engine, _ := newRoundFixture(forcedRNG{v: 0.1})

	if engine.Resolve() != nil {
		t.Error("resolving an idle engine must be a no-op")
	}

	engine.Predict(DirectionUp)
	engine.Reset()
	if engine.Current().State != RoundAwaitingResolution {
		t.Error("reset must not cancel an in-flight round")
	}

	engine.Resolve()
	engine.Reset()
	if engine.Current().State != RoundIdle {
		t.Errorf("expected idle after reset, got %v", engine.Current().State)
	}
	if engine.Current().Result != nil {
		t.Error("reset must clear the previous result")
	}
}

func TestSettlePrice(t *testing.T) {
	tests := []struct {
		name      string
		base      float64
		direction Direction
		correct   bool
		want      string
	}{
		{name: "correct up lands high", base: 205.123, direction: DirectionUp, correct: true, want: "205.999"},
		{name: "correct down lands low", base: 205.123, direction: DirectionDown, correct: true, want: "205.001"},
		{name: "wrong up lands low", base: 205.123, direction: DirectionUp, correct: false, want: "205.001"},
		{name: "wrong down lands high", base: 205.123, direction: DirectionDown, correct: false, want: "205.999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SettlePrice(tt.base, tt.direction, tt.correct)
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

// Over many seeded rounds, points must never decrease and only losses
// reset the streak.
func TestPointsMonotonicOverManyRounds(t *testing.T) {
	p := newTestProfile()
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	engine := NewEngine(p, NewSeededRNG(99), 4*time.Second, clock.Now)

	lastPoints := 0
	for i := 0; i < 200; i++ {
		p.Energy.Remaining = 10
		if !engine.Predict(DirectionUp) {
			t.Fatalf("round %d: prediction rejected", i)
		}
		clock.Advance(4 * time.Second)
		result := engine.Resolve()
		engine.Reset()

		if p.Points < lastPoints {
			t.Fatalf("round %d: points decreased from %d to %d", i, lastPoints, p.Points)
		}
		if !result.Correct && p.WinStreak != 0 {
			t.Fatalf("round %d: streak not reset on loss", i)
		}
		lastPoints = p.Points
	}
}
