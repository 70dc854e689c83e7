package mpc

import (
	"math"
	"math/rand"
	"testing"
)

// lineAgent moves along x by u[0]*dt and draws actions from a script when one
// is given, otherwise uniformly from [-1, 1].
type lineAgent struct {
	x      State
	goal   Pose
	script []Action
	draws  int
	rng    *rand.Rand
}

func (l *lineAgent) GoalPose() Pose             { return l.goal }
func (l *lineAgent) State() State               { return l.x.Clone() }
func (l *lineAgent) PoseFromState(x State) Pose { return Pose{x[0], 0, 0} }

func (l *lineAgent) RandomAction() Action {
	defer func() { l.draws++ }()
	if l.script != nil {
		return l.script[l.draws%len(l.script)].Clone()
	}
	return Action{l.rng.Float64()*2 - 1}
}

func (l *lineAgent) Query(x State, u Action, dt float64) State {
	return State{x[0] + u[0]*dt}
}

func (l *lineAgent) Take(u Action, dt float64) {
	l.x = l.Query(l.x, u, dt)
}

func TestCostZeroRolloutIsGoalDist(t *testing.T) {
	a := &lineAgent{x: State{0.25}, goal: Pose{1, 0, 0}}

	for _, u := range []Action{{-1}, {0}, {0.5}, {1}} {
		if got, want := Cost(a, u, 0, 0.01), GoalDist(a); got != want {
			t.Errorf("Cost(%v, 0) = %v, want %v", u, got, want)
		}
	}
}

func TestCostRollsOutConstantAction(t *testing.T) {
	a := &lineAgent{x: State{0}, goal: Pose{1, 0, 0}}

	got := Cost(a, Action{1}, 10, 0.01)
	if math.Abs(got-0.9) > 1e-12 {
		t.Errorf("expected cost 0.9, got %v", got)
	}
	if a.x[0] != 0 {
		t.Errorf("rollout mutated agent state: %v", a.x)
	}
}

func TestNextBestActionZeroIters(t *testing.T) {
	a := &lineAgent{
		x:      State{0},
		goal:   Pose{1, 0, 0},
		script: []Action{{0.3}, {1}},
	}

	u, cost := NextBestAction(a, 0, 10, 0.01)
	if u[0] != 0.3 {
		t.Errorf("expected initial draw 0.3, got %v", u[0])
	}
	if want := Cost(a, Action{0.3}, 10, 0.01); cost != want {
		t.Errorf("expected cost %v, got %v", want, cost)
	}
	if a.draws != 1 {
		t.Errorf("expected exactly 1 draw, got %d", a.draws)
	}
}

func TestNextBestActionTieKeepsIncumbent(t *testing.T) {
	// Moving backwards or forwards by the same amount from the goal costs the same.
	a := &lineAgent{
		x:      State{0},
		goal:   Pose{0, 0, 0},
		script: []Action{{-0.5}, {0.5}, {-0.5}, {0.5}},
	}

	u, _ := NextBestAction(a, 3, 10, 0.01)
	if u[0] != -0.5 {
		t.Errorf("tie should keep earlier incumbent -0.5, got %v", u[0])
	}
}

func TestNextBestActionPicksStrictlyLower(t *testing.T) {
	a := &lineAgent{
		x:      State{0},
		goal:   Pose{1, 0, 0},
		script: []Action{{-1}, {0.2}, {1}, {0.7}},
	}

	u, cost := NextBestAction(a, 3, 10, 0.01)
	if u[0] != 1 {
		t.Errorf("expected best action 1, got %v", u[0])
	}
	if math.Abs(cost-0.9) > 1e-12 {
		t.Errorf("expected cost 0.9, got %v", cost)
	}
}

func TestNextBestActionParallelMatchesSequential(t *testing.T) {
	for _, workers := range []int{1, 2, 4, 8} {
		seq := &lineAgent{x: State{0.1}, goal: Pose{0.6, 0, 0}, rng: rand.New(rand.NewSource(7))}
		par := &lineAgent{x: State{0.1}, goal: Pose{0.6, 0, 0}, rng: rand.New(rand.NewSource(7))}

		u1, c1 := NextBestAction(seq, 1000, 10, 0.01)
		u2, c2 := NextBestActionParallel(par, 1000, 10, 0.01, workers)

		if u1[0] != u2[0] || c1 != c2 {
			t.Errorf("workers=%d: sequential (%v, %v) != parallel (%v, %v)", workers, u1, c1, u2, c2)
		}
	}
}

func TestNextBestActionMonotoneInSamples(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	trials := 300

	mean := func(iters int) float64 {
		sum := 0.0
		for i := 0; i < trials; i++ {
			a := &lineAgent{x: State{0}, goal: Pose{0.05, 0, 0}, rng: rng}
			_, c := NextBestAction(a, iters, 10, 0.01)
			sum += c
		}
		return sum / float64(trials)
	}

	prev := math.Inf(1)
	for _, iters := range []int{0, 4, 32, 256} {
		m := mean(iters)
		if m > prev {
			t.Errorf("mean best cost increased at %d samples: %v > %v", iters, m, prev)
		}
		prev = m
	}
}

func TestAtGoalBoundary(t *testing.T) {
	tests := []struct {
		name string
		x    float64
		eps  float64
		want bool
	}{
		{"exact", 1.0, 0, true},
		{"on boundary", 0.5, 0.5, true},
		{"inside", 0.75, 0.5, true},
		{"outside", 0.25, 0.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &lineAgent{x: State{tt.x}, goal: Pose{1, 0, 0}}
			if got := AtGoal(a, tt.eps); got != tt.want {
				t.Errorf("AtGoal(%v) with dist %v = %v, want %v", tt.eps, GoalDist(a), got, tt.want)
			}
		})
	}
}

func TestParallelForCoversRange(t *testing.T) {
	for _, n := range []int{0, 1, 63, 64, 65, 1000, 1001} {
		seen := make([]int, n)
		ParallelFor(n, 16, 4, func(start, end int) {
			for i := start; i < end; i++ {
				seen[i]++
			}
		})
		for i, c := range seen {
			if c != 1 {
				t.Fatalf("n=%d: index %d visited %d times", n, i, c)
			}
		}
	}
}

func TestBounds(t *testing.T) {
	b := Bounds{Lower: []float64{-1, -0.1}, Upper: []float64{1, 0.1}}
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		v := b.Uniform(rng.Float64)
		if !b.Contains(v) {
			t.Fatalf("sample %v outside bounds", v)
		}
	}

	if b.Contains([]float64{0}) {
		t.Error("dimension mismatch should not be contained")
	}
	if Clamp(2, -1, 1) != 1 || Clamp(-2, -1, 1) != -1 || Clamp(0.5, -1, 1) != 0.5 {
		t.Error("Clamp failed")
	}
}
