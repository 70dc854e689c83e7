package mpc

import "github.com/go-gl/mathgl/mgl64"

// Pose is (x, y, heading), whatever the model's internal state looks like.
type Pose = mgl64.Vec3

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

type Action []float64

func (u Action) Clone() Action {
	c := make(Action, len(u))
	copy(c, u)
	return c
}

// Agent is implemented by every dynamics model. Only the primitives live here;
// cost and search are derived in this package from them.
type Agent interface {
	GoalPose() Pose
	// State returns a snapshot of the current state.
	State() State
	PoseFromState(x State) Pose
	RandomAction() Action
	// Query is pure: it returns the state reached from x after applying u for dt.
	Query(x State, u Action, dt float64) State
	// Take advances the agent's own state. It is the only mutating primitive.
	Take(u Action, dt float64)
}

// Bounds is a closed box, one interval per component.
type Bounds struct {
	Lower []float64
	Upper []float64
}

func (b Bounds) Dim() int { return len(b.Lower) }

func (b Bounds) Contains(v []float64) bool {
	if len(v) != len(b.Lower) {
		return false
	}
	for i, x := range v {
		if x < b.Lower[i] || x > b.Upper[i] {
			return false
		}
	}
	return true
}

// Uniform draws one value per component, each from its own interval.
func (b Bounds) Uniform(next func() float64) []float64 {
	v := make([]float64, len(b.Lower))
	for i := range v {
		v[i] = next()*(b.Upper[i]-b.Lower[i]) + b.Lower[i]
	}
	return v
}

func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
