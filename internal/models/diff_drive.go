package models

import (
	"math"
	"math/rand"

	"github.com/san-kum/mpcsim/internal/mpc"
)

// DiffDrive is a kinematic differential drive: state (x, y, heading), action
// (v, ω) with both components in [-1, 1].
type DiffDrive struct {
	state mpc.State
	goal  mpc.Pose
	rng   *rand.Rand
}

// NewDiffDrive panics unless x has 3 components; Registry.GetModel returns an
// error instead.
func NewDiffDrive(x mpc.State, goal mpc.Pose, rng *rand.Rand) *DiffDrive {
	checkDim(KindDiffDrive, x, 3)
	return &DiffDrive{
		state: x.Clone(),
		goal:  goal,
		rng:   defaultRand(rng),
	}
}

func (d *DiffDrive) StateDim() int  { return 3 }
func (d *DiffDrive) ActionDim() int { return 2 }

func (d *DiffDrive) ActionBounds() mpc.Bounds { return diffDriveActionBounds() }

// Query rotates the position update by the action's ω rather than by the state
// heading. Not a standard unicycle; kept as-is until the model is confirmed.
func (d *DiffDrive) Query(x mpc.State, u mpc.Action, dt float64) mpc.State {
	v, omega := u[0], u[1]
	return mpc.State{
		x[0] + v*math.Cos(omega)*dt,
		x[1] + v*math.Sin(omega)*dt,
		x[2] + omega*dt,
	}
}

func (d *DiffDrive) Take(u mpc.Action, dt float64) {
	d.state = d.Query(d.state, u, dt)
}

func (d *DiffDrive) GoalPose() mpc.Pose { return d.goal }

func (d *DiffDrive) State() mpc.State { return d.state.Clone() }

func (d *DiffDrive) PoseFromState(x mpc.State) mpc.Pose {
	return mpc.Pose{x[0], x[1], x[2]}
}

func (d *DiffDrive) RandomAction() mpc.Action {
	return diffDriveActionBounds().Uniform(d.rng.Float64)
}

func diffDriveActionBounds() mpc.Bounds {
	return mpc.Bounds{
		Lower: []float64{-1, -1},
		Upper: []float64{1, 1},
	}
}
