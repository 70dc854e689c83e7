package models

import (
	"math"
	"math/rand"

	"github.com/san-kum/mpcsim/internal/mpc"
)

const (
	accelActionLimit   = 0.1
	accelVelocityLimit = 1.0
)

// AccelDiffDrive integrates acceleration commands: state (x, y, heading, v, ω),
// action (a_v, a_ω) in [-0.1, 0.1]. v and ω stay within [-1, 1].
type AccelDiffDrive struct {
	state mpc.State
	goal  mpc.Pose
	rng   *rand.Rand
}

// NewAccelDiffDrive panics unless x has 5 components.
func NewAccelDiffDrive(x mpc.State, goal mpc.Pose, rng *rand.Rand) *AccelDiffDrive {
	checkDim(KindAccelDiffDrive, x, 5)
	return &AccelDiffDrive{
		state: x.Clone(),
		goal:  goal,
		rng:   defaultRand(rng),
	}
}

func (a *AccelDiffDrive) StateDim() int  { return 5 }
func (a *AccelDiffDrive) ActionDim() int { return 2 }

func (a *AccelDiffDrive) ActionBounds() mpc.Bounds { return accelActionBounds() }

// StateBounds only constrains the velocity terms.
func (a *AccelDiffDrive) StateBounds() mpc.Bounds {
	inf := math.Inf(1)
	return mpc.Bounds{
		Lower: []float64{-inf, -inf, -inf, -accelVelocityLimit, -accelVelocityLimit},
		Upper: []float64{inf, inf, inf, accelVelocityLimit, accelVelocityLimit},
	}
}

func (a *AccelDiffDrive) Query(x mpc.State, u mpc.Action, dt float64) mpc.State {
	v, omega := x[3], x[4]
	return mpc.State{
		x[0] + v*math.Cos(omega)*dt,
		x[1] + v*math.Sin(omega)*dt,
		x[2] + omega*dt,
		mpc.Clamp(v+u[0]*dt, -accelVelocityLimit, accelVelocityLimit),
		mpc.Clamp(omega+u[1]*dt, -accelVelocityLimit, accelVelocityLimit),
	}
}

func (a *AccelDiffDrive) Take(u mpc.Action, dt float64) {
	a.state = a.Query(a.state, u, dt)
}

func (a *AccelDiffDrive) GoalPose() mpc.Pose { return a.goal }

func (a *AccelDiffDrive) State() mpc.State { return a.state.Clone() }

func (a *AccelDiffDrive) PoseFromState(x mpc.State) mpc.Pose {
	return mpc.Pose{x[0], x[1], x[2]}
}

func (a *AccelDiffDrive) RandomAction() mpc.Action {
	return accelActionBounds().Uniform(a.rng.Float64)
}

func accelActionBounds() mpc.Bounds {
	return mpc.Bounds{
		Lower: []float64{-accelActionLimit, -accelActionLimit},
		Upper: []float64{accelActionLimit, accelActionLimit},
	}
}
