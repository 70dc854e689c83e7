package metrics

import "github.com/san-kum/mpcsim/internal/mpc"

type Sample struct {
	Step     int
	Agent    int
	Pose     mpc.Pose
	Action   mpc.Action
	Cost     float64
	GoalDist float64
}

// Trajectory records one sample per agent per step.
type Trajectory struct {
	Samples []Sample
}

func NewTrajectory() *Trajectory {
	return &Trajectory{Samples: make([]Sample, 0)}
}

// Start records every agent's pose before the first step as step 0, with no
// action and the current goal distance as its cost.
func (t *Trajectory) Start(agents []mpc.Agent) {
	for i, a := range agents {
		d := mpc.GoalDist(a)
		t.Samples = append(t.Samples, Sample{
			Step:     0,
			Agent:    i,
			Pose:     mpc.CurrentPose(a),
			Action:   mpc.Action{},
			Cost:     d,
			GoalDist: d,
		})
	}
}

func (t *Trajectory) OnStep(step, idx int, a mpc.Agent, u mpc.Action, cost float64) {
	t.Samples = append(t.Samples, Sample{
		Step:     step,
		Agent:    idx,
		Pose:     mpc.CurrentPose(a),
		Action:   u.Clone(),
		Cost:     cost,
		GoalDist: mpc.GoalDist(a),
	})
}

// Agent returns the goal distance series of one agent.
func (t *Trajectory) Agent(idx int) []float64 {
	out := make([]float64, 0)
	for _, s := range t.Samples {
		if s.Agent == idx {
			out = append(out, s.GoalDist)
		}
	}
	return out
}
