package metrics

import "github.com/san-kum/mpcsim/internal/mpc"

// GoalDistance reports the mean of each agent's latest goal distance.
type GoalDistance struct {
	name string
	last map[int]float64
}

func NewGoalDistance() *GoalDistance {
	return &GoalDistance{
		name: "goal_distance",
		last: make(map[int]float64),
	}
}

func (g *GoalDistance) Name() string { return g.name }

func (g *GoalDistance) OnStep(step, idx int, a mpc.Agent, u mpc.Action, cost float64) {
	g.last[idx] = mpc.GoalDist(a)
}

func (g *GoalDistance) Value() float64 {
	if len(g.last) == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range g.last {
		sum += d
	}
	return sum / float64(len(g.last))
}

func (g *GoalDistance) Reset() {
	g.last = make(map[int]float64)
}

// BestCost is the mean rollout cost of the actions the search selected.
type BestCost struct {
	name    string
	sum     float64
	samples int
}

func NewBestCost() *BestCost {
	return &BestCost{name: "best_cost"}
}

func (b *BestCost) Name() string { return b.name }

func (b *BestCost) OnStep(step, idx int, a mpc.Agent, u mpc.Action, cost float64) {
	b.sum += cost
	b.samples++
}

func (b *BestCost) Value() float64 {
	if b.samples == 0 {
		return 0
	}
	return b.sum / float64(b.samples)
}

func (b *BestCost) Reset() {
	b.sum = 0
	b.samples = 0
}
