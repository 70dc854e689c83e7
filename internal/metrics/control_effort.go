package metrics

import (
	"math"

	"github.com/san-kum/mpcsim/internal/mpc"
)

type effort struct {
	sum   float64
	steps int
}

// ControlEffort is the L1 norm of the applied action averaged over each
// agent's steps, then over agents, so long-running agents do not dominate.
type ControlEffort struct {
	name   string
	agents map[int]*effort
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name:   "control_effort",
		agents: make(map[int]*effort),
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) OnStep(step, idx int, a mpc.Agent, u mpc.Action, cost float64) {
	e, ok := c.agents[idx]
	if !ok {
		e = &effort{}
		c.agents[idx] = e
	}
	for _, val := range u {
		e.sum += math.Abs(val)
	}
	e.steps++
}

// Agent returns the mean effort of one agent, 0 if it was never observed.
func (c *ControlEffort) Agent(idx int) float64 {
	e, ok := c.agents[idx]
	if !ok || e.steps == 0 {
		return 0
	}
	return e.sum / float64(e.steps)
}

func (c *ControlEffort) Value() float64 {
	if len(c.agents) == 0 {
		return 0
	}
	total := 0.0
	for idx := range c.agents {
		total += c.Agent(idx)
	}
	return total / float64(len(c.agents))
}

func (c *ControlEffort) Reset() {
	c.agents = make(map[int]*effort)
}
