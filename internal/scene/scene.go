package scene

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/san-kum/mpcsim/internal/mpc"
)

// Params are the run constants shared by every agent for the whole run.
type Params struct {
	Dt           float64
	Eps          float64
	ControlIters int
	RolloutIters int
	// Workers > 1 fans out candidate costs and agents within a step.
	Workers int
	Seed    int64
}

func DefaultParams() Params {
	return Params{
		Dt:           0.01,
		Eps:          0.1,
		ControlIters: 10000,
		RolloutIters: 10,
		Workers:      1,
	}
}

// Observer is notified once per agent after every step, in agent order.
type Observer interface {
	OnStep(step, idx int, a mpc.Agent, u mpc.Action, cost float64)
}

type Scene struct {
	agents    []mpc.Agent
	params    Params
	observers []Observer
	logger    *log.Logger
	steps     int
}

func New(params Params, agents ...mpc.Agent) *Scene {
	return &Scene{
		agents:    agents,
		params:    params,
		observers: make([]Observer, 0),
		logger:    log.New(io.Discard),
	}
}

func (s *Scene) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Scene) SetLogger(l *log.Logger) {
	if l != nil {
		s.logger = l
	}
}

func (s *Scene) Agents() []mpc.Agent { return s.agents }
func (s *Scene) Params() Params      { return s.params }

// Steps counts RunOnce calls since the scene was built.
func (s *Scene) Steps() int { return s.steps }

// RunOnce picks the best sampled action for every agent and applies it with the
// same dt. Agents are independent, so with Workers > 1 they are updated
// concurrently; the call returns only when all of them have moved.
func (s *Scene) RunOnce() {
	p := s.params
	actions := make([]mpc.Action, len(s.agents))
	costs := make([]float64, len(s.agents))

	step := func(i int) {
		a := s.agents[i]
		u, cost := mpc.NextBestActionParallel(a, p.ControlIters, p.RolloutIters, p.Dt, p.Workers)
		a.Take(u, p.Dt)
		actions[i], costs[i] = u, cost
	}

	if p.Workers > 1 && len(s.agents) > 1 {
		var wg sync.WaitGroup
		for i := range s.agents {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				step(idx)
			}(i)
		}
		wg.Wait()
	} else {
		for i := range s.agents {
			step(i)
		}
	}

	s.steps++

	for i, a := range s.agents {
		for _, o := range s.observers {
			o.OnStep(s.steps, i, a, actions[i], costs[i])
		}
	}
}

// Done reports whether any agent is within Eps of its goal. One arrival ends
// the run even if other agents are still travelling.
func (s *Scene) Done() bool {
	for _, a := range s.agents {
		if mpc.AtGoal(a, s.params.Eps) {
			return true
		}
	}
	return false
}

// Run steps until Done. There is no step cap: an unreachable goal never
// returns. Use RunContext for bounded execution.
func (s *Scene) Run() {
	for !s.Done() {
		s.RunOnce()
	}
}

// RunContext steps until Done, the context ends, or maxSteps steps have been
// taken (maxSteps <= 0 means no cap). It returns the number of steps taken.
func (s *Scene) RunContext(ctx context.Context, maxSteps int) (int, error) {
	if len(s.agents) == 0 {
		return 0, ErrEmptyScene
	}

	n := 0
	for !s.Done() {
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		default:
		}

		if maxSteps > 0 && n >= maxSteps {
			return n, fmt.Errorf("%w: %d steps", ErrStepLimit, maxSteps)
		}

		s.RunOnce()
		n++

		if n%100 == 0 {
			s.logger.Debug("step", "n", s.steps, "closest", s.closest())
		}
	}

	for i, a := range s.agents {
		if mpc.AtGoal(a, s.params.Eps) {
			s.logger.Info("agent reached goal", "agent", i, "steps", s.steps, "dist", mpc.GoalDist(a))
		}
	}

	return n, nil
}

func (s *Scene) closest() float64 {
	best := -1.0
	for _, a := range s.agents {
		if d := mpc.GoalDist(a); best < 0 || d < best {
			best = d
		}
	}
	return best
}
