package metrics

import "github.com/san-kum/mpcsim/internal/mpc"

// Metric folds per-step observations from a scene into one value.
type Metric interface {
	Name() string
	OnStep(step, idx int, a mpc.Agent, u mpc.Action, cost float64)
	Value() float64
	Reset()
}

func Defaults() []Metric {
	return []Metric{
		NewGoalDistance(),
		NewControlEffort(),
		NewBestCost(),
		NewSaturation(),
	}
}

// Collect reads every metric into a map keyed by name.
func Collect(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
