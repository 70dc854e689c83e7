package metrics

import "github.com/san-kum/mpcsim/internal/mpc"

type stateBounded interface {
	StateBounds() mpc.Bounds
}

// Saturation is the fraction of agent steps that ended with some bounded state
// component pinned at its limit. Agents without state bounds never saturate.
type Saturation struct {
	name      string
	saturated int
	samples   int
}

func NewSaturation() *Saturation {
	return &Saturation{name: "saturation"}
}

func (s *Saturation) Name() string {
	return s.name
}

func (s *Saturation) OnStep(step, idx int, a mpc.Agent, u mpc.Action, cost float64) {
	s.samples++

	sb, ok := a.(stateBounded)
	if !ok {
		return
	}
	b := sb.StateBounds()
	for i, val := range a.State() {
		if i >= b.Dim() {
			break
		}
		if val <= b.Lower[i] || val >= b.Upper[i] {
			s.saturated++
			break
		}
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.saturated) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.saturated = 0
	s.samples = 0
}
