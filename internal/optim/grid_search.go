package optim

import (
	"context"
	"errors"
	"math"

	"github.com/san-kum/mpcsim/internal/scene"
)

// Build returns a fresh scene for one trial of a parameter combination.
type Build func(params map[string]float64, trial int) (*scene.Scene, error)

// GridSearch tries every combination of parameter values and keeps the one
// whose scenes reach a goal in the fewest steps on average. Trials that hit
// the step cap score the cap.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	trials     int
	maxSteps   int
}

func NewGridSearch(params []string, ranges [][]float64, trials, maxSteps int) *GridSearch {
	if trials < 1 {
		trials = 1
	}
	return &GridSearch{paramNames: params, ranges: ranges, trials: trials, maxSteps: maxSteps}
}

func (g *GridSearch) Search(ctx context.Context, build Build) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), build, &best, &bestParams); err != nil {
		return nil, 0, err
	}

	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build Build,
	best *float64,
	bestParams *map[string]float64,
) error {
	if depth == len(g.paramNames) {
		score, err := g.score(ctx, current, build)
		if err != nil {
			return err
		}

		if score < *best {
			*best = score
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, build, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

func (g *GridSearch) score(ctx context.Context, params map[string]float64, build Build) (float64, error) {
	total := 0.0
	for trial := 0; trial < g.trials; trial++ {
		s, err := build(params, trial)
		if err != nil {
			return 0, err
		}

		n, err := s.RunContext(ctx, g.maxSteps)
		switch {
		case errors.Is(err, scene.ErrStepLimit):
		case err != nil:
			return 0, err
		}
		total += float64(n)
	}
	return total / float64(g.trials), nil
}
