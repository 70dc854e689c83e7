package mpc

// CurrentPose projects the agent's current state.
func CurrentPose(a Agent) Pose {
	return a.PoseFromState(a.State())
}

func GoalDist(a Agent) float64 {
	return CurrentPose(a).Sub(a.GoalPose()).Len()
}

// AtGoal reports whether the agent is within eps of its goal, boundary included.
func AtGoal(a Agent, eps float64) bool {
	return GoalDist(a) <= eps
}

// Cost rolls the current state forward rolloutIters times holding u constant and
// returns the distance between the final pose and the goal. Zero iterations give
// the current goal distance.
func Cost(a Agent, u Action, rolloutIters int, dt float64) float64 {
	return rollout(a, a.State(), u, rolloutIters, dt)
}

func rollout(a Agent, x State, u Action, rolloutIters int, dt float64) float64 {
	for i := 0; i < rolloutIters; i++ {
		x = a.Query(x, u, dt)
	}
	return a.PoseFromState(x).Sub(a.GoalPose()).Len()
}

// NextBestAction is a random-shooting search. The incumbent starts as one random
// action; each of the controlIters candidates replaces it only when strictly
// cheaper, so ties keep the earlier draw.
func NextBestAction(a Agent, controlIters, rolloutIters int, dt float64) (Action, float64) {
	x0 := a.State()

	best := a.RandomAction()
	bestCost := rollout(a, x0, best, rolloutIters, dt)

	for i := 0; i < controlIters; i++ {
		candidate := a.RandomAction()
		cost := rollout(a, x0, candidate, rolloutIters, dt)
		if cost < bestCost {
			best, bestCost = candidate, cost
		}
	}

	return best, bestCost
}

// NextBestActionParallel returns the same action as NextBestAction for the same
// random sequence. Candidates are drawn up front on the calling goroutine, their
// costs are evaluated across workers, and the reduction runs in draw order.
func NextBestActionParallel(a Agent, controlIters, rolloutIters int, dt float64, workers int) (Action, float64) {
	if workers <= 1 {
		return NextBestAction(a, controlIters, rolloutIters, dt)
	}

	x0 := a.State()
	n := controlIters + 1
	candidates := make([]Action, n)
	for i := range candidates {
		candidates[i] = a.RandomAction()
	}

	costs := make([]float64, n)
	ParallelFor(n, candidateChunk, workers, func(start, end int) {
		for i := start; i < end; i++ {
			costs[i] = rollout(a, x0, candidates[i], rolloutIters, dt)
		}
	})

	best, bestCost := candidates[0], costs[0]
	for i := 1; i < n; i++ {
		if costs[i] < bestCost {
			best, bestCost = candidates[i], costs[i]
		}
	}

	return best, bestCost
}
