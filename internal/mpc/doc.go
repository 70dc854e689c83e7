// Package mpc provides the sampling-based model predictive control core.
//
// The package defines the agent contract and the control logic built on it:
//
//   - [Pose]: position and heading used for goal comparison
//   - [State], [Action]: model-specific vectors
//   - [Agent]: dynamics primitives every model implements
//   - [Cost]: constant-action rollout scored by terminal pose distance
//   - [NextBestAction]: random-shooting search over sampled actions
//
// # Example
//
//	a := models.NewDiffDrive(mpc.State{0, 0, 0}, mpc.Pose{1, 0, 0}, rng)
//	u, cost := mpc.NextBestAction(a, 100, 10, 0.01)
//	a.Take(u, 0.01)
//
// # Thread Safety
//
// Search and cost evaluation only read the agent, so candidate costs may be
// evaluated concurrently (see [NextBestActionParallel]). [Agent.Take] and
// [Agent.RandomAction] mutate the agent and must not race with anything else.
package mpc
