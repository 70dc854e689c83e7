package scene_test

import (
	"context"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mpcsim/internal/models"
	"github.com/san-kum/mpcsim/internal/mpc"
	"github.com/san-kum/mpcsim/internal/scene"
)

type countingObserver struct {
	calls  int
	agents map[int]int
	last   int
}

func (c *countingObserver) OnStep(step, idx int, a mpc.Agent, u mpc.Action, cost float64) {
	c.calls++
	c.agents[idx]++
	c.last = step
}

func seeded(seed int64) *rand.Rand { return rand.New(rand.NewSource(seed)) }

func testParams() scene.Params {
	return scene.Params{
		Dt:           0.01,
		Eps:          0.01,
		ControlIters: 100,
		RolloutIters: 10,
		Workers:      1,
	}
}

var _ = Describe("Scene", func() {
	Describe("Done", func() {
		It("is true when only one of two agents is within tolerance", func() {
			arrived := models.NewDiffDrive(mpc.State{1, 0, 0}, mpc.Pose{1, 0, 0}, seeded(1))
			away := models.NewDiffDrive(mpc.State{0, 0, 0}, mpc.Pose{5, 5, 0}, seeded(2))

			s := scene.New(testParams(), away, arrived)
			Expect(s.Done()).To(BeTrue())
		})

		It("is false when no agent is within tolerance", func() {
			a := models.NewDiffDrive(mpc.State{0, 0, 0}, mpc.Pose{1, 0, 0}, seeded(1))
			b := models.NewAccelDiffDrive(mpc.State{0, 0, 0, 0, 0}, mpc.Pose{0, 1, 0}, seeded(2))

			Expect(scene.New(testParams(), a, b).Done()).To(BeFalse())
		})

		It("includes the tolerance boundary", func() {
			p := testParams()
			p.Eps = 0.5
			a := models.NewDiffDrive(mpc.State{0.5, 0, 0}, mpc.Pose{1, 0, 0}, seeded(1))

			Expect(scene.New(p, a).Done()).To(BeTrue())
		})

		It("is false for an empty scene", func() {
			Expect(scene.New(testParams()).Done()).To(BeFalse())
		})
	})

	Describe("RunOnce", func() {
		It("moves every agent once and notifies observers in agent order", func() {
			a := models.NewDiffDrive(mpc.State{0, 0, 0}, mpc.Pose{1, 0, 0}, seeded(1))
			b := models.NewAccelDiffDrive(mpc.State{0, 0, 0, 0, 0}, mpc.Pose{1, 0, 0}, seeded(2))
			s := scene.New(testParams(), a, b)

			obs := &countingObserver{agents: map[int]int{}}
			s.AddObserver(obs)

			s.RunOnce()

			Expect(s.Steps()).To(Equal(1))
			Expect(obs.calls).To(Equal(2))
			Expect(obs.agents).To(Equal(map[int]int{0: 1, 1: 1}))
			Expect(obs.last).To(Equal(1))
			Expect(a.State()).NotTo(Equal(mpc.State{0, 0, 0}))
			Expect(b.State()[3:]).NotTo(Equal(mpc.State{0, 0}))
		})

		It("gives the same trajectory with and without workers", func() {
			build := func(workers int) *scene.Scene {
				p := testParams()
				p.Workers = workers
				return scene.New(p,
					models.NewDiffDrive(mpc.State{0, 0, 0}, mpc.Pose{1, 0, 0}, seeded(10)),
					models.NewAccelDiffDrive(mpc.State{0, 0, 0, 0, 0}, mpc.Pose{1, 1, 0}, seeded(11)),
				)
			}

			seq, par := build(1), build(4)
			for i := 0; i < 20; i++ {
				seq.RunOnce()
				par.RunOnce()
			}

			for i := range seq.Agents() {
				Expect(par.Agents()[i].State()).To(Equal(seq.Agents()[i].State()))
			}
		})
	})

	Describe("RunContext", func() {
		It("drives a differential drive agent to its goal", func() {
			a := models.NewDiffDrive(mpc.State{0, 0, 0}, mpc.Pose{1, 0, 0}, seeded(2024))
			s := scene.New(testParams(), a)

			start := mpc.GoalDist(a)
			for i := 0; i < 50; i++ {
				s.RunOnce()
			}
			Expect(mpc.GoalDist(a)).To(BeNumerically("<", start))

			_, err := s.RunContext(context.Background(), 2000)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Steps()).To(BeNumerically("<", 2000))
			Expect(mpc.GoalDist(a)).To(BeNumerically("<=", 0.01))
			Expect(s.Done()).To(BeTrue())
		})

		It("stops at the step cap when the goal is out of reach", func() {
			a := models.NewAccelDiffDrive(mpc.State{0, 0, 0, 0, 0}, mpc.Pose{100, 100, 0}, seeded(3))
			s := scene.New(testParams(), a)

			n, err := s.RunContext(context.Background(), 5)
			Expect(err).To(MatchError(scene.ErrStepLimit))
			Expect(n).To(Equal(5))
			Expect(s.Steps()).To(Equal(5))
		})

		It("returns the context error when canceled", func() {
			a := models.NewDiffDrive(mpc.State{0, 0, 0}, mpc.Pose{100, 0, 0}, seeded(4))
			s := scene.New(testParams(), a)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			n, err := s.RunContext(ctx, 0)
			Expect(err).To(MatchError(context.Canceled))
			Expect(n).To(BeZero())
		})

		It("rejects an empty scene", func() {
			_, err := scene.New(testParams()).RunContext(context.Background(), 10)
			Expect(err).To(MatchError(scene.ErrEmptyScene))
		})
	})

	Describe("Run", func() {
		It("returns without stepping when an agent already arrived", func() {
			a := models.NewDiffDrive(mpc.State{1, 0, 0}, mpc.Pose{1, 0, 0}, seeded(1))
			s := scene.New(testParams(), a)

			s.Run()
			Expect(s.Steps()).To(BeZero())
		})

		It("steps until the closest agent arrives", func() {
			p := testParams()
			p.Eps = 0.05
			near := models.NewDiffDrive(mpc.State{0.8, 0, 0}, mpc.Pose{1, 0, 0}, seeded(5))
			far := models.NewDiffDrive(mpc.State{0, 0, 0}, mpc.Pose{50, 0, 0}, seeded(6))
			s := scene.New(p, far, near)

			s.Run()
			Expect(mpc.AtGoal(near, p.Eps)).To(BeTrue())
			Expect(mpc.AtGoal(far, p.Eps)).To(BeFalse())
		})
	})
})
