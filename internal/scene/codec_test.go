package scene_test

import (
	"math"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mpcsim/internal/models"
	"github.com/san-kum/mpcsim/internal/mpc"
	"github.com/san-kum/mpcsim/internal/scene"
)

func mixedScene() *scene.Scene {
	return scene.New(testParams(),
		models.NewDiffDrive(mpc.State{0.1, 1.0 / 3, -math.Pi}, mpc.Pose{1, 0, 0}, seeded(1)),
		models.NewAccelDiffDrive(mpc.State{1e-300, -2.5e17, 0.7, -1, 1}, mpc.Pose{math.E, -0.2, 1e-9}, seeded(2)),
		models.NewDiffDrive(mpc.State{0, 0, 0}, mpc.Pose{0.30000000000000004, 5, -7}, seeded(3)),
	)
}

func expectSameAgents(got, want *scene.Scene) {
	Expect(got.Agents()).To(HaveLen(len(want.Agents())))
	for i, a := range want.Agents() {
		b := got.Agents()[i]

		wantKind, err := models.KindOf(a)
		Expect(err).NotTo(HaveOccurred())
		gotKind, err := models.KindOf(b)
		Expect(err).NotTo(HaveOccurred())

		Expect(gotKind).To(Equal(wantKind))
		Expect(b.State()).To(Equal(a.State()))
		Expect(b.GoalPose()).To(Equal(a.GoalPose()))
	}
}

var _ = Describe("Persistence", func() {
	for _, format := range []scene.Format{scene.FormatYAML, scene.FormatTOML} {
		format := format

		It("round-trips mixed agents exactly through "+format.String(), func() {
			want := mixedScene()

			data, err := scene.Encode(want, format)
			Expect(err).NotTo(HaveOccurred())

			got, err := scene.Decode(data, format, testParams())
			Expect(err).NotTo(HaveOccurred())
			expectSameAgents(got, want)
		})
	}

	It("infers the model from the state length when kind is missing", func() {
		data := []byte(`
[[agents]]
state = [0.0, 0.0, 0.0, 0.0, 0.0]
goal = [1.0, 0.0, 0.0]

[[agents]]
state = [0.5, 0.5, 0.0]
goal = [1.0, 1.0, 0.0]
`)
		s, err := scene.Decode(data, scene.FormatTOML, testParams())
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Agents()).To(HaveLen(2))
		Expect(s.Agents()[0]).To(BeAssignableToTypeOf(&models.AccelDiffDrive{}))
		Expect(s.Agents()[1]).To(BeAssignableToTypeOf(&models.DiffDrive{}))
	})

	DescribeTable("rejects malformed documents",
		func(data string, format scene.Format) {
			s, err := scene.Decode([]byte(data), format, testParams())
			Expect(err).To(HaveOccurred())
			Expect(s).To(BeNil())
		},
		Entry("broken yaml", "agents: [", scene.FormatYAML),
		Entry("broken toml", "[[agents]\nstate = ", scene.FormatTOML),
		Entry("short goal", "agents:\n  - state: [0, 0, 0]\n    goal: [1, 0]\n", scene.FormatYAML),
		Entry("unknown state length", "agents:\n  - state: [0, 0, 0, 0]\n    goal: [1, 0, 0]\n", scene.FormatYAML),
		Entry("unknown kind", "agents:\n  - kind: hovercraft\n    state: [0, 0, 0]\n    goal: [1, 0, 0]\n", scene.FormatYAML),
		Entry("kind and state disagree", "agents:\n  - kind: accel_diff_drive\n    state: [0, 0, 0]\n    goal: [1, 0, 0]\n", scene.FormatYAML),
	)

	It("returns no scene when the file is missing", func() {
		s, err := scene.Load(filepath.Join(GinkgoT().TempDir(), "missing.yaml"), testParams())
		Expect(err).To(HaveOccurred())
		Expect(s).To(BeNil())
	})

	It("saves and loads through files of either format", func() {
		dir := GinkgoT().TempDir()
		want := mixedScene()

		for _, name := range []string{"scene.yaml", "scene.toml"} {
			path := filepath.Join(dir, name)
			Expect(os.WriteFile(path, []byte("stale contents that are longer than needed"), 0644)).To(Succeed())

			Expect(want.Save(path)).To(Succeed())

			got, err := scene.Load(path, testParams())
			Expect(err).NotTo(HaveOccurred())
			expectSameAgents(got, want)
		}

		entries, err := os.ReadDir(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(2))
	})

	It("saves readable files for new and existing targets", func() {
		dir := GinkgoT().TempDir()

		fresh := filepath.Join(dir, "fresh.toml")
		Expect(mixedScene().Save(fresh)).To(Succeed())
		info, err := os.Stat(fresh)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Mode().Perm()).To(Equal(os.FileMode(0644)))

		Expect(mixedScene().Save(fresh)).To(Succeed())
		info, err = os.Stat(fresh)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Mode().Perm()).To(Equal(os.FileMode(0644)))
	})

	It("fails to save into a missing directory", func() {
		path := filepath.Join(GinkgoT().TempDir(), "nope", "scene.yaml")
		Expect(mixedScene().Save(path)).NotTo(Succeed())
	})

	It("chooses the format from the extension", func() {
		Expect(scene.FormatFor("scenes/simple.toml")).To(Equal(scene.FormatTOML))
		Expect(scene.FormatFor("scenes/simple.TOML")).To(Equal(scene.FormatTOML))
		Expect(scene.FormatFor("scenes/simple.yaml")).To(Equal(scene.FormatYAML))
		Expect(scene.FormatFor("scenes/simple")).To(Equal(scene.FormatYAML))
	})
})
