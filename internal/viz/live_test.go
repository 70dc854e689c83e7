package viz

import (
	"math/rand"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/mpcsim/internal/models"
	"github.com/san-kum/mpcsim/internal/mpc"
	"github.com/san-kum/mpcsim/internal/scene"
)

func TestCanvasSetAndClear(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(100, 100)
	c.Set(-1, 0)

	if c.Grid[0][0] != rune(blank|0x1) {
		t.Errorf("unexpected cell %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != rune(blank|0x80) {
		t.Errorf("unexpected cell %U", c.Grid[0][1])
	}

	c.Clear()
	if c.Grid[0][0] != blank || c.Grid[0][1] != blank {
		t.Error("expected blank canvas after clear")
	}
}

func TestCanvasProjectCorners(t *testing.T) {
	c := NewCanvas(10, 5)
	c.Fit([]float64{0, 1}, []float64{0, 1}, 0)

	if x, y := c.Project(0, 1); x != 0 || y != 0 {
		t.Errorf("top-left projected to (%d, %d)", x, y)
	}
	if x, y := c.Project(1, 0); x != 19 || y != 19 {
		t.Errorf("bottom-right projected to (%d, %d)", x, y)
	}
}

func newTestScene() *scene.Scene {
	p := scene.DefaultParams()
	p.ControlIters = 20
	a := models.NewDiffDrive(mpc.State{0, 0, 0}, mpc.Pose{1, 0, 0}, rand.New(rand.NewSource(1)))
	return scene.New(p, a)
}

func TestModelStepMessage(t *testing.T) {
	s := newTestScene()
	m := NewModel(s, "test")

	cmd := m.step()
	msg := cmd()
	if _, ok := msg.(stepMsg); !ok {
		t.Fatalf("expected stepMsg, got %T", msg)
	}

	next, _ := m.Update(msg)
	m = next.(Model)

	if s.Steps() != 1 {
		t.Errorf("expected 1 step, got %d", s.Steps())
	}
	if len(m.trails[0]) != 2 {
		t.Errorf("expected 2 trail points, got %d", len(m.trails[0]))
	}
	if len(m.closest) != 2 {
		t.Errorf("expected 2 history points, got %d", len(m.closest))
	}
}

func TestModelPauseToggle(t *testing.T) {
	m := NewModel(newTestScene(), "test")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(" ")})
	m = next.(Model)
	if m.running {
		t.Error("expected paused after space")
	}

	_, cmd := m.Update(TickMsg{})
	if cmd == nil {
		t.Fatal("expected tick to reschedule")
	}
	if m.stepping {
		t.Error("paused model should not step on tick")
	}
}

func TestModelView(t *testing.T) {
	m := NewModel(newTestScene(), "diff drive")
	out := m.View()

	if !strings.Contains(out, "diff drive") {
		t.Error("expected title in view")
	}
	if !strings.Contains(out, "agent 0") {
		t.Error("expected agent row in view")
	}
}

func TestModelViewDuringStep(t *testing.T) {
	s := newTestScene()
	m := NewModel(s, "test")

	cmd := m.step()
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	for i := 0; i < 50; i++ {
		_ = m.View()
	}

	m.Wait()
	msg := <-done
	if s.Steps() != 1 {
		t.Fatalf("expected 1 step, got %d", s.Steps())
	}

	next, _ := m.Update(msg)
	m = next.(Model)
	if m.steps != 1 {
		t.Errorf("expected cached step count 1, got %d", m.steps)
	}
}

func TestModelDistanceMatchesArrivalDistance(t *testing.T) {
	p := scene.DefaultParams()
	a := models.NewDiffDrive(mpc.State{0, 0, 1}, mpc.Pose{1, 0, 0}, rand.New(rand.NewSource(1)))
	m := NewModel(scene.New(p, a), "test")

	want := mpc.GoalDist(a)
	if m.dists[0] != want {
		t.Errorf("expected distance %f, got %f", want, m.dists[0])
	}
	if m.start[0] != want {
		t.Errorf("expected start distance %f, got %f", want, m.start[0])
	}
}
