package viz

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mpcsim/internal/mpc"
	"github.com/san-kum/mpcsim/internal/scene"
)

const (
	canvasWidth     = 60
	canvasHeight    = 20
	historyCapacity = 300
	trailCapacity   = 2000
)

type TickMsg time.Time

// stepMsg is sent back once a scene step has finished in the background.
type stepMsg struct{}

// Model steps a scene and keeps what the view needs. The scene is only read in
// Update after a step has finished; View renders cached fields only.
type Model struct {
	scene    *scene.Scene
	title    string
	canvas   *Canvas
	interval time.Duration
	params   scene.Params
	inflight *sync.WaitGroup

	running  bool
	stepping bool
	done     bool

	steps   int
	poses   []mpc.Pose
	goals   []mpc.Pose
	start   []float64
	dists   []float64
	trails  [][]mpc.Pose
	closest []float64
}

// NewModel wraps s; title is shown above the stats panel.
func NewModel(s *scene.Scene, title string) Model {
	m := Model{
		scene:    s,
		title:    title,
		canvas:   NewCanvas(canvasWidth, canvasHeight),
		interval: 30 * time.Millisecond,
		params:   s.Params(),
		inflight: &sync.WaitGroup{},
		running:  true,
	}

	agents := s.Agents()
	m.goals = make([]mpc.Pose, len(agents))
	m.start = make([]float64, len(agents))
	m.trails = make([][]mpc.Pose, len(agents))

	var xs, ys []float64
	for i, a := range agents {
		m.goals[i] = a.GoalPose()
		m.start[i] = mpc.GoalDist(a)
		p := mpc.CurrentPose(a)
		xs = append(xs, p.X(), m.goals[i].X())
		ys = append(ys, p.Y(), m.goals[i].Y())
	}
	m.canvas.Fit(xs, ys, 0.15)
	m.snapshot()

	return m
}

func (m Model) Init() tea.Cmd {
	return tick(m.interval)
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) step() tea.Cmd {
	s, wg := m.scene, m.inflight
	wg.Add(1)
	return func() tea.Msg {
		defer wg.Done()
		s.RunOnce()
		return stepMsg{}
	}
}

// Wait blocks until the step in flight, if any, has finished. Call it after
// the program exits and before touching the scene again.
func (m Model) Wait() {
	m.inflight.Wait()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "s":
			if !m.running && !m.stepping && !m.done {
				m.stepping = true
				return m, m.step()
			}
		}

	case TickMsg:
		if m.running && !m.stepping && !m.done {
			m.stepping = true
			return m, tea.Batch(m.step(), tick(m.interval))
		}
		return m, tick(m.interval)

	case stepMsg:
		m.stepping = false
		m.snapshot()
		if m.scene.Done() {
			m.done = true
			m.running = false
		}
	}

	return m, nil
}

func (m *Model) snapshot() {
	agents := m.scene.Agents()
	m.steps = m.scene.Steps()
	m.poses = make([]mpc.Pose, len(agents))
	m.dists = make([]float64, len(agents))

	best := -1.0
	for i, a := range agents {
		p := mpc.CurrentPose(a)
		m.poses[i] = p
		m.dists[i] = mpc.GoalDist(a)
		m.trails[i] = append(m.trails[i], p)
		if len(m.trails[i]) > trailCapacity {
			m.trails[i] = m.trails[i][1:]
		}
		if d := m.dists[i]; best < 0 || d < best {
			best = d
		}
	}

	if best >= 0 {
		m.closest = append(m.closest, best)
		if len(m.closest) > historyCapacity {
			m.closest = m.closest[1:]
		}
	}
}

func (m Model) View() string {
	m.draw()

	var status string
	switch {
	case m.done:
		status = statusDone.Render("ARRIVED")
	case m.running:
		status = statusRunning.Render("RUNNING")
	default:
		status = statusPaused.Render("PAUSED")
	}

	p := m.params

	var stats strings.Builder
	stats.WriteString(headerStyle.Render(m.title) + "\n")
	stats.WriteString(row("status", status))
	stats.WriteString(row("step", fmt.Sprintf("%d", m.steps)))
	stats.WriteString(row("samples", fmt.Sprintf("%d x %d", p.ControlIters, p.RolloutIters)))
	stats.WriteString(row("dt / eps", fmt.Sprintf("%g / %g", p.Dt, p.Eps)))
	stats.WriteString("\n")

	for i, pose := range m.poses {
		d := m.dists[i]
		stats.WriteString(row(fmt.Sprintf("agent %d", i),
			fmt.Sprintf("(%.2f, %.2f, %.2f)", pose.X(), pose.Y(), pose.Z())))
		stats.WriteString(row("", ProgressBar(covered(m.start[i], d), 20)+fmt.Sprintf(" %.3f", d)))
	}

	if len(m.closest) > 1 {
		chart := asciigraph.Plot(m.closest,
			asciigraph.Height(5), asciigraph.Width(36),
			asciigraph.Caption("closest goal distance"))
		stats.WriteString(graphStyle.Render(chart) + "\n")
	}

	stats.WriteString(helpStyle.Render("space pause · s step · q quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.canvas.String()),
		statsStyle.Render(stats.String()),
	)
}

// draw rebuilds the canvas: goals as crosses, trails as dots, agents with a
// heading tick.
func (m Model) draw() {
	m.canvas.Clear()
	for _, g := range m.goals {
		m.canvas.Cross(g.X(), g.Y())
	}
	for _, trail := range m.trails {
		for _, p := range trail {
			m.canvas.Plot(p.X(), p.Y())
		}
	}
	for _, p := range m.poses {
		m.canvas.Heading(p.X(), p.Y(), p.Z())
	}
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}

func covered(start, now float64) float64 {
	if start <= 0 {
		return 1
	}
	return 1 - now/start
}
