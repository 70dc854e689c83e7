package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/mpcsim/internal/metrics"
)

var palette = []string{"#00ff88", "#00ccff", "#ffaa00", "#ff4466", "#cc66ff", "#ffff66"}

// TrajectorySVG draws every agent's path in the x-y plane, one colour per
// agent, with the first recorded pose as a hollow circle and the last one
// filled. Runs recorded with Trajectory.Start begin at the step 0 pose. Both
// axes share one scale.
func TrajectorySVG(w io.Writer, samples []metrics.Sample, size int) error {
	if len(samples) == 0 {
		return fmt.Errorf("no samples")
	}

	paths := make(map[int][]metrics.Sample)
	maxAgent := 0
	for _, s := range samples {
		paths[s.Agent] = append(paths[s.Agent], s)
		if s.Agent > maxAgent {
			maxAgent = s.Agent
		}
	}

	minX, maxX := samples[0].Pose.X(), samples[0].Pose.X()
	minY, maxY := samples[0].Pose.Y(), samples[0].Pose.Y()
	for _, s := range samples {
		minX, maxX = math.Min(minX, s.Pose.X()), math.Max(maxX, s.Pose.X())
		minY, maxY = math.Min(minY, s.Pose.Y()), math.Max(maxY, s.Pose.Y())
	}

	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	pad := span * 0.1
	minX -= pad
	minY -= pad
	span += 2 * pad

	scale := float64(size) / span
	project := func(x, y float64) (float64, float64) {
		return (x - minX) * scale, float64(size) - (y-minY)*scale
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, size, size, size, size)

	for agent := 0; agent <= maxAgent; agent++ {
		path, ok := paths[agent]
		if !ok {
			continue
		}
		color := palette[agent%len(palette)]

		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color)
		for i, s := range path {
			x, y := project(s.Pose.X(), s.Pose.Y())
			if i == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")

		x0, y0 := project(path[0].Pose.X(), path[0].Pose.Y())
		last := path[len(path)-1]
		x1, y1 := project(last.Pose.X(), last.Pose.Y())
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="4" fill="none" stroke="%s"/>
<circle cx="%.1f" cy="%.1f" r="4" fill="%s"/>
`, x0, y0, color, x1, y1, color)
	}

	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
