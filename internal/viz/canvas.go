package viz

import (
	"math"
	"strings"
)

// Braille cells are 2x4 dots, offset 0x2800.
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune

	// world window shown on the canvas
	minX, minY, maxX, maxY float64
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		maxX:   1,
		maxY:   1,
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Fit sets the world window to cover the points with a margin, keeping x and y
// at the same scale.
func (c *Canvas) Fit(xs, ys []float64, margin float64) {
	if len(xs) == 0 {
		return
	}
	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := range xs {
		minX, maxX = math.Min(minX, xs[i]), math.Max(maxX, xs[i])
		minY, maxY = math.Min(minY, ys[i]), math.Max(maxY, ys[i])
	}

	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	span += 2 * margin * span

	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	c.minX, c.maxX = cx-span/2, cx+span/2
	c.minY, c.maxY = cy-span/2, cy+span/2
}

// Project maps world coordinates to sub-pixels; y grows upwards in the world.
func (c *Canvas) Project(x, y float64) (int, int) {
	pw, ph := float64(c.Width*2-1), float64(c.Height*4-1)
	px := (x - c.minX) / (c.maxX - c.minX) * pw
	py := (c.maxY - y) / (c.maxY - c.minY) * ph
	return int(math.Round(px)), int(math.Round(py))
}

// Set lights the sub-pixel (x, y); the canvas is Width*2 by Height*4 of them.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Plot(x, y float64) {
	c.Set(c.Project(x, y))
}

// Cross marks a world point with a small plus.
func (c *Canvas) Cross(x, y float64) {
	px, py := c.Project(x, y)
	for d := -2; d <= 2; d++ {
		c.Set(px+d, py)
		c.Set(px, py+d)
	}
}

// Heading draws a short segment from (x, y) pointing along theta.
func (c *Canvas) Heading(x, y, theta float64) {
	x0, y0 := c.Project(x, y)
	x1, y1 := x0+int(math.Round(4*math.Cos(theta))), y0-int(math.Round(4*math.Sin(theta)))
	c.DrawLine(x0, y0, x1, y1)
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
