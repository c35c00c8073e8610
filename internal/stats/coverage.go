package stats

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/journalehsan/tron-legacy-terminal/internal/grid"
)

// Coverage records how full the grid is after every frame.
type Coverage struct {
	cells   int
	filled  []int
	mutated []int
}

func NewCoverage() *Coverage {
	return &Coverage{}
}

func (c *Coverage) OnFrame(_ uint64, g *grid.Grid, mutated int) {
	c.cells = g.Rows() * g.Cols()
	c.filled = append(c.filled, g.Filled())
	c.mutated = append(c.mutated, mutated)
}

func (c *Coverage) Frames() int { return len(c.filled) }

// Rate is the observed share of cell visits that mutated.
func (c *Coverage) Rate() float64 {
	visits := c.cells * len(c.mutated)
	if visits == 0 {
		return 0
	}
	total := 0
	for _, n := range c.mutated {
		total += n
	}
	return float64(total) / float64(visits)
}

// Fill returns the percentage of non-blank cells per frame.
func (c *Coverage) Fill() []float64 {
	out := make([]float64, len(c.filled))
	if c.cells == 0 {
		return out
	}
	for i, n := range c.filled {
		out[i] = 100 * float64(n) / float64(c.cells)
	}
	return out
}

// Plot draws the fill curve. It returns an empty string before the first frame.
func (c *Coverage) Plot(width, height int) string {
	if len(c.filled) == 0 {
		return ""
	}
	return asciigraph.Plot(c.Fill(),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("grid fill (%)"),
	)
}

func (c *Coverage) Summary(p float64) string {
	return fmt.Sprintf("frames=%d cells=%d mutation rate=%.4f (p=%.4f)", c.Frames(), c.cells, c.Rate(), p)
}
