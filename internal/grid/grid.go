// Package grid holds the character grid animated by the engine.
//
// Cells store glyphs only. The color of a cell is derived on every frame by
// [ColorFor] from the frame number and the cell position, so the cycling
// pattern is the same no matter when a glyph was set.
package grid

import (
	"math/rand/v2"

	"github.com/journalehsan/tron-legacy-terminal/internal/surface"
	"github.com/journalehsan/tron-legacy-terminal/internal/theme"
)

// Blank marks a cell that is not drawn.
const Blank rune = ' '

type Grid struct {
	rows, cols int
	cells      []rune
}

func New(rows, cols int) *Grid {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	cells := make([]rune, rows*cols)
	for i := range cells {
		cells[i] = Blank
	}
	return &Grid{rows: rows, cols: cols, cells: cells}
}

func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Cols() int { return g.cols }

func (g *Grid) At(row, col int) rune {
	return g.cells[row*g.cols+col]
}

func (g *Grid) Set(row, col int, glyph rune) {
	g.cells[row*g.cols+col] = glyph
}

// Mutate gives every cell an independent chance p of receiving a uniformly
// random glyph from palette. It returns the number of cells assigned.
func (g *Grid) Mutate(rng *rand.Rand, p float64, palette []rune) int {
	if len(palette) == 0 || p <= 0 {
		return 0
	}
	n := 0
	for i := range g.cells {
		if rng.Float64() < p {
			g.cells[i] = palette[rng.IntN(len(palette))]
			n++
		}
	}
	return n
}

// Each calls fn for every non-blank cell in row-major order.
func (g *Grid) Each(fn func(row, col int, glyph rune)) {
	for i, glyph := range g.cells {
		if glyph == Blank {
			continue
		}
		fn(i/g.cols, i%g.cols, glyph)
	}
}

// Filled counts non-blank cells.
func (g *Grid) Filled() int {
	n := 0
	for _, glyph := range g.cells {
		if glyph != Blank {
			n++
		}
	}
	return n
}

// ColorFor returns ((frame + row + col) mod 4) + 1.
func ColorFor(frame uint64, row, col int) surface.ColorID {
	sum := frame + uint64(row) + uint64(col)
	return surface.ColorID(sum%theme.NumColors) + 1
}
