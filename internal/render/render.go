package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/journalehsan/tron-legacy-terminal/internal/surface"
	"github.com/journalehsan/tron-legacy-terminal/internal/theme"
)

// Buffer is the read side of an in-memory surface.
type Buffer interface {
	Size() (rows, cols int)
	Cell(row, col int) surface.Cell
}

// Frame renders the buffer as styled text, one line per row. Consecutive
// cells sharing a color are rendered as one run.
func Frame(buf Buffer, th theme.Theme) string {
	rows, cols := buf.Size()

	var styles [theme.NumColors + 1]lipgloss.Style
	styles[0] = th.BackgroundStyle()
	for id := 1; id <= theme.NumColors; id++ {
		styles[id] = th.Style(id)
	}

	var b strings.Builder
	var run strings.Builder
	for row := 0; row < rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		current := -1
		for col := 0; col < cols; col++ {
			cell := buf.Cell(row, col)
			id := styleIndex(cell)
			if id != current && run.Len() > 0 {
				b.WriteString(styles[current].Render(run.String()))
				run.Reset()
			}
			current = id
			run.WriteRune(cell.Glyph)
		}
		if run.Len() > 0 {
			b.WriteString(styles[current].Render(run.String()))
			run.Reset()
		}
	}
	return b.String()
}

// Plain renders the buffer without any styling.
func Plain(buf Buffer) string {
	rows, cols := buf.Size()
	var b strings.Builder
	for row := 0; row < rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := 0; col < cols; col++ {
			b.WriteRune(buf.Cell(row, col).Glyph)
		}
	}
	return b.String()
}

func styleIndex(c surface.Cell) int {
	if c.Glyph == ' ' || c.Color < 1 || int(c.Color) > theme.NumColors {
		return 0
	}
	return int(c.Color)
}
