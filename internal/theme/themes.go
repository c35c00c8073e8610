package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// NumColors is the size of every theme's foreground set. Color ids are 1-based.
const NumColors = 4

// Theme defines the color scheme of the grid: four foreground colors
// drawn against one constant background.
type Theme struct {
	Name       string
	Colors     [NumColors]lipgloss.Color
	Background lipgloss.Color
}

// Available themes. Colors are either ANSI palette indices ("0"-"255") or
// #rrggbb hex strings; both forms are understood by lipgloss and tcell.
var (
	ThemeLegacy = Theme{
		Name: "legacy",
		Colors: [NumColors]lipgloss.Color{
			lipgloss.Color("6"), // Cyan
			lipgloss.Color("2"), // Green
			lipgloss.Color("3"), // Yellow
			lipgloss.Color("1"), // Red
		},
		Background: lipgloss.Color("0"),
	}

	ThemeGrid = Theme{
		Name: "grid",
		Colors: [NumColors]lipgloss.Color{
			lipgloss.Color("#6fc3df"),
			lipgloss.Color("#0c8ce9"),
			lipgloss.Color("#e6ffff"),
			lipgloss.Color("#1a5f8a"),
		},
		Background: lipgloss.Color("#05080c"),
	}

	ThemeSark = Theme{
		Name: "sark",
		Colors: [NumColors]lipgloss.Color{
			lipgloss.Color("#ff9a00"),
			lipgloss.Color("#ff5e00"),
			lipgloss.Color("#ffd28a"),
			lipgloss.Color("#b3001b"),
		},
		Background: lipgloss.Color("#0a0300"),
	}

	ThemeMono = Theme{
		Name: "mono",
		Colors: [NumColors]lipgloss.Color{
			lipgloss.Color("15"),
			lipgloss.Color("250"),
			lipgloss.Color("244"),
			lipgloss.Color("238"),
		},
		Background: lipgloss.Color("0"),
	}

	// Default theme
	DefaultTheme = ThemeLegacy

	// All available themes
	Themes = []Theme{
		ThemeLegacy,
		ThemeGrid,
		ThemeSark,
		ThemeMono,
	}
)

// Lookup returns a theme by name.
func Lookup(name string) (Theme, error) {
	for _, t := range Themes {
		if t.Name == name {
			return t, nil
		}
	}
	return Theme{}, fmt.Errorf("theme: unknown theme %q (available: %v)", name, Names())
}

// Names returns list of available theme names
func Names() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Color returns the foreground for a 1-based color id. Ids outside 1-4
// wrap onto the set so callers never index out of range.
func (t Theme) Color(id int) lipgloss.Color {
	if id < 1 {
		id = 1
	}
	return t.Colors[(id-1)%NumColors]
}

// Style returns the lipgloss style for a color id on the theme background.
func (t Theme) Style(id int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Color(id)).Background(t.Background)
}

// BackgroundStyle is used for blank cells.
func (t Theme) BackgroundStyle() lipgloss.Style {
	return lipgloss.NewStyle().Background(t.Background)
}

// Swatch renders one block per color, used by the themes listing.
func (t Theme) Swatch() string {
	out := ""
	for i := 1; i <= NumColors; i++ {
		out += t.Style(i).Render("██")
	}
	return out
}
