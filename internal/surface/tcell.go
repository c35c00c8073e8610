package surface

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"github.com/gdamore/tcell/v2"
	"github.com/journalehsan/tron-legacy-terminal/internal/theme"
)

const eventBuffer = 64

// Tcell is a Surface backed by a tcell screen.
type Tcell struct {
	screen     tcell.Screen
	rows, cols int
	styles     [theme.NumColors + 1]tcell.Style

	events      chan Key
	onInterrupt func()

	once   sync.Once
	closed atomic.Bool
}

// NewTcell opens the controlling terminal. onInterrupt, if set, runs when
// Ctrl+C is read, since raw mode swallows the signal.
func NewTcell(th theme.Theme, onInterrupt func()) (*Tcell, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInit, err)
	}
	return NewTcellScreen(screen, th, onInterrupt)
}

// NewTcellScreen initializes an existing screen, e.g. a simulation screen.
func NewTcellScreen(screen tcell.Screen, th theme.Theme, onInterrupt func()) (*Tcell, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInit, err)
	}
	if screen.Colors() < 8 {
		screen.Fini()
		return nil, ErrNoColor
	}

	t := &Tcell{
		screen:      screen,
		events:      make(chan Key, eventBuffer),
		onInterrupt: onInterrupt,
	}

	bg := TcellColor(th.Background)
	t.styles[0] = tcell.StyleDefault.Background(bg)
	for id := 1; id <= theme.NumColors; id++ {
		t.styles[id] = tcell.StyleDefault.Foreground(TcellColor(th.Color(id))).Background(bg)
	}
	screen.SetStyle(t.styles[0])

	cols, rows := screen.Size()
	t.rows, t.cols = rows, cols

	go t.pump()
	return t, nil
}

// TcellColor converts a theme color, either an ANSI index or a name/hex
// string, into a tcell color.
func TcellColor(c lipgloss.Color) tcell.Color {
	s := string(c)
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < 256 {
		return tcell.PaletteColor(n)
	}
	return tcell.GetColor(s)
}

// pump forwards key events until the screen is finalized.
func (t *Tcell) pump() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		kev, ok := ev.(*tcell.EventKey)
		if !ok {
			// Resize and mouse events are ignored
			continue
		}
		key := keyFromTcell(kev)
		if key == KeyCtrlC && t.onInterrupt != nil {
			t.onInterrupt()
			continue
		}
		select {
		case t.events <- key:
		default:
			// Drop when the loop is not reading fast enough
		}
	}
}

func keyFromTcell(ev *tcell.EventKey) Key {
	switch ev.Key() {
	case tcell.KeyRune:
		return Key(ev.Rune())
	case tcell.KeyEscape:
		return KeyEscape
	}
	if k := int(ev.Key()); k >= 0 && k < 256 {
		return Key(k)
	}
	return KeyUnknown
}

func (t *Tcell) Size() (int, int) { return t.rows, t.cols }

func (t *Tcell) SetCursorVisible(visible bool) {
	if visible {
		t.screen.ShowCursor(0, 0)
		return
	}
	t.screen.HideCursor()
}

func (t *Tcell) Clear() {
	t.screen.Clear()
}

func (t *Tcell) Draw(row, col int, text string, color ColorID) error {
	if row < 0 || row >= t.rows || col < 0 || col >= t.cols {
		return ErrOutOfBounds
	}
	style := t.styles[1]
	if color >= 1 && int(color) <= theme.NumColors {
		style = t.styles[color]
	}
	x := col
	for _, r := range text {
		if x >= t.cols {
			return ErrOutOfBounds
		}
		t.screen.SetContent(x, row, r, nil, style)
		x++
	}
	return nil
}

func (t *Tcell) Show() error {
	if t.closed.Load() {
		return ErrClosed
	}
	t.screen.Show()
	return nil
}

func (t *Tcell) PollKey() Key {
	select {
	case k := <-t.events:
		return k
	default:
		return KeyNone
	}
}

func (t *Tcell) Restore() {
	t.once.Do(func() {
		t.closed.Store(true)
		t.screen.ShowCursor(0, 0)
		t.screen.Fini()
	})
}
