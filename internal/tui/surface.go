// Package tui runs the animation inside a bubbletea program.
package tui

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/journalehsan/tron-legacy-terminal/internal/render"
	"github.com/journalehsan/tron-legacy-terminal/internal/surface"
	"github.com/journalehsan/tron-legacy-terminal/internal/theme"
)

const keyBuffer = 64

type frameMsg string

type model struct {
	frame       string
	keys        chan<- surface.Key
	sizes       chan<- tea.WindowSizeMsg
	onInterrupt func()
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		select {
		case m.sizes <- msg:
		default:
		}
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			// the handler waits for this loop to exit, so it cannot run inline
			if m.onInterrupt != nil {
				go m.onInterrupt()
			}
			return m, nil
		}
		select {
		case m.keys <- keyFromTea(msg):
		default:
		}
	case frameMsg:
		m.frame = string(msg)
	}
	return m, nil
}

func (m model) View() string { return m.frame }

func keyFromTea(msg tea.KeyMsg) surface.Key {
	switch {
	case msg.Type == tea.KeyEsc:
		return surface.KeyEscape
	case msg.Type == tea.KeySpace:
		return surface.Key(' ')
	case len(msg.Runes) == 1:
		return surface.Key(msg.Runes[0])
	case msg.Type >= 0:
		return surface.Key(msg.Type)
	}
	return surface.KeyUnknown
}

// Surface draws through a bubbletea program. Cells are composed in memory
// and every Show sends the rendered frame to the program's view. Restore is
// safe to call from any goroutine.
type Surface struct {
	*surface.Memory

	theme   theme.Theme
	program *tea.Program
	keys    chan surface.Key
	sizes   chan tea.WindowSizeMsg

	// mu guards the embedded buffer, which Restore may touch from the
	// interrupt goroutine while the frame loop draws.
	mu      sync.Mutex
	started bool
	exited  chan struct{}
	runErr  error
	once    sync.Once
}

// NewSurface prepares the program; Start runs it. The alt screen is used and
// bubbletea's own signal handling is disabled.
func NewSurface(th theme.Theme, onInterrupt func(), opts ...tea.ProgramOption) *Surface {
	s := &Surface{
		theme:  th,
		keys:   make(chan surface.Key, keyBuffer),
		sizes:  make(chan tea.WindowSizeMsg, 1),
		exited: make(chan struct{}),
	}
	m := model{keys: s.keys, sizes: s.sizes, onInterrupt: onInterrupt}
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithoutSignalHandler()}, opts...)
	s.program = tea.NewProgram(m, opts...)
	return s
}

// Start runs the program and blocks until the terminal size is known.
func (s *Surface) Start(ctx context.Context) error {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	go func() {
		_, err := s.program.Run()
		s.runErr = err
		close(s.exited)
	}()

	select {
	case size := <-s.sizes:
		mem := surface.NewMemory(size.Height, size.Width)
		mem.SetRecording(false)
		s.mu.Lock()
		s.Memory = mem
		s.mu.Unlock()
		return nil
	case <-s.exited:
		return fmt.Errorf("%w: %v", surface.ErrInit, s.runErr)
	case <-ctx.Done():
		s.program.Kill()
		<-s.exited
		return ctx.Err()
	}
}

func (s *Surface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Memory.Clear()
}

func (s *Surface) Draw(row, col int, text string, color surface.ColorID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Memory.Draw(row, col, text, color)
}

func (s *Surface) Cell(row, col int) surface.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Memory.Cell(row, col)
}

func (s *Surface) CursorVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Memory.CursorVisible()
}

func (s *Surface) SetCursorVisible(visible bool) {
	s.mu.Lock()
	s.Memory.SetCursorVisible(visible)
	s.mu.Unlock()

	if visible {
		s.program.Send(tea.ShowCursor())
	} else {
		s.program.Send(tea.HideCursor())
	}
}

// Show renders under the lock; the frame is sent to the program outside it.
func (s *Surface) Show() error {
	select {
	case <-s.exited:
		return surface.ErrClosed
	default:
	}

	s.mu.Lock()
	if err := s.Memory.Show(); err != nil {
		s.mu.Unlock()
		return err
	}
	frame := render.Frame(s.Memory, s.theme)
	s.mu.Unlock()

	s.program.Send(frameMsg(frame))
	return nil
}

func (s *Surface) PollKey() surface.Key {
	select {
	case k := <-s.keys:
		return k
	default:
		return surface.KeyNone
	}
}

// Restore quits the program and waits for it to release the terminal.
func (s *Surface) Restore() {
	s.once.Do(func() {
		s.mu.Lock()
		if s.Memory != nil {
			s.Memory.Restore()
		}
		started := s.started
		s.mu.Unlock()

		if !started {
			return
		}
		s.program.Quit()
		<-s.exited
	})
}

// Err reports how the program exited. It is nil while the program runs.
func (s *Surface) Err() error {
	select {
	case <-s.exited:
		return s.runErr
	default:
		return nil
	}
}
