// Package surface abstracts the terminal display used by the boot sequencer
// and the animation engine.
//
// The engine only needs a narrow capability set:
//
//   - [Surface.Size]: dimensions, queried once
//   - [Surface.Clear], [Surface.Draw], [Surface.Show]: compose and flush a frame
//   - [Surface.PollKey]: non-blocking key read
//   - [Surface.Restore]: idempotent terminal restoration
//
// [Tcell] drives a real terminal, [Memory] is an in-memory fake used by tests
// and headless rendering.
package surface

import "errors"

var (
	// ErrOutOfBounds is returned by Draw when any part of the request falls
	// outside the surface. Callers are expected to ignore it.
	ErrOutOfBounds = errors.New("surface: draw outside bounds")

	// ErrClosed is returned by Show after the surface has been restored.
	ErrClosed = errors.New("surface: closed")

	// ErrInit indicates the terminal could not be initialized.
	ErrInit = errors.New("surface: terminal initialization failed")

	// ErrNoColor indicates the terminal cannot display the color palette.
	ErrNoColor = errors.New("surface: terminal lacks color support")
)

// ColorID selects one of the four theme colors. Valid ids are 1 through 4.
type ColorID int

// Key is a single key press. Printable keys carry their character code.
type Key int

const (
	KeyNone    Key = -1
	KeyCtrlC   Key = 3
	KeyEnter   Key = 13
	KeyEscape  Key = 27
	KeyUnknown Key = 0x110000 // beyond the last code point
)

type Surface interface {
	// Size returns the dimensions in rows and columns.
	Size() (rows, cols int)

	SetCursorVisible(visible bool)

	// Clear blanks the whole composed frame.
	Clear()

	// Draw writes text starting at row, col. It never panics.
	Draw(row, col int, text string, color ColorID) error

	// Show flushes the composed frame to the display.
	Show() error

	// PollKey returns the next pending key or KeyNone without blocking.
	PollKey() Key

	// Restore returns the terminal to its original mode. Safe to call multiple times.
	Restore()
}
