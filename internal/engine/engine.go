// Package engine runs the animation loop.
//
// Each frame clears the surface, mutates the grid, repaints every non-blank
// cell with a color derived from (frame, row, col), overlays the status line
// and flushes. [Engine.Run] adds the fixed pause, the exit-key poll and the
// stop check between frames.
//
// # Thread Safety
//
// An Engine is driven by one goroutine. Only the shutdown token may be
// touched from elsewhere.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/journalehsan/tron-legacy-terminal/internal/clock"
	"github.com/journalehsan/tron-legacy-terminal/internal/config"
	"github.com/journalehsan/tron-legacy-terminal/internal/grid"
	"github.com/journalehsan/tron-legacy-terminal/internal/shutdown"
	"github.com/journalehsan/tron-legacy-terminal/internal/surface"
)

// ErrFinished is returned when Run is called on an engine whose loop has
// already exited.
var ErrFinished = errors.New("engine: loop already finished")

// StatusColor is the color id of the status line.
const StatusColor surface.ColorID = 1

// Observer is notified after every flushed frame.
type Observer interface {
	OnFrame(frame uint64, g *grid.Grid, mutated int)
}

type Engine struct {
	surf  surface.Surface
	token *shutdown.Token
	grid  *grid.Grid
	rng   *rand.Rand
	sleep clock.Sleeper

	interval time.Duration
	prob     float64
	palette  []rune
	label    string

	frame      uint64
	drawErrors int
	finished   bool
	observers  []Observer
}

// New sizes the grid from the surface. A nil rng is seeded from the clock.
func New(surf surface.Surface, token *shutdown.Token, cfg config.AnimationConfig, rng *rand.Rand) *Engine {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if token == nil {
		token = shutdown.NewToken()
	}
	rows, cols := surf.Size()
	return &Engine{
		surf:     surf,
		token:    token,
		grid:     grid.New(rows, cols),
		rng:      rng,
		sleep:    clock.Real{},
		interval: cfg.FrameInterval,
		prob:     cfg.MutationProbability,
		palette:  cfg.PaletteRunes(),
		label:    cfg.StatusLabel,
	}
}

func (e *Engine) AddObserver(o Observer)     { e.observers = append(e.observers, o) }
func (e *Engine) SetSleeper(s clock.Sleeper) { e.sleep = s }
func (e *Engine) Frame() uint64              { return e.frame }
func (e *Engine) Grid() *grid.Grid           { return e.grid }
func (e *Engine) DrawErrors() int            { return e.drawErrors }
func (e *Engine) Finished() bool             { return e.finished }
func (e *Engine) Status() string             { return StatusLine(e.label, e.frame) }

func (e *Engine) stopRequested(ctx context.Context) bool {
	return e.token.Stopped() || ctx.Err() != nil
}

// Run loops until the exit key is read, the token is stopped, the context is
// done or the surface fails to flush. Exit key, token and context all return
// nil, including a flush that fails after a stop was requested. The engine cannot be run again afterwards.
func (e *Engine) Run(ctx context.Context) error {
	if e.finished {
		return ErrFinished
	}
	defer func() { e.finished = true }()

	for !e.stopRequested(ctx) {
		if err := e.Step(); err != nil {
			// an interrupt restores the surface while a frame is in flight
			if e.stopRequested(ctx) {
				log.Printf("engine: stop requested during frame %d: %v", e.frame, err)
				return nil
			}
			log.Printf("engine: stopping at frame %d: %v", e.frame, err)
			return err
		}

		e.sleep.Sleep(ctx, e.interval)

		if e.surf.PollKey() == surface.KeyEscape {
			log.Printf("engine: exit key at frame %d (%d draw errors)", e.frame, e.drawErrors)
			return nil
		}
	}

	log.Printf("engine: stop requested at frame %d (%d draw errors)", e.frame, e.drawErrors)
	return nil
}

// Step renders one frame and advances the frame counter. It never sleeps
// or reads input.
func (e *Engine) Step() error {
	e.surf.Clear()

	mutated := e.grid.Mutate(e.rng, e.prob, e.palette)

	frame := e.frame
	e.grid.Each(func(row, col int, glyph rune) {
		e.draw(row, col, string(glyph), grid.ColorFor(frame, row, col))
	})

	rows, cols := e.grid.Rows(), e.grid.Cols()
	status := StatusLine(e.label, frame)
	if rows > 0 && len(status) < cols {
		e.draw(rows-1, 0, status, StatusColor)
	}

	if err := e.surf.Show(); err != nil {
		return fmt.Errorf("engine: flush frame %d: %w", frame, err)
	}

	for _, o := range e.observers {
		o.OnFrame(frame, e.grid, mutated)
	}
	e.frame++
	return nil
}

func (e *Engine) draw(row, col int, text string, color surface.ColorID) {
	if err := e.surf.Draw(row, col, text, color); err != nil {
		e.drawErrors++
	}
}

// StatusLine formats the bottom-row overlay.
func StatusLine(label string, frame uint64) string {
	return fmt.Sprintf("%s | FRAME: %d | ESC to exit", label, frame)
}
