// Package boot shows the startup messages and waits for a key before the
// animation starts.
package boot

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/journalehsan/tron-legacy-terminal/internal/clock"
	"github.com/journalehsan/tron-legacy-terminal/internal/config"
	"github.com/journalehsan/tron-legacy-terminal/internal/shutdown"
	"github.com/journalehsan/tron-legacy-terminal/internal/surface"
)

// MessageColor is the color id used for every boot line.
const MessageColor surface.ColorID = 2

// Messages are shown one at a time, in order.
var Messages = [...]string{
	"GRID CORE ONLINE",
	"DISC PROTOCOL NEGOTIATED",
	"ISO PRESENCE ACKNOWLEDGED",
	"PROCESSOR RAILS NOMINAL",
	"LEGACY TERMINAL READY",
	"",
	"Press any key to continue or ESC to exit...",
}

type Sequencer struct {
	surf  surface.Surface
	token *shutdown.Token
	sleep clock.Sleeper
	hold  time.Duration
	poll  time.Duration
}

func New(surf surface.Surface, token *shutdown.Token, cfg config.BootConfig) *Sequencer {
	if token == nil {
		token = shutdown.NewToken()
	}
	return &Sequencer{
		surf:  surf,
		token: token,
		sleep: clock.Real{},
		hold:  cfg.Hold,
		poll:  cfg.Poll,
	}
}

func (s *Sequencer) SetSleeper(sl clock.Sleeper) { s.sleep = sl }

// Position returns where message i is drawn on a rows x cols surface. The
// block of messages is centered as a whole; ok is false when the row falls
// outside the surface.
func Position(rows, cols, i int) (row, col int, ok bool) {
	row = rows/2 - len(Messages)/2 + i
	col = max(0, (cols-len(Messages[i]))/2)
	return row, col, row >= 0 && row < rows
}

// Run shows every message, then waits for a key. It reports proceed=false
// when escape is pressed, when the stop token is set or when ctx is done.
func (s *Sequencer) Run(ctx context.Context) (bool, error) {
	rows, cols := s.surf.Size()

	for i, msg := range Messages {
		if s.token.Stopped() || ctx.Err() != nil {
			return false, nil
		}

		s.surf.Clear()
		if row, col, ok := Position(rows, cols, i); ok {
			// Narrow terminals clip the line; that is not an error here
			_ = s.surf.Draw(row, col, msg, MessageColor)
		}
		if err := s.surf.Show(); err != nil {
			if s.token.Stopped() || ctx.Err() != nil {
				return false, nil
			}
			return false, fmt.Errorf("boot: show message %d: %w", i, err)
		}
		s.sleep.Sleep(ctx, s.hold)
	}

	for {
		if s.token.Stopped() || ctx.Err() != nil {
			return false, nil
		}
		switch key := s.surf.PollKey(); key {
		case surface.KeyNone:
			s.sleep.Sleep(ctx, s.poll)
		case surface.KeyEscape:
			log.Println("boot: aborted at gate")
			return false, nil
		default:
			log.Printf("boot: gate passed with key %d", key)
			return true, nil
		}
	}
}
