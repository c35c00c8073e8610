// Package app wires one terminal session: the boot sequence followed by the
// animation, both drawn on the same surface.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"

	"github.com/journalehsan/tron-legacy-terminal/internal/boot"
	"github.com/journalehsan/tron-legacy-terminal/internal/clock"
	"github.com/journalehsan/tron-legacy-terminal/internal/config"
	"github.com/journalehsan/tron-legacy-terminal/internal/engine"
	"github.com/journalehsan/tron-legacy-terminal/internal/shutdown"
	"github.com/journalehsan/tron-legacy-terminal/internal/surface"
)

// Outcome says how a session ended.
type Outcome int

const (
	OutcomeBootAborted Outcome = iota
	OutcomeAnimationEnded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBootAborted:
		return "boot aborted"
	case OutcomeAnimationEnded:
		return "animation ended"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

type Session struct {
	surf      surface.Surface
	cfg       *config.Config
	token     *shutdown.Token
	rng       *rand.Rand
	sleep     clock.Sleeper
	observers []engine.Observer

	frames uint64
}

// NewSession prepares a session on surf. A nil token gets a fresh one; a nil
// rng is seeded from cfg.Seed, or from the clock when the seed is zero.
func NewSession(surf surface.Surface, cfg *config.Config, token *shutdown.Token, rng *rand.Rand) *Session {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if token == nil {
		token = shutdown.NewToken()
	}
	if rng == nil && cfg.Seed != 0 {
		rng = NewRand(cfg.Seed)
	}
	return &Session{surf: surf, cfg: cfg, token: token, rng: rng}
}

// NewRand returns a deterministic source for seed.
func NewRand(seed int64) *rand.Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

func (s *Session) SetSleeper(sl clock.Sleeper)   { s.sleep = sl }
func (s *Session) AddObserver(o engine.Observer) { s.observers = append(s.observers, o) }
func (s *Session) Token() *shutdown.Token        { return s.token }
func (s *Session) Frames() uint64                { return s.frames }
func (s *Session) Config() *config.Config        { return s.cfg }

// Run hides the cursor, runs the boot gate unless skipped, then animates
// until escape, the stop token or ctx ends it. The surface is restored
// before Run returns.
func (s *Session) Run(ctx context.Context) (Outcome, error) {
	defer s.surf.Restore()
	s.surf.SetCursorVisible(false)

	rows, cols := s.surf.Size()
	log.Printf("session: %dx%d theme=%s interval=%s p=%.3f", cols, rows,
		s.cfg.Theme, s.cfg.Animation.FrameInterval, s.cfg.Animation.MutationProbability)

	if !s.cfg.Boot.Skip {
		seq := boot.New(s.surf, s.token, s.cfg.Boot)
		if s.sleep != nil {
			seq.SetSleeper(s.sleep)
		}
		proceed, err := seq.Run(ctx)
		if err != nil {
			return OutcomeBootAborted, err
		}
		if !proceed {
			log.Println("session: boot aborted")
			return OutcomeBootAborted, nil
		}
	}

	eng := engine.New(s.surf, s.token, s.cfg.Animation, s.rng)
	if s.sleep != nil {
		eng.SetSleeper(s.sleep)
	}
	for _, o := range s.observers {
		eng.AddObserver(o)
	}

	err := eng.Run(ctx)
	s.frames = eng.Frame()
	log.Printf("session: engine exited after %d frames, %d draw errors", eng.Frame(), eng.DrawErrors())
	if err != nil && !errors.Is(err, context.Canceled) {
		return OutcomeAnimationEnded, err
	}
	return OutcomeAnimationEnded, nil
}
