package engine_test

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/journalehsan/tron-legacy-terminal/internal/clock"
	"github.com/journalehsan/tron-legacy-terminal/internal/config"
	"github.com/journalehsan/tron-legacy-terminal/internal/engine"
	"github.com/journalehsan/tron-legacy-terminal/internal/grid"
	"github.com/journalehsan/tron-legacy-terminal/internal/shutdown"
	"github.com/journalehsan/tron-legacy-terminal/internal/surface"
)

// failingSurface rejects every draw but flushes normally.
type failingSurface struct {
	*surface.Memory
}

func (f failingSurface) Draw(int, int, string, surface.ColorID) error {
	return surface.ErrOutOfBounds
}

// interruptingSurface stops the token and restores itself on the first draw,
// the way the signal handler does when it fires mid-frame.
type interruptingSurface struct {
	*surface.Memory
	token *shutdown.Token
	fired bool
}

func (s *interruptingSurface) Draw(row, col int, text string, color surface.ColorID) error {
	if !s.fired {
		s.fired = true
		s.token.Stop()
		s.Memory.Restore()
	}
	return s.Memory.Draw(row, col, text, color)
}

type frameLog struct {
	frames  []uint64
	mutated []int
}

func (l *frameLog) OnFrame(frame uint64, _ *grid.Grid, mutated int) {
	l.frames = append(l.frames, frame)
	l.mutated = append(l.mutated, mutated)
}

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(11, 22))
}

func animation(p float64) config.AnimationConfig {
	cfg := config.DefaultAnimation()
	cfg.MutationProbability = p
	return cfg
}

var _ = Describe("Engine", func() {
	var (
		mem   *surface.Memory
		token *shutdown.Token
		rec   *clock.Recorder
		ctx   context.Context
	)

	BeforeEach(func() {
		token = shutdown.NewToken()
		rec = clock.NewRecorder()
		ctx = context.Background()
	})

	newEngine := func(rows, cols int, p float64) *engine.Engine {
		mem = surface.NewMemory(rows, cols)
		e := engine.New(mem, token, animation(p), seeded())
		e.SetSleeper(rec)
		return e
	}

	Describe("color derivation", func() {
		It("colors every drawn cell by (frame + row + col) mod 4, 1-indexed", func() {
			// 40 columns is narrower than the status line, so only grid cells are drawn
			e := newEngine(8, 40, 0.05)
			for i := 0; i < 6; i++ {
				Expect(e.Step()).To(Succeed())
			}

			frames := mem.Frames()
			Expect(frames).To(HaveLen(6))
			for f, calls := range frames {
				Expect(calls).NotTo(BeEmpty())
				for _, c := range calls {
					want := surface.ColorID((f+c.Row+c.Col)%4) + 1
					Expect(c.Color).To(Equal(want), "frame %d cell (%d,%d)", f, c.Row, c.Col)
				}
			}
		})

		It("recolors a persistent glyph on every frame", func() {
			e := newEngine(4, 10, 0)
			e.Grid().Set(1, 2, '@')

			for i := 0; i < 4; i++ {
				Expect(e.Step()).To(Succeed())
			}

			var colors []surface.ColorID
			for _, calls := range mem.Frames() {
				Expect(calls).To(HaveLen(1))
				Expect(calls[0].Row).To(Equal(1))
				Expect(calls[0].Col).To(Equal(2))
				Expect(calls[0].Text).To(Equal("@"))
				colors = append(colors, calls[0].Color)
			}
			Expect(colors).To(Equal([]surface.ColorID{4, 1, 2, 3}))
		})
	})

	Describe("blank cells", func() {
		It("never draws a cell that was never mutated", func() {
			e := newEngine(5, 10, 0)
			for i := 0; i < 25; i++ {
				Expect(e.Step()).To(Succeed())
			}
			for _, calls := range mem.Frames() {
				Expect(calls).To(BeEmpty())
			}
			Expect(e.Grid().Filled()).To(BeZero())
		})
	})

	Describe("status line", func() {
		It("is omitted when it does not fit the width", func() {
			e := newEngine(5, 10, 0)
			Expect(len(e.Status())).To(BeNumerically(">=", 40))

			Expect(e.Step()).To(Succeed())
			Expect(mem.Frames()[0]).To(BeEmpty())
		})

		It("is omitted when its length equals the width", func() {
			cfg := animation(0)
			cfg.StatusLabel = "X"
			status := engine.StatusLine("X", 0)
			mem = surface.NewMemory(3, len(status))
			e := engine.New(mem, token, cfg, seeded())

			Expect(e.Step()).To(Succeed())
			Expect(mem.Frames()[0]).To(BeEmpty())
		})

		It("is drawn left-aligned on the last row with the frame number", func() {
			e := newEngine(6, 80, 0)
			Expect(e.Step()).To(Succeed())
			Expect(e.Step()).To(Succeed())

			frames := mem.Frames()
			for f, calls := range frames {
				Expect(calls).To(HaveLen(1))
				Expect(calls[0].Row).To(Equal(5))
				Expect(calls[0].Col).To(Equal(0))
				Expect(calls[0].Color).To(Equal(engine.StatusColor))
				Expect(calls[0].Text).To(Equal(engine.StatusLine(config.DefaultStatusLabel, uint64(f))))
			}
			Expect(frames[1][0].Text).To(ContainSubstring("FRAME: 1"))
			Expect(frames[1][0].Text).To(HavePrefix("TRON LEGACY TERMINAL"))
			Expect(frames[1][0].Text).To(HaveSuffix("ESC to exit"))
		})
	})

	Describe("Run", func() {
		It("exits on the escape key and ignores other keys", func() {
			e := newEngine(4, 20, 0.05)
			mem.QueueKeys('x', surface.KeyEnter, surface.KeyEscape)

			Expect(e.Run(ctx)).To(Succeed())
			Expect(e.Frame()).To(BeEquivalentTo(3))
			Expect(mem.Shows()).To(Equal(3))
			Expect(rec.Sleeps()).To(Equal([]time.Duration{
				80 * time.Millisecond, 80 * time.Millisecond, 80 * time.Millisecond,
			}))
		})

		It("clears the surface before every frame", func() {
			e := newEngine(4, 20, 0.05)
			mem.QueueKeys(surface.KeyNone, surface.KeyEscape)

			Expect(e.Run(ctx)).To(Succeed())
			Expect(mem.Clears()).To(Equal(2))
		})

		It("stops at the next frame boundary once the token is stopped", func() {
			e := newEngine(4, 20, 0.05)
			rec.OnSleep(func(n int, _ time.Duration) {
				if n == 3 {
					token.Stop()
				}
			})

			Expect(e.Run(ctx)).To(Succeed())
			Expect(e.Frame()).To(BeEquivalentTo(3))
			Expect(mem.Shows()).To(Equal(3))
		})

		It("draws nothing when the token is already stopped", func() {
			e := newEngine(4, 20, 0.05)
			token.Stop()

			Expect(e.Run(ctx)).To(Succeed())
			Expect(mem.Shows()).To(BeZero())
		})

		It("stops when the context is canceled", func() {
			e := newEngine(4, 20, 0.05)
			cctx, cancel := context.WithCancel(ctx)
			rec.OnSleep(func(n int, _ time.Duration) {
				if n == 2 {
					cancel()
				}
			})

			Expect(e.Run(cctx)).To(Succeed())
			Expect(e.Frame()).To(BeEquivalentTo(2))
		})

		It("cannot be resumed", func() {
			e := newEngine(4, 20, 0.05)
			mem.QueueKeys(surface.KeyEscape)

			Expect(e.Run(ctx)).To(Succeed())
			Expect(e.Finished()).To(BeTrue())
			Expect(e.Run(ctx)).To(MatchError(engine.ErrFinished))
		})

		It("exits cleanly when interrupted in the middle of a frame", func() {
			mem = surface.NewMemory(6, 80)
			surf := &interruptingSurface{Memory: mem, token: token}
			e := engine.New(surf, token, animation(1), seeded())
			e.SetSleeper(rec)

			Expect(e.Run(ctx)).To(Succeed())
			Expect(surf.fired).To(BeTrue())
			Expect(mem.Shows()).To(BeZero())
			Expect(e.Finished()).To(BeTrue())
		})

		It("returns the flush error when the surface closes without a stop request", func() {
			e := newEngine(4, 20, 0.05)
			mem.Restore()

			err := e.Run(ctx)
			Expect(err).To(MatchError(surface.ErrClosed))
			Expect(err.Error()).To(ContainSubstring("frame 0"))
		})

		It("swallows draw errors and keeps rendering", func() {
			mem = surface.NewMemory(6, 80)
			fs := failingSurface{mem}
			e := engine.New(fs, token, animation(0.5), seeded())
			e.SetSleeper(rec)
			mem.QueueKeys(surface.KeyNone, surface.KeyNone, surface.KeyEscape)

			Expect(e.Run(ctx)).To(Succeed())
			Expect(e.Frame()).To(BeEquivalentTo(3))
			Expect(e.DrawErrors()).To(BeNumerically(">", 0))
		})
	})

	Describe("observers", func() {
		It("sees every flushed frame with its mutation count", func() {
			e := newEngine(10, 10, 1)
			seen := &frameLog{}
			e.AddObserver(seen)

			for i := 0; i < 3; i++ {
				Expect(e.Step()).To(Succeed())
			}
			Expect(seen.frames).To(Equal([]uint64{0, 1, 2}))
			Expect(seen.mutated).To(Equal([]int{100, 100, 100}))
		})
	})

	Describe("mutation", func() {
		It("assigns palette glyphs at roughly the configured rate", func() {
			e := newEngine(100, 1000, 0.05)
			seen := &frameLog{}
			e.AddObserver(seen)

			Expect(e.Step()).To(Succeed())
			rate := float64(seen.mutated[0]) / 100000
			Expect(rate).To(BeNumerically("~", 0.05, 0.01))

			e.Grid().Each(func(_, _ int, glyph rune) {
				Expect(strings.ContainsRune(config.DefaultPalette, glyph)).To(BeTrue())
			})
		})
	})
})
