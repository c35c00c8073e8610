package boot_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/journalehsan/tron-legacy-terminal/internal/boot"
	"github.com/journalehsan/tron-legacy-terminal/internal/clock"
	"github.com/journalehsan/tron-legacy-terminal/internal/config"
	"github.com/journalehsan/tron-legacy-terminal/internal/shutdown"
	"github.com/journalehsan/tron-legacy-terminal/internal/surface"
)

// closingSurface stops the token and restores itself on the first draw.
type closingSurface struct {
	*surface.Memory
	token *shutdown.Token
}

func (s closingSurface) Draw(row, col int, text string, color surface.ColorID) error {
	if s.token.Stop() {
		s.Memory.Restore()
	}
	return s.Memory.Draw(row, col, text, color)
}

var _ = Describe("Sequencer", func() {
	var (
		mem   *surface.Memory
		token *shutdown.Token
		rec   *clock.Recorder
		seq   *boot.Sequencer
	)

	BeforeEach(func() {
		mem = surface.NewMemory(24, 80)
		token = shutdown.NewToken()
		rec = clock.NewRecorder()
		seq = boot.New(mem, token, config.DefaultBoot())
		seq.SetSleeper(rec)
	})

	It("shows the fixed messages in order, one per frame", func() {
		mem.QueueKeys('a')
		proceed, err := seq.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(proceed).To(BeTrue())

		frames := mem.Frames()
		Expect(frames).To(HaveLen(len(boot.Messages)))

		var shown []string
		for _, calls := range frames {
			Expect(len(calls)).To(BeNumerically("<=", 1))
			if len(calls) == 1 {
				Expect(calls[0].Color).To(Equal(boot.MessageColor))
				shown = append(shown, calls[0].Text)
			} else {
				shown = append(shown, "")
			}
		}
		Expect(shown).To(Equal(boot.Messages[:]))
		Expect(mem.Clears()).To(Equal(len(boot.Messages)))
	})

	It("holds each message for the fixed duration", func() {
		mem.QueueKeys('a')
		_, err := seq.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		sleeps := rec.Sleeps()
		Expect(sleeps).To(HaveLen(len(boot.Messages)))
		for _, d := range sleeps {
			Expect(d).To(Equal(400 * time.Millisecond))
		}
	})

	It("centers the message block on the surface", func() {
		mem.QueueKeys('a')
		_, err := seq.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		first := mem.Frames()[0][0]
		Expect(first.Row).To(Equal(24/2 - 7/2))
		Expect(first.Col).To(Equal((80 - len("GRID CORE ONLINE")) / 2))

		last := mem.Frames()[6][0]
		Expect(last.Row).To(Equal(24/2 - 7/2 + 6))
	})

	DescribeTable("gate outcome",
		func(key surface.Key, want bool) {
			mem.QueueKeys(key)
			proceed, err := seq.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(proceed).To(Equal(want))
		},
		Entry("escape aborts", surface.KeyEscape, false),
		Entry("a letter proceeds", surface.Key('x'), true),
		Entry("enter proceeds", surface.KeyEnter, true),
		Entry("space proceeds", surface.Key(' '), true),
	)

	It("polls every 100ms while no key is pending", func() {
		rec.OnSleep(func(n int, _ time.Duration) {
			// three idle polls after the seven holds
			if n == len(boot.Messages)+3 {
				mem.QueueKeys('k')
			}
		})

		proceed, err := seq.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(proceed).To(BeTrue())

		sleeps := rec.Sleeps()
		Expect(sleeps).To(HaveLen(len(boot.Messages) + 3))
		Expect(sleeps[len(boot.Messages):]).To(HaveEach(100 * time.Millisecond))
	})

	It("gives up the gate when the stop token is set", func() {
		rec.OnSleep(func(n int, _ time.Duration) {
			if n == len(boot.Messages)+2 {
				token.Stop()
			}
		})

		proceed, err := seq.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(proceed).To(BeFalse())
	})

	It("stops showing messages when interrupted mid-sequence", func() {
		rec.OnSleep(func(n int, _ time.Duration) {
			if n == 2 {
				token.Stop()
			}
		})

		proceed, err := seq.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(proceed).To(BeFalse())
		Expect(mem.Frames()).To(HaveLen(2))
	})

	It("aborts quietly when interrupted while a message is drawn", func() {
		s := boot.New(closingSurface{Memory: mem, token: token}, token, config.DefaultBoot())
		s.SetSleeper(rec)

		proceed, err := s.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(proceed).To(BeFalse())
		Expect(mem.Shows()).To(BeZero())
		Expect(rec.Sleeps()).To(BeEmpty())
	})

	It("fails when the surface cannot flush", func() {
		mem.Restore()
		proceed, err := seq.Run(context.Background())
		Expect(err).To(MatchError(surface.ErrClosed))
		Expect(proceed).To(BeFalse())
	})

	It("skips lines that fall outside a tiny surface", func() {
		tiny := surface.NewMemory(2, 5)
		s := boot.New(tiny, token, config.DefaultBoot())
		s.SetSleeper(rec)
		tiny.QueueKeys('a')

		proceed, err := s.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(proceed).To(BeTrue())
		Expect(tiny.Frames()).To(HaveLen(len(boot.Messages)))

		// rows 2/2 - 3 + i land in [0,2) only for i = 2 and i = 3
		drawn := 0
		for _, calls := range tiny.Frames() {
			drawn += len(calls)
		}
		Expect(drawn).To(Equal(2))
	})
})

var _ = Describe("Position", func() {
	It("never returns a negative column", func() {
		_, col, _ := boot.Position(24, 10, 6)
		Expect(col).To(Equal(0))
	})

	It("reports rows outside the surface", func() {
		_, _, ok := boot.Position(1, 80, 0)
		Expect(ok).To(BeFalse())
	})
})
