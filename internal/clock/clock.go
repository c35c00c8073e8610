// Package clock provides the sleep abstraction used by the frame loop and
// the boot sequencer, so tests can run them without waiting.
package clock

import (
	"context"
	"sync"
	"time"
)

type Sleeper interface {
	// Sleep pauses for d or until ctx is done, whichever comes first.
	Sleep(ctx context.Context, d time.Duration)
}

// Real sleeps on the system clock.
type Real struct{}

func (Real) Sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Recorder never blocks; it records every requested duration.
type Recorder struct {
	mu     sync.Mutex
	sleeps []time.Duration
	hook   func(n int, d time.Duration)
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// OnSleep registers fn to run on each Sleep with the 1-based call count.
func (r *Recorder) OnSleep(fn func(n int, d time.Duration)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hook = fn
}

func (r *Recorder) Sleep(_ context.Context, d time.Duration) {
	r.mu.Lock()
	r.sleeps = append(r.sleeps, d)
	n, hook := len(r.sleeps), r.hook
	r.mu.Unlock()
	if hook != nil {
		hook(n, d)
	}
}

func (r *Recorder) Sleeps() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]time.Duration, len(r.sleeps))
	copy(out, r.sleeps)
	return out
}

func (r *Recorder) Total() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total time.Duration
	for _, d := range r.sleeps {
		total += d
	}
	return total
}
