// Package shutdown carries the stop request from the interrupt path to the
// frame loop.
package shutdown

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

// Token is a one-way stop flag. Once stopped it stays stopped.
type Token struct {
	stopped atomic.Bool
}

func NewToken() *Token {
	return &Token{}
}

// Stop sets the flag and reports whether this call was the one that set it.
func (t *Token) Stop() bool {
	return t.stopped.CompareAndSwap(false, true)
}

func (t *Token) Stopped() bool {
	return t.stopped.Load()
}

// Handler runs the interrupt path: stop the token, run the registered
// restore functions, exit with status 0. It runs at most once.
type Handler struct {
	token *Token
	exit  func(code int)

	mu      sync.Mutex
	restore []func()
	once    sync.Once
}

// NewHandler returns a handler that calls exit when triggered. A nil exit
// uses os.Exit.
func NewHandler(token *Token, exit func(code int)) *Handler {
	if exit == nil {
		exit = os.Exit
	}
	return &Handler{token: token, exit: exit}
}

func (h *Handler) Token() *Token { return h.token }

// OnShutdown registers fn to run during Trigger, in registration order.
func (h *Handler) OnShutdown(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.restore = append(h.restore, fn)
}

func (h *Handler) Trigger() {
	h.once.Do(func() {
		h.token.Stop()
		log.Println("interrupt received, restoring terminal")

		h.mu.Lock()
		fns := append([]func(){}, h.restore...)
		h.mu.Unlock()
		for _, fn := range fns {
			fn()
		}
		h.exit(0)
	})
}

// Listen triggers the handler on SIGINT or SIGTERM until ctx is done or
// the returned stop function is called.
func (h *Handler) Listen(ctx context.Context) (stop func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-sigCh:
			h.Trigger()
		case <-ctx.Done():
		}
	}()

	return func() {
		signal.Stop(sigCh)
		cancel()
	}
}
