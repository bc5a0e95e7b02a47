// Package lifecycle runs subsystem startup and shutdown hooks and tracks
// whether the process is ready for traffic.
package lifecycle

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrShutdownTimeout is returned when shutdown hooks outlive their deadline.
var ErrShutdownTimeout = errors.New("shutdown hooks did not finish in time")

// ReadinessChecker is a subsystem that can report whether it is serving.
type ReadinessChecker interface {
	Ready() bool
}

// Coordinator owns the process context. Startup hooks run immediately in
// their own goroutines; shutdown hooks wait on Context and run when
// Shutdown cancels it.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc

	starting sync.WaitGroup
	stopping sync.WaitGroup
	ready    atomic.Bool
}

func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{ctx: ctx, cancel: cancel}
}

// Context is cancelled when Shutdown begins.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

func (c *Coordinator) OnStartup(fn func()) {
	c.starting.Go(fn)
}

// OnShutdown starts fn now. fn is expected to block on Context().Done()
// before releasing its resources.
func (c *Coordinator) OnShutdown(fn func()) {
	c.stopping.Go(fn)
}

// Ready reports whether WaitForStartup has returned.
func (c *Coordinator) Ready() bool {
	return c.ready.Load()
}

// ReadyWith is Ready combined with every non-nil checker.
func (c *Coordinator) ReadyWith(checkers ...ReadinessChecker) bool {
	if !c.Ready() {
		return false
	}
	for _, rc := range checkers {
		if rc != nil && !rc.Ready() {
			return false
		}
	}
	return true
}

// WaitForStartup blocks until every startup hook returns, then marks the
// process ready.
func (c *Coordinator) WaitForStartup() {
	c.starting.Wait()
	c.ready.Store(true)
}

// Shutdown cancels the context and waits up to timeout for shutdown hooks.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.ready.Store(false)
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.stopping.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return errors.Wrapf(ErrShutdownTimeout, "after %s", timeout)
	}
}
