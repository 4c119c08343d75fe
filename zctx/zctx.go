/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package zctx is the root Context of spec.md §5: it owns the set of
// live sockets and the fixed pool of I/O-thread goroutine slots their
// sessions run on, and drives the three-phase termination sequence
// (stop/shutdown/term). I/O-thread fan-out is bounded by
// golang.org/x/sync/semaphore and waited on with golang.org/x/sync/errgroup
// rather than a hand-rolled WaitGroup+channel, per SPEC_FULL §11's
// explicit wiring of that pair into zctx/reactor.
package zctx

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github/sabouaram/zmtpcore/logger"
	"github/sabouaram/zmtpcore/options"
	"github/sabouaram/zmtpcore/zsocket"
)

func defaultLog() logger.Logger {
	return logger.New(context.Background())
}

// Phase is the context's position in spec.md §5's three-phase
// termination: "stop (unblock all blocked sends/receives with ETERM),
// shutdown (no new sockets), term (drain according to linger policy,
// then destroy I/O threads)".
type Phase int32

const (
	PhaseActive Phase = iota
	PhaseStopped
	PhaseShutdown
	PhaseTerminated
)

// Config bundles what New needs.
type Config struct {
	IOThreads int // number of concurrent session goroutines allowed; <=1 defaults to 1
	Log       logger.FuncLog
	Metrics   *Metrics // nil builds an unregistered, private Metrics
}

// Context is the root owner of every Socket and I/O-thread goroutine in
// one ZMTP application, per spec.md §5 ("the context holds a set of
// sockets with a single lock taken only on socket create/destroy").
type Context struct {
	mu      sync.Mutex
	phase   Phase
	sockets map[*zsocket.Socket]struct{}

	sem   *semaphore.Weighted
	group *errgroup.Group
	gctx  context.Context
	cancel context.CancelFunc

	log     logger.FuncLog
	metrics *Metrics
}

// New builds a Context with ioThreads concurrent I/O-thread slots.
func New(cfg Config) *Context {
	if cfg.IOThreads <= 0 {
		cfg.IOThreads = 1
	}
	if cfg.Log == nil {
		cfg.Log = defaultLog
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics(nil)
	}
	gctx, cancel := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(gctx)
	c := &Context{
		sockets: map[*zsocket.Socket]struct{}{},
		sem:     semaphore.NewWeighted(int64(cfg.IOThreads)),
		group:   group,
		gctx:    gctx,
		cancel:  cancel,
		log:     cfg.Log,
		metrics: cfg.Metrics,
	}
	return c
}

// Socket creates a new Socket and registers it with the context.
// Returns ErrorContextShutdown once Shutdown has been called.
func (c *Context) Socket(t zsocket.Type, opts options.Options) (*zsocket.Socket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase >= PhaseShutdown {
		return nil, ErrorContextShutdown.Error()
	}
	s := zsocket.New(t, opts)
	c.sockets[s] = struct{}{}
	c.metrics.sockets.Inc()
	return s, nil
}

// forget drops a socket from the tracked set without holding the lock
// across a caller-supplied callback (used by a socket's own Close once
// that's wired up by a higher layer).
func (c *Context) forget(s *zsocket.Socket) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sockets[s]; ok {
		delete(c.sockets, s)
		c.metrics.sockets.Dec()
	}
}

// Go runs fn as one I/O thread's unit of work, gated by the context's
// IOThreads semaphore so no more than that many sessions run
// concurrently, and tracked by the internal errgroup so Term can wait
// for every spawned goroutine to finish before returning. fn receives
// a context cancelled the instant Stop is called.
func (c *Context) Go(fn func(ctx context.Context) error) {
	c.metrics.ioQueued.Inc()
	c.group.Go(func() error {
		if err := c.sem.Acquire(c.gctx, 1); err != nil {
			c.metrics.ioQueued.Dec()
			return nil
		}
		c.metrics.ioQueued.Dec()
		c.metrics.ioActive.Inc()
		defer c.sem.Release(1)
		defer c.metrics.ioActive.Dec()
		return fn(c.gctx)
	})
}

// Done returns a channel closed once Stop has cancelled the context,
// the signal every blocked send/recv should select on to return ETERM.
func (c *Context) Done() <-chan struct{} { return c.gctx.Done() }

// Err returns ErrorTerm once the context has been stopped, mirroring
// spec.md §5's ETERM.
func (c *Context) Err() error {
	select {
	case <-c.gctx.Done():
		return ErrorTerm.Error()
	default:
		return nil
	}
}

// Stop begins phase one: cancel every I/O-thread goroutine's context so
// blocked operations unblock with ETERM. Idempotent.
func (c *Context) Stop() {
	c.mu.Lock()
	if c.phase < PhaseStopped {
		c.phase = PhaseStopped
	}
	c.mu.Unlock()
	c.cancel()
	c.log().Info("zctx: context stopped, %d sockets still tracked", nil, len(c.sockets))
}

// Shutdown begins phase two: reject further Socket calls. Does not
// itself stop in-flight I/O; call Stop (directly or via Term) for that.
func (c *Context) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase < PhaseShutdown {
		c.phase = PhaseShutdown
	}
}

// Term runs phase three: Shutdown, wait up to linger for in-flight I/O
// threads to drain on their own, then Stop and wait for every Go'd
// goroutine to return. Returns the first non-nil error any goroutine
// returned, if any.
func (c *Context) Term(linger time.Duration) error {
	c.Shutdown()
	if linger > 0 {
		done := make(chan error, 1)
		go func() { done <- c.group.Wait() }()
		select {
		case err := <-done:
			c.mu.Lock()
			c.phase = PhaseTerminated
			c.mu.Unlock()
			return err
		case <-time.After(linger):
		}
	}
	c.Stop()
	err := c.group.Wait()
	c.mu.Lock()
	c.phase = PhaseTerminated
	c.mu.Unlock()
	return err
}

// CurrentPhase reports the context's termination phase.
func (c *Context) CurrentPhase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}
