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

package session

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"syscall"
	"time"

	"github/sabouaram/zmtpcore/logger"
	"github/sabouaram/zmtpcore/pipe"
	"github/sabouaram/zmtpcore/transport"
)

// Backoff computes the stream-connecter retry delay of spec.md §4.6:
// "schedules a reconnect timer starting at reconnect_ivl and doubling up
// to reconnect_ivl_max, with a random jitter bounded by reconnect_ivl",
// grounded on original_source/src/stream_connecter/mod.rs's backoff
// sequence (SUPPLEMENTED FEATURES, SPEC_FULL §12).
type Backoff struct {
	ivl    time.Duration
	ivlMax time.Duration
	cur    time.Duration
}

// NewBackoff builds a Backoff starting at ivl, doubling up to ivlMax.
// ivlMax <= 0 means "no cap" (matches ZMQ_RECONNECT_IVL_MAX's default
// of 0, meaning "use reconnect_ivl without growth" in libzmq - but this
// port always grows, capping at ivl when ivlMax <= ivl, so callers that
// want the no-growth default should simply pass equal ivl/ivlMax).
func NewBackoff(ivl, ivlMax time.Duration) *Backoff {
	if ivl <= 0 {
		ivl = 100 * time.Millisecond
	}
	if ivlMax < ivl {
		ivlMax = ivl
	}
	return &Backoff{ivl: ivl, ivlMax: ivlMax, cur: ivl}
}

// Next returns the next delay (current interval plus jitter bounded by
// the base ivl) and doubles the interval for next time, capped at
// ivlMax.
func (b *Backoff) Next() time.Duration {
	jitter := time.Duration(rand.Int63n(int64(b.ivl) + 1))
	d := b.cur + jitter
	b.cur *= 2
	if b.cur > b.ivlMax {
		b.cur = b.ivlMax
	}
	return d
}

// Reset returns the backoff to its initial interval, used after a
// connection is established successfully.
func (b *Backoff) Reset() { b.cur = b.ivl }

// Reconnector repeatedly dials ep and runs a Session over each
// connection until ctx is cancelled, applying Backoff between failed
// attempts and honoring StopOnRefused per ZMQ_RECONNECT_STOP_CONN_REFUSED
// (spec.md §4.6).
type Reconnector struct {
	Endpoint       transport.Endpoint
	ConnectTimeout time.Duration
	Backoff        *Backoff
	StopOnRefused  bool
	SessionConfig  Config
	Log            logger.FuncLog
}

// Run dials and drives sessions until ctx is done or a refused
// connection permanently stops retrying (when StopOnRefused is set).
// attach is called with each new Session's application-facing Endpoint
// so the caller can Attach/AttachIdentified it onto a zsocket.Socket
// before the connection starts carrying traffic.
func (r *Reconnector) Run(ctx context.Context, attach func(appSide *pipe.Endpoint)) error {
	log := r.Log
	if log == nil {
		log = defaultLog
	}
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := transport.Dial(ctx, r.Endpoint, r.ConnectTimeout)
		if err != nil {
			log().Warning("session: connect to %s failed: %v", nil, r.Endpoint.Address, err)
			if r.StopOnRefused && isConnRefused(err) {
				return err
			}
			if !sleepCtx(ctx, r.Backoff.Next()) {
				return ctx.Err()
			}
			continue
		}
		r.Backoff.Reset()

		sess, appSide := New(conn, r.SessionConfig)
		if attach != nil {
			attach(appSide)
		}
		if err := sess.Run(ctx); err != nil {
			log().Warning("session: connection to %s ended: %v", nil, r.Endpoint.Address, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !sleepCtx(ctx, r.Backoff.Next()) {
			return ctx.Err()
		}
	}
}

func isConnRefused(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, syscall.ECONNREFUSED)
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
