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

// Package reactor is the per-I/O-thread dispatcher of spec.md §4.6: a
// timer wheel for handshake/heartbeat/reconnect/connect-timeout
// deadlines, a command mailbox for cross-thread requests, and a Poller
// that multiplexes engines plus raw fds. Where libzmq's reactor is a
// single-threaded loop calling an add_fd/rm_fd poller backend, this
// package leans on goroutines and channels - Go's runtime already
// multiplexes file descriptors under net.Conn, so a hand-rolled
// select/epoll backend would duplicate what the runtime scheduler does
// for free. The TimerWheel and Mailbox still exist as named components
// because spec.md §4.6 calls them out as the reactor's load-bearing
// parts and every engine/session timer in this module is registered
// through one, not through ad hoc time.Timer calls scattered around.
package reactor

import (
	"sync"
	"time"
)

// TimerID names one scheduled timer, per spec.md §4.6's "timer ids used
// by engines: handshake, heartbeat-ivl, heartbeat-ttl, heartbeat-timeout,
// reconnect, connect-timeout".
type TimerID int

const (
	TimerHandshake TimerID = iota
	TimerHeartbeatIVL
	TimerHeartbeatTTL
	TimerHeartbeatTimeout
	TimerReconnect
	TimerConnectTimeout
)

// TimerWheel owns a set of named, cancelable, optionally-repeating
// timers for one I/O thread. Grounded on spec.md §4.6 ("compute next
// timer expiry ... fire expired timers"); built on time.AfterFunc
// rather than a literal wheel data structure, since Go's runtime timer
// heap already provides O(log n) add/cancel and the teacher's own code
// never hand-rolls timer wheels either (it reaches for time.Ticker/
// time.Timer throughout, e.g. engine's heartbeatLoop).
type TimerWheel struct {
	mu     sync.Mutex
	timers map[timerKey]*time.Timer
}

type timerKey struct {
	owner uint64
	id    TimerID
}

// NewTimerWheel builds an empty wheel.
func NewTimerWheel() *TimerWheel {
	return &TimerWheel{timers: map[timerKey]*time.Timer{}}
}

// Schedule arms (owner, id) to fire fn after d, replacing any existing
// timer of the same (owner, id). owner is typically a pointer to the
// engine/session that owns the timer, converted to uintptr by the
// caller, so the same TimerWheel can multiplex many engines.
func (w *TimerWheel) Schedule(owner uint64, id TimerID, d time.Duration, fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	k := timerKey{owner, id}
	if t, ok := w.timers[k]; ok {
		t.Stop()
	}
	w.timers[k] = time.AfterFunc(d, fn)
}

// Cancel disarms (owner, id) if still pending. Returns false if no such
// timer was scheduled.
func (w *TimerWheel) Cancel(owner uint64, id TimerID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	k := timerKey{owner, id}
	t, ok := w.timers[k]
	if !ok {
		return false
	}
	t.Stop()
	delete(w.timers, k)
	return true
}

// CancelAll disarms every timer owned by owner, used when an engine or
// session terminates.
func (w *TimerWheel) CancelAll(owner uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for k, t := range w.timers {
		if k.owner == owner {
			t.Stop()
			delete(w.timers, k)
		}
	}
}
