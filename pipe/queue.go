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

package pipe

import (
	"sync"

	"github/sabouaram/zmtpcore/msg"
)

// queue is a bounded SPSC ring buffer of Messages guarded by a mutex.
// A plain mutex (rather than a lock-free ring) matches the rest of this
// module's concurrency style, which favors straightforward, auditable
// synchronization over hand-rolled lock-free structures (spec.md §5).
type queue struct {
	mu sync.Mutex

	buf  []msg.Message
	head int
	size int

	hwm      int
	lwm      int
	conflate bool
	wasFull  bool
}

func newQueue(hwm, lwm int, conflate bool) *queue {
	cap := hwm
	if conflate {
		cap = 1
	}
	return &queue{buf: make([]msg.Message, cap), hwm: hwm, lwm: lwm, conflate: conflate}
}

func (q *queue) canPush() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.conflate {
		return true
	}
	return q.size < q.hwm
}

// push enqueues m. In conflate mode, it always succeeds and overwrites
// the single pending slot. Otherwise it fails once size reaches hwm.
func (q *queue) push(m msg.Message) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.conflate {
		q.buf[0] = m
		q.size = 1
		return true
	}

	if q.size >= q.hwm {
		return false
	}

	idx := (q.head + q.size) % len(q.buf)
	q.buf[idx] = m
	q.size++
	if q.size >= q.hwm {
		q.wasFull = true
	}
	return true
}

// pop dequeues the oldest message. crossedLWM is true the first time the
// queue's size drops to or below lwm after having been at hwm, signaling
// the writer side that backpressure has relaxed.
func (q *queue) pop() (m msg.Message, ok bool, crossedLWM bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		return msg.Message{}, false, false
	}

	m = q.buf[q.head]
	q.buf[q.head] = msg.Message{}
	q.size--
	if !q.conflate {
		q.head = (q.head + 1) % len(q.buf)
	}

	if q.wasFull && q.size <= q.lwm {
		q.wasFull = false
		crossedLWM = true
	}
	return m, true, crossedLWM
}

func (q *queue) empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size == 0
}
