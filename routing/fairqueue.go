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

// Package routing holds the pipe-selection algorithms shared by the
// socket patterns: round-robin fair queuing for receive (spec.md §4.2,
// "Fair queuing"), mirrored load balancing for send, a subscription
// trie for PUB-side filtering, and the ROUTER routing-id map.
package routing

import (
	"github/sabouaram/zmtpcore/msg"
	"github/sabouaram/zmtpcore/pipe"
)

// FairQueue round-robins reads across a set of attached pipes,
// retiring exhausted/terminated pipes to the back of the active
// window and keeping a "current" index sticky across multipart reads
// so a message's MORE parts always come from the same pipe (spec.md
// §4.2, I-FQ). Grounded on original_source/src/defines/fair_queue.rs.
type FairQueue struct {
	pipes   []*pipe.Endpoint
	active  int
	current int
	more    bool
}

func NewFairQueue() *FairQueue {
	return &FairQueue{}
}

// Attach adds a pipe to the active window.
func (q *FairQueue) Attach(p *pipe.Endpoint) {
	q.pipes = append(q.pipes, p)
	last := len(q.pipes) - 1
	q.pipes[q.active], q.pipes[last] = q.pipes[last], q.pipes[q.active]
	q.active++
}

// Activated moves a pipe that had fallen out of the active window back
// into it, e.g. in response to its EventSink's ReadActivated callback
// firing after new data arrived.
func (q *FairQueue) Activated(p *pipe.Endpoint) {
	idx := q.indexOf(p)
	if idx < 0 || idx < q.active {
		return
	}
	q.pipes[idx], q.pipes[q.active] = q.pipes[q.active], q.pipes[idx]
	q.active++
}

// Terminated removes a pipe, e.g. once its EventSink reports Terminated.
func (q *FairQueue) Terminated(p *pipe.Endpoint) {
	idx := q.indexOf(p)
	if idx < 0 {
		return
	}
	if idx < q.active {
		q.active--
		q.pipes[idx], q.pipes[q.active] = q.pipes[q.active], q.pipes[idx]
		if q.current == q.active {
			q.current = 0
		}
		idx = q.active
	}
	q.pipes = append(q.pipes[:idx], q.pipes[idx+1:]...)
}

func (q *FairQueue) indexOf(p *pipe.Endpoint) int {
	for i, e := range q.pipes {
		if e == p {
			return i
		}
	}
	return -1
}

// Recv pulls the next message from the current (or next eligible)
// pipe. It returns the pipe the message was read from so callers can
// attach routing-id metadata.
func (q *FairQueue) Recv() (m msg.Message, from *pipe.Endpoint, ok bool) {
	for q.active > 0 {
		m, ok = q.pipes[q.current].Read()
		if ok {
			from = q.pipes[q.current]
			q.more = m.More()
			if !q.more {
				q.current = (q.current + 1) % q.active
			}
			return m, from, true
		}
		q.active--
		q.pipes[q.current], q.pipes[q.active] = q.pipes[q.active], q.pipes[q.current]
		if q.current == q.active {
			q.current = 0
		}
	}
	return msg.Message{}, nil, false
}

// HasIn reports whether a subsequent Recv would likely succeed,
// without consuming a message.
func (q *FairQueue) HasIn() bool {
	if q.more {
		return true
	}
	for q.active > 0 {
		if q.pipes[q.current].CheckRead() {
			return true
		}
		q.active--
		q.pipes[q.current], q.pipes[q.active] = q.pipes[q.active], q.pipes[q.current]
		if q.current == q.active {
			q.current = 0
		}
	}
	return false
}
