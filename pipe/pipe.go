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

// Package pipe implements the bounded, single-producer/single-consumer
// queue that carries messages between a socket's application-facing
// side and its engine-facing side, with high/low watermark backpressure,
// optional conflate (keep-only-latest) mode and a four-way termination
// handshake (spec.md §5, "Pipe").
package pipe

import (
	"sync"
	"sync/atomic"

	"github/sabouaram/zmtpcore/msg"
	"github/sabouaram/zmtpcore/network"
)

// state is the pipe's termination state machine. A pipe moves strictly
// forward: active -> pending -> terminating -> terminated. Both ends
// must exchange a terminate/terminate-ack pair before the underlying
// queues are released (the "four-way handshake": terminate request in
// each direction, ack in each direction).
type state int32

const (
	stateActive state = iota
	statePending
	stateTerminating
	stateTerminated
)

// Endpoint is one side of a Pipe: the side a socket pattern reads from
// and writes to. The two Endpoints returned by New share the same pair
// of bounded queues, one per direction.
type Endpoint struct {
	out *queue // messages written here are delivered to the peer
	in  *queue // messages read here were written by the peer

	peer *Endpoint // the other Endpoint, set after both are constructed

	conflate bool

	state   atomic.Int32
	termAck chan struct{}
	once    sync.Once

	stats *network.Counters

	sink EventSink
}

// EventSink receives edge-triggered notifications when a pipe becomes
// readable/writable again after blocking, mirroring libzmq's
// read_activated/write_activated pipe events so a reactor can re-arm a
// socket without polling the queue on every loop iteration.
type EventSink interface {
	ReadActivated(*Endpoint)
	WriteActivated(*Endpoint)
	Terminated(*Endpoint)
}

// New builds a connected pair of Endpoints. hwm is the high water mark
// (messages queued before Write starts rejecting); lwm is the low water
// mark at which a previously-full queue starts signaling ReadActivated
// again once the reader drains it below that line. conflate, if true,
// makes Write overwrite the single pending message instead of queuing
// (spec.md §5, "Conflate").
func New(hwm, lwm int, conflate bool) (a, b *Endpoint) {
	if hwm <= 0 {
		hwm = 1000
	}
	if lwm <= 0 || lwm >= hwm {
		lwm = hwm / 2
		if lwm == 0 {
			lwm = 1
		}
	}

	qab := newQueue(hwm, lwm, conflate)
	qba := newQueue(hwm, lwm, conflate)

	a = &Endpoint{out: qab, in: qba, conflate: conflate, termAck: make(chan struct{}, 1), stats: &network.Counters{}}
	b = &Endpoint{out: qba, in: qab, conflate: conflate, termAck: make(chan struct{}, 1), stats: &network.Counters{}}
	a.peer = b
	b.peer = a
	return a, b
}

// SetEventSink attaches the notification sink used by the reactor. Nil
// is valid and disables notifications.
func (e *Endpoint) SetEventSink(s EventSink) { e.sink = s }

func (e *Endpoint) currentState() state { return state(e.state.Load()) }

// CheckWrite reports whether a Write would currently succeed without
// blocking or failing on the high water mark.
func (e *Endpoint) CheckWrite() bool {
	if e.currentState() != stateActive {
		return false
	}
	return e.out.canPush()
}

// CheckRead reports whether a Read would currently return a message.
func (e *Endpoint) CheckRead() bool {
	return !e.in.empty()
}

// Write enqueues msg for delivery to the peer Endpoint. Returns
// ErrorHighWaterMark if the outbound queue is at capacity and conflate
// is disabled; the caller (a socket's load-balance/fair-queue layer) is
// expected to treat that as "try another pipe" or "apply mute policy".
func (e *Endpoint) Write(m msg.Message) error {
	if e.currentState() != stateActive {
		return ErrorTerminated.Error()
	}
	if !e.out.push(m) {
		return ErrorHighWaterMark.Error()
	}
	e.stats.Add(network.StatPackets, 1)
	e.stats.Add(network.StatBytes, uint64(m.Size()))
	if e.peer != nil && e.peer.sink != nil {
		e.peer.sink.ReadActivated(e.peer)
	}
	return nil
}

// Read dequeues the next message written by the peer. ok is false when
// the queue is currently empty (not a terminal condition by itself).
func (e *Endpoint) Read() (m msg.Message, ok bool) {
	m, ok, crossedLWM := e.in.pop()
	if ok && crossedLWM && e.peer != nil && e.peer.sink != nil {
		e.peer.sink.WriteActivated(e.peer)
	}
	return m, ok
}

// Terminate begins the four-way termination handshake: it marks this
// Endpoint terminating, flushes no further writes, and waits for the
// peer's own Terminate to be observed before both flip to terminated.
// linger, if non-zero, is informational only here (higher layers choose
// how long to keep draining before calling Terminate).
func (e *Endpoint) Terminate() error {
	if !e.state.CompareAndSwap(int32(stateActive), int32(stateTerminating)) {
		if e.currentState() == stateTerminated {
			return ErrorTerminated.Error()
		}
		return ErrorTerminating.Error()
	}
	select {
	case e.termAck <- struct{}{}:
	default:
	}
	if e.peer != nil {
		select {
		case e.peer.termAck <- struct{}{}:
		default:
		}
	}
	e.once.Do(func() {
		e.state.Store(int32(stateTerminated))
		if e.sink != nil {
			e.sink.Terminated(e)
		}
	})
	return nil
}

// Terminated reports whether this Endpoint has completed termination.
func (e *Endpoint) Terminated() bool { return e.currentState() == stateTerminated }

// Stats returns the byte/packet counters accumulated on this Endpoint.
func (e *Endpoint) Stats() *network.Counters { return e.stats }
