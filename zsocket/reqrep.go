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

package zsocket

import (
	"github/sabouaram/zmtpcore/msg"
	"github/sabouaram/zmtpcore/pipe"
	"github/sabouaram/zmtpcore/routing"
)

type reqState int

const (
	reqIdle reqState = iota
	reqSending
	reqAwaitingReply
)

// reqPattern enforces the strict send/recv alternation of spec.md §4.3's
// REQ row (testable property §8.5): a request round-robins to the next
// connected peer behind an auto-prepended empty delimiter frame, and no
// further Send is accepted until the matching Recv drains the reply
// from that same peer.
type reqPattern struct {
	pipes  []*pipe.Endpoint
	next   int
	state  reqState
	active *pipe.Endpoint
}

func newReqPattern() *reqPattern { return &reqPattern{} }

func (r *reqPattern) attach(p *pipe.Endpoint) error {
	r.pipes = append(r.pipes, p)
	return nil
}

func (r *reqPattern) detach(p *pipe.Endpoint) {
	for i, e := range r.pipes {
		if e == p {
			r.pipes = append(r.pipes[:i], r.pipes[i+1:]...)
			break
		}
	}
	if r.active == p {
		r.active = nil
		r.state = reqIdle
	}
}

func (r *reqPattern) send(m msg.Message) error {
	if r.state == reqAwaitingReply {
		return ErrorWrongState.Error()
	}
	if r.state == reqIdle {
		if len(r.pipes) == 0 {
			return ErrorNoRoute.Error()
		}
		r.active = r.pipes[r.next%len(r.pipes)]
		r.next++
		delim := msg.NewDelimiter()
		delim.SetMore(true)
		if err := r.active.Write(delim); err != nil {
			return err
		}
		r.state = reqSending
	}
	if err := r.active.Write(m); err != nil {
		return err
	}
	if !m.More() {
		r.state = reqAwaitingReply
	}
	return nil
}

func (r *reqPattern) recv() (msg.Message, error) {
	if r.state != reqAwaitingReply {
		return msg.Message{}, ErrorWrongState.Error()
	}
	m, ok := r.active.Read()
	if !ok {
		return msg.Message{}, ErrorAgain.Error()
	}
	if m.IsDelimiter() {
		m, ok = r.active.Read()
		if !ok {
			return msg.Message{}, ErrorAgain.Error()
		}
	}
	if !m.More() {
		r.state = reqIdle
	}
	return m, nil
}

func (r *reqPattern) readActivated(*pipe.Endpoint)  {}
func (r *reqPattern) writeActivated(*pipe.Endpoint) {}

// repPattern is REQ's counterpart: it fair-queues across every
// connected peer, capturing whatever address frames precede the empty
// delimiter as the request's envelope ("label stack"), then replays
// that exact stack ahead of the application's reply so a REQ-ROUTER-REP
// (or deeper) chain routes the answer back correctly (spec.md §4.3,
// REP row).
type repPattern struct {
	fq    *routing.FairQueue
	pipes map[*pipe.Endpoint]struct{}

	envelope      []msg.Message
	replyPipe     *pipe.Endpoint
	inBody        bool
	awaitingReply bool
	sentHeader    bool
}

func newRepPattern() *repPattern {
	return &repPattern{fq: routing.NewFairQueue(), pipes: map[*pipe.Endpoint]struct{}{}}
}

func (r *repPattern) attach(p *pipe.Endpoint) error {
	r.fq.Attach(p)
	r.pipes[p] = struct{}{}
	return nil
}

func (r *repPattern) detach(p *pipe.Endpoint) {
	r.fq.Terminated(p)
	delete(r.pipes, p)
	if r.replyPipe == p {
		r.rollback()
	}
}

// rollback discards a partially received or partially replied request
// whose peer disappeared mid-exchange, returning the pattern to idle
// rather than wedging every future Send/Recv in ErrorWrongState.
func (r *repPattern) rollback() {
	r.envelope = nil
	r.replyPipe = nil
	r.inBody = false
	r.awaitingReply = false
	r.sentHeader = false
}

func (r *repPattern) recv() (msg.Message, error) {
	if r.awaitingReply {
		return msg.Message{}, ErrorWrongState.Error()
	}
	if !r.inBody {
		r.envelope = r.envelope[:0]
		for {
			m, from, ok := r.fq.Recv()
			if !ok {
				return msg.Message{}, ErrorAgain.Error()
			}
			if m.IsDelimiter() {
				r.replyPipe = from
				r.inBody = true
				break
			}
			r.envelope = append(r.envelope, m)
		}
	}
	m, _, ok := r.fq.Recv()
	if !ok {
		return msg.Message{}, ErrorAgain.Error()
	}
	if !m.More() {
		r.inBody = false
		r.awaitingReply = true
	}
	return m, nil
}

func (r *repPattern) send(m msg.Message) error {
	if !r.awaitingReply {
		return ErrorWrongState.Error()
	}
	if r.replyPipe == nil {
		return ErrorNoRoute.Error()
	}
	if !r.sentHeader {
		for _, e := range r.envelope {
			e.SetMore(true)
			if err := r.replyPipe.Write(e); err != nil {
				return err
			}
		}
		delim := msg.NewDelimiter()
		delim.SetMore(true)
		if err := r.replyPipe.Write(delim); err != nil {
			return err
		}
		r.sentHeader = true
	}
	if err := r.replyPipe.Write(m); err != nil {
		return err
	}
	if !m.More() {
		r.rollback()
	}
	return nil
}

func (r *repPattern) readActivated(p *pipe.Endpoint)  { r.fq.Activated(p) }
func (r *repPattern) writeActivated(*pipe.Endpoint) {}
