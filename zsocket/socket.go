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

// Package zsocket implements the sixteen socket patterns of spec.md
// §4.3 on top of the routing helpers (fair-queue, load-balance,
// subscription trie, routing-id map) and the pipe.Endpoint queue: PAIR,
// PUB/SUB/XPUB/XSUB, REQ/REP, DEALER/ROUTER, PUSH/PULL, STREAM,
// RADIO/DISH and CLIENT/SERVER/PEER. Each pattern is a small patternImpl
// plugged into the common Socket, which owns the mutex, the attach/
// detach bookkeeping every pattern needs and the pipe.EventSink
// plumbing a reactor drives (spec.md §4.6).
package zsocket

import (
	"context"
	"sync"

	"github/sabouaram/zmtpcore/logger"
	"github/sabouaram/zmtpcore/msg"
	"github/sabouaram/zmtpcore/options"
	"github/sabouaram/zmtpcore/pipe"
)

func defaultLog() logger.Logger {
	return logger.New(context.Background())
}

// Type enumerates the sixteen socket patterns a Socket can implement,
// per spec.md §4.3's pattern table.
type Type int

const (
	Pair Type = iota
	Pub
	Sub
	XPub
	XSub
	Req
	Rep
	Dealer
	Router
	Push
	Pull
	Stream
	Radio
	Dish
	Client
	Server
	Peer
)

func (t Type) String() string {
	switch t {
	case Pair:
		return "PAIR"
	case Pub:
		return "PUB"
	case Sub:
		return "SUB"
	case XPub:
		return "XPUB"
	case XSub:
		return "XSUB"
	case Req:
		return "REQ"
	case Rep:
		return "REP"
	case Dealer:
		return "DEALER"
	case Router:
		return "ROUTER"
	case Push:
		return "PUSH"
	case Pull:
		return "PULL"
	case Stream:
		return "STREAM"
	case Radio:
		return "RADIO"
	case Dish:
		return "DISH"
	case Client:
		return "CLIENT"
	case Server:
		return "SERVER"
	case Peer:
		return "PEER"
	default:
		return "UNKNOWN"
	}
}

// pattern is the behavior every socket type supplies: how a newly
// attached pipe is accepted or rejected, how a detached/terminated pipe
// is forgotten, how application messages are routed to a pipe (send)
// and pulled off one (recv), and the two pipe.EventSink edges a pattern
// needs to re-arm its routing helpers (spec.md §4.2 fair-queue/
// load-balance "Activated" callbacks).
type pattern interface {
	attach(p *pipe.Endpoint) error
	detach(p *pipe.Endpoint)
	send(m msg.Message) error
	recv() (msg.Message, error)
	readActivated(p *pipe.Endpoint)
	writeActivated(p *pipe.Endpoint)
}

// subscriber is implemented by patterns that expose SUBSCRIBE/CANCEL as
// a first-class call rather than a regular Send (SUB; XSUB exposes the
// same filtering state but drives it through Send instead, see
// pubsub.go).
type subscriber interface {
	subscribe(prefix []byte) error
	unsubscribe(prefix []byte) error
}

// grouper is implemented by DISH: JOIN/LEAVE group membership.
type grouper interface {
	join(group string) error
	leave(group string) error
}

// identifier is implemented by ROUTER: a session/reactor layer that
// learned the peer's advertised Identity metadata property during the
// handshake passes it along explicitly instead of a plain Attach, per
// spec.md §4.3's ROUTER routing-id assignment.
type identifier interface {
	identify(id []byte, p *pipe.Endpoint) error
}

// Socket is one endpoint of a socket pattern: the application-facing
// object a caller Sends to and Recvs from, and the pipe.EventSink every
// attached pipe notifies when it becomes readable/writable again
// (spec.md §4.4, "Pipe & flow control").
type Socket struct {
	mu   sync.Mutex
	typ  Type
	opts options.Options
	log  logger.FuncLog
	impl pattern
}

func newSocket(t Type, opts options.Options, impl pattern, log logger.FuncLog) *Socket {
	if log == nil {
		log = defaultLog
	}
	return &Socket{typ: t, opts: opts, impl: impl, log: log}
}

// New builds a Socket of the given Type, wiring the routing helpers the
// pattern needs from opts.
func New(t Type, opts options.Options) *Socket {
	return NewWithLog(t, opts, nil)
}

// NewWithLog is New with an explicit logger, matching the engine
// package's Config.Log convention.
func NewWithLog(t Type, opts options.Options, log logger.FuncLog) *Socket {
	var impl pattern
	switch t {
	case Pair:
		impl = newPairPattern()
	case Pub:
		impl = newPubSidePattern(false, opts)
	case XPub:
		impl = newPubSidePattern(true, opts)
	case Sub:
		impl = newSubSidePattern(false, opts)
	case XSub:
		impl = newSubSidePattern(true, opts)
	case Req:
		impl = newReqPattern()
	case Rep:
		impl = newRepPattern()
	case Dealer:
		impl = newDealerPattern()
	case Router:
		impl = newRouterPattern(opts)
	case Push:
		impl = newPushPattern()
	case Pull:
		impl = newPullPattern()
	case Stream:
		impl = newStreamPattern(opts)
	case Radio:
		impl = newRadioPattern()
	case Dish:
		impl = newDishPattern()
	case Client:
		impl = newClientPattern()
	case Server:
		impl = newServerPattern()
	case Peer:
		impl = newPeerPattern(opts)
	}
	return newSocket(t, opts, impl, log)
}

// Type returns the socket's pattern.
func (s *Socket) Type() Type { return s.typ }

// Attach wires a newly connected pipe.Endpoint (the application side of
// a pipe.New pair handed to an engine/session) into the pattern,
// registering the Socket as its EventSink.
func (s *Socket) Attach(p *pipe.Endpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.impl.attach(p); err != nil {
		return err
	}
	p.SetEventSink(s)
	s.log().Debug("zsocket: pipe attached to %s socket", nil, s.typ)
	return nil
}

// AttachIdentified is Attach for ROUTER sockets when the caller already
// knows the peer's advertised routing id (nil requests an auto-assigned
// one); it returns ErrorNotSupported for every other pattern.
func (s *Socket) AttachIdentified(p *pipe.Endpoint, id []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ri, ok := s.impl.(identifier)
	if !ok {
		return ErrorNotSupported.Error()
	}
	if err := ri.identify(id, p); err != nil {
		return err
	}
	p.SetEventSink(s)
	return nil
}

// Detach forgets p, e.g. when a session tears down a peer connection
// without the pipe itself reporting Terminated.
func (s *Socket) Detach(p *pipe.Endpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.impl.detach(p)
}

// Send routes m according to the pattern's send policy (spec.md §4.3).
func (s *Socket) Send(m msg.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.impl.send(m)
}

// Recv pulls the next message according to the pattern's receive policy.
func (s *Socket) Recv() (msg.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.impl.recv()
}

// Subscribe adds a topic prefix filter. Valid only for SUB/XSUB;
// returns ErrorNotSupported otherwise.
func (s *Socket) Subscribe(prefix []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.impl.(subscriber)
	if !ok {
		return ErrorNotSupported.Error()
	}
	return sub.subscribe(prefix)
}

// Unsubscribe removes a topic prefix filter previously added via
// Subscribe.
func (s *Socket) Unsubscribe(prefix []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.impl.(subscriber)
	if !ok {
		return ErrorNotSupported.Error()
	}
	return sub.unsubscribe(prefix)
}

// Join adds group to the set a DISH socket receives RADIO messages for.
func (s *Socket) Join(group string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.impl.(grouper)
	if !ok {
		return ErrorNotSupported.Error()
	}
	return g.join(group)
}

// Leave removes group from a DISH socket's membership.
func (s *Socket) Leave(group string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.impl.(grouper)
	if !ok {
		return ErrorNotSupported.Error()
	}
	return g.leave(group)
}

// ReadActivated implements pipe.EventSink: p has new inbound data.
func (s *Socket) ReadActivated(p *pipe.Endpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.impl.readActivated(p)
}

// WriteActivated implements pipe.EventSink: p drained below its low
// water mark and can accept writes again.
func (s *Socket) WriteActivated(p *pipe.Endpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.impl.writeActivated(p)
}

// Terminated implements pipe.EventSink: p completed the four-way
// termination handshake and should be forgotten by the pattern.
func (s *Socket) Terminated(p *pipe.Endpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.impl.detach(p)
}
