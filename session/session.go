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

// Package session sits between one engine.Engine and a zsocket.Socket,
// translating the wire-level message shapes spec.md §6 describes for
// RADIO/DISH (a prepended/stripped group-name frame) into the
// msg.Message.Group metadata the socket patterns operate on, and owns
// the reconnect policy (reconnect.go) for outbound connections. Neither
// the wire codecs nor zsocket know about this translation: the codecs
// because group framing is a session-layer convention layered on top of
// plain ZMTP frames, not part of the ZMTP frame format itself, and
// zsocket because its RADIO/DISH patterns are grounded on Group already
// being populated on Message (see zsocket/radiodish.go).
package session

import (
	"context"
	"net"

	"github/sabouaram/zmtpcore/engine"
	"github/sabouaram/zmtpcore/logger"
	"github/sabouaram/zmtpcore/msg"
	"github/sabouaram/zmtpcore/pipe"
)

func defaultLog() logger.Logger {
	return logger.New(context.Background())
}

// Framing selects the group-frame translation a Session applies between
// its engine-facing and application-facing pipes.
type Framing int

const (
	FramingPlain Framing = iota // pass messages through unchanged
	FramingRadio                // outbound Send: prepend Group() as a length-prefixed frame
	FramingDish                 // inbound Recv: strip the leading group frame into SetGroup
)

// Config bundles what New needs beyond the net.Conn.
type Config struct {
	Engine  engine.Config
	Framing Framing
	Log     logger.FuncLog
}

// Session owns one engine.Engine and the extra pipe hop needed to apply
// Framing. New returns the Session and the application-facing
// pipe.Endpoint the caller attaches to a zsocket.Socket via Attach or
// AttachIdentified.
type Session struct {
	eng  *engine.Engine
	wire *pipe.Endpoint // session's handle on the engine's far side
	sess *pipe.Endpoint // session's handle on the application's far side

	framing Framing
	log     logger.FuncLog

	wake chan struct{}
}

// New wires conn through a fresh Engine and returns the Session plus the
// pipe.Endpoint a socket pattern should Attach.
func New(conn net.Conn, cfg Config) (*Session, *pipe.Endpoint) {
	if cfg.Log == nil {
		cfg.Log = defaultLog
	}
	engineSide, wire := pipe.New(0, 0, false)
	appSide, sess := pipe.New(0, 0, false)

	s := &Session{
		wire:    wire,
		sess:    sess,
		framing: cfg.Framing,
		log:     cfg.Log,
		wake:    make(chan struct{}, 1),
	}
	s.eng = engine.New(conn, engineSide, cfg.Engine)
	wire.SetEventSink(s)
	sess.SetEventSink(s)
	return s, appSide
}

func (s *Session) ReadActivated(*pipe.Endpoint)  { s.signal() }
func (s *Session) WriteActivated(*pipe.Endpoint) { s.signal() }
func (s *Session) Terminated(*pipe.Endpoint)     { s.signal() }

func (s *Session) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Run drives the underlying engine and the two forwarding pumps until
// ctx is cancelled or the connection fails. It always terminates both
// of the Session's own pipe endpoints before returning.
func (s *Session) Run(ctx context.Context) error {
	defer s.wire.Terminate()
	defer s.sess.Terminate()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- s.eng.Run(ctx) }()
	go s.pumpInbound(ctx)
	go s.pumpOutbound(ctx)

	err := <-errCh
	cancel()
	return err
}

// pumpInbound forwards engine-decoded messages (available on wire) to
// the application side (sess), applying DISH group-frame stripping.
func (s *Session) pumpInbound(ctx context.Context) {
	for {
		drained := false
		for {
			m, ok := s.wire.Read()
			if !ok {
				break
			}
			drained = true
			if s.framing == FramingDish {
				m = decodeGroupFrame(m)
			}
			if err := s.sess.Write(m); err != nil {
				s.log().Warning("session: dropping inbound message: %v", nil, err)
			}
		}
		if !drained {
			select {
			case <-ctx.Done():
				return
			case <-s.wake:
			}
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// pumpOutbound forwards application messages (available on sess) to the
// engine side (wire), applying RADIO group-frame prepending.
func (s *Session) pumpOutbound(ctx context.Context) {
	for {
		drained := false
		for {
			m, ok := s.sess.Read()
			if !ok {
				break
			}
			drained = true
			if s.framing == FramingRadio {
				m = encodeGroupFrame(m)
			}
			if err := s.wire.Write(m); err != nil {
				s.log().Warning("session: dropping outbound message: %v", nil, err)
			}
		}
		if !drained {
			select {
			case <-ctx.Done():
				return
			case <-s.wake:
			}
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// encodeGroupFrame prepends m.Group()'s name as a 1-byte-length-prefixed
// segment ahead of m's payload, per spec.md §6 ("session layer prepends
// ... a group-name frame").
func encodeGroupFrame(m msg.Message) msg.Message {
	name := m.Group().Name()
	body := make([]byte, 0, 1+len(name)+m.Size())
	body = append(body, byte(len(name)))
	body = append(body, name...)
	body = append(body, m.Data()...)
	out := msg.NewInline(body)
	out.SetMore(m.More())
	return out
}

// decodeGroupFrame strips the leading length-prefixed group name off m's
// payload and attaches it via SetGroup, leaving the remaining bytes as
// the message body delivered to a DISH socket's recv.
func decodeGroupFrame(m msg.Message) msg.Message {
	d := m.Data()
	if len(d) == 0 {
		return m
	}
	n := int(d[0])
	if n < 0 || 1+n > len(d) {
		return m
	}
	name := string(d[1 : 1+n])
	rest := d[1+n:]
	out := msg.NewInline(rest)
	out.SetMore(m.More())
	if g, err := msg.NewGroup(name); err == nil {
		out.SetGroup(g)
	}
	return out
}
