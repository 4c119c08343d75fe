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

package engine

import (
	"context"

	"github/sabouaram/zmtpcore/greeting"
	"github/sabouaram/zmtpcore/mechanism"
	"github/sabouaram/zmtpcore/msg"
)

// handshake sends this side's greeting, negotiates the protocol
// version against whatever the peer sends back, picks the matching
// frame codec, and — for 3.x peers — drives the security mechanism's
// command exchange to completion (spec.md §4.2 "Greeting/handshake
// negotiation"; grounded on zmtp_engine.rs's handshake/
// receive_greeting_versioned).
func (e *Engine) handshake(ctx context.Context) error {
	local := e.cfg.Local
	local.Mechanism = e.mech.Name()
	// Fired in a goroutine: on a synchronous transport (e.g. net.Pipe in
	// tests) a blocking Write here would deadlock against the peer's own
	// blocking Write, since neither side would ever reach its Read loop.
	// Real sockets buffer this anyway; asyncWrite just makes the ordering
	// safe regardless of the transport. Any write error surfaces through
	// e.fail and is picked up by the subsequent Read failing too.
	e.asyncWrite(local.Build())

	greet := greeting.NewReader()
	readBuf := make([]byte, greeting.V3GreetingSize)
	leftover := []byte{}

	for {
		n, err := e.conn.Read(readBuf)
		if n > 0 {
			consumed, done := greet.Feed(readBuf[:n])
			if consumed < n {
				leftover = append(leftover, readBuf[consumed:n]...)
			}
			if done {
				break
			}
		}
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	e.peer = greet.Result()
	if e.peer.Unversioned {
		e.version = greeting.V1_0
	} else {
		e.version = greeting.Negotiate(local.Version, e.peer.Version)
	}
	e.dec, e.enc = selectCodec(e.version, e.cfg.MaxMsgSize, e.cfg.Arena)

	if !e.version.AtLeast3() {
		return nil
	}

	if e.peer.Mechanism != "" && e.peer.Mechanism != e.mech.Name() {
		return ErrorMechanismMismatch.Error()
	}

	return e.negotiateMechanism(ctx, leftover)
}

// negotiateMechanism drives NextHandshakeCommand/ProcessHandshakeCommand
// to StatusReady, decoding any command frames out of leftover bytes
// from the greeting read before pulling more off the wire.
func (e *Engine) negotiateMechanism(ctx context.Context, leftover []byte) error {
	buf := make([]byte, 65536)
	var pending []msg.Message

	drainPending := func() error {
		for len(pending) > 0 {
			cmd := pending[0]
			pending = pending[1:]
			if err := e.mech.ProcessHandshakeCommand(cmd); err != nil {
				return err
			}
		}
		return nil
	}

	// sendReady never blocks on the wire: both sides of a fresh connection
	// can produce a handshake command before either has read anything
	// from the other (e.g. NULL's NextHandshakeCommand fires on its very
	// first call regardless of what, if anything, has been received), so
	// a synchronous Write here risks the same write-before-read deadlock
	// as the greeting exchange under a zero-buffer transport.
	sendReady := func() error {
		for {
			m, ok, err := e.mech.NextHandshakeCommand()
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			var dst []byte
			dst = e.enc.Encode(dst, m)
			e.asyncWrite(dst)
		}
	}

	if err := sendReady(); err != nil {
		return err
	}

	if len(leftover) > 0 {
		var derr error
		pending, _, derr = e.dec.Feed(leftover, pending[:0])
		if derr != nil {
			return derr
		}
		if err := drainPending(); err != nil {
			return err
		}
		if err := sendReady(); err != nil {
			return err
		}
	}

	for e.mech.Status() == mechanism.StatusHandshaking {
		n, err := e.conn.Read(buf)
		if n > 0 {
			var derr error
			pending, _, derr = e.dec.Feed(buf[:n], pending[:0])
			if derr != nil {
				return derr
			}
			if err := drainPending(); err != nil {
				return err
			}
			if err := sendReady(); err != nil {
				return err
			}
		}
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	if e.mech.Status() == mechanism.StatusError {
		return ErrorMechanismMismatch.Error()
	}
	return nil
}
