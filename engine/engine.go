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

// Package engine drives one ZMTP connection's wire-level lifecycle: the
// greeting/handshake, the security-mechanism command exchange, framing
// codec selection, PING/PONG heartbeating, and the steady-state pump
// moving decoded Messages onto a pipe.Endpoint and encoded Messages back
// out to the net.Conn (spec.md §4.2 "Pipe/engine I/O lifecycle";
// grounded on zmtp_engine.rs's ZmtpEngine, specifically handshake,
// receive_greeting[_versioned], produce_ping_message and
// process_heartbeat_message).
package engine

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github/sabouaram/zmtpcore/greeting"
	"github/sabouaram/zmtpcore/logger"
	"github/sabouaram/zmtpcore/mechanism"
	"github/sabouaram/zmtpcore/mechanism/null"
	"github/sabouaram/zmtpcore/msg"
	"github/sabouaram/zmtpcore/network"
	"github/sabouaram/zmtpcore/pipe"
	"github/sabouaram/zmtpcore/wire/arena"
)

func defaultLog() logger.Logger {
	return logger.New(context.Background())
}

// Heartbeat carries the three heartbeat-related options from spec.md
// §6 ("HEARTBEAT_IVL", "HEARTBEAT_TIMEOUT", "HEARTBEAT_TTL"). Zero
// Interval disables heartbeating entirely, matching libzmq's default.
type Heartbeat struct {
	Interval time.Duration
	Timeout  time.Duration // 0 derives from Interval, mirroring zmtp_engine.rs's heartbeat_timeout==-1 case
	TTL      time.Duration // advertised to the peer in the PING's TTL field; 0 disables the peer's timeout timer
}

// Config bundles what an Engine needs beyond the raw net.Conn.
type Config struct {
	Local      greeting.Local
	Mechanism  mechanism.Mechanism // nil defaults to NULL
	MaxMsgSize int64               // <0 disables the limit
	Arena      *arena.Pool         // optional zero-copy receive arena
	Heartbeat  Heartbeat
	Log        logger.FuncLog // nil defaults to a plain InfoLevel logger.New
}

// Engine owns one net.Conn and the engine-side pipe.Endpoint connected
// to a socket pattern's application-facing side.
type Engine struct {
	conn net.Conn
	cfg  Config
	p    *pipe.Endpoint

	dec frameDecoder
	enc frameEncoder
	mech mechanism.Mechanism

	version greeting.Version
	peer    greeting.Peer

	wake     chan struct{}
	closeErr errBox
	once     sync.Once

	lastRecv timeBox
}

// New builds an Engine. p is the engine-side Endpoint of a pipe created
// with pipe.New; the caller keeps the other Endpoint for the socket
// pattern's own use and calls p.SetEventSink on it if it wants
// read/write-activated notifications.
func New(conn net.Conn, p *pipe.Endpoint, cfg Config) *Engine {
	if cfg.Mechanism == nil {
		cfg.Mechanism = null.New(nil)
	}
	if cfg.Log == nil {
		cfg.Log = defaultLog
	}
	e := &Engine{
		conn: conn,
		cfg:  cfg,
		p:    p,
		mech: cfg.Mechanism,
		wake: make(chan struct{}, 1),
	}
	p.SetEventSink(e)
	return e
}

// ReadActivated implements pipe.EventSink: fired when the socket side
// writes a new message for this engine to push out to the network.
func (e *Engine) ReadActivated(*pipe.Endpoint) { e.signal() }

// WriteActivated implements pipe.EventSink: fired when the socket side
// drains its inbound queue past the low water mark. The write pump
// re-checks CheckWrite on its next iteration regardless, so this is
// mostly informational; it still nudges the pump in case it was
// parked waiting on the wake channel.
func (e *Engine) WriteActivated(*pipe.Endpoint) { e.signal() }

// Terminated implements pipe.EventSink: the socket side tore down its
// end of the pipe, so the engine should close its connection too.
func (e *Engine) Terminated(*pipe.Endpoint) { e.signal() }

func (e *Engine) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Run performs the handshake then pumps messages until ctx is
// cancelled, the connection errors, or the pipe terminates. It always
// closes conn and the engine-side pipe Endpoint before returning.
func (e *Engine) Run(ctx context.Context) error {
	defer e.conn.Close()
	defer e.p.Terminate()

	if err := e.handshake(ctx); err != nil {
		e.cfg.Log().Error("zmtp handshake failed: %v", nil, err)
		return err
	}
	e.cfg.Log().Info("zmtp handshake complete, version=%s mechanism=%s", nil, e.version, e.mech.Name())
	e.lastRecv.Set(nowFunc())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); e.readPump(ctx, cancel) }()
	go func() { defer wg.Done(); e.writePump(ctx) }()

	if e.cfg.Heartbeat.Interval > 0 {
		wg.Add(1)
		go func() { defer wg.Done(); e.heartbeatLoop(ctx, cancel) }()
	}

	<-ctx.Done()
	e.conn.Close()
	wg.Wait()

	if err := e.closeErr.Get(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (e *Engine) fail(err error) {
	e.closeErr.CompareAndSwap(err)
}

// asyncWrite fires a Write in its own goroutine so callers never block
// waiting on a peer's Read, which matters during the handshake where
// both sides may have bytes queued to send before either has read
// anything (spec.md §4.2 "Greeting/handshake negotiation"). A failed
// write is recorded via fail and surfaces through Run's closeErr check;
// the Read side of the same conn fails too once a write actually breaks
// the connection, so nothing is silently lost.
func (e *Engine) asyncWrite(b []byte) {
	go func() {
		if _, err := e.conn.Write(b); err != nil {
			e.fail(err)
		}
	}()
}

// readPump reads wire bytes, decodes them into Messages, answers
// PING/PONG inline, and delivers everything else to the pipe.
func (e *Engine) readPump(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()
	buf := make([]byte, 65536)
	var pending []msg.Message
	var derr error

	for {
		n, err := e.conn.Read(buf)
		if n > 0 {
			pending, _, derr = e.dec.Feed(buf[:n], pending[:0])
			if derr != nil {
				e.fail(derr)
				return
			}
			e.lastRecv.Set(nowFunc())
			for _, m := range pending {
				if m.IsPing() {
					e.onPing(m)
					continue
				}
				if m.IsPong() {
					continue
				}
				decoded, derr := e.mech.Decode(m)
				if derr != nil {
					e.fail(derr)
					return
				}
				if werr := e.p.Write(decoded); werr != nil {
					e.p.Stats().Add(network.StatDrop, 1)
				}
			}
		}
		if err != nil {
			if err != io.EOF {
				e.fail(err)
			}
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// onPing answers a heartbeat PING with a PONG echoing its context,
// per spec.md §4.2 "Heartbeat" (grounded on
// zmtp_engine.rs::process_heartbeat_message).
func (e *Engine) onPing(m msg.Message) {
	body := m.Data()
	ctxArg := []byte{}
	if len(body) > 2 {
		ctxArg = body[2:]
	}
	pong := msg.NewCommand(msg.CmdPong, ctxArg)
	var dst []byte
	dst = e.enc.Encode(dst, pong)
	if _, err := e.conn.Write(dst); err != nil {
		e.fail(err)
	}
}

// writePump drains the pipe and pushes encoded bytes to the network,
// parked on the wake channel between bursts.
func (e *Engine) writePump(ctx context.Context) {
	for {
		drained := false
		for {
			m, ok := e.p.Read()
			if !ok {
				break
			}
			drained = true
			sealed, err := e.mech.Encode(m)
			if err != nil {
				e.fail(err)
				return
			}
			var dst []byte
			dst = e.enc.Encode(dst, sealed)
			if _, werr := e.conn.Write(dst); werr != nil {
				e.fail(werr)
				return
			}
		}
		if !drained {
			select {
			case <-ctx.Done():
				return
			case <-e.wake:
			}
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// heartbeatLoop sends PING at the configured interval and terminates
// the connection if nothing has been received within the timeout.
func (e *Engine) heartbeatLoop(ctx context.Context, cancel context.CancelFunc) {
	interval := e.cfg.Heartbeat.Interval
	timeout := e.cfg.Heartbeat.Timeout
	if timeout <= 0 {
		timeout = interval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if nowFunc().Sub(e.lastRecv.Get()) > timeout {
				e.fail(ErrorHeartbeatTimeout.Error())
				cancel()
				return
			}
			if err := e.sendPing(); err != nil {
				e.fail(err)
				cancel()
				return
			}
		}
	}
}

func (e *Engine) sendPing() error {
	ttlTicks := uint16(e.cfg.Heartbeat.TTL / (100 * time.Millisecond))
	body := []byte{byte(ttlTicks >> 8), byte(ttlTicks)}
	ping := msg.NewCommand(msg.CmdPing, body)
	var dst []byte
	dst = e.enc.Encode(dst, ping)
	_, err := e.conn.Write(dst)
	return err
}

var nowFunc = time.Now
