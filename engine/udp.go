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
	"net"
	"sync"

	"github/sabouaram/zmtpcore/logger"
	"github/sabouaram/zmtpcore/msg"
	"github/sabouaram/zmtpcore/pipe"
)

// maxUDPMsg bounds one UDP datagram's payload, matching
// original_source/src/engine/udp_engine.rs's fixed in/out buffers
// (SUPPLEMENTED FEATURES, SPEC_FULL §12).
const maxUDPMsg = 8192

// UDPConfig bundles what a UDPEngine needs beyond the net.PacketConn.
type UDPConfig struct {
	Send bool // udp_init's send_enabled
	Recv bool // udp_init's recv_enabled
	Log  logger.FuncLog
}

// UDPEngine is a datagram engine for RADIO/DISH over UDP, grounded on
// udp_engine_t's in_event/out_event: each packet carries a one-byte
// group-name length, the group name, then the message body, mirroring
// the non-raw_socket branch of udp_out_event/udp_in_event (the
// raw_socket branch, which instead encodes a peer address as the group
// frame, is out of scope - see Non-goals).
type UDPEngine struct {
	conn net.PacketConn
	peer net.Addr // fixed remote for Send; nil means reply to whoever last sent
	cfg  UDPConfig
	p    *pipe.Endpoint

	wake     chan struct{}
	closeErr errBox
	peerMu   sync.Mutex
}

// NewUDPEngine builds a UDPEngine bound to conn. peer is the fixed
// destination address outbound Sends target; pass nil to instead reply
// to the source address of the most recently received datagram.
func NewUDPEngine(conn net.PacketConn, peer net.Addr, p *pipe.Endpoint, cfg UDPConfig) *UDPEngine {
	if cfg.Log == nil {
		cfg.Log = defaultLog
	}
	e := &UDPEngine{
		conn: conn,
		peer: peer,
		cfg:  cfg,
		p:    p,
		wake: make(chan struct{}, 1),
	}
	p.SetEventSink(e)
	return e
}

func (e *UDPEngine) ReadActivated(*pipe.Endpoint)  { e.signal() }
func (e *UDPEngine) WriteActivated(*pipe.Endpoint) { e.signal() }
func (e *UDPEngine) Terminated(*pipe.Endpoint)     { e.signal() }

func (e *UDPEngine) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Run pumps datagrams in both directions until ctx is cancelled or the
// socket errors. It always closes conn and terminates the pipe
// endpoint before returning.
func (e *UDPEngine) Run(ctx context.Context) error {
	defer e.conn.Close()
	defer e.p.Terminate()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if e.cfg.Recv {
		wg.Add(1)
		go func() { defer wg.Done(); e.inLoop(ctx, cancel) }()
	}
	if e.cfg.Send {
		wg.Add(1)
		go func() { defer wg.Done(); e.outLoop(ctx) }()
	}

	<-ctx.Done()
	e.conn.Close()
	wg.Wait()
	return e.closeErr.Get()
}

func (e *UDPEngine) fail(err error) { e.closeErr.CompareAndSwap(err) }

// inLoop is udp_in_event: read one datagram, split its leading
// [len][group] header from the body, and push both as a two-frame
// Message onto the pipe with Group populated.
func (e *UDPEngine) inLoop(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()
	buf := make([]byte, maxUDPMsg)
	for {
		n, addr, err := e.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() == nil {
				e.fail(err)
			}
			return
		}
		if e.peer == nil {
			e.peerMu.Lock()
			e.peer = addr
			e.peerMu.Unlock()
		}
		if n == 0 {
			continue
		}
		groupLen := int(buf[0])
		if 1+groupLen > n {
			e.cfg.Log().Warning("udp: dropping datagram with truncated group frame", nil)
			continue
		}
		name := string(buf[1 : 1+groupLen])
		body := append([]byte(nil), buf[1+groupLen:n]...)

		m := msg.NewInline(body)
		if name != "" {
			if g, gerr := msg.NewGroup(name); gerr == nil {
				m.SetGroup(g)
			}
		}
		if err := e.p.Write(m); err != nil {
			e.cfg.Log().Warning("udp: dropping inbound message: %v", nil, err)
		}
	}
}

// outLoop is udp_out_event: drain the pipe and send one datagram per
// Message, prefixed with its Group's length and name.
func (e *UDPEngine) outLoop(ctx context.Context) {
	for {
		drained := false
		for {
			m, ok := e.p.Read()
			if !ok {
				break
			}
			drained = true
			if err := e.sendOne(m); err != nil {
				e.fail(err)
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

func (e *UDPEngine) sendOne(m msg.Message) error {
	name := m.Group().Name()
	body := m.Data()
	if 1+len(name)+len(body) > maxUDPMsg {
		e.cfg.Log().Warning("udp: dropping oversized outbound message (%d bytes)", nil, len(body))
		return nil
	}
	out := make([]byte, 0, 1+len(name)+len(body))
	out = append(out, byte(len(name)))
	out = append(out, name...)
	out = append(out, body...)

	e.peerMu.Lock()
	peer := e.peer
	e.peerMu.Unlock()
	if peer == nil {
		return nil // nothing received yet to reply to
	}
	_, err := e.conn.WriteTo(out, peer)
	return err
}
