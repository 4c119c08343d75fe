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
	"github/sabouaram/zmtpcore/options"
	"github/sabouaram/zmtpcore/pipe"
	"github/sabouaram/zmtpcore/routing"
)

// clientPattern is CLIENT: single-part, load-balanced send and
// fair-queued recv, with no routing-id exposed to the application
// (spec.md §4.3, CLIENT row).
type clientPattern struct {
	fq *routing.FairQueue
	lb *routing.LoadBalance
}

func newClientPattern() *clientPattern {
	return &clientPattern{fq: routing.NewFairQueue(), lb: routing.NewLoadBalance()}
}

func (c *clientPattern) attach(p *pipe.Endpoint) error {
	c.fq.Attach(p)
	c.lb.Attach(p)
	return nil
}

func (c *clientPattern) detach(p *pipe.Endpoint) {
	c.fq.Terminated(p)
	c.lb.Terminated(p)
}

func (c *clientPattern) send(m msg.Message) error {
	m.SetMore(false)
	return c.lb.Send(m)
}

func (c *clientPattern) recv() (msg.Message, error) {
	m, _, ok := c.fq.Recv()
	if !ok {
		return msg.Message{}, ErrorAgain.Error()
	}
	return m, nil
}

func (c *clientPattern) readActivated(p *pipe.Endpoint)  { c.fq.Activated(p) }
func (c *clientPattern) writeActivated(p *pipe.Endpoint) { c.lb.Activated(p) }

// idAddressedPattern backs SERVER and PEER: single-part messages
// addressed by the uint32 routing id carried in msg.Message itself
// (Message.RoutingID/SetRoutingID) rather than a prepended frame, per
// spec.md §6's CLIENT/SERVER/PEER row — these are the "thread-safe"
// socket family, whose wire-level identity is metadata rather than a
// multipart envelope. PEER differs from SERVER only in being able to
// actively connect out to a peer (a session/transport concern outside
// this pattern), so it reuses the identical send/recv semantics.
type idAddressedPattern struct {
	fq   *routing.FairQueue
	byID map[uint32]*pipe.Endpoint
	idOf map[*pipe.Endpoint]uint32
	next uint32
}

func newIDAddressedPattern() *idAddressedPattern {
	return &idAddressedPattern{
		fq:   routing.NewFairQueue(),
		byID: map[uint32]*pipe.Endpoint{},
		idOf: map[*pipe.Endpoint]uint32{},
		next: 1,
	}
}

func (s *idAddressedPattern) attach(p *pipe.Endpoint) error {
	id := s.next
	s.next++
	s.byID[id] = p
	s.idOf[p] = id
	s.fq.Attach(p)
	return nil
}

func (s *idAddressedPattern) detach(p *pipe.Endpoint) {
	s.fq.Terminated(p)
	if id, ok := s.idOf[p]; ok {
		delete(s.byID, id)
		delete(s.idOf, p)
	}
}

func (s *idAddressedPattern) send(m msg.Message) error {
	p, ok := s.byID[m.RoutingID()]
	if !ok {
		return ErrorNoRoute.Error()
	}
	m.SetMore(false)
	return p.Write(m)
}

func (s *idAddressedPattern) recv() (msg.Message, error) {
	m, from, ok := s.fq.Recv()
	if !ok {
		return msg.Message{}, ErrorAgain.Error()
	}
	m.SetRoutingID(s.idOf[from])
	return m, nil
}

func (s *idAddressedPattern) readActivated(p *pipe.Endpoint) { s.fq.Activated(p) }
func (s *idAddressedPattern) writeActivated(*pipe.Endpoint)  {}

func newServerPattern() *idAddressedPattern          { return newIDAddressedPattern() }
func newPeerPattern(options.Options) *idAddressedPattern { return newIDAddressedPattern() }
