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

// dealerPattern is the unrouted, asynchronous counterpart of REQ: fair
// queue on receive, load balance on send, no envelope manipulation
// (spec.md §4.3, DEALER row).
type dealerPattern struct {
	fq *routing.FairQueue
	lb *routing.LoadBalance
}

func newDealerPattern() *dealerPattern {
	return &dealerPattern{fq: routing.NewFairQueue(), lb: routing.NewLoadBalance()}
}

func (d *dealerPattern) attach(p *pipe.Endpoint) error {
	d.fq.Attach(p)
	d.lb.Attach(p)
	return nil
}

func (d *dealerPattern) detach(p *pipe.Endpoint) {
	d.fq.Terminated(p)
	d.lb.Terminated(p)
}

func (d *dealerPattern) send(m msg.Message) error { return d.lb.Send(m) }

func (d *dealerPattern) recv() (msg.Message, error) {
	m, _, ok := d.fq.Recv()
	if !ok {
		return msg.Message{}, ErrorAgain.Error()
	}
	return m, nil
}

func (d *dealerPattern) readActivated(p *pipe.Endpoint)  { d.fq.Activated(p) }
func (d *dealerPattern) writeActivated(p *pipe.Endpoint) { d.lb.Activated(p) }

// routerPattern prepends the sender's routing id as a leading frame on
// receive and, on send, uses the application-supplied leading frame to
// resolve which pipe to write the rest of the message to, stripping the
// id frame from the wire (spec.md §4.3, §6 "ROUTER routing-id
// assignment"). Peers are identified via routing.RoutingIDMap, fed
// either by a plain Attach (auto id) or by Socket.AttachIdentified once
// a session layer has read the peer's advertised Identity property.
type routerPattern struct {
	fq    *routing.FairQueue
	ids   *routing.RoutingIDMap
	pipes map[*pipe.Endpoint]struct{}

	pendingBody *msg.Message
	inBody      bool

	sendTarget *pipe.Endpoint
	dropping   bool
	mandatory  bool
}

func newRouterPattern(opts options.Options) *routerPattern {
	return &routerPattern{
		fq:        routing.NewFairQueue(),
		ids:       routing.NewRoutingIDMap(opts.RouterHandover),
		pipes:     map[*pipe.Endpoint]struct{}{},
		mandatory: opts.RouterMandatory,
	}
}

func (r *routerPattern) attach(p *pipe.Endpoint) error {
	return r.identify(nil, p)
}

func (r *routerPattern) identify(id []byte, p *pipe.Endpoint) error {
	_, displaced, ok := r.ids.Identify(id, p)
	if !ok {
		return ErrorRoutingIDRejected.Error()
	}
	if displaced != nil {
		r.fq.Terminated(displaced)
		delete(r.pipes, displaced)
	}
	r.fq.Attach(p)
	r.pipes[p] = struct{}{}
	return nil
}

func (r *routerPattern) detach(p *pipe.Endpoint) {
	r.fq.Terminated(p)
	delete(r.pipes, p)
	r.ids.Remove(p)
	if r.sendTarget == p {
		r.sendTarget = nil
	}
}

func (r *routerPattern) recv() (msg.Message, error) {
	if r.pendingBody != nil {
		m := *r.pendingBody
		r.pendingBody = nil
		return m, nil
	}
	if r.inBody {
		m, _, ok := r.fq.Recv()
		if !ok {
			return msg.Message{}, ErrorAgain.Error()
		}
		r.inBody = m.More()
		return m, nil
	}

	m, from, ok := r.fq.Recv()
	if !ok {
		return msg.Message{}, ErrorAgain.Error()
	}
	id, _ := r.ids.IDOf(from)
	idFrame := msg.NewInline(id)
	idFrame.SetMore(true)
	r.pendingBody = &m
	r.inBody = m.More()
	return idFrame, nil
}

func (r *routerPattern) send(m msg.Message) error {
	if r.sendTarget == nil && !r.dropping {
		p, ok := r.ids.Lookup(m.Data())
		if !ok {
			r.dropping = m.More()
			if r.mandatory {
				return ErrorNoRoute.Error()
			}
			return nil
		}
		if !m.More() {
			return nil // id-only message, nothing left to route
		}
		r.sendTarget = p
		return nil
	}

	if r.dropping {
		if !m.More() {
			r.dropping = false
		}
		return nil
	}

	err := r.sendTarget.Write(m)
	if !m.More() {
		r.sendTarget = nil
	}
	return err
}

func (r *routerPattern) readActivated(p *pipe.Endpoint)  { r.fq.Activated(p) }
func (r *routerPattern) writeActivated(*pipe.Endpoint) {}
