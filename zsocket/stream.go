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

// streamPattern exposes each raw connection as a [routing_id, body]
// pair: Recv delivers the auto-assigned id followed by exactly one body
// frame, Send addresses a connection by its id. A zero-length body, in
// either direction, closes that connection (spec.md §4.3/§6, STREAM
// row).
type streamPattern struct {
	ids   *routing.RoutingIDMap
	pipes map[*pipe.Endpoint]struct{}
	fq    *routing.FairQueue

	pendingBody *msg.Message
	sendTarget  *pipe.Endpoint
	notify      bool
}

func newStreamPattern(opts options.Options) *streamPattern {
	return &streamPattern{
		ids:    routing.NewRoutingIDMap(false),
		pipes:  map[*pipe.Endpoint]struct{}{},
		fq:     routing.NewFairQueue(),
		notify: opts.StreamNotify,
	}
}

func (s *streamPattern) attach(p *pipe.Endpoint) error {
	assigned, _, ok := s.ids.Identify(nil, p)
	if !ok {
		return ErrorRoutingIDRejected.Error()
	}
	_ = assigned
	s.fq.Attach(p)
	s.pipes[p] = struct{}{}
	return nil
}

func (s *streamPattern) detach(p *pipe.Endpoint) {
	s.fq.Terminated(p)
	delete(s.pipes, p)
	s.ids.Remove(p)
	if s.sendTarget == p {
		s.sendTarget = nil
	}
}

func (s *streamPattern) recv() (msg.Message, error) {
	if s.pendingBody != nil {
		m := *s.pendingBody
		s.pendingBody = nil
		return m, nil
	}

	m, from, ok := s.fq.Recv()
	if !ok {
		return msg.Message{}, ErrorAgain.Error()
	}
	id, _ := s.ids.IDOf(from)
	idFrame := msg.NewInline(id)
	idFrame.SetMore(true)
	body := m
	body.SetMore(false)
	s.pendingBody = &body
	if body.Size() == 0 {
		_ = from.Terminate()
	}
	return idFrame, nil
}

func (s *streamPattern) send(m msg.Message) error {
	if s.sendTarget == nil {
		p, ok := s.ids.Lookup(m.Data())
		if !ok {
			return ErrorNoRoute.Error()
		}
		if !m.More() {
			return nil
		}
		s.sendTarget = p
		return nil
	}

	target := s.sendTarget
	s.sendTarget = nil
	if target.Terminated() {
		return ErrorNoRoute.Error()
	}
	if m.Size() == 0 {
		return target.Terminate()
	}
	return target.Write(m)
}

func (s *streamPattern) readActivated(p *pipe.Endpoint) { s.fq.Activated(p) }
func (s *streamPattern) writeActivated(*pipe.Endpoint)  {}
