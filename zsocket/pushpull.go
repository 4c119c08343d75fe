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

// pushPattern is send-only: load-balanced fan-out across peers, one
// unidirectional hop of a pipeline (spec.md §4.3, PUSH row).
type pushPattern struct {
	lb *routing.LoadBalance
}

func newPushPattern() *pushPattern { return &pushPattern{lb: routing.NewLoadBalance()} }

func (p *pushPattern) attach(ep *pipe.Endpoint) error { p.lb.Attach(ep); return nil }
func (p *pushPattern) detach(ep *pipe.Endpoint)       { p.lb.Terminated(ep) }
func (p *pushPattern) send(m msg.Message) error       { return p.lb.Send(m) }
func (p *pushPattern) recv() (msg.Message, error)     { return msg.Message{}, ErrorNotSupported.Error() }
func (p *pushPattern) readActivated(*pipe.Endpoint)   {}
func (p *pushPattern) writeActivated(ep *pipe.Endpoint) { p.lb.Activated(ep) }

// pullPattern is recv-only: fair-queued intake from every upstream PUSH
// peer (spec.md §4.3, PULL row).
type pullPattern struct {
	fq *routing.FairQueue
}

func newPullPattern() *pullPattern { return &pullPattern{fq: routing.NewFairQueue()} }

func (p *pullPattern) attach(ep *pipe.Endpoint) error { p.fq.Attach(ep); return nil }
func (p *pullPattern) detach(ep *pipe.Endpoint)       { p.fq.Terminated(ep) }
func (p *pullPattern) send(msg.Message) error         { return ErrorNotSupported.Error() }

func (p *pullPattern) recv() (msg.Message, error) {
	m, _, ok := p.fq.Recv()
	if !ok {
		return msg.Message{}, ErrorAgain.Error()
	}
	return m, nil
}

func (p *pullPattern) readActivated(ep *pipe.Endpoint) { p.fq.Activated(ep) }
func (p *pullPattern) writeActivated(*pipe.Endpoint)   {}
