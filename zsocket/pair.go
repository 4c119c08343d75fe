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
)

// pairPattern accepts exactly one peer and moves messages straight
// through, per spec.md §4.3's PAIR row.
type pairPattern struct {
	p *pipe.Endpoint
}

func newPairPattern() *pairPattern { return &pairPattern{} }

func (pp *pairPattern) attach(p *pipe.Endpoint) error {
	if pp.p != nil {
		return ErrorTooManyPeers.Error()
	}
	pp.p = p
	return nil
}

func (pp *pairPattern) detach(p *pipe.Endpoint) {
	if pp.p == p {
		pp.p = nil
	}
}

func (pp *pairPattern) send(m msg.Message) error {
	if pp.p == nil {
		return ErrorAgain.Error()
	}
	return pp.p.Write(m)
}

func (pp *pairPattern) recv() (msg.Message, error) {
	if pp.p == nil {
		return msg.Message{}, ErrorAgain.Error()
	}
	m, ok := pp.p.Read()
	if !ok {
		return msg.Message{}, ErrorAgain.Error()
	}
	return m, nil
}

func (pp *pairPattern) readActivated(*pipe.Endpoint)  {}
func (pp *pairPattern) writeActivated(*pipe.Endpoint) {}
