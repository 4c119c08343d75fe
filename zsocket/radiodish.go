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
	"github.com/bits-and-blooms/bitset"

	"github/sabouaram/zmtpcore/msg"
	"github/sabouaram/zmtpcore/pipe"
	"github/sabouaram/zmtpcore/routing"
)

// radioPattern fans a group-tagged message out to every connected DISH
// peer; group filtering happens entirely on the DISH side, mirroring
// how a UDP multicast sender never learns who is listening (spec.md
// §4.3, RADIO row). The caller is expected to have set m's group via
// msg.Message.SetGroup before Send.
type radioPattern struct {
	pipes map[*pipe.Endpoint]struct{}
}

func newRadioPattern() *radioPattern {
	return &radioPattern{pipes: map[*pipe.Endpoint]struct{}{}}
}

func (r *radioPattern) attach(p *pipe.Endpoint) error { r.pipes[p] = struct{}{}; return nil }
func (r *radioPattern) detach(p *pipe.Endpoint)       { delete(r.pipes, p) }

func (r *radioPattern) send(m msg.Message) error {
	if m.Group().IsZero() {
		return ErrorWrongState.Error()
	}
	var firstErr error
	for p := range r.pipes {
		if err := p.Write(m); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *radioPattern) recv() (msg.Message, error)      { return msg.Message{}, ErrorNotSupported.Error() }
func (r *radioPattern) readActivated(*pipe.Endpoint)    {}
func (r *radioPattern) writeActivated(*pipe.Endpoint)   {}

// dishPattern fair-queues incoming group-tagged messages and delivers
// only those whose group was Join'ed, per spec.md §4.3's DISH row.
// Membership is tracked as a bitset (github.com/bits-and-blooms/bitset)
// indexed by a per-socket group-name -> bit assignment, rather than a
// plain map[string]bool, so a DISH joined to many groups tests
// membership with a single word compare instead of a map probe per
// received frame.
type dishPattern struct {
	fq       *routing.FairQueue
	pipes    map[*pipe.Endpoint]struct{}
	groupBit map[string]uint
	nextBit  uint
	joined   *bitset.BitSet
}

func newDishPattern() *dishPattern {
	return &dishPattern{
		fq:       routing.NewFairQueue(),
		pipes:    map[*pipe.Endpoint]struct{}{},
		groupBit: map[string]uint{},
		joined:   bitset.New(64),
	}
}

func (d *dishPattern) attach(p *pipe.Endpoint) error {
	d.fq.Attach(p)
	d.pipes[p] = struct{}{}
	return nil
}

func (d *dishPattern) detach(p *pipe.Endpoint) {
	d.fq.Terminated(p)
	delete(d.pipes, p)
}

func (d *dishPattern) send(msg.Message) error { return ErrorNotSupported.Error() }

func (d *dishPattern) join(group string) error {
	bit, ok := d.groupBit[group]
	if !ok {
		bit = d.nextBit
		d.nextBit++
		d.groupBit[group] = bit
	}
	d.joined.Set(bit)
	return nil
}

func (d *dishPattern) leave(group string) error {
	bit, ok := d.groupBit[group]
	if !ok {
		return nil
	}
	d.joined.Clear(bit)
	return nil
}

func (d *dishPattern) recv() (msg.Message, error) {
	for {
		m, _, ok := d.fq.Recv()
		if !ok {
			return msg.Message{}, ErrorAgain.Error()
		}
		if bit, known := d.groupBit[m.Group().Name()]; known && d.joined.Test(bit) {
			return m, nil
		}
	}
}

func (d *dishPattern) readActivated(p *pipe.Endpoint) { d.fq.Activated(p) }
func (d *dishPattern) writeActivated(*pipe.Endpoint)  {}
