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

package routing

import (
	"github/sabouaram/zmtpcore/errors"
	"github/sabouaram/zmtpcore/msg"
	"github/sabouaram/zmtpcore/pipe"
)

const (
	ErrorNoActivePipe errors.CodeError = iota + errors.MinPkgRouting
)

var isCodeError = false

func IsCodeError() bool { return isCodeError }

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorNoActivePipe)
	errors.RegisterIdFctMessage(ErrorNoActivePipe, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorNoActivePipe:
		return "routing: no active pipe to send on"
	}
	return ""
}

// LoadBalance round-robins writes across attached pipes, sticking to
// the pipe that accepted the first frame of a multipart message until
// its last frame (MORE clear) is written (spec.md §4.2, "Load
// balancing" / I-LB). A pipe that is not currently writable (HWM hit)
// is rotated out of the active window for this send attempt, mirroring
// FairQueue's symmetric behavior on the receive side.
type LoadBalance struct {
	pipes   []*pipe.Endpoint
	active  int
	current int
	more    bool
}

func NewLoadBalance() *LoadBalance {
	return &LoadBalance{}
}

func (b *LoadBalance) Attach(p *pipe.Endpoint) {
	b.pipes = append(b.pipes, p)
	last := len(b.pipes) - 1
	b.pipes[b.active], b.pipes[last] = b.pipes[last], b.pipes[b.active]
	b.active++
}

// Activated moves a pipe that had fallen out of the active window back
// into it, e.g. in response to its EventSink's WriteActivated callback
// firing once the peer drains enough to clear the HWM.
func (b *LoadBalance) Activated(p *pipe.Endpoint) {
	idx := b.indexOf(p)
	if idx < 0 || idx < b.active {
		return
	}
	b.pipes[idx], b.pipes[b.active] = b.pipes[b.active], b.pipes[idx]
	b.active++
}

func (b *LoadBalance) Terminated(p *pipe.Endpoint) {
	idx := b.indexOf(p)
	if idx < 0 {
		return
	}
	if idx < b.active {
		b.active--
		b.pipes[idx], b.pipes[b.active] = b.pipes[b.active], b.pipes[idx]
		if b.current == b.active {
			b.current = 0
		}
		idx = b.active
	}
	b.pipes = append(b.pipes[:idx], b.pipes[idx+1:]...)
}

func (b *LoadBalance) indexOf(p *pipe.Endpoint) int {
	for i, e := range b.pipes {
		if e == p {
			return i
		}
	}
	return -1
}

// Send writes m to the sticky current pipe if mid-multipart, or picks
// the next writable pipe otherwise, advancing past it once m.More()
// is false.
func (b *LoadBalance) Send(m msg.Message) error {
	if b.more {
		p := b.pipes[b.current]
		if err := p.Write(m); err != nil {
			return err
		}
		b.more = m.More()
		if !b.more {
			b.current = (b.current + 1) % max(b.active, 1)
		}
		return nil
	}

	for b.active > 0 {
		p := b.pipes[b.current]
		if p.CheckWrite() {
			if err := p.Write(m); err != nil {
				return err
			}
			b.more = m.More()
			if !b.more {
				b.current = (b.current + 1) % b.active
			}
			return nil
		}
		b.active--
		b.pipes[b.current], b.pipes[b.active] = b.pipes[b.active], b.pipes[b.current]
		if b.current == b.active {
			b.current = 0
		}
	}
	return ErrorNoActivePipe.Error()
}

// HasOut reports whether a subsequent Send is likely to succeed.
func (b *LoadBalance) HasOut() bool {
	if b.more {
		return true
	}
	for b.active > 0 {
		if b.pipes[b.current].CheckWrite() {
			return true
		}
		b.active--
		b.pipes[b.current], b.pipes[b.active] = b.pipes[b.active], b.pipes[b.current]
		if b.current == b.active {
			b.current = 0
		}
	}
	return false
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
