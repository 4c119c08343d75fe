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

package reactor

// CommandKind distinguishes the handful of cross-thread requests spec.md
// §4.6 names: "attach pipe, term, monitor event".
type CommandKind int

const (
	CmdAttachPipe CommandKind = iota
	CmdTerm
	CmdMonitorEvent
)

// Command is one message delivered through a Mailbox. Payload is left
// as any so callers can carry whatever context-specific value the kind
// needs (a *pipe.Endpoint for CmdAttachPipe, an error for CmdTerm, a
// monitor event struct for CmdMonitorEvent) without the reactor package
// importing every other package that might enqueue a command.
type Command struct {
	Kind    CommandKind
	Payload any
}

// Mailbox is the per-I/O-thread inbound command queue of spec.md §4.6:
// "a mailbox fd per thread delivers inter-thread commands". A buffered
// Go channel already gives any goroutine a non-blocking, wait-free-for-
// the-sender send (Post never blocks the caller's own thread of
// execution on the receiver's work, matching §5's "send never blocks
// the sender"), so there is no separate signaling-fd layer to build on
// top of it the way libzmq needs one for its select/poll loop.
type Mailbox struct {
	ch chan Command
}

// NewMailbox builds a Mailbox with the given queue depth.
func NewMailbox(depth int) *Mailbox {
	if depth <= 0 {
		depth = 64
	}
	return &Mailbox{ch: make(chan Command, depth)}
}

// Post enqueues cmd. Returns false if the mailbox is full rather than
// blocking the sender, per spec.md §5's non-blocking cross-thread rule.
func (m *Mailbox) Post(cmd Command) bool {
	select {
	case m.ch <- cmd:
		return true
	default:
		return false
	}
}

// Recv exposes the receive side for a reactor's select loop.
func (m *Mailbox) Recv() <-chan Command { return m.ch }

// Close releases the mailbox's channel. Callers must stop calling Post
// afterward; a post to a closed mailbox panics, matching a closed pipe.
func (m *Mailbox) Close() { close(m.ch) }
