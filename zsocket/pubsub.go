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
	"bytes"

	"github/sabouaram/zmtpcore/msg"
	"github/sabouaram/zmtpcore/options"
	"github/sabouaram/zmtpcore/pipe"
	"github/sabouaram/zmtpcore/routing"
)

// decodeSubControl recognizes a SUBSCRIBE/CANCEL carried by m, in
// either shape spec.md §4.1 allows: a ZMTP 3.1 peer sends it pre-decoded
// as a COMMAND frame (m.IsSubscribe()/IsCancel()), while a 1.0/2.0/3.0
// peer sends a plain body-encoded message whose first byte is 1
// (subscribe) or 0 (cancel) followed by the prefix. Anything else is
// ordinary data, not a subscription control frame.
func decodeSubControl(m msg.Message) (prefix []byte, subscribe bool, ok bool) {
	if m.IsSubscribe() {
		return m.Data(), true, true
	}
	if m.IsCancel() {
		return m.Data(), false, true
	}
	if m.IsCommand() {
		return nil, false, false
	}
	d := m.Data()
	if len(d) >= 1 && (d[0] == 0 || d[0] == 1) {
		return d[1:], d[0] == 1, true
	}
	return nil, false, false
}

// subControlMessage builds the legacy body-encoded representation of a
// SUBSCRIBE/CANCEL: a leading 0/1 byte followed by the prefix. Used both
// to surface an XPUB's verbose notification to the application and by
// XSUB to interpret a user-supplied raw frame (spec.md §6).
func subControlMessage(subscribe bool, prefix []byte) msg.Message {
	body := make([]byte, 0, len(prefix)+1)
	if subscribe {
		body = append(body, 1)
	} else {
		body = append(body, 0)
	}
	body = append(body, prefix...)
	return msg.NewInline(body)
}

// pubSidePattern backs PUB (verbose=false) and XPUB (verbose=true):
// distributes data messages to every pipe whose subscriber trie entry
// is a prefix of the message's topic frame (spec.md §4.3, PUB/XPUB
// row). Subscription state is fed entirely by SUBSCRIBE/CANCEL commands
// arriving inbound on each attached pipe; XPUB additionally surfaces
// those commands to the application via Recv.
type pubSidePattern struct {
	trie    *routing.SubscriptionTrie
	pipes   map[*pipe.Endpoint]struct{}
	verbose bool
	inbox   []msg.Message

	invert       bool
	onlyFirst    bool
	verboseUnsub bool
}

func newPubSidePattern(verbose bool, opts options.Options) *pubSidePattern {
	return &pubSidePattern{
		trie:         routing.NewSubscriptionTrie(),
		pipes:        map[*pipe.Endpoint]struct{}{},
		verbose:      verbose,
		invert:       opts.InvertMatching,
		onlyFirst:    opts.OnlyFirstSubscribe,
		verboseUnsub: opts.XPubVerboseUnsubscribe,
	}
}

func (p *pubSidePattern) attach(ep *pipe.Endpoint) error {
	p.pipes[ep] = struct{}{}
	return nil
}

func (p *pubSidePattern) detach(ep *pipe.Endpoint) {
	delete(p.pipes, ep)
	p.trie.RemovePipe(ep)
}

func (p *pubSidePattern) send(m msg.Message) error {
	matched := p.trie.Match(m.Data())
	if p.invert {
		matched = p.excluding(matched)
	}
	var firstErr error
	for _, ep := range matched {
		if err := ep.Write(m); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (p *pubSidePattern) excluding(matched []*pipe.Endpoint) []*pipe.Endpoint {
	skip := make(map[*pipe.Endpoint]bool, len(matched))
	for _, ep := range matched {
		skip[ep] = true
	}
	out := make([]*pipe.Endpoint, 0, len(p.pipes))
	for ep := range p.pipes {
		if !skip[ep] {
			out = append(out, ep)
		}
	}
	return out
}

func (p *pubSidePattern) recv() (msg.Message, error) {
	if !p.verbose {
		return msg.Message{}, ErrorNotSupported.Error()
	}
	if len(p.inbox) == 0 {
		return msg.Message{}, ErrorAgain.Error()
	}
	m := p.inbox[0]
	p.inbox = p.inbox[1:]
	return m, nil
}

func (p *pubSidePattern) readActivated(ep *pipe.Endpoint) {
	for {
		m, ok := ep.Read()
		if !ok {
			return
		}
		prefix, subscribe, isCtl := decodeSubControl(m)
		if !isCtl {
			continue // PUB/XPUB never receive ordinary data from subscribers
		}
		var firstOrLast bool
		if subscribe {
			firstOrLast = p.trie.Subscribe(prefix, ep)
		} else {
			firstOrLast = p.trie.Unsubscribe(prefix, ep)
		}
		if !p.verbose {
			continue
		}
		if !subscribe && !p.verboseUnsub {
			continue
		}
		if p.onlyFirst && !firstOrLast {
			continue
		}
		p.inbox = append(p.inbox, subControlMessage(subscribe, prefix))
	}
}

func (p *pubSidePattern) writeActivated(*pipe.Endpoint) {}

// subSidePattern backs SUB (raw=false) and XSUB (raw=true): fair-queues
// data messages across attached pipes and filters locally against its
// own subscription set, mirroring PUB-side filtering so XPUB pass-
// through and multi-PUB fan-in both behave (spec.md §4.3, SUB/XSUB row).
// SUB exposes SUBSCRIBE/CANCEL only via Socket.Subscribe/Unsubscribe;
// XSUB additionally accepts them as raw frames through Send, per
// spec.md §6.
type subSidePattern struct {
	fq    *routing.FairQueue
	pipes map[*pipe.Endpoint]struct{}
	subs  map[string]int
	raw   bool
	opts  options.Options
}

func newSubSidePattern(raw bool, opts options.Options) *subSidePattern {
	return &subSidePattern{
		fq:    routing.NewFairQueue(),
		pipes: map[*pipe.Endpoint]struct{}{},
		subs:  map[string]int{},
		raw:   raw,
		opts:  opts,
	}
}

func (s *subSidePattern) attach(p *pipe.Endpoint) error {
	s.fq.Attach(p)
	s.pipes[p] = struct{}{}
	for prefix := range s.subs {
		_ = p.Write(msg.NewCommand(msg.CmdSubscribe, []byte(prefix)))
	}
	return nil
}

func (s *subSidePattern) detach(p *pipe.Endpoint) {
	s.fq.Terminated(p)
	delete(s.pipes, p)
}

func (s *subSidePattern) send(m msg.Message) error {
	if !s.raw {
		return ErrorNotSupported.Error()
	}
	d := m.Data()
	if len(d) == 0 {
		return ErrorNotSupported.Error()
	}
	switch d[0] {
	case 1:
		return s.subscribe(d[1:])
	case 0:
		return s.unsubscribe(d[1:])
	default:
		return ErrorNotSupported.Error()
	}
}

func (s *subSidePattern) subscribe(prefix []byte) error {
	key := string(prefix)
	s.subs[key]++
	if s.subs[key] == 1 {
		s.broadcast(msg.NewCommand(msg.CmdSubscribe, prefix))
	}
	return nil
}

func (s *subSidePattern) unsubscribe(prefix []byte) error {
	key := string(prefix)
	if s.subs[key] <= 1 {
		delete(s.subs, key)
		s.broadcast(msg.NewCommand(msg.CmdCancel, prefix))
	} else {
		s.subs[key]--
	}
	return nil
}

func (s *subSidePattern) broadcast(m msg.Message) {
	for p := range s.pipes {
		_ = p.Write(m)
	}
}

func (s *subSidePattern) recv() (msg.Message, error) {
	for {
		m, _, ok := s.fq.Recv()
		if !ok {
			return msg.Message{}, ErrorAgain.Error()
		}
		if s.matches(m.Data()) {
			return m, nil
		}
	}
}

func (s *subSidePattern) matches(topic []byte) bool {
	any := false
	for prefix := range s.subs {
		if bytes.HasPrefix(topic, []byte(prefix)) {
			any = true
			break
		}
	}
	if s.opts.InvertMatching {
		return !any
	}
	return any
}

func (s *subSidePattern) readActivated(p *pipe.Endpoint)  { s.fq.Activated(p) }
func (s *subSidePattern) writeActivated(*pipe.Endpoint)   {}
