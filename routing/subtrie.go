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
	"sync"

	iradix "github.com/hashicorp/go-immutable-radix"

	"github/sabouaram/zmtpcore/pipe"
)

// SubscriptionTrie maintains, per distinct subscribed prefix, the set
// of pipes subscribed to it and a refcount per pipe (a pipe may send
// the same SUBSCRIBE twice, e.g. after a reconnect replay). Match
// answers "does any subscribed prefix match this message's topic",
// i.e. the prefix is byte-for-byte a prefix of the topic (spec.md
// §4.3, "Subscription forwarding" / I-SUB). Backed by
// github.com/hashicorp/go-immutable-radix, whose WalkPath walks
// exactly the ancestor nodes of a key — the reverse-prefix-match shape
// this operation needs. Grounded on
// original_source/src/defines/generic_mtrie.rs's byte-trie structure,
// reimplemented atop a maintained library instead of its hand-rolled
// node/table layout.
type SubscriptionTrie struct {
	mu   sync.Mutex
	tree *iradix.Tree
}

type subEntry struct {
	refs map[*pipe.Endpoint]int
}

func NewSubscriptionTrie() *SubscriptionTrie {
	return &SubscriptionTrie{tree: iradix.New()}
}

// Subscribe records a subscription, returning true the first time this
// exact prefix becomes non-empty (the caller should forward the
// SUBSCRIBE upstream on an XSUB, per I-SUB).
func (s *SubscriptionTrie) Subscribe(prefix []byte, p *pipe.Endpoint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, found := s.tree.Get(prefix)
	var e *subEntry
	wasEmpty := !found
	if found {
		e = raw.(*subEntry)
		wasEmpty = len(e.refs) == 0
	} else {
		e = &subEntry{refs: map[*pipe.Endpoint]int{}}
	}
	e.refs[p]++
	tree, _, _ := s.tree.Insert(prefix, e)
	s.tree = tree
	return wasEmpty
}

// Unsubscribe drops one reference; returns true if the prefix has no
// remaining subscribers (caller should forward CANCEL upstream).
func (s *SubscriptionTrie) Unsubscribe(prefix []byte, p *pipe.Endpoint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, found := s.tree.Get(prefix)
	if !found {
		return false
	}
	e := raw.(*subEntry)
	if e.refs[p] <= 1 {
		delete(e.refs, p)
	} else {
		e.refs[p]--
	}
	if len(e.refs) == 0 {
		tree, _, _ := s.tree.Delete(prefix)
		s.tree = tree
		return true
	}
	return false
}

// RemovePipe drops every subscription held by p, e.g. on pipe
// termination, returning the prefixes that became empty as a result.
func (s *SubscriptionTrie) RemovePipe(p *pipe.Endpoint) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var emptied []string
	root := s.tree.Root()
	root.Walk(func(k []byte, v interface{}) bool {
		e := v.(*subEntry)
		if _, ok := e.refs[p]; ok {
			delete(e.refs, p)
			if len(e.refs) == 0 {
				emptied = append(emptied, string(k))
			}
		}
		return false
	})
	for _, k := range emptied {
		tree, _, _ := s.tree.Delete([]byte(k))
		s.tree = tree
	}
	return emptied
}

// Match returns every pipe with at least one subscription that is a
// prefix of topic, deduplicated.
func (s *SubscriptionTrie) Match(topic []byte) []*pipe.Endpoint {
	s.mu.Lock()
	tree := s.tree
	s.mu.Unlock()

	seen := map[*pipe.Endpoint]bool{}
	var out []*pipe.Endpoint
	tree.Root().WalkPath(topic, func(k []byte, v interface{}) bool {
		e := v.(*subEntry)
		for p := range e.refs {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
		return false
	})
	return out
}
