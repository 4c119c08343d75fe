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
	"encoding/binary"
	"sync"

	"github/sabouaram/zmtpcore/pipe"
)

// RoutingIDMap assigns and tracks routing ids for a ROUTER socket's
// peers: a connecting peer that advertised no Identity metadata
// property gets an auto-generated id (a leading zero byte followed by
// a monotonic uint32, so auto ids never collide with a user-chosen
// one — user-chosen ids are rejected if they start with a zero byte),
// and a duplicate user-chosen id either hands over the old pipe's slot
// to the new one or is rejected, depending on Handover (spec.md §4.3,
// "ROUTER identity/handover" / I-RTR). Grounded on
// original_source/src/socket/router.rs's identify_peer.
type RoutingIDMap struct {
	Handover bool

	mu      sync.Mutex
	next    uint32
	byID    map[string]*pipe.Endpoint
	idOf    map[*pipe.Endpoint]string
}

func NewRoutingIDMap(handover bool) *RoutingIDMap {
	return &RoutingIDMap{
		Handover: handover,
		byID:     map[string]*pipe.Endpoint{},
		idOf:     map[*pipe.Endpoint]string{},
	}
}

// AutoID generates the next auto-assigned id: a single zero byte
// followed by a big-endian monotonic counter.
func (r *RoutingIDMap) AutoID() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.autoIDLocked()
}

func (r *RoutingIDMap) autoIDLocked() []byte {
	id := make([]byte, 5)
	binary.BigEndian.PutUint32(id[1:], r.next)
	r.next++
	return id
}

// Identify registers p under id (typically the peer's advertised
// Identity property, or nil to request an auto id). It returns the id
// actually assigned, the pipe that was handed over and displaced (nil
// if none), and ok=false if the id collided and Handover is disabled
// (the caller should reject the peer).
func (r *RoutingIDMap) Identify(id []byte, p *pipe.Endpoint) (assigned []byte, displaced *pipe.Endpoint, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(id) == 0 || id[0] == 0 {
		assigned = r.autoIDLocked()
		r.byID[string(assigned)] = p
		r.idOf[p] = string(assigned)
		return assigned, nil, true
	}

	key := string(id)
	if existing, found := r.byID[key]; found {
		if !r.Handover {
			return nil, nil, false
		}
		delete(r.idOf, existing)
		displaced = existing
	}
	r.byID[key] = p
	r.idOf[p] = key
	return id, displaced, true
}

// Lookup resolves a routing id to its pipe, for ROUTER sends.
func (r *RoutingIDMap) Lookup(id []byte) (*pipe.Endpoint, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[string(id)]
	return p, ok
}

// IDOf returns the routing id a pipe was registered under.
func (r *RoutingIDMap) IDOf(p *pipe.Endpoint) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.idOf[p]
	return []byte(id), ok
}

// Remove drops p's registration, e.g. on pipe termination.
func (r *RoutingIDMap) Remove(p *pipe.Endpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.idOf[p]; ok {
		delete(r.byID, id)
		delete(r.idOf, p)
	}
}
