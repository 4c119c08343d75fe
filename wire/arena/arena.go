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

// Package arena implements the decoder's zero-copy receive buffer: a
// fixed-size chunk that multiple in-progress messages can point slices
// into, refcounted so the chunk is returned to the pool only once every
// message built from it has been closed (spec.md §4.1, "Zero-copy path";
// grounded on decoder_allocators.rs's shared_message_memory_allocator).
package arena

import (
	"sync"
	"sync/atomic"

	"github/sabouaram/zmtpcore/msg"
)

// Pool hands out fixed-size Chunks and recycles them via sync.Pool once
// their refcount drops to zero.
type Pool struct {
	chunkSize int
	pool      sync.Pool
}

// NewPool builds a Pool of chunks of chunkSize bytes.
func NewPool(chunkSize int) *Pool {
	p := &Pool{chunkSize: chunkSize}
	p.pool.New = func() interface{} {
		return &Chunk{buf: make([]byte, chunkSize), pool: p}
	}
	return p
}

// Chunk is one fixed-size receive buffer. Get grows its refcount by one
// per outstanding zero-copy Message view into it.
type Chunk struct {
	buf  []byte
	refs atomic.Int32
	pool *Pool
}

// Get returns a ready-to-fill chunk with a refcount of 1 (the decoder's
// own hold on it while it is the active fill target).
func (p *Pool) Get() *Chunk {
	c := p.pool.Get().(*Chunk)
	c.refs.Store(1)
	return c
}

// Bytes returns the chunk's backing storage.
func (c *Chunk) Bytes() []byte { return c.buf }

// View builds a zero-copy Message referencing buf[:n] of the chunk,
// incrementing the chunk's refcount. The returned Message's Close call
// decrements it again and returns the chunk to its pool once it and
// every other outstanding view are closed.
func (c *Chunk) View(data []byte) msg.Message {
	c.refs.Add(1)
	return msg.NewZeroCopy(data, c.release, c)
}

// Release drops the decoder's own reference, taken implicitly by Get.
// Call this once the chunk has been fully consumed and no more View
// calls will be made against it.
func (c *Chunk) Release() {
	c.release(nil, c)
}

func (c *Chunk) release(_ []byte, hint interface{}) {
	ch := hint.(*Chunk)
	if ch.refs.Add(-1) == 0 {
		ch.pool.pool.Put(ch)
	}
}
