/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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

package network

import "sync/atomic"

// Counters accumulates one atomic uint64 per Stats kind. Safe for
// concurrent use by a pipe's reader and writer goroutines.
type Counters struct {
	bytes, packets, fifo, drop, err atomic.Uint64
}

// Add increments the counter for s by delta.
func (c *Counters) Add(s Stats, delta uint64) {
	switch s {
	case StatBytes:
		c.bytes.Add(delta)
	case StatPackets:
		c.packets.Add(delta)
	case StatFifo:
		c.fifo.Add(delta)
	case StatDrop:
		c.drop.Add(delta)
	case StatErr:
		c.err.Add(delta)
	}
}

// Get returns the current value of the counter for s.
func (c *Counters) Get(s Stats) uint64 {
	switch s {
	case StatBytes:
		return c.bytes.Load()
	case StatPackets:
		return c.packets.Load()
	case StatFifo:
		return c.fifo.Load()
	case StatDrop:
		return c.drop.Load()
	case StatErr:
		return c.err.Load()
	}
	return 0
}
