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

package engine

import (
	"sync"
	"time"
)

// errBox holds the first error reported by either pump, read/write from
// different goroutines at Run's shutdown.
type errBox struct {
	mu  sync.Mutex
	err error
}

func (b *errBox) CompareAndSwap(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err == nil {
		b.err = err
	}
}

func (b *errBox) Get() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// timeBox is a concurrency-safe time.Time, set by the read pump and
// read by the heartbeat loop.
type timeBox struct {
	mu sync.Mutex
	t  time.Time
}

func (b *timeBox) Set(t time.Time) {
	b.mu.Lock()
	b.t = t
	b.mu.Unlock()
}

func (b *timeBox) Get() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.t
}
