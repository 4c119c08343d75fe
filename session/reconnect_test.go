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

package session_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github/sabouaram/zmtpcore/pipe"
	"github/sabouaram/zmtpcore/session"
	"github/sabouaram/zmtpcore/transport"
)

var _ = Describe("Backoff", func() {
	It("doubles the interval up to the configured max", func() {
		b := session.NewBackoff(10*time.Millisecond, 40*time.Millisecond)
		d1 := b.Next()
		d2 := b.Next()
		d3 := b.Next()
		Expect(d1).To(BeNumerically(">=", 10*time.Millisecond))
		Expect(d2).To(BeNumerically(">=", 20*time.Millisecond))
		Expect(d3).To(BeNumerically(">=", 40*time.Millisecond))
		Expect(d3).To(BeNumerically("<=", 80*time.Millisecond))
	})

	It("returns to its initial interval after Reset", func() {
		b := session.NewBackoff(10*time.Millisecond, 100*time.Millisecond)
		b.Next()
		b.Next()
		b.Reset()
		Expect(b.Next()).To(BeNumerically("<=", 20*time.Millisecond))
	})
})

var _ = Describe("Reconnector", func() {
	It("stops immediately once ctx is already done", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		rc := &session.Reconnector{
			Endpoint: transport.Endpoint{Scheme: transport.TCP, Address: "127.0.0.1:0"},
			Backoff:  session.NewBackoff(time.Millisecond, 2*time.Millisecond),
		}
		err := rc.Run(ctx, func(*pipe.Endpoint) {})
		Expect(err).To(HaveOccurred())
	})
})
