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

package zmtp1_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github/sabouaram/zmtpcore/msg"
	"github/sabouaram/zmtpcore/wire/zmtp1"
)

var _ = Describe("Zmtp1 codec", func() {
	It("round-trips a short message", func() {
		m := msg.NewInline([]byte("hello"))
		var enc zmtp1.Encoder
		wireBytes := enc.Encode(nil, m)

		dec := zmtp1.NewDecoder(-1)
		out, n, err := dec.Feed(wireBytes, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(len(wireBytes)))
		Expect(out).To(HaveLen(1))
		Expect(out[0].Data()).To(Equal([]byte("hello")))
	})

	It("round-trips a message long enough to need the 0xff escape", func() {
		data := make([]byte, 300)
		m := msg.NewInline(data)
		var enc zmtp1.Encoder
		wireBytes := enc.Encode(nil, m)
		Expect(wireBytes[0]).To(Equal(byte(0xff)))

		dec := zmtp1.NewDecoder(-1)
		out, _, err := dec.Feed(wireBytes, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(out[0].Data()).To(Equal(data))
	})

	It("decodes identically fed byte by byte", func() {
		m := msg.NewInline([]byte("partial-feed"))
		m.SetMore(true)
		var enc zmtp1.Encoder
		wireBytes := enc.Encode(nil, m)

		dec := zmtp1.NewDecoder(-1)
		var out []msg.Message
		for _, b := range wireBytes {
			var err error
			out, _, err = dec.Feed([]byte{b}, out)
			Expect(err).ToNot(HaveOccurred())
		}
		Expect(out).To(HaveLen(1))
		Expect(out[0].Data()).To(Equal([]byte("partial-feed")))
		Expect(out[0].More()).To(BeTrue())
	})

	It("prefixes legacy subscribe messages with the topic-kind byte", func() {
		c := msg.NewCommand(msg.CmdSubscribe, []byte("topic"))
		var enc zmtp1.Encoder
		wireBytes := enc.Encode(nil, c)
		// length byte, flags byte, then 0x01 subscribe-kind byte, then topic
		Expect(wireBytes[2]).To(Equal(byte(1)))
		Expect(wireBytes[3:]).To(Equal([]byte("topic")))
	})
})
