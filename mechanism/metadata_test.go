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

package mechanism_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github/sabouaram/zmtpcore/mechanism"
)

var _ = Describe("Metadata", func() {
	It("round-trips an empty property set", func() {
		encoded := mechanism.EncodeMetadata(nil)
		decoded, err := mechanism.DecodeMetadata(encoded)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(BeEmpty())
	})

	It("round-trips several properties", func() {
		props := map[string]string{
			"Socket-Type": "DEALER",
			"Identity":    "peer-1",
		}
		encoded := mechanism.EncodeMetadata(props)
		decoded, err := mechanism.DecodeMetadata(encoded)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(Equal(props))
	})

	It("rejects truncated input", func() {
		_, err := mechanism.DecodeMetadata([]byte{5, 'S', 'h', 'o', 'r'})
		Expect(err).To(HaveOccurred())
	})
})
