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

package curve_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github/sabouaram/zmtpcore/mechanism"
	"github/sabouaram/zmtpcore/mechanism/curve"
	"github/sabouaram/zmtpcore/msg"
)

var _ = Describe("CURVE mechanism", func() {
	It("completes HELLO/WELCOME/INITIATE/READY and reaches Ready", func() {
		serverLongTerm, err := curve.GenerateKeypair()
		Expect(err).NotTo(HaveOccurred())
		clientLongTerm, err := curve.GenerateKeypair()
		Expect(err).NotTo(HaveOccurred())

		client, err := curve.NewClient(clientLongTerm, serverLongTerm.Public, map[string]string{"Socket-Type": "DEALER"})
		Expect(err).NotTo(HaveOccurred())
		server, err := curve.NewServer(serverLongTerm, map[string]string{"Socket-Type": "ROUTER"})
		Expect(err).NotTo(HaveOccurred())

		hello, ok, err := client.NextHandshakeCommand()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(server.ProcessHandshakeCommand(hello)).To(Succeed())

		welcome, ok, err := server.NextHandshakeCommand()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(client.ProcessHandshakeCommand(welcome)).To(Succeed())

		initiate, ok, err := client.NextHandshakeCommand()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(server.ProcessHandshakeCommand(initiate)).To(Succeed())

		ready, ok, err := server.NextHandshakeCommand()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(client.ProcessHandshakeCommand(ready)).To(Succeed())

		Expect(client.Status()).To(Equal(mechanism.StatusReady))
		Expect(server.Status()).To(Equal(mechanism.StatusReady))
		Expect(server.PeerUserID()).To(Equal(clientLongTerm.Public[:]))

		plaintext := msg.NewInline([]byte("hello over curve"))
		sealed, err := client.Encode(plaintext)
		Expect(err).NotTo(HaveOccurred())
		opened, err := server.Decode(sealed)
		Expect(err).NotTo(HaveOccurred())
		Expect(opened.Data()).To(Equal([]byte("hello over curve")))
	})

	It("fails the handshake on a malformed HELLO", func() {
		serverLongTerm, _ := curve.GenerateKeypair()
		server, _ := curve.NewServer(serverLongTerm, nil)
		err := server.ProcessHandshakeCommand(msg.NewCommand(msg.CmdNone, []byte("bogus")))
		Expect(err).To(HaveOccurred())
		Expect(server.Status()).To(Equal(mechanism.StatusError))
	})
})
