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
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github/sabouaram/zmtpcore/engine"
	"github/sabouaram/zmtpcore/greeting"
	"github/sabouaram/zmtpcore/msg"
	"github/sabouaram/zmtpcore/session"
)

var _ = Describe("Session", func() {
	It("carries a plain message end to end over a real connection", func() {
		clientConn, serverConn := net.Pipe()

		clientSess, clientApp := session.New(clientConn, session.Config{
			Engine: engine.Config{Local: greeting.Local{Version: greeting.V3_1, AsServer: false}, MaxMsgSize: -1},
		})
		serverSess, serverApp := session.New(serverConn, session.Config{
			Engine: engine.Config{Local: greeting.Local{Version: greeting.V3_1, AsServer: true}, MaxMsgSize: -1},
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go clientSess.Run(ctx)
		go serverSess.Run(ctx)

		Expect(clientApp.Write(msg.NewInline([]byte("hello")))).To(Succeed())

		Eventually(func() bool {
			m, ok := serverApp.Read()
			if ok {
				Expect(string(m.Data())).To(Equal("hello"))
				return true
			}
			return false
		}, 2*time.Second, 10*time.Millisecond).Should(BeTrue())
	})

	It("round-trips a RADIO/DISH group frame across the wire", func() {
		clientConn, serverConn := net.Pipe()

		radioSess, radioApp := session.New(clientConn, session.Config{
			Engine:  engine.Config{Local: greeting.Local{Version: greeting.V3_1, AsServer: false}, MaxMsgSize: -1},
			Framing: session.FramingRadio,
		})
		dishSess, dishApp := session.New(serverConn, session.Config{
			Engine:  engine.Config{Local: greeting.Local{Version: greeting.V3_1, AsServer: true}, MaxMsgSize: -1},
			Framing: session.FramingDish,
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go radioSess.Run(ctx)
		go dishSess.Run(ctx)

		g, err := msg.NewGroup("weather")
		Expect(err).NotTo(HaveOccurred())
		out := msg.NewInline([]byte("sunny"))
		out.SetGroup(g)
		Expect(radioApp.Write(out)).To(Succeed())

		Eventually(func() bool {
			m, ok := dishApp.Read()
			if ok {
				Expect(m.Group().Name()).To(Equal("weather"))
				Expect(string(m.Data())).To(Equal("sunny"))
				return true
			}
			return false
		}, 2*time.Second, 10*time.Millisecond).Should(BeTrue())
	})
})
