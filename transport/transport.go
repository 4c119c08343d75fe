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

// Package transport resolves a ZMTP endpoint address ("tcp://host:port",
// "ipc:///path") into a net.Dialer/net.Listener pair, the "connecter"
// and "listener" half of spec.md §4.6 that the reactor and session
// packages drive (grounded on the shape of the teacher's
// socket/client/{tcp,unix} and socket/server/{tcp,unix} packages -
// those packages ship only their _test.go files in this retrieval pack,
// with no surviving implementation, so the dial/listen primitives below
// are a direct net.Dialer/net.ListenConfig wrapping rather than an
// adaptation of teacher source; see DESIGN.md).
package transport

import (
	"context"
	"net"
	"strings"
	"time"

	"github/sabouaram/zmtpcore/errors"
)

// Scheme is the transport named by a ZMTP endpoint's "scheme://" prefix.
type Scheme string

const (
	TCP Scheme = "tcp"
	IPC Scheme = "ipc"
)

// Endpoint is a parsed "scheme://address" ZMTP endpoint string.
type Endpoint struct {
	Scheme  Scheme
	Address string // host:port for TCP, path for IPC
}

// Parse splits a "tcp://127.0.0.1:5555" or "ipc:///tmp/sock" endpoint.
func Parse(raw string) (Endpoint, error) {
	i := strings.Index(raw, "://")
	if i < 0 {
		return Endpoint{}, ErrorBadEndpoint.Error()
	}
	scheme, addr := Scheme(raw[:i]), raw[i+3:]
	switch scheme {
	case TCP, IPC:
		return Endpoint{Scheme: scheme, Address: addr}, nil
	default:
		return Endpoint{}, ErrorUnsupportedScheme.Error()
	}
}

func (e Endpoint) network() string {
	if e.Scheme == IPC {
		return "unix"
	}
	return "tcp"
}

// Dial connects to ep, honoring ctx for cancellation/deadline - the
// "stream connecter" half of spec.md §4.6.
func Dial(ctx context.Context, ep Endpoint, connectTimeout time.Duration) (net.Conn, error) {
	d := net.Dialer{Timeout: connectTimeout}
	return d.DialContext(ctx, ep.network(), ep.Address)
}

// Listen opens ep for inbound connections - the "stream listener" half.
func Listen(ctx context.Context, ep Endpoint) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(ctx, ep.network(), ep.Address)
}

const (
	ErrorBadEndpoint errors.CodeError = iota + errors.MinPkgTransport
	ErrorUnsupportedScheme
)

var isCodeError = false

func IsCodeError() bool { return isCodeError }

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorBadEndpoint)
	errors.RegisterIdFctMessage(ErrorBadEndpoint, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorBadEndpoint:
		return "transport: endpoint missing scheme:// prefix"
	case ErrorUnsupportedScheme:
		return "transport: unsupported endpoint scheme (want tcp or ipc)"
	}
	return ""
}
