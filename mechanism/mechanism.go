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

// Package mechanism defines the common security-mechanism contract
// implemented by null, plain, curve and gssapi: a handshake command
// exchange followed by a per-message encode/decode transform once
// established (spec.md §4.3/§6, "Mechanism"). Mechanics of CURVE/GSSAPI
// cryptographic primitives beyond the command exchange are treated as
// black boxes per spec.md's explicit scope boundary; the curve
// subpackage still performs real key agreement and sealing via
// golang.org/x/crypto, just without chasing full CurveZMQ wire parity.
package mechanism

import "github/sabouaram/zmtpcore/msg"

// Status is the handshake progress of a Mechanism.
type Status int

const (
	StatusHandshaking Status = iota
	StatusReady
	StatusError
)

// Mechanism is implemented by null, plain, curve and gssapi.
type Mechanism interface {
	// Name is the 20-byte-field mechanism name advertised in the greeting.
	Name() string

	// NextHandshakeCommand returns the next command frame this side
	// should send, or ok=false if it has nothing to send right now
	// (waiting on the peer).
	NextHandshakeCommand() (m msg.Message, ok bool, err error)

	// ProcessHandshakeCommand consumes a command frame received from the
	// peer, advancing the handshake state machine.
	ProcessHandshakeCommand(m msg.Message) error

	Status() Status

	// Encode/Decode wrap a data message for transmission once Status is
	// StatusReady. NULL and PLAIN pass through unchanged; CURVE seals/opens.
	Encode(m msg.Message) (msg.Message, error)
	Decode(m msg.Message) (msg.Message, error)

	// PeerUserID returns the identity the peer authenticated as, once
	// ready, for ZAP-driven sockets to expose via getsockopt.
	PeerUserID() []byte
}
