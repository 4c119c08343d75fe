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

// Package greeting implements the ZMTP connection preamble: the 10-byte
// signature, version negotiation (1.0 "unversioned" detection, 2.0, 3.0,
// 3.1), and, for 3.x peers, the 64-byte greeting carrying the security
// mechanism name and as-server flag (spec.md §4.2, "Greeting/handshake
// negotiation"; grounded on zmtp_engine.rs's receive_greeting/
// receive_greeting_versioned).
package greeting

import "fmt"

// Version is the negotiated ZMTP protocol version.
type Version struct {
	Major byte
	Minor byte
}

func (v Version) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

// AtLeast3 reports whether v negotiates the ZMTP 3.x greeting (signature
// + mechanism name) rather than the legacy unversioned/2.0 handshake.
func (v Version) AtLeast3() bool { return v.Major >= 3 }

var (
	V1_0 = Version{1, 0}
	V2_0 = Version{2, 0}
	V3_0 = Version{3, 0}
	V3_1 = Version{3, 1}
)

const (
	SignatureSize = 10
	V2GreetingSize = 12
	V3GreetingSize = 64

	mechanismNameSize = 20
)

// signature is the fixed 10-byte preamble every ZMTP connection opens
// with: 0xFF, eight placeholder length bytes (historically the
// routing-id message length in the unversioned protocol), then 0x7F.
var signaturePrefix = byte(0xff)
var signatureSuffix = byte(0x7f)

// Local describes this side's greeting parameters, supplied by the
// engine once it knows the negotiated/advertised security mechanism.
type Local struct {
	Version   Version
	Mechanism string // e.g. "NULL", "PLAIN", "CURVE", "GSSAPI"; max 20 bytes
	AsServer  bool
}

// Build serializes the outgoing greeting bytes: the 10-byte signature,
// the major version byte, and, for 3.x, the minor version + 20-byte
// mechanism name + as-server byte + 31 reserved bytes.
func (l Local) Build() []byte {
	out := make([]byte, 0, V3GreetingSize)
	out = append(out, signaturePrefix)
	out = append(out, make([]byte, 8)...) // legacy routing-id length field, unused by versioned peers
	out = append(out, signatureSuffix)
	out = append(out, l.Version.Major)

	if !l.Version.AtLeast3() {
		return out
	}

	out = append(out, l.Version.Minor)
	mech := make([]byte, mechanismNameSize)
	copy(mech, l.Mechanism)
	out = append(out, mech...)
	if l.AsServer {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	out = append(out, make([]byte, 31)...)
	return out
}

// Peer describes what was learned about the remote side's greeting.
type Peer struct {
	Unversioned bool // true: ZMTP 1.0, no mechanism negotiation
	Version     Version
	Mechanism   string
	AsServer    bool
}

// Reader incrementally parses an incoming greeting from a byte stream
// fed in arbitrary chunks, mirroring receive_greeting's own read loop.
type Reader struct {
	buf  [V3GreetingSize]byte
	n    int
	want int // bytes needed before a decision can be made; grows as bytes arrive
}

// NewReader builds a Reader expecting at least the 10-byte signature
// before it can tell versioned from unversioned peers apart.
func NewReader() *Reader {
	return &Reader{want: SignatureSize}
}

// Feed consumes up to the remaining greeting bytes from buf. done is
// true once enough has been read to produce a Peer (either the full 64
// bytes for a 3.x peer, or SignatureSize+1 bytes otherwise).
func (r *Reader) Feed(buf []byte) (consumed int, done bool) {
	for consumed < len(buf) && r.n < r.want {
		r.buf[r.n] = buf[consumed]
		r.n++
		consumed++

		if r.n == 1 && r.buf[0] != signaturePrefix {
			// Unversioned peer: first byte of a routing-id message length,
			// not the 0xff signature byte at all.
			r.want = r.n
			return consumed, true
		}

		if r.n == SignatureSize {
			if r.buf[9]&0x01 == 0 {
				// Bit unset: this is the 'flags' byte of an unversioned
				// routing-id message, not the signature suffix.
				r.want = r.n
				return consumed, true
			}
			r.want = SignatureSize + 1 // need the major version byte next
		}

		if r.n == SignatureSize+1 {
			if r.buf[SignatureSize] >= 3 {
				r.want = V3GreetingSize
			} else {
				return consumed, true
			}
		}
	}
	return consumed, r.n >= r.want
}

// Result builds the Peer once Feed has reported done.
func (r *Reader) Result() Peer {
	if r.buf[0] != signaturePrefix {
		return Peer{Unversioned: true, Version: V1_0}
	}
	major := r.buf[SignatureSize]
	if major < 3 {
		v := V2_0
		if major < 2 {
			v = V1_0
		}
		return Peer{Version: v}
	}

	minor := r.buf[SignatureSize+1]
	mechStart := SignatureSize + 2
	mech := string(trimNulls(r.buf[mechStart : mechStart+mechanismNameSize]))
	asServer := r.buf[mechStart+mechanismNameSize] != 0

	return Peer{Version: Version{Major: major, Minor: minor}, Mechanism: mech, AsServer: asServer}
}

func trimNulls(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] != 0 {
		i++
	}
	return b[:i]
}

// Negotiate picks the protocol version both sides can speak: the lesser
// of the two major.minor pairs, per spec.md §9 "ZMTP version fallback".
func Negotiate(local, peer Version) Version {
	if peer.Major < local.Major {
		return peer
	}
	if peer.Major > local.Major {
		return local
	}
	if peer.Minor < local.Minor {
		return peer
	}
	return local
}
