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

// Package zmtp1 implements the original ZMTP 1.0 frame format: a
// length prefix counting the flags byte and body (one byte, or 0xFF
// followed by an 8-byte big-endian length for long frames), a flags
// byte carrying only the MORE bit, and for legacy SUBSCRIBE/CANCEL
// messages a leading 0x01/0x00 byte ahead of the topic (spec.md §4.2,
// "ZMTP 1.0"; grounded on v1_decoder.rs / v1_encoder.rs).
package zmtp1

import (
	"encoding/binary"
	"math"

	"github/sabouaram/zmtpcore/msg"
)

const escapeLength = 0xff

type decodeStep int

const (
	stepLen1 decodeStep = iota
	stepLen8
	stepFlags
	stepBody
)

// Decoder reassembles ZMTP 1.0 frames from arbitrarily-chunked input.
type Decoder struct {
	MaxMsgSize int64

	step    decodeStep
	tmp     [8]byte
	tmpFill int
	size    uint64 // includes the flags byte
	flags   byte
	body    []byte
	bodyAt  int
}

func NewDecoder(maxMsgSize int64) *Decoder {
	return &Decoder{MaxMsgSize: maxMsgSize, step: stepLen1}
}

// Feed behaves like zmtp2.Decoder.Feed.
func (d *Decoder) Feed(buf []byte, out []msg.Message) ([]msg.Message, int, error) {
	n := 0
	for n < len(buf) {
		switch d.step {
		case stepLen1:
			b := buf[n]
			n++
			if b == escapeLength {
				d.step = stepLen8
				d.tmpFill = 0
				continue
			}
			if b == 0 {
				return out, n, ErrorProtocol.Error()
			}
			d.size = uint64(b)
			if err := d.beginBody(); err != nil {
				return out, n, err
			}

		case stepLen8:
			take := 8 - d.tmpFill
			if take > len(buf)-n {
				take = len(buf) - n
			}
			copy(d.tmp[d.tmpFill:], buf[n:n+take])
			d.tmpFill += take
			n += take
			if d.tmpFill < 8 {
				return out, n, nil
			}
			d.size = binary.BigEndian.Uint64(d.tmp[:])
			if d.size == 0 {
				return out, n, ErrorProtocol.Error()
			}
			if err := d.beginBody(); err != nil {
				return out, n, err
			}

		case stepFlags:
			d.flags = buf[n]
			n++
			bodyLen := int(d.size) - 1
			d.body = make([]byte, bodyLen)
			d.bodyAt = 0
			d.step = stepBody
			if bodyLen == 0 {
				out = append(out, d.finishMessage())
				d.step = stepLen1
			}

		case stepBody:
			take := len(d.body) - d.bodyAt
			if take > len(buf)-n {
				take = len(buf) - n
			}
			copy(d.body[d.bodyAt:], buf[n:n+take])
			d.bodyAt += take
			n += take
			if d.bodyAt < len(d.body) {
				return out, n, nil
			}
			out = append(out, d.finishMessage())
			d.step = stepLen1
		}
	}
	return out, n, nil
}

func (d *Decoder) beginBody() error {
	if d.MaxMsgSize >= 0 && int64(d.size-1) > d.MaxMsgSize {
		return ErrorMsgTooLarge.Error()
	}
	d.step = stepFlags
	return nil
}

func (d *Decoder) finishMessage() msg.Message {
	m := msg.NewInline(d.body)
	m.SetMore(d.flags&0x1 != 0)
	d.body = nil
	return m
}

// Encoder serializes Messages using ZMTP 1.0 framing. Subscribe/cancel
// messages are written with the legacy leading 0x01/0x00 topic-kind
// byte instead of the 3.1 command-name encoding.
type Encoder struct{}

func (Encoder) Encode(dst []byte, m msg.Message) []byte {
	data := m.Data()
	bodySize := len(data)
	prefix := byte(0)
	hasPrefix := false
	if m.IsCommand() {
		switch m.CommandType() {
		case msg.CmdSubscribe:
			prefix, hasPrefix = 1, true
		case msg.CmdCancel:
			prefix, hasPrefix = 0, true
		}
	}
	if hasPrefix {
		bodySize++
	}

	size := uint64(bodySize) + 1 // + flags byte

	if size < math.MaxUint8 {
		dst = append(dst, byte(size))
	} else {
		dst = append(dst, escapeLength)
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], size)
		dst = append(dst, b[:]...)
	}

	var flags byte
	if m.More() {
		flags |= 0x1
	}
	dst = append(dst, flags)

	if hasPrefix {
		dst = append(dst, prefix)
	}
	return append(dst, data...)
}
