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

// Package zmtp3 adds the ZMTP 3.1 wire encoding on top of the zmtp2
// frame format: PING/PONG/SUBSCRIBE/CANCEL command frames carry a
// Pascal-string command name ahead of their argument bytes (spec.md
// §4.2, "ZMTP 3.1 command encoding"; grounded on encoder/v3_1_encoder.rs).
// Decoding is unchanged from zmtp2.Decoder, which already understands
// the name-prefixed command body.
package zmtp3

import (
	"encoding/binary"
	"math"

	"github/sabouaram/zmtpcore/msg"
	"github/sabouaram/zmtpcore/wire"
)

// Encoder serializes Messages using ZMTP 3.1 framing.
type Encoder struct{}

func commandName(c msg.CommandType) string {
	switch c {
	case msg.CmdPing:
		return "PING"
	case msg.CmdPong:
		return "PONG"
	case msg.CmdSubscribe:
		return wire.SubscribeCmdName
	case msg.CmdCancel:
		return wire.CancelCmdName
	default:
		return ""
	}
}

// Encode appends the wire representation of m to dst and returns the
// extended slice.
func (Encoder) Encode(dst []byte, m msg.Message) []byte {
	data := m.Data()

	var name string
	if m.IsCommand() {
		name = commandName(m.CommandType())
	}

	size := uint64(len(data))
	if name != "" {
		size += uint64(1 + len(name))
	}

	var flags byte
	if m.More() {
		flags |= wire.FlagMore
	}
	if m.IsCommand() {
		flags |= wire.FlagCommand
	}
	large := size > math.MaxUint8
	if large {
		flags |= wire.FlagLarge
	}

	dst = append(dst, flags)
	if large {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], size)
		dst = append(dst, b[:]...)
	} else {
		dst = append(dst, byte(size))
	}
	if name != "" {
		dst = append(dst, byte(len(name)))
		dst = append(dst, name...)
	}
	return append(dst, data...)
}
