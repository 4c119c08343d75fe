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

package zmtp2

import (
	"encoding/binary"
	"math"

	"github/sabouaram/zmtpcore/msg"
	"github/sabouaram/zmtpcore/wire"
)

// Encoder serializes Messages using the legacy ZMTP 2.0/3.0 framing:
// COMMAND-flagged messages are NOT prefixed with a command name on this
// encoder (that is a 3.1-only addition, see zmtp3.Encoder); a PING/PONG/
// SUBSCRIBE/CANCEL built as a msg.Message is simply written as a plain
// command-flagged frame.
type Encoder struct{}

// Encode appends the wire representation of m to dst and returns the
// extended slice.
func (Encoder) Encode(dst []byte, m msg.Message) []byte {
	data := m.Data()
	size := uint64(len(data))

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
	return append(dst, data...)
}
