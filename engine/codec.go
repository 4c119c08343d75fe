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

package engine

import (
	"github/sabouaram/zmtpcore/greeting"
	"github/sabouaram/zmtpcore/msg"
	"github/sabouaram/zmtpcore/wire/arena"
	"github/sabouaram/zmtpcore/wire/zmtp1"
	"github/sabouaram/zmtpcore/wire/zmtp2"
	"github/sabouaram/zmtpcore/wire/zmtp3"
)

// frameDecoder and frameEncoder let the engine swap ZMTP 1.0/2.0/3.x
// wire framing without the read/write pumps caring which version won
// negotiation (spec.md §4.2, "Framing codecs").
type frameDecoder interface {
	Feed(buf []byte, out []msg.Message) ([]msg.Message, int, error)
}

type frameEncoder interface {
	Encode(dst []byte, m msg.Message) []byte
}

// selectCodec picks the frame decoder/encoder pair for a negotiated
// version. 2.0 and 3.0 share zmtp2's plain length-prefixed framing;
// 3.1 adds zmtp3's command-name-prefixed encoder on top of the same
// decoder (grounded on zmtp_engine.rs picking v1/v2/v3 handshake
// functions off the greeting's revision/minor bytes).
func selectCodec(v greeting.Version, maxMsgSize int64, pool *arena.Pool) (frameDecoder, frameEncoder) {
	switch {
	case v.Major < 2:
		return zmtp1.NewDecoder(maxMsgSize), zmtp1.Encoder{}
	case v.Major == 3 && v.Minor >= 1:
		return zmtp2.NewDecoder(maxMsgSize, pool), zmtp3.Encoder{}
	default:
		return zmtp2.NewDecoder(maxMsgSize, pool), zmtp2.Encoder{}
	}
}
