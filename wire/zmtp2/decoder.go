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

// Package zmtp2 implements the ZMTP 2.0/3.0 frame codec: a one-byte
// flags field, a one- or eight-byte length, then the payload. ZMTP 3.0
// reuses this exact wire format (only the greeting and mechanism
// negotiation differ; libzmq itself shares one decoder across both
// versions, grounded on decoder/v2_decoder.rs).
package zmtp2

import (
	"encoding/binary"

	"github/sabouaram/zmtpcore/msg"
	"github/sabouaram/zmtpcore/wire"
	"github/sabouaram/zmtpcore/wire/arena"
)

type decodeStep int

const (
	stepFlags decodeStep = iota
	stepLen1
	stepLen8
	stepBody
)

// Decoder reassembles frames fed in arbitrary-sized chunks (one TCP
// read at a time) into complete Messages. It is not safe for concurrent
// use; one Decoder belongs to one engine.
type Decoder struct {
	MaxMsgSize int64
	Arena      *arena.Pool // optional; nil disables zero-copy, always copies inline

	step     decodeStep
	flags    byte
	needLarge bool
	size     uint64
	tmp      [8]byte
	tmpFill  int

	chunk  *arena.Chunk
	body   []byte
	bodyAt int
}

// NewDecoder builds a Decoder. If pool is non-nil, bodies large enough
// to benefit are served as zero-copy views into pool chunks rather than
// always being copied inline.
func NewDecoder(maxMsgSize int64, pool *arena.Pool) *Decoder {
	return &Decoder{MaxMsgSize: maxMsgSize, Arena: pool, step: stepFlags}
}

// Feed consumes as much of buf as forms complete frames, appending every
// fully decoded Message to out, and returns the updated slice along with
// the number of bytes of buf consumed. Partial frames are held
// internally until the rest arrives on a later Feed call — feeding the
// same bytes split across many calls yields the same messages as
// feeding them in one call (spec.md §8, "partial-feed equivalence").
func (d *Decoder) Feed(buf []byte, out []msg.Message) ([]msg.Message, int, error) {
	n := 0
	for n < len(buf) {
		switch d.step {
		case stepFlags:
			d.flags = buf[n]
			n++
			d.needLarge = d.flags&wire.FlagLarge != 0
			if d.needLarge {
				d.step = stepLen8
				d.tmpFill = 0
			} else {
				d.step = stepLen1
			}

		case stepLen1:
			d.size = uint64(buf[n])
			n++
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
			if err := d.beginBody(); err != nil {
				return out, n, err
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
			d.step = stepFlags
		}
	}
	return out, n, nil
}

func (d *Decoder) beginBody() error {
	if d.MaxMsgSize >= 0 && int64(d.size) > d.MaxMsgSize {
		return ErrorMsgTooLarge.Error()
	}
	if d.Arena != nil && d.size > 0 {
		d.chunk = d.Arena.Get()
		if int(d.size) <= len(d.chunk.Bytes()) {
			d.body = d.chunk.Bytes()[:d.size]
			d.bodyAt = 0
			d.step = stepBody
			return nil
		}
		d.chunk.Release()
		d.chunk = nil
	}
	d.body = make([]byte, d.size)
	d.bodyAt = 0
	d.step = stepBody
	return nil
}

func (d *Decoder) finishMessage() msg.Message {
	if d.flags&wire.FlagCommand != 0 {
		m := decodeCommand(d.body)
		if d.chunk != nil {
			d.chunk.Release()
			d.chunk = nil
		}
		d.body = nil
		return m
	}

	var m msg.Message
	if d.chunk != nil {
		m = d.chunk.View(d.body)
		d.chunk.Release()
		d.chunk = nil
	} else if len(d.body) <= msg.InlineThreshold || d.Arena == nil {
		m = msg.NewInline(d.body)
	} else {
		buf := d.body
		m = msg.NewLong(buf, func([]byte, interface{}) {}, nil)
	}
	m.SetMore(d.flags&wire.FlagMore != 0)
	d.body = nil
	return m
}

// decodeCommand parses a ZMTP 3.1 command frame body: a Pascal string
// naming the command, followed by its argument bytes (spec.md §4.2,
// "command frames"). PING/PONG carry a TTL+context argument; SUBSCRIBE/
// CANCEL carry the topic prefix.
func decodeCommand(body []byte) msg.Message {
	if len(body) == 0 {
		return msg.NewCommand(msg.CmdNone, nil)
	}
	nameLen := int(body[0])
	if 1+nameLen > len(body) {
		return msg.NewCommand(msg.CmdNone, body)
	}
	name := string(body[1 : 1+nameLen])
	arg := body[1+nameLen:]

	switch name {
	case "PING":
		return msg.NewCommand(msg.CmdPing, arg)
	case "PONG":
		return msg.NewCommand(msg.CmdPong, arg)
	case wire.SubscribeCmdName:
		return msg.NewCommand(msg.CmdSubscribe, arg)
	case wire.CancelCmdName:
		return msg.NewCommand(msg.CmdCancel, arg)
	default:
		return msg.NewCommand(msg.CmdNone, body)
	}
}
