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

package msg

import (
	libatm "github/sabouaram/zmtpcore/atomic"
)

// FreeFunc is called when the last reference to a shared/zero-copy
// buffer is released. hint carries whatever the allocator attached
// (e.g. an arena pointer) so it can reclaim the memory or return it to
// a freelist. This mirrors libzmq's content_t free-callback contract
// (spec.md §9, "Message variants").
type FreeFunc func(data []byte, hint interface{})

// Message is the tagged value carried by pipes, codecs and socket
// patterns. Exactly one Kind is active at a time (spec.md §3 invariant).
//
// Message is a small value type; zero value is KindEmpty. Long/zero-copy
// messages share their backing buffer via an explicit refcount reached
// through dup/Close, never via Go's GC alone, so a FreeFunc hint (e.g.
// a decoder arena) can be notified exactly once the last reference goes
// away.
type Message struct {
	kind  Kind
	flags Flag
	cmd   CommandType

	data []byte // view of the payload, regardless of kind

	refs libatm.Value[int32] // non-nil only for KindLong/KindZeroCopy
	free FreeFunc
	hint interface{}

	group     Group
	routingID uint32
	closed    bool
}

// NewEmpty returns a zero-length inline Message (used for delimiters,
// probes and empty SUBSCRIBE/CANCEL bodies).
func NewEmpty() Message {
	return Message{kind: KindInline}
}

// NewDelimiter returns the empty-delimiter frame used to separate a
// ROUTER/REQ/REP envelope from its body.
func NewDelimiter() Message {
	return Message{kind: KindDelimiter}
}

// NewInline copies data into a new inline Message. Used whenever data
// is small or the caller does not want to share ownership of it.
func NewInline(data []byte) Message {
	buf := make([]byte, len(data))
	copy(buf, data)
	return Message{kind: KindInline, data: buf}
}

// NewConst wraps data that the Message does not own: the caller
// guarantees data outlives every copy of the Message. No refcount is
// kept, matching libzmq's zmq_msg_init_data with a nil free function
// for static/const buffers.
func NewConst(data []byte) Message {
	return Message{kind: KindConst, data: data}
}

// NewLong wraps an owned heap buffer with a refcount of 1. free, if
// non-nil, runs exactly once, when the last reference is closed.
func NewLong(data []byte, free FreeFunc, hint interface{}) Message {
	r := libatm.NewValue[int32]()
	r.Store(1)
	return Message{kind: KindLong, data: data, refs: r, free: free, hint: hint}
}

// NewZeroCopy wraps a view into a decoder arena. Semantically identical
// to NewLong but kept as a distinct Kind so callers (and tests) can tell
// "owns a private allocation" apart from "borrows from a shared arena"
// (spec.md §4.1, "Zero-copy path").
func NewZeroCopy(data []byte, free FreeFunc, hint interface{}) Message {
	r := libatm.NewValue[int32]()
	r.Store(1)
	return Message{kind: KindZeroCopy, data: data, refs: r, free: free, hint: hint}
}

// NewJoin builds a RADIO/DISH JOIN command for the given group.
func NewJoin(group string) (Message, error) {
	g, err := NewGroup(group)
	if err != nil {
		return Message{}, err
	}
	return Message{kind: KindJoin, group: g, flags: FlagCommand, cmd: CmdNone}, nil
}

// NewLeave builds a RADIO/DISH LEAVE command for the given group.
func NewLeave(group string) (Message, error) {
	g, err := NewGroup(group)
	if err != nil {
		return Message{}, err
	}
	return Message{kind: KindLeave, group: g, flags: FlagCommand, cmd: CmdNone}, nil
}

// NewCommand builds a COMMAND frame of the given sub-kind, e.g. PING,
// PONG, SUBSCRIBE, CANCEL. body is the command payload exactly as it
// appears after the command name on the wire (spec.md §6).
func NewCommand(c CommandType, body []byte) Message {
	m := NewInline(body)
	m.flags |= FlagCommand
	m.cmd = c
	return m
}

// Kind returns the message's discriminant.
func (m Message) Kind() Kind { return m.kind }

// Data returns the payload view. Valid until Close is called.
func (m Message) Data() []byte { return m.data }

// Size returns len(Data()).
func (m Message) Size() int { return len(m.data) }

// Flags returns the current flag bitmask.
func (m Message) Flags() Flag { return m.flags }

// SetFlags replaces the flag bitmask.
func (m *Message) SetFlags(f Flag) { m.flags = f }

// AddFlags ORs additional bits into the flag bitmask.
func (m *Message) AddFlags(f Flag) { m.flags |= f }

// More reports whether the MORE flag is set.
func (m Message) More() bool { return m.flags.Has(FlagMore) }

// SetMore sets or clears the MORE flag.
func (m *Message) SetMore(more bool) {
	if more {
		m.flags |= FlagMore
	} else {
		m.flags &^= FlagMore
	}
}

// IsCommand reports whether the COMMAND flag is set.
func (m Message) IsCommand() bool { return m.flags.Has(FlagCommand) }

// CommandType returns the command sub-kind (meaningless unless IsCommand()).
func (m Message) CommandType() CommandType { return m.cmd }

func (m Message) IsPing() bool      { return m.IsCommand() && m.cmd == CmdPing }
func (m Message) IsPong() bool      { return m.IsCommand() && m.cmd == CmdPong }
func (m Message) IsSubscribe() bool { return m.IsCommand() && m.cmd == CmdSubscribe }
func (m Message) IsCancel() bool    { return m.IsCommand() && m.cmd == CmdCancel }
func (m Message) IsCloseCmd() bool  { return m.IsCommand() && m.cmd == CmdClose }

// IsDelimiter reports whether this is the empty envelope delimiter.
func (m Message) IsDelimiter() bool { return m.kind == KindDelimiter }

// IsJoin/IsLeave report RADIO/DISH group membership commands.
func (m Message) IsJoin() bool  { return m.kind == KindJoin }
func (m Message) IsLeave() bool { return m.kind == KindLeave }

// Group returns the group name carried by a JOIN/LEAVE message, or the
// group prepended by the RADIO session layer to a data message.
func (m Message) Group() Group { return m.group }

// SetGroup attaches a group name (used by the RADIO session layer when
// prepending the group frame, spec.md §6 "RADIO/DISH").
func (m *Message) SetGroup(g Group) { m.group = g }

// RoutingID returns the routing-id associated with this message, set by
// ROUTER/STREAM/SERVER sockets so the pattern layer can label frames
// without a side channel.
func (m Message) RoutingID() uint32 { return m.routingID }

func (m *Message) SetRoutingID(id uint32) {
	m.routingID = id
	m.flags |= FlagRoutingID
}

// Shared reports whether this message's buffer is refcounted.
func (m Message) Shared() bool { return m.flags.Has(FlagShared) || m.refs != nil }

// Dup returns a new Message sharing the same underlying buffer as m,
// incrementing the refcount for long/zero-copy kinds. Inline/const/
// delimiter messages are copied by value (the slice header is shared,
// data is never mutated in place by any codec so this is safe).
func (m Message) Dup() Message {
	d := m
	d.group = m.group.dup()
	if m.refs != nil {
		m.refs.Store(m.refs.Load() + 1)
		d.flags |= FlagShared
	}
	return d
}

// Close releases the message. For long/zero-copy kinds, the refcount is
// decremented and, once it reaches zero, FreeFunc is invoked exactly
// once with the original hint (spec.md §9 "Decoder arena zero-copy").
func (m *Message) Close() error {
	if m.closed {
		return ErrorAlreadyClosed.Error()
	}
	m.closed = true
	if m.refs == nil {
		return nil
	}
	left := m.refs.Load() - 1
	m.refs.Store(left)
	if left <= 0 && m.free != nil {
		m.free(m.data, m.hint)
	}
	return nil
}

// RefCount returns the current refcount for long/zero-copy kinds, or 1
// for any other kind (they are always uniquely owned).
func (m Message) RefCount() int32 {
	if m.refs == nil {
		return 1
	}
	return m.refs.Load()
}
