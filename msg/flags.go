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

// Package msg defines the tagged message value shared by every codec,
// pipe, mechanism and socket pattern in this module.
package msg

// Flag is a bitmask of independent, combinable message attributes.
//
// PING/PONG/SUBSCRIBE/CANCEL/CLOSE_CMD are NOT bits here: in the wire
// protocol they are mutually-exclusive sub-kinds of a COMMAND frame, so
// they are modeled as the separate CommandType enum instead of flag bits
// that could (incorrectly) be OR'd together. See DESIGN.md.
type Flag uint16

const (
	FlagMore Flag = 1 << iota
	FlagCommand
	FlagCredential
	FlagRoutingID
	FlagShared
)

func (f Flag) Has(o Flag) bool { return f&o != 0 }

// CommandType enumerates the command-frame sub-kinds. Only meaningful
// when Flag.Has(FlagCommand) is true.
type CommandType uint8

const (
	CmdNone CommandType = iota
	CmdPing
	CmdPong
	CmdSubscribe
	CmdCancel
	CmdClose
)

func (c CommandType) String() string {
	switch c {
	case CmdPing:
		return "PING"
	case CmdPong:
		return "PONG"
	case CmdSubscribe:
		return "SUBSCRIBE"
	case CmdCancel:
		return "CANCEL"
	case CmdClose:
		return "CLOSE"
	default:
		return ""
	}
}

// Kind is the discriminant of the tagged Message value.
type Kind uint8

const (
	// KindEmpty is the zero value: no payload, no flags.
	KindEmpty Kind = iota
	// KindInline carries a short payload copied into the Message itself.
	KindInline
	// KindLong carries a pointer to an owned, refcounted heap buffer.
	KindLong
	// KindConst carries a pointer to caller memory the Message does not own.
	KindConst
	// KindZeroCopy carries a pointer into a decoder arena (refcounted there).
	KindZeroCopy
	// KindDelimiter is the empty frame used by REQ/REP envelopes.
	KindDelimiter
	// KindJoin is a RADIO/DISH JOIN command carrying a group name.
	KindJoin
	// KindLeave is a RADIO/DISH LEAVE command carrying a group name.
	KindLeave
)

// InlineThreshold is the size, in bytes, below which a payload is always
// copied inline rather than being shared or zero-copied (spec.md §4.1,
// "Zero-copy path").
const InlineThreshold = 64
