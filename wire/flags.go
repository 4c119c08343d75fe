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

// Package wire holds the on-the-wire frame constants shared by every
// ZMTP codec generation (spec.md §4, "Framing"). Version-specific
// encoders/decoders live in the zmtp1, zmtp2 and zmtp3 subpackages; the
// zero-copy receive arena lives in the arena subpackage.
package wire

// Protocol-level frame flag bits, identical across ZMTP 2.0, 3.0 and 3.1.
const (
	FlagMore    byte = 0x1
	FlagLarge   byte = 0x2
	FlagCommand byte = 0x4
)

// DefaultMaxMsgSize is used when an engine's Options does not set one
// (spec.md §6, "maxMsgSize").
const DefaultMaxMsgSize int64 = -1

// SubscribeCmdName and CancelCmdName are the ZMTP 3.1 command names
// prepended, as a Pascal string, to the body of SUBSCRIBE/CANCEL command
// frames (spec.md §4.2, "ZMTP 3.1 command encoding").
const (
	SubscribeCmdName = "SUBSCRIBE"
	CancelCmdName    = "CANCEL"
)
