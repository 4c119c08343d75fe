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

package zsocket

import "github/sabouaram/zmtpcore/errors"

// Error taxonomy for pattern-level misuse, distinct from the connection-
// fatal errors engines/mechanisms raise (spec.md §7 "SocketError").
const (
	ErrorAgain errors.CodeError = iota + errors.MinPkgZSocket
	ErrorWrongState
	ErrorTooManyPeers
	ErrorRoutingIDRejected
	ErrorNoRoute
	ErrorNotSupported
)

var isCodeError = false

func IsCodeError() bool { return isCodeError }

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorAgain)
	errors.RegisterIdFctMessage(ErrorAgain, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorAgain:
		return "zsocket: operation would block"
	case ErrorWrongState:
		return "zsocket: call not valid in the pattern's current state"
	case ErrorTooManyPeers:
		return "zsocket: pattern does not accept another peer"
	case ErrorRoutingIDRejected:
		return "zsocket: duplicate routing id rejected (handover disabled)"
	case ErrorNoRoute:
		return "zsocket: no pipe for the given routing id"
	case ErrorNotSupported:
		return "zsocket: operation not supported by this socket type"
	}
	return ""
}
