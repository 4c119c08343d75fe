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

// Package zap implements the ZAP (ZMQ Authentication Protocol) 7-frame
// request/reply exchange a mechanism uses to delegate credential
// checks to an external handler (spec.md §6, "ZAP delegation"; grounded
// on zap_client.rs).
package zap

import (
	"github/sabouaram/zmtpcore/mechanism"
	"github/sabouaram/zmtpcore/msg"
)

const (
	version   = "1.0"
	requestID = "1"
)

// Request is the 7-frame ZAP request sent to a handler bound on
// "inproc://zeromq.zap.01": delimiter, version, request-id, domain,
// address, identity, mechanism, followed by zero or more credential
// frames.
type Request struct {
	Domain      string
	Address     string
	Identity    []byte
	Mechanism   string
	Credentials [][]byte
}

// Encode renders the request as wire frames, each flagged More except
// the last.
func (r Request) Encode() []msg.Message {
	frames := []msg.Message{
		msg.NewEmpty(),
		msg.NewInline([]byte(version)),
		msg.NewInline([]byte(requestID)),
		msg.NewInline([]byte(r.Domain)),
		msg.NewInline([]byte(r.Address)),
		msg.NewInline(r.Identity),
		msg.NewInline([]byte(r.Mechanism)),
	}
	frames = append(frames, credentialFrames(r.Credentials)...)
	for i := range frames {
		if i < len(frames)-1 {
			frames[i].AddFlags(msg.FlagMore)
		}
	}
	return frames
}

func credentialFrames(creds [][]byte) []msg.Message {
	out := make([]msg.Message, len(creds))
	for i, c := range creds {
		out[i] = msg.NewInline(c)
	}
	return out
}

// StatusCode is the 3-digit ZAP reply status (200 OK, 300 temporary
// error, 400 authentication failure, 500 internal error).
type StatusCode int

const (
	StatusOK               StatusCode = 200
	StatusTemporaryError   StatusCode = 300
	StatusAuthFailed       StatusCode = 400
	StatusInternalError    StatusCode = 500
)

// Reply is the parsed 7-frame ZAP reply.
type Reply struct {
	StatusCode StatusCode
	StatusText string
	UserID     []byte
	Metadata   map[string]string
}

// DecodeReply parses the 7 frames of a ZAP reply in order: delimiter,
// version, request-id, status-code, status-text, user-id, metadata.
func DecodeReply(frames []msg.Message) (Reply, error) {
	if len(frames) != 7 {
		return Reply{}, ErrorMalformedReply.Error()
	}
	if frames[0].Size() != 0 {
		return Reply{}, ErrorMalformedReply.Error()
	}
	if string(frames[1].Data()) != version {
		return Reply{}, ErrorBadVersion.Error()
	}
	if string(frames[2].Data()) != requestID {
		return Reply{}, ErrorBadRequestID.Error()
	}
	code := frames[3].Data()
	if len(code) != 3 || code[0] < '2' || code[0] > '5' || code[1] != '0' || code[2] != '0' {
		return Reply{}, ErrorInvalidStatusCode.Error()
	}
	meta, err := decodeMetadataLoose(frames[6].Data())
	if err != nil {
		return Reply{}, ErrorInvalidMetadata.Error()
	}
	return Reply{
		StatusCode: StatusCode((code[0] - '0') * 100),
		StatusText: string(frames[4].Data()),
		UserID:     append([]byte(nil), frames[5].Data()...),
		Metadata:   meta,
	}, nil
}

func decodeMetadataLoose(data []byte) (map[string]string, error) {
	if len(data) == 0 {
		return map[string]string{}, nil
	}
	return mechanism.DecodeMetadata(data)
}
