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

// Package plain implements the PLAIN security mechanism: a username and
// password exchanged in cleartext (spec.md §6, "PLAIN"), authenticated
// either locally or by delegating to a ZAP handler. Grounded on
// plain_client.rs for the HELLO/WELCOME/ERROR/READY command sequence.
package plain

import (
	"github/sabouaram/zmtpcore/mechanism"
	"github/sabouaram/zmtpcore/msg"
)

// Authenticator validates PLAIN credentials, e.g. by delegating to a
// ZAP handler. A nil Authenticator on the server side accepts everyone.
type Authenticator interface {
	Authenticate(username, password string) (userID string, ok bool)
}

type step int

const (
	stepHello step = iota
	stepWelcome
	stepReady
	stepDone
	stepFailed
)

// Mechanism implements mechanism.Mechanism for both the client
// (sends HELLO, expects WELCOME then READY) and server (expects HELLO,
// sends WELCOME/ERROR then READY) roles.
type Mechanism struct {
	AsServer bool
	Username string
	Password string
	Auth     Authenticator
	Metadata map[string]string

	step     step
	peerMeta map[string]string
	userID   string
}

func NewClient(username, password string, metadata map[string]string) *Mechanism {
	return &Mechanism{Username: username, Password: password, Metadata: metadata}
}

func NewServer(auth Authenticator, metadata map[string]string) *Mechanism {
	return &Mechanism{AsServer: true, Auth: auth, Metadata: metadata}
}

func (*Mechanism) Name() string { return "PLAIN" }

func (m *Mechanism) NextHandshakeCommand() (msg.Message, bool, error) {
	if m.AsServer {
		switch m.step {
		case stepWelcome:
			m.step = stepReady
			return msg.NewCommand(msg.CmdNone, []byte("WELCOME")), true, nil
		case stepReady:
			m.step = stepDone
			return msg.NewCommand(msg.CmdNone, append([]byte("READY"), mechanism.EncodeMetadata(m.Metadata)...)), true, nil
		}
		return msg.Message{}, false, nil
	}

	switch m.step {
	case stepHello:
		m.step = stepWelcome
		return msg.NewCommand(msg.CmdNone, encodeHello(m.Username, m.Password)), true, nil
	}
	return msg.Message{}, false, nil
}

func (m *Mechanism) ProcessHandshakeCommand(frame msg.Message) error {
	body := frame.Data()

	if m.AsServer {
		username, password, err := decodeHello(body)
		if err != nil {
			return err
		}
		if m.Auth == nil {
			m.step = stepWelcome
			return nil
		}
		userID, ok := m.Auth.Authenticate(username, password)
		if !ok {
			m.step = stepFailed
			return ErrorAuthFailed.Error()
		}
		m.userID = userID
		m.step = stepWelcome
		return nil
	}

	switch {
	case string(body) == "WELCOME":
		m.step = stepReady
	default:
		meta, err := mechanism.DecodeMetadata(body[min(len(body), 5):])
		if err == nil {
			m.peerMeta = meta
		}
		m.step = stepDone
	}
	return nil
}

func (m *Mechanism) Status() mechanism.Status {
	switch m.step {
	case stepDone:
		return mechanism.StatusReady
	case stepFailed:
		return mechanism.StatusError
	default:
		return mechanism.StatusHandshaking
	}
}

func (*Mechanism) Encode(m msg.Message) (msg.Message, error) { return m, nil }
func (*Mechanism) Decode(m msg.Message) (msg.Message, error) { return m, nil }

func (m *Mechanism) PeerUserID() []byte { return []byte(m.userID) }

func (m *Mechanism) PeerMetadata() map[string]string { return m.peerMeta }

func encodeHello(username, password string) []byte {
	out := append([]byte("HELLO"), byte(len(username)))
	out = append(out, username...)
	out = append(out, byte(len(password)))
	return append(out, password...)
}

func decodeHello(body []byte) (username, password string, err error) {
	if len(body) < 6 || string(body[:5]) != "HELLO" {
		return "", "", ErrorMalformedHello.Error()
	}
	i := 5
	ul := int(body[i])
	i++
	if i+ul > len(body) {
		return "", "", ErrorMalformedHello.Error()
	}
	username = string(body[i : i+ul])
	i += ul
	if i >= len(body) {
		return "", "", ErrorMalformedHello.Error()
	}
	pl := int(body[i])
	i++
	if i+pl > len(body) {
		return "", "", ErrorMalformedHello.Error()
	}
	password = string(body[i : i+pl])
	return username, password, nil
}

