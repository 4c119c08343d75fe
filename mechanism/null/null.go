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

// Package null implements the NULL security mechanism: no
// authentication, a single READY command exchanged in each direction
// carrying socket-type metadata (spec.md §6, "NULL"; grounded on
// null_mechanism.rs).
package null

import (
	"github/sabouaram/zmtpcore/mechanism"
	"github/sabouaram/zmtpcore/msg"
)

// Mechanism implements mechanism.Mechanism with no authentication.
type Mechanism struct {
	Metadata map[string]string // e.g. "Socket-Type", "Identity"

	sent     bool
	received bool
	peerMeta map[string]string
}

func New(metadata map[string]string) *Mechanism {
	return &Mechanism{Metadata: metadata}
}

func (*Mechanism) Name() string { return "NULL" }

func (m *Mechanism) NextHandshakeCommand() (msg.Message, bool, error) {
	if m.sent {
		return msg.Message{}, false, nil
	}
	m.sent = true
	return msg.NewCommand(msg.CmdNone, mechanism.EncodeMetadata(m.Metadata)), true, nil
}

func (m *Mechanism) ProcessHandshakeCommand(frame msg.Message) error {
	meta, err := mechanism.DecodeMetadata(frame.Data())
	if err != nil {
		return err
	}
	m.peerMeta = meta
	m.received = true
	return nil
}

func (m *Mechanism) Status() mechanism.Status {
	if m.sent && m.received {
		return mechanism.StatusReady
	}
	return mechanism.StatusHandshaking
}

func (*Mechanism) Encode(m msg.Message) (msg.Message, error) { return m, nil }
func (*Mechanism) Decode(m msg.Message) (msg.Message, error) { return m, nil }

// PeerUserID is always empty for NULL: there is no authenticated identity.
func (*Mechanism) PeerUserID() []byte { return nil }

// PeerMetadata returns the property map received in the peer's READY command.
func (m *Mechanism) PeerMetadata() map[string]string { return m.peerMeta }
