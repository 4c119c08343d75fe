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

// Package gssapi implements only the GSSAPI command exchange: a
// back-and-forth of opaque INITIATE tokens until the underlying
// security context is established, followed by per-message MESSAGE
// tokens (spec.md §6, "GSSAPI"). The actual GSSAPI/Kerberos context
// mechanics (gss_init_sec_context, gss_wrap/gss_unwrap) are an
// external collaborator consumed through the TokenProvider interface
// below, per spec.md's explicit scope boundary excluding cryptographic
// primitive implementations. Grounded on gssapi_mechanism_base.rs for
// the INITIATE/MESSAGE command shape and the continue-vs-done loop.
package gssapi

import (
	"github/sabouaram/zmtpcore/mechanism"
	"github/sabouaram/zmtpcore/msg"
)

// TokenProvider performs the actual GSSAPI context negotiation and
// per-message wrap/unwrap. A real deployment backs this with a
// cgo binding to libgssapi or a pure-Go Kerberos client; neither
// ships in this module.
type TokenProvider interface {
	// Init advances context establishment given the peer's last token
	// (nil on the first call for the initiator). Returns the next
	// token to send, and done=true once the context is established.
	Init(peerToken []byte) (token []byte, done bool, err error)

	// Wrap/Unwrap protect a single message once the context is ready.
	Wrap(plaintext []byte) ([]byte, error)
	Unwrap(wrapped []byte) ([]byte, error)

	PeerPrincipal() string
}

type step int

const (
	stepInitiate step = iota
	stepDone
	stepFailed
)

// Mechanism implements mechanism.Mechanism by driving a TokenProvider
// through the INITIATE command exchange.
type Mechanism struct {
	Provider TokenProvider

	step     step
	pending  []byte
	haveSend bool
}

func New(provider TokenProvider) *Mechanism {
	m := &Mechanism{Provider: provider}
	tok, done, err := provider.Init(nil)
	if err == nil {
		m.pending = tok
		m.haveSend = true
		if done {
			m.step = stepDone
		}
	} else {
		m.step = stepFailed
	}
	return m
}

func (*Mechanism) Name() string { return "GSSAPI" }

func (m *Mechanism) NextHandshakeCommand() (msg.Message, bool, error) {
	if !m.haveSend {
		return msg.Message{}, false, nil
	}
	m.haveSend = false
	return msg.NewCommand(msg.CmdNone, append([]byte("INITIATE"), m.pending...)), true, nil
}

func (m *Mechanism) ProcessHandshakeCommand(frame msg.Message) error {
	body := frame.Data()
	if len(body) < 8 || string(body[:8]) != "INITIATE" {
		m.step = stepFailed
		return ErrorMalformedCommand.Error()
	}
	tok, done, err := m.Provider.Init(body[8:])
	if err != nil {
		m.step = stepFailed
		return err
	}
	if done {
		m.step = stepDone
		return nil
	}
	m.pending = tok
	m.haveSend = true
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

func (m *Mechanism) Encode(msgIn msg.Message) (msg.Message, error) {
	wrapped, err := m.Provider.Wrap(msgIn.Data())
	if err != nil {
		return msg.Message{}, err
	}
	out := msg.NewInline(wrapped)
	out.SetFlags(msgIn.Flags())
	return out, nil
}

func (m *Mechanism) Decode(msgIn msg.Message) (msg.Message, error) {
	plain, err := m.Provider.Unwrap(msgIn.Data())
	if err != nil {
		return msg.Message{}, err
	}
	out := msg.NewInline(plain)
	out.SetFlags(msgIn.Flags())
	return out, nil
}

func (m *Mechanism) PeerUserID() []byte { return []byte(m.Provider.PeerPrincipal()) }
