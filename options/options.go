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

// Package options holds the Options struct recognized by the core
// (spec.md §6 "External interfaces / Options"), decoded by config/zmtp
// from viper and validated with go-playground/validator/v10 struct
// tags, the same pattern the teacher's config/components packages use
// for their own option structs.
package options

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github/sabouaram/zmtpcore/duration"
)

// Options bundles every tunable spec.md §6 names. Socket-pattern code
// reads through this struct rather than taking loose parameters, so a
// new option only needs to be added here and in config/zmtp's mapping.
type Options struct {
	// Pipe bounds (spec.md §4.4).
	SndHWM int `mapstructure:"snd_hwm" validate:"gte=0"`
	RcvHWM int `mapstructure:"rcv_hwm" validate:"gte=0"`

	// Caller-visible wait bounds; 0 means block forever, negative means
	// return Again immediately.
	SndTimeo time.Duration `mapstructure:"snd_timeo"`
	RcvTimeo time.Duration `mapstructure:"rcv_timeo"`

	// Linger bounds how long Term keeps draining a pipe before dropping
	// it (spec.md §4.4 "Termination", §5 three-phase term).
	Linger duration.Duration `mapstructure:"linger" validate:"gte=0"`

	// Reconnect policy (spec.md §4.6 "Reconnect").
	ReconnectIvl        duration.Duration `mapstructure:"reconnect_ivl" validate:"gte=0"`
	ReconnectIvlMax     duration.Duration `mapstructure:"reconnect_ivl_max" validate:"gtefield=ReconnectIvl"`
	ReconnectStopOnRefused bool           `mapstructure:"reconnect_stop_conn_refused"`

	// Handshake + heartbeat (spec.md §4.2, §4.6).
	HandshakeIvl      duration.Duration `mapstructure:"handshake_ivl" validate:"gte=0"`
	HeartbeatIvl      duration.Duration `mapstructure:"heartbeat_ivl" validate:"gte=0"`
	HeartbeatTimeout  duration.Duration `mapstructure:"heartbeat_timeout" validate:"gte=0"`
	HeartbeatTTL      duration.Duration `mapstructure:"heartbeat_ttl" validate:"gte=0"`
	ConnectTimeout    duration.Duration `mapstructure:"connect_timeout" validate:"gte=0"`

	MaxMsgSize int64 `mapstructure:"maxmsgsize"`

	IPv6      bool `mapstructure:"ipv6"`
	Immediate bool `mapstructure:"immediate"`
	Conflate  bool `mapstructure:"conflate"`

	// PUB/SUB/XPUB/XSUB (spec.md §4.3).
	InvertMatching        bool `mapstructure:"invert_matching"`
	XPubVerboseUnsubscribe bool `mapstructure:"xpub_verbose_unsubscribe"`
	OnlyFirstSubscribe    bool `mapstructure:"only_first_subscribe"`

	// ROUTER (spec.md §4.3 "ROUTER routing-id assignment").
	RouterMandatory bool `mapstructure:"router_mandatory"`
	RouterHandover  bool `mapstructure:"router_handover"`
	RouterNotify    bool `mapstructure:"router_notify"`
	RouterRaw       bool `mapstructure:"router_raw"`
	ProbeRouter     bool `mapstructure:"probe_router"`

	// STREAM (spec.md §4.3).
	StreamNotify bool `mapstructure:"stream_notify"`

	// PLAIN mechanism (spec.md §4.5).
	PlainServer   bool   `mapstructure:"plain_server"`
	PlainUsername string `mapstructure:"plain_username"`
	PlainPassword string `mapstructure:"plain_password" validate:"required_with=PlainUsername"`

	// CURVE mechanism; keys are raw 32-byte values, base64 in config.
	CurveServer     bool   `mapstructure:"curve_server"`
	CurvePublicKey  []byte `mapstructure:"curve_public_key" validate:"omitempty,len=32"`
	CurveSecretKey  []byte `mapstructure:"curve_secret_key" validate:"omitempty,len=32"`
	CurveServerKey  []byte `mapstructure:"curve_server_key" validate:"omitempty,len=32"`

	// ZAP (spec.md §4.5 "ZAP").
	ZapDomain       string `mapstructure:"zap_domain"`
	ZapEnforceDomain bool  `mapstructure:"zap_enforce_domain"`

	InBatchSize  int `mapstructure:"in_batch_size" validate:"gte=0"`
	OutBatchSize int `mapstructure:"out_batch_size" validate:"gte=0"`

	TCPKeepAlive     int           `mapstructure:"tcp_keepalive"`
	TCPKeepAliveIdle duration.Duration `mapstructure:"tcp_keepalive_idle"`
	TCPMaxRT         duration.Duration `mapstructure:"tcp_maxrt"`

	MulticastHops int    `mapstructure:"multicast_hops" validate:"gte=0"`
	MulticastLoop bool   `mapstructure:"multicast_loop"`

	RoutingID []byte `mapstructure:"routing_id" validate:"omitempty,max=255"`

	HelloMsg      []byte `mapstructure:"hello_msg"`
	DisconnectMsg []byte `mapstructure:"disconnect_msg"`
	HiccupMsg     []byte `mapstructure:"hiccup_msg"`

	Metadata map[string]string `mapstructure:"metadata"`
}

// Default returns the zero-config Options with libzmq's usual defaults
// (1000-message HWM, no heartbeat, 100ms/5s reconnect backoff), mirroring
// the field defaults original_source/src/options.rs assigns in options_t's
// constructor.
func Default() Options {
	return Options{
		SndHWM:          1000,
		RcvHWM:          1000,
		Linger:          duration.Duration(30 * time.Second),
		ReconnectIvl:    duration.Duration(100 * time.Millisecond),
		ReconnectIvlMax: duration.Duration(0),
		HandshakeIvl:    duration.Duration(30 * time.Second),
		MaxMsgSize:      -1,
		InBatchSize:     8192,
		OutBatchSize:    8192,
	}
}

var validate = validator.New()

// Validate runs the struct tags above, returning ErrorValidation wrapping
// validator's field-level errors on failure.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return ErrorValidation.Error(err)
	}
	return nil
}
