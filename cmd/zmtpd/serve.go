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

package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	spfcbr "github.com/spf13/cobra"
	spfvpr "github.com/spf13/viper"

	zmtpconfig "github/sabouaram/zmtpcore/config/zmtp"
	"github/sabouaram/zmtpcore/engine"
	"github/sabouaram/zmtpcore/greeting"
	"github/sabouaram/zmtpcore/pipe"
	"github/sabouaram/zmtpcore/session"
	"github/sabouaram/zmtpcore/transport"
	"github/sabouaram/zmtpcore/zctx"
	"github/sabouaram/zmtpcore/zsocket"
)

var socketTypes = map[string]zsocket.Type{
	"pair":   zsocket.Pair,
	"pub":    zsocket.Pub,
	"sub":    zsocket.Sub,
	"xpub":   zsocket.XPub,
	"xsub":   zsocket.XSub,
	"req":    zsocket.Req,
	"rep":    zsocket.Rep,
	"dealer": zsocket.Dealer,
	"router": zsocket.Router,
	"push":   zsocket.Push,
	"pull":   zsocket.Pull,
	"stream": zsocket.Stream,
	"radio":  zsocket.Radio,
	"dish":   zsocket.Dish,
	"client": zsocket.Client,
	"server": zsocket.Server,
	"peer":   zsocket.Peer,
}

func newServeCommand(vpr *spfvpr.Viper) *spfcbr.Command {
	return &spfcbr.Command{
		Use:   "serve",
		Short: "bind or connect one ZMTP socket and keep it running until signalled",
		RunE: func(cmd *spfcbr.Command, args []string) error {
			return runServe(cmd.Context(), vpr)
		},
	}
}

func runServe(parent context.Context, vpr *spfvpr.Viper) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts, err := zmtpconfig.Load(vpr, zmtpconfig.DefaultKey)
	if err != nil {
		return fmt.Errorf("zmtpd: loading options: %w", err)
	}

	typName := strings.ToLower(vpr.GetString("zmtp.socket-type"))
	typ, ok := socketTypes[typName]
	if !ok {
		return fmt.Errorf("zmtpd: unknown socket type %q", typName)
	}

	ep, err := transport.Parse(vpr.GetString("zmtp.endpoint"))
	if err != nil {
		return fmt.Errorf("zmtpd: %w", err)
	}

	if addr := vpr.GetString("metrics.listen"); addr != "" {
		srv := newMetricsServer(addr, zctxMetricsRegistry)
		go func() {
			_ = srv.ListenAndServe()
		}()
		defer srv.Close()
	}

	zc := zctx.New(zctx.Config{IOThreads: 1})
	defer zc.Term(time.Second)

	sock, err := zc.Socket(typ, opts)
	if err != nil {
		return err
	}

	engCfg := engine.Config{
		Local: greeting.Local{Version: greeting.V3_1, Mechanism: "NULL"},
		Heartbeat: engine.Heartbeat{
			Interval: time.Duration(opts.HeartbeatIvl),
			Timeout:  time.Duration(opts.HeartbeatTimeout),
			TTL:      time.Duration(opts.HeartbeatTTL),
		},
	}
	sessCfg := session.Config{Engine: engCfg}
	if typ == zsocket.Radio {
		sessCfg.Framing = session.FramingRadio
	} else if typ == zsocket.Dish {
		sessCfg.Framing = session.FramingDish
	}

	if vpr.GetBool("zmtp.listen") {
		return serveListener(ctx, zc, sock, ep, sessCfg)
	}
	rc := &session.Reconnector{
		Endpoint:       ep,
		ConnectTimeout: time.Duration(opts.ConnectTimeout),
		Backoff:        session.NewBackoff(time.Duration(opts.ReconnectIvl), time.Duration(opts.ReconnectIvlMax)),
		StopOnRefused:  opts.ReconnectStopOnRefused,
		SessionConfig:  sessCfg,
	}
	return rc.Run(ctx, func(appSide *pipe.Endpoint) {
		_ = sock.Attach(appSide)
	})
}

func serveListener(ctx context.Context, zc *zctx.Context, sock *zsocket.Socket, ep transport.Endpoint, cfg session.Config) error {
	ln, err := transport.Listen(ctx, ep)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		sess, appSide := session.New(conn, cfg)
		if err := sock.Attach(appSide); err != nil {
			_ = conn.Close()
			continue
		}
		zc.Go(func(ctx context.Context) error { return sess.Run(ctx) })
	}
}

var zctxMetricsRegistry = prometheus.NewRegistry()

func newMetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	r := gin.New()
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	return &http.Server{Addr: addr, Handler: r}
}
