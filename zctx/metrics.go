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

package zctx

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the Prometheus gauges a Context exposes, per SPEC_FULL
// §11's wiring of prometheus/client_golang into zctx/reactor/cmd/zmtpd.
// Each Context gets its own, so creating several in one process (tests,
// multi-tenant embedding) never collides on a shared default registry.
type Metrics struct {
	sockets  prometheus.Gauge
	ioActive prometheus.Gauge
	ioQueued prometheus.Gauge
}

// NewMetrics builds a Metrics set and, if reg is non-nil, registers it.
// A nil registry is valid for tests or callers that don't expose a
// metrics endpoint (cmd/zmtpd registers one via its own *prometheus.Registry).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sockets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "zmtp", Subsystem: "ctx", Name: "sockets",
			Help: "Number of sockets currently registered with the context.",
		}),
		ioActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "zmtp", Subsystem: "ctx", Name: "io_threads_active",
			Help: "Number of I/O-thread goroutine slots currently in use.",
		}),
		ioQueued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "zmtp", Subsystem: "ctx", Name: "io_threads_queued",
			Help: "Number of Go() calls waiting for a free I/O-thread slot.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.sockets, m.ioActive, m.ioQueued)
	}
	return m
}
