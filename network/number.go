/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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

// Package network carries the small numeric/formatting helpers used to
// report pipe and engine I/O counters (spec.md §5 "Pipe", §7 "I/O
// reactor"): decimal (Number) vs binary (Bytes) unit formatting and the
// Stats label enum used by monitor/debug surfaces.
package network

import (
	"fmt"
	"sort"
)

// Number is a count formatted with decimal (SI, base-1000) unit suffixes.
type Number uint64

// Bytes is a byte count formatted with binary (base-1024) unit suffixes.
type Bytes uint64

func (n Number) String() string    { return fmt.Sprintf("%d", uint64(n)) }
func (n Number) AsBytes() Bytes    { return Bytes(n) }
func (n Number) AsUint64() uint64  { return uint64(n) }
func (n Number) AsFloat64() float64 { return float64(n) }

func (b Bytes) String() string     { return fmt.Sprintf("%d", uint64(b)) }
func (b Bytes) AsNumber() Number   { return Number(b) }
func (b Bytes) AsUint64() uint64   { return uint64(b) }
func (b Bytes) AsFloat64() float64 { return float64(b) }

var decimalUnits = []string{"", "K", "M", "G", "T", "P"}
var binaryUnits = []string{"", "KB", "MB", "GB", "TB", "PB"}

func formatUnit(v float64, base float64, units []string, precision int, forceFloat bool) string {
	idx := 0
	for v >= base && idx < len(units)-1 {
		v /= base
		idx++
	}
	if idx == 0 {
		if forceFloat {
			return fmt.Sprintf("%.*f", precision, v)
		}
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.*f%s", precision, v, units[idx])
}

// FormatUnitInt formats n with decimal unit suffixes and no decimals.
func (n Number) FormatUnitInt() string { return formatUnit(float64(n), 1000, decimalUnits, 0, false) }

// FormatUnitFloat formats n with decimal unit suffixes at the given precision.
func (n Number) FormatUnitFloat(precision int) string {
	return formatUnit(float64(n), 1000, decimalUnits, precision, true)
}

// FormatUnitInt formats b with binary unit suffixes and no decimals.
func (b Bytes) FormatUnitInt() string { return formatUnit(float64(b), 1024, binaryUnits, 0, false) }

// FormatUnitFloat formats b with binary unit suffixes at the given precision.
func (b Bytes) FormatUnitFloat(precision int) string {
	return formatUnit(float64(b), 1024, binaryUnits, precision, true)
}

// Stats labels a counter kind for display/monitoring.
type Stats uint8

const (
	StatBytes Stats = iota + 1
	StatPackets
	StatFifo
	StatDrop
	StatErr
)

func (s Stats) String() string {
	switch s {
	case StatBytes:
		return "Traffic"
	case StatPackets:
		return "Packets"
	case StatFifo:
		return "Fifo"
	case StatDrop:
		return "Drop"
	case StatErr:
		return "Error"
	}
	return ""
}

// FormatUnitInt formats n using the unit convention appropriate for s
// (binary for StatBytes, decimal otherwise), no decimal places.
func (s Stats) FormatUnitInt(n Number) string {
	if s == 0 || s > StatErr {
		return ""
	}
	if s == StatBytes {
		return n.AsBytes().FormatUnitInt()
	}
	return n.FormatUnitInt()
}

// FormatUnitFloat formats n using the unit convention appropriate for s
// at the given decimal precision.
func (s Stats) FormatUnitFloat(n Number, precision int) string {
	if s == 0 || s > StatErr {
		return ""
	}
	if s == StatBytes {
		return n.AsBytes().FormatUnitFloat(precision)
	}
	return n.FormatUnitFloat(precision)
}

// FormatUnit formats n at a default precision of 2 for StatBytes, and
// as a plain integer otherwise.
func (s Stats) FormatUnit(n Number) string {
	if s == 0 || s > StatErr {
		return ""
	}
	if s == StatBytes {
		return s.FormatUnitFloat(n, 2)
	}
	return s.FormatUnitInt(n)
}

// FormatLabelUnit returns "<Label>: <value>".
func (s Stats) FormatLabelUnit(n Number) string {
	if s == 0 || s > StatErr {
		return ""
	}
	return fmt.Sprintf("%s: %s", s.String(), s.FormatUnit(n))
}

// FormatLabelUnitPadded returns FormatLabelUnit with the label padded to
// a fixed width so a column of mixed stat lines aligns.
func (s Stats) FormatLabelUnitPadded(n Number) string {
	if s == 0 || s > StatErr {
		return ""
	}
	return fmt.Sprintf("%-8s%s", s.String()+":", s.FormatUnit(n))
}

// ListStatsSort returns every Stats value as int, ascending.
func ListStatsSort() []int {
	l := []int{int(StatBytes), int(StatPackets), int(StatFifo), int(StatDrop), int(StatErr)}
	sort.Ints(l)
	return l
}
