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

package mechanism

import (
	"encoding/binary"
	"github/sabouaram/zmtpcore/errors"
)

const (
	ErrorMetadataTruncated errors.CodeError = iota + errors.MinPkgMechanism
)

var isCodeError = false

func IsCodeError() bool { return isCodeError }

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorMetadataTruncated)
	errors.RegisterIdFctMessage(ErrorMetadataTruncated, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorMetadataTruncated:
		return "mechanism: truncated property metadata"
	}
	return ""
}

// EncodeMetadata serializes name/value properties using the ZMTP
// command-metadata encoding: repeated (1-byte name length, name,
// 4-byte big-endian value length, value) (spec.md §6, "READY command").
func EncodeMetadata(props map[string]string) []byte {
	var out []byte
	for k, v := range props {
		out = append(out, byte(len(k)))
		out = append(out, k...)
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(v)))
		out = append(out, n[:]...)
		out = append(out, v...)
	}
	return out
}

// DecodeMetadata parses bytes produced by EncodeMetadata.
func DecodeMetadata(data []byte) (map[string]string, error) {
	props := map[string]string{}
	i := 0
	for i < len(data) {
		if i+1 > len(data) {
			return nil, ErrorMetadataTruncated.Error()
		}
		kl := int(data[i])
		i++
		if i+kl+4 > len(data) {
			return nil, ErrorMetadataTruncated.Error()
		}
		k := string(data[i : i+kl])
		i += kl
		vl := int(binary.BigEndian.Uint32(data[i : i+4]))
		i += 4
		if i+vl > len(data) {
			return nil, ErrorMetadataTruncated.Error()
		}
		props[k] = string(data[i : i+vl])
		i += vl
	}
	return props, nil
}
