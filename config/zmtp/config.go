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

// Package zmtp is the config/ component that loads an options.Options
// from a spf13/viper source (file/env/flags), following the shape of
// config/components/database and config/components/http's
// viper-binding config.go/default.go pair, decodes it via
// mitchellh/mapstructure (the codec viper.Unmarshal already uses
// internally) and validates it with options.Options.Validate
// (go-playground/validator/v10), per SPEC_FULL §10.
//
// This package intentionally does not implement the full
// config.Component lifecycle (register/start/reload/monitor) the
// heavier components under config/components carry: a messaging core's
// option set has no running service of its own to start/stop, so that
// machinery would be ceremony with nothing underneath it. See
// DESIGN.md for the full reasoning.
package zmtp

import (
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github/sabouaram/zmtpcore/duration"
	"github/sabouaram/zmtpcore/options"
)

// DefaultKey is the viper key this package reads from by default, e.g.
// a config file's top-level "zmtp:" section.
const DefaultKey = "zmtp"

var durationType = reflect.TypeOf(duration.Duration(0))

// durationHookFunc lets mapstructure decode a "30s"/"1m30s" style string
// into duration.Duration, since that type carries no UnmarshalText of
// its own for mapstructure/viper to pick up automatically - it is
// parsed explicitly via duration.Parse instead (grounded on
// duration/parse.go's parseString, the same string grammar
// options.Options' own callers already rely on).
func durationHookFunc() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data interface{}) (interface{}, error) {
		if to != durationType {
			return data, nil
		}
		s, ok := data.(string)
		if !ok {
			return data, nil
		}
		return duration.Parse(s)
	}
}

// Load reads key from v, decodes it into an options.Options (seeded
// with options.Default so unset fields keep their libzmq-equivalent
// defaults) and validates the result.
func Load(v *viper.Viper, key string) (options.Options, error) {
	if key == "" {
		key = DefaultKey
	}
	out := options.Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(durationHookFunc()),
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return options.Options{}, err
	}
	if err := dec.Decode(v.Get(key)); err != nil {
		return options.Options{}, err
	}
	if err := out.Validate(); err != nil {
		return options.Options{}, err
	}
	return out, nil
}
