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

// Command zmtpd is the thin spf13/cobra CLI SPEC_FULL §10 calls for: it
// loads a zmtp.* viper key into options.Options via config/zmtp, binds
// persistent flags the way config/components/database/config.go binds
// its own (Command.PersistentFlags() + vpr.BindPFlag), and serves one
// listening endpoint, optionally exposing Prometheus metrics over a
// gin-gonic/gin HTTP server.
package main

import (
	"fmt"
	"os"

	spfcbr "github.com/spf13/cobra"
	spfvpr "github.com/spf13/viper"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *spfcbr.Command {
	vpr := spfvpr.New()
	vpr.SetEnvPrefix("ZMTPD")
	vpr.AutomaticEnv()

	root := &spfcbr.Command{
		Use:   "zmtpd",
		Short: "zmtpd runs a ZMTP socket endpoint",
	}

	root.PersistentFlags().String("config", "", "path to a YAML/TOML/JSON config file")
	root.PersistentFlags().String("zmtp.endpoint", "tcp://127.0.0.1:5555", "transport endpoint to bind/connect (scheme://address)")
	root.PersistentFlags().String("zmtp.socket-type", "rep", "socket pattern: pair, pub, sub, req, rep, dealer, router, pull, push, xpub, xsub, stream, radio, dish, client, server, peer")
	root.PersistentFlags().Bool("zmtp.listen", true, "bind and accept (true) vs connect out (false)")
	root.PersistentFlags().String("metrics.listen", "", "address to serve Prometheus metrics on, empty disables it")

	_ = vpr.BindPFlag("zmtp.endpoint", root.PersistentFlags().Lookup("zmtp.endpoint"))
	_ = vpr.BindPFlag("zmtp.socket-type", root.PersistentFlags().Lookup("zmtp.socket-type"))
	_ = vpr.BindPFlag("zmtp.listen", root.PersistentFlags().Lookup("zmtp.listen"))
	_ = vpr.BindPFlag("metrics.listen", root.PersistentFlags().Lookup("metrics.listen"))

	root.PersistentPreRunE = func(cmd *spfcbr.Command, args []string) error {
		if p, _ := cmd.Flags().GetString("config"); p != "" {
			vpr.SetConfigFile(p)
			if err := vpr.ReadInConfig(); err != nil {
				return err
			}
		}
		return nil
	}

	root.AddCommand(newServeCommand(vpr))
	root.AddCommand(newVersionCommand())
	return root
}
