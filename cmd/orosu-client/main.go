/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Command orosu-client launches a configured remote script, optionally
// uploading a set of local files alongside it, and streams the
// script's output to the local terminal until it exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/inhies/go-bytesize"
	"golang.org/x/term"

	"github.com/orosu-ci/orosu/client"
	"github.com/orosu-ci/orosu/cryptography"
)

const version = "0.1.0"

var (
	address   = flag.String("address", "", "server address, e.g. wss://host:port/ (required)")
	script    = flag.String("script", "", "name of the configured script to run (required)")
	keyFile   = flag.String("key", "", "path to the private key blob produced by orosu-keygen (required)")
	chunkSize = flag.String("chunk-size", "64KB", "upload chunk size, e.g. 64KB, 1MB")
	attach    stringList
)

func init() {
	flag.Var(&attach, "attach", "glob pattern for a local file to upload; may be repeated")
}

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	flag.Parse()
	args := flag.Args()

	if *address == "" || *script == "" || *keyFile == "" {
		fmt.Fprintln(os.Stderr, "orosu-client: -address, -script and -key are all required")
		flag.Usage()
		os.Exit(2)
	}

	raw, err := os.ReadFile(*keyFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "orosu-client: read key file: %v\n", err)
		os.Exit(1)
	}
	key, err := cryptography.DecodeClientKey(strings.TrimSpace(string(raw)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "orosu-client: decode key file: %v\n", err)
		os.Exit(1)
	}

	bs, err := bytesize.Parse(*chunkSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "orosu-client: invalid -chunk-size %q: %v\n", *chunkSize, err)
		os.Exit(1)
	}

	colorStderr := term.IsTerminal(int(os.Stderr.Fd()))

	result, err := client.Run(context.Background(), client.Options{
		Address:     *address,
		Script:      *script,
		Args:        args,
		Key:         key,
		Attachments: attach,
		ChunkSize:   int(bs),
		Version:     version,
		Output: func(stderr bool, line string) {
			printLine(stderr, line, colorStderr)
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "orosu-client: %v\n", err)
		os.Exit(1)
	}
	os.Exit(result.ExitCode)
}

// stderrColor and colorReset wrap stderr lines in red when the
// destination is an interactive terminal.
const (
	stderrColor = "\x1b[31m"
	colorReset  = "\x1b[0m"
)

func printLine(stderr bool, line string, colorStderr bool) {
	if stderr {
		if colorStderr {
			fmt.Fprintln(os.Stderr, stderrColor+line+colorReset)
		} else {
			fmt.Fprintln(os.Stderr, line)
		}
		return
	}
	fmt.Fprintln(os.Stdout, line)
}
