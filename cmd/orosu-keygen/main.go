/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Command orosu-keygen mints a fresh identity keypair: a private-key
// blob for the client and a base64 public-key file for the server's
// configuration.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/renameio"

	"github.com/orosu-ci/orosu/cryptography"
)

var (
	name    = flag.String("name", "", "identity name the minted key authenticates as")
	privOut = flag.String("private-key-out", "", "path to write the private key blob (required)")
	pubOut  = flag.String("public-key-out", "", "path to write the public key file (required)")
)

func main() {
	flag.Parse()
	if *name == "" || *privOut == "" || *pubOut == "" {
		fmt.Fprintln(os.Stderr, "orosu-keygen: -name, -private-key-out and -public-key-out are all required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*name, *privOut, *pubOut); err != nil {
		fmt.Fprintf(os.Stderr, "orosu-keygen: %v\n", err)
		os.Exit(1)
	}
}

func run(name, privPath, pubPath string) error {
	clientKey, pub, err := cryptography.GenerateKeyPair(name)
	if err != nil {
		return fmt.Errorf("generate keypair: %w", err)
	}

	encodedPriv, err := cryptography.EncodeClientKey(clientKey)
	if err != nil {
		return fmt.Errorf("encode private key: %w", err)
	}

	if err := renameio.WriteFile(privPath, []byte(encodedPriv), 0o600); err != nil {
		return fmt.Errorf("write %q: %w", privPath, err)
	}
	if err := renameio.WriteFile(pubPath, []byte(cryptography.EncodePublicKey(pub)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write %q: %w", pubPath, err)
	}

	fmt.Printf("wrote private key for %q to %s\n", name, privPath)
	fmt.Printf("wrote public key for %q to %s\n", name, pubPath)
	return nil
}
