/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package cryptography holds the identity keypair representation and the
// signed-token mint/verify flow used to authenticate a session, grounded
// on this codebase's own JWT dependency and standard ed25519 support.
package cryptography

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
)

var (
	// ErrInvalidPublicKey is returned when a decoded public key is not
	// exactly ed25519.PublicKeySize bytes long.
	ErrInvalidPublicKey = errors.New("cryptography: invalid public key length")
	// ErrInvalidPrivateKey is returned when a decoded private key blob is
	// malformed or the wrong size.
	ErrInvalidPrivateKey = errors.New("cryptography: invalid private key")
)

// ClientKey is the private-key blob handed to a client out of band: the
// identity name it authenticates as, and the raw ed25519 seed.
type ClientKey struct {
	ClientName string `json:"client_name"`
	Key        []byte `json:"key"`
}

// GenerateKeyPair mints a fresh ed25519 keypair for the named identity.
func GenerateKeyPair(name string) (ClientKey, ed25519.PublicKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return ClientKey{}, nil, fmt.Errorf("cryptography: generate keypair: %w", err)
	}
	return ClientKey{ClientName: name, Key: priv.Seed()}, pub, nil
}

// PrivateKey reconstructs the full ed25519 private key from the stored
// seed.
func (c ClientKey) PrivateKey() (ed25519.PrivateKey, error) {
	if len(c.Key) != ed25519.SeedSize {
		return nil, ErrInvalidPrivateKey
	}
	return ed25519.NewKeyFromSeed(c.Key), nil
}

// EncodeClientKey serializes a ClientKey as base64-wrapped JSON, the
// pragmatic substitute for this codebase's lack of a zero-copy binary
// serializer: the wire codec already depends on goccy/go-json, so reusing
// it here avoids adding a second serialization format for one struct.
func EncodeClientKey(c ClientKey) (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("cryptography: encode client key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeClientKey is the inverse of EncodeClientKey.
func DecodeClientKey(encoded string) (ClientKey, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return ClientKey{}, fmt.Errorf("cryptography: decode client key: %w", err)
	}
	var c ClientKey
	if err := json.Unmarshal(raw, &c); err != nil {
		return ClientKey{}, fmt.Errorf("cryptography: decode client key: %w", err)
	}
	if len(c.Key) != ed25519.SeedSize {
		return ClientKey{}, ErrInvalidPrivateKey
	}
	return c, nil
}

// EncodePublicKey renders a public key as the base64 text stored in an
// identity's public key file.
func EncodePublicKey(pub ed25519.PublicKey) string {
	return base64.StdEncoding.EncodeToString(pub)
}

// DecodePublicKey parses the base64 text of an identity's public key
// file, tolerating any trailing newlines, carriage returns and spaces.
func DecodePublicKey(raw string) (ed25519.PublicKey, error) {
	raw = trimTrailingNewline(raw)
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("cryptography: decode public key: %w", err)
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, ErrInvalidPublicKey
	}
	return ed25519.PublicKey(decoded), nil
}

func trimTrailingNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r' || s[len(s)-1] == ' ') {
		s = s[:len(s)-1]
	}
	return s
}
