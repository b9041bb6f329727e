/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package cryptography

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMintVerifyRoundTrip(t *testing.T) {
	key, pub, err := GenerateKeyPair("alice")
	require.NoError(t, err)

	priv, err := key.PrivateKey()
	require.NoError(t, err)

	token, err := Mint(priv, "alice")
	require.NoError(t, err)

	subject, err := Subject(token)
	require.NoError(t, err)
	require.Equal(t, "alice", subject)

	claims, err := Verify(token, pub, time.Now())
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	key, pub, err := GenerateKeyPair("alice")
	require.NoError(t, err)
	priv, err := key.PrivateKey()
	require.NoError(t, err)

	token, err := Mint(priv, "alice")
	require.NoError(t, err)

	_, err = Verify(token, pub, time.Now().Add(TokenLifetime+time.Second))
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	key, _, err := GenerateKeyPair("alice")
	require.NoError(t, err)
	priv, err := key.PrivateKey()
	require.NoError(t, err)

	token, err := Mint(priv, "alice")
	require.NoError(t, err)

	_, otherPub, err := GenerateKeyPair("mallory")
	require.NoError(t, err)

	_, err = Verify(token, otherPub, time.Now())
	require.Error(t, err)
}

func TestClientKeyEncodeDecodeRoundTrip(t *testing.T) {
	key, _, err := GenerateKeyPair("bob")
	require.NoError(t, err)

	encoded, err := EncodeClientKey(key)
	require.NoError(t, err)

	decoded, err := DecodeClientKey(encoded)
	require.NoError(t, err)
	require.Equal(t, key, decoded)
}

func TestPublicKeyEncodeDecodeRoundTrip(t *testing.T) {
	_, pub, err := GenerateKeyPair("carol")
	require.NoError(t, err)

	text := EncodePublicKey(pub)
	decoded, err := DecodePublicKey(text + "\n")
	require.NoError(t, err)
	require.Equal(t, pub, decoded)
}
